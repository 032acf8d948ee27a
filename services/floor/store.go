package floor

import (
	"context"

	"github.com/ristora/fronthouse/services/base"
	"github.com/ristora/fronthouse/supabase/client"
)

// StoreInterface defines the interface for table storage.
type StoreInterface interface {
	ListTables(ctx context.Context) ([]Table, error)
	GetTable(ctx context.Context, id int64) (*Table, error)
	CreateTable(ctx context.Context, fields map[string]any) (*Table, error)
	UpdateTable(ctx context.Context, id int64, fields map[string]any) (*Table, error)
	DeleteTable(ctx context.Context, id int64) error
}

// Store manages table data in Supabase.
type Store struct {
	tables *base.Table[Table]
}

// NewStore creates a new table store.
func NewStore(db *client.Client) *Store {
	return &Store{
		tables: base.NewTable[Table](db, "tables", "*"),
	}
}

// ListTables returns all tables ordered by number.
func (s *Store) ListTables(ctx context.Context) ([]Table, error) {
	return s.tables.List(ctx, base.OrderBy("number", true))
}

// GetTable returns a table by id.
func (s *Store) GetTable(ctx context.Context, id int64) (*Table, error) {
	return s.tables.Get(ctx, id)
}

// CreateTable inserts a table row.
func (s *Store) CreateTable(ctx context.Context, fields map[string]any) (*Table, error) {
	return s.tables.Insert(ctx, fields)
}

// UpdateTable patches a table row.
func (s *Store) UpdateTable(ctx context.Context, id int64, fields map[string]any) (*Table, error) {
	return s.tables.Update(ctx, id, fields)
}

// DeleteTable removes a table row.
func (s *Store) DeleteTable(ctx context.Context, id int64) error {
	return s.tables.Delete(ctx, id)
}
