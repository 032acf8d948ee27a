package inventory

import (
	"context"

	"github.com/ristora/fronthouse/services/base"
	"github.com/ristora/fronthouse/supabase/client"
)

const movementSelect = "*, profiles(id,full_name)"

// StoreInterface defines the interface for inventory storage.
type StoreInterface interface {
	ListItems(ctx context.Context) ([]Item, error)
	GetItem(ctx context.Context, id int64) (*Item, error)
	CreateItem(ctx context.Context, fields map[string]any) (*Item, error)
	UpdateItem(ctx context.Context, id int64, fields map[string]any) (*Item, error)
	DeleteItem(ctx context.Context, id int64) error

	InsertMovement(ctx context.Context, fields map[string]any) (*Movement, error)
	ListMovements(ctx context.Context, itemID int64) ([]Movement, error)
	AdjustQuantity(ctx context.Context, itemID int64, delta float64) error
}

// Store manages inventory data in Supabase. Quantity adjustments go
// through a remote procedure so the ledger row and the item row stay
// consistent.
type Store struct {
	db        *client.Client
	items     *base.Table[Item]
	movements *base.Table[Movement]
}

// NewStore creates a new inventory store.
func NewStore(db *client.Client) *Store {
	return &Store{
		db:        db,
		items:     base.NewTable[Item](db, "inventory_items", "*"),
		movements: base.NewTable[Movement](db, "inventory_movements", movementSelect),
	}
}

// ListItems returns all stock items ordered by name.
func (s *Store) ListItems(ctx context.Context) ([]Item, error) {
	return s.items.List(ctx, base.OrderBy("name", true))
}

// GetItem returns a stock item by id.
func (s *Store) GetItem(ctx context.Context, id int64) (*Item, error) {
	return s.items.Get(ctx, id)
}

// CreateItem inserts a stock item row.
func (s *Store) CreateItem(ctx context.Context, fields map[string]any) (*Item, error) {
	return s.items.Insert(ctx, fields)
}

// UpdateItem patches a stock item row.
func (s *Store) UpdateItem(ctx context.Context, id int64, fields map[string]any) (*Item, error) {
	return s.items.Update(ctx, id, fields)
}

// DeleteItem removes a stock item row.
func (s *Store) DeleteItem(ctx context.Context, id int64) error {
	return s.items.Delete(ctx, id)
}

// InsertMovement appends a ledger row.
func (s *Store) InsertMovement(ctx context.Context, fields map[string]any) (*Movement, error) {
	return s.movements.Insert(ctx, fields)
}

// ListMovements returns an item's ledger, newest first, with the
// creator's profile.
func (s *Store) ListMovements(ctx context.Context, itemID int64) ([]Movement, error) {
	return s.movements.List(ctx,
		base.Eq("inventory_item_id", itemID),
		base.OrderBy("created_at", false))
}

// AdjustQuantity changes an item's quantity by delta atomically.
func (s *Store) AdjustQuantity(ctx context.Context, itemID int64, delta float64) error {
	params := map[string]any{
		"p_item_id":        itemID,
		"p_quantity_delta": delta,
	}
	if err := s.db.RPC(ctx, "update_inventory_quantity", params, nil); err != nil {
		return base.WrapRemote(err, "adjust inventory quantity")
	}
	return nil
}
