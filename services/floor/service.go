package floor

import (
	"context"
	"fmt"
	"time"

	"github.com/ristora/fronthouse/internal/errors"
	"github.com/ristora/fronthouse/internal/logging"
	"github.com/ristora/fronthouse/services/base"
	"github.com/ristora/fronthouse/supabase/client"
)

// Service implements table state management.
type Service struct {
	*base.BaseService
	store  StoreInterface
	logger *logging.Logger
}

// New creates a new floor service.
func New(db *client.Client, logger *logging.Logger) *Service {
	return &Service{
		BaseService: base.NewBaseService("floor", "tables", db, logger),
		store:       NewStore(db),
		logger:      logger,
	}
}

// NewWithStore creates a floor service with a custom store.
func NewWithStore(store StoreInterface, logger *logging.Logger) *Service {
	return &Service{
		BaseService: base.NewBaseService("floor", "tables", nil, logger),
		store:       store,
		logger:      logger,
	}
}

// ListTables returns all tables ordered by number.
func (s *Service) ListTables(ctx context.Context) ([]Table, error) {
	return s.store.ListTables(ctx)
}

// GetTable returns a table by id.
func (s *Service) GetTable(ctx context.Context, id int64) (*Table, error) {
	return s.store.GetTable(ctx, id)
}

// CreateTable creates a table. New tables start free.
func (s *Service) CreateTable(ctx context.Context, input CreateTableInput) (*Table, error) {
	if input.Number <= 0 {
		return nil, errors.InvalidInput("table number must be positive")
	}
	if input.Capacity <= 0 {
		return nil, errors.InvalidInput("table capacity must be positive")
	}

	table, err := s.store.CreateTable(ctx, map[string]any{
		"number":     input.Number,
		"capacity":   input.Capacity,
		"status":     TableStatusFree,
		"x_position": input.XPosition,
		"y_position": input.YPosition,
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"table_id": table.ID,
		"number":   table.Number,
	}).Info("table created")
	return table, nil
}

// UpdateTable updates a table's number and capacity.
func (s *Service) UpdateTable(ctx context.Context, id int64, input UpdateTableInput) (*Table, error) {
	if input.Number <= 0 {
		return nil, errors.InvalidInput("table number must be positive")
	}
	if input.Capacity <= 0 {
		return nil, errors.InvalidInput("table capacity must be positive")
	}
	return s.store.UpdateTable(ctx, id, map[string]any{
		"number":   input.Number,
		"capacity": input.Capacity,
	})
}

// UpdateNotes replaces a table's notes.
func (s *Service) UpdateNotes(ctx context.Context, id int64, notes string) (*Table, error) {
	return s.store.UpdateTable(ctx, id, map[string]any{"notes": notes})
}

// DeleteTable removes a table.
func (s *Service) DeleteTable(ctx context.Context, id int64) error {
	return s.store.DeleteTable(ctx, id)
}

// SetStatus performs an unconditional status transition. Moving to
// occupied stamps last_occupied_at; any other target clears it.
func (s *Service) SetStatus(ctx context.Context, id int64, status TableStatus) (*Table, error) {
	if !ValidTableStatus(status) {
		return nil, errors.InvalidInput(fmt.Sprintf("unknown table status %q", status))
	}

	fields := map[string]any{"status": status}
	if status == TableStatusOccupied {
		fields["last_occupied_at"] = time.Now().UTC().Format(time.RFC3339)
	} else {
		fields["last_occupied_at"] = nil
	}

	table, err := s.store.UpdateTable(ctx, id, fields)
	if err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"table_id": id,
		"status":   status,
	}).Info("table status changed")
	return table, nil
}

// Move persists a table's floor plan coordinates.
func (s *Service) Move(ctx context.Context, id int64, x, y float64) (*Table, error) {
	return s.store.UpdateTable(ctx, id, map[string]any{
		"x_position": x,
		"y_position": y,
	})
}

// Merge makes primaryID the owner of a merge group containing
// memberIDs. Members keep a back-reference so group membership is
// resolvable from either side. Merging a primary that already owns a
// group redefines the group: members dropped from the new set get
// their back-references cleared.
func (s *Service) Merge(ctx context.Context, primaryID int64, memberIDs []int64) (*Table, error) {
	if len(memberIDs) == 0 {
		return nil, errors.InvalidInput("merge requires at least one member table")
	}
	for _, id := range memberIDs {
		if id == primaryID {
			return nil, errors.InvalidInput("a table cannot be merged with itself")
		}
	}

	primary, err := s.store.GetTable(ctx, primaryID)
	if err != nil {
		return nil, err
	}
	if primary.IsMergeMember() {
		return nil, errors.Conflict(fmt.Sprintf("table %d is already merged into table %d", primaryID, *primary.MergedInto))
	}

	for _, id := range memberIDs {
		member, err := s.store.GetTable(ctx, id)
		if err != nil {
			return nil, err
		}
		if member.IsMergeMember() && *member.MergedInto != primaryID {
			return nil, errors.Conflict(fmt.Sprintf("table %d is already merged into table %d", id, *member.MergedInto))
		}
		if member.IsMergePrimary() {
			return nil, errors.Conflict(fmt.Sprintf("table %d owns its own merge group", id))
		}
	}

	keep := make(map[int64]bool, len(memberIDs))
	for _, id := range memberIDs {
		keep[id] = true
	}
	for _, id := range primary.MergedWith {
		if keep[id] {
			continue
		}
		if _, err := s.store.UpdateTable(ctx, id, map[string]any{"merged_into": nil}); err != nil {
			return nil, err
		}
	}

	for _, id := range memberIDs {
		if _, err := s.store.UpdateTable(ctx, id, map[string]any{"merged_into": primaryID}); err != nil {
			return nil, err
		}
	}

	merged, err := s.store.UpdateTable(ctx, primaryID, map[string]any{"merged_with": memberIDs})
	if err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"table_id": primaryID,
		"members":  memberIDs,
	}).Info("tables merged")
	return merged, nil
}

// Unmerge dissolves the merge group owned by id, clearing the members'
// back-references.
func (s *Service) Unmerge(ctx context.Context, id int64) (*Table, error) {
	table, err := s.store.GetTable(ctx, id)
	if err != nil {
		return nil, err
	}
	if !table.IsMergePrimary() {
		return nil, errors.InvalidInput(fmt.Sprintf("table %d does not own a merge group", id))
	}

	for _, memberID := range table.MergedWith {
		if _, err := s.store.UpdateTable(ctx, memberID, map[string]any{"merged_into": nil}); err != nil {
			return nil, err
		}
	}

	unmerged, err := s.store.UpdateTable(ctx, id, map[string]any{"merged_with": nil})
	if err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"table_id": id,
	}).Info("tables unmerged")
	return unmerged, nil
}

// MergeGroup returns the member table ids for an order placed on the
// given table, or nil when the table owns no merge group.
func (s *Service) MergeGroup(ctx context.Context, id int64) ([]int64, error) {
	table, err := s.store.GetTable(ctx, id)
	if err != nil {
		return nil, err
	}
	return table.MergedWith, nil
}
