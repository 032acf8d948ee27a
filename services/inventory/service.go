package inventory

import (
	"context"
	"fmt"

	"github.com/ristora/fronthouse/internal/errors"
	"github.com/ristora/fronthouse/internal/logging"
	"github.com/ristora/fronthouse/services/base"
	"github.com/ristora/fronthouse/supabase/client"
)

// Service implements stock management.
type Service struct {
	*base.BaseService
	store  StoreInterface
	logger *logging.Logger
}

// New creates a new inventory service.
func New(db *client.Client, logger *logging.Logger) *Service {
	return &Service{
		BaseService: base.NewBaseService("inventory", "inventory_items", db, logger),
		store:       NewStore(db),
		logger:      logger,
	}
}

// NewWithStore creates an inventory service with a custom store.
func NewWithStore(store StoreInterface, logger *logging.Logger) *Service {
	return &Service{
		BaseService: base.NewBaseService("inventory", "inventory_items", nil, logger),
		store:       store,
		logger:      logger,
	}
}

// ListItems returns all stock items ordered by name.
func (s *Service) ListItems(ctx context.Context) ([]Item, error) {
	return s.store.ListItems(ctx)
}

// GetItem returns a stock item by id.
func (s *Service) GetItem(ctx context.Context, id int64) (*Item, error) {
	return s.store.GetItem(ctx, id)
}

// CreateItem creates a stock item.
func (s *Service) CreateItem(ctx context.Context, input ItemInput) (*Item, error) {
	if err := validateItem(input); err != nil {
		return nil, err
	}
	return s.store.CreateItem(ctx, itemFields(input))
}

// UpdateItem updates a stock item.
func (s *Service) UpdateItem(ctx context.Context, id int64, input ItemInput) (*Item, error) {
	if err := validateItem(input); err != nil {
		return nil, err
	}
	return s.store.UpdateItem(ctx, id, itemFields(input))
}

// DeleteItem removes a stock item.
func (s *Service) DeleteItem(ctx context.Context, id int64) error {
	return s.store.DeleteItem(ctx, id)
}

// ApplyMovement appends a ledger row and adjusts the item quantity by
// the signed movement amount. Each call mutates stock cumulatively;
// recording the same movement twice moves stock twice.
func (s *Service) ApplyMovement(ctx context.Context, userID string, input MovementInput) (*Movement, error) {
	if input.InventoryItemID <= 0 {
		return nil, errors.InvalidInput("movement requires an inventory item")
	}
	if !ValidMovementType(input.Type) {
		return nil, errors.InvalidInput(fmt.Sprintf("unknown movement type %q", input.Type))
	}
	if input.Quantity <= 0 {
		return nil, errors.InvalidInput("movement quantity must be positive")
	}
	if userID == "" {
		return nil, errors.InvalidInput("movement requires a user")
	}

	movement, err := s.store.InsertMovement(ctx, map[string]any{
		"inventory_item_id": input.InventoryItemID,
		"type":              input.Type,
		"quantity":          input.Quantity,
		"notes":             input.Notes,
		"created_by":        userID,
	})
	if err != nil {
		return nil, err
	}

	delta := input.Quantity
	if input.Type == MovementOut {
		delta = -delta
	}
	if err := s.store.AdjustQuantity(ctx, input.InventoryItemID, delta); err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"inventory_item_id": input.InventoryItemID,
		"type":              input.Type,
		"quantity":          input.Quantity,
	}).Info("inventory movement applied")
	return movement, nil
}

// Movements returns an item's ledger, newest first, with the creator's
// name.
func (s *Service) Movements(ctx context.Context, itemID int64) ([]Movement, error) {
	return s.store.ListMovements(ctx, itemID)
}

// LowStockItems returns the items at or below their threshold.
func (s *Service) LowStockItems(ctx context.Context) ([]Item, error) {
	items, err := s.store.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	var low []Item
	for _, item := range items {
		if IsLowStock(item) {
			low = append(low, item)
		}
	}
	return low, nil
}

func validateItem(input ItemInput) error {
	if input.Name == "" {
		return errors.InvalidInput("item name is required")
	}
	if input.Unit == "" {
		return errors.InvalidInput("item unit is required")
	}
	if input.Quantity < 0 {
		return errors.InvalidInput("item quantity cannot be negative")
	}
	if input.MinimumQuantity < 0 {
		return errors.InvalidInput("minimum quantity cannot be negative")
	}
	return nil
}

func itemFields(input ItemInput) map[string]any {
	return map[string]any{
		"name":             input.Name,
		"quantity":         input.Quantity,
		"unit":             input.Unit,
		"minimum_quantity": input.MinimumQuantity,
	}
}
