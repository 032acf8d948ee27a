package orders

import (
	"context"
	"fmt"

	"github.com/ristora/fronthouse/internal/errors"
	"github.com/ristora/fronthouse/internal/logging"
	"github.com/ristora/fronthouse/services/base"
	"github.com/ristora/fronthouse/supabase/client"
)

// MergeGroups resolves the member tables of a merge group. The floor
// service satisfies it.
type MergeGroups interface {
	MergeGroup(ctx context.Context, tableID int64) ([]int64, error)
}

// Service implements the order lifecycle.
type Service struct {
	*base.BaseService
	store  StoreInterface
	floor  MergeGroups
	logger *logging.Logger
}

// New creates a new orders service.
func New(db *client.Client, floor MergeGroups, logger *logging.Logger) *Service {
	return &Service{
		BaseService: base.NewBaseService("orders", "orders", db, logger),
		store:       NewStore(db),
		floor:       floor,
		logger:      logger,
	}
}

// NewWithStore creates an orders service with a custom store.
func NewWithStore(store StoreInterface, floor MergeGroups, logger *logging.Logger) *Service {
	return &Service{
		BaseService: base.NewBaseService("orders", "orders", nil, logger),
		store:       store,
		floor:       floor,
		logger:      logger,
	}
}

// List returns all orders, newest first.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	return s.store.ListOrders(ctx)
}

// ListByTable returns a table's orders, newest first.
func (s *Service) ListByTable(ctx context.Context, tableID int64) ([]Order, error) {
	return s.store.ListOrdersByTable(ctx, tableID)
}

// Get returns an order with its lines.
func (s *Service) Get(ctx context.Context, id int64) (*Order, error) {
	return s.store.GetOrder(ctx, id)
}

// Create places an order with its lines in one transaction. New orders
// and their lines start pending; total_amount is computed from the
// lines by the backend. When the table owns a merge group the member
// table ids are recorded on the order.
func (s *Service) Create(ctx context.Context, waiterID string, tableID int64, notes string, items []NewItem) (*Order, error) {
	if waiterID == "" {
		return nil, errors.InvalidInput("waiter id is required")
	}
	if err := validateItems(items); err != nil {
		return nil, err
	}

	var mergedTableIDs []int64
	if s.floor != nil {
		group, err := s.floor.MergeGroup(ctx, tableID)
		if err != nil {
			return nil, err
		}
		mergedTableIDs = group
	}

	order, err := s.store.CreateWithItems(ctx, tableID, waiterID, notes, mergedTableIDs, items)
	if err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"order_id": order.ID,
		"table_id": tableID,
		"items":    len(items),
	}).Info("order created")
	return order, nil
}

// AddItems appends lines to an order without touching its status. The
// persisted total is recomputed by the backend.
func (s *Service) AddItems(ctx context.Context, orderID int64, items []NewItem) (*Order, error) {
	if err := validateItems(items); err != nil {
		return nil, err
	}

	order, err := s.store.AddItems(ctx, orderID, items)
	if err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"order_id": orderID,
		"items":    len(items),
	}).Info("order items added")
	return order, nil
}

// SetStatus writes the order status. Any transition is allowed so
// staff can correct mistakes; only enum membership is checked. Item
// statuses are not touched.
func (s *Service) SetStatus(ctx context.Context, orderID int64, status OrderStatus) (*Order, error) {
	if !ValidOrderStatus(status) {
		return nil, errors.InvalidInput(fmt.Sprintf("unknown order status %q", status))
	}
	return s.store.UpdateOrder(ctx, orderID, map[string]any{"status": status})
}

// SetItemStatus writes a single line's status, independent of the
// order status.
func (s *Service) SetItemStatus(ctx context.Context, itemID int64, status ItemStatus) (*OrderItem, error) {
	if !ValidItemStatus(status) {
		return nil, errors.InvalidInput(fmt.Sprintf("unknown item status %q", status))
	}
	return s.store.UpdateItem(ctx, itemID, map[string]any{"status": status})
}

// CloseBill marks the order paid.
func (s *Service) CloseBill(ctx context.Context, orderID int64) (*Order, error) {
	order, err := s.store.UpdateOrder(ctx, orderID, map[string]any{"status": OrderStatusPaid})
	if err != nil {
		return nil, err
	}
	s.logger.WithContext(ctx).WithFields(map[string]any{
		"order_id": orderID,
		"total":    order.TotalAmount,
	}).Info("bill closed")
	return order, nil
}

// Delete removes an order and its lines.
func (s *Service) Delete(ctx context.Context, orderID int64) error {
	return s.store.DeleteOrder(ctx, orderID)
}

func validateItems(items []NewItem) error {
	if len(items) == 0 {
		return errors.InvalidInput("order requires at least one item")
	}
	for _, item := range items {
		if item.MenuItemID <= 0 {
			return errors.InvalidInput("menu item id is required")
		}
		if item.Quantity <= 0 {
			return errors.InvalidInput("item quantity must be positive")
		}
		if item.WeightKg != nil && *item.WeightKg <= 0 {
			return errors.InvalidInput("item weight must be positive")
		}
	}
	return nil
}
