package orders

import (
	"context"

	"github.com/ristora/fronthouse/services/base"
	"github.com/ristora/fronthouse/supabase/client"
)

// orderSelect embeds order lines and the menu item snapshot each line
// needs for presentation.
const orderSelect = "*, order_items(*, menu_items(id,name,price,is_weight_based,price_per_kg))"

// StoreInterface defines the interface for order storage.
type StoreInterface interface {
	ListOrders(ctx context.Context) ([]Order, error)
	ListOrdersByTable(ctx context.Context, tableID int64) ([]Order, error)
	GetOrder(ctx context.Context, id int64) (*Order, error)
	CreateWithItems(ctx context.Context, tableID int64, waiterID, notes string, mergedTableIDs []int64, items []NewItem) (*Order, error)
	AddItems(ctx context.Context, orderID int64, items []NewItem) (*Order, error)
	UpdateOrder(ctx context.Context, id int64, fields map[string]any) (*Order, error)
	UpdateItem(ctx context.Context, itemID int64, fields map[string]any) (*OrderItem, error)
	DeleteOrder(ctx context.Context, id int64) error
}

// Store manages order data in Supabase. Multi-row writes go through
// remote procedures so order and items commit in one transaction.
type Store struct {
	db     *client.Client
	orders *base.Table[Order]
	items  *base.Table[OrderItem]
}

// NewStore creates a new order store.
func NewStore(db *client.Client) *Store {
	return &Store{
		db:     db,
		orders: base.NewTable[Order](db, "orders", orderSelect),
		items:  base.NewTable[OrderItem](db, "order_items", "*"),
	}
}

// ListOrders returns all orders, newest first, with their lines.
func (s *Store) ListOrders(ctx context.Context) ([]Order, error) {
	return s.orders.List(ctx, base.OrderBy("created_at", false))
}

// ListOrdersByTable returns a table's orders, newest first.
func (s *Store) ListOrdersByTable(ctx context.Context, tableID int64) ([]Order, error) {
	return s.orders.List(ctx, base.Eq("table_id", tableID), base.OrderBy("created_at", false))
}

// GetOrder returns an order with its lines.
func (s *Store) GetOrder(ctx context.Context, id int64) (*Order, error) {
	return s.orders.Get(ctx, id)
}

// CreateWithItems creates an order together with its lines in one
// transaction. The procedure computes total_amount from the lines and
// returns the stored order id.
func (s *Store) CreateWithItems(ctx context.Context, tableID int64, waiterID, notes string, mergedTableIDs []int64, items []NewItem) (*Order, error) {
	params := map[string]any{
		"p_table_id":  tableID,
		"p_waiter_id": waiterID,
		"p_notes":     notes,
		"p_items":     items,
	}
	if len(mergedTableIDs) > 0 {
		params["p_merged_table_ids"] = mergedTableIDs
	}

	var orderID int64
	if err := s.db.RPC(ctx, "create_order_with_items", params, &orderID); err != nil {
		return nil, base.WrapRemote(err, "create order")
	}
	return s.GetOrder(ctx, orderID)
}

// AddItems appends lines to an existing order in one transaction. The
// procedure recomputes total_amount and leaves order status untouched.
func (s *Store) AddItems(ctx context.Context, orderID int64, items []NewItem) (*Order, error) {
	params := map[string]any{
		"p_order_id": orderID,
		"p_items":    items,
	}
	if err := s.db.RPC(ctx, "add_order_items", params, nil); err != nil {
		return nil, base.WrapRemote(err, "add order items")
	}
	return s.GetOrder(ctx, orderID)
}

// UpdateOrder patches an order row.
func (s *Store) UpdateOrder(ctx context.Context, id int64, fields map[string]any) (*Order, error) {
	return s.orders.Update(ctx, id, fields)
}

// UpdateItem patches an order line.
func (s *Store) UpdateItem(ctx context.Context, itemID int64, fields map[string]any) (*OrderItem, error) {
	return s.items.Update(ctx, itemID, fields)
}

// DeleteOrder removes an order. Lines cascade in the database.
func (s *Store) DeleteOrder(ctx context.Context, id int64) error {
	return s.orders.Delete(ctx, id)
}
