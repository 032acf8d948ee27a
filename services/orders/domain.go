// Package orders manages the order lifecycle from creation to the
// closed bill. Order and item statuses are independent enums.
package orders

import "time"

// OrderStatus represents the state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusServed    OrderStatus = "served"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusPreparing, OrderStatusReady,
		OrderStatusServed, OrderStatusPaid, OrderStatusCancelled:
		return true
	}
	return false
}

// ItemStatus represents the state of a single order item.
type ItemStatus string

const (
	ItemStatusPending   ItemStatus = "pending"
	ItemStatusPreparing ItemStatus = "preparing"
	ItemStatusReady     ItemStatus = "ready"
	ItemStatusServed    ItemStatus = "served"
	ItemStatusCancelled ItemStatus = "cancelled"
)

// ValidItemStatus reports whether s is a known item status.
func ValidItemStatus(s ItemStatus) bool {
	switch s {
	case ItemStatusPending, ItemStatusPreparing, ItemStatusReady,
		ItemStatusServed, ItemStatusCancelled:
		return true
	}
	return false
}

// Order represents a placed order.
type Order struct {
	ID             int64       `json:"id"`
	TableID        int64       `json:"table_id"`
	WaiterID       string      `json:"waiter_id"`
	Status         OrderStatus `json:"status"`
	TotalAmount    float64     `json:"total_amount"`
	Notes          string      `json:"notes,omitempty"`
	MergedTableIDs []int64     `json:"merged_table_ids,omitempty"`
	Items          []OrderItem `json:"order_items,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// OrderItem represents a single line of an order.
type OrderItem struct {
	ID         int64         `json:"id"`
	OrderID    int64         `json:"order_id"`
	MenuItemID int64         `json:"menu_item_id"`
	Quantity   int           `json:"quantity"`
	Notes      string        `json:"notes,omitempty"`
	WeightKg   *float64      `json:"weight_kg,omitempty"`
	Status     ItemStatus    `json:"status"`
	MenuItem   *LineMenuItem `json:"menu_items,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}

// LineMenuItem is the menu item snapshot embedded in an order line.
type LineMenuItem struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	IsWeightBased bool    `json:"is_weight_based"`
	PricePerKg    float64 `json:"price_per_kg"`
}

// NewItem holds fields for a new order line.
type NewItem struct {
	MenuItemID int64    `json:"menu_item_id"`
	Quantity   int      `json:"quantity"`
	Notes      string   `json:"notes,omitempty"`
	WeightKg   *float64 `json:"weight_kg,omitempty"`
}

// LinePrice returns the price of a single order line. Weight-based
// dishes are priced per kilogram.
func LinePrice(item OrderItem) float64 {
	if item.MenuItem == nil {
		return 0
	}
	if item.MenuItem.IsWeightBased && item.WeightKg != nil {
		return item.MenuItem.PricePerKg * *item.WeightKg * float64(item.Quantity)
	}
	return item.MenuItem.Price * float64(item.Quantity)
}

// DisplayTotal computes the order total from its lines for
// presentation. The persisted total_amount remains authoritative.
func DisplayTotal(order *Order) float64 {
	var total float64
	for _, item := range order.Items {
		total += LinePrice(item)
	}
	return total
}
