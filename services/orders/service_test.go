package orders

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/ristora/fronthouse/internal/errors"
	"github.com/ristora/fronthouse/internal/logging"
)

// =============================================================================
// Test Helpers
// =============================================================================

type stubStore struct {
	orders    map[int64]*Order
	nextOrder int64
	nextItem  int64
	menu      map[int64]LineMenuItem
}

func newStubStore() *stubStore {
	return &stubStore{
		orders:    make(map[int64]*Order),
		nextOrder: 1,
		nextItem:  1,
		menu: map[int64]LineMenuItem{
			1: {ID: 1, Name: "Margherita", Price: 10.00},
			2: {ID: 2, Name: "Tiramisu", Price: 3.50},
			3: {ID: 3, Name: "Sea Bass", IsWeightBased: true, PricePerKg: 42.00},
		},
	}
}

func (s *stubStore) newLines(orderID int64, items []NewItem) []OrderItem {
	lines := make([]OrderItem, 0, len(items))
	for _, it := range items {
		mi := s.menu[it.MenuItemID]
		lines = append(lines, OrderItem{
			ID:         s.nextItem,
			OrderID:    orderID,
			MenuItemID: it.MenuItemID,
			Quantity:   it.Quantity,
			Notes:      it.Notes,
			WeightKg:   it.WeightKg,
			Status:     ItemStatusPending,
			MenuItem:   &mi,
		})
		s.nextItem++
	}
	return lines
}

func (s *stubStore) ListOrders(ctx context.Context) ([]Order, error) {
	out := make([]Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (s *stubStore) ListOrdersByTable(ctx context.Context, tableID int64) ([]Order, error) {
	var out []Order
	for _, o := range s.orders {
		if o.TableID == tableID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *stubStore) GetOrder(ctx context.Context, id int64) (*Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, errors.NotFound(fmt.Sprintf("orders %d not found", id))
	}
	copy := *o
	return &copy, nil
}

func (s *stubStore) CreateWithItems(ctx context.Context, tableID int64, waiterID, notes string, mergedTableIDs []int64, items []NewItem) (*Order, error) {
	o := &Order{
		ID:             s.nextOrder,
		TableID:        tableID,
		WaiterID:       waiterID,
		Status:         OrderStatusPending,
		Notes:          notes,
		MergedTableIDs: mergedTableIDs,
	}
	s.nextOrder++
	o.Items = s.newLines(o.ID, items)
	o.TotalAmount = DisplayTotal(o)
	s.orders[o.ID] = o
	copy := *o
	return &copy, nil
}

func (s *stubStore) AddItems(ctx context.Context, orderID int64, items []NewItem) (*Order, error) {
	o, ok := s.orders[orderID]
	if !ok {
		return nil, errors.NotFound(fmt.Sprintf("orders %d not found", orderID))
	}
	o.Items = append(o.Items, s.newLines(orderID, items)...)
	o.TotalAmount = DisplayTotal(o)
	copy := *o
	return &copy, nil
}

func (s *stubStore) UpdateOrder(ctx context.Context, id int64, fields map[string]any) (*Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, errors.NotFound(fmt.Sprintf("orders %d not found", id))
	}
	if v, ok := fields["status"]; ok {
		o.Status = v.(OrderStatus)
	}
	copy := *o
	return &copy, nil
}

func (s *stubStore) UpdateItem(ctx context.Context, itemID int64, fields map[string]any) (*OrderItem, error) {
	for _, o := range s.orders {
		for i := range o.Items {
			if o.Items[i].ID == itemID {
				if v, ok := fields["status"]; ok {
					o.Items[i].Status = v.(ItemStatus)
				}
				copy := o.Items[i]
				return &copy, nil
			}
		}
	}
	return nil, errors.NotFound(fmt.Sprintf("order_items %d not found", itemID))
}

func (s *stubStore) DeleteOrder(ctx context.Context, id int64) error {
	if _, ok := s.orders[id]; !ok {
		return errors.NotFound(fmt.Sprintf("orders %d not found", id))
	}
	delete(s.orders, id)
	return nil
}

type stubMergeGroups struct {
	groups map[int64][]int64
}

func (s *stubMergeGroups) MergeGroup(ctx context.Context, tableID int64) ([]int64, error) {
	return s.groups[tableID], nil
}

func newTestService(store StoreInterface, floor MergeGroups) *Service {
	return NewWithStore(store, floor, logging.Nop())
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// =============================================================================
// Tests
// =============================================================================

func TestCreateThenAddItems(t *testing.T) {
	store := newStubStore()
	svc := newTestService(store, nil)

	order, err := svc.Create(context.Background(), "waiter-1", 5, "no onions", []NewItem{
		{MenuItemID: 1, Quantity: 1},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if order.Status != OrderStatusPending {
		t.Fatalf("order status = %s, want pending", order.Status)
	}
	if len(order.Items) != 1 || order.Items[0].Status != ItemStatusPending {
		t.Fatalf("unexpected items: %+v", order.Items)
	}

	order, err = svc.AddItems(context.Background(), order.ID, []NewItem{
		{MenuItemID: 2, Quantity: 1},
	})
	if err != nil {
		t.Fatalf("add items: %v", err)
	}
	if len(order.Items) != 2 {
		t.Fatalf("items = %d, want exactly 2", len(order.Items))
	}
	if order.Status != OrderStatusPending {
		t.Fatalf("adding items changed order status to %s", order.Status)
	}
}

func TestCreateRecordsMergeGroup(t *testing.T) {
	store := newStubStore()
	floor := &stubMergeGroups{groups: map[int64][]int64{5: {6, 7}}}
	svc := newTestService(store, floor)

	order, err := svc.Create(context.Background(), "waiter-1", 5, "", []NewItem{
		{MenuItemID: 1, Quantity: 2},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(order.MergedTableIDs) != 2 {
		t.Fatalf("merged table ids = %v", order.MergedTableIDs)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(newStubStore(), nil)

	cases := []struct {
		name     string
		waiterID string
		items    []NewItem
	}{
		{"no items", "waiter-1", nil},
		{"no waiter", "", []NewItem{{MenuItemID: 1, Quantity: 1}}},
		{"zero quantity", "waiter-1", []NewItem{{MenuItemID: 1, Quantity: 0}}},
		{"no menu item", "waiter-1", []NewItem{{Quantity: 1}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), tc.waiterID, 1, "", tc.items); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestStatusWalkLeavesItemStatuses(t *testing.T) {
	store := newStubStore()
	svc := newTestService(store, nil)

	order, err := svc.Create(context.Background(), "waiter-1", 1, "", []NewItem{
		{MenuItemID: 1, Quantity: 1},
		{MenuItemID: 2, Quantity: 1},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.SetItemStatus(context.Background(), order.Items[0].ID, ItemStatusReady); err != nil {
		t.Fatalf("set item status: %v", err)
	}

	walk := []OrderStatus{OrderStatusPreparing, OrderStatusReady, OrderStatusServed, OrderStatusPaid}
	for _, status := range walk {
		if _, err := svc.SetStatus(context.Background(), order.ID, status); err != nil {
			t.Fatalf("set status %s: %v", status, err)
		}
	}

	got, _ := svc.Get(context.Background(), order.ID)
	if got.Status != OrderStatusPaid {
		t.Fatalf("order status = %s, want paid", got.Status)
	}
	if got.Items[0].Status != ItemStatusReady || got.Items[1].Status != ItemStatusPending {
		t.Fatalf("item statuses changed: %s, %s", got.Items[0].Status, got.Items[1].Status)
	}
}

func TestSetStatusRejectsUnknown(t *testing.T) {
	svc := newTestService(newStubStore(), nil)

	if _, err := svc.SetStatus(context.Background(), 1, OrderStatus("refunded")); err == nil {
		t.Fatal("expected error for unknown order status")
	}
	if _, err := svc.SetItemStatus(context.Background(), 1, ItemStatus("paid")); err == nil {
		t.Fatal("expected error for unknown item status")
	}
}

func TestDisplayTotal(t *testing.T) {
	order := &Order{Items: []OrderItem{
		{Quantity: 2, MenuItem: &LineMenuItem{Price: 10.00}},
		{Quantity: 1, MenuItem: &LineMenuItem{Price: 3.50}},
	}}
	if got := DisplayTotal(order); !almostEqual(got, 23.50) {
		t.Fatalf("display total = %.2f, want 23.50", got)
	}
}

func TestDisplayTotalWeightBased(t *testing.T) {
	weight := 0.5
	order := &Order{Items: []OrderItem{
		{Quantity: 2, WeightKg: &weight, MenuItem: &LineMenuItem{IsWeightBased: true, PricePerKg: 42.00}},
	}}
	// 42.00/kg x 0.5kg x 2
	if got := DisplayTotal(order); !almostEqual(got, 42.00) {
		t.Fatalf("display total = %.2f, want 42.00", got)
	}
}

func TestCloseBillSetsPaid(t *testing.T) {
	store := newStubStore()
	svc := newTestService(store, nil)

	order, _ := svc.Create(context.Background(), "waiter-1", 1, "", []NewItem{{MenuItemID: 1, Quantity: 1}})
	closed, err := svc.CloseBill(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("close bill: %v", err)
	}
	if closed.Status != OrderStatusPaid {
		t.Fatalf("status = %s, want paid", closed.Status)
	}
}
