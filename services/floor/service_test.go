package floor

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ristora/fronthouse/internal/errors"
	"github.com/ristora/fronthouse/internal/logging"
)

// =============================================================================
// Test Helpers
// =============================================================================

type stubStore struct {
	tables map[int64]*Table
	nextID int64
}

func newStubStore(tables ...*Table) *stubStore {
	s := &stubStore{tables: make(map[int64]*Table), nextID: 1}
	for _, t := range tables {
		s.tables[t.ID] = t
		if t.ID >= s.nextID {
			s.nextID = t.ID + 1
		}
	}
	return s
}

func (s *stubStore) ListTables(ctx context.Context) ([]Table, error) {
	out := make([]Table, 0, len(s.tables))
	for _, t := range s.tables {
		out = append(out, *t)
	}
	return out, nil
}

func (s *stubStore) GetTable(ctx context.Context, id int64) (*Table, error) {
	t, ok := s.tables[id]
	if !ok {
		return nil, errors.NotFound(fmt.Sprintf("tables %d not found", id))
	}
	copy := *t
	return &copy, nil
}

func (s *stubStore) CreateTable(ctx context.Context, fields map[string]any) (*Table, error) {
	t := &Table{ID: s.nextID}
	s.nextID++
	s.apply(t, fields)
	s.tables[t.ID] = t
	copy := *t
	return &copy, nil
}

func (s *stubStore) UpdateTable(ctx context.Context, id int64, fields map[string]any) (*Table, error) {
	t, ok := s.tables[id]
	if !ok {
		return nil, errors.NotFound(fmt.Sprintf("tables %d not found", id))
	}
	s.apply(t, fields)
	copy := *t
	return &copy, nil
}

func (s *stubStore) DeleteTable(ctx context.Context, id int64) error {
	if _, ok := s.tables[id]; !ok {
		return errors.NotFound(fmt.Sprintf("tables %d not found", id))
	}
	delete(s.tables, id)
	return nil
}

func (s *stubStore) apply(t *Table, fields map[string]any) {
	for k, v := range fields {
		switch k {
		case "number":
			t.Number = v.(int)
		case "capacity":
			t.Capacity = v.(int)
		case "status":
			t.Status = v.(TableStatus)
		case "notes":
			t.Notes = v.(string)
		case "x_position":
			t.XPosition = v.(float64)
		case "y_position":
			t.YPosition = v.(float64)
		case "merged_with":
			if v == nil {
				t.MergedWith = nil
			} else {
				t.MergedWith = v.([]int64)
			}
		case "merged_into":
			if v == nil {
				t.MergedInto = nil
			} else {
				id := v.(int64)
				t.MergedInto = &id
			}
		case "last_occupied_at":
			if v == nil {
				t.LastOccupiedAt = nil
			} else if ts, err := time.Parse(time.RFC3339, v.(string)); err == nil {
				t.LastOccupiedAt = &ts
			}
		}
	}
}

func newTestService(store StoreInterface) *Service {
	return NewWithStore(store, logging.Nop())
}

// =============================================================================
// Tests
// =============================================================================

func TestSetStatusStampsLastOccupied(t *testing.T) {
	store := newStubStore(&Table{ID: 1, Number: 1, Capacity: 4, Status: TableStatusFree})
	svc := newTestService(store)

	if _, err := svc.SetStatus(context.Background(), 1, TableStatusOccupied); err != nil {
		t.Fatalf("set occupied: %v", err)
	}
	if store.tables[1].Status != TableStatusOccupied {
		t.Fatalf("status = %s", store.tables[1].Status)
	}
	if store.tables[1].LastOccupiedAt == nil {
		t.Fatal("last_occupied_at should be stamped when moving to occupied")
	}

	table, err := svc.SetStatus(context.Background(), 1, TableStatusFree)
	if err != nil {
		t.Fatalf("set free: %v", err)
	}
	if table.LastOccupiedAt != nil {
		t.Fatal("last_occupied_at should be cleared when leaving occupied")
	}
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	svc := newTestService(newStubStore(&Table{ID: 1}))

	_, err := svc.SetStatus(context.Background(), 1, TableStatus("flooded"))
	if err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestMergeBidirectional(t *testing.T) {
	store := newStubStore(
		&Table{ID: 1, Number: 1, Capacity: 4, Notes: "window seat"},
		&Table{ID: 2, Number: 2, Capacity: 2},
		&Table{ID: 3, Number: 3, Capacity: 2},
	)
	svc := newTestService(store)

	primary, err := svc.Merge(context.Background(), 1, []int64{2, 3})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if len(primary.MergedWith) != 2 {
		t.Fatalf("merged_with = %v", primary.MergedWith)
	}
	for _, id := range []int64{2, 3} {
		member := store.tables[id]
		if member.MergedInto == nil || *member.MergedInto != 1 {
			t.Fatalf("table %d missing back-reference", id)
		}
	}
	// Other member fields are untouched.
	if store.tables[2].Capacity != 2 || store.tables[1].Notes != "window seat" {
		t.Fatal("merge must not touch unrelated fields")
	}
}

func TestMergeRejectsConflicts(t *testing.T) {
	one := int64(1)
	store := newStubStore(
		&Table{ID: 1, MergedWith: []int64{4}},
		&Table{ID: 2},
		&Table{ID: 3, MergedInto: &one},
		&Table{ID: 4, MergedInto: &one},
		&Table{ID: 5},
	)
	svc := newTestService(store)

	cases := []struct {
		name    string
		primary int64
		members []int64
	}{
		{"self merge", 2, []int64{2}},
		{"member merged elsewhere", 2, []int64{3}},
		{"member owns a group", 2, []int64{1}},
		{"primary is a member elsewhere", 3, []int64{5}},
		{"no members", 2, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Merge(context.Background(), tc.primary, tc.members); err == nil {
				t.Fatal("expected merge to be rejected")
			}
		})
	}
}

func TestRemergeClearsDroppedMembers(t *testing.T) {
	store := newStubStore(
		&Table{ID: 1, Number: 1, Capacity: 4},
		&Table{ID: 2, Number: 2, Capacity: 2},
		&Table{ID: 3, Number: 3, Capacity: 2},
	)
	svc := newTestService(store)

	if _, err := svc.Merge(context.Background(), 1, []int64{2}); err != nil {
		t.Fatalf("first merge: %v", err)
	}
	primary, err := svc.Merge(context.Background(), 1, []int64{3})
	if err != nil {
		t.Fatalf("re-merge: %v", err)
	}

	if len(primary.MergedWith) != 1 || primary.MergedWith[0] != 3 {
		t.Fatalf("merged_with = %v", primary.MergedWith)
	}
	if store.tables[2].MergedInto != nil {
		t.Fatalf("table 2 still merged_into %d after being dropped from the group", *store.tables[2].MergedInto)
	}
	if store.tables[3].MergedInto == nil || *store.tables[3].MergedInto != 1 {
		t.Fatal("table 3 missing back-reference")
	}

	// The dropped member is mergeable again.
	if _, err := svc.Unmerge(context.Background(), 1); err != nil {
		t.Fatalf("unmerge: %v", err)
	}
	if _, err := svc.Merge(context.Background(), 2, []int64{1, 3}); err != nil {
		t.Fatalf("dropped member should be mergeable: %v", err)
	}
}

func TestUnmergeClearsBackReferences(t *testing.T) {
	one := int64(1)
	store := newStubStore(
		&Table{ID: 1, MergedWith: []int64{2, 3}},
		&Table{ID: 2, MergedInto: &one, Notes: "keep me"},
		&Table{ID: 3, MergedInto: &one},
	)
	svc := newTestService(store)

	primary, err := svc.Unmerge(context.Background(), 1)
	if err != nil {
		t.Fatalf("unmerge: %v", err)
	}
	if primary.IsMergePrimary() {
		t.Fatal("primary still owns a group")
	}
	for _, id := range []int64{2, 3} {
		if store.tables[id].MergedInto != nil {
			t.Fatalf("table %d back-reference not cleared", id)
		}
	}
	if store.tables[2].Notes != "keep me" {
		t.Fatal("unmerge must not touch unrelated fields")
	}
}

func TestUnmergeRequiresGroup(t *testing.T) {
	svc := newTestService(newStubStore(&Table{ID: 1}))

	if _, err := svc.Unmerge(context.Background(), 1); err == nil {
		t.Fatal("expected error for table without a group")
	}
}

func TestCreateTableValidation(t *testing.T) {
	svc := newTestService(newStubStore())

	if _, err := svc.CreateTable(context.Background(), CreateTableInput{Number: 0, Capacity: 4}); err == nil {
		t.Fatal("expected error for non-positive number")
	}
	if _, err := svc.CreateTable(context.Background(), CreateTableInput{Number: 1, Capacity: 0}); err == nil {
		t.Fatal("expected error for non-positive capacity")
	}

	table, err := svc.CreateTable(context.Background(), CreateTableInput{Number: 7, Capacity: 4})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if table.Status != TableStatusFree {
		t.Fatalf("new table status = %s, want free", table.Status)
	}
}
