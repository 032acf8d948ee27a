package base

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ristora/fronthouse/internal/errors"
	"github.com/ristora/fronthouse/supabase/client"
)

type testRow struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func newTestTable(t *testing.T, handler http.HandlerFunc) (*Table[testRow], *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	db, err := client.New(client.Config{URL: srv.URL, APIKey: "test-key"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return NewTable[testRow](db, "widgets", "*"), srv
}

func TestTableList(t *testing.T) {
	table, _ := newTestTable(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/widgets" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("status"); got != "eq.open" {
			t.Errorf("status filter = %q", got)
		}
		if got := r.URL.Query().Get("order"); got != "name.asc" {
			t.Errorf("order = %q", got)
		}
		_ = json.NewEncoder(w).Encode([]testRow{{ID: 1, Name: "a"}, {ID: 2, Name: "b"}})
	})

	rows, err := table.List(context.Background(), Eq("status", "open"), OrderBy("name", true))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 || rows[0].ID != 1 {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestTableGetNotFound(t *testing.T) {
	table, _ := newTestTable(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotAcceptable)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "no rows"})
	})

	_, err := table.Get(context.Background(), 42)
	if !errors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTableBackendFailureIsUnavailable(t *testing.T) {
	table, _ := newTestTable(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "db down"})
	})

	_, err := table.List(context.Background())
	if !errors.IsUnavailable(err) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}

func TestTableInsertReturnsRepresentation(t *testing.T) {
	table, _ := newTestTable(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["name"] != "fork" {
			t.Errorf("body name = %v", body["name"])
		}
		_ = json.NewEncoder(w).Encode(testRow{ID: 7, Name: "fork"})
	})

	row, err := table.Insert(context.Background(), map[string]any{"name": "fork"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if row.ID != 7 {
		t.Fatalf("id = %d, want 7", row.ID)
	}
}

func TestTableUpdateFiltersByID(t *testing.T) {
	table, _ := newTestTable(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %s", r.Method)
		}
		if got := r.URL.Query().Get("id"); got != "eq.3" {
			t.Errorf("id filter = %q", got)
		}
		_ = json.NewEncoder(w).Encode(testRow{ID: 3, Name: "renamed"})
	})

	row, err := table.Update(context.Background(), 3, map[string]any{"name": "renamed"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if row.Name != "renamed" {
		t.Fatalf("name = %q", row.Name)
	}
}
