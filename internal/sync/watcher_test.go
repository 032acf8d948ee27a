package sync

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/ristora/fronthouse/internal/cache"
	"github.com/ristora/fronthouse/internal/logging"
	"github.com/ristora/fronthouse/internal/metrics"
	"github.com/ristora/fronthouse/supabase/client"
)

type stubRealtime struct {
	connected bool
	handlers  map[string]client.EventHandler
	configs   map[string][]client.ChangesConfig
}

func newStubRealtime() *stubRealtime {
	return &stubRealtime{
		handlers: make(map[string]client.EventHandler),
		configs:  make(map[string][]client.ChangesConfig),
	}
}

func (s *stubRealtime) Connect(ctx context.Context) error {
	s.connected = true
	return nil
}

func (s *stubRealtime) Subscribe(ctx context.Context, channel string, configs []client.ChangesConfig, handler client.EventHandler) error {
	s.handlers[channel] = handler
	s.configs[channel] = configs
	return nil
}

func (s *stubRealtime) Disconnect() error {
	s.connected = false
	return nil
}

func (s *stubRealtime) emit(channel, table string) {
	payload, _ := json.Marshal(map[string]any{"data": map[string]any{"table": table}})
	s.handlers[channel](&client.RealtimeEvent{
		Event:   "postgres_changes",
		Topic:   "realtime:" + channel,
		Payload: payload,
	})
}

func newTestWatcher(t *testing.T, collections []Collection) (*Watcher, *stubRealtime, *cache.Collections) {
	t.Helper()
	realtime := newStubRealtime()
	cc := cache.New()
	w := NewWatcher(realtime, collections, cc, metrics.New("fronthouse_test"), logging.Nop())
	return w, realtime, cc
}

func TestStartPrimesCache(t *testing.T) {
	fetches := 0
	w, realtime, cc := newTestWatcher(t, []Collection{{
		Name:    "tables",
		Channel: "tables",
		Tables:  []string{"tables"},
		Fetch: func(ctx context.Context) (any, error) {
			fetches++
			return []string{"t1"}, nil
		},
	}})

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !realtime.connected {
		t.Fatal("realtime not connected")
	}
	if fetches != 1 {
		t.Fatalf("fetches = %d, want 1 initial fetch", fetches)
	}
	if _, ok := cc.Get("tables"); !ok {
		t.Fatal("cache not primed")
	}
}

func TestEventTriggersRefetchOfAffectedCollections(t *testing.T) {
	counts := map[string]int{}
	mk := func(name string) FetchFunc {
		return func(ctx context.Context) (any, error) {
			counts[name]++
			return name, nil
		}
	}
	w, realtime, _ := newTestWatcher(t, []Collection{
		{Name: "menu", Channel: "menu-inventory", Tables: []string{"menu_items", "menu_item_ingredients"}, Fetch: mk("menu")},
		{Name: "inventory", Channel: "menu-inventory", Tables: []string{"inventory_items"}, Fetch: mk("inventory")},
	})

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	counts = map[string]int{}

	realtime.emit("menu-inventory", "inventory_items")
	if counts["inventory"] != 1 || counts["menu"] != 0 {
		t.Fatalf("counts = %v, want only inventory refetched", counts)
	}

	realtime.emit("menu-inventory", "menu_item_ingredients")
	if counts["menu"] != 1 {
		t.Fatalf("counts = %v, want menu refetched", counts)
	}
}

func TestTableChangeHookRuns(t *testing.T) {
	w, realtime, _ := newTestWatcher(t, []Collection{{
		Name:    "inventory",
		Channel: "menu-inventory",
		Tables:  []string{"inventory_items"},
		Fetch:   func(ctx context.Context) (any, error) { return nil, nil },
	}})

	hookRuns := 0
	w.OnTableChange("inventory_items", func(ctx context.Context) { hookRuns++ })

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if hookRuns != 0 {
		t.Fatalf("hook runs = %d, want 0 after the initial prime", hookRuns)
	}

	realtime.emit("menu-inventory", "inventory_items")
	if hookRuns != 1 {
		t.Fatalf("hook runs = %d, want 1 after an inventory_items event", hookRuns)
	}
}

func TestMenuItemEventDoesNotRunStockHooks(t *testing.T) {
	// The availability recompute hangs off stock and recipe tables
	// only; a menu_items change must refetch the collection without
	// firing it, or the recompute's own menu_items writes would
	// retrigger it.
	menuFetches := 0
	w, realtime, _ := newTestWatcher(t, []Collection{{
		Name:    "menu",
		Channel: "menu-inventory",
		Tables:  []string{"menu_items", "menu_item_ingredients"},
		Fetch: func(ctx context.Context) (any, error) {
			menuFetches++
			return nil, nil
		},
	}})

	hookRuns := 0
	for _, table := range []string{"inventory_items", "inventory_movements", "menu_item_ingredients"} {
		w.OnTableChange(table, func(ctx context.Context) { hookRuns++ })
	}

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	menuFetches = 0

	realtime.emit("menu-inventory", "menu_items")
	if menuFetches != 1 {
		t.Fatalf("menu fetches = %d, want the collection refetched", menuFetches)
	}
	if hookRuns != 0 {
		t.Fatalf("hook runs = %d, want 0 for a menu_items change", hookRuns)
	}

	realtime.emit("menu-inventory", "menu_item_ingredients")
	if hookRuns != 1 {
		t.Fatalf("hook runs = %d, want 1 for a recipe change", hookRuns)
	}
}

func TestEventWithoutTableIgnored(t *testing.T) {
	fetches := 0
	w, realtime, _ := newTestWatcher(t, []Collection{{
		Name:    "tables",
		Channel: "tables",
		Tables:  []string{"tables"},
		Fetch: func(ctx context.Context) (any, error) {
			fetches++
			return nil, nil
		},
	}})

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	fetches = 0

	realtime.handlers["tables"](&client.RealtimeEvent{
		Event:   "postgres_changes",
		Payload: json.RawMessage(`{}`),
	})
	if fetches != 0 {
		t.Fatalf("fetches = %d, want 0 for payload without table", fetches)
	}
}
