// Package sync keeps the collection cache in step with the database.
// Realtime change notifications carry no diff, so every event triggers
// a full refetch of the affected collection; a version stamp taken at
// refetch start keeps slow responses from clobbering newer data.
package sync

import (
	"context"
	"encoding/json"

	"github.com/tidwall/gjson"

	"github.com/ristora/fronthouse/internal/cache"
	"github.com/ristora/fronthouse/internal/logging"
	"github.com/ristora/fronthouse/internal/metrics"
	"github.com/ristora/fronthouse/supabase/client"
)

// FetchFunc loads the current contents of one collection.
type FetchFunc func(ctx context.Context) (any, error)

// Collection binds a cached collection to its realtime channel, the
// database tables whose changes invalidate it, and its fetcher.
type Collection struct {
	Name    string
	Channel string
	Tables  []string
	Fetch   FetchFunc
}

// Realtime is the subscription surface the watcher needs. The Supabase
// realtime client satisfies it.
type Realtime interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context, channel string, configs []client.ChangesConfig, handler client.EventHandler) error
	Disconnect() error
}

// Watcher subscribes to change notifications and refreshes the cache.
type Watcher struct {
	realtime    Realtime
	cache       *cache.Collections
	metrics     *metrics.Metrics
	logger      *logging.Logger
	collections []Collection

	// byTable resolves which collections a changed table affects.
	byTable map[string][]*Collection

	// onTable hooks run when a change event names the keyed table.
	// The menu availability recompute hangs off the inventory and
	// recipe tables this way; hooking whole collections would loop,
	// since the recompute itself writes menu_items rows.
	onTable map[string][]func(ctx context.Context)
}

// NewWatcher creates a watcher over the given collections.
func NewWatcher(realtime Realtime, collections []Collection, cc *cache.Collections, m *metrics.Metrics, logger *logging.Logger) *Watcher {
	w := &Watcher{
		realtime:    realtime,
		cache:       cc,
		metrics:     m,
		logger:      logger,
		collections: collections,
		byTable:     make(map[string][]*Collection),
		onTable:     make(map[string][]func(ctx context.Context)),
	}
	for i := range w.collections {
		c := &w.collections[i]
		for _, table := range c.Tables {
			w.byTable[table] = append(w.byTable[table], c)
		}
	}
	return w
}

// OnTableChange registers a hook that runs whenever a change event
// names the given table. Hooks do not fire for the initial prime or
// for refetches triggered by other tables in the same collection.
func (w *Watcher) OnTableChange(table string, hook func(ctx context.Context)) {
	w.onTable[table] = append(w.onTable[table], hook)
}

// Start connects the realtime socket, subscribes every channel and
// primes the cache with an initial fetch of each collection.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.realtime.Connect(ctx); err != nil {
		return err
	}

	channels := make(map[string][]client.ChangesConfig)
	for _, c := range w.collections {
		for _, table := range c.Tables {
			channels[c.Channel] = append(channels[c.Channel], client.ChangesConfig{
				Event:  "*",
				Schema: "public",
				Table:  table,
			})
		}
	}

	for channel, configs := range channels {
		channel := channel
		handler := func(event *client.RealtimeEvent) {
			w.handleEvent(ctx, channel, event)
		}
		if err := w.realtime.Subscribe(ctx, channel, configs, handler); err != nil {
			return err
		}
		w.logger.WithFields(map[string]any{"channel": channel}).Info("realtime channel subscribed")
	}

	for _, c := range w.collections {
		w.Refetch(ctx, c.Name)
	}
	return nil
}

// Stop disconnects the realtime socket.
func (w *Watcher) Stop() error {
	return w.realtime.Disconnect()
}

// handleEvent maps a postgres_changes notification to the collections
// that watch the changed table and refetches each.
func (w *Watcher) handleEvent(ctx context.Context, channel string, event *client.RealtimeEvent) {
	w.metrics.RecordRealtimeEvent(channel)

	table := gjson.GetBytes(event.Payload, "data.table").String()
	if table == "" {
		table = gjson.GetBytes(event.Payload, "table").String()
	}
	if table == "" {
		return
	}

	for _, c := range w.byTable[table] {
		w.Refetch(ctx, c.Name)
	}
	for _, hook := range w.onTable[table] {
		hook(ctx)
	}
}

// Refetch reloads one collection into the cache. The version stamp is
// taken before the fetch starts; if a newer snapshot lands while this
// fetch is in flight, the result is discarded.
func (w *Watcher) Refetch(ctx context.Context, name string) {
	c := w.find(name)
	if c == nil {
		return
	}

	version := w.cache.Begin()
	data, err := c.Fetch(ctx)
	if err != nil {
		w.metrics.RecordRefetch(name, "error")
		w.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"collection": name,
		}).Warn("collection refetch failed")
		return
	}

	raw, err := json.Marshal(data)
	if err != nil {
		w.metrics.RecordRefetch(name, "error")
		return
	}

	if !w.cache.Apply(name, version, raw) {
		w.metrics.RecordStaleDrop()
		w.metrics.RecordRefetch(name, "stale")
		return
	}
	w.metrics.RecordRefetch(name, "ok")
}

func (w *Watcher) find(name string) *Collection {
	for i := range w.collections {
		if w.collections[i].Name == name {
			return &w.collections[i]
		}
	}
	return nil
}
