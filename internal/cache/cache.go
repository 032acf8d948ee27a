// Package cache holds the in-memory snapshots of remote collections.
// Each refetch is stamped with a monotonically increasing version taken
// when the refetch starts; a slow refetch racing a fast one cannot
// overwrite fresher data because stale stamps are discarded on apply.
package cache

import (
	"encoding/json"
	"sync"
	"time"
)

// Snapshot is one applied collection state.
type Snapshot struct {
	Collection string          `json:"collection"`
	Version    uint64          `json:"version"`
	FetchedAt  time.Time       `json:"fetched_at"`
	Data       json.RawMessage `json:"data"`
}

// Collections is a version-guarded snapshot store keyed by collection
// name.
type Collections struct {
	mu        sync.RWMutex
	next      uint64
	snapshots map[string]Snapshot
}

// New creates an empty snapshot store.
func New() *Collections {
	return &Collections{snapshots: make(map[string]Snapshot)}
}

// Begin reserves a version stamp for a refetch that is about to start.
// The stamp must be passed to Apply when the refetch completes.
func (c *Collections) Begin() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next++
	return c.next
}

// Apply stores a snapshot fetched under the given stamp. It returns
// false when a newer snapshot for the collection has already been
// applied, in which case the data is discarded.
func (c *Collections) Apply(collection string, version uint64, data json.RawMessage) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if current, ok := c.snapshots[collection]; ok && current.Version >= version {
		return false
	}
	c.snapshots[collection] = Snapshot{
		Collection: collection,
		Version:    version,
		FetchedAt:  time.Now(),
		Data:       data,
	}
	return true
}

// Get returns the applied snapshot for a collection.
func (c *Collections) Get(collection string) (Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap, ok := c.snapshots[collection]
	return snap, ok
}

// Invalidate drops a collection's snapshot without touching the version
// counter, so the next Apply always wins.
func (c *Collections) Invalidate(collection string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.snapshots, collection)
}

// Names returns the collections currently held.
func (c *Collections) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.snapshots))
	for name := range c.snapshots {
		names = append(names, name)
	}
	return names
}
