package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hazim/reckon/internal/domain"
)

// CacheSource is the full-fetch interface used to populate the cache on
// startup.
type CacheSource interface {
	ListBalances(ctx context.Context) ([]*domain.Balance, error)
	ListEntries(ctx context.Context) ([]*domain.Entry, error)
	ListBatches(ctx context.Context) ([]*domain.SettlementBatch, error)
	ListAdjustments(ctx context.Context) ([]*domain.Adjustment, error)
}

// Cache is the process-scoped mirror of the shared store: populated by a
// full fetch on startup, mutated only by the feed reducers, torn down on
// shutdown. Read paths serve from it instead of hitting the store.
type Cache struct {
	mu          sync.RWMutex
	balances    map[string]*domain.Balance
	entries     map[string]*domain.Entry
	batches     map[string]*domain.SettlementBatch
	adjustments map[string]*domain.Adjustment
	logger      zerolog.Logger
}

// NewCache creates an empty Cache.
func NewCache(logger zerolog.Logger) *Cache {
	return &Cache{
		balances:    make(map[string]*domain.Balance),
		entries:     make(map[string]*domain.Entry),
		batches:     make(map[string]*domain.SettlementBatch),
		adjustments: make(map[string]*domain.Adjustment),
		logger:      logger,
	}
}

// Load populates the cache with a full fetch from the store.
func (c *Cache) Load(ctx context.Context, src CacheSource) error {
	balances, err := src.ListBalances(ctx)
	if err != nil {
		return fmt.Errorf("load balances: %w", err)
	}

	entries, err := src.ListEntries(ctx)
	if err != nil {
		return fmt.Errorf("load entries: %w", err)
	}

	batches, err := src.ListBatches(ctx)
	if err != nil {
		return fmt.Errorf("load batches: %w", err)
	}

	adjustments, err := src.ListAdjustments(ctx)
	if err != nil {
		return fmt.Errorf("load adjustments: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.balances)
	clear(c.entries)
	clear(c.batches)
	clear(c.adjustments)

	for _, b := range balances {
		c.balances[b.ID] = b
	}
	for _, e := range entries {
		c.entries[e.ID] = e
	}
	for _, b := range batches {
		c.batches[b.ID] = b
	}
	for _, a := range adjustments {
		c.adjustments[a.ID] = a
	}

	c.logger.Info().
		Int("balances", len(balances)).
		Int("entries", len(entries)).
		Int("batches", len(batches)).
		Int("adjustments", len(adjustments)).
		Msg("state cache loaded")

	return nil
}

// Close tears the cache down.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.balances)
	clear(c.entries)
	clear(c.batches)
	clear(c.adjustments)
}

// ReduceBalance is the feed reducer for the balances table.
func (c *Cache) ReduceBalance(ev domain.ChangeEvent) {
	reduce(c, ev, c.balances, func(b *domain.Balance) string { return b.ID })
}

// ReduceEntry is the feed reducer for the ledger entries table.
func (c *Cache) ReduceEntry(ev domain.ChangeEvent) {
	reduce(c, ev, c.entries, func(e *domain.Entry) string { return e.ID })
}

// ReduceBatch is the feed reducer for the settlement batches table.
func (c *Cache) ReduceBatch(ev domain.ChangeEvent) {
	reduce(c, ev, c.batches, func(b *domain.SettlementBatch) string { return b.ID })
}

// ReduceAdjustment is the feed reducer for the adjustments table.
func (c *Cache) ReduceAdjustment(ev domain.ChangeEvent) {
	reduce(c, ev, c.adjustments, func(a *domain.Adjustment) string { return a.ID })
}

// reduce applies one change event to one of the cache's maps. Every
// unexpected external notification is legitimate: other processes share the
// store, so inserts and updates replace wholesale and deletes remove by the
// old record's id.
func reduce[T any](c *Cache, ev domain.ChangeEvent, m map[string]*T, id func(*T) string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev.Type {
	case domain.EventInsert, domain.EventUpdate:
		row := new(T)
		if err := json.Unmarshal(ev.New, row); err != nil {
			c.logger.Error().Err(err).Str("table", ev.Table).Str("entity_id", ev.EntityID).Msg("undecodable feed payload")
			return
		}

		m[id(row)] = row

	case domain.EventDelete:
		delete(m, ev.EntityID)
	}
}

// Balance returns the cached balance with the given id.
func (c *Cache) Balance(id string) (*domain.Balance, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	b, ok := c.balances[id]

	return b, ok
}

// Balances returns a snapshot of all cached balances ordered by key.
func (c *Cache) Balances() []*domain.Balance {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*domain.Balance, 0, len(c.balances))
	for _, b := range c.balances {
		out = append(out, b)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.OwnerID != b.OwnerID {
			return a.OwnerID < b.OwnerID
		}
		if a.CategoryID != b.CategoryID {
			return a.CategoryID < b.CategoryID
		}
		return a.Kind < b.Kind
	})

	return out
}

// EntriesByBatch returns cached entries derived from one settlement batch,
// oldest first.
func (c *Cache) EntriesByBatch(batchID string) []*domain.Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []*domain.Entry
	for _, e := range c.entries {
		if e.BatchID != nil && *e.BatchID == batchID {
			out = append(out, e)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })

	return out
}

// Batches returns a snapshot of all cached settlement batches, newest first.
func (c *Cache) Batches() []*domain.SettlementBatch {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*domain.SettlementBatch, 0, len(c.batches))
	for _, b := range c.batches {
		out = append(out, b)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	return out
}

// Adjustments returns a snapshot of all cached adjustments, newest first.
func (c *Cache) Adjustments() []*domain.Adjustment {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*domain.Adjustment, 0, len(c.adjustments))
	for _, a := range c.adjustments {
		out = append(out, a)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	return out
}
