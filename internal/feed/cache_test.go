package feed

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazim/reckon/internal/domain"
)

type fakeCacheSource struct {
	balances    []*domain.Balance
	entries     []*domain.Entry
	batches     []*domain.SettlementBatch
	adjustments []*domain.Adjustment
	err         error
}

func (f *fakeCacheSource) ListBalances(context.Context) ([]*domain.Balance, error) {
	return f.balances, f.err
}

func (f *fakeCacheSource) ListEntries(context.Context) ([]*domain.Entry, error) {
	return f.entries, f.err
}

func (f *fakeCacheSource) ListBatches(context.Context) ([]*domain.SettlementBatch, error) {
	return f.batches, f.err
}

func (f *fakeCacheSource) ListAdjustments(context.Context) ([]*domain.Adjustment, error) {
	return f.adjustments, f.err
}

func changeEvent(t *testing.T, table string, typ domain.EventType, entityID string, row any) domain.ChangeEvent {
	t.Helper()

	ev := domain.ChangeEvent{Table: table, Type: typ, EntityID: entityID}

	if row != nil {
		raw, err := json.Marshal(row)
		require.NoError(t, err)
		ev.New = raw
	}

	return ev
}

func TestCache_Load(t *testing.T) {
	c := NewCache(zerolog.Nop())

	src := &fakeCacheSource{
		balances: []*domain.Balance{
			{ID: "bal-1", OwnerID: "o-1", CategoryID: 1, Kind: domain.KindPrimary},
		},
		entries: []*domain.Entry{
			{ID: "ent-1", BalanceID: "bal-1", Amount: decimal.NewFromInt(-10)},
		},
		batches: []*domain.SettlementBatch{
			{ID: "bat-1", Status: domain.BatchStatusProcessed},
		},
		adjustments: []*domain.Adjustment{
			{ID: "adj-1", Status: domain.AdjustmentStatusPending},
		},
	}

	require.NoError(t, c.Load(context.Background(), src))

	b, ok := c.Balance("bal-1")
	require.True(t, ok)
	assert.Equal(t, "o-1", b.OwnerID)
	assert.Len(t, c.Batches(), 1)
	assert.Len(t, c.Adjustments(), 1)
}

func TestCache_ReduceBalanceInsertUpdateDelete(t *testing.T) {
	c := NewCache(zerolog.Nop())

	bal := &domain.Balance{ID: "bal-1", OwnerID: "o-1", CategoryID: 1, Kind: domain.KindPrimary, Total: decimal.Zero}
	c.ReduceBalance(changeEvent(t, domain.TableBalances, domain.EventInsert, bal.ID, bal))

	got, ok := c.Balance("bal-1")
	require.True(t, ok)
	assert.True(t, got.Total.IsZero())

	bal.Total = decimal.NewFromInt(-6)
	c.ReduceBalance(changeEvent(t, domain.TableBalances, domain.EventUpdate, bal.ID, bal))

	got, ok = c.Balance("bal-1")
	require.True(t, ok)
	assert.True(t, got.Total.Equal(decimal.NewFromInt(-6)))

	c.ReduceBalance(changeEvent(t, domain.TableBalances, domain.EventDelete, bal.ID, nil))

	_, ok = c.Balance("bal-1")
	assert.False(t, ok)
}

func TestCache_ReduceIgnoresUndecodablePayload(t *testing.T) {
	c := NewCache(zerolog.Nop())

	c.ReduceBalance(domain.ChangeEvent{
		Table:    domain.TableBalances,
		Type:     domain.EventInsert,
		EntityID: "bal-1",
		New:      json.RawMessage(`{"Total": "not a number"`),
	})

	_, ok := c.Balance("bal-1")
	assert.False(t, ok)
}

func TestCache_BalancesOrderedByKey(t *testing.T) {
	c := NewCache(zerolog.Nop())

	rows := []*domain.Balance{
		{ID: "b-3", OwnerID: "o-2", CategoryID: 1, Kind: domain.KindPrimary},
		{ID: "b-2", OwnerID: "o-1", CategoryID: 2, Kind: domain.KindPrimary},
		{ID: "b-1", OwnerID: "o-1", CategoryID: 1, Kind: domain.KindSecondary},
		{ID: "b-0", OwnerID: "o-1", CategoryID: 1, Kind: domain.KindPrimary},
	}
	for _, b := range rows {
		c.ReduceBalance(changeEvent(t, domain.TableBalances, domain.EventInsert, b.ID, b))
	}

	var ids []string
	for _, b := range c.Balances() {
		ids = append(ids, b.ID)
	}

	assert.Equal(t, []string{"b-0", "b-1", "b-2", "b-3"}, ids)
}

func TestCache_EntriesByBatchOldestFirst(t *testing.T) {
	c := NewCache(zerolog.Nop())

	batchID := "bat-1"
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	entries := []*domain.Entry{
		{ID: "ent-2", BatchID: &batchID, CreatedAt: base.Add(time.Minute)},
		{ID: "ent-1", BatchID: &batchID, CreatedAt: base},
		{ID: "ent-3", CreatedAt: base}, // not from the batch
	}
	for _, e := range entries {
		c.ReduceEntry(changeEvent(t, domain.TableEntries, domain.EventInsert, e.ID, e))
	}

	got := c.EntriesByBatch(batchID)
	require.Len(t, got, 2)
	assert.Equal(t, "ent-1", got[0].ID)
	assert.Equal(t, "ent-2", got[1].ID)
}

func TestCache_BatchesNewestFirst(t *testing.T) {
	c := NewCache(zerolog.Nop())

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for _, b := range []*domain.SettlementBatch{
		{ID: "bat-old", CreatedAt: base},
		{ID: "bat-new", CreatedAt: base.Add(time.Hour)},
	} {
		c.ReduceBatch(changeEvent(t, domain.TableBatches, domain.EventInsert, b.ID, b))
	}

	got := c.Batches()
	require.Len(t, got, 2)
	assert.Equal(t, "bat-new", got[0].ID)
	assert.Equal(t, "bat-old", got[1].ID)
}

func TestCache_ReduceAdjustmentStatusChange(t *testing.T) {
	c := NewCache(zerolog.Nop())

	adj := &domain.Adjustment{ID: "adj-1", OwnerID: "o-1", Status: domain.AdjustmentStatusPending}
	c.ReduceAdjustment(changeEvent(t, domain.TableAdjustments, domain.EventInsert, adj.ID, adj))

	adj.Status = domain.AdjustmentStatusApproved
	c.ReduceAdjustment(changeEvent(t, domain.TableAdjustments, domain.EventUpdate, adj.ID, adj))

	got := c.Adjustments()
	require.Len(t, got, 1)
	assert.Equal(t, domain.AdjustmentStatusApproved, got[0].Status)
}

func TestCache_Close(t *testing.T) {
	c := NewCache(zerolog.Nop())

	bal := &domain.Balance{ID: "bal-1"}
	c.ReduceBalance(changeEvent(t, domain.TableBalances, domain.EventInsert, bal.ID, bal))

	c.Close()

	_, ok := c.Balance("bal-1")
	assert.False(t, ok)
	assert.Empty(t, c.Balances())
}
