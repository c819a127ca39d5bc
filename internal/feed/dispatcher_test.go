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

// runDispatcher feeds the given events through a fresh dispatcher with one
// registered table and returns the events that reached the reducer.
func runDispatcher(t *testing.T, table string, track func(*Suppressor), events ...domain.ChangeEvent) []domain.ChangeEvent {
	t.Helper()

	ch := make(chan domain.ChangeEvent, len(events))
	d := NewDispatcher(ch, time.Second, zerolog.Nop(), nil)

	var handled []domain.ChangeEvent
	s := d.Register(table, func(ev domain.ChangeEvent) {
		handled = append(handled, ev)
	})

	if track != nil {
		track(s)
	}

	for _, ev := range events {
		ch <- ev
	}
	close(ch)

	require.NoError(t, d.Run(context.Background()))

	return handled
}

func TestDispatcher_DeliversForeignEvents(t *testing.T) {
	handled := runDispatcher(t, domain.TableBalances, nil,
		domain.ChangeEvent{Table: domain.TableBalances, Type: domain.EventUpdate, EntityID: "bal-1"},
		domain.ChangeEvent{Table: domain.TableBalances, Type: domain.EventDelete, EntityID: "bal-2"},
	)

	require.Len(t, handled, 2)
	assert.Equal(t, "bal-1", handled[0].EntityID)
	assert.Equal(t, "bal-2", handled[1].EntityID)
}

func TestDispatcher_OwnEchoStillReachesReducer(t *testing.T) {
	var supp *Suppressor
	handled := runDispatcher(t, domain.TableBalances,
		func(s *Suppressor) {
			supp = s
			s.Track("bal-1", domain.EventUpdate)
		},
		// The echo of our own write, then a genuinely foreign update. Both
		// must reach the reducer: the mirror has to carry the row this
		// process committed, not the state before it.
		domain.ChangeEvent{Table: domain.TableBalances, Type: domain.EventUpdate, EntityID: "bal-1"},
		domain.ChangeEvent{Table: domain.TableBalances, Type: domain.EventUpdate, EntityID: "bal-1"},
	)

	require.Len(t, handled, 2)
	// The first event consumed the tracked expectation.
	assert.False(t, supp.ShouldSuppress("bal-1", domain.EventUpdate))
}

func TestDispatcher_OwnWriteEchoUpdatesCache(t *testing.T) {
	cache := NewCache(zerolog.Nop())

	seed, err := json.Marshal(&domain.Balance{ID: "bal-1", OwnerID: "o-1", CategoryID: 1, Kind: domain.KindPrimary})
	require.NoError(t, err)
	cache.ReduceBalance(domain.ChangeEvent{Table: domain.TableBalances, Type: domain.EventInsert, EntityID: "bal-1", New: seed})

	ch := make(chan domain.ChangeEvent, 1)
	d := NewDispatcher(ch, time.Second, zerolog.Nop(), nil)
	s := d.Register(domain.TableBalances, cache.ReduceBalance)

	// A write path tracks its update, commits total -10, and the feed
	// echoes the committed row back.
	s.Track("bal-1", domain.EventUpdate)

	row, err := json.Marshal(&domain.Balance{ID: "bal-1", OwnerID: "o-1", CategoryID: 1, Kind: domain.KindPrimary, Total: decimal.NewFromInt(-10)})
	require.NoError(t, err)
	ch <- domain.ChangeEvent{Table: domain.TableBalances, Type: domain.EventUpdate, EntityID: "bal-1", New: row}
	close(ch)

	require.NoError(t, d.Run(context.Background()))

	b, ok := cache.Balance("bal-1")
	require.True(t, ok)
	assert.True(t, b.Total.Equal(decimal.NewFromInt(-10)), "cache total = %s", b.Total)
}

func TestDispatcher_IgnoresUnregisteredTable(t *testing.T) {
	handled := runDispatcher(t, domain.TableBalances, nil,
		domain.ChangeEvent{Table: "unknown_table", Type: domain.EventInsert, EntityID: "x-1"},
	)

	assert.Empty(t, handled)
}

func TestDispatcher_IgnoresEventsWithoutEntityID(t *testing.T) {
	handled := runDispatcher(t, domain.TableBalances, nil,
		domain.ChangeEvent{Table: domain.TableBalances, Type: domain.EventInsert},
	)

	assert.Empty(t, handled)
}

func TestDispatcher_RunStopsOnCancel(t *testing.T) {
	ch := make(chan domain.ChangeEvent)
	d := NewDispatcher(ch, time.Second, zerolog.Nop(), nil)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop on cancel")
	}
}

func TestDispatcher_TrackerReturnsRegisteredSuppressor(t *testing.T) {
	d := NewDispatcher(make(chan domain.ChangeEvent), time.Second, zerolog.Nop(), nil)

	s := d.Register(domain.TableEntries, func(domain.ChangeEvent) {})

	assert.Same(t, s, d.Tracker(domain.TableEntries))
	assert.Nil(t, d.Tracker(domain.TableBalances))
}
