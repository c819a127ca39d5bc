package main

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hazim/reckon/internal/domain"
	"github.com/hazim/reckon/internal/feed"
)

func TestCachedBalances_ServesFromCache(t *testing.T) {
	cache := feed.NewCache(zerolog.Nop())

	row, err := json.Marshal(&domain.Balance{ID: "bal-1", OwnerID: "o-1", CategoryID: 1, Kind: domain.KindPrimary})
	if err != nil {
		t.Fatal(err)
	}
	cache.ReduceBalance(domain.ChangeEvent{
		Table:    domain.TableBalances,
		Type:     domain.EventInsert,
		EntityID: "bal-1",
		New:      row,
	})

	svc := &cachedBalances{cache: cache}

	b, err := svc.Get(context.Background(), "bal-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.OwnerID != "o-1" {
		t.Fatalf("expected cached balance, got %+v", b)
	}

	balances, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(balances) != 1 {
		t.Fatalf("expected one cached balance, got %d", len(balances))
	}
}
