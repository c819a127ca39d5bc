package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hazim/reckon/internal/domain"
)

type fakeBalanceRepo struct {
	mu       sync.RWMutex
	balances map[string]*domain.Balance

	createErr      error
	updateTotalErr error
}

func newFakeBalanceRepo() *fakeBalanceRepo {
	return &fakeBalanceRepo{balances: make(map[string]*domain.Balance)}
}

func (f *fakeBalanceRepo) Create(_ context.Context, balance *domain.Balance) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.balances {
		if b.Key() == balance.Key() {
			return domain.ErrBalanceExists
		}
	}
	cp := *balance
	f.balances[balance.ID] = &cp
	return nil
}

func (f *fakeBalanceRepo) GetByID(_ context.Context, id string) (*domain.Balance, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if b, ok := f.balances[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, domain.ErrBalanceNotFound
}

func (f *fakeBalanceRepo) GetByKey(_ context.Context, key domain.BalanceKey) (*domain.Balance, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, b := range f.balances {
		if b.Key() == key {
			cp := *b
			return &cp, nil
		}
	}
	return nil, domain.ErrBalanceNotFound
}

func (f *fakeBalanceRepo) UpdateTotal(_ context.Context, id string, total decimal.Decimal, updatedAt time.Time) error {
	if f.updateTotalErr != nil {
		return f.updateTotalErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.balances[id]
	if !ok {
		return domain.ErrBalanceNotFound
	}
	b.Total = total
	b.UpdatedAt = updatedAt
	return nil
}

func (f *fakeBalanceRepo) ResetAll(_ context.Context, updatedAt time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.balances {
		b.Total = decimal.Zero
		b.UpdatedAt = updatedAt
	}
	return len(f.balances), nil
}

func (f *fakeBalanceRepo) List(_ context.Context) ([]*domain.Balance, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]*domain.Balance, 0, len(f.balances))
	for _, b := range f.balances {
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeEntryRepo struct {
	mu      sync.RWMutex
	entries map[string]*domain.Entry

	createErr  error
	failCreate map[string]error // keyed by owner ID
}

func newFakeEntryRepo() *fakeEntryRepo {
	return &fakeEntryRepo{entries: make(map[string]*domain.Entry)}
}

func (f *fakeEntryRepo) Create(_ context.Context, entry *domain.Entry) error {
	if f.createErr != nil {
		return f.createErr
	}
	if err, ok := f.failCreate[entry.OwnerID]; ok {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *entry
	f.entries[entry.ID] = &cp
	return nil
}

func (f *fakeEntryRepo) GetByID(_ context.Context, id string) (*domain.Entry, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if e, ok := f.entries[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, domain.ErrEntryNotFound
}

func (f *fakeEntryRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.entries[id]; !ok {
		return domain.ErrEntryNotFound
	}
	delete(f.entries, id)
	return nil
}

func (f *fakeEntryRepo) ListByBatch(_ context.Context, batchID string) ([]*domain.Entry, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var out []*domain.Entry
	for _, e := range f.entries {
		if e.BatchID != nil && *e.BatchID == batchID {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeEntryRepo) List(_ context.Context) ([]*domain.Entry, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]*domain.Entry, 0, len(f.entries))
	for _, e := range f.entries {
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeBatchRepo struct {
	mu      sync.RWMutex
	batches map[string]*domain.SettlementBatch
}

func newFakeBatchRepo() *fakeBatchRepo {
	return &fakeBatchRepo{batches: make(map[string]*domain.SettlementBatch)}
}

func (f *fakeBatchRepo) Create(_ context.Context, b *domain.SettlementBatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *b
	f.batches[b.ID] = &cp
	return nil
}

func (f *fakeBatchRepo) GetByID(_ context.Context, id string) (*domain.SettlementBatch, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if b, ok := f.batches[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, domain.ErrBatchNotFound
}

func (f *fakeBatchRepo) Update(_ context.Context, b *domain.SettlementBatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.batches[b.ID]; !ok {
		return domain.ErrBatchNotFound
	}
	cp := *b
	f.batches[b.ID] = &cp
	return nil
}

func (f *fakeBatchRepo) UpdateStatus(_ context.Context, id string, status domain.BatchStatus, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.batches[id]
	if !ok {
		return domain.ErrBatchNotFound
	}
	b.Status = status
	b.UpdatedAt = updatedAt
	return nil
}

func (f *fakeBatchRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.batches[id]; !ok {
		return domain.ErrBatchNotFound
	}
	delete(f.batches, id)
	return nil
}

func (f *fakeBatchRepo) ListOldestFirst(_ context.Context) ([]*domain.SettlementBatch, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]*domain.SettlementBatch, 0, len(f.batches))
	for _, b := range f.batches {
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeBatchRepo) List(ctx context.Context) ([]*domain.SettlementBatch, error) {
	return f.ListOldestFirst(ctx)
}

type fakeAdjustmentRepo struct {
	mu          sync.RWMutex
	adjustments map[string]*domain.Adjustment
}

func newFakeAdjustmentRepo() *fakeAdjustmentRepo {
	return &fakeAdjustmentRepo{adjustments: make(map[string]*domain.Adjustment)}
}

func (f *fakeAdjustmentRepo) Create(_ context.Context, adj *domain.Adjustment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *adj
	f.adjustments[adj.ID] = &cp
	return nil
}

func (f *fakeAdjustmentRepo) GetByID(_ context.Context, id string) (*domain.Adjustment, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if a, ok := f.adjustments[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, domain.ErrAdjustmentNotFound
}

func (f *fakeAdjustmentRepo) UpdateStatus(_ context.Context, id string, status domain.AdjustmentStatus, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.adjustments[id]
	if !ok {
		return domain.ErrAdjustmentNotFound
	}
	a.Status = status
	a.UpdatedAt = updatedAt
	return nil
}

func (f *fakeAdjustmentRepo) ListApprovedOldestFirst(_ context.Context) ([]*domain.Adjustment, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var out []*domain.Adjustment
	for _, a := range f.adjustments {
		if a.Status == domain.AdjustmentStatusApproved {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeAdjustmentRepo) List(_ context.Context) ([]*domain.Adjustment, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]*domain.Adjustment, 0, len(f.adjustments))
	for _, a := range f.adjustments {
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type fakeOwnerRepo struct {
	owners map[string]*domain.Owner // keyed by identity
}

func newFakeOwnerRepo(owners ...*domain.Owner) *fakeOwnerRepo {
	f := &fakeOwnerRepo{owners: make(map[string]*domain.Owner)}
	for _, o := range owners {
		f.owners[o.Identity()] = o
	}
	return f
}

func (f *fakeOwnerRepo) GetByID(_ context.Context, id string) (*domain.Owner, error) {
	for _, o := range f.owners {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, domain.ErrOwnerNotFound
}

func (f *fakeOwnerRepo) GetByIdentity(_ context.Context, identity string) (*domain.Owner, error) {
	if o, ok := f.owners[identity]; ok {
		return o, nil
	}
	return nil, domain.ErrOwnerNotFound
}

func (f *fakeOwnerRepo) List(_ context.Context) ([]*domain.Owner, error) {
	out := make([]*domain.Owner, 0, len(f.owners))
	for _, o := range f.owners {
		out = append(out, o)
	}
	return out, nil
}

type fakeCategoryRepo struct {
	categories map[int64]*domain.Category
}

func newFakeCategoryRepo(categories ...*domain.Category) *fakeCategoryRepo {
	f := &fakeCategoryRepo{categories: make(map[int64]*domain.Category)}
	for _, c := range categories {
		f.categories[c.ID] = c
	}
	return f
}

func (f *fakeCategoryRepo) GetByID(_ context.Context, id int64) (*domain.Category, error) {
	if c, ok := f.categories[id]; ok {
		return c, nil
	}
	return nil, domain.ErrCategoryNotFound
}

func (f *fakeCategoryRepo) List(_ context.Context) ([]*domain.Category, error) {
	out := make([]*domain.Category, 0, len(f.categories))
	for _, c := range f.categories {
		out = append(out, c)
	}
	return out, nil
}

type fakeRunRepo struct {
	mu   sync.Mutex
	runs []*domain.ReconciliationRun
}

func (f *fakeRunRepo) Create(_ context.Context, run *domain.ReconciliationRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *run
	f.runs = append(f.runs, &cp)
	return nil
}

func (f *fakeRunRepo) List(_ context.Context, limit int) ([]*domain.ReconciliationRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.runs
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// fakeTracker records every registration so tests can assert echoes were
// tracked before writes.
type fakeTracker struct {
	mu      sync.Mutex
	tracked []string
}

func (f *fakeTracker) Track(entityID string, kind domain.EventType) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tracked = append(f.tracked, entityID+":"+string(kind))
}

func (f *fakeTracker) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tracked)
}

type fakeAlerter struct {
	mu     sync.Mutex
	alerts []string
}

func (f *fakeAlerter) Alert(_ context.Context, severity, message string, _ map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerts = append(f.alerts, severity+": "+message)
}

func (f *fakeAlerter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.alerts)
}

type seqIDGen struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDGen) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id-%04d", g.n)
}
