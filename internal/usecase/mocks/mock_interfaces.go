//	mockgen -source=internal/usecase/interfaces.go -destination=internal/usecase/mocks/mock_interfaces.go -package=mocks
//

// Package mocks is a generated GoMock package.
package mocks

import (
	context "context"
	reflect "reflect"
	time "time"

	domain "github.com/hazim/reckon/internal/domain"
	decimal "github.com/shopspring/decimal"
	gomock "go.uber.org/mock/gomock"
)

// MockBalanceRepository is a mock of BalanceRepository interface.
type MockBalanceRepository struct {
	ctrl     *gomock.Controller
	recorder *MockBalanceRepositoryMockRecorder
	isgomock struct{}
}

// MockBalanceRepositoryMockRecorder is the mock recorder for MockBalanceRepository.
type MockBalanceRepositoryMockRecorder struct {
	mock *MockBalanceRepository
}

// NewMockBalanceRepository creates a new mock instance.
func NewMockBalanceRepository(ctrl *gomock.Controller) *MockBalanceRepository {
	mock := &MockBalanceRepository{ctrl: ctrl}
	mock.recorder = &MockBalanceRepositoryMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockBalanceRepository) EXPECT() *MockBalanceRepositoryMockRecorder {
	return m.recorder
}

// Create mocks base method.
func (m *MockBalanceRepository) Create(ctx context.Context, balance *domain.Balance) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Create", ctx, balance)
	ret0, _ := ret[0].(error)
	return ret0
}

// Create indicates an expected call of Create.
func (mr *MockBalanceRepositoryMockRecorder) Create(ctx, balance any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Create", reflect.TypeOf((*MockBalanceRepository)(nil).Create), ctx, balance)
}

// GetByID mocks base method.
func (m *MockBalanceRepository) GetByID(ctx context.Context, id string) (*domain.Balance, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetByID", ctx, id)
	ret0, _ := ret[0].(*domain.Balance)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetByID indicates an expected call of GetByID.
func (mr *MockBalanceRepositoryMockRecorder) GetByID(ctx, id any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetByID", reflect.TypeOf((*MockBalanceRepository)(nil).GetByID), ctx, id)
}

// GetByKey mocks base method.
func (m *MockBalanceRepository) GetByKey(ctx context.Context, key domain.BalanceKey) (*domain.Balance, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetByKey", ctx, key)
	ret0, _ := ret[0].(*domain.Balance)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetByKey indicates an expected call of GetByKey.
func (mr *MockBalanceRepositoryMockRecorder) GetByKey(ctx, key any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetByKey", reflect.TypeOf((*MockBalanceRepository)(nil).GetByKey), ctx, key)
}

// List mocks base method.
func (m *MockBalanceRepository) List(ctx context.Context) ([]*domain.Balance, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "List", ctx)
	ret0, _ := ret[0].([]*domain.Balance)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// List indicates an expected call of List.
func (mr *MockBalanceRepositoryMockRecorder) List(ctx any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "List", reflect.TypeOf((*MockBalanceRepository)(nil).List), ctx)
}

// ResetAll mocks base method.
func (m *MockBalanceRepository) ResetAll(ctx context.Context, updatedAt time.Time) (int, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ResetAll", ctx, updatedAt)
	ret0, _ := ret[0].(int)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ResetAll indicates an expected call of ResetAll.
func (mr *MockBalanceRepositoryMockRecorder) ResetAll(ctx, updatedAt any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ResetAll", reflect.TypeOf((*MockBalanceRepository)(nil).ResetAll), ctx, updatedAt)
}

// UpdateTotal mocks base method.
func (m *MockBalanceRepository) UpdateTotal(ctx context.Context, id string, total decimal.Decimal, updatedAt time.Time) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "UpdateTotal", ctx, id, total, updatedAt)
	ret0, _ := ret[0].(error)
	return ret0
}

// UpdateTotal indicates an expected call of UpdateTotal.
func (mr *MockBalanceRepositoryMockRecorder) UpdateTotal(ctx, id, total, updatedAt any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "UpdateTotal", reflect.TypeOf((*MockBalanceRepository)(nil).UpdateTotal), ctx, id, total, updatedAt)
}

// MockEntryRepository is a mock of EntryRepository interface.
type MockEntryRepository struct {
	ctrl     *gomock.Controller
	recorder *MockEntryRepositoryMockRecorder
	isgomock struct{}
}

// MockEntryRepositoryMockRecorder is the mock recorder for MockEntryRepository.
type MockEntryRepositoryMockRecorder struct {
	mock *MockEntryRepository
}

// NewMockEntryRepository creates a new mock instance.
func NewMockEntryRepository(ctrl *gomock.Controller) *MockEntryRepository {
	mock := &MockEntryRepository{ctrl: ctrl}
	mock.recorder = &MockEntryRepositoryMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockEntryRepository) EXPECT() *MockEntryRepositoryMockRecorder {
	return m.recorder
}

// Create mocks base method.
func (m *MockEntryRepository) Create(ctx context.Context, entry *domain.Entry) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Create", ctx, entry)
	ret0, _ := ret[0].(error)
	return ret0
}

// Create indicates an expected call of Create.
func (mr *MockEntryRepositoryMockRecorder) Create(ctx, entry any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Create", reflect.TypeOf((*MockEntryRepository)(nil).Create), ctx, entry)
}

// Delete mocks base method.
func (m *MockEntryRepository) Delete(ctx context.Context, id string) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Delete", ctx, id)
	ret0, _ := ret[0].(error)
	return ret0
}

// Delete indicates an expected call of Delete.
func (mr *MockEntryRepositoryMockRecorder) Delete(ctx, id any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Delete", reflect.TypeOf((*MockEntryRepository)(nil).Delete), ctx, id)
}

// GetByID mocks base method.
func (m *MockEntryRepository) GetByID(ctx context.Context, id string) (*domain.Entry, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetByID", ctx, id)
	ret0, _ := ret[0].(*domain.Entry)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetByID indicates an expected call of GetByID.
func (mr *MockEntryRepositoryMockRecorder) GetByID(ctx, id any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetByID", reflect.TypeOf((*MockEntryRepository)(nil).GetByID), ctx, id)
}

// List mocks base method.
func (m *MockEntryRepository) List(ctx context.Context) ([]*domain.Entry, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "List", ctx)
	ret0, _ := ret[0].([]*domain.Entry)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// List indicates an expected call of List.
func (mr *MockEntryRepositoryMockRecorder) List(ctx any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "List", reflect.TypeOf((*MockEntryRepository)(nil).List), ctx)
}

// ListByBatch mocks base method.
func (m *MockEntryRepository) ListByBatch(ctx context.Context, batchID string) ([]*domain.Entry, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListByBatch", ctx, batchID)
	ret0, _ := ret[0].([]*domain.Entry)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ListByBatch indicates an expected call of ListByBatch.
func (mr *MockEntryRepositoryMockRecorder) ListByBatch(ctx, batchID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListByBatch", reflect.TypeOf((*MockEntryRepository)(nil).ListByBatch), ctx, batchID)
}

// MockBatchRepository is a mock of BatchRepository interface.
type MockBatchRepository struct {
	ctrl     *gomock.Controller
	recorder *MockBatchRepositoryMockRecorder
	isgomock struct{}
}

// MockBatchRepositoryMockRecorder is the mock recorder for MockBatchRepository.
type MockBatchRepositoryMockRecorder struct {
	mock *MockBatchRepository
}

// NewMockBatchRepository creates a new mock instance.
func NewMockBatchRepository(ctrl *gomock.Controller) *MockBatchRepository {
	mock := &MockBatchRepository{ctrl: ctrl}
	mock.recorder = &MockBatchRepositoryMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockBatchRepository) EXPECT() *MockBatchRepositoryMockRecorder {
	return m.recorder
}

// Create mocks base method.
func (m *MockBatchRepository) Create(ctx context.Context, batch *domain.SettlementBatch) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Create", ctx, batch)
	ret0, _ := ret[0].(error)
	return ret0
}

// Create indicates an expected call of Create.
func (mr *MockBatchRepositoryMockRecorder) Create(ctx, batch any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Create", reflect.TypeOf((*MockBatchRepository)(nil).Create), ctx, batch)
}

// Delete mocks base method.
func (m *MockBatchRepository) Delete(ctx context.Context, id string) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Delete", ctx, id)
	ret0, _ := ret[0].(error)
	return ret0
}

// Delete indicates an expected call of Delete.
func (mr *MockBatchRepositoryMockRecorder) Delete(ctx, id any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Delete", reflect.TypeOf((*MockBatchRepository)(nil).Delete), ctx, id)
}

// GetByID mocks base method.
func (m *MockBatchRepository) GetByID(ctx context.Context, id string) (*domain.SettlementBatch, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetByID", ctx, id)
	ret0, _ := ret[0].(*domain.SettlementBatch)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetByID indicates an expected call of GetByID.
func (mr *MockBatchRepositoryMockRecorder) GetByID(ctx, id any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetByID", reflect.TypeOf((*MockBatchRepository)(nil).GetByID), ctx, id)
}

// List mocks base method.
func (m *MockBatchRepository) List(ctx context.Context) ([]*domain.SettlementBatch, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "List", ctx)
	ret0, _ := ret[0].([]*domain.SettlementBatch)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// List indicates an expected call of List.
func (mr *MockBatchRepositoryMockRecorder) List(ctx any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "List", reflect.TypeOf((*MockBatchRepository)(nil).List), ctx)
}

// ListOldestFirst mocks base method.
func (m *MockBatchRepository) ListOldestFirst(ctx context.Context) ([]*domain.SettlementBatch, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListOldestFirst", ctx)
	ret0, _ := ret[0].([]*domain.SettlementBatch)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ListOldestFirst indicates an expected call of ListOldestFirst.
func (mr *MockBatchRepositoryMockRecorder) ListOldestFirst(ctx any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListOldestFirst", reflect.TypeOf((*MockBatchRepository)(nil).ListOldestFirst), ctx)
}

// Update mocks base method.
func (m *MockBatchRepository) Update(ctx context.Context, batch *domain.SettlementBatch) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Update", ctx, batch)
	ret0, _ := ret[0].(error)
	return ret0
}

// Update indicates an expected call of Update.
func (mr *MockBatchRepositoryMockRecorder) Update(ctx, batch any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Update", reflect.TypeOf((*MockBatchRepository)(nil).Update), ctx, batch)
}

// UpdateStatus mocks base method.
func (m *MockBatchRepository) UpdateStatus(ctx context.Context, id string, status domain.BatchStatus, updatedAt time.Time) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "UpdateStatus", ctx, id, status, updatedAt)
	ret0, _ := ret[0].(error)
	return ret0
}

// UpdateStatus indicates an expected call of UpdateStatus.
func (mr *MockBatchRepositoryMockRecorder) UpdateStatus(ctx, id, status, updatedAt any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "UpdateStatus", reflect.TypeOf((*MockBatchRepository)(nil).UpdateStatus), ctx, id, status, updatedAt)
}

// MockAdjustmentRepository is a mock of AdjustmentRepository interface.
type MockAdjustmentRepository struct {
	ctrl     *gomock.Controller
	recorder *MockAdjustmentRepositoryMockRecorder
	isgomock struct{}
}

// MockAdjustmentRepositoryMockRecorder is the mock recorder for MockAdjustmentRepository.
type MockAdjustmentRepositoryMockRecorder struct {
	mock *MockAdjustmentRepository
}

// NewMockAdjustmentRepository creates a new mock instance.
func NewMockAdjustmentRepository(ctrl *gomock.Controller) *MockAdjustmentRepository {
	mock := &MockAdjustmentRepository{ctrl: ctrl}
	mock.recorder = &MockAdjustmentRepositoryMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockAdjustmentRepository) EXPECT() *MockAdjustmentRepositoryMockRecorder {
	return m.recorder
}

// Create mocks base method.
func (m *MockAdjustmentRepository) Create(ctx context.Context, adj *domain.Adjustment) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Create", ctx, adj)
	ret0, _ := ret[0].(error)
	return ret0
}

// Create indicates an expected call of Create.
func (mr *MockAdjustmentRepositoryMockRecorder) Create(ctx, adj any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Create", reflect.TypeOf((*MockAdjustmentRepository)(nil).Create), ctx, adj)
}

// GetByID mocks base method.
func (m *MockAdjustmentRepository) GetByID(ctx context.Context, id string) (*domain.Adjustment, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetByID", ctx, id)
	ret0, _ := ret[0].(*domain.Adjustment)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetByID indicates an expected call of GetByID.
func (mr *MockAdjustmentRepositoryMockRecorder) GetByID(ctx, id any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetByID", reflect.TypeOf((*MockAdjustmentRepository)(nil).GetByID), ctx, id)
}

// List mocks base method.
func (m *MockAdjustmentRepository) List(ctx context.Context) ([]*domain.Adjustment, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "List", ctx)
	ret0, _ := ret[0].([]*domain.Adjustment)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// List indicates an expected call of List.
func (mr *MockAdjustmentRepositoryMockRecorder) List(ctx any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "List", reflect.TypeOf((*MockAdjustmentRepository)(nil).List), ctx)
}

// ListApprovedOldestFirst mocks base method.
func (m *MockAdjustmentRepository) ListApprovedOldestFirst(ctx context.Context) ([]*domain.Adjustment, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListApprovedOldestFirst", ctx)
	ret0, _ := ret[0].([]*domain.Adjustment)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ListApprovedOldestFirst indicates an expected call of ListApprovedOldestFirst.
func (mr *MockAdjustmentRepositoryMockRecorder) ListApprovedOldestFirst(ctx any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListApprovedOldestFirst", reflect.TypeOf((*MockAdjustmentRepository)(nil).ListApprovedOldestFirst), ctx)
}

// UpdateStatus mocks base method.
func (m *MockAdjustmentRepository) UpdateStatus(ctx context.Context, id string, status domain.AdjustmentStatus, updatedAt time.Time) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "UpdateStatus", ctx, id, status, updatedAt)
	ret0, _ := ret[0].(error)
	return ret0
}

// UpdateStatus indicates an expected call of UpdateStatus.
func (mr *MockAdjustmentRepositoryMockRecorder) UpdateStatus(ctx, id, status, updatedAt any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "UpdateStatus", reflect.TypeOf((*MockAdjustmentRepository)(nil).UpdateStatus), ctx, id, status, updatedAt)
}

// MockOwnerRepository is a mock of OwnerRepository interface.
type MockOwnerRepository struct {
	ctrl     *gomock.Controller
	recorder *MockOwnerRepositoryMockRecorder
	isgomock struct{}
}

// MockOwnerRepositoryMockRecorder is the mock recorder for MockOwnerRepository.
type MockOwnerRepositoryMockRecorder struct {
	mock *MockOwnerRepository
}

// NewMockOwnerRepository creates a new mock instance.
func NewMockOwnerRepository(ctrl *gomock.Controller) *MockOwnerRepository {
	mock := &MockOwnerRepository{ctrl: ctrl}
	mock.recorder = &MockOwnerRepositoryMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockOwnerRepository) EXPECT() *MockOwnerRepositoryMockRecorder {
	return m.recorder
}

// GetByID mocks base method.
func (m *MockOwnerRepository) GetByID(ctx context.Context, id string) (*domain.Owner, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetByID", ctx, id)
	ret0, _ := ret[0].(*domain.Owner)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetByID indicates an expected call of GetByID.
func (mr *MockOwnerRepositoryMockRecorder) GetByID(ctx, id any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetByID", reflect.TypeOf((*MockOwnerRepository)(nil).GetByID), ctx, id)
}

// GetByIdentity mocks base method.
func (m *MockOwnerRepository) GetByIdentity(ctx context.Context, identity string) (*domain.Owner, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetByIdentity", ctx, identity)
	ret0, _ := ret[0].(*domain.Owner)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetByIdentity indicates an expected call of GetByIdentity.
func (mr *MockOwnerRepositoryMockRecorder) GetByIdentity(ctx, identity any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetByIdentity", reflect.TypeOf((*MockOwnerRepository)(nil).GetByIdentity), ctx, identity)
}

// List mocks base method.
func (m *MockOwnerRepository) List(ctx context.Context) ([]*domain.Owner, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "List", ctx)
	ret0, _ := ret[0].([]*domain.Owner)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// List indicates an expected call of List.
func (mr *MockOwnerRepositoryMockRecorder) List(ctx any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "List", reflect.TypeOf((*MockOwnerRepository)(nil).List), ctx)
}

// MockCategoryRepository is a mock of CategoryRepository interface.
type MockCategoryRepository struct {
	ctrl     *gomock.Controller
	recorder *MockCategoryRepositoryMockRecorder
	isgomock struct{}
}

// MockCategoryRepositoryMockRecorder is the mock recorder for MockCategoryRepository.
type MockCategoryRepositoryMockRecorder struct {
	mock *MockCategoryRepository
}

// NewMockCategoryRepository creates a new mock instance.
func NewMockCategoryRepository(ctrl *gomock.Controller) *MockCategoryRepository {
	mock := &MockCategoryRepository{ctrl: ctrl}
	mock.recorder = &MockCategoryRepositoryMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockCategoryRepository) EXPECT() *MockCategoryRepositoryMockRecorder {
	return m.recorder
}

// GetByID mocks base method.
func (m *MockCategoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetByID", ctx, id)
	ret0, _ := ret[0].(*domain.Category)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetByID indicates an expected call of GetByID.
func (mr *MockCategoryRepositoryMockRecorder) GetByID(ctx, id any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetByID", reflect.TypeOf((*MockCategoryRepository)(nil).GetByID), ctx, id)
}

// List mocks base method.
func (m *MockCategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "List", ctx)
	ret0, _ := ret[0].([]*domain.Category)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// List indicates an expected call of List.
func (mr *MockCategoryRepositoryMockRecorder) List(ctx any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "List", reflect.TypeOf((*MockCategoryRepository)(nil).List), ctx)
}

// MockReconciliationRunRepository is a mock of ReconciliationRunRepository interface.
type MockReconciliationRunRepository struct {
	ctrl     *gomock.Controller
	recorder *MockReconciliationRunRepositoryMockRecorder
	isgomock struct{}
}

// MockReconciliationRunRepositoryMockRecorder is the mock recorder for MockReconciliationRunRepository.
type MockReconciliationRunRepositoryMockRecorder struct {
	mock *MockReconciliationRunRepository
}

// NewMockReconciliationRunRepository creates a new mock instance.
func NewMockReconciliationRunRepository(ctrl *gomock.Controller) *MockReconciliationRunRepository {
	mock := &MockReconciliationRunRepository{ctrl: ctrl}
	mock.recorder = &MockReconciliationRunRepositoryMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockReconciliationRunRepository) EXPECT() *MockReconciliationRunRepositoryMockRecorder {
	return m.recorder
}

// Create mocks base method.
func (m *MockReconciliationRunRepository) Create(ctx context.Context, run *domain.ReconciliationRun) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Create", ctx, run)
	ret0, _ := ret[0].(error)
	return ret0
}

// Create indicates an expected call of Create.
func (mr *MockReconciliationRunRepositoryMockRecorder) Create(ctx, run any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Create", reflect.TypeOf((*MockReconciliationRunRepository)(nil).Create), ctx, run)
}

// List mocks base method.
func (m *MockReconciliationRunRepository) List(ctx context.Context, limit int) ([]*domain.ReconciliationRun, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "List", ctx, limit)
	ret0, _ := ret[0].([]*domain.ReconciliationRun)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// List indicates an expected call of List.
func (mr *MockReconciliationRunRepositoryMockRecorder) List(ctx, limit any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "List", reflect.TypeOf((*MockReconciliationRunRepository)(nil).List), ctx, limit)
}

// MockTracker is a mock of Tracker interface.
type MockTracker struct {
	ctrl     *gomock.Controller
	recorder *MockTrackerMockRecorder
	isgomock struct{}
}

// MockTrackerMockRecorder is the mock recorder for MockTracker.
type MockTrackerMockRecorder struct {
	mock *MockTracker
}

// NewMockTracker creates a new mock instance.
func NewMockTracker(ctrl *gomock.Controller) *MockTracker {
	mock := &MockTracker{ctrl: ctrl}
	mock.recorder = &MockTrackerMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockTracker) EXPECT() *MockTrackerMockRecorder {
	return m.recorder
}

// Track mocks base method.
func (m *MockTracker) Track(entityID string, kind domain.EventType) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "Track", entityID, kind)
}

// Track indicates an expected call of Track.
func (mr *MockTrackerMockRecorder) Track(entityID, kind any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Track", reflect.TypeOf((*MockTracker)(nil).Track), entityID, kind)
}

// MockAlerter is a mock of Alerter interface.
type MockAlerter struct {
	ctrl     *gomock.Controller
	recorder *MockAlerterMockRecorder
	isgomock struct{}
}

// MockAlerterMockRecorder is the mock recorder for MockAlerter.
type MockAlerterMockRecorder struct {
	mock *MockAlerter
}

// NewMockAlerter creates a new mock instance.
func NewMockAlerter(ctrl *gomock.Controller) *MockAlerter {
	mock := &MockAlerter{ctrl: ctrl}
	mock.recorder = &MockAlerterMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockAlerter) EXPECT() *MockAlerterMockRecorder {
	return m.recorder
}

// Alert mocks base method.
func (m *MockAlerter) Alert(ctx context.Context, severity, message string, fields map[string]string) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "Alert", ctx, severity, message, fields)
}

// Alert indicates an expected call of Alert.
func (mr *MockAlerterMockRecorder) Alert(ctx, severity, message, fields any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Alert", reflect.TypeOf((*MockAlerter)(nil).Alert), ctx, severity, message, fields)
}

// MockIDGenerator is a mock of IDGenerator interface.
type MockIDGenerator struct {
	ctrl     *gomock.Controller
	recorder *MockIDGeneratorMockRecorder
	isgomock struct{}
}

// MockIDGeneratorMockRecorder is the mock recorder for MockIDGenerator.
type MockIDGeneratorMockRecorder struct {
	mock *MockIDGenerator
}

// NewMockIDGenerator creates a new mock instance.
func NewMockIDGenerator(ctrl *gomock.Controller) *MockIDGenerator {
	mock := &MockIDGenerator{ctrl: ctrl}
	mock.recorder = &MockIDGeneratorMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockIDGenerator) EXPECT() *MockIDGeneratorMockRecorder {
	return m.recorder
}

// Generate mocks base method.
func (m *MockIDGenerator) Generate() string {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Generate")
	ret0, _ := ret[0].(string)
	return ret0
}

// Generate indicates an expected call of Generate.
func (mr *MockIDGeneratorMockRecorder) Generate() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Generate", reflect.TypeOf((*MockIDGenerator)(nil).Generate))
}

// MockIdempotencyStore is a mock of IdempotencyStore interface.
type MockIdempotencyStore struct {
	ctrl     *gomock.Controller
	recorder *MockIdempotencyStoreMockRecorder
	isgomock struct{}
}

// MockIdempotencyStoreMockRecorder is the mock recorder for MockIdempotencyStore.
type MockIdempotencyStoreMockRecorder struct {
	mock *MockIdempotencyStore
}

// NewMockIdempotencyStore creates a new mock instance.
func NewMockIdempotencyStore(ctrl *gomock.Controller) *MockIdempotencyStore {
	mock := &MockIdempotencyStore{ctrl: ctrl}
	mock.recorder = &MockIdempotencyStoreMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockIdempotencyStore) EXPECT() *MockIdempotencyStoreMockRecorder {
	return m.recorder
}

// CheckAndSet mocks base method.
func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "CheckAndSet", ctx, key, response, ttl)
	ret0, _ := ret[0].(bool)
	ret1, _ := ret[1].([]byte)
	ret2, _ := ret[2].(error)
	return ret0, ret1, ret2
}

// CheckAndSet indicates an expected call of CheckAndSet.
func (mr *MockIdempotencyStoreMockRecorder) CheckAndSet(ctx, key, response, ttl any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "CheckAndSet", reflect.TypeOf((*MockIdempotencyStore)(nil).CheckAndSet), ctx, key, response, ttl)
}

// Update mocks base method.
func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Update", ctx, key, response, ttl)
	ret0, _ := ret[0].(error)
	return ret0
}

// Update indicates an expected call of Update.
func (mr *MockIdempotencyStoreMockRecorder) Update(ctx, key, response, ttl any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Update", reflect.TypeOf((*MockIdempotencyStore)(nil).Update), ctx, key, response, ttl)
}
