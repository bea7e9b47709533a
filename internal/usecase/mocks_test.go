package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xavierca1/leadfunnel/internal/entity"
	"github.com/xavierca1/leadfunnel/internal/infra/memory"
)

// MockDispatcher
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, msg OutboundMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// MockPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, n *entity.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

// MockSheet
type MockSheet struct {
	mock.Mock
}

func (m *MockSheet) AppendLead(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

// MockLanguageModel
type MockLanguageModel struct {
	mock.Mock
}

func (m *MockLanguageModel) Complete(ctx context.Context, system string, history []ChatMessage) (string, error) {
	args := m.Called(ctx, system, history)
	return args.String(0), args.Error(1)
}

// MockCheckoutGateway
type MockCheckoutGateway struct {
	mock.Mock
}

func (m *MockCheckoutGateway) CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (*CheckoutSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CheckoutSession), args.Error(1)
}

// MockPlanRepository
type MockPlanRepository struct {
	mock.Mock
}

func (m *MockPlanRepository) FindByID(ctx context.Context, id string) (*entity.Plan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Plan), args.Error(1)
}

func (m *MockPlanRepository) List(ctx context.Context) ([]*entity.Plan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Plan), args.Error(1)
}

// countingRecorder keeps domain counters in memory.
type countingRecorder struct {
	mu       sync.Mutex
	captured map[entity.Source]int
	sent     map[entity.Channel]int
	blocked  map[entity.Channel]int
	errors   map[string]int
	failed   map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{
		captured: map[entity.Source]int{},
		sent:     map[entity.Channel]int{},
		blocked:  map[entity.Channel]int{},
		errors:   map[string]int{},
		failed:   map[string]int{},
	}
}

func (r *countingRecorder) LeadCaptured(s entity.Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.captured[s]++
}

func (r *countingRecorder) OutreachSent(c entity.Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent[c]++
}

func (r *countingRecorder) OutreachBlocked(c entity.Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blocked[c]++
}

func (r *countingRecorder) IntegrationError(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors[s]++
}

func (r *countingRecorder) TaskFailed(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed[s]++
}

func (r *countingRecorder) taskFailures(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failed[name]
}

// testClock advances one second per call so timestamps are distinct.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newTestStore(t *testing.T) *LeadStore {
	t.Helper()
	repo := memory.NewLeadRepository()
	require.NoError(t, repo.Open(context.Background()))
	t.Cleanup(func() { repo.Close() })

	store := NewLeadStore(repo, ConflictRetry, 3, zap.NewNop())
	store.Now = newTestClock().Now
	return store
}

func mustCreate(t *testing.T, store *LeadStore, partial entity.Lead) *entity.Lead {
	t.Helper()
	lead, err := store.Create(context.Background(), partial)
	require.NoError(t, err)
	return lead
}
