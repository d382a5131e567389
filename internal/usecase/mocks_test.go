package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/alekus2/portifolioalek/internal/adapters/authapi"
	natsadapter "github.com/alekus2/portifolioalek/internal/adapters/nats"
	"github.com/alekus2/portifolioalek/internal/domain"
)

type mockProfileRepo struct {
	mu         sync.Mutex
	rows       map[string]*domain.Profile
	upserts    int
	reads      int
	lastActive map[string]time.Time
	upsertErr  error
	panicMsg   string
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{rows: map[string]*domain.Profile{}, lastActive: map[string]time.Time{}}
}

func (m *mockProfileRepo) CreateOrUpdate(_ context.Context, id string, fields domain.ProfileFields) (*domain.Profile, error) {
	if strings.TrimSpace(id) == "" {
		return nil, &domain.ValidationError{Field: "id", Reason: "must not be empty"}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.panicMsg != "" {
		panic(m.panicMsg)
	}
	if m.upsertErr != nil {
		return nil, m.upsertErr
	}
	m.upserts++
	row, ok := m.rows[id]
	if !ok {
		row = &domain.Profile{ID: id, Role: domain.DefaultRole}
		m.rows[id] = row
	}
	row.Email = fields.Email
	if fields.WithDetails {
		row.Nome = fields.Nome
		row.DataNascimento = fields.DataNascimento
	}
	clone := *row
	return &clone, nil
}

func (m *mockProfileRepo) Read(_ context.Context, id string) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	row, ok := m.rows[id]
	if !ok {
		return nil, nil
	}
	clone := *row
	return &clone, nil
}

func (m *mockProfileRepo) UpdateLastActive(_ context.Context, id string, ts time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastActive[id] = ts
}

func (m *mockProfileRepo) rowCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type mockPendingStore struct {
	mu      sync.Mutex
	entries map[string]domain.PendingRegistration
	reads   int
	clears  int
}

func newMockPendingStore() *mockPendingStore {
	return &mockPendingStore{entries: map[string]domain.PendingRegistration{}}
}

func pendingCacheKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (m *mockPendingStore) Save(_ context.Context, email string, reg domain.PendingRegistration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[pendingCacheKey(email)] = reg
}

func (m *mockPendingStore) Read(_ context.Context, email string) *domain.PendingRegistration {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	reg, ok := m.entries[pendingCacheKey(email)]
	if !ok {
		return nil
	}
	clone := reg
	return &clone
}

func (m *mockPendingStore) Clear(_ context.Context, email string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clears++
	delete(m.entries, pendingCacheKey(email))
}

func (m *mockPendingStore) has(email string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[pendingCacheKey(email)]
	return ok
}

type stubProvider struct {
	signupRes      *authapi.SignupResult
	signupErr      error
	signinIdentity *domain.Identity
	signinErr      error
	signoutErr     error
	signupCalls    int
	signoutCalls   int
}

func (p *stubProvider) SignUp(_ context.Context, _, _ string) (*authapi.SignupResult, error) {
	p.signupCalls++
	return p.signupRes, p.signupErr
}

func (p *stubProvider) SignInWithPassword(_ context.Context, _, _ string) (*domain.Identity, error) {
	if p.signinErr != nil {
		return nil, p.signinErr
	}
	return p.signinIdentity, nil
}

func (p *stubProvider) SignOut(_ context.Context) error {
	p.signoutCalls++
	return p.signoutErr
}

type stubSubscription struct {
	unsubscribed int
	err          error
}

func (s *stubSubscription) Unsubscribe() error {
	s.unsubscribed++
	return s.err
}

type stubSessionSource struct {
	sub        *stubSubscription
	subscribed int
	err        error
	handler    func(domain.SessionEvent)
}

func (s *stubSessionSource) Subscribe(handler func(domain.SessionEvent)) (natsadapter.Subscription, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.subscribed++
	s.handler = handler
	return s.sub, nil
}

func strPtr(s string) *string { return &s }

func datePtr(value string) *time.Time {
	ts, err := time.Parse(dateLayout, value)
	if err != nil {
		panic(err)
	}
	return &ts
}
