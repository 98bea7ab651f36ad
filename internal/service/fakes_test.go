package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/prperemyshlev/wms-server/internal/domain"
	"github.com/prperemyshlev/wms-server/internal/repository"
	"github.com/prperemyshlev/wms-server/internal/utils"
)

const testSecret = "test-secret-key-that-is-at-least-32-characters-long"

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*domain.User)}
}

func (r *fakeUserRepo) conflict(u *domain.User) error {
	for _, other := range r.users {
		if other.ID == u.ID {
			continue
		}
		switch {
		case other.Email == u.Email:
			return repository.ErrDuplicateEmail
		case other.Nickname == u.Nickname:
			return repository.ErrDuplicateNickname
		case u.Provider != nil && other.Provider != nil && *other.Provider == *u.Provider &&
			*other.ProviderID == *u.ProviderID:
			return repository.ErrDuplicateProvider
		}
	}
	return nil
}

func (r *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.conflict(u); err != nil {
		return err
	}
	r.nextID++
	u.ID = r.nextID
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	stored := *u
	r.users[u.ID] = &stored
	return nil
}

func (r *fakeUserRepo) find(match func(*domain.User) bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			found := *u
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.ID == id })
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Email == email })
}

func (r *fakeUserRepo) GetByProvider(_ context.Context, provider, providerID string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool {
		return u.Provider != nil && *u.Provider == provider && *u.ProviderID == providerID
	})
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

func (r *fakeUserRepo) ExistsByNickname(_ context.Context, nickname string) (bool, error) {
	_, err := r.find(func(u *domain.User) bool { return u.Nickname == nickname })
	return err == nil, nil
}

func (r *fakeUserRepo) List(_ context.Context) ([]*domain.User, error) {
	return r.list(func(*domain.User) bool { return true }), nil
}

func (r *fakeUserRepo) ListActive(_ context.Context) ([]*domain.User, error) {
	return r.list(func(u *domain.User) bool { return !u.Deleted }), nil
}

func (r *fakeUserRepo) list(match func(*domain.User) bool) []*domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.User
	for _, u := range r.users {
		if match(u) {
			c := *u
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeUserRepo) CountActive(ctx context.Context) (int64, error) {
	users, _ := r.ListActive(ctx)
	return int64(len(users)), nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	if err := r.conflict(u); err != nil {
		return err
	}
	stored := *u
	r.users[u.ID] = &stored
	return nil
}

type fakeTokenRepo struct {
	mu     sync.Mutex
	nextID int64
	tokens map[int64]*domain.RefreshToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[int64]*domain.RefreshToken)}
}

func (r *fakeTokenRepo) upsertLocked(t *domain.RefreshToken) {
	var latest *domain.RefreshToken
	for _, existing := range r.tokens {
		if existing.UserID == t.UserID && (latest == nil || existing.ID > latest.ID) {
			latest = existing
		}
	}
	if latest != nil {
		latest.TokenHash = t.TokenHash
		latest.ExpiresAt = t.ExpiresAt
		latest.Revoked = false
		t.ID = latest.ID
		return
	}
	r.nextID++
	t.ID = r.nextID
	stored := *t
	r.tokens[t.ID] = &stored
}

func (r *fakeTokenRepo) Upsert(_ context.Context, t *domain.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upsertLocked(t)
	return nil
}

func (r *fakeTokenRepo) GetByTokenHash(_ context.Context, hash string) (*domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.TokenHash == hash {
			c := *t
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeTokenRepo) Rotate(_ context.Context, presentedHash string, next *domain.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.TokenHash == presentedHash && t.IsValid(time.Now()) {
			t.Revoked = true
			r.upsertLocked(next)
			return nil
		}
	}
	return repository.ErrTokenConsumed
}

func (r *fakeTokenRepo) RevokeAllForUser(_ context.Context, userID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, t := range r.tokens {
		if t.UserID == userID && !t.Revoked {
			t.Revoked = true
			n++
		}
	}
	return n, nil
}

func (r *fakeTokenRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	return r.deleteWhere(func(t *domain.RefreshToken) bool { return !now.Before(t.ExpiresAt) }), nil
}

func (r *fakeTokenRepo) DeleteRevoked(_ context.Context) (int64, error) {
	return r.deleteWhere(func(t *domain.RefreshToken) bool { return t.Revoked }), nil
}

func (r *fakeTokenRepo) deleteWhere(match func(*domain.RefreshToken) bool) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, t := range r.tokens {
		if match(t) {
			delete(r.tokens, id)
			n++
		}
	}
	return n
}

func (r *fakeTokenRepo) forUser(userID int64) *domain.RefreshToken {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.UserID == userID {
			return t
		}
	}
	return nil
}

type fakeInventoryRepo struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]*domain.InventoryItem
}

func newFakeInventoryRepo() *fakeInventoryRepo {
	return &fakeInventoryRepo{items: make(map[int64]*domain.InventoryItem)}
}

func (r *fakeInventoryRepo) Create(_ context.Context, item *domain.InventoryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.items {
		if other.ItemCode == item.ItemCode {
			return repository.ErrDuplicateItemCode
		}
	}
	r.nextID++
	item.ID = r.nextID
	stored := *item
	r.items[item.ID] = &stored
	return nil
}

func (r *fakeInventoryRepo) find(match func(*domain.InventoryItem) bool) (*domain.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if !item.Deleted && match(item) {
			c := *item
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeInventoryRepo) GetByID(_ context.Context, id int64) (*domain.InventoryItem, error) {
	return r.find(func(i *domain.InventoryItem) bool { return i.ID == id })
}

func (r *fakeInventoryRepo) GetByItemCode(_ context.Context, code string) (*domain.InventoryItem, error) {
	return r.find(func(i *domain.InventoryItem) bool { return i.ItemCode == code })
}

func (r *fakeInventoryRepo) GetByQRCode(_ context.Context, qr string) (*domain.InventoryItem, error) {
	return r.find(func(i *domain.InventoryItem) bool { return i.QRCode != nil && *i.QRCode == qr })
}

func (r *fakeInventoryRepo) ExistsByItemCode(_ context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.ItemCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeInventoryRepo) list(match func(*domain.InventoryItem) bool) []*domain.InventoryItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.InventoryItem
	for _, item := range r.items {
		if !item.Deleted && match(item) {
			c := *item
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeInventoryRepo) ListActive(_ context.Context) ([]*domain.InventoryItem, error) {
	return r.list(func(*domain.InventoryItem) bool { return true }), nil
}

func (r *fakeInventoryRepo) SearchByLocation(_ context.Context, location string) ([]*domain.InventoryItem, error) {
	return r.list(func(i *domain.InventoryItem) bool {
		return i.Location != nil && strings.Contains(strings.ToLower(*i.Location), strings.ToLower(location))
	}), nil
}

func (r *fakeInventoryRepo) SearchByName(_ context.Context, name string) ([]*domain.InventoryItem, error) {
	return r.list(func(i *domain.InventoryItem) bool {
		return strings.Contains(strings.ToLower(i.ItemName), strings.ToLower(name))
	}), nil
}

func (r *fakeInventoryRepo) ListLowStock(_ context.Context, threshold int) ([]*domain.InventoryItem, error) {
	return r.list(func(i *domain.InventoryItem) bool { return i.IsLowStock(threshold) }), nil
}

func (r *fakeInventoryRepo) CountActive(ctx context.Context) (int64, error) {
	items, _ := r.ListActive(ctx)
	return int64(len(items)), nil
}

func (r *fakeInventoryRepo) Update(_ context.Context, item *domain.InventoryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[item.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *item
	r.items[item.ID] = &stored
	return nil
}

func (r *fakeInventoryRepo) AdjustQuantity(_ context.Context, id int64, delta int, updatedBy string) (*domain.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok || item.Deleted {
		return nil, repository.ErrNotFound
	}
	if item.Quantity+delta < 0 {
		return nil, repository.ErrInsufficientQuantity
	}
	item.Quantity += delta
	item.UpdatedBy = updatedBy
	c := *item
	return &c, nil
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	nextID int64
	orders map[int64]*domain.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[int64]*domain.Order)}
}

func (r *fakeOrderRepo) Create(_ context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.orders {
		if other.Kind == o.Kind && other.OrderNumber == o.OrderNumber {
			return repository.ErrDuplicateOrderNumber
		}
	}
	r.nextID++
	o.ID = r.nextID
	stored := *o
	r.orders[o.ID] = &stored
	return nil
}

func (r *fakeOrderRepo) find(match func(*domain.Order) bool) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if !o.Deleted && match(o) {
			c := *o
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeOrderRepo) GetByID(_ context.Context, kind domain.OrderKind, id int64) (*domain.Order, error) {
	return r.find(func(o *domain.Order) bool { return o.Kind == kind && o.ID == id })
}

func (r *fakeOrderRepo) GetByOrderNumber(_ context.Context, kind domain.OrderKind, number string) (*domain.Order, error) {
	return r.find(func(o *domain.Order) bool { return o.Kind == kind && o.OrderNumber == number })
}

func (r *fakeOrderRepo) ExistsByOrderNumber(_ context.Context, kind domain.OrderKind, number string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.Kind == kind && o.OrderNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeOrderRepo) List(_ context.Context, kind domain.OrderKind, filter repository.OrderFilter) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Order
	for _, o := range r.orders {
		if o.Deleted || o.Kind != kind {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.UserID != nil && o.UserID != *filter.UserID {
			continue
		}
		c := *o
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeOrderRepo) CountByStatus(ctx context.Context, kind domain.OrderKind, status domain.OrderStatus) (int64, error) {
	orders, _ := r.List(ctx, kind, repository.OrderFilter{Status: status})
	return int64(len(orders)), nil
}

func (r *fakeOrderRepo) Update(_ context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[o.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *o
	r.orders[o.ID] = &stored
	return nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, o *domain.Order, from domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[o.ID]
	if !ok || stored.Deleted {
		return repository.ErrNotFound
	}
	if stored.Status != from {
		return repository.ErrStatusChanged
	}
	stored.Status = o.Status
	stored.ProcessedAt = o.ProcessedAt
	stored.UpdatedBy = o.UpdatedBy
	return nil
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []*domain.AuditLog
}

func (r *fakeAuditRepo) Create(_ context.Context, entry *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.ID = int64(len(r.entries) + 1)
	entry.Timestamp = time.Now()
	c := *entry
	r.entries = append(r.entries, &c)
	return nil
}

func (r *fakeAuditRepo) GetByID(_ context.Context, id int64) (*domain.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.ID == id {
			c := *e
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeAuditRepo) Search(_ context.Context, f domain.AuditFilter) ([]*domain.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.AuditLog
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if f.Action != "" && e.Action != f.Action {
			continue
		}
		if f.EntityType != "" && e.EntityType != f.EntityType {
			continue
		}
		if f.EntityID != nil && (e.EntityID == nil || *e.EntityID != *f.EntityID) {
			continue
		}
		c := *e
		out = append(out, &c)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

func (r *fakeAuditRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.entries)), nil
}

func (r *fakeAuditRepo) DistinctActions(_ context.Context) ([]string, error) {
	return r.distinct(func(e *domain.AuditLog) string { return e.Action }), nil
}

func (r *fakeAuditRepo) DistinctEntityTypes(_ context.Context) ([]string, error) {
	return r.distinct(func(e *domain.AuditLog) string { return e.EntityType }), nil
}

func (r *fakeAuditRepo) distinct(field func(*domain.AuditLog) string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]bool)
	var out []string
	for _, e := range r.entries {
		if v := field(e); !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

func (r *fakeAuditRepo) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}

type publishedEvent struct {
	routingKey string
	payload    any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, routingKey string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{routingKey: routingKey, payload: payload})
	return nil
}

type fakeStateStore struct {
	mu     sync.Mutex
	states map[string]string
	n      int
}

func newFakeStateStore() *fakeStateStore {
	return &fakeStateStore{states: make(map[string]string)}
}

func (s *fakeStateStore) Issue(_ context.Context, provider string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	state := provider + "-state-" + strings.Repeat("x", s.n)
	s.states[state] = provider
	return state, nil
}

func (s *fakeStateStore) Consume(_ context.Context, state, provider string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	issuedFor, ok := s.states[state]
	delete(s.states, state)
	if !ok || issuedFor != provider {
		return ErrInvalidOAuthState
	}
	return nil
}

// testEnv wires every service against in-memory repositories
type testEnv struct {
	users     *fakeUserRepo
	tokens    *fakeTokenRepo
	inventory *fakeInventoryRepo
	orders    *fakeOrderRepo
	auditLog  *fakeAuditRepo
	publisher *fakePublisher
	states    *fakeStateStore

	jwt           *utils.JWTManager
	hasher        *utils.PasswordHasher
	cache         *PrincipalCache
	audit         AuditService
	refreshTokens RefreshTokenService
	auth          AuthService
	userSvc       UserService
	inventorySvc  InventoryService
	orderSvc      OrderService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		users:     newFakeUserRepo(),
		tokens:    newFakeTokenRepo(),
		inventory: newFakeInventoryRepo(),
		orders:    newFakeOrderRepo(),
		auditLog:  &fakeAuditRepo{},
		publisher: &fakePublisher{},
		states:    newFakeStateStore(),
		jwt:       utils.NewJWTManager(testSecret, 15*time.Minute, 7*24*time.Hour),
		hasher:    utils.NewPasswordHasher(4),
		cache:     NewPrincipalCache(16, time.Minute),
	}

	logger := zap.NewNop()
	env.audit = NewAuditService(env.auditLog, env.publisher, logger)
	env.refreshTokens = NewRefreshTokenService(env.tokens, env.jwt)
	env.auth = NewAuthService(env.users, env.refreshTokens, env.jwt, env.hasher, env.cache, env.audit, logger)
	env.userSvc = NewUserService(env.users, env.refreshTokens, env.cache, env.audit)
	env.inventorySvc = NewInventoryService(env.inventory, env.audit)
	env.orderSvc = NewOrderService(env.orders, env.audit)

	return env
}

func (e *testEnv) oauth(providers map[string]OAuthProvider) OAuthService {
	return NewOAuthService(providers, e.users, e.refreshTokens, e.jwt, e.states, e.audit, zap.NewNop())
}
