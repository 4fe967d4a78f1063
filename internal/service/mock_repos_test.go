package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/joemerrillis/sniffr/config"
	"github.com/joemerrillis/sniffr/internal/model"
	"github.com/joemerrillis/sniffr/internal/repository"
	pkgerrors "github.com/joemerrillis/sniffr/pkg/errors"
	"github.com/joemerrillis/sniffr/pkg/jwt"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
	seq   int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return fmt.Errorf("duplicate email %s", user.Email)
		}
	}
	if user.UserID == "" {
		m.seq++
		user.UserID = fmt.Sprintf("user-%d", m.seq)
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

// ── Mock TenantRepository ──

type mockTenantRepo struct {
	tenants map[string]*model.Tenant
	seq     int
	getErr  error
}

func newMockTenantRepo() *mockTenantRepo {
	return &mockTenantRepo{tenants: make(map[string]*model.Tenant)}
}

func (m *mockTenantRepo) Create(_ context.Context, tenant *model.Tenant) error {
	for _, t := range m.tenants {
		if t.Slug == tenant.Slug {
			return fmt.Errorf("duplicate slug %s", tenant.Slug)
		}
	}
	if tenant.TenantID == "" {
		m.seq++
		tenant.TenantID = fmt.Sprintf("tenant-%d", m.seq)
	}
	m.tenants[tenant.TenantID] = tenant
	return nil
}

func (m *mockTenantRepo) GetByID(_ context.Context, id string) (*model.Tenant, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if t, ok := m.tenants[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTenantRepo) List(_ context.Context) ([]model.Tenant, error) {
	result := make([]model.Tenant, 0, len(m.tenants))
	for _, t := range m.tenants {
		result = append(result, *t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].TenantID < result[j].TenantID })
	return result, nil
}

func (m *mockTenantRepo) ListForUser(_ context.Context, userID, homeTenantID string) ([]model.Tenant, error) {
	var result []model.Tenant
	for _, t := range m.tenants {
		if t.OwnerID == userID || t.TenantID == homeTenantID {
			result = append(result, *t)
		}
	}
	return result, nil
}

func (m *mockTenantRepo) Update(_ context.Context, tenant *model.Tenant) error {
	m.tenants[tenant.TenantID] = tenant
	return nil
}

func (m *mockTenantRepo) Delete(_ context.Context, id, ownerID string) (int64, error) {
	t, ok := m.tenants[id]
	if !ok || t.OwnerID != ownerID {
		return 0, nil
	}
	delete(m.tenants, id)
	return 1, nil
}

// ── Mock TenantClientRepository ──

type mockTenantClientRepo struct {
	links map[string]*model.TenantClient // key: tenantID|clientID
}

func newMockTenantClientRepo() *mockTenantClientRepo {
	return &mockTenantClientRepo{links: make(map[string]*model.TenantClient)}
}

func linkKey(tenantID, clientID string) string { return tenantID + "|" + clientID }

func (m *mockTenantClientRepo) Invite(_ context.Context, link *model.TenantClient) (bool, error) {
	key := linkKey(link.TenantID, link.ClientID)
	if _, ok := m.links[key]; ok {
		return false, nil
	}
	link.TenantClientID = "link-" + key
	link.CreatedAt = time.Now()
	m.links[key] = link
	return true, nil
}

func (m *mockTenantClientRepo) Get(_ context.Context, tenantID, clientID string) (*model.TenantClient, error) {
	if l, ok := m.links[linkKey(tenantID, clientID)]; ok {
		return l, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTenantClientRepo) IsAccepted(_ context.Context, tenantID, clientID string) (bool, error) {
	l, ok := m.links[linkKey(tenantID, clientID)]
	return ok && l.Accepted, nil
}

func (m *mockTenantClientRepo) Accept(_ context.Context, tenantID, clientID string, at time.Time) (int64, error) {
	l, ok := m.links[linkKey(tenantID, clientID)]
	if !ok {
		return 0, nil
	}
	l.Accepted = true
	l.AcceptedAt = &at
	return 1, nil
}

func (m *mockTenantClientRepo) ListByTenant(_ context.Context, tenantID string) ([]model.TenantClient, error) {
	var result []model.TenantClient
	for _, l := range m.links {
		if l.TenantID == tenantID {
			result = append(result, *l)
		}
	}
	return result, nil
}

func (m *mockTenantClientRepo) ListAcceptedClientIDs(_ context.Context, tenantID string) ([]string, error) {
	var ids []string
	for _, l := range m.links {
		if l.TenantID == tenantID && l.Accepted {
			ids = append(ids, l.ClientID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// ── Mock DogRepository ──

type mockDogRepo struct {
	dogs map[string]*model.Dog
	seq  int
}

func newMockDogRepo() *mockDogRepo {
	return &mockDogRepo{dogs: make(map[string]*model.Dog)}
}

func (m *mockDogRepo) Create(_ context.Context, dog *model.Dog) error {
	if dog.DogID == "" {
		m.seq++
		dog.DogID = fmt.Sprintf("dog-%d", m.seq)
	}
	m.dogs[dog.DogID] = dog
	return nil
}

func (m *mockDogRepo) GetByID(_ context.Context, id string) (*model.Dog, error) {
	if d, ok := m.dogs[id]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDogRepo) ListByOwners(_ context.Context, ownerIDs []string) ([]model.Dog, error) {
	owners := make(map[string]bool, len(ownerIDs))
	for _, id := range ownerIDs {
		owners[id] = true
	}
	var result []model.Dog
	for _, d := range m.dogs {
		if owners[d.OwnerID] {
			result = append(result, *d)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DogID < result[j].DogID })
	return result, nil
}

func (m *mockDogRepo) Update(_ context.Context, dog *model.Dog) error {
	m.dogs[dog.DogID] = dog
	return nil
}

func (m *mockDogRepo) Delete(_ context.Context, id, ownerID string) (int64, error) {
	d, ok := m.dogs[id]
	if !ok || d.OwnerID != ownerID {
		return 0, nil
	}
	delete(m.dogs, id)
	return 1, nil
}

// ── Mock WalkWindowRepository ──

type mockWalkWindowRepo struct {
	windows map[string]*model.ClientWalkWindow
	seq     int
	listErr error
	getErr  error
}

func newMockWalkWindowRepo() *mockWalkWindowRepo {
	return &mockWalkWindowRepo{windows: make(map[string]*model.ClientWalkWindow)}
}

func (m *mockWalkWindowRepo) Create(_ context.Context, w *model.ClientWalkWindow) error {
	if w.WindowID == "" {
		m.seq++
		w.WindowID = fmt.Sprintf("window-%d", m.seq)
	}
	m.windows[w.WindowID] = w
	return nil
}

func (m *mockWalkWindowRepo) GetForUser(_ context.Context, id, userID string) (*model.ClientWalkWindow, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if w, ok := m.windows[id]; ok && w.UserID == userID {
		copied := *w
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWalkWindowRepo) ListByUser(_ context.Context, userID string) ([]model.ClientWalkWindow, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []model.ClientWalkWindow
	for _, w := range m.windows {
		if w.UserID == userID {
			result = append(result, *w)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].WindowID < result[j].WindowID })
	return result, nil
}

func (m *mockWalkWindowRepo) Update(_ context.Context, w *model.ClientWalkWindow) error {
	m.windows[w.WindowID] = w
	return nil
}

func (m *mockWalkWindowRepo) Delete(_ context.Context, id, userID string) (int64, error) {
	w, ok := m.windows[id]
	if !ok || w.UserID != userID {
		return 0, nil
	}
	delete(m.windows, id)
	return 1, nil
}

func (m *mockWalkWindowRepo) ListUserIDs(_ context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var ids []string
	for _, w := range m.windows {
		if !seen[w.UserID] {
			seen[w.UserID] = true
			ids = append(ids, w.UserID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// ── Mock PendingWalkRepository ──

type mockPendingWalkRepo struct {
	walks  map[string]*model.PendingWalk // key: SlotKey
	failOn map[string]bool               // walk_date 命中时返回错误
	seq    int
}

func newMockPendingWalkRepo() *mockPendingWalkRepo {
	return &mockPendingWalkRepo{
		walks:  make(map[string]*model.PendingWalk),
		failOn: make(map[string]bool),
	}
}

func (m *mockPendingWalkRepo) CreateIfAbsent(_ context.Context, p *model.PendingWalk) (bool, error) {
	if m.failOn[p.WalkDate.Format(model.DateLayout)] {
		return false, fmt.Errorf("写入失败: %s", p.WalkDate.Format(model.DateLayout))
	}
	key := p.SlotKey()
	if _, ok := m.walks[key]; ok {
		return false, nil
	}
	m.seq++
	p.PendingWalkID = fmt.Sprintf("pw-%d", m.seq)
	p.CreatedAt = time.Now()
	copied := *p
	m.walks[key] = &copied
	return true, nil
}

func (m *mockPendingWalkRepo) ListByUserInRange(_ context.Context, userID string, from, to time.Time) ([]model.PendingWalk, error) {
	var result []model.PendingWalk
	for _, p := range m.walks {
		if p.UserID != userID || p.WalkDate.Before(from) || p.WalkDate.After(to) {
			continue
		}
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SlotKey() < result[j].SlotKey() })
	return result, nil
}

// ── Mock PricingRuleRepository ──

type mockPricingRuleRepo struct {
	rules map[string]*model.PricingRule
	seq   int
}

func newMockPricingRuleRepo() *mockPricingRuleRepo {
	return &mockPricingRuleRepo{rules: make(map[string]*model.PricingRule)}
}

func (m *mockPricingRuleRepo) Create(_ context.Context, rule *model.PricingRule) error {
	if rule.RuleID == "" {
		m.seq++
		rule.RuleID = fmt.Sprintf("rule-%02d", m.seq)
	}
	m.rules[rule.RuleID] = rule
	return nil
}

func (m *mockPricingRuleRepo) GetByID(_ context.Context, id string) (*model.PricingRule, error) {
	if r, ok := m.rules[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPricingRuleRepo) ListByTenant(_ context.Context, tenantID, serviceType string) ([]model.PricingRule, error) {
	var result []model.PricingRule
	for _, r := range m.rules {
		if r.TenantID != tenantID || (serviceType != "" && r.ServiceType != serviceType) {
			continue
		}
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].RuleID < result[j].RuleID })
	return result, nil
}

func (m *mockPricingRuleRepo) ListActive(ctx context.Context, tenantID, serviceType string) ([]model.PricingRule, error) {
	all, _ := m.ListByTenant(ctx, tenantID, "")
	var result []model.PricingRule
	for _, r := range all {
		if r.IsActive && (r.ServiceType == serviceType || r.ServiceType == model.ServiceTypeAll) {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockPricingRuleRepo) Update(_ context.Context, rule *model.PricingRule) error {
	m.rules[rule.RuleID] = rule
	return nil
}

func (m *mockPricingRuleRepo) Delete(_ context.Context, id string) error {
	delete(m.rules, id)
	return nil
}

// ── Mock BoardingRepository ──

type mockBoardingRepo struct {
	boardings map[string]*model.Boarding
	dogs      map[string][]string // boardingID → dogIDs
	seq       int
}

func newMockBoardingRepo() *mockBoardingRepo {
	return &mockBoardingRepo{
		boardings: make(map[string]*model.Boarding),
		dogs:      make(map[string][]string),
	}
}

func (m *mockBoardingRepo) Create(_ context.Context, b *model.Boarding, dogIDs []string) error {
	m.seq++
	b.BoardingID = fmt.Sprintf("boarding-%d", m.seq)
	copied := *b
	m.boardings[b.BoardingID] = &copied
	m.dogs[b.BoardingID] = append([]string(nil), dogIDs...)
	return nil
}

func (m *mockBoardingRepo) GetByID(_ context.Context, id string) (*model.Boarding, error) {
	if b, ok := m.boardings[id]; ok {
		copied := *b
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBoardingRepo) List(_ context.Context, f repository.BoardingFilter) ([]model.Boarding, int64, error) {
	var result []model.Boarding
	for _, b := range m.boardings {
		if f.UserID != "" && b.UserID != f.UserID {
			continue
		}
		if f.TenantID != "" && b.TenantID != f.TenantID {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		result = append(result, *b)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].BoardingID < result[j].BoardingID })
	return result, int64(len(result)), nil
}

func (m *mockBoardingRepo) ListByTenantInRange(_ context.Context, tenantID string, from, to *time.Time) ([]model.Boarding, error) {
	var result []model.Boarding
	for _, b := range m.boardings {
		if b.TenantID != tenantID {
			continue
		}
		if from != nil && b.PickUpDay.Before(*from) {
			continue
		}
		if to != nil && b.DropOffDay.After(*to) {
			continue
		}
		result = append(result, *b)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].BoardingID < result[j].BoardingID })
	return result, nil
}

func (m *mockBoardingRepo) Update(_ context.Context, b *model.Boarding, dogIDs []string) error {
	current, ok := m.boardings[b.BoardingID]
	if !ok || current.Version != b.Version {
		return pkgerrors.ErrOptimisticLock
	}
	b.Version++
	copied := *b
	m.boardings[b.BoardingID] = &copied
	if dogIDs != nil {
		m.dogs[b.BoardingID] = append([]string(nil), dogIDs...)
	}
	return nil
}

func (m *mockBoardingRepo) Delete(_ context.Context, id, userID string) (int64, error) {
	b, ok := m.boardings[id]
	if !ok || b.UserID != userID {
		return 0, nil
	}
	delete(m.boardings, id)
	delete(m.dogs, id)
	return 1, nil
}

func (m *mockBoardingRepo) ListDogs(_ context.Context, boardingID string) ([]model.ServiceDog, error) {
	var result []model.ServiceDog
	for i, dogID := range m.dogs[boardingID] {
		result = append(result, model.ServiceDog{
			ServiceDogID: fmt.Sprintf("%s-sd-%d", boardingID, i),
			ServiceType:  model.ServiceTypeBoarding,
			ServiceID:    boardingID,
			DogID:        dogID,
		})
	}
	return result, nil
}

// ── Mock TokenBlacklist ──

type mockBlacklist struct {
	revoked map[string]time.Duration
}

func newMockBlacklist() *mockBlacklist {
	return &mockBlacklist{revoked: make(map[string]time.Duration)}
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if ttl > 0 {
		m.revoked[jti] = ttl
	}
	return nil
}

func (m *mockBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	_, ok := m.revoked[jti]
	return ok, nil
}

// ── Mock Publisher ──

type publishedEvent struct {
	Type    string
	Key     string
	Payload interface{}
}

type mockPublisher struct {
	events []publishedEvent
}

func (m *mockPublisher) Publish(_ context.Context, eventType, key string, payload interface{}) error {
	m.events = append(m.events, publishedEvent{Type: eventType, Key: key, Payload: payload})
	return nil
}

func (m *mockPublisher) Close() error { return nil }

// ── 测试夹具 ──

type testEnv struct {
	users     *mockUserRepo
	tenants   *mockTenantRepo
	links     *mockTenantClientRepo
	dogs      *mockDogRepo
	windows   *mockWalkWindowRepo
	pending   *mockPendingWalkRepo
	rules     *mockPricingRuleRepo
	boardings *mockBoardingRepo
	blacklist *mockBlacklist
	publisher *mockPublisher
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	svc       *Service
}

func newTestEnv() *testEnv {
	env := &testEnv{
		users:     newMockUserRepo(),
		tenants:   newMockTenantRepo(),
		links:     newMockTenantClientRepo(),
		dogs:      newMockDogRepo(),
		windows:   newMockWalkWindowRepo(),
		pending:   newMockPendingWalkRepo(),
		rules:     newMockPricingRuleRepo(),
		boardings: newMockBoardingRepo(),
		blacklist: newMockBlacklist(),
		publisher: &mockPublisher{},
	}
	env.repo = &repository.Repository{
		User:         env.users,
		Tenant:       env.tenants,
		TenantClient: env.links,
		Dog:          env.dogs,
		WalkWindow:   env.windows,
		PendingWalk:  env.pending,
		PricingRule:  env.rules,
		Boarding:     env.boardings,
	}

	cfg := &config.Config{
		Server: config.ServerConfig{Env: "development", Timezone: "UTC"},
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret-key-for-unit-testing-2026",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 7 * 24 * time.Hour,
		},
	}
	env.jwtMgr = jwt.NewManager(&cfg.Auth)
	env.svc = NewService(cfg, env.repo, env.jwtMgr, env.blacklist, env.publisher, zap.NewNop())
	return env
}

// addUser 直接写入用户
func (e *testEnv) addUser(id, role, tenantID string) *model.User {
	u := &model.User{UserID: id, Email: id + "@example.com", Name: id, Role: role}
	if tenantID != "" {
		u.TenantID = &tenantID
	}
	e.users.users[id] = u
	return u
}

// addTenant 写入租户，owner 的 tenant_id 同步指向它
func (e *testEnv) addTenant(id, ownerID string) *model.Tenant {
	t := &model.Tenant{TenantID: id, Name: "Tenant " + id, Slug: id, OwnerID: ownerID}
	e.tenants.tenants[id] = t
	if u, ok := e.users.users[ownerID]; ok {
		u.TenantID = &t.TenantID
	}
	return t
}

func (e *testEnv) link(tenantID, clientID string, accepted bool) {
	e.links.links[linkKey(tenantID, clientID)] = &model.TenantClient{
		TenantClientID: "link-" + tenantID + "-" + clientID,
		TenantID:       tenantID,
		ClientID:       clientID,
		Accepted:       accepted,
	}
}

func date(s string) time.Time {
	d, err := time.Parse(model.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func datePtr(s string) *time.Time {
	d := date(s)
	return &d
}
