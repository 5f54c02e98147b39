package service

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aquaflow/servicecrm/internal/core/domain"
	"github.com/aquaflow/servicecrm/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stubs. Every repo keeps insertion order so List is deterministic.
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

var fixedNow = time.Date(2025, 3, 15, 14, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type table[T any] struct {
	mu    sync.Mutex
	ids   []string
	items map[string]T
	// err, when set, is returned by every call.
	err error
}

func newTable[T any]() *table[T] { return &table[T]{items: make(map[string]T)} }

func (t *table[T]) put(id string, v T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.items[id]; !ok {
		t.ids = append(t.ids, id)
	}
	t.items[id] = v
}

func (t *table[T]) get(id string) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.items[id]
	return v, ok
}

func (t *table[T]) del(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.items, id)
	t.ids = slices.DeleteFunc(t.ids, func(s string) bool { return s == id })
}

func (t *table[T]) all() []T {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]T, 0, len(t.ids))
	for _, id := range t.ids {
		out = append(out, t.items[id])
	}
	return out
}

func (t *table[T]) fail() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

func (t *table[T]) setErr(err error) {
	t.mu.Lock()
	t.err = err
	t.mu.Unlock()
}

// --- customers ---

type stubCustomerRepo struct{ *table[domain.Customer] }

func newStubCustomerRepo(cs ...domain.Customer) *stubCustomerRepo {
	r := &stubCustomerRepo{newTable[domain.Customer]()}
	for _, c := range cs {
		r.put(c.CustomerID, c)
	}
	return r
}

func (r *stubCustomerRepo) List(context.Context) ([]domain.Customer, error) {
	if err := r.fail(); err != nil {
		return nil, err
	}
	return r.all(), nil
}

func (r *stubCustomerRepo) Get(_ context.Context, id string) (*domain.Customer, error) {
	if err := r.fail(); err != nil {
		return nil, err
	}
	c, ok := r.get(id)
	if !ok {
		return nil, domain.ErrCustomerNotFound
	}
	return &c, nil
}

func (r *stubCustomerRepo) Create(_ context.Context, c *domain.Customer) error {
	if err := r.fail(); err != nil {
		return err
	}
	if _, ok := r.get(c.CustomerID); ok {
		return domain.ErrDuplicate
	}
	r.put(c.CustomerID, *c)
	return nil
}

func (r *stubCustomerRepo) Update(_ context.Context, c *domain.Customer) error {
	if _, ok := r.get(c.CustomerID); !ok {
		return domain.ErrCustomerNotFound
	}
	r.put(c.CustomerID, *c)
	return nil
}

func (r *stubCustomerRepo) Delete(_ context.Context, id string) error {
	r.del(id)
	return nil
}

func (r *stubCustomerRepo) Count(context.Context) (int64, error) {
	if err := r.fail(); err != nil {
		return 0, err
	}
	return int64(len(r.all())), nil
}

// --- products ---

type stubProductRepo struct{ *table[domain.Product] }

func newStubProductRepo(ps ...domain.Product) *stubProductRepo {
	r := &stubProductRepo{newTable[domain.Product]()}
	for _, p := range ps {
		r.put(p.ProductID, p)
	}
	return r
}

func (r *stubProductRepo) List(_ context.Context, f ports.ProductFilter) ([]domain.Product, error) {
	if err := r.fail(); err != nil {
		return nil, err
	}
	var out []domain.Product
	for _, p := range r.all() {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.ActiveOnly && !p.IsActive {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *stubProductRepo) Get(_ context.Context, id string) (*domain.Product, error) {
	p, ok := r.get(id)
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &p, nil
}

func (r *stubProductRepo) Create(_ context.Context, p *domain.Product) error {
	r.put(p.ProductID, *p)
	return nil
}

func (r *stubProductRepo) Update(_ context.Context, p *domain.Product) error {
	r.put(p.ProductID, *p)
	return nil
}

func (r *stubProductRepo) Delete(_ context.Context, id string) error {
	r.del(id)
	return nil
}

// --- assets ---

type stubAssetRepo struct{ *table[domain.Asset] }

func newStubAssetRepo(as ...domain.Asset) *stubAssetRepo {
	r := &stubAssetRepo{newTable[domain.Asset]()}
	for _, a := range as {
		r.put(a.AssetID, a)
	}
	return r
}

func (r *stubAssetRepo) List(_ context.Context, f ports.AssetFilter) ([]domain.Asset, error) {
	if err := r.fail(); err != nil {
		return nil, err
	}
	out := []domain.Asset{}
	for _, a := range r.all() {
		if f.CustomerID != "" && a.CustomerID != f.CustomerID {
			continue
		}
		if f.ProductID != "" && a.ProductID != f.ProductID {
			continue
		}
		if f.ActiveOnly && a.Status != domain.AssetActive {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *stubAssetRepo) Get(_ context.Context, id string) (*domain.Asset, error) {
	if err := r.fail(); err != nil {
		return nil, err
	}
	a, ok := r.get(id)
	if !ok {
		return nil, domain.ErrAssetNotFound
	}
	return &a, nil
}

func (r *stubAssetRepo) Create(_ context.Context, a *domain.Asset) error {
	r.put(a.AssetID, *a)
	return nil
}

func (r *stubAssetRepo) Update(_ context.Context, a *domain.Asset) error {
	r.put(a.AssetID, *a)
	return nil
}

func (r *stubAssetRepo) Delete(_ context.Context, id string) error {
	r.del(id)
	return nil
}

// --- service orders ---

type stubOrderRepo struct{ *table[domain.ServiceOrder] }

func newStubOrderRepo(os ...domain.ServiceOrder) *stubOrderRepo {
	r := &stubOrderRepo{newTable[domain.ServiceOrder]()}
	for _, o := range os {
		r.put(o.ServiceID, o)
	}
	return r
}

func (r *stubOrderRepo) matching(f ports.OrderFilter) []domain.ServiceOrder {
	out := []domain.ServiceOrder{}
	for _, o := range r.all() {
		if f.CustomerID != "" && o.CustomerID != f.CustomerID {
			continue
		}
		if f.AssetID != "" && o.AssetID != f.AssetID {
			continue
		}
		if f.TechnicianID != "" && o.TechnicianID != f.TechnicianID {
			continue
		}
		if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, o.Status) {
			continue
		}
		out = append(out, o)
	}
	return out
}

func (r *stubOrderRepo) List(_ context.Context, f ports.OrderFilter) ([]domain.ServiceOrder, error) {
	if err := r.fail(); err != nil {
		return nil, err
	}
	return r.matching(f), nil
}

func (r *stubOrderRepo) Count(_ context.Context, f ports.OrderFilter) (int64, error) {
	if err := r.fail(); err != nil {
		return 0, err
	}
	return int64(len(r.matching(f))), nil
}

func (r *stubOrderRepo) Get(_ context.Context, id string) (*domain.ServiceOrder, error) {
	o, ok := r.get(id)
	if !ok {
		return nil, domain.ErrServiceOrderNotFound
	}
	return &o, nil
}

func (r *stubOrderRepo) Create(_ context.Context, o *domain.ServiceOrder) error {
	if err := r.fail(); err != nil {
		return err
	}
	r.put(o.ServiceID, *o)
	return nil
}

func (r *stubOrderRepo) Update(_ context.Context, o *domain.ServiceOrder) error {
	r.put(o.ServiceID, *o)
	return nil
}

func (r *stubOrderRepo) Delete(_ context.Context, id string) error {
	r.del(id)
	return nil
}

func (r *stubOrderRepo) Complete(_ context.Context, id string, at time.Time) (*domain.ServiceOrder, error) {
	o, ok := r.get(id)
	if !ok {
		return nil, domain.ErrServiceOrderNotFound
	}
	o.Status = domain.OrderCompleted
	o.CompletedAt = &at
	r.put(id, o)
	return &o, nil
}

// --- users and roles ---

type stubUserRepo struct{ *table[domain.User] }

func newStubUserRepo(us ...domain.User) *stubUserRepo {
	r := &stubUserRepo{newTable[domain.User]()}
	for _, u := range us {
		r.put(u.UserID, u)
	}
	return r
}

func (r *stubUserRepo) List(context.Context) ([]domain.User, error) {
	if err := r.fail(); err != nil {
		return nil, err
	}
	return r.all(), nil
}

func (r *stubUserRepo) Get(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.get(id)
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if err := r.fail(); err != nil {
		return nil, err
	}
	for _, u := range r.all() {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) error {
	for _, existing := range r.all() {
		if existing.Email == u.Email {
			return domain.ErrDuplicate
		}
	}
	r.put(u.UserID, *u)
	return nil
}

func (r *stubUserRepo) Update(_ context.Context, u *domain.User) error {
	r.put(u.UserID, *u)
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	r.del(id)
	return nil
}

func (r *stubUserRepo) Count(context.Context) (int64, error) {
	if err := r.fail(); err != nil {
		return 0, err
	}
	return int64(len(r.all())), nil
}

func (r *stubUserRepo) CountByRole(_ context.Context, roleID string) (int64, error) {
	var n int64
	for _, u := range r.all() {
		if u.RoleID == roleID {
			n++
		}
	}
	return n, nil
}

type stubRoleRepo struct{ *table[domain.Role] }

func newStubRoleRepo(rs ...domain.Role) *stubRoleRepo {
	r := &stubRoleRepo{newTable[domain.Role]()}
	for _, role := range rs {
		r.put(role.RoleID, role)
	}
	return r
}

func (r *stubRoleRepo) List(context.Context) ([]domain.Role, error) { return r.all(), nil }

func (r *stubRoleRepo) Get(_ context.Context, id string) (*domain.Role, error) {
	role, ok := r.get(id)
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	return &role, nil
}

func (r *stubRoleRepo) Create(_ context.Context, role *domain.Role) error {
	r.put(role.RoleID, *role)
	return nil
}

func (r *stubRoleRepo) Update(_ context.Context, role *domain.Role) error {
	r.put(role.RoleID, *role)
	return nil
}

func (r *stubRoleRepo) Delete(_ context.Context, id string) error {
	r.del(id)
	return nil
}

// --- sessions, idempotency and the recompute queue ---

type stubSessions struct{ *table[domain.Principal] }

func newStubSessions() *stubSessions { return &stubSessions{newTable[domain.Principal]()} }

func (s *stubSessions) Save(_ context.Context, p domain.Principal, _ time.Duration) error {
	if err := s.fail(); err != nil {
		return err
	}
	s.put(p.SessionID, p)
	return nil
}

func (s *stubSessions) Get(_ context.Context, id string) (*domain.Principal, error) {
	p, ok := s.get(id)
	if !ok {
		return nil, domain.ErrSessionExpired
	}
	return &p, nil
}

func (s *stubSessions) Delete(_ context.Context, id string) error {
	s.del(id)
	return nil
}

type stubIdem struct {
	*table[string]
	lookupErr error
}

func newStubIdem() *stubIdem { return &stubIdem{table: newTable[string]()} }

func (s *stubIdem) Lookup(_ context.Context, key string) (string, bool, error) {
	if s.lookupErr != nil {
		return "", false, s.lookupErr
	}
	id, ok := s.get(key)
	return id, ok, nil
}

func (s *stubIdem) Remember(_ context.Context, key, id string) error {
	s.put(key, id)
	return nil
}

type recordingQueue struct {
	mu  sync.Mutex
	ids []string
}

func (q *recordingQueue) Enqueue(customerID string) {
	q.mu.Lock()
	q.ids = append(q.ids, customerID)
	q.mu.Unlock()
}

func (q *recordingQueue) enqueued() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.ids...)
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

func intPtr(v int) *int { return &v }

func daysAgo(n int) *time.Time {
	t := fixedNow.AddDate(0, 0, -n)
	return &t
}

var (
	managerRole    = domain.Role{RoleID: "r-mgr", Name: "Manager", Kind: domain.RoleManager, Protected: true}
	installerRole  = domain.Role{RoleID: "r-ins", Name: "Installer", Kind: domain.RoleInstaller}
	technicianRole = domain.Role{RoleID: "r-tec", Name: "Technician", Kind: domain.RoleTechnician}
	staffRole      = domain.Role{RoleID: "r-stf", Name: "Staff", Kind: domain.RoleStaff}
)

func userWithRole(id string, role domain.Role, active bool) domain.User {
	r := role
	return domain.User{
		UserID:   id,
		Email:    id + "@example.com",
		FullName: id,
		RoleID:   role.RoleID,
		IsActive: active,
		Role:     &r,
	}
}
