package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/druk-utility/consumer-registry/internal/core/domain"
	"github.com/druk-utility/consumer-registry/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users  map[string]*domain.Identity
	seq    int
	err    error // if set, every lookup returns this error
	writes int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.Identity)}
}

func cloneIdentity(i *domain.Identity) *domain.Identity {
	clone := *i
	return &clone
}

func (r *stubUserRepo) FindByPhoneOrCID(_ context.Context, phone, cid string) (*domain.Identity, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if (phone != "" && u.Phone == phone) || (cid != "" && u.CID == cid) {
			return cloneIdentity(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.Identity, error) {
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneIdentity(u), nil
}

func (r *stubUserRepo) FindAll(_ context.Context) ([]*domain.Identity, error) {
	out := make([]*domain.Identity, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneIdentity(u))
	}
	return out, nil
}

func (r *stubUserRepo) Create(_ context.Context, i *domain.Identity) (*domain.Identity, error) {
	for _, u := range r.users {
		if u.Phone == i.Phone || u.CID == i.CID {
			return nil, domain.ErrUserExists
		}
	}
	r.seq++
	stored := cloneIdentity(i)
	stored.ID = fmt.Sprintf("user-%d", r.seq)
	r.users[stored.ID] = stored
	r.writes++
	return cloneIdentity(stored), nil
}

func (r *stubUserRepo) UpdateByID(_ context.Context, id string, p domain.IdentityPatch) (*domain.Identity, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.CID != nil {
		u.CID = *p.CID
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	r.writes++
	return cloneIdentity(u), nil
}

func (r *stubUserRepo) DeleteByID(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	r.writes++
	return nil
}

func (r *stubUserRepo) ExistsByPhoneOrCID(_ context.Context, phone, cid, excludeID string) (bool, error) {
	for id, u := range r.users {
		if id == excludeID {
			continue
		}
		if (phone != "" && u.Phone == phone) || (cid != "" && u.CID == cid) {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUserRepo) put(i *domain.Identity) *domain.Identity {
	r.users[i.ID] = cloneIdentity(i)
	return i
}

type stubDzongkhagRepo struct {
	items map[string]*domain.Dzongkhag
	seq   int
}

func newStubDzongkhagRepo() *stubDzongkhagRepo {
	return &stubDzongkhagRepo{items: make(map[string]*domain.Dzongkhag)}
}

func (r *stubDzongkhagRepo) Create(_ context.Context, d *domain.Dzongkhag) (*domain.Dzongkhag, error) {
	for _, existing := range r.items {
		if existing.Code == d.Code {
			return nil, domain.ErrDzongkhagExists
		}
	}
	r.seq++
	clone := *d
	clone.ID = fmt.Sprintf("dz-%d", r.seq)
	r.items[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubDzongkhagRepo) FindByID(_ context.Context, id string) (*domain.Dzongkhag, error) {
	d, ok := r.items[id]
	if !ok {
		return nil, domain.ErrDzongkhagNotFound
	}
	clone := *d
	return &clone, nil
}

func (r *stubDzongkhagRepo) FindAll(_ context.Context) ([]*domain.Dzongkhag, error) {
	out := make([]*domain.Dzongkhag, 0, len(r.items))
	for _, d := range r.items {
		clone := *d
		out = append(out, &clone)
	}
	return out, nil
}

func (r *stubDzongkhagRepo) UpdateByID(_ context.Context, id string, p domain.DzongkhagPatch) (*domain.Dzongkhag, error) {
	d, ok := r.items[id]
	if !ok {
		return nil, domain.ErrDzongkhagNotFound
	}
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.Code != nil {
		d.Code = *p.Code
	}
	if p.Region != nil {
		d.Region = *p.Region
	}
	clone := *d
	return &clone, nil
}

func (r *stubDzongkhagRepo) DeleteByID(_ context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return domain.ErrDzongkhagNotFound
	}
	delete(r.items, id)
	return nil
}

type stubGewogRepo struct {
	items map[string]*domain.Gewog
	seq   int
}

func newStubGewogRepo() *stubGewogRepo {
	return &stubGewogRepo{items: make(map[string]*domain.Gewog)}
}

func (r *stubGewogRepo) Create(_ context.Context, g *domain.Gewog) (*domain.Gewog, error) {
	r.seq++
	clone := *g
	clone.ID = fmt.Sprintf("gw-%d", r.seq)
	r.items[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubGewogRepo) FindByID(_ context.Context, id string) (*domain.Gewog, error) {
	g, ok := r.items[id]
	if !ok {
		return nil, domain.ErrGewogNotFound
	}
	clone := *g
	return &clone, nil
}

func (r *stubGewogRepo) FindAll(_ context.Context, dzongkhagID string) ([]*domain.Gewog, error) {
	var out []*domain.Gewog
	for _, g := range r.items {
		if dzongkhagID != "" && g.DzongkhagID != dzongkhagID {
			continue
		}
		clone := *g
		out = append(out, &clone)
	}
	return out, nil
}

func (r *stubGewogRepo) UpdateByID(_ context.Context, id string, p domain.GewogPatch) (*domain.Gewog, error) {
	g, ok := r.items[id]
	if !ok {
		return nil, domain.ErrGewogNotFound
	}
	if p.Name != nil {
		g.Name = *p.Name
	}
	if p.DzongkhagID != nil {
		g.DzongkhagID = *p.DzongkhagID
	}
	clone := *g
	return &clone, nil
}

func (r *stubGewogRepo) DeleteByID(_ context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return domain.ErrGewogNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *stubGewogRepo) CountByDzongkhag(_ context.Context, dzongkhagID string) (int64, error) {
	var n int64
	for _, g := range r.items {
		if g.DzongkhagID == dzongkhagID {
			n++
		}
	}
	return n, nil
}

type stubConsumerRepo struct {
	items      map[string]*domain.Consumer
	seq        int
	lastFilter ports.ConsumerFilter
	total      int64 // returned by List
}

func newStubConsumerRepo() *stubConsumerRepo {
	return &stubConsumerRepo{items: make(map[string]*domain.Consumer)}
}

func (r *stubConsumerRepo) Create(_ context.Context, c *domain.Consumer) (*domain.Consumer, error) {
	r.seq++
	clone := *c
	clone.ID = fmt.Sprintf("cs-%d", r.seq)
	r.items[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubConsumerRepo) FindByID(_ context.Context, id string) (*domain.Consumer, error) {
	c, ok := r.items[id]
	if !ok {
		return nil, domain.ErrConsumerNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *stubConsumerRepo) List(_ context.Context, f ports.ConsumerFilter) ([]*domain.Consumer, int64, error) {
	r.lastFilter = f
	out := make([]*domain.Consumer, 0, len(r.items))
	for _, c := range r.items {
		clone := *c
		out = append(out, &clone)
	}
	return out, r.total, nil
}

func (r *stubConsumerRepo) UpdateByID(_ context.Context, id string, p domain.ConsumerPatch) (*domain.Consumer, error) {
	c, ok := r.items[id]
	if !ok {
		return nil, domain.ErrConsumerNotFound
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.GewogID != nil {
		c.Address.GewogID = *p.GewogID
	}
	if p.FamilySize != nil {
		c.FamilySize = *p.FamilySize
	}
	clone := *c
	return &clone, nil
}

func (r *stubConsumerRepo) DeleteByID(_ context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return domain.ErrConsumerNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *stubConsumerRepo) CountByGewog(_ context.Context, gewogID string) (int64, error) {
	var n int64
	for _, c := range r.items {
		if c.Address.GewogID == gewogID {
			n++
		}
	}
	return n, nil
}

// ---------------------------------------------------------------------------
// Security and audit stubs
// ---------------------------------------------------------------------------

// plainHasher stores "hashed:" + password so tests skip bcrypt's cost.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (plainHasher) Verify(password, hash string) bool {
	return hash != "" && hash == "hashed:"+password
}

// countingHasher is a plainHasher that counts its calls.
type countingHasher struct {
	hashes   int
	verifies int
}

func (h *countingHasher) Hash(password string) (string, error) {
	h.hashes++
	return plainHasher{}.Hash(password)
}

func (h *countingHasher) Verify(password, hash string) bool {
	h.verifies++
	return plainHasher{}.Verify(password, hash)
}

type stubTokens struct {
	issued []domain.SessionClaims
	claims map[string]*domain.SessionClaims
}

func newStubTokens() *stubTokens {
	return &stubTokens{claims: make(map[string]*domain.SessionClaims)}
}

func (t *stubTokens) Issue(c domain.SessionClaims) (string, error) {
	t.issued = append(t.issued, c)
	token := fmt.Sprintf("token-%d", len(t.issued))
	clone := c
	t.claims[token] = &clone
	return token, nil
}

func (t *stubTokens) Verify(token string) (*domain.SessionClaims, error) {
	c, ok := t.claims[token]
	if !ok {
		return nil, domain.ErrInvalidToken
	}
	clone := *c
	return &clone, nil
}

type stubLimiter struct {
	failures map[string]int
	max      int
	err      error
}

func newStubLimiter(max int) *stubLimiter {
	return &stubLimiter{failures: make(map[string]int), max: max}
}

func (l *stubLimiter) Blocked(_ context.Context, id string) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	return l.failures[id] >= l.max, nil
}

func (l *stubLimiter) RecordFailure(_ context.Context, id string) error {
	l.failures[id]++
	return nil
}

func (l *stubLimiter) Reset(_ context.Context, id string) error {
	delete(l.failures, id)
	return nil
}

type stubAudit struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
}

func (a *stubAudit) Record(e domain.AuditEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
}

func (a *stubAudit) last() domain.AuditEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.entries) == 0 {
		return domain.AuditEntry{}
	}
	return a.entries[len(a.entries)-1]
}

func (a *stubAudit) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries)
}

var (
	_ ports.UserRepository      = (*stubUserRepo)(nil)
	_ ports.DzongkhagRepository = (*stubDzongkhagRepo)(nil)
	_ ports.GewogRepository     = (*stubGewogRepo)(nil)
	_ ports.ConsumerRepository  = (*stubConsumerRepo)(nil)
	_ ports.PasswordHasher      = plainHasher{}
	_ ports.PasswordHasher      = (*countingHasher)(nil)
	_ ports.TokenIssuer         = (*stubTokens)(nil)
	_ ports.LoginLimiter        = (*stubLimiter)(nil)
	_ ports.AuditRecorder       = (*stubAudit)(nil)
)
