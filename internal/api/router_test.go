package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/druk-utility/consumer-registry/internal/core/domain"
	"github.com/druk-utility/consumer-registry/internal/core/service"
	"github.com/druk-utility/consumer-registry/internal/infrastructure/security"
)

// memUsers is an in-memory UserRepository for exercising the full HTTP stack.
type memUsers struct {
	mu    sync.Mutex
	seq   int
	users map[string]*domain.Identity
}

func newMemUsers() *memUsers { return &memUsers{users: map[string]*domain.Identity{}} }

func (r *memUsers) FindByPhoneOrCID(_ context.Context, phone, cid string) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if (phone != "" && u.Phone == phone) || (cid != "" && u.CID == cid) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUsers) FindByID(_ context.Context, id string) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUsers) FindAll(context.Context) ([]*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Identity, 0, len(r.users))
	for _, u := range r.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memUsers) Create(_ context.Context, identity *domain.Identity) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Phone == identity.Phone || u.CID == identity.CID {
			return nil, domain.ErrUserExists
		}
	}
	r.seq++
	cp := *identity
	cp.ID = fmt.Sprintf("65f1c2a9e4b0a1b2c3d4e5%02x", r.seq)
	r.users[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *memUsers) UpdateByID(_ context.Context, id string, patch domain.IdentityPatch) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if patch.Role != nil {
		u.Role = *patch.Role
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	cp := *u
	return &cp, nil
}

func (r *memUsers) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *memUsers) ExistsByPhoneOrCID(_ context.Context, phone, cid, excludeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
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

type testServer struct {
	e     *echo.Echo
	users *memUsers
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	tokens, err := security.NewTokenIssuer("router-test-secret", time.Hour)
	if err != nil {
		t.Fatalf("token issuer: %v", err)
	}
	users := newMemUsers()
	log := zerolog.Nop()

	e := NewRouter(Dependencies{
		Auth:     service.NewAuthService(users, security.NewBcryptHasher(4), tokens, nil, nil, log),
		Gate:     service.NewAccessGate(users, tokens),
		Users:    service.NewUserService(users, nil, log),
		Registry: prometheus.NewRegistry(),
	}, log)
	return &testServer{e: e, users: users}
}

func (s *testServer) do(method, target, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T, identifier, password string) string {
	t.Helper()
	rec := s.do(http.MethodPost, "/api/v1/users/login", "",
		fmt.Sprintf(`{"identifier":%q,"password":%q}`, identifier, password))
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Fatalf("login: no token in %s", rec.Body.String())
	}
	return resp.Token
}

func TestRouter_ConsumerSessionFlow(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/v1/users/adduser", "",
		`{"name":"Pema","phone":"+97517123456","cid":"11505001234","role":"consumer","password":"s3cret!"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	token := s.login(t, "11505001234", "s3cret!")

	rec = s.do(http.MethodPatch, "/api/v1/users/65f1c2a9e4b0a1b2c3d4e501", token, `{"role":"super_admin"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("privileged update: expected 403, got %d", rec.Code)
	}

	rec = s.do(http.MethodGet, "/api/v1/users/me", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "password") || strings.Contains(rec.Body.String(), "$2a$") {
		t.Fatalf("me leaks credential: %s", rec.Body.String())
	}
	var me struct {
		Data struct {
			Role string `json:"role"`
			CID  string `json:"cid"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &me); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if me.Data.Role != "consumer" || me.Data.CID != "11505001234" {
		t.Fatalf("unexpected identity: %+v", me.Data)
	}
}

func TestRouter_SuperAdminCanPromote(t *testing.T) {
	s := newTestServer(t)

	for _, body := range []string{
		`{"name":"Admin","phone":"17000001","cid":"10000000001","role":"super_admin","password":"admin-pass"}`,
		`{"name":"Karma","phone":"77000002","cid":"10000000002","role":"viewer","password":"viewer-pass"}`,
	} {
		if rec := s.do(http.MethodPost, "/api/v1/users/adduser", "", body); rec.Code != http.StatusCreated {
			t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	}
	viewer, err := s.users.FindByPhoneOrCID(context.Background(), "+97577000002", "")
	if err != nil {
		t.Fatalf("seed lookup: %v", err)
	}

	viewerToken := s.login(t, "77000002", "viewer-pass")
	if rec := s.do(http.MethodPost, "/api/v1/consumer", viewerToken, `{}`); rec.Code != http.StatusForbidden {
		t.Fatalf("viewer create: expected 403, got %d", rec.Code)
	}

	token := s.login(t, "17000001", "admin-pass")
	rec := s.do(http.MethodPatch, "/api/v1/users/"+viewer.ID, token, `{"role":"gewog_operator"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("promote: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// The token issued before the promotion is authorized against the stored role.
	if rec := s.do(http.MethodPost, "/api/v1/consumer", viewerToken, `{}`); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("operator create: expected 422, got %d", rec.Code)
	}
}

func TestRouter_DuplicatePhoneInAnotherForm(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/v1/users/adduser", "",
		`{"name":"Pema","phone":"+97517123456","cid":"11223344556","password":"s3cret!"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", rec.Code)
	}
	rec = s.do(http.MethodPost, "/api/v1/users/adduser", "",
		`{"name":"Other","phone":"17123456","cid":"11223344557","password":"s3cret!"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second register: expected 409, got %d", rec.Code)
	}

	s.login(t, "17123456", "s3cret!")
}

func TestRouter_LoginFailuresShareOneMessage(t *testing.T) {
	s := newTestServer(t)

	s.do(http.MethodPost, "/api/v1/users/adduser", "", `{"name":"Nima","phone":"17555666","cid":"10000000041"}`)

	for _, identifier := range []string{"17555666", "17999888"} {
		rec := s.do(http.MethodPost, "/api/v1/users/login", "",
			fmt.Sprintf(`{"identifier":%q,"password":"whatever"}`, identifier))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", identifier, rec.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["error"] != "invalid credentials" {
			t.Fatalf("%s: unexpected body %s", identifier, rec.Body.String())
		}
	}
}

func TestRouter_Unauthenticated(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		method string
		target string
		token  string
	}{
		{"me without token", http.MethodGet, "/api/v1/users/me", ""},
		{"me with garbage token", http.MethodGet, "/api/v1/users/me", "not-a-jwt"},
		{"dzongkhag list", http.MethodGet, "/api/v1/dzongkhag", ""},
		{"consumer create", http.MethodPost, "/api/v1/consumer", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := s.do(tc.method, tc.target, tc.token, "")
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body["error"] == "" {
				t.Fatalf("expected error envelope, got %s", rec.Body.String())
			}
		})
	}
}

func TestRouter_DeletedIdentityLosesAccess(t *testing.T) {
	s := newTestServer(t)

	s.do(http.MethodPost, "/api/v1/users/adduser", "",
		`{"name":"Sonam","phone":"17222333","cid":"12345678901","role":"viewer","password":"pw-sonam"}`)
	token := s.login(t, "17222333", "pw-sonam")

	u, _ := s.users.FindByPhoneOrCID(context.Background(), "+97517222333", "")
	if err := s.users.DeleteByID(context.Background(), u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if rec := s.do(http.MethodGet, "/api/v1/users/me", token, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRouter_PublicEndpoints(t *testing.T) {
	s := newTestServer(t)

	for _, target := range []string{"/", "/health", "/health/ready", "/metrics"} {
		if rec := s.do(http.MethodGet, target, "", ""); rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", target, rec.Code)
		}
	}
}
