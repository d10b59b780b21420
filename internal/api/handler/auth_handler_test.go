package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/druk-utility/consumer-registry/internal/core/domain"
	"github.com/druk-utility/consumer-registry/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.Identity, error)
	loginFn    func(ctx context.Context, identifier, password string) (string, *domain.Identity, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Identity, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, identifier, password string) (string, *domain.Identity, error) {
	return s.loginFn(ctx, identifier, password)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func httpStatus(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return 0
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.Identity, error) {
			if in.Name != "Pema" || in.Phone != "17123456" || in.CID != "11505001234" || in.Role != "viewer" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.Identity{
				ID: "u1", Name: in.Name, Phone: in.Phone, CID: in.CID, Role: domain.RoleViewer,
				Password: domain.HashedPassword("$2a$10$secret"),
			}, nil
		},
	}
	h := NewAuthHandler(stub)

	body := `{"name":"Pema","phone":"17123456","cid":"11505001234","role":"viewer","password":"secret1"}`
	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/api/v1/users/adduser", body), rec)

	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "secret") || strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("response leaks credential: %s", rec.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	data, ok := resp["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data in response")
	}
	if data["id"] != "u1" || data["phone"] != "17123456" || data["role"] != "viewer" {
		t.Fatalf("unexpected user payload: %+v", data)
	}
}

func TestAuthHandler_Register_ValidationErrors(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.Identity, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"malformed json", `{"name":`, http.StatusBadRequest},
		{"missing name", `{"phone":"17123456","cid":"11505001234"}`, http.StatusUnprocessableEntity},
		{"bad phone", `{"name":"A","phone":"12345","cid":"11505001234"}`, http.StatusUnprocessableEntity},
		{"short cid", `{"name":"A","phone":"17123456","cid":"1234"}`, http.StatusUnprocessableEntity},
		{"short password", `{"name":"A","phone":"17123456","cid":"11505001234","password":"123"}`, http.StatusUnprocessableEntity},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEcho()
			c := e.NewContext(jsonRequest(http.MethodPost, "/", tc.body), httptest.NewRecorder())
			err := h.Register(c)
			if got := httpStatus(err); got != tc.code {
				t.Fatalf("expected %d, got %d (%v)", tc.code, got, err)
			}
		})
	}
}

func TestAuthHandler_Register_UserExists(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.Identity, error) {
			return nil, domain.ErrUserExists
		},
	}
	h := NewAuthHandler(stub)

	body := `{"name":"Pema","phone":"17123456","cid":"11505001234"}`
	c := e.NewContext(jsonRequest(http.MethodPost, "/", body), httptest.NewRecorder())

	if err := h.Register(c); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, identifier, password string) (string, *domain.Identity, error) {
			if identifier != "11505001234" || password != "secret1" {
				t.Fatalf("unexpected args: %s %s", identifier, password)
			}
			return "signed.jwt.token", &domain.Identity{ID: "u1", Name: "Pema", Role: domain.RoleViewer}, nil
		},
	}
	h := NewAuthHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/", `{"identifier":"11505001234","password":"secret1"}`), rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Token != "signed.jwt.token" || resp.Data.ID != "u1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAuthHandler_Login_Errors(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, identifier, password string) (string, *domain.Identity, error) {
			return "", nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub)

	e := newTestEcho()
	c := e.NewContext(jsonRequest(http.MethodPost, "/", `{"identifier":"17123456","password":"nope"}`), httptest.NewRecorder())
	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	c = e.NewContext(jsonRequest(http.MethodPost, "/", `{"identifier":"not-a-phone","password":"x"}`), httptest.NewRecorder())
	if got := httpStatus(h.Login(c)); got != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for bad identifier, got %d", got)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubAuthService{})

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if err := h.Me(c); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized without identity, got %v", err)
	}

	rec := httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.Set("identity", &domain.Identity{ID: "u9", Name: "Kinley", Role: domain.RoleTechnician, Password: domain.HashedPassword("h")})
	if err := h.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "Welcome back, Kinley") || strings.Contains(rec.Body.String(), `"password"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestLoginResult(t *testing.T) {
	tests := map[string]error{
		"success":             nil,
		"throttled":           domain.ErrTooManyAttempts,
		"password_not_set":    domain.ErrPasswordNotSet,
		"invalid_credentials": domain.ErrInvalidCredentials,
		"error":               errors.New("boom"),
	}
	for want, err := range tests {
		if got := loginResult(err); got != want {
			t.Fatalf("loginResult(%v) = %q, want %q", err, got, want)
		}
	}
}
