package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/aquaflow/servicecrm/internal/core/domain"
	"github.com/aquaflow/servicecrm/internal/core/ports"
)

type stubAuthService struct {
	loginFn  func(ctx context.Context, email, password string) (*ports.LoginResult, error)
	logoutFn func(ctx context.Context, p domain.Principal) error
	meFn     func(ctx context.Context, p domain.Principal) (*domain.User, error)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Logout(ctx context.Context, p domain.Principal) error {
	return s.logoutFn(ctx, p)
}

func (s *stubAuthService) Authenticate(context.Context, string) (*domain.Principal, error) {
	return nil, domain.ErrInvalidCredentials
}

func (s *stubAuthService) Me(ctx context.Context, p domain.Principal) (*domain.User, error) {
	return s.meFn(ctx, p)
}

func TestAuthHandler_Login_Success(t *testing.T) {
	expires := time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC)
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*ports.LoginResult, error) {
			if email != "alice@example.com" || password != "secret" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return &ports.LoginResult{
				Token:     "token123",
				ExpiresAt: expires,
				User:      &domain.User{UserID: "u-1", Email: email, PasswordHash: "hash"},
			}, nil
		},
	}

	c, rec := newRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(`{"email":"alice@example.com","password":"secret"}`))
	if err := NewAuthHandler(stub).Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	resp := decode[map[string]any](t, rec)
	if resp["token"] != "token123" {
		t.Errorf("unexpected token: %v", resp["token"])
	}
	user, ok := resp["user"].(map[string]any)
	if !ok {
		t.Fatal("expected user in response")
	}
	if _, leaked := user["password_hash"]; leaked {
		t.Error("password hash leaked")
	}
	if strings.Contains(rec.Body.String(), "hash") {
		t.Error("password hash leaked into body")
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string) (*ports.LoginResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	c, _ := newRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(`{"email":"alice@example.com","password":"nope"}`))

	if err := NewAuthHandler(stub).Login(c); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string) (*ports.LoginResult, error) {
			t.Fatal("should not be called")
			return nil, nil
		},
	}
	c, _ := newRequest(http.MethodPost, "/v1/auth/login", strings.NewReader("not-json"))

	if code := httpCode(t, NewAuthHandler(stub).Login(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string) (*ports.LoginResult, error) {
			t.Fatal("should not be called")
			return nil, nil
		},
	}
	c, _ := newRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(`{"email":"not-an-email"}`))

	fields := validationFields(t, NewAuthHandler(stub).Login(c))
	if fields["email"] != "must be a valid email" || fields["password"] != "is required" {
		t.Fatalf("unexpected fields: %v", fields)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	var got domain.Principal
	stub := &stubAuthService{
		logoutFn: func(_ context.Context, p domain.Principal) error {
			got = p
			return nil
		},
	}
	c, rec := newRequest(http.MethodPost, "/v1/auth/logout", nil)

	if err := NewAuthHandler(stub).Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if got.SessionID != testPrincipal.SessionID {
		t.Errorf("expected session %s, got %s", testPrincipal.SessionID, got.SessionID)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	stub := &stubAuthService{
		meFn: func(_ context.Context, p domain.Principal) (*domain.User, error) {
			return &domain.User{UserID: p.UserID, Email: p.Email, Role: &domain.Role{Kind: domain.RoleManager}}, nil
		},
	}
	c, rec := newRequest(http.MethodGet, "/v1/auth/me", nil)

	if err := NewAuthHandler(stub).Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	user := decode[map[string]any](t, rec)
	if user["user_id"] != "u-1" {
		t.Errorf("unexpected user: %v", user)
	}
}
