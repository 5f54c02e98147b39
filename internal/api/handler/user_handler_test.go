package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/aquaflow/servicecrm/internal/core/domain"
	"github.com/aquaflow/servicecrm/internal/core/ports"
)

type stubUserService struct {
	ports.UserService
	createFn   func(ctx context.Context, in ports.UserInput) (*domain.User, error)
	updateFn   func(ctx context.Context, id string, in ports.UserInput) (*domain.User, error)
	eligibleFn func(ctx context.Context, c domain.Capability) ([]domain.User, error)
}

func (s *stubUserService) Create(ctx context.Context, in ports.UserInput) (*domain.User, error) {
	return s.createFn(ctx, in)
}

func (s *stubUserService) Update(ctx context.Context, id string, in ports.UserInput) (*domain.User, error) {
	return s.updateFn(ctx, id, in)
}

func (s *stubUserService) Eligible(ctx context.Context, c domain.Capability) ([]domain.User, error) {
	return s.eligibleFn(ctx, c)
}

func TestUserHandler_Create(t *testing.T) {
	stub := &stubUserService{
		createFn: func(_ context.Context, in ports.UserInput) (*domain.User, error) {
			if !in.IsActive || in.Password != "secret1" || in.RoleID != "r-tech" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{UserID: "u-9", Email: in.Email, FullName: in.FullName, RoleID: in.RoleID, IsActive: true}, nil
		},
	}
	body := `{"email":"ana@example.com","full_name":"Ana","role_id":"r-tech","password":"secret1"}`
	c, rec := newRequest(http.MethodPost, "/v1/users", strings.NewReader(body))

	if err := NewUserHandler(stub).Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("response leaks password material: %s", rec.Body.String())
	}
}

func TestUserHandler_Create_Invalid(t *testing.T) {
	body := `{"email":"not-an-email","full_name":"","role_id":"r-tech"}`
	c, _ := newRequest(http.MethodPost, "/v1/users", strings.NewReader(body))

	fields := validationFields(t, NewUserHandler(&stubUserService{}).Create(c))
	if fields["email"] != "must be a valid email" || fields["full_name"] != "is required" {
		t.Fatalf("unexpected fields: %v", fields)
	}
}

func TestUserHandler_Update_KeepsPasswordWhenEmpty(t *testing.T) {
	stub := &stubUserService{
		updateFn: func(_ context.Context, id string, in ports.UserInput) (*domain.User, error) {
			if id != "u-2" || in.Password != "" || in.IsActive {
				t.Fatalf("unexpected update %s: %+v", id, in)
			}
			return &domain.User{UserID: id}, nil
		},
	}
	body := `{"email":"ana@example.com","full_name":"Ana","role_id":"r-tech","is_active":false}`
	c, _ := newRequest(http.MethodPut, "/v1/users/u-2", strings.NewReader(body))
	withParam(c, "id", "u-2")

	if err := NewUserHandler(stub).Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func TestUserHandler_Technicians(t *testing.T) {
	stub := &stubUserService{
		eligibleFn: func(_ context.Context, c domain.Capability) ([]domain.User, error) {
			if c != domain.CapInstallAssets {
				t.Fatalf("unexpected capability %q", c)
			}
			return []domain.User{{UserID: "u-3"}}, nil
		},
	}
	c, rec := newRequest(http.MethodGet, "/v1/technicians?capability=install_assets", nil)

	if err := NewUserHandler(stub).Technicians(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if list := decode[[]map[string]any](t, rec); len(list) != 1 {
		t.Fatalf("unexpected body: %v", list)
	}
}

func TestUserHandler_Technicians_UnknownCapability(t *testing.T) {
	stub := &stubUserService{
		eligibleFn: func(context.Context, domain.Capability) ([]domain.User, error) {
			ve := domain.NewValidationError()
			ve.Add("capability", "is not a known capability")
			return nil, ve
		},
	}
	c, _ := newRequest(http.MethodGet, "/v1/technicians?capability=fly", nil)

	err := NewUserHandler(stub).Technicians(c)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
