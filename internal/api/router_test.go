package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/aquaflow/servicecrm/internal/api/handler"
	"github.com/aquaflow/servicecrm/internal/core/domain"
)

type tokenAuthenticator map[string]domain.Principal

func (a tokenAuthenticator) Authenticate(_ context.Context, token string) (*domain.Principal, error) {
	p, ok := a[token]
	if !ok {
		return nil, domain.ErrSessionExpired
	}
	return &p, nil
}

var (
	routerOnce sync.Once
	testRouter *echo.Echo
)

// router is built once because the metrics middleware registers its
// collectors globally.
func router() *echo.Echo {
	routerOnce.Do(func() {
		auth := tokenAuthenticator{
			"tech-token": {UserID: "u-2", SessionID: "s-2", RoleKind: domain.RoleTechnician},
		}
		testRouter = NewRouter(Handlers{
			Auth:          handler.NewAuthHandler(nil),
			Dashboard:     handler.NewDashboardHandler(nil, nil),
			Customers:     handler.NewCustomerHandler(nil),
			Products:      handler.NewProductHandler(nil),
			Assets:        handler.NewAssetHandler(nil),
			ServiceOrders: handler.NewServiceOrderHandler(nil),
			Users:         handler.NewUserHandler(nil),
			Roles:         handler.NewRoleHandler(nil),
			Health:        handler.NewHealthHandler(nil),
		}, auth, zerolog.Nop())
	})
	return testRouter
}

func TestRouter_Access(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		path     string
		token    string
		wantCode int
	}{
		{"liveness is public", http.MethodGet, "/health", "", http.StatusOK},
		{"readiness with no checks", http.MethodGet, "/health/ready", "", http.StatusOK},
		{"missing token", http.MethodGet, "/v1/customers", "", http.StatusUnauthorized},
		{"revoked session", http.MethodGet, "/v1/customers", "old-token", http.StatusUnauthorized},
		{"users need administer", http.MethodGet, "/v1/users", "tech-token", http.StatusForbidden},
		{"role writes need administer", http.MethodDelete, "/v1/roles/r-1", "tech-token", http.StatusForbidden},
		{"unknown route", http.MethodGet, "/v1/nowhere", "tech-token", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()

			router().ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, rec.Code, rec.Body.String())
			}
		})
	}
}
