package ports

import (
	"context"
	"time"

	"github.com/aquaflow/servicecrm/internal/core/account"
	"github.com/aquaflow/servicecrm/internal/core/domain"
	"github.com/aquaflow/servicecrm/internal/core/filter"
	"github.com/aquaflow/servicecrm/internal/core/maintenance"
)

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, p domain.Principal) error
	// Authenticate verifies a bearer token and its live session.
	Authenticate(ctx context.Context, token string) (*domain.Principal, error)
	Me(ctx context.Context, p domain.Principal) (*domain.User, error)
}

// AssetView is an asset with its maintenance status, when one applies.
type AssetView struct {
	domain.Asset
	Maintenance *maintenance.Status `json:"maintenance,omitempty"`
}

// CustomerDetail is the one-page view of a customer account.
type CustomerDetail struct {
	Customer domain.Customer       `json:"customer"`
	Assets   []AssetView           `json:"assets"`
	Orders   []domain.ServiceOrder `json:"service_orders"`
	Summary  account.Summary       `json:"summary"`
	Timeline []account.Event       `json:"timeline"`
	Alerts   maintenance.Report    `json:"alerts"`
}

// TimelinePage is one window of a customer's timeline.
type TimelinePage struct {
	Items  []account.Event `json:"items"`
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Limit  int             `json:"limit"`
}

type CustomerService interface {
	List(ctx context.Context, q filter.Query) ([]domain.Customer, error)
	Get(ctx context.Context, customerID string) (*domain.Customer, error)
	Create(ctx context.Context, p domain.Principal, c domain.Customer) (*domain.Customer, error)
	Update(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	Delete(ctx context.Context, customerID string) error
	Detail(ctx context.Context, customerID string) (*CustomerDetail, error)
	Timeline(ctx context.Context, customerID string, offset, limit int) (*TimelinePage, error)
	DraftOrder(ctx context.Context, customerID string) (*domain.ServiceOrder, error)
}

type ProductService interface {
	List(ctx context.Context, q filter.Query) ([]domain.Product, error)
	Installable(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, productID string) (*domain.Product, error)
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, productID string) error
}

type AssetService interface {
	List(ctx context.Context, q filter.Query) ([]AssetView, error)
	DueForService(ctx context.Context) (maintenance.Report, error)
	Get(ctx context.Context, assetID string) (*AssetView, error)
	Create(ctx context.Context, a domain.Asset) (*domain.Asset, error)
	Update(ctx context.Context, a domain.Asset) (*domain.Asset, error)
	Delete(ctx context.Context, assetID string) error
	DraftOrder(ctx context.Context, assetID string) (*domain.ServiceOrder, error)
}

// CreateOrderResult reports whether an idempotency key replayed an earlier
// creation.
type CreateOrderResult struct {
	Order          *domain.ServiceOrder
	AlreadyExisted bool
}

type ServiceOrderService interface {
	List(ctx context.Context, q filter.Query) ([]domain.ServiceOrder, error)
	Get(ctx context.Context, serviceID string) (*domain.ServiceOrder, error)
	Create(ctx context.Context, o domain.ServiceOrder, idempotencyKey string) (*CreateOrderResult, error)
	Update(ctx context.Context, o domain.ServiceOrder) (*domain.ServiceOrder, error)
	Delete(ctx context.Context, serviceID string) error
	Complete(ctx context.Context, serviceID string) (*domain.ServiceOrder, error)
}

// UserInput carries a user mutation. An empty Password keeps the current
// hash on update.
type UserInput struct {
	Email    string
	FullName string
	Phone    string
	RoleID   string
	IsActive bool
	Password string
}

type UserService interface {
	List(ctx context.Context) ([]domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Create(ctx context.Context, in UserInput) (*domain.User, error)
	Update(ctx context.Context, userID string, in UserInput) (*domain.User, error)
	Delete(ctx context.Context, userID string) error
	// Eligible lists the active users whose role grants c.
	Eligible(ctx context.Context, c domain.Capability) ([]domain.User, error)
}

type RoleService interface {
	List(ctx context.Context) ([]domain.Role, error)
	Create(ctx context.Context, r domain.Role) (*domain.Role, error)
	Update(ctx context.Context, r domain.Role) (*domain.Role, error)
	Delete(ctx context.Context, roleID string) error
}

// DashboardStats are the headline counters of the dashboard.
type DashboardStats struct {
	TotalCustomers  int64 `json:"total_customers"`
	TotalAssets     int64 `json:"total_assets"`
	PendingOrders   int64 `json:"pending_orders"`
	CompletedOrders int64 `json:"completed_orders"`
}

// Dashboard is the landing view. Stale is set when the store failed and the
// last good snapshot is served instead.
type Dashboard struct {
	Stats       DashboardStats     `json:"stats"`
	Alerts      maintenance.Report `json:"alerts"`
	GeneratedAt time.Time          `json:"generated_at"`
	Stale       bool               `json:"stale"`
}

type DashboardService interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
}

// RecomputeResult is the outcome of one recompute job. Summary is nil for a
// global scan.
type RecomputeResult struct {
	CustomerID string
	Summary    *account.Summary
	Alerts     maintenance.Report
}

// Recomputer rebuilds derived figures after a change.
type Recomputer interface {
	Recompute(ctx context.Context, customerID string) (*RecomputeResult, error)
}
