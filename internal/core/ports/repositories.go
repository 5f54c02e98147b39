package ports

import (
	"context"
	"time"

	"github.com/aquaflow/servicecrm/internal/core/domain"
)

// CustomerRepository persists customers. Customer ids are caller-assigned.
type CustomerRepository interface {
	List(ctx context.Context) ([]domain.Customer, error)
	Get(ctx context.Context, customerID string) (*domain.Customer, error)
	Create(ctx context.Context, c *domain.Customer) error
	Update(ctx context.Context, c *domain.Customer) error
	Delete(ctx context.Context, customerID string) error
	Count(ctx context.Context) (int64, error)
}

// ProductFilter narrows a product listing. Zero values disable a field.
type ProductFilter struct {
	Category   domain.ProductCategory
	ActiveOnly bool
}

type ProductRepository interface {
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
	Get(ctx context.Context, productID string) (*domain.Product, error)
	Create(ctx context.Context, p *domain.Product) error
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, productID string) error
}

// AssetFilter narrows an asset listing. Zero values disable a field.
type AssetFilter struct {
	CustomerID string
	ProductID  string
	ActiveOnly bool
}

// AssetRepository persists assets. Reads return LastServiceDate derived
// from the latest completed order of the asset, plus customer and product
// names.
type AssetRepository interface {
	List(ctx context.Context, filter AssetFilter) ([]domain.Asset, error)
	Get(ctx context.Context, assetID string) (*domain.Asset, error)
	Create(ctx context.Context, a *domain.Asset) error
	Update(ctx context.Context, a *domain.Asset) error
	Delete(ctx context.Context, assetID string) error
}

// OrderFilter narrows a service order listing. Zero values disable a field.
type OrderFilter struct {
	CustomerID   string
	AssetID      string
	TechnicianID string
	Statuses     []domain.OrderStatus
}

// ServiceOrderRepository persists service orders. Reads carry customer name,
// technician name and asset serial. Lists are ordered newest request first.
type ServiceOrderRepository interface {
	List(ctx context.Context, filter OrderFilter) ([]domain.ServiceOrder, error)
	Get(ctx context.Context, serviceID string) (*domain.ServiceOrder, error)
	Create(ctx context.Context, o *domain.ServiceOrder) error
	Update(ctx context.Context, o *domain.ServiceOrder) error
	Delete(ctx context.Context, serviceID string) error
	// Complete moves the order to completed and stamps CompletedAt with at.
	Complete(ctx context.Context, serviceID string, at time.Time) (*domain.ServiceOrder, error)
	Count(ctx context.Context, filter OrderFilter) (int64, error)
}

// UserRepository persists staff users. Reads join the user's role.
type UserRepository interface {
	List(ctx context.Context) ([]domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, userID string) error
	Count(ctx context.Context) (int64, error)
	CountByRole(ctx context.Context, roleID string) (int64, error)
}

type RoleRepository interface {
	List(ctx context.Context) ([]domain.Role, error)
	Get(ctx context.Context, roleID string) (*domain.Role, error)
	Create(ctx context.Context, r *domain.Role) error
	Update(ctx context.Context, r *domain.Role) error
	Delete(ctx context.Context, roleID string) error
}

// SessionStore keeps the live login sessions. A session missing from the
// store is expired or revoked.
type SessionStore interface {
	Save(ctx context.Context, p domain.Principal, ttl time.Duration) error
	Get(ctx context.Context, sessionID string) (*domain.Principal, error)
	Delete(ctx context.Context, sessionID string) error
}

// IdempotencyStore remembers which record a client-supplied key produced.
type IdempotencyStore interface {
	Lookup(ctx context.Context, key string) (string, bool, error)
	Remember(ctx context.Context, key, recordID string) error
}

// RecomputeQueue receives a signal after every asset or order mutation. An
// empty customer id asks for the global alert report only.
type RecomputeQueue interface {
	Enqueue(customerID string)
}
