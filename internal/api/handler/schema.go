package handler

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aquaflow/servicecrm/internal/core/domain"
	"github.com/aquaflow/servicecrm/internal/core/ports"
)

// ErrorResponse is the error envelope returned on all 4xx/5xx responses.
// Fields is set for validation failures only.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// --- Auth ---

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
}

// --- Customers ---

type customerRequest struct {
	CustomerID string `json:"customer_id"`
	Name       string `json:"name"       validate:"required"`
	Status     string `json:"status"     validate:"omitempty,oneof=lead active inactive archived"`
	Email      string `json:"email"      validate:"omitempty,email"`
	Phone      string `json:"phone"`
	Street     string `json:"street"`
	City       string `json:"city"`
	StateCode  string `json:"state_code"`
	Notes      string `json:"notes"`
}

func (r customerRequest) toDomain() domain.Customer {
	return domain.Customer{
		CustomerID: strings.TrimSpace(r.CustomerID),
		Name:       r.Name,
		Status:     domain.CustomerStatus(r.Status),
		Email:      r.Email,
		Phone:      r.Phone,
		Street:     r.Street,
		City:       r.City,
		StateCode:  r.StateCode,
		Notes:      r.Notes,
	}
}

// --- Products ---

type productRequest struct {
	SKU                      string           `json:"sku"`
	Name                     string           `json:"name"                       validate:"required"`
	Category                 string           `json:"category"                   validate:"required,oneof=system filter uv media part service"`
	DefaultReplacementMonths *int             `json:"default_replacement_months" validate:"omitempty,gte=0"`
	Price                    *decimal.Decimal `json:"price"`
	IsActive                 *bool            `json:"is_active"`
}

func (r productRequest) toDomain() domain.Product {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return domain.Product{
		SKU:                      r.SKU,
		Name:                     r.Name,
		Category:                 domain.ProductCategory(r.Category),
		DefaultReplacementMonths: r.DefaultReplacementMonths,
		Price:                    r.Price,
		IsActive:                 active,
	}
}

// --- Assets ---

type assetRequest struct {
	CustomerID             string     `json:"customer_id"              validate:"required"`
	ProductID              string     `json:"product_id"               validate:"required"`
	Serial                 string     `json:"serial"`
	InstallDate            *civilDate `json:"install_date"`
	InstalledBy            string     `json:"installed_by"`
	ServiceFrequencyMonths *int       `json:"service_frequency_months" validate:"omitempty,gte=0"`
	Status                 string     `json:"status"                   validate:"omitempty,oneof=active inactive removed"`
	FinancingStatus        string     `json:"financing_status"`
	Notes                  string     `json:"notes"`
}

func (r assetRequest) toDomain() domain.Asset {
	return domain.Asset{
		CustomerID:             r.CustomerID,
		ProductID:              r.ProductID,
		Serial:                 r.Serial,
		InstallDate:            r.InstallDate.ptr(),
		InstalledBy:            r.InstalledBy,
		ServiceFrequencyMonths: r.ServiceFrequencyMonths,
		Status:                 domain.AssetStatus(r.Status),
		FinancingStatus:        r.FinancingStatus,
		Notes:                  r.Notes,
	}
}

// --- Service orders ---

type serviceOrderRequest struct {
	CustomerID    string           `json:"customer_id"    validate:"required"`
	AssetID       string           `json:"asset_id"`
	TechnicianID  string           `json:"technician_id"`
	ServiceType   string           `json:"service_type"   validate:"required,oneof=installation maintenance repair filter_change warranty inspection removal other"`
	Status        string           `json:"status"         validate:"omitempty,oneof=requested scheduled in_progress completed canceled"`
	ScheduledAt   *civilDate       `json:"scheduled_at"`
	CompletedAt   *civilDate       `json:"completed_at"`
	Amount        *decimal.Decimal `json:"amount"`
	PaymentStatus string           `json:"payment_status" validate:"omitempty,oneof=pending paid canceled"`
	Notes         string           `json:"notes"`
}

func (r serviceOrderRequest) toDomain() domain.ServiceOrder {
	return domain.ServiceOrder{
		CustomerID:    r.CustomerID,
		AssetID:       r.AssetID,
		TechnicianID:  r.TechnicianID,
		ServiceType:   domain.ServiceType(r.ServiceType),
		Status:        domain.OrderStatus(r.Status),
		ScheduledAt:   r.ScheduledAt.ptr(),
		CompletedAt:   r.CompletedAt.ptr(),
		Amount:        r.Amount,
		PaymentStatus: domain.PaymentStatus(r.PaymentStatus),
		Notes:         r.Notes,
	}
}

type createOrderResponse struct {
	*domain.ServiceOrder
	AlreadyExisted bool `json:"already_existed,omitempty"`
}

// --- Users and roles ---

type userRequest struct {
	Email    string `json:"email"     validate:"required,email"`
	FullName string `json:"full_name" validate:"required"`
	Phone    string `json:"phone"`
	RoleID   string `json:"role_id"   validate:"required"`
	IsActive *bool  `json:"is_active"`
	Password string `json:"password"  validate:"omitempty,min=6"`
}

func (r userRequest) toInput() ports.UserInput {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return ports.UserInput{
		Email:    r.Email,
		FullName: r.FullName,
		Phone:    r.Phone,
		RoleID:   r.RoleID,
		IsActive: active,
		Password: r.Password,
	}
}

type roleRequest struct {
	Name string `json:"name" validate:"required,min=3"`
	Kind string `json:"kind" validate:"required,oneof=manager installer technician staff"`
}

func (r roleRequest) toDomain() domain.Role {
	return domain.Role{Name: r.Name, Kind: domain.RoleKind(r.Kind)}
}
