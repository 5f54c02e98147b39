package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type ServiceType string

const (
	ServiceInstallation ServiceType = "installation"
	ServiceMaintenance  ServiceType = "maintenance"
	ServiceRepair       ServiceType = "repair"
	ServiceFilterChange ServiceType = "filter_change"
	ServiceWarranty     ServiceType = "warranty"
	ServiceInspection   ServiceType = "inspection"
	ServiceRemoval      ServiceType = "removal"
	ServiceOther        ServiceType = "other"
)

func (t ServiceType) Valid() bool {
	switch t {
	case ServiceInstallation, ServiceMaintenance, ServiceRepair, ServiceFilterChange,
		ServiceWarranty, ServiceInspection, ServiceRemoval, ServiceOther:
		return true
	}
	return false
}

// OrderStatus represents the lifecycle state of a service order.
type OrderStatus string

const (
	OrderRequested  OrderStatus = "requested"
	OrderScheduled  OrderStatus = "scheduled"
	OrderInProgress OrderStatus = "in_progress"
	OrderCompleted  OrderStatus = "completed"
	OrderCanceled   OrderStatus = "canceled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderRequested, OrderScheduled, OrderInProgress, OrderCompleted, OrderCanceled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed.
func (s OrderStatus) Terminal() bool {
	return s == OrderCompleted || s == OrderCanceled
}

// Pending reports whether the order still waits to be worked on.
func (s OrderStatus) Pending() bool {
	return s == OrderRequested || s == OrderScheduled
}

// PendingStatuses lists the statuses for which Pending is true.
func PendingStatuses() []OrderStatus {
	var out []OrderStatus
	for _, s := range []OrderStatus{OrderRequested, OrderScheduled, OrderInProgress, OrderCompleted, OrderCanceled} {
		if s.Pending() {
			out = append(out, s)
		}
	}
	return out
}

// CanTransitionTo reports whether a transition from s to next is valid.
// Non-terminal orders may move freely; completed and canceled are final.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	return !s.Terminal()
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentCanceled PaymentStatus = "canceled"
)

func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentPending, PaymentPaid, PaymentCanceled:
		return true
	}
	return false
}

// ServiceOrder is a unit of work for a customer, optionally tied to one asset.
// CustomerName, TechnicianName and AssetSerial are read-side joins.
type ServiceOrder struct {
	ServiceID     string           `json:"service_id"`
	CustomerID    string           `json:"customer_id"`
	AssetID       string           `json:"asset_id,omitempty"`
	TechnicianID  string           `json:"technician_id,omitempty"`
	ServiceType   ServiceType      `json:"service_type"`
	Status        OrderStatus      `json:"status"`
	RequestedAt   time.Time        `json:"requested_at"`
	ScheduledAt   *time.Time       `json:"scheduled_at,omitempty"`
	CompletedAt   *time.Time       `json:"completed_at,omitempty"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	PaymentStatus PaymentStatus    `json:"payment_status"`
	Notes         string           `json:"notes,omitempty"`

	CustomerName   string `json:"customer_name,omitempty"`
	TechnicianName string `json:"technician_name,omitempty"`
	AssetSerial    string `json:"asset_serial,omitempty"`
}

// CountsTowardSpend reports whether the order contributes to a customer's
// spend: it must be both completed and paid.
func (o *ServiceOrder) CountsTowardSpend() bool {
	return o.Status == OrderCompleted && o.PaymentStatus == PaymentPaid
}

// AmountOrZero returns the order amount, treating a missing amount as zero.
func (o *ServiceOrder) AmountOrZero() decimal.Decimal {
	if o.Amount == nil {
		return decimal.Zero
	}
	return *o.Amount
}

func (o *ServiceOrder) Validate() error {
	v := NewValidationError()
	if strings.TrimSpace(o.CustomerID) == "" {
		v.Add("customer_id", "is required")
	}
	switch {
	case o.ServiceType == "":
		v.Add("service_type", "is required")
	case !o.ServiceType.Valid():
		v.Add("service_type", "must be one of: installation maintenance repair filter_change warranty inspection removal other")
	}
	if o.Status != "" && !o.Status.Valid() {
		v.Add("status", "must be one of: requested scheduled in_progress completed canceled")
	}
	if o.PaymentStatus != "" && !o.PaymentStatus.Valid() {
		v.Add("payment_status", "must be one of: pending paid canceled")
	}
	if o.Amount != nil && o.Amount.IsNegative() {
		v.Add("amount", "must not be negative")
	}
	return v.OrNil()
}
