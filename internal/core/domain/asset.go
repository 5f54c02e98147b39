package domain

import (
	"strings"
	"time"
)

type AssetStatus string

const (
	AssetActive   AssetStatus = "active"
	AssetInactive AssetStatus = "inactive"
	AssetRemoved  AssetStatus = "removed"
)

func (s AssetStatus) Valid() bool {
	switch s {
	case AssetActive, AssetInactive, AssetRemoved:
		return true
	}
	return false
}

// Asset is a system installed at a customer site.
//
// LastServiceDate is derived by the store: the CompletedAt of the newest
// completed service order that references the asset. CustomerName and
// ProductName are read-side joins and are ignored on writes.
type Asset struct {
	AssetID                string      `json:"asset_id"`
	CustomerID             string      `json:"customer_id"`
	ProductID              string      `json:"product_id"`
	Serial                 string      `json:"serial,omitempty"`
	InstallDate            *time.Time  `json:"install_date,omitempty"`
	InstalledBy            string      `json:"installed_by,omitempty"`
	ServiceFrequencyMonths *int        `json:"service_frequency_months,omitempty"`
	Status                 AssetStatus `json:"status"`
	FinancingStatus        string      `json:"financing_status,omitempty"`
	Notes                  string      `json:"notes,omitempty"`
	LastServiceDate        *time.Time  `json:"last_service_date,omitempty"`

	CustomerName string `json:"customer_name,omitempty"`
	ProductName  string `json:"product_name,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the request-independent asset rules. Product category and
// installer eligibility need the store and are checked by the service layer.
func (a *Asset) Validate() error {
	v := NewValidationError()
	if strings.TrimSpace(a.CustomerID) == "" {
		v.Add("customer_id", "is required")
	}
	if strings.TrimSpace(a.ProductID) == "" {
		v.Add("product_id", "is required")
	}
	if a.ServiceFrequencyMonths != nil && *a.ServiceFrequencyMonths < 0 {
		v.Add("service_frequency_months", "must not be negative")
	}
	if a.Status != "" && !a.Status.Valid() {
		v.Add("status", "must be one of: active inactive removed")
	}
	return v.OrNil()
}
