package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type ProductCategory string

const (
	CategorySystem  ProductCategory = "system"
	CategoryFilter  ProductCategory = "filter"
	CategoryUV      ProductCategory = "uv"
	CategoryMedia   ProductCategory = "media"
	CategoryPart    ProductCategory = "part"
	CategoryService ProductCategory = "service"
)

func (c ProductCategory) Valid() bool {
	switch c {
	case CategorySystem, CategoryFilter, CategoryUV, CategoryMedia, CategoryPart, CategoryService:
		return true
	}
	return false
}

// Product is a catalog entry. Only system products become assets.
type Product struct {
	ProductID                string           `json:"product_id"`
	SKU                      string           `json:"sku,omitempty"`
	Name                     string           `json:"name"`
	Category                 ProductCategory  `json:"category"`
	DefaultReplacementMonths *int             `json:"default_replacement_months,omitempty"`
	Price                    *decimal.Decimal `json:"price,omitempty"`
	IsActive                 bool             `json:"is_active"`
	CreatedAt                time.Time        `json:"created_at"`
	UpdatedAt                time.Time        `json:"updated_at"`
}

// Installable reports whether the product can be installed at a customer.
func (p *Product) Installable() bool {
	return p.Category == CategorySystem
}

func (p *Product) Validate() error {
	v := NewValidationError()
	if strings.TrimSpace(p.Name) == "" {
		v.Add("name", "is required")
	}
	if !p.Category.Valid() {
		v.Add("category", "must be one of: system filter uv media part service")
	}
	if p.DefaultReplacementMonths != nil && *p.DefaultReplacementMonths < 0 {
		v.Add("default_replacement_months", "must not be negative")
	}
	if p.Price != nil && p.Price.IsNegative() {
		v.Add("price", "must not be negative")
	}
	return v.OrNil()
}
