package filter

import (
	"strconv"

	"github.com/aquaflow/servicecrm/internal/core/domain"
)

// Criterion names shared by the list endpoints.
const (
	ByStatus     = "status"
	ByCategory   = "category"
	ByActive     = "active"
	ByCustomer   = "customer"
	ByTechnician = "technician"
	ByPayment    = "payment_status"
	ByDueService = "due_service"
)

var Customers = Spec[domain.Customer]{
	SearchFields: []func(domain.Customer) string{
		func(c domain.Customer) string { return c.CustomerID },
		func(c domain.Customer) string { return c.Name },
		func(c domain.Customer) string { return c.Email },
		func(c domain.Customer) string { return c.Phone },
	},
	Criteria: map[string]Criterion[domain.Customer]{
		ByStatus: Equals(func(c domain.Customer) string { return string(c.Status) }),
	},
}

var Products = Spec[domain.Product]{
	SearchFields: []func(domain.Product) string{
		func(p domain.Product) string { return p.Name },
		func(p domain.Product) string { return p.SKU },
	},
	Criteria: map[string]Criterion[domain.Product]{
		ByCategory: Equals(func(p domain.Product) string { return string(p.Category) }),
		ByActive: {
			Strategy: Local,
			Match: func(p domain.Product, value string) bool {
				switch value {
				case "active":
					return p.IsActive
				case "inactive":
					return !p.IsActive
				}
				want, err := strconv.ParseBool(value)
				return err == nil && p.IsActive == want
			},
		},
	},
}

// Assets filters installed assets. due_service is remote: it depends on the
// derived last-service dates, which only a fresh store read provides.
var Assets = Spec[domain.Asset]{
	SearchFields: []func(domain.Asset) string{
		func(a domain.Asset) string { return a.Serial },
		func(a domain.Asset) string { return a.CustomerName },
		func(a domain.Asset) string { return a.ProductName },
	},
	Criteria: map[string]Criterion[domain.Asset]{
		ByStatus:     Equals(func(a domain.Asset) string { return string(a.Status) }),
		ByCustomer:   Equals(func(a domain.Asset) string { return a.CustomerID }),
		ByDueService: RemoteOnly[domain.Asset](),
	},
}

var ServiceOrders = Spec[domain.ServiceOrder]{
	SearchFields: []func(domain.ServiceOrder) string{
		func(o domain.ServiceOrder) string { return o.CustomerName },
		func(o domain.ServiceOrder) string { return o.TechnicianName },
		func(o domain.ServiceOrder) string { return o.AssetSerial },
	},
	Criteria: map[string]Criterion[domain.ServiceOrder]{
		ByStatus:     Equals(func(o domain.ServiceOrder) string { return string(o.Status) }),
		ByCustomer:   Equals(func(o domain.ServiceOrder) string { return o.CustomerID }),
		ByTechnician: Equals(func(o domain.ServiceOrder) string { return o.TechnicianID }),
		ByPayment:    Equals(func(o domain.ServiceOrder) string { return string(o.PaymentStatus) }),
	},
}
