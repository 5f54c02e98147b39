// Package account derives per-customer figures from a snapshot of the
// customer's assets and service orders. Nothing is cached: callers recompute
// from the full current slice after every change.
package account

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/aquaflow/servicecrm/internal/core/domain"
	"github.com/aquaflow/servicecrm/internal/core/maintenance"
)

// Summary holds the customer statistics shown on the detail view.
type Summary struct {
	TotalAssets              int             `json:"total_assets"`
	ActiveAssets             int             `json:"active_assets"`
	TotalOrders              int             `json:"total_orders"`
	CompletedOrders          int             `json:"completed_orders"`
	TotalSpent               decimal.Decimal `json:"total_spent"`
	PendingPayments          decimal.Decimal `json:"pending_payments"`
	AveragePerService        decimal.Decimal `json:"average_per_service"`
	AssetsNeedingMaintenance int             `json:"assets_needing_maintenance"`
}

// Summarize computes the statistics for one customer. Assets and orders are
// expected to be pre-filtered to that customer.
func Summarize(assets []domain.Asset, orders []domain.ServiceOrder, now time.Time) Summary {
	s := Summary{
		TotalAssets:       len(assets),
		TotalOrders:       len(orders),
		TotalSpent:        decimal.Zero,
		PendingPayments:   decimal.Zero,
		AveragePerService: decimal.Zero,
	}

	for _, a := range assets {
		if a.Status == domain.AssetActive {
			s.ActiveAssets++
		}
		if st, ok := maintenance.Evaluate(a, now); ok && st.Priority.NeedsAttention() {
			s.AssetsNeedingMaintenance++
		}
	}

	for i := range orders {
		o := &orders[i]
		if o.Status == domain.OrderCompleted {
			s.CompletedOrders++
		}
		if o.CountsTowardSpend() {
			s.TotalSpent = s.TotalSpent.Add(o.AmountOrZero())
		}
		if o.PaymentStatus == domain.PaymentPending {
			s.PendingPayments = s.PendingPayments.Add(o.AmountOrZero())
		}
	}

	if s.CompletedOrders > 0 {
		s.AveragePerService = s.TotalSpent.
			Div(decimal.NewFromInt(int64(s.CompletedOrders))).
			Round(2)
	}
	return s
}
