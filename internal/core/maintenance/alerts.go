package maintenance

import (
	"sort"
	"time"

	"github.com/aquaflow/servicecrm/internal/core/domain"
)

// Alert is an asset whose priority is upcoming, urgent or overdue, together
// with the asset fields staff need to act on it.
type Alert struct {
	Status
	CustomerID             string     `json:"customer_id"`
	CustomerName           string     `json:"customer_name,omitempty"`
	ProductName            string     `json:"product_name,omitempty"`
	Serial                 string     `json:"serial,omitempty"`
	ServiceFrequencyMonths int        `json:"service_frequency_months"`
	LastServiceDate        *time.Time `json:"last_service_date,omitempty"`
}

// Report is the ranked alert list plus the counts shown as badges.
type Report struct {
	Alerts     []Alert          `json:"alerts"`
	Count      int              `json:"count"`
	ByPriority map[Priority]int `json:"by_priority"`
}

// NeedingAttention counts overdue and urgent alerts.
func (r Report) NeedingAttention() int {
	return r.ByPriority[PriorityOverdue] + r.ByPriority[PriorityUrgent]
}

// Aggregate evaluates every asset and keeps the actionable ones, most
// overdue first. Ties keep their input order.
func Aggregate(assets []domain.Asset, now time.Time) Report {
	alerts := make([]Alert, 0)
	for _, a := range assets {
		st, ok := Evaluate(a, now)
		if !ok || !st.Priority.IsAlert() {
			continue
		}
		alerts = append(alerts, newAlert(a, st))
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].DaysUntilMaintenance < alerts[j].DaysUntilMaintenance
	})

	byPriority := map[Priority]int{
		PriorityOverdue:  0,
		PriorityUrgent:   0,
		PriorityUpcoming: 0,
	}
	for _, al := range alerts {
		byPriority[al.Priority]++
	}

	return Report{Alerts: alerts, Count: len(alerts), ByPriority: byPriority}
}

func newAlert(a domain.Asset, st Status) Alert {
	return Alert{
		Status:                 st,
		CustomerID:             a.CustomerID,
		CustomerName:           a.CustomerName,
		ProductName:            a.ProductName,
		Serial:                 a.Serial,
		ServiceFrequencyMonths: *a.ServiceFrequencyMonths,
		LastServiceDate:        a.LastServiceDate,
	}
}
