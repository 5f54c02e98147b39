package maintenance

import (
	"fmt"
	"strings"

	"github.com/aquaflow/servicecrm/internal/core/domain"
)

// DraftFromAsset pre-fills a maintenance order for a selected asset. The
// draft is handed back to the caller for confirmation and never stored here.
func DraftFromAsset(a domain.Asset, customerID string) domain.ServiceOrder {
	return domain.ServiceOrder{
		CustomerID:  customerID,
		AssetID:     a.AssetID,
		ServiceType: domain.ServiceMaintenance,
		Status:      domain.OrderRequested,
		Notes:       assetNotes(a),
	}
}

// DraftFromAlert is DraftFromAsset plus the alert urgency in the notes.
func DraftFromAlert(al Alert, customerID string) domain.ServiceOrder {
	freq := al.ServiceFrequencyMonths
	a := domain.Asset{
		AssetID:                al.AssetID,
		CustomerID:             al.CustomerID,
		Serial:                 al.Serial,
		ProductName:            al.ProductName,
		LastServiceDate:        al.LastServiceDate,
		ServiceFrequencyMonths: &freq,
	}
	d := DraftFromAsset(a, customerID)
	d.Notes += "\n" + urgencyLine(al.Status)
	return d
}

// BlankDraft is the starting point for a customer-level order that is not
// tied to any asset.
func BlankDraft(customerID string) domain.ServiceOrder {
	return domain.ServiceOrder{
		CustomerID:  customerID,
		ServiceType: domain.ServiceMaintenance,
		Status:      domain.OrderRequested,
	}
}

func assetNotes(a domain.Asset) string {
	product := a.ProductName
	if product == "" {
		product = "asset " + a.AssetID
	}
	serial := a.Serial
	if serial == "" {
		serial = "n/a"
	}
	last := "never"
	if a.LastServiceDate != nil && !a.LastServiceDate.IsZero() {
		last = a.LastServiceDate.UTC().Format("2006-01-02")
	}
	freq := "not set"
	if a.ServiceFrequencyMonths != nil && *a.ServiceFrequencyMonths > 0 {
		freq = fmt.Sprintf("every %d month(s)", *a.ServiceFrequencyMonths)
	}

	lines := []string{
		"Scheduled maintenance for " + product,
		"Serial: " + serial,
		"Last service: " + last,
		"Frequency: " + freq,
	}
	return strings.Join(lines, "\n")
}

func urgencyLine(st Status) string {
	switch {
	case st.DaysUntilMaintenance < 0:
		return fmt.Sprintf("Priority: %s (%d day(s) late)", st.Priority, -st.DaysUntilMaintenance)
	default:
		return fmt.Sprintf("Priority: %s (due in %d day(s))", st.Priority, st.DaysUntilMaintenance)
	}
}
