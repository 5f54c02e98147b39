package maintenance

import (
	"strings"
	"testing"
	"time"

	"github.com/aquaflow/servicecrm/internal/core/domain"
)

func TestDraftFromAsset(t *testing.T) {
	last := time.Date(2024, time.November, 2, 9, 0, 0, 0, time.UTC)
	a := domain.Asset{
		AssetID:                "asset-1",
		CustomerID:             "C-001",
		ProductName:            "RO-500",
		Serial:                 "SN-77",
		LastServiceDate:        &last,
		ServiceFrequencyMonths: intPtr(6),
	}

	d := DraftFromAsset(a, "C-001")

	if d.CustomerID != "C-001" || d.AssetID != "asset-1" {
		t.Fatalf("unexpected references: %+v", d)
	}
	if d.ServiceType != domain.ServiceMaintenance || d.Status != domain.OrderRequested {
		t.Fatalf("unexpected defaults: type=%s status=%s", d.ServiceType, d.Status)
	}
	for _, want := range []string{"RO-500", "SN-77", "2024-11-02", "every 6 month(s)"} {
		if !strings.Contains(d.Notes, want) {
			t.Errorf("notes missing %q:\n%s", want, d.Notes)
		}
	}
	if d.ServiceID != "" || d.TechnicianID != "" || d.Amount != nil || d.ScheduledAt != nil || d.PaymentStatus != "" {
		t.Errorf("draft must leave the remaining fields empty: %+v", d)
	}
}

func TestDraftFromAsset_NeverServiced(t *testing.T) {
	d := DraftFromAsset(domain.Asset{AssetID: "a1"}, "C-9")
	if !strings.Contains(d.Notes, "Last service: never") || !strings.Contains(d.Notes, "Serial: n/a") {
		t.Fatalf("unexpected notes:\n%s", d.Notes)
	}
}

func TestDraftFromAlert_IncludesUrgency(t *testing.T) {
	assets := []domain.Asset{{
		AssetID: "a1", CustomerID: "C-1", ProductName: "UV-10",
		ServiceFrequencyMonths: intPtr(12), InstallDate: daysAgo(400),
	}}
	al := Aggregate(assets, fixedNow).Alerts[0]

	d := DraftFromAlert(al, "C-1")

	if d.AssetID != "a1" || d.CustomerID != "C-1" {
		t.Fatalf("unexpected references: %+v", d)
	}
	if !strings.Contains(d.Notes, "UV-10") || !strings.Contains(d.Notes, "overdue (40 day(s) late)") {
		t.Fatalf("unexpected notes:\n%s", d.Notes)
	}
}

func TestDraft_IsDeterministic(t *testing.T) {
	a := domain.Asset{AssetID: "a1", ProductName: "RO", ServiceFrequencyMonths: intPtr(3)}
	if DraftFromAsset(a, "C").Notes != DraftFromAsset(a, "C").Notes {
		t.Fatal("expected identical drafts")
	}
}

func TestBlankDraft(t *testing.T) {
	d := BlankDraft("C-3")
	if d.CustomerID != "C-3" || d.AssetID != "" || d.ServiceType != domain.ServiceMaintenance || d.Status != domain.OrderRequested {
		t.Fatalf("unexpected blank draft: %+v", d)
	}
}
