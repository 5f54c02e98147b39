package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aquaflow/servicecrm/internal/core/domain"
)

func newDashboardFixture() (*DashboardService, *stubAssetRepo) {
	customers := newStubCustomerRepo(domain.Customer{CustomerID: "C1"}, domain.Customer{CustomerID: "C2"})
	assets := newStubAssetRepo(
		domain.Asset{AssetID: "A1", CustomerID: "C1", InstallDate: daysAgo(400), ServiceFrequencyMonths: intPtr(12)},
		domain.Asset{AssetID: "A2", CustomerID: "C2", InstallDate: daysAgo(10), ServiceFrequencyMonths: intPtr(1)},
		domain.Asset{AssetID: "A3", CustomerID: "C2", InstallDate: daysAgo(10)},
	)
	orders := newStubOrderRepo(
		domain.ServiceOrder{ServiceID: "O1", Status: domain.OrderRequested},
		domain.ServiceOrder{ServiceID: "O2", Status: domain.OrderScheduled},
		domain.ServiceOrder{ServiceID: "O3", Status: domain.OrderInProgress},
		domain.ServiceOrder{ServiceID: "O4", Status: domain.OrderCompleted},
		domain.ServiceOrder{ServiceID: "O5", Status: domain.OrderCanceled},
	)
	svc := NewDashboardService(customers, assets, orders, discardLogger)
	svc.now = clock
	return svc, assets
}

func TestDashboardService_Stats(t *testing.T) {
	svc, _ := newDashboardFixture()

	d, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := d.Stats
	if s.TotalCustomers != 2 || s.TotalAssets != 3 || s.PendingOrders != 2 || s.CompletedOrders != 1 {
		t.Errorf("unexpected stats: %+v", s)
	}
	if d.Alerts.Count != 2 || d.Alerts.Alerts[0].AssetID != "A1" || d.Alerts.NeedingAttention() != 1 {
		t.Errorf("unexpected alerts: %+v", d.Alerts)
	}
	if d.Stale || !d.GeneratedAt.Equal(fixedNow) {
		t.Errorf("fresh dashboard expected, got %+v", d)
	}
}

func TestDashboardService_ServesStaleSnapshotOnFailure(t *testing.T) {
	svc, assets := newDashboardFixture()
	if _, err := svc.Dashboard(context.Background()); err != nil {
		t.Fatalf("warm-up failed: %v", err)
	}

	assets.setErr(errors.New("mongo down"))
	svc.now = func() time.Time { return fixedNow.Add(time.Minute) }

	d, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("expected stale snapshot, got error %v", err)
	}
	if !d.Stale || d.Stats.TotalAssets != 3 || !d.GeneratedAt.Equal(fixedNow) {
		t.Errorf("expected last good snapshot flagged stale, got %+v", d)
	}

	assets.setErr(nil)
	d, _ = svc.Dashboard(context.Background())
	if d.Stale {
		t.Error("recovered store must produce a fresh dashboard")
	}
}

func TestDashboardService_FailureWithoutSnapshot(t *testing.T) {
	svc, assets := newDashboardFixture()
	assets.setErr(errors.New("mongo down"))

	if _, err := svc.Dashboard(context.Background()); err == nil {
		t.Fatal("expected error when no snapshot exists")
	}
}
