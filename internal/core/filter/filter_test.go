package filter

import (
	"testing"

	"github.com/aquaflow/servicecrm/internal/core/domain"
)

func sampleAssets() []domain.Asset {
	return []domain.Asset{
		{AssetID: "1", Serial: "RO-100", CustomerID: "C1", CustomerName: "Ana Lopez", ProductName: "Osmosis 5", Status: domain.AssetActive},
		{AssetID: "2", Serial: "UV-200", CustomerID: "C2", CustomerName: "Bruno Diaz", ProductName: "UV Lamp", Status: domain.AssetInactive},
		{AssetID: "3", Serial: "RO-300", CustomerID: "C1", CustomerName: "Ana Lopez", ProductName: "Osmosis 7", Status: domain.AssetRemoved},
		{AssetID: "4", Serial: "", CustomerID: "C3", CustomerName: "Carla Ruiz", ProductName: "Softener", Status: domain.AssetActive},
	}
}

func assetIDs(as []domain.Asset) string {
	s := ""
	for _, a := range as {
		s += a.AssetID
	}
	return s
}

func TestApply_Identity(t *testing.T) {
	items := sampleAssets()

	for _, q := range []Query{
		{},
		{Search: "   ", Filters: map[string]string{ByStatus: All, ByCustomer: "all", ByDueService: "ALL"}},
	} {
		got := Assets.Apply(items, q)
		if assetIDs(got) != "1234" {
			t.Fatalf("expected identity, got %s", assetIDs(got))
		}
	}
}

func TestApply_SearchIsCaseInsensitiveAcrossFields(t *testing.T) {
	cases := map[string]string{
		"ro-":    "13",
		"ana":    "13",
		"uv":     "2",
		"SOFTEN": "4",
		"nobody": "",
	}
	for search, want := range cases {
		got := assetIDs(Assets.Apply(sampleAssets(), Query{Search: search}))
		if got != want {
			t.Errorf("search %q: expected %q, got %q", search, want, got)
		}
	}
}

func TestApply_CombinesTextAndCategories(t *testing.T) {
	q := Query{Search: "ana", Filters: map[string]string{ByStatus: "active", ByCustomer: "C1"}}

	got := assetIDs(Assets.Apply(sampleAssets(), q))

	if got != "1" {
		t.Fatalf("expected only asset 1, got %q", got)
	}
}

func TestApply_IgnoresRemoteAndUnknownCriteria(t *testing.T) {
	q := Query{Filters: map[string]string{ByDueService: "true", "color": "blue"}}

	got := assetIDs(Assets.Apply(sampleAssets(), q))

	if got != "1234" {
		t.Fatalf("expected remote and unknown filters to be skipped locally, got %q", got)
	}
}

func TestSplit_ReturnsOnlyActiveRemoteCriteria(t *testing.T) {
	if remote := Assets.Split(Query{Filters: map[string]string{ByStatus: "active", ByDueService: "all"}}); remote != nil {
		t.Fatalf("expected no remote criteria, got %v", remote)
	}

	remote := Assets.Split(Query{Filters: map[string]string{ByStatus: "active", ByDueService: " true "}})
	if len(remote) != 1 || remote[ByDueService] != "true" {
		t.Fatalf("expected due_service only, got %v", remote)
	}
}

func TestProducts_ActiveCriterion(t *testing.T) {
	items := []domain.Product{
		{ProductID: "p1", Name: "RO", IsActive: true, Category: domain.CategorySystem},
		{ProductID: "p2", Name: "Old RO", IsActive: false, Category: domain.CategorySystem},
		{ProductID: "p3", Name: "Cartridge", SKU: "FLT-01", IsActive: true, Category: domain.CategoryFilter},
	}

	for value, want := range map[string]int{"active": 2, "true": 2, "inactive": 1, "false": 1, "bogus": 0} {
		got := Products.Apply(items, Query{Filters: map[string]string{ByActive: value}})
		if len(got) != want {
			t.Errorf("active=%s: expected %d, got %d", value, want, len(got))
		}
	}

	bySKU := Products.Apply(items, Query{Search: "flt", Filters: map[string]string{ByCategory: "filter"}})
	if len(bySKU) != 1 || bySKU[0].ProductID != "p3" {
		t.Fatalf("expected p3, got %+v", bySKU)
	}
}

func TestServiceOrders_Search(t *testing.T) {
	orders := []domain.ServiceOrder{
		{ServiceID: "o1", CustomerName: "Ana", TechnicianName: "Luis", Status: domain.OrderRequested},
		{ServiceID: "o2", CustomerName: "Bruno", TechnicianName: "", Status: domain.OrderCompleted},
	}

	got := ServiceOrders.Apply(orders, Query{Search: "luis"})
	if len(got) != 1 || got[0].ServiceID != "o1" {
		t.Fatalf("expected o1, got %+v", got)
	}

	got = ServiceOrders.Apply(orders, Query{Filters: map[string]string{ByStatus: "completed"}})
	if len(got) != 1 || got[0].ServiceID != "o2" {
		t.Fatalf("expected o2, got %+v", got)
	}
}
