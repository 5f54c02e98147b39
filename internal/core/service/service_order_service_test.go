package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aquaflow/servicecrm/internal/core/domain"
	"github.com/aquaflow/servicecrm/internal/core/filter"
)

type orderFixture struct {
	svc    *ServiceOrderService
	orders *stubOrderRepo
	idem   *stubIdem
	queue  *recordingQueue
}

func newOrderFixture(existing ...domain.ServiceOrder) orderFixture {
	f := orderFixture{
		orders: newStubOrderRepo(existing...),
		idem:   newStubIdem(),
		queue:  &recordingQueue{},
	}
	customers := newStubCustomerRepo(
		domain.Customer{CustomerID: "C1", Name: "Ana"},
		domain.Customer{CustomerID: "C2", Name: "Bruno"},
	)
	assets := newStubAssetRepo(
		domain.Asset{AssetID: "A1", CustomerID: "C1"},
		domain.Asset{AssetID: "A2", CustomerID: "C2"},
	)
	users := newStubUserRepo(
		userWithRole("tech", technicianRole, true),
		userWithRole("installer", installerRole, true),
	)
	f.svc = NewServiceOrderService(f.orders, customers, assets, users, f.idem, f.queue, discardLogger)
	f.svc.now = clock
	return f
}

func TestServiceOrderService_Create_Defaults(t *testing.T) {
	f := newOrderFixture()

	res, err := f.svc.Create(context.Background(), domain.ServiceOrder{
		CustomerID: "C1", AssetID: "A1", TechnicianID: "tech", ServiceType: domain.ServiceMaintenance,
	}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	o := res.Order
	if o.ServiceID == "" || o.Status != domain.OrderRequested || o.PaymentStatus != domain.PaymentPending {
		t.Errorf("defaults not applied: %+v", o)
	}
	if !o.RequestedAt.Equal(fixedNow) || o.CompletedAt != nil {
		t.Errorf("timestamps wrong: %+v", o)
	}
	if res.AlreadyExisted {
		t.Error("fresh create must not be a replay")
	}
	if q := f.queue.enqueued(); len(q) != 1 || q[0] != "C1" {
		t.Errorf("expected recompute for C1, got %v", q)
	}
}

func TestServiceOrderService_Create_CompletedIsStamped(t *testing.T) {
	f := newOrderFixture()

	res, err := f.svc.Create(context.Background(), domain.ServiceOrder{
		CustomerID: "C1", ServiceType: domain.ServiceRepair, Status: domain.OrderCompleted,
	}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Order.CompletedAt == nil || !res.Order.CompletedAt.Equal(fixedNow) {
		t.Errorf("expected CompletedAt stamped, got %v", res.Order.CompletedAt)
	}
}

func TestServiceOrderService_Create_Rejections(t *testing.T) {
	cases := []struct {
		name  string
		order domain.ServiceOrder
		want  error
	}{
		{"asset of another customer", domain.ServiceOrder{CustomerID: "C1", AssetID: "A2", ServiceType: domain.ServiceRepair}, domain.ErrAssetCustomerMismatch},
		{"unknown asset", domain.ServiceOrder{CustomerID: "C1", AssetID: "A9", ServiceType: domain.ServiceRepair}, domain.ErrAssetNotFound},
		{"unknown customer", domain.ServiceOrder{CustomerID: "C9", ServiceType: domain.ServiceRepair}, domain.ErrCustomerNotFound},
		{"installer cannot service", domain.ServiceOrder{CustomerID: "C1", TechnicianID: "installer", ServiceType: domain.ServiceRepair}, domain.ErrTechnicianIneligible},
		{"unknown technician", domain.ServiceOrder{CustomerID: "C1", TechnicianID: "ghost", ServiceType: domain.ServiceRepair}, domain.ErrUserNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newOrderFixture()
			_, err := f.svc.Create(context.Background(), tc.order, "")
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if len(f.orders.all()) != 0 {
				t.Error("rejected order must not be stored")
			}
		})
	}
}

func TestServiceOrderService_Create_Validation(t *testing.T) {
	f := newOrderFixture()
	neg := decimal.NewFromInt(-5)

	_, err := f.svc.Create(context.Background(), domain.ServiceOrder{Amount: &neg, Status: "lost"}, "")

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"customer_id", "service_type", "status", "amount"} {
		if ve.Fields[field] == "" {
			t.Errorf("expected message for %s, got %v", field, ve.Fields)
		}
	}
}

func TestServiceOrderService_Create_IdempotencyReplay(t *testing.T) {
	f := newOrderFixture()
	in := domain.ServiceOrder{CustomerID: "C1", ServiceType: domain.ServiceInspection}

	first, err := f.svc.Create(context.Background(), in, "key-1")
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	second, err := f.svc.Create(context.Background(), in, "key-1")
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}

	if second.Order.ServiceID != first.Order.ServiceID || !second.AlreadyExisted {
		t.Errorf("replay must return the first order: %+v", second)
	}
	if len(f.orders.all()) != 1 {
		t.Errorf("expected 1 stored order, got %d", len(f.orders.all()))
	}
	if len(f.queue.enqueued()) != 1 {
		t.Errorf("replay must not signal a recompute, got %v", f.queue.enqueued())
	}
}

func TestServiceOrderService_Create_IdempotencyStoreDown(t *testing.T) {
	f := newOrderFixture()
	f.idem.lookupErr = errors.New("redis down")

	res, err := f.svc.Create(context.Background(), domain.ServiceOrder{CustomerID: "C1", ServiceType: domain.ServiceOther}, "key-2")
	if err != nil || res.AlreadyExisted {
		t.Fatalf("lookup failure must fall through to a normal create: %+v %v", res, err)
	}
}

func TestServiceOrderService_Update_Transitions(t *testing.T) {
	requested := time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)
	done := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	cases := []struct {
		name    string
		from    domain.OrderStatus
		to      domain.OrderStatus
		wantErr bool
	}{
		{"requested to in_progress", domain.OrderRequested, domain.OrderInProgress, false},
		{"in_progress back to requested", domain.OrderInProgress, domain.OrderRequested, false},
		{"scheduled to canceled", domain.OrderScheduled, domain.OrderCanceled, false},
		{"completed stays completed", domain.OrderCompleted, domain.OrderCompleted, false},
		{"completed to requested", domain.OrderCompleted, domain.OrderRequested, true},
		{"canceled to scheduled", domain.OrderCanceled, domain.OrderScheduled, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			existing := domain.ServiceOrder{ServiceID: "O1", CustomerID: "C1", ServiceType: domain.ServiceRepair,
				Status: tc.from, PaymentStatus: domain.PaymentPending, RequestedAt: requested}
			if tc.from == domain.OrderCompleted {
				existing.CompletedAt = &done
			}
			f := newOrderFixture(existing)

			got, err := f.svc.Update(context.Background(), domain.ServiceOrder{
				ServiceID: "O1", CustomerID: "C1", ServiceType: domain.ServiceRepair, Status: tc.to,
			})
			if tc.wantErr {
				if !errors.Is(err, domain.ErrInvalidTransition) {
					t.Fatalf("expected ErrInvalidTransition, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.RequestedAt.Equal(requested) {
				t.Errorf("RequestedAt must be preserved, got %v", got.RequestedAt)
			}
			if tc.to == domain.OrderCompleted && (got.CompletedAt == nil || !got.CompletedAt.Equal(done)) {
				t.Errorf("CompletedAt must be preserved, got %v", got.CompletedAt)
			}
		})
	}
}

func TestServiceOrderService_Complete(t *testing.T) {
	f := newOrderFixture(
		domain.ServiceOrder{ServiceID: "O1", CustomerID: "C1", Status: domain.OrderScheduled},
		domain.ServiceOrder{ServiceID: "O2", CustomerID: "C1", Status: domain.OrderCanceled},
	)

	done, err := f.svc.Complete(context.Background(), "O1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if done.Status != domain.OrderCompleted || done.CompletedAt == nil || !done.CompletedAt.Equal(fixedNow) {
		t.Errorf("unexpected completion: %+v", done)
	}

	f.svc.now = func() time.Time { return fixedNow.Add(time.Hour) }
	again, err := f.svc.Complete(context.Background(), "O1")
	if err != nil || !again.CompletedAt.Equal(fixedNow) {
		t.Errorf("second completion must keep the first stamp: %+v %v", again, err)
	}

	if _, err := f.svc.Complete(context.Background(), "O2"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for canceled order, got %v", err)
	}
	if q := f.queue.enqueued(); len(q) != 1 {
		t.Errorf("expected one recompute, got %v", q)
	}
}

func TestServiceOrderService_List_Filters(t *testing.T) {
	f := newOrderFixture(
		domain.ServiceOrder{ServiceID: "O1", CustomerID: "C1", CustomerName: "Ana", TechnicianID: "tech", Status: domain.OrderScheduled, PaymentStatus: domain.PaymentPending},
		domain.ServiceOrder{ServiceID: "O2", CustomerID: "C2", CustomerName: "Bruno", Status: domain.OrderCompleted, PaymentStatus: domain.PaymentPaid},
	)

	got, err := f.svc.List(context.Background(), filter.Query{Filters: map[string]string{filter.ByPayment: "paid"}})
	if err != nil || len(got) != 1 || got[0].ServiceID != "O2" {
		t.Fatalf("expected O2, got %+v (%v)", got, err)
	}
	got, _ = f.svc.List(context.Background(), filter.Query{Filters: map[string]string{filter.ByTechnician: "tech", filter.ByStatus: "all"}})
	if len(got) != 1 || got[0].ServiceID != "O1" {
		t.Fatalf("expected O1, got %+v", got)
	}
}

func TestServiceOrderService_Delete(t *testing.T) {
	f := newOrderFixture(domain.ServiceOrder{ServiceID: "O1", CustomerID: "C2"})

	if err := f.svc.Delete(context.Background(), "O1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q := f.queue.enqueued(); len(q) != 1 || q[0] != "C2" {
		t.Errorf("expected recompute for C2, got %v", q)
	}
	if err := f.svc.Delete(context.Background(), "O1"); !errors.Is(err, domain.ErrServiceOrderNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
