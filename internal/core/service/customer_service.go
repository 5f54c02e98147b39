package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/aquaflow/servicecrm/internal/core/account"
	"github.com/aquaflow/servicecrm/internal/core/domain"
	"github.com/aquaflow/servicecrm/internal/core/filter"
	"github.com/aquaflow/servicecrm/internal/core/maintenance"
	"github.com/aquaflow/servicecrm/internal/core/ports"
)

const defaultTimelineLimit = 20

type CustomerService struct {
	customers ports.CustomerRepository
	assets    ports.AssetRepository
	orders    ports.ServiceOrderRepository
	log       zerolog.Logger
	now       func() time.Time
}

func NewCustomerService(
	customers ports.CustomerRepository,
	assets ports.AssetRepository,
	orders ports.ServiceOrderRepository,
	log zerolog.Logger,
) *CustomerService {
	return &CustomerService{customers: customers, assets: assets, orders: orders, log: log, now: time.Now}
}

func (s *CustomerService) List(ctx context.Context, q filter.Query) ([]domain.Customer, error) {
	all, err := s.customers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return filter.Customers.Apply(all, q), nil
}

func (s *CustomerService) Get(ctx context.Context, customerID string) (*domain.Customer, error) {
	c, err := s.customers.Get(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

// Create stores a new customer. The id is supplied by the caller; new
// customers start as leads unless a status is given.
func (s *CustomerService) Create(ctx context.Context, p domain.Principal, c domain.Customer) (*domain.Customer, error) {
	normalizeCustomer(&c)
	if c.Status == "" {
		c.Status = domain.CustomerLead
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	c.CreatedBy = p.UserID
	c.CreatedAt = now
	c.UpdatedAt = now

	if err := s.customers.Create(ctx, &c); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	s.log.Info().Str("customer_id", c.CustomerID).Str("created_by", p.UserID).Msg("customer created")
	return &c, nil
}

// Update replaces the editable fields of a customer. Status may move freely
// between any two values.
func (s *CustomerService) Update(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	normalizeCustomer(&c)
	existing, err := s.customers.Get(ctx, c.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}
	if c.Status == "" {
		c.Status = existing.Status
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	c.CreatedBy = existing.CreatedBy
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = s.now().UTC()

	if err := s.customers.Update(ctx, &c); err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}
	s.log.Info().Str("customer_id", c.CustomerID).Msg("customer updated")
	return &c, nil
}

// Delete removes a customer that owns no assets and no service orders.
func (s *CustomerService) Delete(ctx context.Context, customerID string) error {
	if _, err := s.customers.Get(ctx, customerID); err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}

	var assetCount, orderCount int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		as, err := s.assets.List(gctx, ports.AssetFilter{CustomerID: customerID})
		assetCount = int64(len(as))
		return err
	})
	g.Go(func() error {
		n, err := s.orders.Count(gctx, ports.OrderFilter{CustomerID: customerID})
		orderCount = n
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}

	if assetCount > 0 || orderCount > 0 {
		s.log.Warn().
			Str("customer_id", customerID).
			Int64("assets", assetCount).
			Int64("service_orders", orderCount).
			Msg("customer delete rejected")
		return fmt.Errorf("delete customer: %w", domain.ErrHasDependents)
	}

	if err := s.customers.Delete(ctx, customerID); err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	s.log.Info().Str("customer_id", customerID).Msg("customer deleted")
	return nil
}

// snapshot is everything known about one customer at a single instant.
type snapshot struct {
	customer *domain.Customer
	assets   []domain.Asset
	orders   []domain.ServiceOrder
}

// load fetches the customer with its assets and orders in parallel. No
// aggregation starts until all three have resolved.
func (s *CustomerService) load(ctx context.Context, customerID string) (*snapshot, error) {
	var snap snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.customers.Get(gctx, customerID)
		snap.customer = c
		return err
	})
	g.Go(func() error {
		as, err := s.assets.List(gctx, ports.AssetFilter{CustomerID: customerID})
		snap.assets = as
		return err
	})
	g.Go(func() error {
		list, err := s.orders.List(gctx, ports.OrderFilter{CustomerID: customerID})
		snap.orders = list
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Detail assembles the customer page: assets with their maintenance status,
// orders, statistics, timeline and the customer's own alerts.
func (s *CustomerService) Detail(ctx context.Context, customerID string) (*ports.CustomerDetail, error) {
	snap, err := s.load(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("customer detail: %w", err)
	}

	now := s.now()
	return &ports.CustomerDetail{
		Customer: *snap.customer,
		Assets:   assetViews(snap.assets, now),
		Orders:   nonNil(snap.orders),
		Summary:  account.Summarize(snap.assets, snap.orders, now),
		Timeline: nonNil(slices.Collect(account.BuildTimeline(snap.assets, snap.orders).All())),
		Alerts:   maintenance.Aggregate(snap.assets, now),
	}, nil
}

// Timeline returns one page of the customer's feed. A non-positive limit
// falls back to the default page size.
func (s *CustomerService) Timeline(ctx context.Context, customerID string, offset, limit int) (*ports.TimelinePage, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultTimelineLimit
	}

	snap, err := s.load(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("customer timeline: %w", err)
	}

	tl := account.BuildTimeline(snap.assets, snap.orders)
	return &ports.TimelinePage{
		Items:  tl.Page(offset, limit),
		Total:  tl.Len(),
		Offset: offset,
		Limit:  limit,
	}, nil
}

// DraftOrder returns a blank maintenance request for the customer.
func (s *CustomerService) DraftOrder(ctx context.Context, customerID string) (*domain.ServiceOrder, error) {
	c, err := s.customers.Get(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("draft order: %w", err)
	}
	d := maintenance.BlankDraft(c.CustomerID)
	return &d, nil
}

func normalizeCustomer(c *domain.Customer) {
	c.CustomerID = strings.TrimSpace(c.CustomerID)
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	c.StateCode = strings.ToUpper(strings.TrimSpace(c.StateCode))
}

func assetViews(assets []domain.Asset, now time.Time) []ports.AssetView {
	views := make([]ports.AssetView, 0, len(assets))
	for _, a := range assets {
		v := ports.AssetView{Asset: a}
		if st, ok := maintenance.Evaluate(a, now); ok {
			v.Maintenance = &st
		}
		views = append(views, v)
	}
	return views
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
