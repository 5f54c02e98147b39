package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/aquaflow/servicecrm/internal/core/domain"
	"github.com/aquaflow/servicecrm/internal/core/filter"
	"github.com/aquaflow/servicecrm/internal/core/maintenance"
	"github.com/aquaflow/servicecrm/internal/core/ports"
)

type AssetService struct {
	assets    ports.AssetRepository
	products  ports.ProductRepository
	customers ports.CustomerRepository
	users     ports.UserRepository
	orders    ports.ServiceOrderRepository
	queue     ports.RecomputeQueue
	log       zerolog.Logger
	now       func() time.Time
}

func NewAssetService(
	assets ports.AssetRepository,
	products ports.ProductRepository,
	customers ports.CustomerRepository,
	users ports.UserRepository,
	orders ports.ServiceOrderRepository,
	queue ports.RecomputeQueue,
	log zerolog.Logger,
) *AssetService {
	return &AssetService{
		assets:    assets,
		products:  products,
		customers: customers,
		users:     users,
		orders:    orders,
		queue:     queue,
		log:       log,
		now:       time.Now,
	}
}

// List returns the assets matching q with their maintenance status. The
// due_service criterion is resolved against a fresh read of the store using
// the same calculator as the dashboard.
func (s *AssetService) List(ctx context.Context, q filter.Query) ([]ports.AssetView, error) {
	remote := filter.Assets.Split(q)

	var due *bool
	if v, ok := remote[filter.ByDueService]; ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			ve := domain.NewValidationError()
			ve.Add(filter.ByDueService, "must be true, false or all")
			return nil, ve
		}
		due = &b
	}

	all, err := s.assets.List(ctx, ports.AssetFilter{})
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}

	now := s.now()
	if due != nil {
		all = keepDue(all, now, *due)
	}
	return assetViews(filter.Assets.Apply(all, q), now), nil
}

// keepDue keeps the assets whose alert state equals want, in input order.
func keepDue(assets []domain.Asset, now time.Time, want bool) []domain.Asset {
	report := maintenance.Aggregate(assets, now)
	alerting := make(map[string]struct{}, report.Count)
	for _, al := range report.Alerts {
		alerting[al.AssetID] = struct{}{}
	}

	out := make([]domain.Asset, 0, len(assets))
	for _, a := range assets {
		if _, ok := alerting[a.AssetID]; ok == want {
			out = append(out, a)
		}
	}
	return out
}

// DueForService ranks every asset that needs maintenance soon.
func (s *AssetService) DueForService(ctx context.Context) (maintenance.Report, error) {
	all, err := s.assets.List(ctx, ports.AssetFilter{})
	if err != nil {
		return maintenance.Report{}, fmt.Errorf("due for service: %w", err)
	}
	return maintenance.Aggregate(all, s.now()), nil
}

func (s *AssetService) Get(ctx context.Context, assetID string) (*ports.AssetView, error) {
	a, err := s.assets.Get(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("get asset: %w", err)
	}
	v := assetViews([]domain.Asset{*a}, s.now())[0]
	return &v, nil
}

// Create installs a system product at a customer. A missing service
// frequency is inherited from the product's default replacement interval.
func (s *AssetService) Create(ctx context.Context, a domain.Asset) (*domain.Asset, error) {
	normalizeAsset(&a)
	if a.Status == "" {
		a.Status = domain.AssetActive
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}

	product, err := s.checkReferences(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("create asset: %w", err)
	}
	if a.ServiceFrequencyMonths == nil && product.DefaultReplacementMonths != nil {
		months := *product.DefaultReplacementMonths
		a.ServiceFrequencyMonths = &months
	}

	now := s.now().UTC()
	a.AssetID = uuid.NewString()
	a.LastServiceDate = nil
	a.CreatedAt = now
	a.UpdatedAt = now

	if err := s.assets.Create(ctx, &a); err != nil {
		return nil, fmt.Errorf("create asset: %w", err)
	}
	s.queue.Enqueue(a.CustomerID)

	s.log.Info().
		Str("asset_id", a.AssetID).
		Str("customer_id", a.CustomerID).
		Str("product_id", a.ProductID).
		Msg("asset created")
	return &a, nil
}

// Update replaces the editable fields of an asset. An asset that service
// orders refer to cannot move to another customer.
func (s *AssetService) Update(ctx context.Context, a domain.Asset) (*domain.Asset, error) {
	normalizeAsset(&a)
	existing, err := s.assets.Get(ctx, a.AssetID)
	if err != nil {
		return nil, fmt.Errorf("update asset: %w", err)
	}
	if a.Status == "" {
		a.Status = existing.Status
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.checkReferences(ctx, a); err != nil {
		return nil, fmt.Errorf("update asset: %w", err)
	}
	if existing.CustomerID != a.CustomerID {
		n, err := s.orders.Count(ctx, ports.OrderFilter{AssetID: a.AssetID})
		if err != nil {
			return nil, fmt.Errorf("update asset: %w", err)
		}
		if n > 0 {
			s.log.Warn().
				Str("asset_id", a.AssetID).
				Str("from", existing.CustomerID).
				Str("to", a.CustomerID).
				Int64("service_orders", n).
				Msg("asset transfer rejected")
			return nil, fmt.Errorf("update asset: %w", domain.ErrHasDependents)
		}
	}

	a.LastServiceDate = existing.LastServiceDate
	a.CreatedAt = existing.CreatedAt
	a.UpdatedAt = s.now().UTC()

	if err := s.assets.Update(ctx, &a); err != nil {
		return nil, fmt.Errorf("update asset: %w", err)
	}
	s.queue.Enqueue(a.CustomerID)
	if existing.CustomerID != a.CustomerID {
		s.queue.Enqueue(existing.CustomerID)
	}

	s.log.Info().Str("asset_id", a.AssetID).Msg("asset updated")
	return &a, nil
}

// Delete removes an asset no service order refers to.
func (s *AssetService) Delete(ctx context.Context, assetID string) error {
	a, err := s.assets.Get(ctx, assetID)
	if err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	n, err := s.orders.Count(ctx, ports.OrderFilter{AssetID: assetID})
	if err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	if n > 0 {
		s.log.Warn().Str("asset_id", assetID).Int64("service_orders", n).Msg("asset delete rejected")
		return fmt.Errorf("delete asset: %w", domain.ErrHasDependents)
	}

	if err := s.assets.Delete(ctx, assetID); err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	s.queue.Enqueue(a.CustomerID)
	s.log.Info().Str("asset_id", assetID).Msg("asset deleted")
	return nil
}

// DraftOrder pre-fills a maintenance request for the asset. When the asset
// is on the alert list the notes also carry its urgency.
func (s *AssetService) DraftOrder(ctx context.Context, assetID string) (*domain.ServiceOrder, error) {
	a, err := s.assets.Get(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("draft order: %w", err)
	}

	var d domain.ServiceOrder
	if report := maintenance.Aggregate([]domain.Asset{*a}, s.now()); report.Count == 1 {
		d = maintenance.DraftFromAlert(report.Alerts[0], a.CustomerID)
	} else {
		d = maintenance.DraftFromAsset(*a, a.CustomerID)
	}
	return &d, nil
}

// checkReferences verifies the customer exists, the product is an
// installable system and the installer, when set, may install assets.
func (s *AssetService) checkReferences(ctx context.Context, a domain.Asset) (*domain.Product, error) {
	var product *domain.Product
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.customers.Get(gctx, a.CustomerID)
		return err
	})
	g.Go(func() error {
		p, err := s.products.Get(gctx, a.ProductID)
		if err != nil {
			return err
		}
		if !p.Installable() {
			return domain.ErrProductNotInstallable
		}
		product = p
		return nil
	})
	if a.InstalledBy != "" {
		g.Go(func() error {
			return requireCapability(gctx, s.users, a.InstalledBy, domain.CapInstallAssets)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return product, nil
}

func normalizeAsset(a *domain.Asset) {
	a.CustomerID = strings.TrimSpace(a.CustomerID)
	a.ProductID = strings.TrimSpace(a.ProductID)
	a.Serial = strings.TrimSpace(a.Serial)
	a.InstalledBy = strings.TrimSpace(a.InstalledBy)
}
