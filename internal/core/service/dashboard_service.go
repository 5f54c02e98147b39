package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/aquaflow/servicecrm/internal/core/domain"
	"github.com/aquaflow/servicecrm/internal/core/maintenance"
	"github.com/aquaflow/servicecrm/internal/core/ports"
)

// DashboardService builds the landing view. It remembers the last view it
// built so a store outage degrades to stale data instead of an empty page.
type DashboardService struct {
	customers ports.CustomerRepository
	assets    ports.AssetRepository
	orders    ports.ServiceOrderRepository
	log       zerolog.Logger
	now       func() time.Time

	mu       sync.Mutex
	lastGood *ports.Dashboard
}

func NewDashboardService(
	customers ports.CustomerRepository,
	assets ports.AssetRepository,
	orders ports.ServiceOrderRepository,
	log zerolog.Logger,
) *DashboardService {
	return &DashboardService{customers: customers, assets: assets, orders: orders, log: log, now: time.Now}
}

func (s *DashboardService) Dashboard(ctx context.Context) (*ports.Dashboard, error) {
	d, err := s.build(ctx)
	if err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.lastGood == nil {
			return nil, fmt.Errorf("dashboard: %w", err)
		}
		s.log.Warn().Err(err).Time("generated_at", s.lastGood.GeneratedAt).Msg("serving stale dashboard")
		stale := *s.lastGood
		stale.Stale = true
		return &stale, nil
	}

	s.mu.Lock()
	s.lastGood = d
	s.mu.Unlock()

	fresh := *d
	return &fresh, nil
}

// build fetches all counters and assets in parallel, then aggregates once
// every fetch has resolved.
func (s *DashboardService) build(ctx context.Context) (*ports.Dashboard, error) {
	var (
		stats  ports.DashboardStats
		assets []domain.Asset
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.customers.Count(gctx)
		stats.TotalCustomers = n
		return err
	})
	g.Go(func() error {
		as, err := s.assets.List(gctx, ports.AssetFilter{})
		assets = as
		return err
	})
	g.Go(func() error {
		n, err := s.orders.Count(gctx, ports.OrderFilter{Statuses: domain.PendingStatuses()})
		stats.PendingOrders = n
		return err
	})
	g.Go(func() error {
		n, err := s.orders.Count(gctx, ports.OrderFilter{
			Statuses: []domain.OrderStatus{domain.OrderCompleted},
		})
		stats.CompletedOrders = n
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := s.now()
	stats.TotalAssets = int64(len(assets))
	return &ports.Dashboard{
		Stats:       stats,
		Alerts:      maintenance.Aggregate(assets, now),
		GeneratedAt: now.UTC(),
	}, nil
}
