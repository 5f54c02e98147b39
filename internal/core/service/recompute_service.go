package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/aquaflow/servicecrm/internal/core/account"
	"github.com/aquaflow/servicecrm/internal/core/domain"
	"github.com/aquaflow/servicecrm/internal/core/maintenance"
	"github.com/aquaflow/servicecrm/internal/core/ports"
)

// RecomputeService rebuilds the derived figures after a mutation: the
// changed customer's summary and the global alert report.
type RecomputeService struct {
	assets ports.AssetRepository
	orders ports.ServiceOrderRepository
	log    zerolog.Logger
	now    func() time.Time
}

func NewRecomputeService(assets ports.AssetRepository, orders ports.ServiceOrderRepository, log zerolog.Logger) *RecomputeService {
	return &RecomputeService{assets: assets, orders: orders, log: log, now: time.Now}
}

// Recompute rebuilds the alert report and, when customerID is set, that
// customer's summary. Both come from one fresh read.
func (s *RecomputeService) Recompute(ctx context.Context, customerID string) (*ports.RecomputeResult, error) {
	var (
		assets []domain.Asset
		orders []domain.ServiceOrder
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		as, err := s.assets.List(gctx, ports.AssetFilter{})
		assets = as
		return err
	})
	if customerID != "" {
		g.Go(func() error {
			list, err := s.orders.List(gctx, ports.OrderFilter{CustomerID: customerID})
			orders = list
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("recompute: %w", err)
	}

	now := s.now()
	res := &ports.RecomputeResult{
		CustomerID: customerID,
		Alerts:     maintenance.Aggregate(assets, now),
	}
	if customerID != "" {
		owned := make([]domain.Asset, 0)
		for _, a := range assets {
			if a.CustomerID == customerID {
				owned = append(owned, a)
			}
		}
		sum := account.Summarize(owned, orders, now)
		res.Summary = &sum

		s.log.Debug().
			Str("customer_id", customerID).
			Int("assets_needing_maintenance", sum.AssetsNeedingMaintenance).
			Str("total_spent", sum.TotalSpent.StringFixed(2)).
			Msg("customer recomputed")
	}

	s.log.Debug().Int("alerts", res.Alerts.Count).Int("needing_attention", res.Alerts.NeedingAttention()).Msg("alerts recomputed")
	return res, nil
}
