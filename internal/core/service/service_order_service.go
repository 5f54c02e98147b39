package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/aquaflow/servicecrm/internal/core/domain"
	"github.com/aquaflow/servicecrm/internal/core/filter"
	"github.com/aquaflow/servicecrm/internal/core/ports"
)

type ServiceOrderService struct {
	orders    ports.ServiceOrderRepository
	customers ports.CustomerRepository
	assets    ports.AssetRepository
	users     ports.UserRepository
	idem      ports.IdempotencyStore
	queue     ports.RecomputeQueue
	log       zerolog.Logger
	now       func() time.Time
}

func NewServiceOrderService(
	orders ports.ServiceOrderRepository,
	customers ports.CustomerRepository,
	assets ports.AssetRepository,
	users ports.UserRepository,
	idem ports.IdempotencyStore,
	queue ports.RecomputeQueue,
	log zerolog.Logger,
) *ServiceOrderService {
	return &ServiceOrderService{
		orders:    orders,
		customers: customers,
		assets:    assets,
		users:     users,
		idem:      idem,
		queue:     queue,
		log:       log,
		now:       time.Now,
	}
}

func (s *ServiceOrderService) List(ctx context.Context, q filter.Query) ([]domain.ServiceOrder, error) {
	all, err := s.orders.List(ctx, ports.OrderFilter{})
	if err != nil {
		return nil, fmt.Errorf("list service orders: %w", err)
	}
	return filter.ServiceOrders.Apply(all, q), nil
}

func (s *ServiceOrderService) Get(ctx context.Context, serviceID string) (*domain.ServiceOrder, error) {
	o, err := s.orders.Get(ctx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("get service order: %w", err)
	}
	return o, nil
}

// Create stores a new order. If idempotencyKey was already used, the order it
// produced is returned without side effects.
func (s *ServiceOrderService) Create(ctx context.Context, o domain.ServiceOrder, idempotencyKey string) (*ports.CreateOrderResult, error) {
	if idempotencyKey != "" {
		if existing := s.replay(ctx, idempotencyKey); existing != nil {
			return &ports.CreateOrderResult{Order: existing, AlreadyExisted: true}, nil
		}
	}

	normalizeOrder(&o)
	if o.Status == "" {
		o.Status = domain.OrderRequested
	}
	if o.PaymentStatus == "" {
		o.PaymentStatus = domain.PaymentPending
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, o); err != nil {
		return nil, fmt.Errorf("create service order: %w", err)
	}

	now := s.now().UTC()
	o.ServiceID = uuid.NewString()
	o.RequestedAt = now
	stampCompletion(&o, nil, now)

	if err := s.orders.Create(ctx, &o); err != nil {
		return nil, fmt.Errorf("create service order: %w", err)
	}
	if idempotencyKey != "" {
		if err := s.idem.Remember(ctx, idempotencyKey, o.ServiceID); err != nil {
			s.log.Warn().Err(err).Str("idempotency_key", idempotencyKey).Msg("failed to store idempotency key")
		}
	}
	s.queue.Enqueue(o.CustomerID)

	s.log.Info().
		Str("service_id", o.ServiceID).
		Str("customer_id", o.CustomerID).
		Str("service_type", string(o.ServiceType)).
		Msg("service order created")
	return &ports.CreateOrderResult{Order: &o}, nil
}

// replay returns the order an idempotency key produced, or nil. Store
// failures are logged and treated as a miss.
func (s *ServiceOrderService) replay(ctx context.Context, key string) *domain.ServiceOrder {
	id, found, err := s.idem.Lookup(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency lookup failed, creating anyway")
		return nil
	}
	if !found {
		return nil
	}
	existing, err := s.orders.Get(ctx, id)
	if err != nil {
		s.log.Warn().Err(err).Str("idempotency_key", key).Str("service_id", id).Msg("idempotent order not readable")
		return nil
	}
	s.log.Info().Str("idempotency_key", key).Str("service_id", id).Msg("idempotent replay")
	return existing
}

// Update replaces the editable fields of an order. Completed and canceled
// orders keep their status.
func (s *ServiceOrderService) Update(ctx context.Context, o domain.ServiceOrder) (*domain.ServiceOrder, error) {
	normalizeOrder(&o)
	existing, err := s.orders.Get(ctx, o.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("update service order: %w", err)
	}
	if o.Status == "" {
		o.Status = existing.Status
	}
	if o.PaymentStatus == "" {
		o.PaymentStatus = existing.PaymentStatus
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if !existing.Status.CanTransitionTo(o.Status) {
		return nil, fmt.Errorf("update service order: %w (from %s to %s)", domain.ErrInvalidTransition, existing.Status, o.Status)
	}
	if err := s.checkReferences(ctx, o); err != nil {
		return nil, fmt.Errorf("update service order: %w", err)
	}

	o.RequestedAt = existing.RequestedAt
	stampCompletion(&o, existing, s.now().UTC())

	if err := s.orders.Update(ctx, &o); err != nil {
		return nil, fmt.Errorf("update service order: %w", err)
	}
	s.queue.Enqueue(o.CustomerID)
	if existing.CustomerID != o.CustomerID {
		s.queue.Enqueue(existing.CustomerID)
	}

	s.log.Info().
		Str("service_id", o.ServiceID).
		Str("from", string(existing.Status)).
		Str("to", string(o.Status)).
		Msg("service order updated")
	return &o, nil
}

func (s *ServiceOrderService) Delete(ctx context.Context, serviceID string) error {
	o, err := s.orders.Get(ctx, serviceID)
	if err != nil {
		return fmt.Errorf("delete service order: %w", err)
	}
	if err := s.orders.Delete(ctx, serviceID); err != nil {
		return fmt.Errorf("delete service order: %w", err)
	}
	s.queue.Enqueue(o.CustomerID)
	s.log.Info().Str("service_id", serviceID).Msg("service order deleted")
	return nil
}

// Complete marks the order completed at the server clock. Completing an
// already completed order returns it unchanged.
func (s *ServiceOrderService) Complete(ctx context.Context, serviceID string) (*domain.ServiceOrder, error) {
	existing, err := s.orders.Get(ctx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("complete service order: %w", err)
	}
	if existing.Status == domain.OrderCompleted {
		return existing, nil
	}
	if !existing.Status.CanTransitionTo(domain.OrderCompleted) {
		return nil, fmt.Errorf("complete service order: %w (from %s)", domain.ErrInvalidTransition, existing.Status)
	}

	done, err := s.orders.Complete(ctx, serviceID, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("complete service order: %w", err)
	}
	s.queue.Enqueue(done.CustomerID)

	s.log.Info().Str("service_id", serviceID).Str("customer_id", done.CustomerID).Msg("service order completed")
	return done, nil
}

// checkReferences verifies the customer exists, the asset belongs to it and
// the technician may perform service work.
func (s *ServiceOrderService) checkReferences(ctx context.Context, o domain.ServiceOrder) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.customers.Get(gctx, o.CustomerID)
		return err
	})
	if o.AssetID != "" {
		g.Go(func() error {
			a, err := s.assets.Get(gctx, o.AssetID)
			if err != nil {
				return err
			}
			if a.CustomerID != o.CustomerID {
				return domain.ErrAssetCustomerMismatch
			}
			return nil
		})
	}
	if o.TechnicianID != "" {
		g.Go(func() error {
			return requireCapability(gctx, s.users, o.TechnicianID, domain.CapPerformService)
		})
	}
	return g.Wait()
}

// stampCompletion keeps CompletedAt consistent with the status: set whenever
// the order is completed, cleared otherwise.
func stampCompletion(o, previous *domain.ServiceOrder, now time.Time) {
	if o.Status != domain.OrderCompleted {
		o.CompletedAt = nil
		return
	}
	if o.CompletedAt != nil {
		return
	}
	if previous != nil && previous.CompletedAt != nil {
		o.CompletedAt = previous.CompletedAt
		return
	}
	o.CompletedAt = &now
}

func normalizeOrder(o *domain.ServiceOrder) {
	o.CustomerID = strings.TrimSpace(o.CustomerID)
	o.AssetID = strings.TrimSpace(o.AssetID)
	o.TechnicianID = strings.TrimSpace(o.TechnicianID)
	o.Notes = strings.TrimSpace(o.Notes)
}
