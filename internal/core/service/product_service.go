package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aquaflow/servicecrm/internal/core/domain"
	"github.com/aquaflow/servicecrm/internal/core/filter"
	"github.com/aquaflow/servicecrm/internal/core/ports"
)

type ProductService struct {
	products ports.ProductRepository
	assets   ports.AssetRepository
	log      zerolog.Logger
	now      func() time.Time
}

func NewProductService(products ports.ProductRepository, assets ports.AssetRepository, log zerolog.Logger) *ProductService {
	return &ProductService{products: products, assets: assets, log: log, now: time.Now}
}

func (s *ProductService) List(ctx context.Context, q filter.Query) ([]domain.Product, error) {
	all, err := s.products.List(ctx, ports.ProductFilter{})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return filter.Products.Apply(all, q), nil
}

// Installable lists the active system products offered when installing an
// asset.
func (s *ProductService) Installable(ctx context.Context) ([]domain.Product, error) {
	ps, err := s.products.List(ctx, ports.ProductFilter{Category: domain.CategorySystem, ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("list installable products: %w", err)
	}
	return nonNil(ps), nil
}

func (s *ProductService) Get(ctx context.Context, productID string) (*domain.Product, error) {
	p, err := s.products.Get(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (s *ProductService) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	normalizeProduct(&p)
	if err := p.Validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	p.ProductID = uuid.NewString()
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := s.products.Create(ctx, &p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.log.Info().Str("product_id", p.ProductID).Str("category", string(p.Category)).Msg("product created")
	return &p, nil
}

// Update replaces a product. A system product with installed assets must
// stay in the system category.
func (s *ProductService) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	normalizeProduct(&p)
	existing, err := s.products.Get(ctx, p.ProductID)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if existing.Installable() && !p.Installable() {
		installed, err := s.assets.List(ctx, ports.AssetFilter{ProductID: p.ProductID})
		if err != nil {
			return nil, fmt.Errorf("update product: %w", err)
		}
		if len(installed) > 0 {
			s.log.Warn().
				Str("product_id", p.ProductID).
				Str("category", string(p.Category)).
				Int("assets", len(installed)).
				Msg("product recategorization rejected")
			return nil, fmt.Errorf("update product: %w", domain.ErrHasDependents)
		}
	}

	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = s.now().UTC()

	if err := s.products.Update(ctx, &p); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	s.log.Info().Str("product_id", p.ProductID).Msg("product updated")
	return &p, nil
}

// Delete removes a product no asset was installed from.
func (s *ProductService) Delete(ctx context.Context, productID string) error {
	if _, err := s.products.Get(ctx, productID); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	installed, err := s.assets.List(ctx, ports.AssetFilter{ProductID: productID})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if len(installed) > 0 {
		s.log.Warn().Str("product_id", productID).Int("assets", len(installed)).Msg("product delete rejected")
		return fmt.Errorf("delete product: %w", domain.ErrHasDependents)
	}

	if err := s.products.Delete(ctx, productID); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	s.log.Info().Str("product_id", productID).Msg("product deleted")
	return nil
}

func normalizeProduct(p *domain.Product) {
	p.Name = strings.TrimSpace(p.Name)
	p.SKU = strings.TrimSpace(p.SKU)
}
