// backend-go/internal/service/product_service.go
package service

import (
	"context"
	"fmt"

	"github.com/optiqo/lenshop/backend-go/internal/cache"
	"github.com/optiqo/lenshop/backend-go/internal/domain"
	"github.com/optiqo/lenshop/backend-go/internal/grid"
	"github.com/optiqo/lenshop/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

type ProductService struct {
	products repository.ProductRepository
	mirror   cache.RangeMirror
}

func NewProductService(products repository.ProductRepository, mirror cache.RangeMirror) *ProductService {
	return &ProductService{products: products, mirror: mirror}
}

// GetProduct returns the product by id.
func (s *ProductService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.products.GetProduct(ctx, id)
}

// ListProducts returns the full catalog.
func (s *ProductService) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	return s.products.ListProducts(ctx)
}

// PowerRange returns the product's power range as a set.
func (s *ProductService) PowerRange(ctx context.Context, id int64) (grid.RangeSet, error) {
	p, err := s.products.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return grid.NewRangeSet(p.PowerRange...), nil
}

// SavePowerRange persists a product's power range: database first, then
// the Redis mirror. Cell keys outside the grid are rejected up front.
func (s *ProductService) SavePowerRange(ctx context.Context, id int64, keys []string) (WriteOutcome, error) {
	for _, key := range keys {
		if !grid.ValidKey(key) {
			return WriteOutcome{Remote: LegSkipped, Cache: LegSkipped},
				fmt.Errorf("cell key %q is outside the grid", key)
		}
	}

	// Stored in flat order so successive saves of the same set diff clean.
	ordered := grid.NewRangeSet(keys...).FlatOrder()

	outcome := WriteOutcome{Cache: LegSkipped}
	if err := s.products.UpdatePowerRange(ctx, id, ordered); err != nil {
		outcome.Remote = LegFailed
		outcome.RemoteErr = err
		return outcome, err
	}
	outcome.Remote = LegOK

	if err := s.mirror.Set(ctx, id, ordered); err != nil {
		outcome.Cache = LegFailed
		outcome.CacheErr = err
		log.Warn().Err(err).Int64("product_id", id).Msg("power range mirror write failed")
		return outcome, nil
	}
	outcome.Cache = LegOK
	return outcome, nil
}
