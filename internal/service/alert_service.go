// backend-go/internal/service/alert_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/optiqo/lenshop/backend-go/internal/cache"
	"github.com/optiqo/lenshop/backend-go/internal/domain"
	"github.com/optiqo/lenshop/backend-go/internal/repository"
	"github.com/optiqo/lenshop/backend-go/internal/stock"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const evaluateConcurrency = 8

type AlertService struct {
	products   repository.ProductRepository
	orders     repository.OrderRepository
	configs    repository.AlertConfigRepository
	purchased  cache.PurchasedSet
	alertCache cache.AlertCache
}

func NewAlertService(
	products repository.ProductRepository,
	orders repository.OrderRepository,
	configs repository.AlertConfigRepository,
	purchased cache.PurchasedSet,
	alertCache cache.AlertCache,
) *AlertService {
	return &AlertService{
		products:   products,
		orders:     orders,
		configs:    configs,
		purchased:  purchased,
		alertCache: alertCache,
	}
}

// GetConfig returns a product's alert config, or nil when none is set.
func (s *AlertService) GetConfig(ctx context.Context, productID int64) (*domain.AlertConfig, error) {
	return s.configs.GetConfig(ctx, productID)
}

// SaveConfig validates and stores an alert config. Clearing a simple
// threshold deletes the config; lens configs are only removed explicitly.
func (s *AlertService) SaveConfig(ctx context.Context, cfg *domain.AlertConfig) error {
	switch cfg.Kind {
	case domain.AlertLens:
		// Keys outside the product's current range are accepted; they
		// stay dormant until the range grows back.
		for _, threshold := range cfg.Thresholds {
			if threshold < 0 {
				return domain.ErrInvalidThreshold
			}
		}
	case domain.AlertSimple:
		if cfg.Threshold < 0 {
			return domain.ErrInvalidThreshold
		}
		if cfg.Threshold == 0 {
			if err := s.configs.DeleteConfig(ctx, cfg.ProductID); err != nil {
				return err
			}
			s.invalidate(ctx)
			return nil
		}
	default:
		return fmt.Errorf("unknown alert config kind %q", cfg.Kind)
	}

	if err := s.configs.SaveConfig(ctx, cfg); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// DeleteConfig removes a product's alert config.
func (s *AlertService) DeleteConfig(ctx context.Context, productID int64) error {
	if err := s.configs.DeleteConfig(ctx, productID); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// MarkPurchased records that the product has been ordered from the alert
// list. The mark survives until the product leaves the in-alert set.
func (s *AlertService) MarkPurchased(ctx context.Context, productID int64) error {
	return s.purchased.Add(ctx, productID)
}

// Evaluate recomputes the full alert list: every configured product's
// stock is folded and compared against its thresholds, and the purchased
// set is pruned to the products still in alert. With refresh=false a
// cached snapshot may be served instead.
func (s *AlertService) Evaluate(ctx context.Context, refresh bool) ([]*domain.AlertItem, error) {
	if !refresh {
		if items, ok, err := s.alertCache.Get(ctx); err != nil {
			log.Warn().Err(err).Msg("alert snapshot read failed, recomputing")
		} else if ok {
			return items, nil
		}
	}

	configs, err := s.configs.ListConfigs(ctx)
	if err != nil {
		return nil, err
	}
	if len(configs) == 0 {
		return []*domain.AlertItem{}, nil
	}

	var (
		mu    sync.Mutex
		items []*domain.AlertItem
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(evaluateConcurrency)
	for _, cfg := range configs {
		g.Go(func() error {
			p, err := s.products.GetProduct(gctx, cfg.ProductID)
			if err != nil {
				// A config for a deleted product is dormant, not fatal.
				if errors.Is(err, domain.ErrNotFound) {
					return nil
				}
				return err
			}
			orders, err := s.orders.ListOrders(gctx, repository.OrderFilter{ProductID: p.ID})
			if err != nil {
				return err
			}
			if item := stock.Evaluate(p, cfg, orders); item != nil {
				mu.Lock()
				items = append(items, item)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

	if err := s.prune(ctx, items); err != nil {
		log.Warn().Err(err).Msg("purchased set pruning failed")
	}

	if err := s.alertCache.Set(ctx, items); err != nil {
		log.Warn().Err(err).Msg("alert snapshot write failed")
	}
	return items, nil
}

// prune drops purchased marks for products no longer in alert and tags
// the remaining items with their purchased state.
func (s *AlertService) prune(ctx context.Context, items []*domain.AlertItem) error {
	purchased, err := s.purchased.Members(ctx)
	if err != nil {
		return err
	}

	inAlert := make(map[int64]struct{}, len(items))
	for _, item := range items {
		inAlert[item.ProductID] = struct{}{}
	}

	removed := stock.PrunePurchased(purchased, inAlert)
	if len(removed) > 0 {
		if err := s.purchased.Remove(ctx, removed...); err != nil {
			return err
		}
	}

	for _, item := range items {
		_, item.Purchased = purchased[item.ProductID]
	}
	return nil
}

func (s *AlertService) invalidate(ctx context.Context) {
	if err := s.alertCache.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate alert snapshot")
	}
}
