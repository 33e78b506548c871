package catalog

import (
	"context"
	"time"

	"servicehub/internal/metrics"

	"go.uber.org/zap"
)

const (
	cacheKeyCategories = "catalog:categories"
	cacheKeyGrouped    = "catalog:services_by_category"
)

// Cache is a JSON key/value store; the catalog works without one.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

type CatalogService struct {
	repo    Repository
	cache   Cache
	ttl     time.Duration
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewService(repo Repository, cache Cache, ttl time.Duration, logger *zap.Logger, m *metrics.Metrics) *CatalogService {
	return &CatalogService{repo: repo, cache: cache, ttl: ttl, logger: logger, metrics: m}
}

func (s *CatalogService) Categories(ctx context.Context) ([]Category, error) {
	var cached []Category
	if s.lookup(ctx, cacheKeyCategories, &cached) {
		return cached, nil
	}

	out, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Category{}
	}
	s.store(ctx, cacheKeyCategories, out)
	return out, nil
}

// ServicesByCategory returns every category, ordered by name, with its
// services nested.
func (s *CatalogService) ServicesByCategory(ctx context.Context) ([]CategoryWithServices, error) {
	var cached []CategoryWithServices
	if s.lookup(ctx, cacheKeyGrouped, &cached) {
		return cached, nil
	}

	out, err := s.buildGrouped(ctx)
	if err != nil {
		return nil, err
	}
	s.store(ctx, cacheKeyGrouped, out)
	return out, nil
}

// Warm reloads both catalog views into the cache.
func (s *CatalogService) Warm(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	cats, err := s.repo.ListCategories(ctx)
	if err != nil {
		return err
	}
	grouped, err := s.buildGrouped(ctx)
	if err != nil {
		return err
	}
	s.store(ctx, cacheKeyCategories, cats)
	s.store(ctx, cacheKeyGrouped, grouped)
	return nil
}

func (s *CatalogService) buildGrouped(ctx context.Context) ([]CategoryWithServices, error) {
	cats, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	services, err := s.repo.ListServices(ctx)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[int64][]ServiceRef, len(cats))
	for _, svc := range services {
		byCategory[svc.CategoryID] = append(byCategory[svc.CategoryID], ServiceRef{ID: svc.ID, Name: svc.Name})
	}

	out := make([]CategoryWithServices, 0, len(cats))
	for _, c := range cats {
		refs := byCategory[c.ID]
		if refs == nil {
			refs = []ServiceRef{}
		}
		out = append(out, CategoryWithServices{ID: c.ID, Name: c.Name, Icon: c.Icon, Services: refs})
	}
	return out, nil
}

func (s *CatalogService) lookup(ctx context.Context, key string, dest any) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.GetJSON(ctx, key, dest)
	if err != nil {
		s.logger.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
		s.count("error")
		return false
	}
	if hit {
		s.count("hit")
	} else {
		s.count("miss")
	}
	return hit
}

func (s *CatalogService) store(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetJSON(ctx, key, value, s.ttl); err != nil {
		s.logger.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *CatalogService) count(result string) {
	if s.metrics != nil {
		s.metrics.CatalogCache.WithLabelValues(result).Inc()
	}
}
