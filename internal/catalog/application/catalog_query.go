package application

import (
	"context"
	"time"

	"github.com/wyfcoding/ecommerce/internal/catalog/domain"
	"github.com/wyfcoding/ecommerce/pkg/logger"
)

// 分页上限，超出时收敛而非拒绝
const (
	DefaultPageSize = 100
	MaxPageSize     = 100
)

// ClampPagination 将 skip/limit 收敛到合法区间
func ClampPagination(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return skip, limit
}

// CatalogQueryService 商品目录查询服务
type CatalogQueryService struct {
	repo     domain.ProductRepository
	cache    ProductCache
	cacheTTL time.Duration
}

// NewCatalogQueryService 创建商品目录查询服务实例
func NewCatalogQueryService(repo domain.ProductRepository, cache ProductCache, cacheTTL time.Duration) *CatalogQueryService {
	return &CatalogQueryService{repo: repo, cache: cache, cacheTTL: cacheTTL}
}

// GetProduct 按 ID 获取商品，read-through 缓存
func (s *CatalogQueryService) GetProduct(ctx context.Context, id uint) (*domain.Product, error) {
	if s.cache != nil {
		var cached domain.Product
		if err := s.cache.GetJSON(ctx, ProductCacheKey(id), &cached); err == nil {
			return &cached, nil
		}
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, &domain.ProductNotFoundError{ProductID: id}
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, ProductCacheKey(id), product, s.cacheTTL); err != nil {
			logger.Warn(ctx, "failed to cache product", "product_id", id, "error", err)
		}
	}

	return product, nil
}

// ListActiveProducts 分页获取上架商品
func (s *CatalogQueryService) ListActiveProducts(ctx context.Context, skip, limit int) ([]*domain.Product, error) {
	skip, limit = ClampPagination(skip, limit)
	return s.repo.ListActive(ctx, limit, skip)
}
