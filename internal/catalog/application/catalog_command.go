// Package application 提供商品目录的命令/查询服务
package application

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/ecommerce/internal/catalog/domain"
	"github.com/wyfcoding/ecommerce/pkg/logger"
	"github.com/wyfcoding/ecommerce/pkg/metrics"
)

// ProductCache 商品读缓存接口，pkg/cache 的 Redis 实现满足该接口
type ProductCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// ProductCacheKey 商品缓存键
func ProductCacheKey(id uint) string {
	return fmt.Sprintf("catalog:product:%d", id)
}

// CreateProductCommand 创建商品命令
type CreateProductCommand struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int64
	Category    string
	IsActive    bool
}

// CatalogCommandService 商品目录命令服务
type CatalogCommandService struct {
	repo    domain.ProductRepository
	cache   ProductCache
	metrics *metrics.Metrics
}

// NewCatalogCommandService 创建商品目录命令服务实例
func NewCatalogCommandService(repo domain.ProductRepository, cache ProductCache, m *metrics.Metrics) *CatalogCommandService {
	return &CatalogCommandService{repo: repo, cache: cache, metrics: m}
}

// CreateProduct 创建商品
func (s *CatalogCommandService) CreateProduct(ctx context.Context, cmd CreateProductCommand) (*domain.Product, error) {
	product := &domain.Product{
		Name:        cmd.Name,
		Description: cmd.Description,
		Price:       cmd.Price,
		Stock:       cmd.Stock,
		Category:    cmd.Category,
		IsActive:    cmd.IsActive,
	}

	if err := s.repo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.refreshProductCount(ctx)
	logger.Info(ctx, "product created", "product_id", product.ID, "name", product.Name)
	return product, nil
}

// UpdateProduct 部分更新商品，补丁中的 nil 字段保持原值
func (s *CatalogCommandService) UpdateProduct(ctx context.Context, id uint, patch domain.ProductPatch) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, &domain.ProductNotFoundError{ProductID: id}
	}

	patch.Apply(product)
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	return product, nil
}

// DeleteProduct 删除商品（硬删除）
func (s *CatalogCommandService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, id)
	s.refreshProductCount(ctx)
	logger.Info(ctx, "product deleted", "product_id", id)
	return nil
}

// refreshProductCount 刷新商品总数指标，失败仅告警
func (s *CatalogCommandService) refreshProductCount(ctx context.Context) {
	if s.metrics == nil {
		return
	}
	count, err := s.repo.Count(ctx)
	if err != nil {
		logger.Warn(ctx, "failed to count products", "error", err)
		return
	}
	s.metrics.SetProductsTotal(float64(count))
}

// invalidate 失效商品缓存，失败仅告警
func (s *CatalogCommandService) invalidate(ctx context.Context, id uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, ProductCacheKey(id)); err != nil {
		logger.Warn(ctx, "failed to invalidate product cache", "product_id", id, "error", err)
	}
}
