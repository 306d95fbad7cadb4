package application

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/ecommerce/internal/catalog/domain"
	"github.com/wyfcoding/ecommerce/pkg/metrics"
)

func TestCreateProduct(t *testing.T) {
	repo := newFakeProductRepo()
	svc := NewCatalogCommandService(repo, nil, nil)

	product, err := svc.CreateProduct(context.Background(), CreateProductCommand{
		Name:     "keyboard",
		Price:    mustPrice("49.99"),
		Stock:    10,
		Category: "peripherals",
		IsActive: true,
	})
	require.NoError(t, err)
	assert.NotZero(t, product.ID)
	assert.True(t, product.Price.Equal(mustPrice("49.99")))
}

func TestUpdateProductAppliesOnlyProvidedFields(t *testing.T) {
	repo := newFakeProductRepo(&domain.Product{
		ID: 1, Name: "keyboard", Description: "mechanical",
		Price: mustPrice("49.99"), Stock: 10, IsActive: true,
	})
	cache := newFakeCache()
	svc := NewCatalogCommandService(repo, cache, nil)

	newPrice := mustPrice("59.99")
	product, err := svc.UpdateProduct(context.Background(), 1, domain.ProductPatch{Price: &newPrice})
	require.NoError(t, err)

	// 仅价格变化，其余字段保持原值
	assert.True(t, product.Price.Equal(newPrice))
	assert.Equal(t, "keyboard", product.Name)
	assert.Equal(t, "mechanical", product.Description)
	assert.Equal(t, int64(10), product.Stock)

	// 缓存已失效
	assert.Contains(t, cache.deletes, ProductCacheKey(1))
}

func TestUpdateProductNotFound(t *testing.T) {
	svc := NewCatalogCommandService(newFakeProductRepo(), nil, nil)

	_, err := svc.UpdateProduct(context.Background(), 99, domain.ProductPatch{})
	var notFound *domain.ProductNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestDeleteProductInvalidatesCache(t *testing.T) {
	repo := newFakeProductRepo(&domain.Product{ID: 1, Name: "keyboard", IsActive: true})
	cache := newFakeCache()
	svc := NewCatalogCommandService(repo, cache, nil)

	require.NoError(t, svc.DeleteProduct(context.Background(), 1))
	assert.Empty(t, repo.products)
	assert.Contains(t, cache.deletes, ProductCacheKey(1))
}

func TestCatalogCommandsRefreshProductGauge(t *testing.T) {
	repo := newFakeProductRepo()
	m := metrics.New("test")
	svc := NewCatalogCommandService(repo, nil, m)

	_, err := svc.CreateProduct(context.Background(), CreateProductCommand{
		Name: "keyboard", Price: mustPrice("49.99"), Stock: 10, IsActive: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProductsTotal))

	_, err = svc.CreateProduct(context.Background(), CreateProductCommand{
		Name: "monitor", Price: mustPrice("100.00"), Stock: 5, IsActive: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ProductsTotal))

	require.NoError(t, svc.DeleteProduct(context.Background(), 1))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProductsTotal))
}

func TestDeleteProductNotFound(t *testing.T) {
	svc := NewCatalogCommandService(newFakeProductRepo(), nil, nil)

	err := svc.DeleteProduct(context.Background(), 99)
	var notFound *domain.ProductNotFoundError
	require.ErrorAs(t, err, &notFound)
}
