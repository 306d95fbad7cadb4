package application

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/ecommerce/internal/catalog/domain"
)

// fakeCache 内存 JSON 缓存
type fakeCache struct {
	entries map[string][]byte
	sets    int
	deletes []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (f *fakeCache) GetJSON(ctx context.Context, key string, dest interface{}) error {
	data, ok := f.entries[key]
	if !ok {
		return errors.New("cache miss")
	}
	return json.Unmarshal(data, dest)
}

func (f *fakeCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.entries[key] = data
	f.sets++
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.entries, key)
		f.deletes = append(f.deletes, key)
	}
	return nil
}

// fakeProductRepo 内存商品仓储
type fakeProductRepo struct {
	products map[uint]*domain.Product
	getCalls int
	nextID   uint
}

func newFakeProductRepo(products ...*domain.Product) *fakeProductRepo {
	repo := &fakeProductRepo{products: make(map[uint]*domain.Product), nextID: 1}
	for _, p := range products {
		repo.products[p.ID] = p
		if p.ID >= repo.nextID {
			repo.nextID = p.ID + 1
		}
	}
	return repo
}

func (f *fakeProductRepo) Save(ctx context.Context, p *domain.Product) error {
	p.ID = f.nextID
	f.nextID++
	f.products[p.ID] = p
	return nil
}

func (f *fakeProductRepo) GetByID(ctx context.Context, id uint) (*domain.Product, error) {
	f.getCalls++
	if p, ok := f.products[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeProductRepo) GetForUpdate(ctx context.Context, id uint) (*domain.Product, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeProductRepo) ListActive(ctx context.Context, limit, offset int) ([]*domain.Product, error) {
	var result []*domain.Product
	for _, p := range f.products {
		if p.IsActive {
			result = append(result, p)
		}
	}
	return result, nil
}

func (f *fakeProductRepo) Update(ctx context.Context, p *domain.Product) error {
	f.products[p.ID] = p
	return nil
}

func (f *fakeProductRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := f.products[id]; !ok {
		return &domain.ProductNotFoundError{ProductID: id}
	}
	delete(f.products, id)
	return nil
}

func (f *fakeProductRepo) DecrementStock(ctx context.Context, id uint, quantity int64) error {
	return nil
}

func (f *fakeProductRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(f.products)), nil
}

func mustPrice(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestClampPagination(t *testing.T) {
	tests := []struct {
		skip, limit         int
		wantSkip, wantLimit int
	}{
		{0, 10, 0, 10},
		{-5, 10, 0, 10},
		{0, 0, 0, 100},
		{0, -1, 0, 100},
		{0, 1000, 0, 100},
		{20, 50, 20, 50},
	}
	for _, tt := range tests {
		skip, limit := ClampPagination(tt.skip, tt.limit)
		assert.Equal(t, tt.wantSkip, skip, "skip(%d,%d)", tt.skip, tt.limit)
		assert.Equal(t, tt.wantLimit, limit, "limit(%d,%d)", tt.skip, tt.limit)
	}
}

func TestGetProductReadThroughCache(t *testing.T) {
	repo := newFakeProductRepo(&domain.Product{ID: 1, Name: "keyboard", Price: mustPrice("49.99"), Stock: 10, IsActive: true})
	cache := newFakeCache()
	svc := NewCatalogQueryService(repo, cache, time.Minute)

	// 第一次走库并回填缓存
	product, err := svc.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "keyboard", product.Name)
	assert.Equal(t, 1, repo.getCalls)
	assert.Equal(t, 1, cache.sets)

	// 第二次命中缓存，不再走库
	product, err = svc.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "keyboard", product.Name)
	assert.Equal(t, 1, repo.getCalls)
}

func TestGetProductNotFound(t *testing.T) {
	svc := NewCatalogQueryService(newFakeProductRepo(), newFakeCache(), time.Minute)

	_, err := svc.GetProduct(context.Background(), 99)
	var notFound *domain.ProductNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, uint(99), notFound.ProductID)
}

func TestGetProductWithoutCache(t *testing.T) {
	repo := newFakeProductRepo(&domain.Product{ID: 1, Name: "keyboard", Price: mustPrice("49.99"), IsActive: true})
	svc := NewCatalogQueryService(repo, nil, time.Minute)

	product, err := svc.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "keyboard", product.Name)
}
