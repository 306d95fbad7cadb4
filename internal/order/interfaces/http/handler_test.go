package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	authdomain "github.com/wyfcoding/ecommerce/internal/auth/domain"
	authhttp "github.com/wyfcoding/ecommerce/internal/auth/interfaces/http"
	catalogdomain "github.com/wyfcoding/ecommerce/internal/catalog/domain"
	"github.com/wyfcoding/ecommerce/internal/order/application"
	"github.com/wyfcoding/ecommerce/internal/order/domain"
)

type stubProductRepo struct {
	products map[uint]*catalogdomain.Product
}

func (f *stubProductRepo) Save(ctx context.Context, p *catalogdomain.Product) error { return nil }

func (f *stubProductRepo) GetByID(ctx context.Context, id uint) (*catalogdomain.Product, error) {
	if p, ok := f.products[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (f *stubProductRepo) GetForUpdate(ctx context.Context, id uint) (*catalogdomain.Product, error) {
	return f.GetByID(ctx, id)
}

func (f *stubProductRepo) ListActive(ctx context.Context, limit, offset int) ([]*catalogdomain.Product, error) {
	return nil, nil
}

func (f *stubProductRepo) Update(ctx context.Context, p *catalogdomain.Product) error { return nil }
func (f *stubProductRepo) Delete(ctx context.Context, id uint) error                  { return nil }

func (f *stubProductRepo) DecrementStock(ctx context.Context, id uint, quantity int64) error {
	p, ok := f.products[id]
	if !ok {
		return &catalogdomain.InsufficientStockError{ProductID: id}
	}
	if p.Stock < quantity {
		return &catalogdomain.InsufficientStockError{ProductID: id, Name: p.Name}
	}
	p.Stock -= quantity
	return nil
}

func (f *stubProductRepo) Count(ctx context.Context) (int64, error) { return 0, nil }

type stubOrderRepo struct {
	orders map[uint]*domain.Order
	nextID uint
}

func (f *stubOrderRepo) Create(ctx context.Context, order *domain.Order) error {
	if f.nextID == 0 {
		f.nextID = 1
	}
	order.ID = f.nextID
	f.nextID++
	if f.orders == nil {
		f.orders = make(map[uint]*domain.Order)
	}
	f.orders[order.ID] = order
	return nil
}

func (f *stubOrderRepo) GetByID(ctx context.Context, id uint) (*domain.Order, error) {
	if o, ok := f.orders[id]; ok {
		return o, nil
	}
	return nil, nil
}

func (f *stubOrderRepo) List(ctx context.Context, ownerID *uint, limit, offset int) ([]*domain.Order, error) {
	var result []*domain.Order
	for _, o := range f.orders {
		if ownerID == nil || o.UserID == *ownerID {
			result = append(result, o)
		}
	}
	return result, nil
}

func (f *stubOrderRepo) Summarize(ctx context.Context, ownerID *uint) ([]domain.OrderSummaryRow, error) {
	return []domain.OrderSummaryRow{}, nil
}

func (f *stubOrderRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// identityStub 以固定身份替代令牌校验
func identityStub(identity authdomain.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(authhttp.IdentityKey, identity)
		c.Next()
	}
}

func newTestRouter(orders domain.OrderRepository, products catalogdomain.ProductRepository, identity authdomain.Identity) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewHandler(
		application.NewOrderCommandService(orders, products, nil, nil, nil),
		application.NewOrderQueryService(orders),
	)
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api, identityStub(identity))
	return router
}

func testProducts() *stubProductRepo {
	p1 := decimal.RequireFromString("49.99")
	p2 := decimal.RequireFromString("100.00")
	return &stubProductRepo{products: map[uint]*catalogdomain.Product{
		1: {ID: 1, Name: "keyboard", Price: p1, Stock: 10, IsActive: true},
		2: {ID: 2, Name: "monitor", Price: p2, Stock: 1, IsActive: true},
	}}
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestPlaceOrderEndpoint(t *testing.T) {
	router := newTestRouter(&stubOrderRepo{}, testProducts(), authdomain.Identity{UserID: 7})

	w := doJSON(t, router, http.MethodPost, "/api/v1/orders/", gin.H{
		"items": []gin.H{
			{"product_id": 1, "quantity": 2},
			{"product_id": 2, "quantity": 1},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var order domain.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	assert.Equal(t, uint(7), order.UserID)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("199.98")))
	assert.Len(t, order.Items, 2)
}

func TestPlaceOrderEndpointInsufficientStock(t *testing.T) {
	router := newTestRouter(&stubOrderRepo{}, testProducts(), authdomain.Identity{UserID: 7})

	w := doJSON(t, router, http.MethodPost, "/api/v1/orders/", gin.H{
		"items": []gin.H{{"product_id": 2, "quantity": 5}},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "insufficient stock for product monitor")
}

func TestPlaceOrderEndpointUnknownProduct(t *testing.T) {
	router := newTestRouter(&stubOrderRepo{}, testProducts(), authdomain.Identity{UserID: 7})

	w := doJSON(t, router, http.MethodPost, "/api/v1/orders/", gin.H{
		"items": []gin.H{{"product_id": 42, "quantity": 1}},
	})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "product with id 42 not found")
}

func TestPlaceOrderEndpointEmptyCart(t *testing.T) {
	router := newTestRouter(&stubOrderRepo{}, testProducts(), authdomain.Identity{UserID: 7})

	w := doJSON(t, router, http.MethodPost, "/api/v1/orders/", gin.H{"items": []gin.H{}})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetOrderEndpointOwnership(t *testing.T) {
	orders := &stubOrderRepo{orders: map[uint]*domain.Order{
		3: {ID: 3, UserID: 7, Status: domain.OrderStatusPending},
	}, nextID: 4}

	// 其他用户读取返回 403
	router := newTestRouter(orders, testProducts(), authdomain.Identity{UserID: 9})
	w := doJSON(t, router, http.MethodGet, "/api/v1/orders/3", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// 管理员读取返回 200
	router = newTestRouter(orders, testProducts(), authdomain.Identity{UserID: 1, IsAdmin: true})
	w = doJSON(t, router, http.MethodGet, "/api/v1/orders/3", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// 不存在返回 404
	w = doJSON(t, router, http.MethodGet, "/api/v1/orders/99", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrderSummaryEndpoint(t *testing.T) {
	router := newTestRouter(&stubOrderRepo{}, testProducts(), authdomain.Identity{UserID: 7})

	w := doJSON(t, router, http.MethodGet, "/api/v1/orders/summary", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
