// Package http 提供订单的 HTTP 处理器
package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	authhttp "github.com/wyfcoding/ecommerce/internal/auth/interfaces/http"
	catalogdomain "github.com/wyfcoding/ecommerce/internal/catalog/domain"
	"github.com/wyfcoding/ecommerce/internal/order/application"
	"github.com/wyfcoding/ecommerce/internal/order/domain"
	"github.com/wyfcoding/ecommerce/pkg/logger"
)

// Handler 订单 HTTP 处理器
type Handler struct {
	cmd   *application.OrderCommandService
	query *application.OrderQueryService
}

// NewHandler 创建订单处理器实例
func NewHandler(cmd *application.OrderCommandService, query *application.OrderQueryService) *Handler {
	return &Handler{cmd: cmd, query: query}
}

// RegisterRoutes 注册路由，所有订单路由都要求已认证
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	g := r.Group("/orders")
	g.Use(requireAuth)
	g.POST("/", h.PlaceOrder)
	g.GET("/", h.ListOrders)
	g.GET("/summary", h.OrderSummary)
	g.GET("/:id", h.GetOrder)
}

// PlaceOrderRequest 下单请求
type PlaceOrderRequest struct {
	Items []domain.CartLine `json:"items" binding:"required,min=1"`
}

// PlaceOrder 下单
func (h *Handler) PlaceOrder(c *gin.Context) {
	identity, ok := authhttp.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.cmd.PlaceOrder(c.Request.Context(), identity.UserID, req.Items)
	if err != nil {
		h.writePlaceOrderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// writePlaceOrderError 把下单失败映射为 HTTP 状态码。
// 商品不存在是 404，库存不足与入参问题是 400，其余一律 500。
func (h *Handler) writePlaceOrderError(c *gin.Context, err error) {
	var (
		notFound    *catalogdomain.ProductNotFoundError
		outOfStock  *catalogdomain.InsufficientStockError
		badQuantity *domain.InvalidQuantityError
	)
	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	case errors.As(err, &outOfStock):
		c.JSON(http.StatusBadRequest, gin.H{"error": outOfStock.Error()})
	case errors.As(err, &badQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": badQuantity.Error()})
	case errors.Is(err, domain.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrEmptyCart.Error()})
	default:
		logger.Error(c.Request.Context(), "failed to place order", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// ListOrders 分页列出调用者可见的订单
func (h *Handler) ListOrders(c *gin.Context) {
	identity, ok := authhttp.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	orders, err := h.query.ListOrders(c.Request.Context(), identity, skip, limit)
	if err != nil {
		logger.Error(c.Request.Context(), "failed to list orders", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, orders)
}

// OrderSummary 订单汇总投影
func (h *Handler) OrderSummary(c *gin.Context) {
	identity, ok := authhttp.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	rows, err := h.query.Summarize(c.Request.Context(), identity)
	if err != nil {
		logger.Error(c.Request.Context(), "failed to summarize orders", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, rows)
}

// GetOrder 按 ID 获取订单
func (h *Handler) GetOrder(c *gin.Context) {
	identity, ok := authhttp.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	order, err := h.query.GetOrder(c.Request.Context(), identity, uint(id))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		case errors.Is(err, domain.ErrOrderAccessDenied):
			c.JSON(http.StatusForbidden, gin.H{"error": domain.ErrOrderAccessDenied.Error()})
		default:
			logger.Error(c.Request.Context(), "failed to get order", "order_id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, order)
}
