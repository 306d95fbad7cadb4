// Package http 提供商品目录的 HTTP 处理器
package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/ecommerce/internal/catalog/application"
	"github.com/wyfcoding/ecommerce/internal/catalog/domain"
	"github.com/wyfcoding/ecommerce/pkg/logger"
)

// Handler 商品目录 HTTP 处理器
type Handler struct {
	cmd   *application.CatalogCommandService
	query *application.CatalogQueryService
}

// NewHandler 创建商品目录处理器实例
func NewHandler(cmd *application.CatalogCommandService, query *application.CatalogQueryService) *Handler {
	return &Handler{cmd: cmd, query: query}
}

// RegisterRoutes 注册路由。requireAuth 对所有商品路由生效，requireAdmin 只挂在写操作上。
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, requireAuth, requireAdmin gin.HandlerFunc) {
	g := r.Group("/products")
	g.Use(requireAuth)
	g.POST("/", requireAdmin, h.CreateProduct)
	g.GET("/", h.ListProducts)
	g.GET("/:id", h.GetProduct)
	g.PUT("/:id", requireAdmin, h.UpdateProduct)
	g.DELETE("/:id", requireAdmin, h.DeleteProduct)
}

// CreateProductRequest 创建商品请求
type CreateProductRequest struct {
	Name        string          `json:"name" binding:"required,min=1,max=200"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Stock       int64           `json:"stock_quantity" binding:"gte=0"`
	Category    string          `json:"category"`
	IsActive    *bool           `json:"is_active"`
}

// CreateProduct 创建商品，仅管理员
func (h *Handler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Price.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must be positive"})
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	product, err := h.cmd.CreateProduct(c.Request.Context(), application.CreateProductCommand{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		IsActive:    isActive,
	})
	if err != nil {
		logger.Error(c.Request.Context(), "failed to create product", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, product)
}

// ListProducts 分页获取上架商品
func (h *Handler) ListProducts(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	products, err := h.query.ListActiveProducts(c.Request.Context(), skip, limit)
	if err != nil {
		logger.Error(c.Request.Context(), "failed to list products", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, products)
}

// GetProduct 按 ID 获取商品
func (h *Handler) GetProduct(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	product, err := h.query.GetProduct(c.Request.Context(), id)
	if err != nil {
		var notFound *domain.ProductNotFoundError
		if errors.As(err, &notFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		logger.Error(c.Request.Context(), "failed to get product", "product_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// UpdateProductRequest 部分更新请求，缺省字段保持原值
type UpdateProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int64           `json:"stock_quantity"`
	Category    *string          `json:"category"`
	IsActive    *bool            `json:"is_active"`
}

// UpdateProduct 部分更新商品，仅管理员
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Price != nil && !req.Price.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must be positive"})
		return
	}
	if req.Stock != nil && *req.Stock < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stock_quantity must be non-negative"})
		return
	}

	product, err := h.cmd.UpdateProduct(c.Request.Context(), id, domain.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		IsActive:    req.IsActive,
	})
	if err != nil {
		var notFound *domain.ProductNotFoundError
		if errors.As(err, &notFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		logger.Error(c.Request.Context(), "failed to update product", "product_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// DeleteProduct 删除商品，仅管理员
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	if err := h.cmd.DeleteProduct(c.Request.Context(), id); err != nil {
		var notFound *domain.ProductNotFoundError
		if errors.As(err, &notFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		logger.Error(c.Request.Context(), "failed to delete product", "product_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.Status(http.StatusNoContent)
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
