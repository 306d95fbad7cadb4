// Package domain 包含商品目录的领域模型
package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ProductNotFoundError 商品不存在
type ProductNotFoundError struct {
	ProductID uint
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product with id %d not found", e.ProductID)
}

// InsufficientStockError 库存不足
type InsufficientStockError struct {
	ProductID uint
	Name      string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s", e.Name)
}

// Product 商品实体
type Product struct {
	ID          uint            `json:"id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int64           `json:"stock_quantity"`
	Category    string          `json:"category,omitempty"`
	IsActive    bool            `json:"is_active"`
}

// ProductPatch 商品部分更新，nil 字段保持不变
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int64
	Category    *string
	IsActive    *bool
}

// Apply 将补丁应用到商品
func (p *ProductPatch) Apply(product *Product) {
	if p.Name != nil {
		product.Name = *p.Name
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.Stock != nil {
		product.Stock = *p.Stock
	}
	if p.Category != nil {
		product.Category = *p.Category
	}
	if p.IsActive != nil {
		product.IsActive = *p.IsActive
	}
}

// ProductRepository 商品仓储接口
type ProductRepository interface {
	// 保存新商品
	Save(ctx context.Context, product *Product) error
	// 按 ID 获取商品，不存在返回 nil
	GetByID(ctx context.Context, id uint) (*Product, error)
	// 按 ID 获取商品并加行锁，必须在事务内调用，不存在返回 nil
	GetForUpdate(ctx context.Context, id uint) (*Product, error)
	// 分页获取上架商品
	ListActive(ctx context.Context, limit, offset int) ([]*Product, error)
	// 更新商品全部字段
	Update(ctx context.Context, product *Product) error
	// 删除商品（硬删除）
	Delete(ctx context.Context, id uint) error
	// 条件扣减库存：仅当现有库存足够时生效，否则返回 InsufficientStockError
	DecrementStock(ctx context.Context, id uint, quantity int64) error
	// 商品总数
	Count(ctx context.Context) (int64, error)
}
