// Package mysql 提供商品仓储接口的 MySQL GORM 实现
package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/ecommerce/internal/catalog/domain"
	"github.com/wyfcoding/ecommerce/pkg/db"
	"github.com/wyfcoding/ecommerce/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductModel 商品数据库模型，直接映射 products 表
type ProductModel struct {
	gorm.Model
	Name        string          `gorm:"column:name;type:varchar(200);index;not null"`
	Description string          `gorm:"column:description;type:text"`
	Price       decimal.Decimal `gorm:"column:price;type:decimal(20,2);not null"`
	Stock       int64           `gorm:"column:stock_quantity;not null;default:0"`
	Category    string          `gorm:"column:category;type:varchar(100);index"`
	IsActive    bool            `gorm:"column:is_active;not null;default:true"`
}

// TableName 指定表名
func (ProductModel) TableName() string { return "products" }

// productRepositoryImpl 是 domain.ProductRepository 接口的 GORM 实现
type productRepositoryImpl struct {
	db *db.DB
}

// NewProductRepository 创建商品仓储实例
func NewProductRepository(database *db.DB) domain.ProductRepository {
	return &productRepositoryImpl{db: database}
}

// Save 实现 domain.ProductRepository.Save
func (r *productRepositoryImpl) Save(ctx context.Context, product *domain.Product) error {
	model := toProductModel(product)
	if err := db.FromContext(ctx, r.db.DB).Create(model).Error; err != nil {
		logger.Error(ctx, "product_repository.save failed", "name", product.Name, "error", err)
		return fmt.Errorf("failed to save product: %w", err)
	}

	product.ID = model.ID
	product.CreatedAt = model.CreatedAt
	product.UpdatedAt = model.UpdatedAt
	return nil
}

// GetByID 实现 domain.ProductRepository.GetByID
func (r *productRepositoryImpl) GetByID(ctx context.Context, id uint) (*domain.Product, error) {
	var model ProductModel
	if err := db.FromContext(ctx, r.db.DB).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Error(ctx, "product_repository.get_by_id failed", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return toProduct(&model), nil
}

// GetForUpdate 实现 domain.ProductRepository.GetForUpdate。
// SELECT ... FOR UPDATE 行锁串行化并发购物车对同一商品的读写。
func (r *productRepositoryImpl) GetForUpdate(ctx context.Context, id uint) (*domain.Product, error) {
	var model ProductModel
	err := db.FromContext(ctx, r.db.DB).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Error(ctx, "product_repository.get_for_update failed", "id", id, "error", err)
		return nil, fmt.Errorf("failed to lock product: %w", err)
	}
	return toProduct(&model), nil
}

// ListActive 实现 domain.ProductRepository.ListActive
func (r *productRepositoryImpl) ListActive(ctx context.Context, limit, offset int) ([]*domain.Product, error) {
	var models []ProductModel
	err := db.FromContext(ctx, r.db.DB).
		Where("is_active = ?", true).
		Limit(limit).Offset(offset).
		Find(&models).Error
	if err != nil {
		logger.Error(ctx, "product_repository.list_active failed", "error", err)
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	products := make([]*domain.Product, len(models))
	for i, m := range models {
		products[i] = toProduct(&m)
	}
	return products, nil
}

// Update 实现 domain.ProductRepository.Update
func (r *productRepositoryImpl) Update(ctx context.Context, product *domain.Product) error {
	model := toProductModel(product)
	if err := db.FromContext(ctx, r.db.DB).Save(model).Error; err != nil {
		logger.Error(ctx, "product_repository.update failed", "id", product.ID, "error", err)
		return fmt.Errorf("failed to update product: %w", err)
	}
	product.UpdatedAt = model.UpdatedAt
	return nil
}

// Delete 实现 domain.ProductRepository.Delete，硬删除
func (r *productRepositoryImpl) Delete(ctx context.Context, id uint) error {
	result := db.FromContext(ctx, r.db.DB).Unscoped().Delete(&ProductModel{}, id)
	if result.Error != nil {
		logger.Error(ctx, "product_repository.delete failed", "id", id, "error", result.Error)
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return &domain.ProductNotFoundError{ProductID: id}
	}
	return nil
}

// DecrementStock 实现 domain.ProductRepository.DecrementStock。
// 条件更新保证库存永不为负：WHERE stock_quantity >= quantity，
// 零行命中视为库存不足。
func (r *productRepositoryImpl) DecrementStock(ctx context.Context, id uint, quantity int64) error {
	result := db.FromContext(ctx, r.db.DB).
		Model(&ProductModel{}).
		Where("id = ? AND stock_quantity >= ?", id, quantity).
		Update("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))
	if result.Error != nil {
		logger.Error(ctx, "product_repository.decrement_stock failed", "id", id, "error", result.Error)
		return fmt.Errorf("failed to decrement stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		var model ProductModel
		name := ""
		if err := db.FromContext(ctx, r.db.DB).Select("name").First(&model, id).Error; err == nil {
			name = model.Name
		}
		return &domain.InsufficientStockError{ProductID: id, Name: name}
	}
	return nil
}

// Count 实现 domain.ProductRepository.Count
func (r *productRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := db.FromContext(ctx, r.db.DB).Model(&ProductModel{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return total, nil
}

// mapping helpers

func toProductModel(p *domain.Product) *ProductModel {
	return &ProductModel{
		Model:       gorm.Model{ID: p.ID, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt},
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		Category:    p.Category,
		IsActive:    p.IsActive,
	}
}

func toProduct(m *ProductModel) *domain.Product {
	return &domain.Product{
		ID:          m.ID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		Stock:       m.Stock,
		Category:    m.Category,
		IsActive:    m.IsActive,
	}
}
