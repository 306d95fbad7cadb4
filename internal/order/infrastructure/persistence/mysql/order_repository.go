// Package mysql 提供订单仓储接口的 MySQL GORM 实现
package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/ecommerce/internal/order/domain"
	"github.com/wyfcoding/ecommerce/pkg/db"
	"github.com/wyfcoding/ecommerce/pkg/logger"
	"gorm.io/gorm"
)

// OrderModel 订单数据库模型，直接映射 orders 表
type OrderModel struct {
	gorm.Model
	UserID      uint             `gorm:"column:user_id;index;not null"`
	TotalAmount decimal.Decimal  `gorm:"column:total_amount;type:decimal(20,2);not null"`
	Status      string           `gorm:"column:status;type:varchar(32);not null;default:'pending'"`
	Items       []OrderItemModel `gorm:"foreignKey:OrderID"`
}

// TableName 指定表名
func (OrderModel) TableName() string { return "orders" }

// OrderItemModel 订单行数据库模型，直接映射 order_items 表
type OrderItemModel struct {
	ID              uint            `gorm:"primarykey"`
	OrderID         uint            `gorm:"column:order_id;index;not null"`
	ProductID       uint            `gorm:"column:product_id;index;not null"`
	Quantity        int64           `gorm:"column:quantity;not null"`
	PriceAtPurchase decimal.Decimal `gorm:"column:price_at_purchase;type:decimal(20,2);not null"`
}

// TableName 指定表名
func (OrderItemModel) TableName() string { return "order_items" }

// orderRepositoryImpl 是 domain.OrderRepository 接口的 GORM 实现
type orderRepositoryImpl struct {
	db *db.DB
}

// NewOrderRepository 创建订单仓储实例
func NewOrderRepository(database *db.DB) domain.OrderRepository {
	return &orderRepositoryImpl{db: database}
}

// Create 实现 domain.OrderRepository.Create。
// 订单头与订单行通过 GORM 关联一次写入，调用方负责事务边界。
func (r *orderRepositoryImpl) Create(ctx context.Context, order *domain.Order) error {
	model := toOrderModel(order)
	if err := db.FromContext(ctx, r.db.DB).Create(model).Error; err != nil {
		logger.Error(ctx, "order_repository.create failed", "user_id", order.UserID, "error", err)
		return fmt.Errorf("failed to create order: %w", err)
	}

	order.ID = model.ID
	order.CreatedAt = model.CreatedAt
	order.UpdatedAt = model.UpdatedAt
	for i := range model.Items {
		order.Items[i].ID = model.Items[i].ID
		order.Items[i].OrderID = model.Items[i].OrderID
	}
	return nil
}

// GetByID 实现 domain.OrderRepository.GetByID
func (r *orderRepositoryImpl) GetByID(ctx context.Context, id uint) (*domain.Order, error) {
	var model OrderModel
	err := db.FromContext(ctx, r.db.DB).
		Preload("Items").
		First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.Error(ctx, "order_repository.get_by_id failed", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return toOrder(&model), nil
}

// List 实现 domain.OrderRepository.List，按主键升序即台账插入顺序
func (r *orderRepositoryImpl) List(ctx context.Context, ownerID *uint, limit, offset int) ([]*domain.Order, error) {
	query := db.FromContext(ctx, r.db.DB).Preload("Items").Order("id ASC")
	if ownerID != nil {
		query = query.Where("user_id = ?", *ownerID)
	}

	var models []OrderModel
	if err := query.Limit(limit).Offset(offset).Find(&models).Error; err != nil {
		logger.Error(ctx, "order_repository.list failed", "error", err)
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	orders := make([]*domain.Order, len(models))
	for i := range models {
		orders[i] = toOrder(&models[i])
	}
	return orders, nil
}

// Summarize 实现 domain.OrderRepository.Summarize。
// 三表连接一次取回订单汇总，LEFT JOIN 保证零行订单也有计数。
func (r *orderRepositoryImpl) Summarize(ctx context.Context, ownerID *uint) ([]domain.OrderSummaryRow, error) {
	sql := `
		SELECT o.id AS order_id,
		       u.email AS user_email,
		       o.total_amount AS total_amount,
		       COUNT(oi.id) AS item_count,
		       o.status AS status,
		       o.created_at AS created_at
		FROM orders o
		JOIN users u ON u.id = o.user_id
		LEFT JOIN order_items oi ON oi.order_id = o.id`
	args := make([]interface{}, 0, 1)
	if ownerID != nil {
		sql += ` WHERE o.user_id = ?`
		args = append(args, *ownerID)
	}
	sql += `
		GROUP BY o.id, u.email, o.total_amount, o.status, o.created_at
		ORDER BY o.created_at DESC, o.id DESC`

	var rows []domain.OrderSummaryRow
	if err := db.FromContext(ctx, r.db.DB).Raw(sql, args...).Scan(&rows).Error; err != nil {
		logger.Error(ctx, "order_repository.summarize failed", "error", err)
		return nil, fmt.Errorf("failed to summarize orders: %w", err)
	}
	return rows, nil
}

// WithTx 实现 domain.OrderRepository.WithTx
func (r *orderRepositoryImpl) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.db.WithTx(ctx, fn)
}

// mapping helpers

func toOrderModel(o *domain.Order) *OrderModel {
	items := make([]OrderItemModel, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemModel{
			ID:              item.ID,
			OrderID:         item.OrderID,
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			PriceAtPurchase: item.PriceAtPurchase,
		}
	}
	return &OrderModel{
		Model:       gorm.Model{ID: o.ID, CreatedAt: o.CreatedAt, UpdatedAt: o.UpdatedAt},
		UserID:      o.UserID,
		TotalAmount: o.TotalAmount,
		Status:      string(o.Status),
		Items:       items,
	}
}

func toOrder(m *OrderModel) *domain.Order {
	items := make([]domain.OrderItem, len(m.Items))
	for i, item := range m.Items {
		items[i] = domain.OrderItem{
			ID:              item.ID,
			OrderID:         item.OrderID,
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			PriceAtPurchase: item.PriceAtPurchase,
		}
	}
	return &domain.Order{
		ID:          m.ID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		UserID:      m.UserID,
		TotalAmount: m.TotalAmount,
		Status:      domain.OrderStatus(m.Status),
		Items:       items,
	}
}
