// Package domain 包含订单台账的领域模型
package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus 订单状态
type OrderStatus string

// OrderStatusPending 创建后的默认状态，本服务不暴露任何状态流转入口
const OrderStatusPending OrderStatus = "pending"

var (
	// ErrEmptyCart 空购物车在任何持久化动作之前被拒绝
	ErrEmptyCart = errors.New("order must contain at least one item")
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderAccessDenied 非拥有者且非管理员访问订单
	ErrOrderAccessDenied = errors.New("not authorized to view this order")
)

// InvalidQuantityError 购物车行数量非正
type InvalidQuantityError struct {
	ProductID uint
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity for product %d must be a positive integer", e.ProductID)
}

// CartLine 购物车行：商品与数量
type CartLine struct {
	ProductID uint  `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

// OrderItem 订单行，price_at_purchase 为下单时刻的价格快照，
// 此后商品价格变动不影响历史订单
type OrderItem struct {
	ID              uint            `json:"id"`
	OrderID         uint            `json:"order_id"`
	ProductID       uint            `json:"product_id"`
	Quantity        int64           `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
}

// LineTotal 行小计
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.PriceAtPurchase.Mul(decimal.NewFromInt(i.Quantity))
}

// Order 订单实体，创建后不可变
type Order struct {
	ID          uint            `json:"id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	UserID      uint            `json:"user_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      OrderStatus     `json:"status"`
	Items       []OrderItem     `json:"items"`
}

// NewOrder 创建订单，总额由订单行快照累加得出，之后不再重算
func NewOrder(userID uint, items []OrderItem) *Order {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return &Order{
		UserID:      userID,
		TotalAmount: total,
		Status:      OrderStatusPending,
		Items:       items,
	}
}

// OrderSummaryRow 订单汇总投影行
type OrderSummaryRow struct {
	OrderID     uint            `json:"order_id"`
	UserEmail   string          `json:"user_email"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ItemCount   int64           `json:"item_count"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

// OrderRepository 订单仓储接口
type OrderRepository interface {
	// 创建订单及其全部订单行
	Create(ctx context.Context, order *Order) error
	// 按 ID 获取订单（含订单行），不存在返回 nil
	GetByID(ctx context.Context, id uint) (*Order, error)
	// 按台账插入顺序分页列出订单，ownerID 为 nil 时不过滤拥有者
	List(ctx context.Context, ownerID *uint, limit, offset int) ([]*Order, error)
	// 订单汇总投影，按创建时间倒序，ownerID 为 nil 时覆盖全部订单
	Summarize(ctx context.Context, ownerID *uint) ([]OrderSummaryRow, error)
	// 在事务中执行
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}
