package domain

import (
	"context"
	"time"
)

// OrderPlacedEventType 订单创建事件类型
const OrderPlacedEventType = "order.placed"

// OrderPlacedItem 事件中的订单行
type OrderPlacedItem struct {
	ProductID       uint   `json:"product_id"`
	Quantity        int64  `json:"quantity"`
	PriceAtPurchase string `json:"price_at_purchase"`
}

// OrderPlacedEvent 订单创建事件，在事务提交后尽力投递
type OrderPlacedEvent struct {
	OrderID     uint              `json:"order_id"`
	UserID      uint              `json:"user_id"`
	TotalAmount string            `json:"total_amount"`
	Status      string            `json:"status"`
	Items       []OrderPlacedItem `json:"items"`
	Timestamp   time.Time         `json:"timestamp"`
}

// NewOrderPlacedEvent 从订单实体构造事件
func NewOrderPlacedEvent(order *Order) *OrderPlacedEvent {
	items := make([]OrderPlacedItem, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderPlacedItem{
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			PriceAtPurchase: item.PriceAtPurchase.String(),
		}
	}
	return &OrderPlacedEvent{
		OrderID:     order.ID,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount.String(),
		Status:      string(order.Status),
		Items:       items,
		Timestamp:   time.Now(),
	}
}

// EventPublisher 领域事件发布接口
type EventPublisher interface {
	Publish(ctx context.Context, eventType, key string, event any) error
}
