// Package application 提供订单的命令/查询服务
package application

import (
	"context"
	"errors"
	"fmt"

	catalogapp "github.com/wyfcoding/ecommerce/internal/catalog/application"
	catalogdomain "github.com/wyfcoding/ecommerce/internal/catalog/domain"
	"github.com/wyfcoding/ecommerce/internal/order/domain"
	"github.com/wyfcoding/ecommerce/pkg/logger"
	"github.com/wyfcoding/ecommerce/pkg/metrics"
)

// OrderCommandService 订单命令服务
type OrderCommandService struct {
	orders    domain.OrderRepository
	products  catalogdomain.ProductRepository
	cache     catalogapp.ProductCache
	publisher domain.EventPublisher
	metrics   *metrics.Metrics
}

// NewOrderCommandService 创建订单命令服务实例
func NewOrderCommandService(
	orders domain.OrderRepository,
	products catalogdomain.ProductRepository,
	cache catalogapp.ProductCache,
	publisher domain.EventPublisher,
	m *metrics.Metrics,
) *OrderCommandService {
	return &OrderCommandService{
		orders:    orders,
		products:  products,
		cache:     cache,
		publisher: publisher,
		metrics:   m,
	}
}

// PlaceOrder 下单。整个流程在单个数据库事务内完成：
// 逐行锁定商品（SELECT ... FOR UPDATE）、校验库存、按下单时刻价格
// 生成快照，再对每个商品做一次条件扣减，最后落库订单与订单行。
// 任一环节失败，事务整体回滚，不留任何半成品状态。
func (s *OrderCommandService) PlaceOrder(ctx context.Context, userID uint, lines []domain.CartLine) (*domain.Order, error) {
	if len(lines) == 0 {
		return nil, domain.ErrEmptyCart
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, &domain.InvalidQuantityError{ProductID: line.ProductID}
		}
	}

	var order *domain.Order
	err := s.orders.WithTx(ctx, func(txCtx context.Context) error {
		items := make([]domain.OrderItem, 0, len(lines))
		// 同一商品可能出现在多个购物车行，remaining 维护事务内的
		// 剩余库存视图，needed 聚合每个商品的总扣减量
		remaining := make(map[uint]int64)
		needed := make(map[uint]int64)
		names := make(map[uint]string)
		touched := make([]uint, 0, len(lines))

		for _, line := range lines {
			if _, seen := remaining[line.ProductID]; !seen {
				product, err := s.products.GetForUpdate(txCtx, line.ProductID)
				if err != nil {
					return err
				}
				if product == nil {
					return &catalogdomain.ProductNotFoundError{ProductID: line.ProductID}
				}
				remaining[product.ID] = product.Stock
				names[product.ID] = product.Name
				touched = append(touched, product.ID)

				items = append(items, domain.OrderItem{
					ProductID:       product.ID,
					Quantity:        line.Quantity,
					PriceAtPurchase: product.Price,
				})
			} else {
				// 重复行沿用首次锁定时的价格快照
				for i := range items {
					if items[i].ProductID == line.ProductID {
						items = append(items, domain.OrderItem{
							ProductID:       line.ProductID,
							Quantity:        line.Quantity,
							PriceAtPurchase: items[i].PriceAtPurchase,
						})
						break
					}
				}
			}

			if remaining[line.ProductID] < line.Quantity {
				return &catalogdomain.InsufficientStockError{
					ProductID: line.ProductID,
					Name:      names[line.ProductID],
				}
			}
			remaining[line.ProductID] -= line.Quantity
			needed[line.ProductID] += line.Quantity
		}

		// 每个商品只做一次条件扣减，条件不满足即库存不足
		for _, productID := range touched {
			if err := s.products.DecrementStock(txCtx, productID, needed[productID]); err != nil {
				return err
			}
		}

		order = domain.NewOrder(userID, items)
		if err := s.orders.Create(txCtx, order); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		var stockErr *catalogdomain.InsufficientStockError
		if errors.As(err, &stockErr) && s.metrics != nil {
			s.metrics.RecordStockRejection()
		}
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	s.afterPlaced(ctx, order)
	return order, nil
}

// afterPlaced 事务提交后的收尾：失效商品缓存、上报指标、发布事件。
// 全部为尽力而为，失败只记日志，不影响已提交的订单。
func (s *OrderCommandService) afterPlaced(ctx context.Context, order *domain.Order) {
	if s.cache != nil {
		keys := make([]string, 0, len(order.Items))
		seen := make(map[uint]struct{}, len(order.Items))
		for _, item := range order.Items {
			if _, ok := seen[item.ProductID]; ok {
				continue
			}
			seen[item.ProductID] = struct{}{}
			keys = append(keys, catalogapp.ProductCacheKey(item.ProductID))
		}
		if err := s.cache.Delete(ctx, keys...); err != nil {
			logger.Warn(ctx, "failed to invalidate product cache after order", "order_id", order.ID, "error", err)
		}
	}

	if s.metrics != nil {
		s.metrics.RecordOrder(order.TotalAmount.InexactFloat64())
	}

	if s.publisher != nil {
		event := domain.NewOrderPlacedEvent(order)
		key := fmt.Sprintf("order-%d", order.ID)
		if err := s.publisher.Publish(ctx, domain.OrderPlacedEventType, key, event); err != nil {
			logger.Warn(ctx, "failed to publish order placed event", "order_id", order.ID, "error", err)
		}
	}

	logger.Info(ctx, "order placed",
		"order_id", order.ID,
		"user_id", order.UserID,
		"total_amount", order.TotalAmount.String(),
		"items", len(order.Items))
}
