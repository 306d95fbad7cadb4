package application

import (
	"context"

	authdomain "github.com/wyfcoding/ecommerce/internal/auth/domain"
	catalogapp "github.com/wyfcoding/ecommerce/internal/catalog/application"
	"github.com/wyfcoding/ecommerce/internal/order/domain"
)

// OrderQueryService 订单查询服务
type OrderQueryService struct {
	orders domain.OrderRepository
}

// NewOrderQueryService 创建订单查询服务实例
func NewOrderQueryService(orders domain.OrderRepository) *OrderQueryService {
	return &OrderQueryService{orders: orders}
}

// ownerFilter 把访问范围决策翻译成仓储层的拥有者过滤条件
func ownerFilter(identity authdomain.Identity) *uint {
	if authdomain.ViewScope(identity) == authdomain.AllowAll {
		return nil
	}
	owner := identity.UserID
	return &owner
}

// ListOrders 分页列出调用者可见的订单。普通用户只看到自己的，
// 管理员看到全部。
func (s *OrderQueryService) ListOrders(ctx context.Context, identity authdomain.Identity, skip, limit int) ([]*domain.Order, error) {
	skip, limit = catalogapp.ClampPagination(skip, limit)
	return s.orders.List(ctx, ownerFilter(identity), limit, skip)
}

// GetOrder 按 ID 获取订单。先判存在，再判归属：
// 不存在返回 ErrOrderNotFound，存在但无权查看返回 ErrOrderAccessDenied。
func (s *OrderQueryService) GetOrder(ctx context.Context, identity authdomain.Identity, id uint) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}
	if authdomain.AuthorizeOwner(identity, order.UserID) == authdomain.Deny {
		return nil, domain.ErrOrderAccessDenied
	}
	return order, nil
}

// Summarize 订单汇总投影，按创建时间倒序
func (s *OrderQueryService) Summarize(ctx context.Context, identity authdomain.Identity) ([]domain.OrderSummaryRow, error) {
	return s.orders.Summarize(ctx, ownerFilter(identity))
}
