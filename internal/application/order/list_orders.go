package order

import (
	"context"

	"github.com/xiebiao/storefront/internal/domain/order"
)

// ListOrdersUseCase 我的订单列表用例
type ListOrdersUseCase struct {
	orderRepo order.Repository
}

// NewListOrdersUseCase 创建订单列表用例
func NewListOrdersUseCase(orderRepo order.Repository) *ListOrdersUseCase {
	return &ListOrdersUseCase{orderRepo: orderRepo}
}

// ListOrdersRequest 订单列表请求DTO
type ListOrdersRequest struct {
	CustomerID uint
	Page       int
	PageSize   int
}

// OrderListItem 订单列表项DTO(不含订单行明细)
type OrderListItem struct {
	OrderID   uint   `json:"order_id"`
	OrderNo   string `json:"order_no"`
	Status    string `json:"status"`
	Total     int64  `json:"total"`
	TotalYuan string `json:"total_yuan"`
	LineCount int    `json:"line_count"`
	CreatedAt string `json:"created_at"`
}

// ListOrdersResponse 订单列表响应DTO
type ListOrdersResponse struct {
	List     []OrderListItem `json:"list"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

// Execute 执行订单列表查询
func (uc *ListOrdersUseCase) Execute(ctx context.Context, req ListOrdersRequest) (*ListOrdersResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	orders, total, err := uc.orderRepo.ListByCustomerID(ctx, req.CustomerID, req.Page, req.PageSize)
	if err != nil {
		return nil, err
	}

	list := make([]OrderListItem, len(orders))
	for i, o := range orders {
		list[i] = OrderListItem{
			OrderID:   o.ID,
			OrderNo:   o.OrderNo,
			Status:    o.Status.String(),
			Total:     o.Total,
			TotalYuan: formatPrice(o.Total),
			LineCount: len(o.Lines),
			CreatedAt: o.CreatedAt.Format("2006-01-02 15:04:05"),
		}
	}

	return &ListOrdersResponse{
		List:     list,
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
	}, nil
}
