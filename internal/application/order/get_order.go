package order

import (
	"context"

	"github.com/xiebiao/storefront/internal/domain/order"
	"github.com/xiebiao/storefront/internal/domain/payment"
	"github.com/xiebiao/storefront/internal/domain/user"
)

// GetOrderUseCase 订单详情查询用例
type GetOrderUseCase struct {
	orderRepo   order.Repository
	paymentRepo payment.Repository
}

// NewGetOrderUseCase 创建订单详情用例
func NewGetOrderUseCase(orderRepo order.Repository, paymentRepo payment.Repository) *GetOrderUseCase {
	return &GetOrderUseCase{
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
	}
}

// GetOrderRequest 订单详情请求DTO
type GetOrderRequest struct {
	OrderID   uint
	ActorID   uint      // 请求人(从JWT中提取)
	ActorRole user.Role // 请求人角色
}

// OrderLineItem 订单行DTO
type OrderLineItem struct {
	VariantID uint   `json:"variant_id"`
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
}

// GetOrderResponse 订单详情响应DTO
type GetOrderResponse struct {
	OrderID       uint            `json:"order_id"`
	OrderNo       string          `json:"order_no"`
	Status        string          `json:"status"`
	Total         int64           `json:"total"`
	TotalYuan     string          `json:"total_yuan"`
	Lines         []OrderLineItem `json:"lines"`
	Receiver      string          `json:"receiver"`
	Phone         string          `json:"phone"`
	AddressDetail string          `json:"address_detail"`
	PaymentID     uint            `json:"payment_id"`
	PaymentStatus string          `json:"payment_status"`
	PaymentReason string          `json:"payment_reason,omitempty"`
	CreatedAt     string          `json:"created_at"`
}

// Execute 执行订单详情查询
// 越权校验: 买家只能看自己的订单, 员工(sales/admin)可以看全部
func (uc *GetOrderUseCase) Execute(ctx context.Context, req GetOrderRequest) (*GetOrderResponse, error) {
	o, err := uc.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	if !o.IsOwnedBy(req.ActorID) && !req.ActorRole.CanManagePayments() {
		return nil, order.ErrOrderAccessDenied
	}

	p, err := uc.paymentRepo.FindByOrderID(ctx, o.ID)
	if err != nil {
		return nil, err
	}

	lines := make([]OrderLineItem, len(o.Lines))
	for i, line := range o.Lines {
		lines[i] = OrderLineItem{
			VariantID: line.VariantID,
			SKU:       line.SKU,
			Name:      line.Name,
			Price:     line.Price,
			Quantity:  line.Quantity,
			Subtotal:  line.Price * int64(line.Quantity),
		}
	}

	return &GetOrderResponse{
		OrderID:       o.ID,
		OrderNo:       o.OrderNo,
		Status:        o.Status.String(),
		Total:         o.Total,
		TotalYuan:     formatPrice(o.Total),
		Lines:         lines,
		Receiver:      o.Address.Receiver,
		Phone:         o.Address.Phone,
		AddressDetail: o.Address.Detail,
		PaymentID:     p.ID,
		PaymentStatus: p.Status.String(),
		PaymentReason: p.Reason,
		CreatedAt:     o.CreatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}
