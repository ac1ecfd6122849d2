package order

import (
	"context"

	"github.com/xiebiao/storefront/internal/domain/order"
	"github.com/xiebiao/storefront/internal/domain/tx"
	"github.com/xiebiao/storefront/internal/domain/user"
	apperrors "github.com/xiebiao/storefront/pkg/errors"
)

// FulfillmentUseCase 履约用例(发货、完成)
// 设计说明:
// 1. preparing→shipped→completed这两条边由销售的履约操作驱动,
//    与支付状态机无关(支付在approved后不再变化)
// 2. 状态合法性由订单实体的状态机校验(如pending不能直接发货)
type FulfillmentUseCase struct {
	orderRepo order.Repository
	txManager tx.Manager
}

// NewFulfillmentUseCase 创建履约用例
func NewFulfillmentUseCase(orderRepo order.Repository, txManager tx.Manager) *FulfillmentUseCase {
	return &FulfillmentUseCase{
		orderRepo: orderRepo,
		txManager: txManager,
	}
}

// FulfillmentRequest 履约请求DTO
type FulfillmentRequest struct {
	OrderID   uint
	ActorRole user.Role
}

// FulfillmentResponse 履约响应DTO
type FulfillmentResponse struct {
	OrderID uint   `json:"order_id"`
	OrderNo string `json:"order_no"`
	Status  string `json:"status"`
}

// MarkShipped 标记订单已发货(preparing → shipped)
func (uc *FulfillmentUseCase) MarkShipped(ctx context.Context, req FulfillmentRequest) (*FulfillmentResponse, error) {
	return uc.advance(ctx, req, order.StatusShipped)
}

// MarkCompleted 标记订单已完成(shipped → completed)
func (uc *FulfillmentUseCase) MarkCompleted(ctx context.Context, req FulfillmentRequest) (*FulfillmentResponse, error) {
	return uc.advance(ctx, req, order.StatusCompleted)
}

// advance 在事务内推进订单状态
func (uc *FulfillmentUseCase) advance(ctx context.Context, req FulfillmentRequest, target order.Status) (*FulfillmentResponse, error) {
	if !req.ActorRole.CanManagePayments() {
		return nil, apperrors.ErrForbidden
	}

	var o *order.Order
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		var err error
		o, err = uc.orderRepo.FindByID(txCtx, req.OrderID)
		if err != nil {
			return err
		}
		if err := o.TransitionTo(target); err != nil {
			return err
		}
		return uc.orderRepo.UpdateStatus(txCtx, o.ID, o.Status)
	})
	if err != nil {
		return nil, err
	}

	return &FulfillmentResponse{
		OrderID: o.ID,
		OrderNo: o.OrderNo,
		Status:  o.Status.String(),
	}, nil
}
