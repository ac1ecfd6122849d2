package payment

import (
	"context"

	"github.com/xiebiao/storefront/internal/domain/payment"
	"github.com/xiebiao/storefront/internal/domain/user"
	apperrors "github.com/xiebiao/storefront/pkg/errors"
)

// ListPendingUseCase 审批工作台列表用例
// 销售按状态捞支付单(pending待认领, pending_approval处理中)
type ListPendingUseCase struct {
	paymentRepo payment.Repository
}

// NewListPendingUseCase 创建审批列表用例
func NewListPendingUseCase(paymentRepo payment.Repository) *ListPendingUseCase {
	return &ListPendingUseCase{paymentRepo: paymentRepo}
}

// ListPendingRequest 审批列表请求DTO
type ListPendingRequest struct {
	Status    payment.Status
	Page      int
	PageSize  int
	ActorRole user.Role
}

// PaymentItem 支付单列表项
type PaymentItem struct {
	ID        uint   `json:"id"`
	PaymentNo string `json:"payment_no"`
	OrderID   uint   `json:"order_id"`
	Amount    int64  `json:"amount"`
	Method    string `json:"method"`
	Status    string `json:"status"`
	Reason    string `json:"reason,omitempty"`
	CreatedAt string `json:"created_at"`
}

// Execute 执行查询
func (uc *ListPendingUseCase) Execute(ctx context.Context, req ListPendingRequest) ([]PaymentItem, int64, error) {
	if !req.ActorRole.CanManagePayments() {
		return nil, 0, apperrors.ErrForbidden
	}

	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 || req.PageSize > 100 {
		req.PageSize = 20
	}

	payments, total, err := uc.paymentRepo.ListByStatus(ctx, req.Status, req.Page, req.PageSize)
	if err != nil {
		return nil, 0, err
	}

	items := make([]PaymentItem, len(payments))
	for i, p := range payments {
		items[i] = PaymentItem{
			ID:        p.ID,
			PaymentNo: p.PaymentNo,
			OrderID:   p.OrderID,
			Amount:    p.Amount,
			Method:    p.Method,
			Status:    p.Status.String(),
			Reason:    p.Reason,
			CreatedAt: p.CreatedAt.Format("2006-01-02 15:04:05"),
		}
	}
	return items, total, nil
}
