package payment

import (
	"context"
	"log"

	"github.com/xiebiao/storefront/internal/domain/notification"
	"github.com/xiebiao/storefront/internal/domain/order"
	"github.com/xiebiao/storefront/internal/domain/payment"
	"github.com/xiebiao/storefront/internal/domain/stock"
	"github.com/xiebiao/storefront/internal/domain/tx"
	"github.com/xiebiao/storefront/internal/domain/user"
	apperrors "github.com/xiebiao/storefront/pkg/errors"
	"github.com/xiebiao/storefront/pkg/metrics"
)

// stateMachine 支付状态机的事务内执行器
// 设计说明: 人工审批(TransitionUseCase)和过期清理(SweepUseCase)
// 走的是同一套边和同一套副作用, 共用这个执行器保证行为一致
type stateMachine struct {
	paymentRepo payment.Repository
	orderRepo   order.Repository
	ledger      *stock.Ledger
}

// apply 在调用方事务内执行一次支付状态流转及其全部副作用
//
// 流程:
//  1. 锁定支付单(FOR UPDATE, 并发审批在此排队)
//  2. 实体状态机校验并流转(非法边/重放在这里被拒绝)
//  3. 按目标状态联动订单与库存台账:
//     approved  → 订单preparing, 台账confirm(记审计流水, 不动数量)
//     rejected  → 订单cancelled, 台账release回补预留
//     cancelled → 订单cancelled, 台账release回补预留
//     pending_approval → 仅支付单状态变化
//
// 订单状态是支付状态的确定性函数, 联动在同一事务内完成,
// 二者永不脱节
func (m *stateMachine) apply(ctx context.Context, paymentID uint, target payment.Status, reason string, actorID uint) (*payment.Payment, *order.Order, error) {
	p, err := m.paymentRepo.LockByID(ctx, paymentID)
	if err != nil {
		return nil, nil, err
	}

	if err := p.TransitionTo(target, reason); err != nil {
		return nil, nil, err
	}
	if err := m.paymentRepo.Update(ctx, p); err != nil {
		return nil, nil, err
	}

	o, err := m.orderRepo.FindByID(ctx, p.OrderID)
	if err != nil {
		return nil, nil, err
	}

	switch target {
	case payment.StatusApproved:
		if err := o.TransitionTo(order.StatusPreparing); err != nil {
			return nil, nil, err
		}
		for _, line := range o.Lines {
			if err := m.ledger.Confirm(ctx, line.VariantID, line.Quantity, o.OrderNo, actorID); err != nil {
				return nil, nil, err
			}
		}

	case payment.StatusRejected, payment.StatusCancelled:
		if err := o.TransitionTo(order.StatusCancelled); err != nil {
			return nil, nil, err
		}
		// 释放预留: 台账内部有幂等保障(同订单同规格最多回补一次)
		for _, line := range o.Lines {
			if err := m.ledger.Release(ctx, line.VariantID, line.Quantity, o.OrderNo, actorID, reason); err != nil {
				return nil, nil, err
			}
		}

	case payment.StatusPendingApproval:
		// 认领审核, 订单状态不变
		return p, o, nil
	}

	if err := m.orderRepo.UpdateStatus(ctx, o.ID, o.Status); err != nil {
		return nil, nil, err
	}

	return p, o, nil
}

// TransitionUseCase 支付状态流转用例(人工审批入口)
type TransitionUseCase struct {
	machine   *stateMachine
	txManager tx.Manager
	sender    notification.Sender
}

// NewTransitionUseCase 创建支付流转用例
func NewTransitionUseCase(
	paymentRepo payment.Repository,
	orderRepo order.Repository,
	ledger *stock.Ledger,
	txManager tx.Manager,
	sender notification.Sender,
) *TransitionUseCase {
	return &TransitionUseCase{
		machine: &stateMachine{
			paymentRepo: paymentRepo,
			orderRepo:   orderRepo,
			ledger:      ledger,
		},
		txManager: txManager,
		sender:    sender,
	}
}

// TransitionRequest 支付流转请求DTO
type TransitionRequest struct {
	PaymentID uint
	Target    payment.Status
	Reason    string    // 驳回时必填
	ActorID   uint      // 操作人(从JWT中提取)
	ActorRole user.Role // 操作人角色(从JWT中提取)
}

// TransitionResponse 支付流转响应DTO
type TransitionResponse struct {
	PaymentID     uint   `json:"payment_id"`
	PaymentStatus string `json:"payment_status"`
	OrderID       uint   `json:"order_id"`
	OrderNo       string `json:"order_no"`
	OrderStatus   string `json:"order_status"`
}

// Execute 执行支付状态流转
// 权限规则: 只有sales/admin可以审批支付, 在用例入口校验一次,
// 不在每个调用点重复判断角色字符串
func (uc *TransitionUseCase) Execute(ctx context.Context, req TransitionRequest) (*TransitionResponse, error) {
	if !req.ActorRole.CanManagePayments() {
		return nil, apperrors.ErrForbidden
	}

	var (
		p *payment.Payment
		o *order.Order
	)
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		var err error
		p, o, err = uc.machine.apply(txCtx, req.PaymentID, req.Target, req.Reason, req.ActorID)
		return err
	})

	if err != nil {
		metrics.IncCounterVec(metrics.PaymentTransitionsTotal,
			map[string]string{"target": req.Target.String(), "result": transitionResult(err)})
		return nil, err
	}
	metrics.IncCounterVec(metrics.PaymentTransitionsTotal,
		map[string]string{"target": req.Target.String(), "result": "ok"})

	// 事务已提交, 通知尽力而为
	notifyTransition(ctx, uc.sender, p, o)

	return &TransitionResponse{
		PaymentID:     p.ID,
		PaymentStatus: p.Status.String(),
		OrderID:       o.ID,
		OrderNo:       o.OrderNo,
		OrderStatus:   o.Status.String(),
	}, nil
}

// transitionResult 把流转失败错误归类为指标标签
func transitionResult(err error) string {
	appErr := apperrors.GetAppError(err)
	switch appErr.Code {
	case apperrors.ErrCodeInvalidTransition, apperrors.ErrCodeMissingReason:
		return "invalid"
	default:
		return "error"
	}
}

// notifyTransition 按流转结果给买家发通知(事务外, fire-and-forget)
func notifyTransition(ctx context.Context, sender notification.Sender, p *payment.Payment, o *order.Order) {
	var msg notification.Message
	switch p.Status {
	case payment.StatusApproved:
		msg = notification.Message{
			RecipientID: o.CustomerID,
			Template:    notification.TemplatePaymentApproved,
			Payload: map[string]interface{}{
				"order_no": o.OrderNo,
				"total":    o.Total,
			},
		}
	case payment.StatusRejected:
		msg = notification.Message{
			RecipientID: o.CustomerID,
			Template:    notification.TemplatePaymentRejected,
			Payload: map[string]interface{}{
				"order_no": o.OrderNo,
				"reason":   p.Reason,
			},
		}
	case payment.StatusCancelled:
		msg = notification.Message{
			RecipientID: o.CustomerID,
			Template:    notification.TemplateOrderCancelled,
			Payload: map[string]interface{}{
				"order_no": o.OrderNo,
			},
		}
	default:
		// pending_approval不打扰买家
		return
	}

	if err := sender.Send(ctx, msg); err != nil {
		log.Printf("[WARN] 支付流转通知发送失败 order_no=%s template=%s: %v", o.OrderNo, msg.Template, err)
		metrics.IncCounterVec(metrics.NotificationsPublishedTotal, map[string]string{"result": "failed"})
		return
	}
	metrics.IncCounterVec(metrics.NotificationsPublishedTotal, map[string]string{"result": "ok"})
}
