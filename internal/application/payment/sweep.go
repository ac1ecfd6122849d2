package payment

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/xiebiao/storefront/internal/domain/notification"
	"github.com/xiebiao/storefront/internal/domain/order"
	"github.com/xiebiao/storefront/internal/domain/payment"
	"github.com/xiebiao/storefront/internal/domain/stock"
	"github.com/xiebiao/storefront/internal/domain/tx"
	apperrors "github.com/xiebiao/storefront/pkg/errors"
	"github.com/xiebiao/storefront/pkg/metrics"
)

// SweepUseCase 过期预留清理用例
//
// 设计说明:
// 1. 挂在pending/pending_approval超过TTL(默认24小时)的订单,
//    占着库存不付款, 由定时清理驱动到cancelled边释放预留
// 2. 走与人工审批完全相同的状态机执行器, 清理没有任何特权边
// 3. 天然幂等: 已取消的支付单被状态过滤条件排除,
//    重复执行第二次的清理数量为0
type SweepUseCase struct {
	paymentRepo payment.Repository
	machine     *stateMachine
	txManager   tx.Manager
	sender      notification.Sender
	batchSize   int
}

// NewSweepUseCase 创建过期清理用例
// batchSize是单批处理数量, <=0时取默认值100
func NewSweepUseCase(
	paymentRepo payment.Repository,
	orderRepo order.Repository,
	ledger *stock.Ledger,
	txManager tx.Manager,
	sender notification.Sender,
	batchSize int,
) *SweepUseCase {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &SweepUseCase{
		paymentRepo: paymentRepo,
		machine: &stateMachine{
			paymentRepo: paymentRepo,
			orderRepo:   orderRepo,
			ledger:      ledger,
		},
		txManager: txManager,
		sender:    sender,
		batchSize: batchSize,
	}
}

// Execute 执行一轮清理, 返回实际取消的数量
//
// 流程: 分批捞出创建时间早于now-ttl、仍在pending/pending_approval
// 的支付单, 逐单在独立事务内驱动到cancelled
//
// 教学要点:为什么逐单独立事务而不是一个大事务?
// 1. 一单失败不应拖累整批(大事务会全部回滚)
// 2. 锁持有时间短, 不阻塞正常的人工审批
// 3. 清理与审批并发命中同一单时, 后到者拿到锁后会发现
//    状态已是终态, 流转被状态机拒绝, 跳过即可(不算错误)
func (uc *SweepUseCase) Execute(ctx context.Context, ttl time.Duration) (int, error) {
	cutoff := time.Now().Add(-ttl)
	swept := 0

	for {
		batch, err := uc.paymentRepo.ListPendingBefore(ctx, cutoff, uc.batchSize)
		if err != nil {
			return swept, err
		}
		if len(batch) == 0 {
			return swept, nil
		}

		progressed := 0
		for _, p := range batch {
			cancelled, o, err := uc.sweepOne(ctx, p.ID)
			if err != nil {
				log.Printf("[ERROR] 过期清理失败 payment_id=%d: %v", p.ID, err)
				continue
			}
			if !cancelled {
				// 并发竞态: 清理期间被人工审批抢先处理, 跳过
				progressed++
				continue
			}

			swept++
			progressed++
			metrics.IncCounter(metrics.ReservationsSweptTotal)
			uc.notifyCancelled(ctx, o)
		}

		// 整批无进展说明遇到持续性故障, 停止本轮避免空转
		if progressed == 0 {
			return swept, nil
		}
		if len(batch) < uc.batchSize {
			return swept, nil
		}
	}
}

// sweepOne 在独立事务内取消一笔过期支付
// 返回值: (是否实际取消, 关联订单, 错误)
func (uc *SweepUseCase) sweepOne(ctx context.Context, paymentID uint) (bool, *order.Order, error) {
	var o *order.Order
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		var err error
		_, o, err = uc.machine.apply(txCtx, paymentID, payment.StatusCancelled, "", 0)
		return err
	})
	if err != nil {
		// 状态已流转走(被审批通过/驳回/已取消), 不算清理失败
		if apperrors.GetAppError(err).Code == apperrors.ErrCodeInvalidTransition {
			return false, nil, nil
		}
		// 支付单刚好被删或查不到也跳过
		if errors.Is(err, payment.ErrPaymentNotFound) {
			return false, nil, nil
		}
		return false, nil, err
	}
	return true, o, nil
}

// notifyCancelled 通知买家订单已因超时取消(fire-and-forget)
func (uc *SweepUseCase) notifyCancelled(ctx context.Context, o *order.Order) {
	err := uc.sender.Send(ctx, notification.Message{
		RecipientID: o.CustomerID,
		Template:    notification.TemplateOrderCancelled,
		Payload: map[string]interface{}{
			"order_no": o.OrderNo,
			"reason":   "超时未支付",
		},
	})
	if err != nil {
		log.Printf("[WARN] 超时取消通知发送失败 order_no=%s: %v", o.OrderNo, err)
		metrics.IncCounterVec(metrics.NotificationsPublishedTotal, map[string]string{"result": "failed"})
		return
	}
	metrics.IncCounterVec(metrics.NotificationsPublishedTotal, map[string]string{"result": "ok"})
}
