package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/xiebiao/storefront/internal/domain/catalog"
	"github.com/xiebiao/storefront/internal/domain/notification"
	"github.com/xiebiao/storefront/internal/domain/order"
	"github.com/xiebiao/storefront/internal/domain/payment"
	"github.com/xiebiao/storefront/internal/domain/stock"
	"github.com/xiebiao/storefront/internal/domain/tx"
	"github.com/xiebiao/storefront/pkg/metrics"
)

// PlaceOrderUseCase 下单用例
// 教学要点:这是整个项目最核心的用例
// 涉及:事务处理、悲观锁防超卖、价格快照、订单+支付单原子创建
type PlaceOrderUseCase struct {
	orderRepo   order.Repository
	paymentRepo payment.Repository
	ledger      *stock.Ledger
	txManager   tx.Manager
	sender      notification.Sender
}

// NewPlaceOrderUseCase 创建下单用例
func NewPlaceOrderUseCase(
	orderRepo order.Repository,
	paymentRepo payment.Repository,
	ledger *stock.Ledger,
	txManager tx.Manager,
	sender notification.Sender,
) *PlaceOrderUseCase {
	return &PlaceOrderUseCase{
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		ledger:      ledger,
		txManager:   txManager,
		sender:      sender,
	}
}

// PlaceOrderRequest 下单请求DTO
type PlaceOrderRequest struct {
	CustomerID uint        // 买家用户ID(从JWT中提取)
	Lines      []CartLine  // 购物车行
	Address    AddressInfo // 收货地址
	Method     string      // 支付方式
}

// CartLine 购物车行
type CartLine struct {
	VariantID uint
	Quantity  int
}

// AddressInfo 收货地址
type AddressInfo struct {
	Receiver string
	Phone    string
	Detail   string
}

// PlaceOrderResponse 下单响应DTO
type PlaceOrderResponse struct {
	OrderID   uint   `json:"order_id"`
	OrderNo   string `json:"order_no"`
	PaymentID uint   `json:"payment_id"`
	Total     int64  `json:"total"`
	TotalYuan string `json:"total_yuan"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// Execute 执行下单用例
// 教学重点:防止超卖的完整流程
//
// 核心问题:库存超卖
// 场景:规格库存10个,100人同时下单
// 错误实现:先查询再判断再扣减, 100个请求都通过判断, 超卖90个
// 正确实现:台账Reserve内部SELECT FOR UPDATE锁行后再check-then-act
//
// 流程(单事务, all-or-nothing):
//  1. 逐行调用台账Reserve预留库存(任一行失败整单回滚, 不允许部分预留)
//  2. 用锁定时的价格做快照, 创建订单(pending)
//  3. 同事务创建支付单(pending)
//  4. COMMIT后尽力而为地发送下单确认通知(失败不回滚订单)
func (uc *PlaceOrderUseCase) Execute(ctx context.Context, req PlaceOrderRequest) (*PlaceOrderResponse, error) {
	if len(req.Lines) == 0 {
		return nil, order.ErrEmptyCart
	}

	start := time.Now()

	var (
		resultOrder   *order.Order
		resultPayment *payment.Payment
	)
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 订单号先于落库生成: 库存流水需要用它关联订单
		orderNo := order.GenerateOrderNo()

		// 步骤1:逐行预留库存(台账内部锁行、校验、扣减、记流水)
		orderLines := make([]order.OrderLine, 0, len(req.Lines))
		for _, line := range req.Lines {
			if line.Quantity <= 0 {
				return catalog.ErrInvalidQuantity
			}

			variant, err := uc.ledger.Reserve(txCtx, line.VariantID, line.Quantity, orderNo, req.CustomerID)
			if err != nil {
				// 规格不存在/已下架对买家来说是"购物车里有无效商品"
				if errors.Is(err, catalog.ErrVariantNotFound) || errors.Is(err, catalog.ErrVariantInactive) {
					return order.ErrInvalidCartLine
				}
				return err
			}

			// 步骤2:价格快照, 使用锁定时的价格而非前端传递的价格
			// 防止改价攻击:用户在前端修改价格提交
			orderLines = append(orderLines, order.OrderLine{
				VariantID: variant.ID,
				SKU:       variant.SKU,
				Name:      variant.Name,
				Price:     variant.Price,
				Quantity:  line.Quantity,
			})
		}

		// 步骤3:创建订单(pending)
		newOrder, err := order.NewOrder(orderNo, req.CustomerID, orderLines, order.Address{
			Receiver: req.Address.Receiver,
			Phone:    req.Address.Phone,
			Detail:   req.Address.Detail,
		})
		if err != nil {
			return err
		}
		if err := uc.orderRepo.Create(txCtx, newOrder); err != nil {
			return err
		}

		// 步骤4:同事务创建支付单(pending), 与订单一对一
		newPayment := payment.NewPayment(newOrder.ID, newOrder.Total, req.Method)
		if err := uc.paymentRepo.Create(txCtx, newPayment); err != nil {
			return err
		}

		resultOrder = newOrder
		resultPayment = newPayment
		return nil
	})

	if err != nil {
		metrics.IncCounterVec(metrics.OrdersRejectedTotal, map[string]string{"reason": reasonLabel(err)})
		return nil, err
	}

	metrics.IncCounter(metrics.OrdersPlacedTotal)
	metrics.ObserveHistogram(metrics.OrderPlacementDuration, time.Since(start).Seconds())

	// 事务已提交, 通知是尽力而为:失败只记日志, 订单照常生效
	uc.notifyPlaced(ctx, resultOrder)

	return &PlaceOrderResponse{
		OrderID:   resultOrder.ID,
		OrderNo:   resultOrder.OrderNo,
		PaymentID: resultPayment.ID,
		Total:     resultOrder.Total,
		TotalYuan: formatPrice(resultOrder.Total),
		Status:    resultOrder.Status.String(),
		CreatedAt: resultOrder.CreatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}

// notifyPlaced 发送下单确认通知(事务外, fire-and-forget)
func (uc *PlaceOrderUseCase) notifyPlaced(ctx context.Context, o *order.Order) {
	err := uc.sender.Send(ctx, notification.Message{
		RecipientID: o.CustomerID,
		Template:    notification.TemplateOrderPlaced,
		Payload: map[string]interface{}{
			"order_no": o.OrderNo,
			"total":    o.Total,
		},
	})
	if err != nil {
		log.Printf("[WARN] 下单确认通知发送失败 order_no=%s: %v", o.OrderNo, err)
		metrics.IncCounterVec(metrics.NotificationsPublishedTotal, map[string]string{"result": "failed"})
		return
	}
	metrics.IncCounterVec(metrics.NotificationsPublishedTotal, map[string]string{"result": "ok"})
}

// reasonLabel 把下单失败错误归类为指标标签
func reasonLabel(err error) string {
	switch {
	case errors.Is(err, catalog.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, order.ErrInvalidCartLine):
		return "invalid_cart_line"
	case errors.Is(err, order.ErrEmptyCart):
		return "empty_cart"
	default:
		return "other"
	}
}

// formatPrice 格式化价格(分→元)
func formatPrice(priceFen int64) string {
	yuan := float64(priceFen) / 100.0
	return fmt.Sprintf("%.2f", yuan)
}
