package notification

import "context"

// 通知模板ID
const (
	TemplateOrderPlaced     = "order.placed"      // 下单成功确认
	TemplatePaymentApproved = "payment.approved"  // 支付审核通过
	TemplatePaymentRejected = "payment.rejected"  // 支付被驳回
	TemplateOrderCancelled  = "order.cancelled"   // 订单已取消(含超时清理)
)

// Message 一条待发送的通知
type Message struct {
	RecipientID uint                   // 收件用户ID
	Template    string                 // 模板ID
	Payload     map[string]interface{} // 模板变量(订单号、金额、原因等)
}

// Sender 通知发送接口
// 设计说明: 对核心业务来说通知是fire-and-forget,
// 发送失败只记日志, 绝不回滚订单/支付事务
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NopSender 空实现(测试、本地开发用)
type NopSender struct{}

func (NopSender) Send(ctx context.Context, msg Message) error { return nil }
