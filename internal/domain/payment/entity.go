package payment

import (
	"time"
)

// Status 支付单状态
type Status int

const (
	StatusPending         Status = 1 // 待处理(买家已提交支付凭证)
	StatusPendingApproval Status = 2 // 审核中(销售已认领, 正在核对)
	StatusApproved        Status = 3 // 已通过(终态)
	StatusRejected        Status = 4 // 已驳回(终态, 必须附原因)
	StatusCancelled       Status = 5 // 已取消(终态, 买家取消或超时清理)
)

// String 状态的可读名称
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusPendingApproval:
		return "pending_approval"
	case StatusApproved:
		return "approved"
	case StatusRejected:
		return "rejected"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// IsTerminal 是否为终态
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCancelled
}

// transitions 支付状态机: 每个状态允许流转到的目标状态
//
// 设计说明:
// 1. 状态机是支付状态变更的唯一入口, 非法边一律拒绝
// 2. rejected只能从pending_approval到达: 驳回意味着有人核对过凭证
// 3. 三个终态互不可达, 重放同一流转会命中"终态无出边"而失败,
//    这正是幂等保障: 重复审批不会产生第二次库存变更
var transitions = map[Status][]Status{
	StatusPending:         {StatusPendingApproval, StatusApproved, StatusCancelled},
	StatusPendingApproval: {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved:        {},
	StatusRejected:        {},
	StatusCancelled:       {},
}

// Payment 支付单实体(聚合根)
// 与订单一对一, 在下单事务内随订单一起创建
type Payment struct {
	ID              uint
	PaymentNo       string // 支付单号(业务唯一标识)
	OrderID         uint
	Amount          int64  // 应付金额(单位:分)
	Method          string // 支付方式(bank_transfer/alipay/wechat)
	Status          Status
	Reason          string // 驳回原因(仅rejected时有值)
	CreatedAt       time.Time
	UpdatedAt       time.Time
	StatusChangedAt time.Time // 最近一次状态变更时间
}

// NewPayment 创建支付单(工厂方法)
// 初始状态为pending
func NewPayment(orderID uint, amount int64, method string) *Payment {
	now := time.Now()
	return &Payment{
		PaymentNo:       GeneratePaymentNo(),
		OrderID:         orderID,
		Amount:          amount,
		Method:          method,
		Status:          StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
		StatusChangedAt: now,
	}
}

// CanTransitionTo 判断是否可以流转到目标状态
func (p *Payment) CanTransitionTo(target Status) bool {
	allowed, ok := transitions[p.Status]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}

// TransitionTo 执行状态流转
// 业务规则:
// 1. 目标状态必须在当前状态的允许出边内(含"同状态重入"也拒绝)
// 2. 驳回必须附原因, 缺原因直接拒绝且不落库
func (p *Payment) TransitionTo(target Status, reason string) error {
	if !p.CanTransitionTo(target) {
		return NewInvalidTransition(p.Status, target)
	}
	if target == StatusRejected && reason == "" {
		return ErrMissingReason
	}

	now := time.Now()
	p.Status = target
	p.UpdatedAt = now
	p.StatusChangedAt = now
	if target == StatusRejected {
		p.Reason = reason
	}
	return nil
}
