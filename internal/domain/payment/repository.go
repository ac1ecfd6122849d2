package payment

import (
	"context"
	"time"
)

// Repository 支付单仓储接口(依赖倒置原则)
type Repository interface {
	// Create 创建支付单
	Create(ctx context.Context, p *Payment) error

	// FindByID 根据ID查找支付单
	FindByID(ctx context.Context, id uint) (*Payment, error)

	// FindByOrderID 根据订单ID查找支付单(一对一)
	FindByOrderID(ctx context.Context, orderID uint) (*Payment, error)

	// LockByID 悲观锁查询支付单(SELECT FOR UPDATE)
	// 状态流转前必须锁行, 防止两个审批并发命中同一条边
	// 必须在事务内调用
	LockByID(ctx context.Context, id uint) (*Payment, error)

	// Update 更新支付单(状态、原因)
	Update(ctx context.Context, p *Payment) error

	// ListPendingBefore 查询创建时间早于截止点、仍处于
	// pending/pending_approval的支付单(过期清理用)
	// 按创建时间升序, 最多返回limit条
	ListPendingBefore(ctx context.Context, before time.Time, limit int) ([]*Payment, error)

	// ListByStatus 分页查询指定状态的支付单(审批工作台用)
	ListByStatus(ctx context.Context, status Status, page, pageSize int) ([]*Payment, int64, error)
}
