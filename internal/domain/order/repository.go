package order

import "context"

// Repository 订单仓储接口(依赖倒置原则)
type Repository interface {
	// Create 创建订单(级联创建订单行)
	Create(ctx context.Context, o *Order) error

	// FindByID 根据ID查找订单(含订单行)
	FindByID(ctx context.Context, id uint) (*Order, error)

	// FindByOrderNo 根据订单号查找订单(含订单行)
	FindByOrderNo(ctx context.Context, orderNo string) (*Order, error)

	// UpdateStatus 更新订单状态
	UpdateStatus(ctx context.Context, id uint, status Status) error

	// ListByCustomerID 分页查询用户的订单列表
	ListByCustomerID(ctx context.Context, customerID uint, page, pageSize int) ([]*Order, int64, error)

	// ListByStatus 分页查询指定状态的订单(后台工作台用)
	ListByStatus(ctx context.Context, status Status, page, pageSize int) ([]*Order, int64, error)
}
