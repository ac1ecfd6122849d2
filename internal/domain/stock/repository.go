package stock

import "context"

// Repository 库存流水仓储接口
// 设计说明: 流水表只增不改, 接口上刻意不提供Update/Delete
type Repository interface {
	// Append 追加一条流水记录
	Append(ctx context.Context, m *Movement) error

	// HasRelease 判断某订单对某规格是否已有释放流水
	// 释放预留的幂等保障: 重复释放前先查流水, 已释放则跳过
	HasRelease(ctx context.Context, orderNo string, variantID uint) (bool, error)

	// ListByOrderNo 查询某订单关联的全部流水(审计用)
	ListByOrderNo(ctx context.Context, orderNo string) ([]*Movement, error)

	// ListByVariantID 分页查询某规格的流水(后台对账用)
	ListByVariantID(ctx context.Context, variantID uint, page, pageSize int) ([]*Movement, int64, error)
}
