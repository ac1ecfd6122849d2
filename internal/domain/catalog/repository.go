package catalog

import (
	"context"
)

// Repository 商品规格仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口, infrastructure层实现
// 2. 库存台账与状态机逻辑只依赖接口, 测试时用内存假实现替代MySQL
type Repository interface {
	// Create 创建商品规格
	Create(ctx context.Context, v *Variant) error

	// FindByID 根据ID查找规格
	FindByID(ctx context.Context, id uint) (*Variant, error)

	// FindBySKU 根据SKU查找规格
	FindBySKU(ctx context.Context, sku string) (*Variant, error)

	// Update 更新规格信息(价格、名称、上下架)
	Update(ctx context.Context, v *Variant) error

	// List 分页查询规格列表
	List(ctx context.Context, params ListParams) ([]*Variant, int64, error)

	// LockByID 悲观锁查询规格(SELECT FOR UPDATE)
	// 预留/释放库存前必须先锁行, 防止并发的check-then-act竞态导致超卖
	// 必须在事务内调用(通过context传递事务)
	LockByID(ctx context.Context, id uint) (*Variant, error)

	// AdjustQuantity 调整可承诺量(原子操作)
	// delta为正数表示增加, 负数表示减少
	// 内部带WHERE available_qty + delta >= 0兜底, 不满足返回ErrInsufficientStock
	AdjustQuantity(ctx context.Context, id uint, delta int) error
}

// ListParams 列表查询参数
type ListParams struct {
	Page       int    // 页码(从1开始)
	PageSize   int    // 每页数量
	Keyword    string // 搜索关键词(名称、SKU)
	OnlyActive bool   // 只看在售
}
