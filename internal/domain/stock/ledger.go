package stock

import (
	"context"

	"github.com/xiebiao/storefront/internal/domain/catalog"
)

// Ledger 库存台账(领域服务)
//
// 设计说明:
// 1. 所有库存变更的唯一入口: 先锁行、再校验、再扣减、最后记流水
//    四步在同一事务内完成, 要么全部生效要么全部回滚
// 2. "预留即扣减": 下单时就从可承诺量中扣掉, 支付通过时不再二次扣
//    好处是校验过的订单永远不会因为库存被别人抢走而失败
// 3. 台账方法必须在调用方的事务内执行(LockByID依赖context中的事务)
//
// 教学要点:
// - 为什么不用 UPDATE ... SET qty = qty - ? 直接扣?
//   因为扣减前要读取before值写流水, 且要区分"库存不足"和"规格不存在",
//   FOR UPDATE锁行后read-check-write是安全的
type Ledger struct {
	variants  catalog.Repository
	movements Repository
}

// NewLedger 创建库存台账服务
func NewLedger(variants catalog.Repository, movements Repository) *Ledger {
	return &Ledger{
		variants:  variants,
		movements: movements,
	}
}

// Reserve 预留库存(下单时调用)
// 流程: 锁行 → 校验在售 → 校验可承诺量 → 扣减 → 记sale流水
// 返回锁定时刻的规格快照(含价格), 供订单行做价格快照
func (l *Ledger) Reserve(ctx context.Context, variantID uint, qty int, orderNo string, actorID uint) (*catalog.Variant, error) {
	if qty <= 0 {
		return nil, catalog.ErrInvalidQuantity
	}

	// 悲观锁查询: 拿不到锁的并发请求在这里排队
	variant, err := l.variants.LockByID(ctx, variantID)
	if err != nil {
		return nil, err
	}

	if !variant.Active {
		return nil, catalog.ErrVariantInactive
	}

	if variant.AvailableQty < qty {
		return nil, NewInsufficientStock(variantID, variant.AvailableQty, qty)
	}

	before := variant.AvailableQty
	if err := l.variants.AdjustQuantity(ctx, variantID, -qty); err != nil {
		return nil, err
	}
	variant.AvailableQty = before - qty

	movement := NewSaleMovement(variantID, qty, before, variant.AvailableQty, orderNo, actorID)
	if err := l.movements.Append(ctx, movement); err != nil {
		return nil, err
	}

	return variant, nil
}

// Release 释放预留(支付驳回/取消/过期时调用)
// 幂等设计: 先查流水, 该订单对该规格已有release记录则直接返回,
// 保证同一笔预留最多回补一次(重复调用不会重复加库存)
func (l *Ledger) Release(ctx context.Context, variantID uint, qty int, orderNo string, actorID uint, reason string) error {
	if qty <= 0 {
		return catalog.ErrInvalidQuantity
	}

	released, err := l.movements.HasRelease(ctx, orderNo, variantID)
	if err != nil {
		return err
	}
	if released {
		// 已释放过, 幂等跳过
		return nil
	}

	variant, err := l.variants.LockByID(ctx, variantID)
	if err != nil {
		return err
	}

	before := variant.AvailableQty
	if err := l.variants.AdjustQuantity(ctx, variantID, qty); err != nil {
		return err
	}

	movement := NewReleaseMovement(variantID, qty, before, before+qty, orderNo, actorID, reason)
	return l.movements.Append(ctx, movement)
}

// Confirm 确认预留(支付通过时调用)
// 数量在下单时已扣减, 这里只追加一条delta=0的confirm流水,
// 标记这笔预留已转为正式销售, 台账上形成闭环
func (l *Ledger) Confirm(ctx context.Context, variantID uint, qty int, orderNo string, actorID uint) error {
	variant, err := l.variants.FindByID(ctx, variantID)
	if err != nil {
		return err
	}

	movement := NewConfirmMovement(variantID, qty, variant.AvailableQty, orderNo, actorID)
	return l.movements.Append(ctx, movement)
}

// Restock 补货(后台运营调用)
func (l *Ledger) Restock(ctx context.Context, variantID uint, qty int, actorID uint) (*catalog.Variant, error) {
	if qty <= 0 {
		return nil, catalog.ErrInvalidQuantity
	}

	variant, err := l.variants.LockByID(ctx, variantID)
	if err != nil {
		return nil, err
	}

	before := variant.AvailableQty
	if err := l.variants.AdjustQuantity(ctx, variantID, qty); err != nil {
		return nil, err
	}
	variant.AvailableQty = before + qty

	movement := NewRestockMovement(variantID, qty, before, variant.AvailableQty, actorID)
	if err := l.movements.Append(ctx, movement); err != nil {
		return nil, err
	}

	return variant, nil
}
