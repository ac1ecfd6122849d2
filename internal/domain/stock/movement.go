package stock

import "time"

// Movement 库存流水(领域模型)
//
// 设计说明:
// 1. 只增不改(Append-Only): 审计、对账、排查问题全靠它
// 2. 记录变更前后的可承诺量(Before/After), 便于核对
// 3. 记录关联订单号与操作人, 每笔扣减都能追到源头
type Movement struct {
	ID        uint
	VariantID uint         // 商品规格ID
	Kind      MovementKind // 流水类型
	Delta     int          // 变更数量(正数=增加, 负数=减少, confirm为0)
	BeforeQty int          // 变更前可承诺量
	AfterQty  int          // 变更后可承诺量
	OrderNo   string       // 关联订单号(补货/盘点时为空)
	ActorID   uint         // 操作人用户ID(0=系统, 如过期清理)
	Remark    string       // 备注(如驳回原因)
	CreatedAt time.Time
}

// MovementKind 库存流水类型
type MovementKind string

const (
	// MovementSale 销售预留: 下单时扣减可承诺量(负数delta)
	MovementSale MovementKind = "sale"

	// MovementRelease 释放预留: 支付驳回/取消/过期时回补(正数delta)
	MovementRelease MovementKind = "release"

	// MovementConfirm 预留确认: 支付通过时的审计记录(delta=0,
	// 数量在下单时已扣, 这里只标记预留已终结)
	MovementConfirm MovementKind = "confirm"

	// MovementRestock 补货(正数delta)
	MovementRestock MovementKind = "restock"

	// MovementAdjustment 人工盘点调整(正负均可)
	MovementAdjustment MovementKind = "adjustment"
)

// NewSaleMovement 创建销售预留流水
func NewSaleMovement(variantID uint, qty int, before, after int, orderNo string, actorID uint) *Movement {
	return &Movement{
		VariantID: variantID,
		Kind:      MovementSale,
		Delta:     -qty, // 负数表示减少
		BeforeQty: before,
		AfterQty:  after,
		OrderNo:   orderNo,
		ActorID:   actorID,
	}
}

// NewReleaseMovement 创建释放预留流水
func NewReleaseMovement(variantID uint, qty int, before, after int, orderNo string, actorID uint, reason string) *Movement {
	return &Movement{
		VariantID: variantID,
		Kind:      MovementRelease,
		Delta:     qty, // 正数表示增加
		BeforeQty: before,
		AfterQty:  after,
		OrderNo:   orderNo,
		ActorID:   actorID,
		Remark:    reason,
	}
}

// NewConfirmMovement 创建预留确认流水(数量不变)
func NewConfirmMovement(variantID uint, qty int, current int, orderNo string, actorID uint) *Movement {
	return &Movement{
		VariantID: variantID,
		Kind:      MovementConfirm,
		Delta:     0,
		BeforeQty: current,
		AfterQty:  current,
		OrderNo:   orderNo,
		ActorID:   actorID,
	}
}

// NewRestockMovement 创建补货流水
func NewRestockMovement(variantID uint, qty int, before, after int, actorID uint) *Movement {
	return &Movement{
		VariantID: variantID,
		Kind:      MovementRestock,
		Delta:     qty,
		BeforeQty: before,
		AfterQty:  after,
		ActorID:   actorID,
	}
}
