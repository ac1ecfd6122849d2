package catalog

import (
	"time"
)

// Variant 商品规格实体(聚合根)
// DDD设计说明:
// 1. Variant是可售卖的最小单元: 商品 × 尺码 × 颜色
// 2. 价格使用int64存储"分"为单位(避免浮点数精度问题)
// 3. AvailableQty是"可承诺量"(已扣除未付款订单的预留), 永不为负
//    只能通过库存台账(stock.Ledger)修改, 其他代码一律只读
// 4. 规格从不物理删除, 下架用Active标记(软停用), 历史订单仍可引用
type Variant struct {
	ID           uint
	SKU          string // SKU编码(业务唯一标识)
	ProductID    uint   // 所属商品ID
	Name         string // 商品名称(冗余, 方便列表展示)
	Size         string // 尺码(S/M/L/XL...)
	Color        string // 颜色
	Price        int64  // 销售价(单位:分, 1元=100分)
	AvailableQty int    // 可承诺库存量(已净值, 预留已扣除)
	Active       bool   // 是否在售
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewVariant 创建新商品规格(工厂方法)
func NewVariant(sku string, productID uint, name, size, color string, price int64, qty int) *Variant {
	now := time.Now()
	return &Variant{
		SKU:          sku,
		ProductID:    productID,
		Name:         name,
		Size:         size,
		Color:        color,
		Price:        price,
		AvailableQty: qty,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// CanReserve 判断是否可以预留指定数量
// 业务规则: 必须在售且可承诺量充足
func (v *Variant) CanReserve(qty int) bool {
	return v.Active && qty > 0 && v.AvailableQty >= qty
}

// Deduct 扣减可承诺量(仅供库存台账调用)
// 业务规则: 扣减后不能为负数
func (v *Variant) Deduct(qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if v.AvailableQty < qty {
		return ErrInsufficientStock
	}
	v.AvailableQty -= qty
	v.UpdatedAt = time.Now()
	return nil
}

// Credit 回补可承诺量(释放预留、补货)
func (v *Variant) Credit(qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	v.AvailableQty += qty
	v.UpdatedAt = time.Now()
	return nil
}

// Deactivate 下架(软停用)
func (v *Variant) Deactivate() {
	v.Active = false
	v.UpdatedAt = time.Now()
}

// UpdatePrice 更新价格(领域行为)
// 说明: 只影响后续订单, 历史订单行保存的是下单时的价格快照
func (v *Variant) UpdatePrice(newPrice int64) error {
	if newPrice <= 0 {
		return ErrInvalidPrice
	}
	v.Price = newPrice
	v.UpdatedAt = time.Now()
	return nil
}
