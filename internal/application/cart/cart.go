package cart

import (
	"context"

	"github.com/xiebiao/storefront/internal/domain/catalog"
	"github.com/xiebiao/storefront/internal/infrastructure/persistence/redis"
)

// CartUseCase 购物车用例
// 设计说明:
// 1. 购物车是显式传递的值对象, 不是全局会话状态
// 2. 加购时只做轻量校验(规格存在且在售), 不预留库存,
//    真正的库存校验在下单事务内由台账完成
type CartUseCase struct {
	cartStore   *redis.CartStore
	variantRepo catalog.Repository
}

// NewCartUseCase 创建购物车用例
func NewCartUseCase(cartStore *redis.CartStore, variantRepo catalog.Repository) *CartUseCase {
	return &CartUseCase{
		cartStore:   cartStore,
		variantRepo: variantRepo,
	}
}

// AddItem 加购(重复加购累加数量)
func (uc *CartUseCase) AddItem(ctx context.Context, userID, variantID uint, qty int) error {
	if qty <= 0 {
		return catalog.ErrInvalidQuantity
	}

	v, err := uc.variantRepo.FindByID(ctx, variantID)
	if err != nil {
		return err
	}
	if !v.Active {
		return catalog.ErrVariantInactive
	}

	return uc.cartStore.IncrItem(ctx, userID, variantID, qty)
}

// UpdateItem 修改购物车行数量(qty<=0等同删除)
func (uc *CartUseCase) UpdateItem(ctx context.Context, userID, variantID uint, qty int) error {
	return uc.cartStore.SetItem(ctx, userID, variantID, qty)
}

// RemoveItem 删除购物车行
func (uc *CartUseCase) RemoveItem(ctx context.Context, userID, variantID uint) error {
	return uc.cartStore.RemoveItem(ctx, userID, variantID)
}

// Clear 清空购物车
func (uc *CartUseCase) Clear(ctx context.Context, userID uint) error {
	return uc.cartStore.Clear(ctx, userID)
}

// CartItem 购物车展示行
type CartItem struct {
	VariantID    uint   `json:"variant_id"`
	SKU          string `json:"sku"`
	Name         string `json:"name"`
	Size         string `json:"size"`
	Color        string `json:"color"`
	Price        int64  `json:"price"`
	Quantity     int    `json:"quantity"`
	Subtotal     int64  `json:"subtotal"`
	AvailableQty int    `json:"available_qty"` // 当前可承诺量(前端提示用)
	Active       bool   `json:"active"`        // 是否仍在售
}

// CartView 购物车展示DTO
type CartView struct {
	Items []CartItem `json:"items"`
	Total int64      `json:"total"`
}

// GetCart 读取购物车并补全商品信息
// 已下架的商品仍会展示(Active=false), 由买家自行移除,
// 下单时这类行会被拒绝
func (uc *CartUseCase) GetCart(ctx context.Context, userID uint) (*CartView, error) {
	lines, err := uc.cartStore.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &CartView{Items: make([]CartItem, 0, len(lines))}
	for variantID, qty := range lines {
		v, err := uc.variantRepo.FindByID(ctx, variantID)
		if err != nil {
			// 规格已不存在, 从车里静默移除
			_ = uc.cartStore.RemoveItem(ctx, userID, variantID)
			continue
		}

		subtotal := v.Price * int64(qty)
		view.Items = append(view.Items, CartItem{
			VariantID:    v.ID,
			SKU:          v.SKU,
			Name:         v.Name,
			Size:         v.Size,
			Color:        v.Color,
			Price:        v.Price,
			Quantity:     qty,
			Subtotal:     subtotal,
			AvailableQty: v.AvailableQty,
			Active:       v.Active,
		})
		if v.Active {
			view.Total += subtotal
		}
	}
	return view, nil
}
