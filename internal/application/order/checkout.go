package order

import (
	"context"
	"log"

	"github.com/xiebiao/storefront/internal/domain/order"
	"github.com/xiebiao/storefront/internal/infrastructure/persistence/redis"
)

// CheckoutUseCase 购物车结算用例
// 把Redis购物车转成下单请求, 下单成功后清空购物车
type CheckoutUseCase struct {
	placeOrder *PlaceOrderUseCase
	cartStore  *redis.CartStore
}

// NewCheckoutUseCase 创建结算用例
func NewCheckoutUseCase(placeOrder *PlaceOrderUseCase, cartStore *redis.CartStore) *CheckoutUseCase {
	return &CheckoutUseCase{
		placeOrder: placeOrder,
		cartStore:  cartStore,
	}
}

// CheckoutRequest 结算请求DTO
type CheckoutRequest struct {
	CustomerID uint
	Address    AddressInfo
	Method     string
}

// Execute 执行结算
// 流程: 读购物车 → 下单(事务内校验库存) → 成功后清空购物车
// 清空失败只记日志: 订单已生效, 残留的购物车下次结算前会被买家看到
func (uc *CheckoutUseCase) Execute(ctx context.Context, req CheckoutRequest) (*PlaceOrderResponse, error) {
	cart, err := uc.cartStore.GetCart(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if len(cart) == 0 {
		return nil, order.ErrEmptyCart
	}

	lines := make([]CartLine, 0, len(cart))
	for variantID, qty := range cart {
		lines = append(lines, CartLine{VariantID: variantID, Quantity: qty})
	}

	resp, err := uc.placeOrder.Execute(ctx, PlaceOrderRequest{
		CustomerID: req.CustomerID,
		Lines:      lines,
		Address:    req.Address,
		Method:     req.Method,
	})
	if err != nil {
		return nil, err
	}

	if err := uc.cartStore.Clear(ctx, req.CustomerID); err != nil {
		log.Printf("[WARN] 下单后清空购物车失败 user_id=%d: %v", req.CustomerID, err)
	}
	return resp, nil
}
