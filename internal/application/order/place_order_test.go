package order

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/storefront/internal/domain/catalog"
	"github.com/xiebiao/storefront/internal/domain/order"
	"github.com/xiebiao/storefront/internal/domain/payment"
	"github.com/xiebiao/storefront/internal/domain/stock"
	apperrors "github.com/xiebiao/storefront/pkg/errors"
)

type placeOrderFixture struct {
	useCase     *PlaceOrderUseCase
	variantRepo *fakeVariantRepo
	movements   *fakeMovementRepo
	orderRepo   *fakeOrderRepo
	paymentRepo *fakePaymentRepo
	sender      *recordingSender
}

func newPlaceOrderFixture(variants ...*catalog.Variant) *placeOrderFixture {
	f := &placeOrderFixture{
		variantRepo: newFakeVariantRepo(variants...),
		movements:   &fakeMovementRepo{},
		orderRepo:   newFakeOrderRepo(),
		paymentRepo: newFakePaymentRepo(),
		sender:      &recordingSender{},
	}
	ledger := stock.NewLedger(f.variantRepo, f.movements)
	f.useCase = NewPlaceOrderUseCase(f.orderRepo, f.paymentRepo, ledger, &fakeTxManager{}, f.sender)
	return f
}

func tshirtVariant(id uint, price int64, qty int) *catalog.Variant {
	return &catalog.Variant{
		ID:           id,
		SKU:          "TS-M-WHT",
		Name:         "基础款T恤 M码 白色",
		Price:        price,
		AvailableQty: qty,
		Active:       true,
	}
}

func placeRequest(lines ...CartLine) PlaceOrderRequest {
	return PlaceOrderRequest{
		CustomerID: 42,
		Lines:      lines,
		Address: AddressInfo{
			Receiver: "张三",
			Phone:    "13800138000",
			Detail:   "北京市朝阳区xx路1号",
		},
		Method: "bank_transfer",
	}
}

// TestPlaceOrder_Success 正常下单: 库存5件买3件
func TestPlaceOrder_Success(t *testing.T) {
	f := newPlaceOrderFixture(tshirtVariant(1, 8900, 5))

	resp, err := f.useCase.Execute(context.Background(), placeRequest(CartLine{VariantID: 1, Quantity: 3}))
	require.NoError(t, err)

	assert.NotZero(t, resp.OrderID)
	assert.NotEmpty(t, resp.OrderNo)
	assert.Equal(t, int64(8900*3), resp.Total)
	assert.Equal(t, "267.00", resp.TotalYuan)
	assert.Equal(t, "pending", resp.Status)

	// 库存已预留
	v, _ := f.variantRepo.FindByID(context.Background(), 1)
	assert.Equal(t, 2, v.AvailableQty)

	// sale流水落账且关联订单号
	require.Len(t, f.movements.movements, 1)
	assert.Equal(t, stock.MovementSale, f.movements.movements[0].Kind)
	assert.Equal(t, resp.OrderNo, f.movements.movements[0].OrderNo)

	// 支付单与订单一对一, 初始pending
	p, err := f.paymentRepo.FindByOrderID(context.Background(), resp.OrderID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusPending, p.Status)
	assert.Equal(t, resp.Total, p.Amount)

	// 下单确认通知
	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, uint(42), f.sender.sent[0].RecipientID)
	assert.Equal(t, resp.OrderNo, f.sender.sent[0].Payload["order_no"])
}

// TestPlaceOrder_PriceSnapshot 订单行用锁定时的价格, 不信前端
func TestPlaceOrder_PriceSnapshot(t *testing.T) {
	f := newPlaceOrderFixture(tshirtVariant(1, 8900, 5))

	resp, err := f.useCase.Execute(context.Background(), placeRequest(CartLine{VariantID: 1, Quantity: 1}))
	require.NoError(t, err)

	o, err := f.orderRepo.FindByID(context.Background(), resp.OrderID)
	require.NoError(t, err)
	require.Len(t, o.Lines, 1)
	assert.Equal(t, int64(8900), o.Lines[0].Price)
	assert.Equal(t, "TS-M-WHT", o.Lines[0].SKU)

	// 下单后改价不影响已创建订单
	v, _ := f.variantRepo.FindByID(context.Background(), 1)
	v.Price = 9900
	require.NoError(t, f.variantRepo.Update(context.Background(), v))

	o2, _ := f.orderRepo.FindByID(context.Background(), resp.OrderID)
	assert.Equal(t, int64(8900), o2.Lines[0].Price)
}

// TestPlaceOrder_InsufficientStock 库存2件买3件: 拒单且不产生订单
func TestPlaceOrder_InsufficientStock(t *testing.T) {
	f := newPlaceOrderFixture(tshirtVariant(1, 8900, 2))

	_, err := f.useCase.Execute(context.Background(), placeRequest(CartLine{VariantID: 1, Quantity: 3}))
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrCodeInsufficientStock, appErr.Code)

	details, ok := appErr.Details.(stock.InsufficientStockDetails)
	require.True(t, ok)
	assert.Equal(t, 2, details.Available)
	assert.Equal(t, 3, details.Requested)

	// 库存未被动过, 没有订单、支付单和通知
	v, _ := f.variantRepo.FindByID(context.Background(), 1)
	assert.Equal(t, 2, v.AvailableQty)
	assert.Empty(t, f.orderRepo.orders)
	assert.Empty(t, f.paymentRepo.payments)
	assert.Empty(t, f.sender.sent)
}

// TestPlaceOrder_EmptyCart 空购物车直接拒绝
func TestPlaceOrder_EmptyCart(t *testing.T) {
	f := newPlaceOrderFixture(tshirtVariant(1, 8900, 5))

	_, err := f.useCase.Execute(context.Background(), placeRequest())
	assert.ErrorIs(t, err, order.ErrEmptyCart)
	assert.Empty(t, f.orderRepo.orders)
}

// TestPlaceOrder_InvalidCartLine 规格不存在或已下架
func TestPlaceOrder_InvalidCartLine(t *testing.T) {
	inactive := tshirtVariant(2, 8900, 5)
	inactive.Active = false
	f := newPlaceOrderFixture(tshirtVariant(1, 8900, 5), inactive)

	t.Run("规格不存在", func(t *testing.T) {
		_, err := f.useCase.Execute(context.Background(), placeRequest(CartLine{VariantID: 999, Quantity: 1}))
		assert.ErrorIs(t, err, order.ErrInvalidCartLine)
	})

	t.Run("规格已下架", func(t *testing.T) {
		_, err := f.useCase.Execute(context.Background(), placeRequest(CartLine{VariantID: 2, Quantity: 1}))
		assert.ErrorIs(t, err, order.ErrInvalidCartLine)
	})

	t.Run("数量非法", func(t *testing.T) {
		_, err := f.useCase.Execute(context.Background(), placeRequest(CartLine{VariantID: 1, Quantity: 0}))
		assert.ErrorIs(t, err, catalog.ErrInvalidQuantity)
	})
}

// TestPlaceOrder_MultiLine 多行订单: 总额累加, 每行独立预留
func TestPlaceOrder_MultiLine(t *testing.T) {
	second := tshirtVariant(2, 9900, 3)
	second.SKU = "TS-L-BLK"
	f := newPlaceOrderFixture(tshirtVariant(1, 8900, 5), second)

	resp, err := f.useCase.Execute(context.Background(), placeRequest(
		CartLine{VariantID: 1, Quantity: 2},
		CartLine{VariantID: 2, Quantity: 1},
	))
	require.NoError(t, err)
	assert.Equal(t, int64(8900*2+9900), resp.Total)

	v1, _ := f.variantRepo.FindByID(context.Background(), 1)
	v2, _ := f.variantRepo.FindByID(context.Background(), 2)
	assert.Equal(t, 3, v1.AvailableQty)
	assert.Equal(t, 2, v2.AvailableQty)
	assert.Len(t, f.movements.movements, 2)
}

// TestPlaceOrder_NotificationFailure 通知失败不影响下单结果
func TestPlaceOrder_NotificationFailure(t *testing.T) {
	f := newPlaceOrderFixture(tshirtVariant(1, 8900, 5))
	f.sender.failAll = true

	resp, err := f.useCase.Execute(context.Background(), placeRequest(CartLine{VariantID: 1, Quantity: 1}))
	require.NoError(t, err, "通知失败绝不能让下单失败")
	assert.NotZero(t, resp.OrderID)

	o, err := f.orderRepo.FindByID(context.Background(), resp.OrderID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, o.Status)
}
