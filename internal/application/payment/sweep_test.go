package payment

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/storefront/internal/domain/catalog"
	"github.com/xiebiao/storefront/internal/domain/notification"
	"github.com/xiebiao/storefront/internal/domain/order"
	"github.com/xiebiao/storefront/internal/domain/payment"
	"github.com/xiebiao/storefront/internal/domain/stock"
	"github.com/xiebiao/storefront/internal/domain/user"
)

// sweepFixture 过期清理测试脚手架
type sweepFixture struct {
	useCase     *SweepUseCase
	variantRepo *fakeVariantRepo
	movements   *fakeMovementRepo
	orderRepo   *fakeOrderRepo
	paymentRepo *fakePaymentRepo
	sender      *recordingSender
	ledger      *stock.Ledger
}

func newSweepFixture(batchSize int) *sweepFixture {
	f := &sweepFixture{
		variantRepo: newFakeVariantRepo(&catalog.Variant{
			ID:           1,
			SKU:          "TS-M-WHT",
			Name:         "基础款T恤 M码 白色",
			Price:        8900,
			AvailableQty: 100,
			Active:       true,
		}),
		movements:   &fakeMovementRepo{},
		orderRepo:   newFakeOrderRepo(),
		paymentRepo: newFakePaymentRepo(),
		sender:      &recordingSender{},
	}
	f.ledger = stock.NewLedger(f.variantRepo, f.movements)
	f.useCase = NewSweepUseCase(f.paymentRepo, f.orderRepo, f.ledger, &fakeTxManager{}, f.sender, batchSize)
	return f
}

// placeStale 造一个age之前创建的挂起订单(预留qty件)
func (f *sweepFixture) placeStale(t *testing.T, qty int, age time.Duration, status payment.Status) (orderID, paymentID uint) {
	t.Helper()
	ctx := context.Background()

	orderNo := order.GenerateOrderNo() + fmt.Sprintf("%02d", f.paymentRepo.nextID)
	_, err := f.ledger.Reserve(ctx, 1, qty, orderNo, 42)
	require.NoError(t, err)

	o, err := order.NewOrder(orderNo, 42, []order.OrderLine{
		{VariantID: 1, SKU: "TS-M-WHT", Name: "基础款T恤 M码 白色", Price: 8900, Quantity: qty},
	}, order.Address{Receiver: "张三", Phone: "13800138000", Detail: "北京市朝阳区xx路1号"})
	require.NoError(t, err)
	require.NoError(t, f.orderRepo.Create(ctx, o))

	p := payment.NewPayment(o.ID, o.Total, "bank_transfer")
	p.Status = status
	p.CreatedAt = time.Now().Add(-age)
	require.NoError(t, f.paymentRepo.Create(ctx, p))
	return o.ID, p.ID
}

// TestSweep_ExpiredReservation 超过TTL的挂单被取消并释放库存
func TestSweep_ExpiredReservation(t *testing.T) {
	f := newSweepFixture(100)

	// 25小时前的挂单(过期)和1小时前的挂单(未过期)
	staleOrderID, stalePaymentID := f.placeStale(t, 3, 25*time.Hour, payment.StatusPending)
	freshOrderID, freshPaymentID := f.placeStale(t, 2, 1*time.Hour, payment.StatusPending)

	swept, err := f.useCase.Execute(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, swept, "只清理过期的那一单")

	// 过期单: 支付取消、订单取消、库存回补
	p, _ := f.paymentRepo.FindByID(context.Background(), stalePaymentID)
	assert.Equal(t, payment.StatusCancelled, p.Status)
	o, _ := f.orderRepo.FindByID(context.Background(), staleOrderID)
	assert.Equal(t, order.StatusCancelled, o.Status)

	// 新单不受影响
	p2, _ := f.paymentRepo.FindByID(context.Background(), freshPaymentID)
	assert.Equal(t, payment.StatusPending, p2.Status)
	o2, _ := f.orderRepo.FindByID(context.Background(), freshOrderID)
	assert.Equal(t, order.StatusPending, o2.Status)

	// 库存: 100 - 3 - 2 + 3(回补) = 98
	v, _ := f.variantRepo.FindByID(context.Background(), 1)
	assert.Equal(t, 98, v.AvailableQty)

	// 买家收到超时取消通知
	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, notification.TemplateOrderCancelled, f.sender.sent[0].Template)
	assert.Equal(t, "超时未支付", f.sender.sent[0].Payload["reason"])
}

// TestSweep_Idempotent 重复执行第二轮清理数为0
func TestSweep_Idempotent(t *testing.T) {
	f := newSweepFixture(100)
	f.placeStale(t, 3, 25*time.Hour, payment.StatusPending)

	swept, err := f.useCase.Execute(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, swept)

	swept, err = f.useCase.Execute(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 0, swept, "已取消的支付单被状态过滤条件排除")

	// 库存只回补一次
	v, _ := f.variantRepo.FindByID(context.Background(), 1)
	assert.Equal(t, 100, v.AvailableQty)
}

// TestSweep_PendingApprovalAlsoExpires 认领中的挂单同样会过期
func TestSweep_PendingApprovalAlsoExpires(t *testing.T) {
	f := newSweepFixture(100)
	_, paymentID := f.placeStale(t, 2, 25*time.Hour, payment.StatusPendingApproval)

	swept, err := f.useCase.Execute(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, swept)

	p, _ := f.paymentRepo.FindByID(context.Background(), paymentID)
	assert.Equal(t, payment.StatusCancelled, p.Status)
}

// TestSweep_SkipsApprovedByRace 清理前被审批通过的单跳过, 不算错误
func TestSweep_SkipsApprovedByRace(t *testing.T) {
	f := newSweepFixture(100)
	orderID, paymentID := f.placeStale(t, 3, 25*time.Hour, payment.StatusPending)

	// 清理启动前销售抢先通过了支付
	transition := NewTransitionUseCase(f.paymentRepo, f.orderRepo, f.ledger, &fakeTxManager{}, f.sender)
	_, err := transition.Execute(context.Background(), TransitionRequest{
		PaymentID: paymentID,
		Target:    payment.StatusApproved,
		ActorID:   7,
		ActorRole: user.RoleSales,
	})
	require.NoError(t, err)

	swept, err := f.useCase.Execute(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 0, swept)

	// 已通过的订单保持备货中, 库存不回补
	o, _ := f.orderRepo.FindByID(context.Background(), orderID)
	assert.Equal(t, order.StatusPreparing, o.Status)
	v, _ := f.variantRepo.FindByID(context.Background(), 1)
	assert.Equal(t, 97, v.AvailableQty)
}

// TestSweep_Batching 过期单多于单批数量时分批清完
func TestSweep_Batching(t *testing.T) {
	f := newSweepFixture(2)
	for i := 0; i < 5; i++ {
		f.placeStale(t, 1, 25*time.Hour, payment.StatusPending)
	}

	swept, err := f.useCase.Execute(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 5, swept)

	v, _ := f.variantRepo.FindByID(context.Background(), 1)
	assert.Equal(t, 100, v.AvailableQty, "全部预留都已回补")
	assert.Len(t, f.sender.sent, 5)
}

// TestSweep_NothingToDo 没有过期单时直接返回
func TestSweep_NothingToDo(t *testing.T) {
	f := newSweepFixture(100)
	f.placeStale(t, 1, 1*time.Hour, payment.StatusPending)

	swept, err := f.useCase.Execute(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 0, swept)
	assert.Empty(t, f.sender.sent)
}
