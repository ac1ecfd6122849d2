package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/storefront/internal/domain/catalog"
	"github.com/xiebiao/storefront/internal/domain/notification"
	"github.com/xiebiao/storefront/internal/domain/order"
	"github.com/xiebiao/storefront/internal/domain/payment"
	"github.com/xiebiao/storefront/internal/domain/stock"
	"github.com/xiebiao/storefront/internal/domain/user"
	apperrors "github.com/xiebiao/storefront/pkg/errors"
)

// transitionFixture 审批测试脚手架: 预置一个已预留库存的pending订单
type transitionFixture struct {
	useCase     *TransitionUseCase
	variantRepo *fakeVariantRepo
	movements   *fakeMovementRepo
	orderRepo   *fakeOrderRepo
	paymentRepo *fakePaymentRepo
	sender      *recordingSender
	ledger      *stock.Ledger

	orderID   uint
	paymentID uint
	orderNo   string
}

func newTransitionFixture(t *testing.T) *transitionFixture {
	t.Helper()

	f := &transitionFixture{
		variantRepo: newFakeVariantRepo(&catalog.Variant{
			ID:           1,
			SKU:          "TS-M-WHT",
			Name:         "基础款T恤 M码 白色",
			Price:        8900,
			AvailableQty: 5,
			Active:       true,
		}),
		movements:   &fakeMovementRepo{},
		orderRepo:   newFakeOrderRepo(),
		paymentRepo: newFakePaymentRepo(),
		sender:      &recordingSender{},
	}
	f.ledger = stock.NewLedger(f.variantRepo, f.movements)
	f.useCase = NewTransitionUseCase(f.paymentRepo, f.orderRepo, f.ledger, &fakeTxManager{}, f.sender)

	// 模拟下单结果: 预留3件, 订单pending, 支付单pending
	ctx := context.Background()
	f.orderNo = order.GenerateOrderNo()
	_, err := f.ledger.Reserve(ctx, 1, 3, f.orderNo, 42)
	require.NoError(t, err)

	o, err := order.NewOrder(f.orderNo, 42, []order.OrderLine{
		{VariantID: 1, SKU: "TS-M-WHT", Name: "基础款T恤 M码 白色", Price: 8900, Quantity: 3},
	}, order.Address{Receiver: "张三", Phone: "13800138000", Detail: "北京市朝阳区xx路1号"})
	require.NoError(t, err)
	require.NoError(t, f.orderRepo.Create(ctx, o))
	f.orderID = o.ID

	p := payment.NewPayment(o.ID, o.Total, "bank_transfer")
	require.NoError(t, f.paymentRepo.Create(ctx, p))
	f.paymentID = p.ID

	return f
}

func (f *transitionFixture) transition(t *testing.T, target payment.Status, reason string) (*TransitionResponse, error) {
	t.Helper()
	return f.useCase.Execute(context.Background(), TransitionRequest{
		PaymentID: f.paymentID,
		Target:    target,
		Reason:    reason,
		ActorID:   7,
		ActorRole: user.RoleSales,
	})
}

// TestTransition_Approve 通过: 订单进入备货, 台账记confirm流水
func TestTransition_Approve(t *testing.T) {
	f := newTransitionFixture(t)

	resp, err := f.transition(t, payment.StatusApproved, "")
	require.NoError(t, err)
	assert.Equal(t, "approved", resp.PaymentStatus)
	assert.Equal(t, "preparing", resp.OrderStatus)

	o, _ := f.orderRepo.FindByID(context.Background(), f.orderID)
	assert.Equal(t, order.StatusPreparing, o.Status)

	// 确认不动数量
	v, _ := f.variantRepo.FindByID(context.Background(), 1)
	assert.Equal(t, 2, v.AvailableQty)

	// sale + confirm两条流水
	trail, _ := f.movements.ListByOrderNo(context.Background(), f.orderNo)
	require.Len(t, trail, 2)
	assert.Equal(t, stock.MovementConfirm, trail[1].Kind)
	assert.Equal(t, 0, trail[1].Delta)

	// 买家收到支付确认通知
	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, notification.TemplatePaymentApproved, f.sender.sent[0].Template)
}

// TestTransition_Reject 驳回: 订单取消, 库存回补
func TestTransition_Reject(t *testing.T) {
	f := newTransitionFixture(t)

	// 先认领再驳回
	_, err := f.transition(t, payment.StatusPendingApproval, "")
	require.NoError(t, err)

	resp, err := f.transition(t, payment.StatusRejected, "转账金额与订单不符")
	require.NoError(t, err)
	assert.Equal(t, "rejected", resp.PaymentStatus)
	assert.Equal(t, "cancelled", resp.OrderStatus)

	p, _ := f.paymentRepo.FindByID(context.Background(), f.paymentID)
	assert.Equal(t, "转账金额与订单不符", p.Reason)

	// 预留已释放
	v, _ := f.variantRepo.FindByID(context.Background(), 1)
	assert.Equal(t, 5, v.AvailableQty)

	trail, _ := f.movements.ListByOrderNo(context.Background(), f.orderNo)
	require.Len(t, trail, 2)
	assert.Equal(t, stock.MovementRelease, trail[1].Kind)
	assert.Equal(t, "转账金额与订单不符", trail[1].Remark)

	// 驳回通知带原因
	require.Len(t, f.sender.sent, 1, "认领不发通知, 只有驳回这一条")
	assert.Equal(t, notification.TemplatePaymentRejected, f.sender.sent[0].Template)
	assert.Equal(t, "转账金额与订单不符", f.sender.sent[0].Payload["reason"])
}

// TestTransition_RejectWithoutReason 缺原因的驳回被拒绝且无副作用
func TestTransition_RejectWithoutReason(t *testing.T) {
	f := newTransitionFixture(t)

	_, err := f.transition(t, payment.StatusPendingApproval, "")
	require.NoError(t, err)

	_, err = f.transition(t, payment.StatusRejected, "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, payment.ErrMissingReason))

	// 支付单还停在审核中, 库存没动
	p, _ := f.paymentRepo.FindByID(context.Background(), f.paymentID)
	assert.Equal(t, payment.StatusPendingApproval, p.Status)
	v, _ := f.variantRepo.FindByID(context.Background(), 1)
	assert.Equal(t, 2, v.AvailableQty)
}

// TestTransition_Cancel 取消: 订单取消, 库存回补
func TestTransition_Cancel(t *testing.T) {
	f := newTransitionFixture(t)

	resp, err := f.transition(t, payment.StatusCancelled, "")
	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.PaymentStatus)
	assert.Equal(t, "cancelled", resp.OrderStatus)

	v, _ := f.variantRepo.FindByID(context.Background(), 1)
	assert.Equal(t, 5, v.AvailableQty)

	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, notification.TemplateOrderCancelled, f.sender.sent[0].Template)
}

// TestTransition_Replay 重放审批: 终态无出边, 库存不会二次变更
func TestTransition_Replay(t *testing.T) {
	f := newTransitionFixture(t)

	_, err := f.transition(t, payment.StatusApproved, "")
	require.NoError(t, err)

	// 同一笔支付再通过一次
	_, err = f.transition(t, payment.StatusApproved, "")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInvalidTransition, apperrors.GetAppError(err).Code)

	// 流水数量不变(没有第二条confirm)
	trail, _ := f.movements.ListByOrderNo(context.Background(), f.orderNo)
	assert.Len(t, trail, 2)
	v, _ := f.variantRepo.FindByID(context.Background(), 1)
	assert.Equal(t, 2, v.AvailableQty)
}

// TestTransition_RoleGate 只有sales/admin可以审批
func TestTransition_RoleGate(t *testing.T) {
	f := newTransitionFixture(t)

	roles := []struct {
		role    user.Role
		allowed bool
	}{
		{user.RoleCustomer, false},
		{user.RoleMarketing, false},
		{user.RoleSales, true},
		{user.RoleAdmin, true},
	}

	for _, tt := range roles {
		t.Run(string(tt.role), func(t *testing.T) {
			_, err := f.useCase.Execute(context.Background(), TransitionRequest{
				PaymentID: f.paymentID,
				Target:    payment.StatusPendingApproval,
				ActorRole: tt.role,
			})
			if tt.allowed {
				// sales先执行成功, admin再执行命中非法边, 两者都说明过了权限关
				if err != nil {
					assert.Equal(t, apperrors.ErrCodeInvalidTransition, apperrors.GetAppError(err).Code)
				}
			} else {
				assert.True(t, errors.Is(err, apperrors.ErrForbidden))
			}
		})
	}
}

// TestTransition_NotFound 支付单不存在
func TestTransition_NotFound(t *testing.T) {
	f := newTransitionFixture(t)

	_, err := f.useCase.Execute(context.Background(), TransitionRequest{
		PaymentID: 999,
		Target:    payment.StatusApproved,
		ActorRole: user.RoleAdmin,
	})
	assert.True(t, errors.Is(err, payment.ErrPaymentNotFound))
}
