package payment

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/xiebiao/storefront/internal/domain/catalog"
	"github.com/xiebiao/storefront/internal/domain/notification"
	"github.com/xiebiao/storefront/internal/domain/order"
	"github.com/xiebiao/storefront/internal/domain/payment"
	"github.com/xiebiao/storefront/internal/domain/stock"
)

// 内存假实现集合(单测用)
// fakeTxManager直接执行回调, 不模拟回滚

type fakeTxManager struct{}

func (m *fakeTxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeVariantRepo struct {
	variants map[uint]*catalog.Variant
}

func newFakeVariantRepo(vs ...*catalog.Variant) *fakeVariantRepo {
	repo := &fakeVariantRepo{variants: make(map[uint]*catalog.Variant)}
	for _, v := range vs {
		repo.variants[v.ID] = v
	}
	return repo
}

func (r *fakeVariantRepo) Create(ctx context.Context, v *catalog.Variant) error {
	r.variants[v.ID] = v
	return nil
}

func (r *fakeVariantRepo) FindByID(ctx context.Context, id uint) (*catalog.Variant, error) {
	v, ok := r.variants[id]
	if !ok {
		return nil, catalog.ErrVariantNotFound
	}
	copied := *v
	return &copied, nil
}

func (r *fakeVariantRepo) FindBySKU(ctx context.Context, sku string) (*catalog.Variant, error) {
	for _, v := range r.variants {
		if v.SKU == sku {
			copied := *v
			return &copied, nil
		}
	}
	return nil, catalog.ErrVariantNotFound
}

func (r *fakeVariantRepo) Update(ctx context.Context, v *catalog.Variant) error {
	copied := *v
	r.variants[v.ID] = &copied
	return nil
}

func (r *fakeVariantRepo) List(ctx context.Context, params catalog.ListParams) ([]*catalog.Variant, int64, error) {
	var out []*catalog.Variant
	for _, v := range r.variants {
		copied := *v
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

func (r *fakeVariantRepo) LockByID(ctx context.Context, id uint) (*catalog.Variant, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeVariantRepo) AdjustQuantity(ctx context.Context, id uint, delta int) error {
	v, ok := r.variants[id]
	if !ok {
		return catalog.ErrVariantNotFound
	}
	if v.AvailableQty+delta < 0 {
		return catalog.ErrInsufficientStock
	}
	v.AvailableQty += delta
	return nil
}

type fakeMovementRepo struct {
	movements []*stock.Movement
}

func (r *fakeMovementRepo) Append(ctx context.Context, m *stock.Movement) error {
	m.ID = uint(len(r.movements) + 1)
	r.movements = append(r.movements, m)
	return nil
}

func (r *fakeMovementRepo) HasRelease(ctx context.Context, orderNo string, variantID uint) (bool, error) {
	for _, m := range r.movements {
		if m.OrderNo == orderNo && m.VariantID == variantID && m.Kind == stock.MovementRelease {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeMovementRepo) ListByOrderNo(ctx context.Context, orderNo string) ([]*stock.Movement, error) {
	var out []*stock.Movement
	for _, m := range r.movements {
		if m.OrderNo == orderNo {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMovementRepo) ListByVariantID(ctx context.Context, variantID uint, page, pageSize int) ([]*stock.Movement, int64, error) {
	var out []*stock.Movement
	for _, m := range r.movements {
		if m.VariantID == variantID {
			out = append(out, m)
		}
	}
	return out, int64(len(out)), nil
}

type fakeOrderRepo struct {
	nextID uint
	orders map[uint]*order.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{nextID: 1, orders: make(map[uint]*order.Order)}
}

func (r *fakeOrderRepo) Create(ctx context.Context, o *order.Order) error {
	o.ID = r.nextID
	r.nextID++
	copied := *o
	r.orders[o.ID] = &copied
	return nil
}

func (r *fakeOrderRepo) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	copied := *o
	return &copied, nil
}

func (r *fakeOrderRepo) FindByOrderNo(ctx context.Context, orderNo string) (*order.Order, error) {
	for _, o := range r.orders {
		if o.OrderNo == orderNo {
			copied := *o
			return &copied, nil
		}
	}
	return nil, order.ErrOrderNotFound
}

func (r *fakeOrderRepo) UpdateStatus(ctx context.Context, id uint, status order.Status) error {
	o, ok := r.orders[id]
	if !ok {
		return order.ErrOrderNotFound
	}
	o.Status = status
	return nil
}

func (r *fakeOrderRepo) ListByCustomerID(ctx context.Context, customerID uint, page, pageSize int) ([]*order.Order, int64, error) {
	var out []*order.Order
	for _, o := range r.orders {
		if o.CustomerID == customerID {
			copied := *o
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeOrderRepo) ListByStatus(ctx context.Context, status order.Status, page, pageSize int) ([]*order.Order, int64, error) {
	var out []*order.Order
	for _, o := range r.orders {
		if o.Status == status {
			copied := *o
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

type fakePaymentRepo struct {
	nextID   uint
	payments map[uint]*payment.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{nextID: 1, payments: make(map[uint]*payment.Payment)}
}

func (r *fakePaymentRepo) Create(ctx context.Context, p *payment.Payment) error {
	p.ID = r.nextID
	r.nextID++
	copied := *p
	r.payments[p.ID] = &copied
	return nil
}

func (r *fakePaymentRepo) FindByID(ctx context.Context, id uint) (*payment.Payment, error) {
	p, ok := r.payments[id]
	if !ok {
		return nil, payment.ErrPaymentNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakePaymentRepo) FindByOrderID(ctx context.Context, orderID uint) (*payment.Payment, error) {
	for _, p := range r.payments {
		if p.OrderID == orderID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, payment.ErrPaymentNotFound
}

func (r *fakePaymentRepo) LockByID(ctx context.Context, id uint) (*payment.Payment, error) {
	return r.FindByID(ctx, id)
}

func (r *fakePaymentRepo) Update(ctx context.Context, p *payment.Payment) error {
	if _, ok := r.payments[p.ID]; !ok {
		return payment.ErrPaymentNotFound
	}
	copied := *p
	r.payments[p.ID] = &copied
	return nil
}

func (r *fakePaymentRepo) ListPendingBefore(ctx context.Context, before time.Time, limit int) ([]*payment.Payment, error) {
	var out []*payment.Payment
	for _, p := range r.payments {
		if p.Status.IsTerminal() || !p.CreatedAt.Before(before) {
			continue
		}
		copied := *p
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakePaymentRepo) ListByStatus(ctx context.Context, status payment.Status, page, pageSize int) ([]*payment.Payment, int64, error) {
	var out []*payment.Payment
	for _, p := range r.payments {
		if p.Status == status {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

// recordingSender 记录发送过的通知
type recordingSender struct {
	sent    []notification.Message
	failAll bool
}

func (s *recordingSender) Send(ctx context.Context, msg notification.Message) error {
	if s.failAll {
		return errors.New("mq连接断开")
	}
	s.sent = append(s.sent, msg)
	return nil
}
