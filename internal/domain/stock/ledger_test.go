package stock

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/storefront/internal/domain/catalog"
	apperrors "github.com/xiebiao/storefront/pkg/errors"
)

// fakeVariantRepo 内存版规格仓储(单测用)
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
	if _, ok := r.variants[v.ID]; !ok {
		return catalog.ErrVariantNotFound
	}
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

// fakeMovementRepo 内存版流水仓储(单测用)
type fakeMovementRepo struct {
	movements []*Movement
}

func (r *fakeMovementRepo) Append(ctx context.Context, m *Movement) error {
	m.ID = uint(len(r.movements) + 1)
	r.movements = append(r.movements, m)
	return nil
}

func (r *fakeMovementRepo) HasRelease(ctx context.Context, orderNo string, variantID uint) (bool, error) {
	for _, m := range r.movements {
		if m.OrderNo == orderNo && m.VariantID == variantID && m.Kind == MovementRelease {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeMovementRepo) ListByOrderNo(ctx context.Context, orderNo string) ([]*Movement, error) {
	var out []*Movement
	for _, m := range r.movements {
		if m.OrderNo == orderNo {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMovementRepo) ListByVariantID(ctx context.Context, variantID uint, page, pageSize int) ([]*Movement, int64, error) {
	var out []*Movement
	for _, m := range r.movements {
		if m.VariantID == variantID {
			out = append(out, m)
		}
	}
	return out, int64(len(out)), nil
}

func testVariant(id uint, qty int) *catalog.Variant {
	return &catalog.Variant{
		ID:           id,
		SKU:          "TS-M-WHT",
		Name:         "基础款T恤 M码 白色",
		Price:        8900,
		AvailableQty: qty,
		Active:       true,
	}
}

// TestLedger_Reserve 预留: 扣减可承诺量并记sale流水
func TestLedger_Reserve(t *testing.T) {
	variants := newFakeVariantRepo(testVariant(1, 5))
	movements := &fakeMovementRepo{}
	ledger := NewLedger(variants, movements)

	v, err := ledger.Reserve(context.Background(), 1, 3, "ORD001", 42)
	require.NoError(t, err)
	assert.Equal(t, 2, v.AvailableQty, "快照应该反映扣减后的数量")

	stored, _ := variants.FindByID(context.Background(), 1)
	assert.Equal(t, 2, stored.AvailableQty)

	require.Len(t, movements.movements, 1)
	m := movements.movements[0]
	assert.Equal(t, MovementSale, m.Kind)
	assert.Equal(t, -3, m.Delta, "sale流水的delta为负")
	assert.Equal(t, 5, m.BeforeQty)
	assert.Equal(t, 2, m.AfterQty)
	assert.Equal(t, "ORD001", m.OrderNo)
}

// TestLedger_Reserve_InsufficientStock 库存不足: 拒绝且不留任何痕迹
func TestLedger_Reserve_InsufficientStock(t *testing.T) {
	variants := newFakeVariantRepo(testVariant(1, 2))
	movements := &fakeMovementRepo{}
	ledger := NewLedger(variants, movements)

	_, err := ledger.Reserve(context.Background(), 1, 3, "ORD001", 42)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrCodeInsufficientStock, appErr.Code)

	// 错误详情带可用量和请求量, 前端直接展示
	details, ok := appErr.Details.(InsufficientStockDetails)
	require.True(t, ok)
	assert.Equal(t, 2, details.Available)
	assert.Equal(t, 3, details.Requested)

	stored, _ := variants.FindByID(context.Background(), 1)
	assert.Equal(t, 2, stored.AvailableQty, "失败的预留不应该扣库存")
	assert.Empty(t, movements.movements, "失败的预留不应该留流水")
}

// TestLedger_Reserve_Inactive 已下架规格不可预留
func TestLedger_Reserve_Inactive(t *testing.T) {
	v := testVariant(1, 5)
	v.Active = false
	ledger := NewLedger(newFakeVariantRepo(v), &fakeMovementRepo{})

	_, err := ledger.Reserve(context.Background(), 1, 1, "ORD001", 42)
	assert.ErrorIs(t, err, catalog.ErrVariantInactive)
}

// TestLedger_Reserve_InvalidQuantity 数量必须为正
func TestLedger_Reserve_InvalidQuantity(t *testing.T) {
	ledger := NewLedger(newFakeVariantRepo(testVariant(1, 5)), &fakeMovementRepo{})

	_, err := ledger.Reserve(context.Background(), 1, 0, "ORD001", 42)
	assert.ErrorIs(t, err, catalog.ErrInvalidQuantity)

	_, err = ledger.Reserve(context.Background(), 1, -3, "ORD001", 42)
	assert.ErrorIs(t, err, catalog.ErrInvalidQuantity)
}

// TestLedger_Release 释放: 回补数量并记release流水
func TestLedger_Release(t *testing.T) {
	variants := newFakeVariantRepo(testVariant(1, 5))
	movements := &fakeMovementRepo{}
	ledger := NewLedger(variants, movements)

	_, err := ledger.Reserve(context.Background(), 1, 3, "ORD001", 42)
	require.NoError(t, err)

	err = ledger.Release(context.Background(), 1, 3, "ORD001", 7, "支付驳回")
	require.NoError(t, err)

	stored, _ := variants.FindByID(context.Background(), 1)
	assert.Equal(t, 5, stored.AvailableQty, "释放后库存回到预留前")

	require.Len(t, movements.movements, 2)
	m := movements.movements[1]
	assert.Equal(t, MovementRelease, m.Kind)
	assert.Equal(t, 3, m.Delta, "release流水的delta为正")
	assert.Equal(t, "支付驳回", m.Remark)
}

// TestLedger_Release_Idempotent 重复释放只回补一次
func TestLedger_Release_Idempotent(t *testing.T) {
	variants := newFakeVariantRepo(testVariant(1, 5))
	movements := &fakeMovementRepo{}
	ledger := NewLedger(variants, movements)

	_, err := ledger.Reserve(context.Background(), 1, 3, "ORD001", 42)
	require.NoError(t, err)

	// 模拟驳回和超时清理竞争释放同一笔预留
	require.NoError(t, ledger.Release(context.Background(), 1, 3, "ORD001", 7, "支付驳回"))
	require.NoError(t, ledger.Release(context.Background(), 1, 3, "ORD001", 0, "超时未支付"))
	require.NoError(t, ledger.Release(context.Background(), 1, 3, "ORD001", 0, "超时未支付"))

	stored, _ := variants.FindByID(context.Background(), 1)
	assert.Equal(t, 5, stored.AvailableQty, "多次释放也只回补一次")

	releases := 0
	for _, m := range movements.movements {
		if m.Kind == MovementRelease {
			releases++
		}
	}
	assert.Equal(t, 1, releases, "只有第一次释放落流水")
}

// TestLedger_Confirm 确认: 不改数量, 只记delta=0的confirm流水
func TestLedger_Confirm(t *testing.T) {
	variants := newFakeVariantRepo(testVariant(1, 5))
	movements := &fakeMovementRepo{}
	ledger := NewLedger(variants, movements)

	_, err := ledger.Reserve(context.Background(), 1, 3, "ORD001", 42)
	require.NoError(t, err)

	err = ledger.Confirm(context.Background(), 1, 3, "ORD001", 7)
	require.NoError(t, err)

	stored, _ := variants.FindByID(context.Background(), 1)
	assert.Equal(t, 2, stored.AvailableQty, "确认不应该二次扣减")

	require.Len(t, movements.movements, 2)
	m := movements.movements[1]
	assert.Equal(t, MovementConfirm, m.Kind)
	assert.Equal(t, 0, m.Delta)
	assert.Equal(t, 2, m.BeforeQty)
	assert.Equal(t, 2, m.AfterQty)
}

// TestLedger_Restock 补货
func TestLedger_Restock(t *testing.T) {
	variants := newFakeVariantRepo(testVariant(1, 2))
	movements := &fakeMovementRepo{}
	ledger := NewLedger(variants, movements)

	v, err := ledger.Restock(context.Background(), 1, 10, 7)
	require.NoError(t, err)
	assert.Equal(t, 12, v.AvailableQty)

	require.Len(t, movements.movements, 1)
	m := movements.movements[0]
	assert.Equal(t, MovementRestock, m.Kind)
	assert.Equal(t, 10, m.Delta)
	assert.Empty(t, m.OrderNo, "补货与订单无关")
}

// TestLedger_NoOversell 预留次数超过库存时不会超卖
// 锁行把并发预留串行化, 这里用串行请求验证串行化后的不变式:
// 成功的预留总量不超过初始库存, 可承诺量永不为负
func TestLedger_NoOversell(t *testing.T) {
	variants := newFakeVariantRepo(testVariant(1, 5))
	movements := &fakeMovementRepo{}
	ledger := NewLedger(variants, movements)

	succeeded := 0
	for i := 0; i < 10; i++ {
		orderNo := fmt.Sprintf("ORD%03d", i)
		if _, err := ledger.Reserve(context.Background(), 1, 1, orderNo, 42); err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, catalog.ErrInsufficientStock)
		}
	}

	assert.Equal(t, 5, succeeded, "只有库存量次预留成功")
	stored, _ := variants.FindByID(context.Background(), 1)
	assert.Equal(t, 0, stored.AvailableQty)
	assert.Len(t, movements.movements, 5, "失败的预留不留流水")
}

// TestLedger_MovementTrail 完整生命周期的流水可追溯
func TestLedger_MovementTrail(t *testing.T) {
	variants := newFakeVariantRepo(testVariant(1, 5))
	movements := &fakeMovementRepo{}
	ledger := NewLedger(variants, movements)

	ctx := context.Background()
	_, err := ledger.Reserve(ctx, 1, 3, "ORD001", 42)
	require.NoError(t, err)
	require.NoError(t, ledger.Confirm(ctx, 1, 3, "ORD001", 7))

	trail, err := movements.ListByOrderNo(ctx, "ORD001")
	require.NoError(t, err)
	require.Len(t, trail, 2)
	assert.Equal(t, MovementSale, trail[0].Kind)
	assert.Equal(t, MovementConfirm, trail[1].Kind)
}
