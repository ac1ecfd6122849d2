package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLines() []OrderLine {
	return []OrderLine{
		{VariantID: 1, SKU: "TS-M-WHT", Name: "基础款T恤 M码 白色", Price: 8900, Quantity: 3},
		{VariantID: 2, SKU: "TS-L-BLK", Name: "基础款T恤 L码 黑色", Price: 9900, Quantity: 1},
	}
}

// TestNewOrder 工厂方法: 总额按行快照计算
func TestNewOrder(t *testing.T) {
	o, err := NewOrder("ORD1699248000123456", 42, testLines(), Address{
		Receiver: "张三",
		Phone:    "13800138000",
		Detail:   "北京市朝阳区xx路1号",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, int64(8900*3+9900), o.Total, "总额=Σ(单价快照×数量)")
	assert.Equal(t, "张三", o.Address.Receiver)
	assert.True(t, o.IsOwnedBy(42))
	assert.False(t, o.IsOwnedBy(43))
}

// TestNewOrder_EmptyLines 空购物车不允许下单
func TestNewOrder_EmptyLines(t *testing.T) {
	_, err := NewOrder("ORD1699248000123456", 42, nil, Address{})
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = NewOrder("ORD1699248000123456", 42, []OrderLine{}, Address{})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

// TestOrder_TransitionTo 订单状态机
func TestOrder_TransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		target  Status
		wantErr bool
	}{
		{"待支付→备货中(支付通过)", StatusPending, StatusPreparing, false},
		{"待支付→已取消(支付驳回/超时)", StatusPending, StatusCancelled, false},
		{"待支付→已发货(不能跳过备货)", StatusPending, StatusShipped, true},
		{"备货中→已发货", StatusPreparing, StatusShipped, false},
		{"备货中→已取消(发货流程启动后不可取消)", StatusPreparing, StatusCancelled, true},
		{"已发货→已完成", StatusShipped, StatusCompleted, false},
		{"已完成→已取消", StatusCompleted, StatusCancelled, true},
		{"已取消→备货中", StatusCancelled, StatusPreparing, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := NewOrder("ORD1699248000123456", 1, testLines(), Address{})
			require.NoError(t, err)
			o.Status = tt.from

			err = o.TransitionTo(tt.target)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.from, o.Status, "非法流转不应该修改状态")
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.target, o.Status)
			}
		})
	}
}

// TestGenerateOrderNo 订单号格式与唯一性
func TestGenerateOrderNo(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		no := GenerateOrderNo()
		assert.Regexp(t, `^ORD\d+$`, no)
		seen[no] = true
	}
	// 随机后缀6位, 100次内撞号概率可以忽略
	assert.Greater(t, len(seen), 95)
}
