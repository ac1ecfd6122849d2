package order

import (
	"time"
)

// Status 订单状态
type Status int

const (
	StatusPending   Status = 1 // 待支付审核
	StatusPreparing Status = 2 // 备货中(支付已通过)
	StatusShipped   Status = 3 // 已发货
	StatusCompleted Status = 4 // 已完成
	StatusCancelled Status = 5 // 已取消
)

// String 状态的可读名称(日志、通知模板用)
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusPreparing:
		return "preparing"
	case StatusShipped:
		return "shipped"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// transitions 订单状态机: 每个状态允许流转到的目标状态
// 设计说明:
// 1. pending → preparing/cancelled 由支付状态机驱动(支付通过/驳回)
// 2. preparing → shipped → completed 由销售人员的履约操作驱动
// 3. 终态(completed/cancelled)不允许再流转
var transitions = map[Status][]Status{
	StatusPending:   {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusShipped},
	StatusShipped:   {StatusCompleted},
	StatusCompleted: {},
	StatusCancelled: {},
}

// Order 订单实体(聚合根)
// DDD设计说明:
// 1. Order与OrderLine构成聚合, 订单行不单独存在
// 2. 订单行保存下单时刻的价格快照, 后续改价不影响历史订单
// 3. 收货地址做快照冗余, 用户改地址不影响在途订单
type Order struct {
	ID         uint
	OrderNo    string // 订单号(业务唯一标识, 下单时生成)
	CustomerID uint
	Total      int64 // 订单总额(单位:分)
	Status     Status
	Lines      []OrderLine
	Address    Address // 收货地址快照
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// OrderLine 订单行(聚合内实体)
type OrderLine struct {
	ID        uint
	OrderID   uint
	VariantID uint
	SKU       string // SKU快照
	Name      string // 名称快照
	Price     int64  // 成交单价快照(单位:分)
	Quantity  int
}

// Address 收货地址快照(值对象)
type Address struct {
	Receiver string // 收货人
	Phone    string // 联系电话
	Detail   string // 详细地址
}

// NewOrder 创建新订单(工厂方法)
// 初始状态为pending, 等待销售审核支付凭证
func NewOrder(orderNo string, customerID uint, lines []OrderLine, addr Address) (*Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	now := time.Now()
	o := &Order{
		OrderNo:    orderNo,
		CustomerID: customerID,
		Status:     StatusPending,
		Lines:      lines,
		Address:    addr,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	o.CalculateTotal()
	return o, nil
}

// CalculateTotal 根据订单行计算总额
func (o *Order) CalculateTotal() {
	var total int64
	for _, line := range o.Lines {
		total += line.Price * int64(line.Quantity)
	}
	o.Total = total
}

// CanTransitionTo 判断是否可以流转到目标状态
func (o *Order) CanTransitionTo(target Status) bool {
	allowed, ok := transitions[o.Status]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}

// TransitionTo 执行状态流转
func (o *Order) TransitionTo(target Status) error {
	if !o.CanTransitionTo(target) {
		return NewInvalidOrderTransition(o.Status, target)
	}
	o.Status = target
	o.UpdatedAt = time.Now()
	return nil
}

// IsOwnedBy 判断订单是否属于指定用户(越权访问校验)
func (o *Order) IsOwnedBy(userID uint) bool {
	return o.CustomerID == userID
}
