package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/storefront/internal/domain/order"
	apperrors "github.com/xiebiao/storefront/pkg/errors"
)

// orderRepository 订单仓储实现(MySQL)
// 教学要点:
// 1. Order和OrderLine是聚合关系,必须一起保存
// 2. 查询时使用Preload预加载订单行,避免N+1问题
// 3. 事务通过context传递
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepository{db: db}
}

// Create 创建订单
// 教学要点:
// 1. GORM会自动保存关联的Lines(通过foreignKey)
// 2. 必须在事务中调用(通过getDB从context获取事务DB)
func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	model := toOrderModel(o)

	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建订单失败")
	}

	// 回填自增ID
	o.ID = model.ID
	for i := range o.Lines {
		o.Lines[i].ID = model.Lines[i].ID
		o.Lines[i].OrderID = model.ID
	}

	return nil
}

// FindByID 根据ID查找订单
// 教学要点:使用Preload预加载Lines,避免N+1查询
func (r *orderRepository) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	var model OrderModel

	// Preload("Lines")会执行:
	// 1. SELECT * FROM orders WHERE id = ?
	// 2. SELECT * FROM order_lines WHERE order_id IN (?)
	err := getDB(ctx, r.db).Preload("Lines").First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}

	return toOrderEntity(&model), nil
}

// FindByOrderNo 根据订单号查找订单
func (r *orderRepository) FindByOrderNo(ctx context.Context, orderNo string) (*order.Order, error) {
	var model OrderModel
	err := getDB(ctx, r.db).Preload("Lines").Where("order_no = ?", orderNo).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}

	return toOrderEntity(&model), nil
}

// UpdateStatus 更新订单状态
func (r *orderRepository) UpdateStatus(ctx context.Context, id uint, status order.Status) error {
	result := getDB(ctx, r.db).Model(&OrderModel{}).Where("id = ?", id).
		Update("status", int(status))
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新订单状态失败")
	}
	if result.RowsAffected == 0 {
		return order.ErrOrderNotFound
	}
	return nil
}

// ListByCustomerID 查询用户的订单列表
func (r *orderRepository) ListByCustomerID(ctx context.Context, customerID uint, page, pageSize int) ([]*order.Order, int64, error) {
	return r.list(ctx, getDB(ctx, r.db).Model(&OrderModel{}).Where("user_id = ?", customerID), page, pageSize)
}

// ListByStatus 查询指定状态的订单列表(后台工作台用)
func (r *orderRepository) ListByStatus(ctx context.Context, status order.Status, page, pageSize int) ([]*order.Order, int64, error) {
	return r.list(ctx, getDB(ctx, r.db).Model(&OrderModel{}).Where("status = ?", int(status)), page, pageSize)
}

// list 公共的分页查询逻辑
func (r *orderRepository) list(ctx context.Context, query *gorm.DB, page, pageSize int) ([]*order.Order, int64, error) {
	var models []OrderModel
	var total int64

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单总数失败")
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Lines").
		Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单列表失败")
	}

	orders := make([]*order.Order, len(models))
	for i := range models {
		orders[i] = toOrderEntity(&models[i])
	}
	return orders, total, nil
}

// toOrderModel 领域实体 → GORM模型
func toOrderModel(o *order.Order) *OrderModel {
	lines := make([]OrderLineModel, len(o.Lines))
	for i, line := range o.Lines {
		lines[i] = OrderLineModel{
			ID:        line.ID,
			OrderID:   line.OrderID,
			VariantID: line.VariantID,
			SKU:       line.SKU,
			Name:      line.Name,
			Quantity:  line.Quantity,
			Price:     line.Price,
		}
	}

	return &OrderModel{
		ID:        o.ID,
		OrderNo:   o.OrderNo,
		UserID:    o.CustomerID,
		Total:     o.Total,
		Status:    int(o.Status),
		Receiver:  o.Address.Receiver,
		Phone:     o.Address.Phone,
		Address:   o.Address.Detail,
		Lines:     lines,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

// toOrderEntity GORM模型 → 领域实体
func toOrderEntity(model *OrderModel) *order.Order {
	lines := make([]order.OrderLine, len(model.Lines))
	for i, line := range model.Lines {
		lines[i] = order.OrderLine{
			ID:        line.ID,
			OrderID:   line.OrderID,
			VariantID: line.VariantID,
			SKU:       line.SKU,
			Name:      line.Name,
			Quantity:  line.Quantity,
			Price:     line.Price,
		}
	}

	return &order.Order{
		ID:         model.ID,
		OrderNo:    model.OrderNo,
		CustomerID: model.UserID,
		Total:      model.Total,
		Status:     order.Status(model.Status),
		Lines:      lines,
		Address: order.Address{
			Receiver: model.Receiver,
			Phone:    model.Phone,
			Detail:   model.Address,
		},
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
