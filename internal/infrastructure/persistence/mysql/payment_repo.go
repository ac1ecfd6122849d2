package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/storefront/internal/domain/payment"
	apperrors "github.com/xiebiao/storefront/pkg/errors"
)

// paymentRepository 支付单仓储实现(MySQL)
type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 创建支付单仓储
func NewPaymentRepository(db *gorm.DB) payment.Repository {
	return &paymentRepository{db: db}
}

// Create 创建支付单
// 与订单一对一: order_id唯一索引兜底, 重复创建直接报错
func (r *paymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	model := toPaymentModel(p)
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return apperrors.New(apperrors.ErrCodeDuplicateEntry, "该订单已有支付单")
		}
		return apperrors.Wrap(err, "创建支付单失败")
	}
	p.ID = model.ID
	return nil
}

// FindByID 根据ID查找支付单
func (r *paymentRepository) FindByID(ctx context.Context, id uint) (*payment.Payment, error) {
	var model PaymentModel
	err := getDB(ctx, r.db).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payment.ErrPaymentNotFound
		}
		return nil, apperrors.Wrap(err, "查询支付单失败")
	}
	return toPaymentEntity(&model), nil
}

// FindByOrderID 根据订单ID查找支付单
func (r *paymentRepository) FindByOrderID(ctx context.Context, orderID uint) (*payment.Payment, error) {
	var model PaymentModel
	err := getDB(ctx, r.db).Where("order_id = ?", orderID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payment.ErrPaymentNotFound
		}
		return nil, apperrors.Wrap(err, "查询支付单失败")
	}
	return toPaymentEntity(&model), nil
}

// LockByID 悲观锁查询支付单
// 状态流转前锁行: 并发的人工审批/过期清理在此排队,
// 后到者拿到锁后看到的是已流转的状态, 非法边被状态机拒绝
func (r *paymentRepository) LockByID(ctx context.Context, id uint) (*payment.Payment, error) {
	var model PaymentModel
	err := getDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payment.ErrPaymentNotFound
		}
		if isLockError(err) {
			return nil, apperrors.ErrConcurrencyConflict
		}
		return nil, apperrors.Wrap(err, "锁定支付单失败")
	}
	return toPaymentEntity(&model), nil
}

// Update 更新支付单(状态、原因)
func (r *paymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	result := getDB(ctx, r.db).Model(&PaymentModel{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"status":            int(p.Status),
		"reason":            p.Reason,
		"updated_at":        p.UpdatedAt,
		"status_changed_at": p.StatusChangedAt,
	})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新支付单失败")
	}
	if result.RowsAffected == 0 {
		return payment.ErrPaymentNotFound
	}
	return nil
}

// ListPendingBefore 查询创建时间早于截止点、仍未终结的支付单
// 走(status, created_at)复合索引, 过期清理按批捞单
func (r *paymentRepository) ListPendingBefore(ctx context.Context, before time.Time, limit int) ([]*payment.Payment, error) {
	var models []PaymentModel
	err := getDB(ctx, r.db).
		Where("status IN ? AND created_at < ?",
			[]int{int(payment.StatusPending), int(payment.StatusPendingApproval)}, before).
		Order("created_at ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询过期支付单失败")
	}

	payments := make([]*payment.Payment, len(models))
	for i := range models {
		payments[i] = toPaymentEntity(&models[i])
	}
	return payments, nil
}

// ListByStatus 分页查询指定状态的支付单
func (r *paymentRepository) ListByStatus(ctx context.Context, status payment.Status, page, pageSize int) ([]*payment.Payment, int64, error) {
	var models []PaymentModel
	var total int64

	query := getDB(ctx, r.db).Model(&PaymentModel{}).Where("status = ?", int(status))
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询支付单总数失败")
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at ASC").
		Limit(pageSize).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询支付单列表失败")
	}

	payments := make([]*payment.Payment, len(models))
	for i := range models {
		payments[i] = toPaymentEntity(&models[i])
	}
	return payments, total, nil
}

// toPaymentModel 领域实体 → GORM模型
func toPaymentModel(p *payment.Payment) *PaymentModel {
	return &PaymentModel{
		ID:              p.ID,
		PaymentNo:       p.PaymentNo,
		OrderID:         p.OrderID,
		Amount:          p.Amount,
		Method:          p.Method,
		Status:          int(p.Status),
		Reason:          p.Reason,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
		StatusChangedAt: p.StatusChangedAt,
	}
}

// toPaymentEntity GORM模型 → 领域实体
func toPaymentEntity(model *PaymentModel) *payment.Payment {
	return &payment.Payment{
		ID:              model.ID,
		PaymentNo:       model.PaymentNo,
		OrderID:         model.OrderID,
		Amount:          model.Amount,
		Method:          model.Method,
		Status:          payment.Status(model.Status),
		Reason:          model.Reason,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
		StatusChangedAt: model.StatusChangedAt,
	}
}
