package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/storefront/internal/domain/stock"
	apperrors "github.com/xiebiao/storefront/pkg/errors"
)

// movementRepository 库存流水仓储实现(MySQL)
// 教学要点: 只增不改, 刻意不实现Update/Delete
type movementRepository struct {
	db *gorm.DB
}

// NewMovementRepository 创建库存流水仓储
func NewMovementRepository(db *gorm.DB) stock.Repository {
	return &movementRepository{db: db}
}

// Append 追加一条流水记录
func (r *movementRepository) Append(ctx context.Context, m *stock.Movement) error {
	model := toMovementModel(m)
	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "写入库存流水失败")
	}
	m.ID = model.ID
	m.CreatedAt = model.CreatedAt
	return nil
}

// HasRelease 判断某订单对某规格是否已有释放流水
func (r *movementRepository) HasRelease(ctx context.Context, orderNo string, variantID uint) (bool, error) {
	var count int64
	err := getDB(ctx, r.db).Model(&StockMovementModel{}).
		Where("order_no = ? AND variant_id = ? AND kind = ?", orderNo, variantID, string(stock.MovementRelease)).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Wrap(err, "查询释放流水失败")
	}
	return count > 0, nil
}

// ListByOrderNo 查询某订单关联的全部流水
func (r *movementRepository) ListByOrderNo(ctx context.Context, orderNo string) ([]*stock.Movement, error) {
	var models []StockMovementModel
	err := getDB(ctx, r.db).
		Where("order_no = ?", orderNo).
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询库存流水失败")
	}

	movements := make([]*stock.Movement, len(models))
	for i := range models {
		movements[i] = toMovementEntity(&models[i])
	}
	return movements, nil
}

// ListByVariantID 分页查询某规格的流水
func (r *movementRepository) ListByVariantID(ctx context.Context, variantID uint, page, pageSize int) ([]*stock.Movement, int64, error) {
	var models []StockMovementModel
	var total int64

	query := getDB(ctx, r.db).Model(&StockMovementModel{}).Where("variant_id = ?", variantID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询流水总数失败")
	}

	offset := (page - 1) * pageSize
	err := query.Order("id DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询流水列表失败")
	}

	movements := make([]*stock.Movement, len(models))
	for i := range models {
		movements[i] = toMovementEntity(&models[i])
	}
	return movements, total, nil
}

// toMovementModel 领域实体 → GORM模型
func toMovementModel(m *stock.Movement) *StockMovementModel {
	return &StockMovementModel{
		ID:        m.ID,
		VariantID: m.VariantID,
		Kind:      string(m.Kind),
		Delta:     m.Delta,
		BeforeQty: m.BeforeQty,
		AfterQty:  m.AfterQty,
		OrderNo:   m.OrderNo,
		ActorID:   m.ActorID,
		Remark:    m.Remark,
		CreatedAt: m.CreatedAt,
	}
}

// toMovementEntity GORM模型 → 领域实体
func toMovementEntity(model *StockMovementModel) *stock.Movement {
	return &stock.Movement{
		ID:        model.ID,
		VariantID: model.VariantID,
		Kind:      stock.MovementKind(model.Kind),
		Delta:     model.Delta,
		BeforeQty: model.BeforeQty,
		AfterQty:  model.AfterQty,
		OrderNo:   model.OrderNo,
		ActorID:   model.ActorID,
		Remark:    model.Remark,
		CreatedAt: model.CreatedAt,
	}
}
