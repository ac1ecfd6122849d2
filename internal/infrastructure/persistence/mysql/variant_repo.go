package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/storefront/internal/domain/catalog"
	apperrors "github.com/xiebiao/storefront/pkg/errors"
)

// variantRepository 商品规格仓储实现(MySQL)
type variantRepository struct {
	db *gorm.DB
}

// NewVariantRepository 创建商品规格仓储
func NewVariantRepository(db *gorm.DB) catalog.Repository {
	return &variantRepository{db: db}
}

// Create 创建商品规格
// SKU唯一性由数据库UNIQUE索引保证, 冲突转换为业务错误
func (r *variantRepository) Create(ctx context.Context, v *catalog.Variant) error {
	model := toVariantModel(v)

	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return catalog.ErrSKUDuplicate
		}
		return apperrors.Wrap(err, "创建商品规格失败")
	}

	v.ID = model.ID
	return nil
}

// FindByID 根据ID查找规格
func (r *variantRepository) FindByID(ctx context.Context, id uint) (*catalog.Variant, error) {
	var model VariantModel
	err := getDB(ctx, r.db).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrVariantNotFound
		}
		return nil, apperrors.Wrap(err, "查询商品规格失败")
	}
	return toVariantEntity(&model), nil
}

// FindBySKU 根据SKU查找规格
func (r *variantRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Variant, error) {
	var model VariantModel
	err := getDB(ctx, r.db).Where("sku = ?", sku).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrVariantNotFound
		}
		return nil, apperrors.Wrap(err, "查询商品规格失败")
	}
	return toVariantEntity(&model), nil
}

// Update 更新规格信息(价格、名称、上下架)
// 注意: 不更新available_qty, 库存只走AdjustQuantity
func (r *variantRepository) Update(ctx context.Context, v *catalog.Variant) error {
	result := getDB(ctx, r.db).Model(&VariantModel{}).Where("id = ?", v.ID).Updates(map[string]interface{}{
		"name":       v.Name,
		"size":       v.Size,
		"color":      v.Color,
		"price":      v.Price,
		"active":     v.Active,
		"updated_at": v.UpdatedAt,
	})
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新商品规格失败")
	}
	if result.RowsAffected == 0 {
		return catalog.ErrVariantNotFound
	}
	return nil
}

// List 分页查询规格列表
func (r *variantRepository) List(ctx context.Context, params catalog.ListParams) ([]*catalog.Variant, int64, error) {
	var models []VariantModel
	var total int64

	query := getDB(ctx, r.db).Model(&VariantModel{})
	if params.OnlyActive {
		query = query.Where("active = ?", true)
	}
	if params.Keyword != "" {
		keyword := "%" + params.Keyword + "%"
		query = query.Where("name LIKE ? OR sku LIKE ?", keyword, keyword)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询规格总数失败")
	}

	offset := (params.Page - 1) * params.PageSize
	err := query.Order("created_at DESC").
		Limit(params.PageSize).
		Offset(offset).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询规格列表失败")
	}

	variants := make([]*catalog.Variant, len(models))
	for i := range models {
		variants[i] = toVariantEntity(&models[i])
	}
	return variants, total, nil
}

// LockByID 悲观锁查询规格
// 教学要点:SELECT * FROM variants WHERE id = ? FOR UPDATE
// 在该行上加排他锁(X锁), 其他事务的LockByID在此排队,
// 当前事务COMMIT/ROLLBACK后才放行
func (r *variantRepository) LockByID(ctx context.Context, id uint) (*catalog.Variant, error) {
	var model VariantModel
	err := getDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrVariantNotFound
		}
		if isLockError(err) {
			return nil, apperrors.ErrConcurrencyConflict
		}
		return nil, apperrors.Wrap(err, "锁定商品规格失败")
	}
	return toVariantEntity(&model), nil
}

// AdjustQuantity 调整可承诺量(原子操作)
// WHERE available_qty + delta >= 0是最后一道防线:
// 正常路径上调用方已经在锁内校验过, 这里兜底保证永不为负
func (r *variantRepository) AdjustQuantity(ctx context.Context, id uint, delta int) error {
	result := getDB(ctx, r.db).Model(&VariantModel{}).
		Where("id = ? AND available_qty + ? >= 0", id, delta).
		UpdateColumn("available_qty", gorm.Expr("available_qty + ?", delta))
	if result.Error != nil {
		if isLockError(result.Error) {
			return apperrors.ErrConcurrencyConflict
		}
		return apperrors.Wrap(result.Error, "调整库存失败")
	}
	if result.RowsAffected == 0 {
		// 规格不存在或扣减会导致负库存
		var count int64
		if err := getDB(ctx, r.db).Model(&VariantModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return apperrors.Wrap(err, "调整库存失败")
		}
		if count == 0 {
			return catalog.ErrVariantNotFound
		}
		return catalog.ErrInsufficientStock
	}
	return nil
}

// toVariantModel 领域实体 → GORM模型
func toVariantModel(v *catalog.Variant) *VariantModel {
	return &VariantModel{
		ID:           v.ID,
		SKU:          v.SKU,
		ProductID:    v.ProductID,
		Name:         v.Name,
		Size:         v.Size,
		Color:        v.Color,
		Price:        v.Price,
		AvailableQty: v.AvailableQty,
		Active:       v.Active,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
}

// toVariantEntity GORM模型 → 领域实体
func toVariantEntity(model *VariantModel) *catalog.Variant {
	return &catalog.Variant{
		ID:           model.ID,
		SKU:          model.SKU,
		ProductID:    model.ProductID,
		Name:         model.Name,
		Size:         model.Size,
		Color:        model.Color,
		Price:        model.Price,
		AvailableQty: model.AvailableQty,
		Active:       model.Active,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}
