package catalog

import (
	"context"

	"github.com/xiebiao/storefront/internal/domain/catalog"
	"github.com/xiebiao/storefront/internal/domain/user"
	apperrors "github.com/xiebiao/storefront/pkg/errors"
)

// DeactivateVariantUseCase 商品规格下架用例
// 规格从不物理删除, 下架只是软停用, 历史订单行仍可引用
type DeactivateVariantUseCase struct {
	variantRepo catalog.Repository
}

// NewDeactivateVariantUseCase 创建下架用例
func NewDeactivateVariantUseCase(variantRepo catalog.Repository) *DeactivateVariantUseCase {
	return &DeactivateVariantUseCase{variantRepo: variantRepo}
}

// DeactivateVariantRequest 下架请求DTO
type DeactivateVariantRequest struct {
	VariantID uint
	ActorRole user.Role
}

// Execute 执行下架
func (uc *DeactivateVariantUseCase) Execute(ctx context.Context, req DeactivateVariantRequest) error {
	if !req.ActorRole.CanManageCatalog() {
		return apperrors.ErrForbidden
	}

	v, err := uc.variantRepo.FindByID(ctx, req.VariantID)
	if err != nil {
		return err
	}

	v.Deactivate()
	return uc.variantRepo.Update(ctx, v)
}
