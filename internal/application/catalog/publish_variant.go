package catalog

import (
	"context"

	"github.com/xiebiao/storefront/internal/domain/catalog"
	"github.com/xiebiao/storefront/internal/domain/user"
	apperrors "github.com/xiebiao/storefront/pkg/errors"
)

// PublishVariantUseCase 商品规格上架用例
// 设计说明:
// 1. 应用层负责用例编排与权限校验, 业务规则校验在实体/仓储层
// 2. SKU唯一性由数据库UNIQUE索引保证, 重复时仓储返回ErrSKUDuplicate
type PublishVariantUseCase struct {
	variantRepo catalog.Repository
}

// NewPublishVariantUseCase 创建上架用例
func NewPublishVariantUseCase(variantRepo catalog.Repository) *PublishVariantUseCase {
	return &PublishVariantUseCase{variantRepo: variantRepo}
}

// PublishVariantRequest 上架请求DTO
type PublishVariantRequest struct {
	SKU       string
	ProductID uint
	Name      string
	Size      string
	Color     string
	Price     int64 // 价格(分)
	Quantity  int   // 初始库存
	ActorRole user.Role
}

// PublishVariantResponse 上架响应DTO
type PublishVariantResponse struct {
	ID           uint   `json:"id"`
	SKU          string `json:"sku"`
	ProductID    uint   `json:"product_id"`
	Name         string `json:"name"`
	Size         string `json:"size"`
	Color        string `json:"color"`
	Price        int64  `json:"price"`
	AvailableQty int    `json:"available_qty"`
	Active       bool   `json:"active"`
	CreatedAt    string `json:"created_at"`
}

// Execute 执行上架用例
// 权限规则: 只有marketing/admin可以管理商品
func (uc *PublishVariantUseCase) Execute(ctx context.Context, req PublishVariantRequest) (*PublishVariantResponse, error) {
	if !req.ActorRole.CanManageCatalog() {
		return nil, apperrors.ErrForbidden
	}

	if req.Price <= 0 {
		return nil, catalog.ErrInvalidPrice
	}
	if req.Quantity < 0 {
		return nil, catalog.ErrInvalidQuantity
	}
	if req.SKU == "" || req.Name == "" {
		return nil, apperrors.ErrInvalidParams
	}

	v := catalog.NewVariant(req.SKU, req.ProductID, req.Name, req.Size, req.Color, req.Price, req.Quantity)
	if err := uc.variantRepo.Create(ctx, v); err != nil {
		return nil, err
	}

	return &PublishVariantResponse{
		ID:           v.ID,
		SKU:          v.SKU,
		ProductID:    v.ProductID,
		Name:         v.Name,
		Size:         v.Size,
		Color:        v.Color,
		Price:        v.Price,
		AvailableQty: v.AvailableQty,
		Active:       v.Active,
		CreatedAt:    v.CreatedAt.Format("2006-01-02 15:04:05"),
	}, nil
}
