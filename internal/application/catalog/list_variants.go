package catalog

import (
	"context"

	"github.com/xiebiao/storefront/internal/domain/catalog"
)

// ListVariantsUseCase 商品规格列表查询用例
type ListVariantsUseCase struct {
	variantRepo catalog.Repository
}

// NewListVariantsUseCase 创建列表查询用例
func NewListVariantsUseCase(variantRepo catalog.Repository) *ListVariantsUseCase {
	return &ListVariantsUseCase{variantRepo: variantRepo}
}

// ListVariantsRequest 列表查询请求DTO
type ListVariantsRequest struct {
	Page       int
	PageSize   int
	Keyword    string // 搜索关键词(名称、SKU)
	OnlyActive bool   // 买家端只看在售
}

// VariantListItem 列表项DTO
type VariantListItem struct {
	ID           uint   `json:"id"`
	SKU          string `json:"sku"`
	Name         string `json:"name"`
	Size         string `json:"size"`
	Color        string `json:"color"`
	Price        int64  `json:"price"`
	AvailableQty int    `json:"available_qty"`
	Active       bool   `json:"active"`
}

// ListVariantsResponse 列表查询响应DTO
type ListVariantsResponse struct {
	List       []VariantListItem `json:"list"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

// Execute 执行列表查询
func (uc *ListVariantsUseCase) Execute(ctx context.Context, req ListVariantsRequest) (*ListVariantsResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	variants, total, err := uc.variantRepo.List(ctx, catalog.ListParams{
		Page:       req.Page,
		PageSize:   req.PageSize,
		Keyword:    req.Keyword,
		OnlyActive: req.OnlyActive,
	})
	if err != nil {
		return nil, err
	}

	list := make([]VariantListItem, len(variants))
	for i, v := range variants {
		list[i] = VariantListItem{
			ID:           v.ID,
			SKU:          v.SKU,
			Name:         v.Name,
			Size:         v.Size,
			Color:        v.Color,
			Price:        v.Price,
			AvailableQty: v.AvailableQty,
			Active:       v.Active,
		}
	}

	totalPages := int(total) / req.PageSize
	if int(total)%req.PageSize != 0 {
		totalPages++
	}

	return &ListVariantsResponse{
		List:       list,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: totalPages,
	}, nil
}
