package stock

import (
	apperrors "github.com/xiebiao/storefront/pkg/errors"
)

// InsufficientStockDetails 库存不足的结构化详情
// 返回给前端, 方便提示"仅剩N件"
type InsufficientStockDetails struct {
	VariantID uint `json:"variant_id"`
	Available int  `json:"available"`
	Requested int  `json:"requested"`
}

// NewInsufficientStock 构造带详情的库存不足错误
// 说明: 与catalog.ErrInsufficientStock共用同一错误码,
// errors.Is按错误码匹配, 调用方可以统一判断
func NewInsufficientStock(variantID uint, available, requested int) error {
	return apperrors.NewWithDetails(
		apperrors.ErrCodeInsufficientStock,
		"库存不足",
		InsufficientStockDetails{
			VariantID: variantID,
			Available: available,
			Requested: requested,
		},
	)
}
