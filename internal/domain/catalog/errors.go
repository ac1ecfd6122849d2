package catalog

import (
	apperrors "github.com/xiebiao/storefront/pkg/errors"
)

// 商品规格领域错误定义
var (
	// ErrVariantNotFound 商品规格不存在
	ErrVariantNotFound = apperrors.New(apperrors.ErrCodeVariantNotFound, "商品规格不存在")

	// ErrVariantInactive 商品规格已下架
	ErrVariantInactive = apperrors.New(apperrors.ErrCodeVariantInactive, "商品规格已下架")

	// ErrSKUDuplicate SKU已存在
	ErrSKUDuplicate = apperrors.New(apperrors.ErrCodeSKUDuplicate, "SKU已存在")

	// ErrInvalidPrice 无效的价格
	ErrInvalidPrice = apperrors.New(apperrors.ErrCodeInvalidParams, "价格必须大于0")

	// ErrInvalidQuantity 无效的数量
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "数量必须大于0")

	// ErrInsufficientStock 库存不足(通用哨兵)
	// 说明: 带可用量/请求量详情的版本由stock包构造
	ErrInsufficientStock = apperrors.New(apperrors.ErrCodeInsufficientStock, "库存不足")
)
