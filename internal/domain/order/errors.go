package order

import (
	"fmt"

	apperrors "github.com/xiebiao/storefront/pkg/errors"
)

// 订单领域错误定义
var (
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = apperrors.New(apperrors.ErrCodeOrderNotFound, "订单不存在")

	// ErrEmptyCart 购物车为空, 不能下单
	ErrEmptyCart = apperrors.New(apperrors.ErrCodeEmptyCart, "购物车为空")

	// ErrInvalidCartLine 购物车行无效(规格不存在或已下架)
	ErrInvalidCartLine = apperrors.New(apperrors.ErrCodeInvalidCartLine, "购物车中存在无效商品")

	// ErrOrderAccessDenied 无权访问他人订单
	ErrOrderAccessDenied = apperrors.New(apperrors.ErrCodeForbidden, "无权访问该订单")
)

// OrderTransitionDetails 非法流转的结构化详情
type OrderTransitionDetails struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// NewInvalidOrderTransition 构造带详情的订单状态非法流转错误
func NewInvalidOrderTransition(from, to Status) error {
	return apperrors.NewWithDetails(
		apperrors.ErrCodeInvalidTransition,
		fmt.Sprintf("订单状态不允许从%s流转到%s", from, to),
		OrderTransitionDetails{From: from.String(), To: to.String()},
	)
}
