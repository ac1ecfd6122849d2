package payment

import (
	"fmt"

	apperrors "github.com/xiebiao/storefront/pkg/errors"
)

// 支付领域错误定义
var (
	// ErrPaymentNotFound 支付单不存在
	ErrPaymentNotFound = apperrors.New(apperrors.ErrCodePaymentNotFound, "支付单不存在")

	// ErrMissingReason 驳回必须附原因
	ErrMissingReason = apperrors.New(apperrors.ErrCodeMissingReason, "驳回支付必须填写原因")
)

// TransitionDetails 非法流转的结构化详情
type TransitionDetails struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// NewInvalidTransition 构造带详情的支付状态非法流转错误
// 重放已生效的流转(如对approved再次approve)也会落到这里
func NewInvalidTransition(from, to Status) error {
	return apperrors.NewWithDetails(
		apperrors.ErrCodeInvalidTransition,
		fmt.Sprintf("支付状态不允许从%s流转到%s", from, to),
		TransitionDetails{From: from.String(), To: to.String()},
	)
}
