package dto

// TransitionPaymentRequest 支付状态流转请求
// target是目标状态名, 驳回时reason必填(由用例校验)
type TransitionPaymentRequest struct {
	Target string `json:"target" binding:"required,oneof=pending_approval approved rejected cancelled"`
	Reason string `json:"reason" binding:"max=255"`
}

// SweepRequest 手动触发过期清理请求
// ttl_hours为0时使用配置默认值(24小时)
type SweepRequest struct {
	TTLHours int `json:"ttl_hours" binding:"gte=0,lte=720"`
}

// SweepResponse 过期清理响应
type SweepResponse struct {
	Swept int `json:"swept"` // 本轮实际取消的订单数
}
