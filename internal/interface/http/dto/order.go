package dto

// AddressRequest 收货地址
type AddressRequest struct {
	Receiver string `json:"receiver" binding:"required,max=50"`
	Phone    string `json:"phone" binding:"required,max=20"`
	Detail   string `json:"detail" binding:"required,max=255"`
}

// PlaceOrderRequest 直接下单请求(不走购物车)
type PlaceOrderRequest struct {
	Lines   []OrderLineRequest `json:"lines" binding:"required,min=1,dive"`
	Address AddressRequest     `json:"address" binding:"required"`
	Method  string             `json:"method" binding:"required,oneof=bank_transfer alipay wechat"`
}

// OrderLineRequest 下单行
type OrderLineRequest struct {
	VariantID uint `json:"variant_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,gt=0"`
}

// CheckoutRequest 购物车结算请求
type CheckoutRequest struct {
	Address AddressRequest `json:"address" binding:"required"`
	Method  string         `json:"method" binding:"required,oneof=bank_transfer alipay wechat"`
}
