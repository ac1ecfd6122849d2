package dto

// PublishVariantRequest 商品规格上架请求
type PublishVariantRequest struct {
	SKU       string `json:"sku" binding:"required,max=64"`
	ProductID uint   `json:"product_id" binding:"required"`
	Name      string `json:"name" binding:"required,max=200"`
	Size      string `json:"size" binding:"max=20"`
	Color     string `json:"color" binding:"max=30"`
	Price     int64  `json:"price" binding:"required,gt=0"` // 单位:分
	Quantity  int    `json:"quantity" binding:"gte=0"`
}

// RestockRequest 补货请求
type RestockRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

// ListVariantsQuery 规格列表查询参数
type ListVariantsQuery struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Keyword  string `form:"keyword"`
}
