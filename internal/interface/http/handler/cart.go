package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appcart "github.com/xiebiao/storefront/internal/application/cart"
	"github.com/xiebiao/storefront/internal/interface/http/dto"
	"github.com/xiebiao/storefront/internal/interface/http/middleware"
	"github.com/xiebiao/storefront/pkg/response"
)

// CartHandler 购物车HTTP处理器
type CartHandler struct {
	cartUseCase *appcart.CartUseCase
}

// NewCartHandler 创建购物车处理器
func NewCartHandler(cartUseCase *appcart.CartUseCase) *CartHandler {
	return &CartHandler{cartUseCase: cartUseCase}
}

// Get 查看购物车
// @Summary      查看购物车
// @Tags         购物车
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response "查询成功"
// @Router       /api/v1/cart [get]
func (h *CartHandler) Get(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	view, err := h.cartUseCase.GetCart(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// AddItem 加购
// @Summary      加购
// @Description  重复加购同一规格时数量累加, 不预留库存
// @Tags         购物车
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CartItemRequest true "加购信息"
// @Success      200 {object} response.Response "加购成功"
// @Router       /api/v1/cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	var req dto.CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	userID := middleware.MustGetUserID(c)
	if err := h.cartUseCase.AddItem(c.Request.Context(), userID, req.VariantID, req.Quantity); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// UpdateItem 修改购物车行数量
// @Summary      修改购物车行数量
// @Tags         购物车
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CartItemRequest true "目标数量(<=0等同删除)"
// @Success      200 {object} response.Response "修改成功"
// @Router       /api/v1/cart/items [put]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	var req dto.CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	userID := middleware.MustGetUserID(c)
	if err := h.cartUseCase.UpdateItem(c.Request.Context(), userID, req.VariantID, req.Quantity); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// RemoveItem 删除购物车行
// @Summary      删除购物车行
// @Tags         购物车
// @Produce      json
// @Security     BearerAuth
// @Param        variant_id path int true "规格ID"
// @Success      200 {object} response.Response "删除成功"
// @Router       /api/v1/cart/items/{variant_id} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	variantID, err := strconv.ParseUint(c.Param("variant_id"), 10, 64)
	if err != nil {
		response.ErrorWithCode(c, 40900, "无效的规格ID")
		return
	}

	userID := middleware.MustGetUserID(c)
	if err := h.cartUseCase.RemoveItem(c.Request.Context(), userID, uint(variantID)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// Clear 清空购物车
// @Summary      清空购物车
// @Tags         购物车
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response "清空成功"
// @Router       /api/v1/cart [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	userID := middleware.MustGetUserID(c)
	if err := h.cartUseCase.Clear(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
