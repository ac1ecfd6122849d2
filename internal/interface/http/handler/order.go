package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	apporder "github.com/xiebiao/storefront/internal/application/order"
	"github.com/xiebiao/storefront/internal/interface/http/dto"
	"github.com/xiebiao/storefront/internal/interface/http/middleware"
	"github.com/xiebiao/storefront/pkg/response"
)

// OrderHandler 订单HTTP处理器
type OrderHandler struct {
	placeOrderUseCase  *apporder.PlaceOrderUseCase
	checkoutUseCase    *apporder.CheckoutUseCase
	getOrderUseCase    *apporder.GetOrderUseCase
	listOrdersUseCase  *apporder.ListOrdersUseCase
	fulfillmentUseCase *apporder.FulfillmentUseCase
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(
	placeOrderUseCase *apporder.PlaceOrderUseCase,
	checkoutUseCase *apporder.CheckoutUseCase,
	getOrderUseCase *apporder.GetOrderUseCase,
	listOrdersUseCase *apporder.ListOrdersUseCase,
	fulfillmentUseCase *apporder.FulfillmentUseCase,
) *OrderHandler {
	return &OrderHandler{
		placeOrderUseCase:  placeOrderUseCase,
		checkoutUseCase:    checkoutUseCase,
		getOrderUseCase:    getOrderUseCase,
		listOrdersUseCase:  listOrdersUseCase,
		fulfillmentUseCase: fulfillmentUseCase,
	}
}

// Place 直接下单
// @Summary      下单
// @Description  校验库存并预留、创建订单和支付单（单事务, 全成全败）
// @Tags         订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.PlaceOrderRequest true "下单信息"
// @Success      200 {object} response.Response "下单成功"
// @Failure      400 {object} response.Response "库存不足/购物车行无效"
// @Router       /api/v1/orders [post]
func (h *OrderHandler) Place(c *gin.Context) {
	var req dto.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	lines := make([]apporder.CartLine, len(req.Lines))
	for i, line := range req.Lines {
		lines[i] = apporder.CartLine{VariantID: line.VariantID, Quantity: line.Quantity}
	}

	result, err := h.placeOrderUseCase.Execute(c.Request.Context(), apporder.PlaceOrderRequest{
		CustomerID: middleware.MustGetUserID(c),
		Lines:      lines,
		Address: apporder.AddressInfo{
			Receiver: req.Address.Receiver,
			Phone:    req.Address.Phone,
			Detail:   req.Address.Detail,
		},
		Method: req.Method,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Checkout 购物车结算
// @Summary      购物车结算
// @Description  把购物车转成订单, 成功后清空购物车
// @Tags         订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CheckoutRequest true "结算信息"
// @Success      200 {object} response.Response "下单成功"
// @Failure      400 {object} response.Response "购物车为空/库存不足"
// @Router       /api/v1/orders/checkout [post]
func (h *OrderHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.checkoutUseCase.Execute(c.Request.Context(), apporder.CheckoutRequest{
		CustomerID: middleware.MustGetUserID(c),
		Address: apporder.AddressInfo{
			Receiver: req.Address.Receiver,
			Phone:    req.Address.Phone,
			Detail:   req.Address.Detail,
		},
		Method: req.Method,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Get 订单详情
// @Summary      订单详情
// @Description  买家只能看自己的订单, sales/admin可以看全部
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response "查询成功"
// @Failure      403 {object} response.Response "无权访问"
// @Router       /api/v1/orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.ErrorWithCode(c, 40900, "无效的订单ID")
		return
	}

	result, err := h.getOrderUseCase.Execute(c.Request.Context(), apporder.GetOrderRequest{
		OrderID:   uint(orderID),
		ActorID:   middleware.MustGetUserID(c),
		ActorRole: middleware.GetRole(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// List 我的订单列表
// @Summary      我的订单列表
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "页码"
// @Param        page_size query int false "每页数量"
// @Success      200 {object} response.Response "查询成功"
// @Router       /api/v1/orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := h.listOrdersUseCase.Execute(c.Request.Context(), apporder.ListOrdersRequest{
		CustomerID: middleware.MustGetUserID(c),
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Ship 发货(后台)
// @Summary      发货
// @Description  备货中的订单标记为已发货
// @Tags         订单后台
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response "操作成功"
// @Failure      400 {object} response.Response "状态不允许"
// @Router       /api/v1/admin/orders/{id}/ship [post]
func (h *OrderHandler) Ship(c *gin.Context) {
	h.advance(c, h.fulfillmentUseCase.MarkShipped)
}

// Complete 完成(后台)
// @Summary      完成订单
// @Description  已发货的订单标记为已完成
// @Tags         订单后台
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response "操作成功"
// @Failure      400 {object} response.Response "状态不允许"
// @Router       /api/v1/admin/orders/{id}/complete [post]
func (h *OrderHandler) Complete(c *gin.Context) {
	h.advance(c, h.fulfillmentUseCase.MarkCompleted)
}

// advance 履约操作的公共入口
func (h *OrderHandler) advance(c *gin.Context, fn func(ctx context.Context, req apporder.FulfillmentRequest) (*apporder.FulfillmentResponse, error)) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.ErrorWithCode(c, 40900, "无效的订单ID")
		return
	}

	result, err := fn(c.Request.Context(), apporder.FulfillmentRequest{
		OrderID:   uint(orderID),
		ActorRole: middleware.GetRole(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
