package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appcatalog "github.com/xiebiao/storefront/internal/application/catalog"
	"github.com/xiebiao/storefront/internal/interface/http/dto"
	"github.com/xiebiao/storefront/internal/interface/http/middleware"
	"github.com/xiebiao/storefront/pkg/response"
)

// CatalogHandler 商品规格HTTP处理器
type CatalogHandler struct {
	publishUseCase    *appcatalog.PublishVariantUseCase
	listUseCase       *appcatalog.ListVariantsUseCase
	restockUseCase    *appcatalog.RestockUseCase
	deactivateUseCase *appcatalog.DeactivateVariantUseCase
}

// NewCatalogHandler 创建商品规格处理器
func NewCatalogHandler(
	publishUseCase *appcatalog.PublishVariantUseCase,
	listUseCase *appcatalog.ListVariantsUseCase,
	restockUseCase *appcatalog.RestockUseCase,
	deactivateUseCase *appcatalog.DeactivateVariantUseCase,
) *CatalogHandler {
	return &CatalogHandler{
		publishUseCase:    publishUseCase,
		listUseCase:       listUseCase,
		restockUseCase:    restockUseCase,
		deactivateUseCase: deactivateUseCase,
	}
}

// List 商品规格列表(买家端, 只看在售)
// @Summary      商品规格列表
// @Tags         商品
// @Produce      json
// @Param        page query int false "页码"
// @Param        page_size query int false "每页数量"
// @Param        keyword query string false "搜索关键词"
// @Success      200 {object} response.Response "查询成功"
// @Router       /api/v1/variants [get]
func (h *CatalogHandler) List(c *gin.Context) {
	var query dto.ListVariantsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.listUseCase.Execute(c.Request.Context(), appcatalog.ListVariantsRequest{
		Page:       query.Page,
		PageSize:   query.PageSize,
		Keyword:    query.Keyword,
		OnlyActive: true,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Publish 上架商品规格(后台)
// @Summary      上架商品规格
// @Tags         商品后台
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.PublishVariantRequest true "规格信息"
// @Success      200 {object} response.Response "上架成功"
// @Failure      403 {object} response.Response "无权限"
// @Failure      409 {object} response.Response "SKU已存在"
// @Router       /api/v1/admin/variants [post]
func (h *CatalogHandler) Publish(c *gin.Context) {
	var req dto.PublishVariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.publishUseCase.Execute(c.Request.Context(), appcatalog.PublishVariantRequest{
		SKU:       req.SKU,
		ProductID: req.ProductID,
		Name:      req.Name,
		Size:      req.Size,
		Color:     req.Color,
		Price:     req.Price,
		Quantity:  req.Quantity,
		ActorRole: middleware.GetRole(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Restock 补货(后台)
// @Summary      补货
// @Description  增加可承诺库存量并记录restock流水
// @Tags         商品后台
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "规格ID"
// @Param        request body dto.RestockRequest true "补货数量"
// @Success      200 {object} response.Response "补货成功"
// @Failure      403 {object} response.Response "无权限"
// @Router       /api/v1/admin/variants/{id}/restock [post]
func (h *CatalogHandler) Restock(c *gin.Context) {
	variantID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.ErrorWithCode(c, 40900, "无效的规格ID")
		return
	}

	var req dto.RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.restockUseCase.Execute(c.Request.Context(), appcatalog.RestockRequest{
		VariantID: uint(variantID),
		Quantity:  req.Quantity,
		ActorID:   middleware.MustGetUserID(c),
		ActorRole: middleware.GetRole(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Deactivate 下架商品规格(后台, 软停用)
// @Summary      下架商品规格
// @Tags         商品后台
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "规格ID"
// @Success      200 {object} response.Response "下架成功"
// @Failure      403 {object} response.Response "无权限"
// @Router       /api/v1/admin/variants/{id} [delete]
func (h *CatalogHandler) Deactivate(c *gin.Context) {
	variantID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.ErrorWithCode(c, 40900, "无效的规格ID")
		return
	}

	err = h.deactivateUseCase.Execute(c.Request.Context(), appcatalog.DeactivateVariantRequest{
		VariantID: uint(variantID),
		ActorRole: middleware.GetRole(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
