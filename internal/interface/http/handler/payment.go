package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apppayment "github.com/xiebiao/storefront/internal/application/payment"
	"github.com/xiebiao/storefront/internal/domain/payment"
	"github.com/xiebiao/storefront/internal/interface/http/dto"
	"github.com/xiebiao/storefront/internal/interface/http/middleware"
	"github.com/xiebiao/storefront/pkg/response"
)

// PaymentHandler 支付审批HTTP处理器(后台)
type PaymentHandler struct {
	transitionUseCase  *apppayment.TransitionUseCase
	listPendingUseCase *apppayment.ListPendingUseCase
	sweepUseCase       *apppayment.SweepUseCase
	defaultTTL         time.Duration
}

// NewPaymentHandler 创建支付审批处理器
func NewPaymentHandler(
	transitionUseCase *apppayment.TransitionUseCase,
	listPendingUseCase *apppayment.ListPendingUseCase,
	sweepUseCase *apppayment.SweepUseCase,
	defaultTTL time.Duration,
) *PaymentHandler {
	return &PaymentHandler{
		transitionUseCase:  transitionUseCase,
		listPendingUseCase: listPendingUseCase,
		sweepUseCase:       sweepUseCase,
		defaultTTL:         defaultTTL,
	}
}

// statusFromName 状态名 → 状态枚举
// dto层已用oneof限制取值, 这里的default分支理论上不可达
func statusFromName(name string) payment.Status {
	switch name {
	case "pending_approval":
		return payment.StatusPendingApproval
	case "approved":
		return payment.StatusApproved
	case "rejected":
		return payment.StatusRejected
	case "cancelled":
		return payment.StatusCancelled
	default:
		return payment.Status(0)
	}
}

// Transition 支付状态流转
// @Summary      支付状态流转
// @Description  认领(pending_approval)/通过(approved)/驳回(rejected, 需原因)/取消(cancelled)
// @Tags         支付审批
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "支付单ID"
// @Param        request body dto.TransitionPaymentRequest true "目标状态"
// @Success      200 {object} response.Response "流转成功"
// @Failure      400 {object} response.Response "非法流转/缺少驳回原因"
// @Failure      403 {object} response.Response "无权限"
// @Router       /api/v1/admin/payments/{id}/transition [post]
func (h *PaymentHandler) Transition(c *gin.Context) {
	paymentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.ErrorWithCode(c, 40900, "无效的支付单ID")
		return
	}

	var req dto.TransitionPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.transitionUseCase.Execute(c.Request.Context(), apppayment.TransitionRequest{
		PaymentID: uint(paymentID),
		Target:    statusFromName(req.Target),
		Reason:    req.Reason,
		ActorID:   middleware.MustGetUserID(c),
		ActorRole: middleware.GetRole(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListPending 审批工作台列表
// @Summary      审批工作台列表
// @Description  按状态查询支付单(默认pending)
// @Tags         支付审批
// @Produce      json
// @Security     BearerAuth
// @Param        status query string false "状态(pending/pending_approval)"
// @Param        page query int false "页码"
// @Param        page_size query int false "每页数量"
// @Success      200 {object} response.Response "查询成功"
// @Router       /api/v1/admin/payments [get]
func (h *PaymentHandler) ListPending(c *gin.Context) {
	status := statusFromName(c.DefaultQuery("status", "pending"))
	if status == payment.Status(0) {
		status = payment.StatusPending
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	items, total, err := h.listPendingUseCase.Execute(c.Request.Context(), apppayment.ListPendingRequest{
		Status:    status,
		Page:      page,
		PageSize:  pageSize,
		ActorRole: middleware.GetRole(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, items, total, page, pageSize)
}

// Sweep 手动触发过期清理
// @Summary      过期预留清理
// @Description  取消挂起超过TTL的订单并释放库存, 幂等(重复调用第二次清理数为0)
// @Tags         支付审批
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.SweepRequest false "TTL(小时), 0用默认值"
// @Success      200 {object} response.Response{data=dto.SweepResponse} "清理完成"
// @Failure      403 {object} response.Response "无权限"
// @Router       /api/v1/admin/reservations/sweep [post]
func (h *PaymentHandler) Sweep(c *gin.Context) {
	var req dto.SweepRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	ttl := h.defaultTTL
	if req.TTLHours > 0 {
		ttl = time.Duration(req.TTLHours) * time.Hour
	}

	swept, err := h.sweepUseCase.Execute(c.Request.Context(), ttl)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.SweepResponse{Swept: swept})
}
