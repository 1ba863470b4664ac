package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/anim_go_server/internal/api/middleware"
	"github.com/qs3c/anim_go_server/internal/model/dto"
	"github.com/qs3c/anim_go_server/internal/pkg/response"
	"github.com/qs3c/anim_go_server/internal/service"
)

type PaymentHandler struct {
	paymentService *service.PaymentService
}

func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// ListPlans 获取积分套餐列表（公开接口）
// GET /api/plans
func (h *PaymentHandler) ListPlans(c *gin.Context) {
	response.Success(c, gin.H{"plans": h.paymentService.ListPlans()})
}

// CreateOrder 创建支付订单
// POST /api/create-order
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "planId is required")
		return
	}

	resp, err := h.paymentService.CreateOrder(userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPlan) {
			response.ParamError(c, "Invalid plan")
			return
		}
		response.ServerErrorWithMessage(c, "Failed to create order", "Payment gateway error. Please try again.")
		return
	}

	response.Success(c, resp)
}

// VerifyPayment 验证支付回调并发放积分
// POST /api/verify-payment
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "Missing payment verification fields")
		return
	}

	credits, err := h.paymentService.VerifyAndCredit(userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPlan):
			response.ParamError(c, "Invalid plan")
		case errors.Is(err, service.ErrInvalidSignature):
			response.ParamError(c, "Payment verification failed")
		case errors.Is(err, service.ErrDuplicatePayment):
			response.ParamError(c, "Payment already processed")
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, dto.VerifyPaymentResponse{
		Success: true,
		Message: "Payment verified and credits added",
		Credits: credits,
	})
}
