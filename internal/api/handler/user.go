package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/anim_go_server/internal/api/middleware"
	"github.com/qs3c/anim_go_server/internal/model/dto"
	"github.com/qs3c/anim_go_server/internal/pkg/response"
	"github.com/qs3c/anim_go_server/internal/service"
)

type UserHandler struct {
	creditService *service.CreditService
}

func NewUserHandler(creditService *service.CreditService) *UserHandler {
	return &UserHandler{
		creditService: creditService,
	}
}

// GetCredits 获取积分余额
// GET /api/user/credits
func (h *UserHandler) GetCredits(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	credits, err := h.creditService.GetBalance(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, dto.CreditsResponse{Credits: credits})
}

// RefreshCredits 占位充值入口，引导走支付流程
// POST /api/user/refresh-credits
func (h *UserHandler) RefreshCredits(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	credits, err := h.creditService.GetBalance(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, dto.RefreshCreditsResponse{
		Success: false,
		Message: "Please purchase a credit pack to add credits",
		Credits: credits,
	})
}

// ResetCredits 重置为初始积分（开发调试入口）
// POST /api/user/reset-credits
func (h *UserHandler) ResetCredits(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	credits, err := h.creditService.ResetCredits(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, dto.CreditsResponse{Credits: credits})
}
