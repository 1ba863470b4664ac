package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/anim_go_server/internal/api/middleware"
	"github.com/qs3c/anim_go_server/internal/model/dto"
	"github.com/qs3c/anim_go_server/internal/pkg/gemini"
	"github.com/qs3c/anim_go_server/internal/pkg/response"
	"github.com/qs3c/anim_go_server/internal/service"
)

type AnimationHandler struct {
	animationService *service.AnimationService
}

func NewAnimationHandler(animationService *service.AnimationService) *AnimationHandler {
	return &AnimationHandler{
		animationService: animationService,
	}
}

// Create 创建动画
// POST /api/animations
func (h *AnimationHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CreateAnimationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "Prompt is required")
		return
	}

	resp, err := h.animationService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.generationError(c, err)
		return
	}

	response.Created(c, gin.H{"animation": resp})
}

// Modify 修改动画
// PUT /api/animations/:id/modify
func (h *AnimationHandler) Modify(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	animationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "Invalid animation ID")
		return
	}

	var req dto.ModifyAnimationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "Prompt is required")
		return
	}

	resp, err := h.animationService.Modify(c.Request.Context(), userID, animationID, &req)
	if err != nil {
		h.generationError(c, err)
		return
	}

	response.Success(c, gin.H{"animation": resp})
}

// GenerateCode 无状态生成，不落库不扣积分
// POST /api/generate-code
func (h *AnimationHandler) GenerateCode(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.GenerateCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "Prompt is required")
		return
	}

	code, err := h.animationService.GenerateOnly(c.Request.Context(), userID, &req)
	if err != nil {
		h.generationError(c, err)
		return
	}

	response.Success(c, dto.GeneratedCode{Code: code})
}

// List 获取动画列表
// GET /api/animations
func (h *AnimationHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	items, err := h.animationService.List(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, gin.H{"animations": items})
}

// Get 获取动画详情
// GET /api/animations/:id
func (h *AnimationHandler) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	animationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "Invalid animation ID")
		return
	}

	animation, err := h.animationService.Get(userID, animationID)
	if err != nil {
		if errors.Is(err, service.ErrAnimationNotFound) {
			response.NotFoundError(c, "Animation not found")
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, gin.H{"animation": &dto.AnimationDetail{
		ID:            animation.ID,
		Title:         animation.Title,
		InitialPrompt: animation.InitialPrompt,
		CurrentCode:   animation.CurrentCode,
		Messages:      animation.Messages,
		VideoURL:      animation.VideoURL,
		Thumbnail:     animation.Thumbnail,
		CreatedAt:     animation.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     animation.UpdatedAt.Format(time.RFC3339),
	}})
}

// SaveVideo 保存导出视频地址
// PUT /api/animations/:id/save-video
func (h *AnimationHandler) SaveVideo(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	animationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "Invalid animation ID")
		return
	}

	var req dto.SaveVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "videoUrl is required")
		return
	}

	if err := h.animationService.SaveVideo(userID, animationID, &req); err != nil {
		if errors.Is(err, service.ErrAnimationNotFound) {
			response.NotFoundError(c, "Animation not found")
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, gin.H{"success": true})
}

// Delete 删除动画
// DELETE /api/animations/:id
func (h *AnimationHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	animationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "Invalid animation ID")
		return
	}

	if err := h.animationService.Delete(userID, animationID); err != nil {
		if errors.Is(err, service.ErrAnimationNotFound) {
			response.NotFoundError(c, "Animation not found")
			return
		}
		response.ServerError(c, "")
		return
	}

	response.Success(c, gin.H{"success": true})
}

// generationError 生成流水线的错误映射
func (h *AnimationHandler) generationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyPrompt):
		response.ParamError(c, "Prompt is required")
	case errors.Is(err, service.ErrInsufficientCredits):
		response.CreditError(c, "You have no credits left. Please purchase more to continue.")
	case errors.Is(err, service.ErrAnimationNotFound):
		response.NotFoundError(c, "Animation not found")
	case errors.Is(err, gemini.ErrRateLimited):
		response.RateLimitError(c, "The AI service is busy. Please try again in a moment.")
	case errors.Is(err, gemini.ErrUnavailable):
		response.ServerErrorWithMessage(c, "AI service unavailable", "Failed to generate animation. Please try again.")
	case errors.Is(err, gemini.ErrInvalidCode):
		response.ServerErrorWithMessage(c, "Generation failed", "The AI returned invalid animation code. Please try a different prompt.")
	default:
		response.ServerError(c, "")
	}
}
