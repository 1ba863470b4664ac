package dto

import (
	"github.com/qs3c/anim_go_server/internal/model"
)

// CreateAnimationRequest 创建动画请求
type CreateAnimationRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// ModifyAnimationRequest 修改动画请求
type ModifyAnimationRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// SaveVideoRequest 保存导出视频请求
type SaveVideoRequest struct {
	VideoURL  string `json:"videoUrl" binding:"required"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// GenerateCodeRequest 无状态生成请求（不落库）
type GenerateCodeRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// AnimationCreated 创建动画响应体
type AnimationCreated struct {
	ID       int64             `json:"id"`
	Title    string            `json:"title"`
	Code     string            `json:"code"`
	Messages model.MessageList `json:"messages"`
}

// AnimationModified 修改动画响应体
type AnimationModified struct {
	ID       int64             `json:"id"`
	Code     string            `json:"code"`
	Messages model.MessageList `json:"messages"`
}

// AnimationDetail 动画详情响应体
type AnimationDetail struct {
	ID            int64             `json:"id"`
	Title         string            `json:"title"`
	InitialPrompt string            `json:"initialPrompt"`
	CurrentCode   string            `json:"currentCode"`
	Messages      model.MessageList `json:"messages"`
	VideoURL      string            `json:"videoUrl,omitempty"`
	Thumbnail     string            `json:"thumbnail,omitempty"`
	CreatedAt     string            `json:"createdAt"`
	UpdatedAt     string            `json:"updatedAt"`
}

// GeneratedCode 无状态生成响应体
type GeneratedCode struct {
	Code string `json:"code"`
}

// AnimationListItem 动画列表项
type AnimationListItem struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	InitialPrompt string `json:"initialPrompt"`
	Thumbnail     string `json:"thumbnail,omitempty"`
	UpdatedAt     string `json:"updatedAt"`
}
