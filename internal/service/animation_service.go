package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/anim_go_server/internal/model"
	"github.com/qs3c/anim_go_server/internal/model/dto"
	"github.com/qs3c/anim_go_server/internal/pkg/gemini"
	"github.com/qs3c/anim_go_server/internal/repository"
)

var (
	ErrEmptyPrompt       = errors.New("prompt is required")
	ErrAnimationNotFound = errors.New("animation not found")
)

const titleMaxLen = 50

type AnimationService struct {
	animationRepo *repository.AnimationRepository
	creditService *CreditService
	generator     gemini.Generator
}

func NewAnimationService(
	animationRepo *repository.AnimationRepository,
	creditService *CreditService,
	generator gemini.Generator,
) *AnimationService {
	return &AnimationService{
		animationRepo: animationRepo,
		creditService: creditService,
		generator:     generator,
	}
}

// Create 创建动画：预留积分 → 生成代码 → 清洗校验 → 落库。
// 预留之后任何一步失败都归还积分。
func (s *AnimationService) Create(ctx context.Context, userID int64, req *dto.CreateAnimationRequest) (*dto.AnimationCreated, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}

	if err := s.creditService.UseCredit(userID); err != nil {
		return nil, err
	}

	code, err := s.generateClean(ctx, func() (string, error) {
		return s.generator.GenerateSketch(ctx, prompt)
	})
	if err != nil {
		s.creditService.RefundCredit(userID)
		return nil, err
	}

	now := time.Now()
	animation := &model.Animation{
		UserID:        userID,
		Title:         makeTitle(prompt),
		InitialPrompt: prompt,
		CurrentCode:   code,
		Messages: model.MessageList{
			{Role: model.RoleUser, Content: prompt, Timestamp: now},
			{Role: model.RoleSystem, Content: "Generated initial animation", Timestamp: now},
		},
	}

	if err := s.animationRepo.Create(animation); err != nil {
		s.creditService.RefundCredit(userID)
		return nil, err
	}

	return &dto.AnimationCreated{
		ID:       animation.ID,
		Title:    animation.Title,
		Code:     animation.CurrentCode,
		Messages: animation.Messages,
	}, nil
}

// Modify 修改动画：在现有代码基础上按新指令重新生成，追加对话历史
func (s *AnimationService) Modify(ctx context.Context, userID, animationID int64, req *dto.ModifyAnimationRequest) (*dto.AnimationModified, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}

	animation, err := s.getOwned(userID, animationID)
	if err != nil {
		return nil, err
	}

	if err := s.creditService.UseCredit(userID); err != nil {
		return nil, err
	}

	code, err := s.generateClean(ctx, func() (string, error) {
		return s.generator.ModifySketch(ctx, animation.CurrentCode, prompt)
	})
	if err != nil {
		s.creditService.RefundCredit(userID)
		return nil, err
	}

	now := time.Now()
	animation.CurrentCode = code
	animation.Messages = append(animation.Messages,
		model.Message{Role: model.RoleUser, Content: prompt, Timestamp: now},
		model.Message{Role: model.RoleSystem, Content: "Modified animation based on request", Timestamp: now},
	)

	if err := s.animationRepo.Update(animation); err != nil {
		s.creditService.RefundCredit(userID)
		return nil, err
	}

	return &dto.AnimationModified{
		ID:       animation.ID,
		Code:     animation.CurrentCode,
		Messages: animation.Messages,
	}, nil
}

// GenerateOnly 无状态生成：校验积分但不扣减，也不落库
func (s *AnimationService) GenerateOnly(ctx context.Context, userID int64, req *dto.GenerateCodeRequest) (string, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return "", ErrEmptyPrompt
	}

	hasCredits, err := s.creditService.HasCredits(userID)
	if err != nil {
		return "", err
	}
	if !hasCredits {
		return "", ErrInsufficientCredits
	}

	return s.generateClean(ctx, func() (string, error) {
		return s.generator.GenerateSketch(ctx, prompt)
	})
}

// List 获取用户的动画列表摘要，按更新时间倒序
func (s *AnimationService) List(userID int64) ([]*dto.AnimationListItem, error) {
	animations, err := s.animationRepo.ListByUserID(userID)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.AnimationListItem, 0, len(animations))
	for _, a := range animations {
		items = append(items, &dto.AnimationListItem{
			ID:            a.ID,
			Title:         a.Title,
			InitialPrompt: a.InitialPrompt,
			Thumbnail:     a.Thumbnail,
			UpdatedAt:     a.UpdatedAt.Format(time.RFC3339),
		})
	}
	return items, nil
}

// Get 获取动画详情，他人的动画与不存在等同
func (s *AnimationService) Get(userID, animationID int64) (*model.Animation, error) {
	return s.getOwned(userID, animationID)
}

// SaveVideo 记录导出视频地址
func (s *AnimationService) SaveVideo(userID, animationID int64, req *dto.SaveVideoRequest) error {
	if _, err := s.getOwned(userID, animationID); err != nil {
		return err
	}
	return s.animationRepo.SetVideo(animationID, req.VideoURL, req.Thumbnail)
}

// Delete 删除动画
func (s *AnimationService) Delete(userID, animationID int64) error {
	if _, err := s.getOwned(userID, animationID); err != nil {
		return err
	}
	return s.animationRepo.Delete(animationID)
}

// getOwned 按 ID 读取并校验归属；不存在和不属于当前用户都返回 ErrAnimationNotFound，
// 避免通过响应差异探测他人的动画 ID
func (s *AnimationService) getOwned(userID, animationID int64) (*model.Animation, error) {
	animation, err := s.animationRepo.GetByID(animationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnimationNotFound
		}
		return nil, err
	}

	if animation.UserID != userID {
		return nil, ErrAnimationNotFound
	}
	return animation, nil
}

func (s *AnimationService) generateClean(ctx context.Context, generate func() (string, error)) (string, error) {
	raw, err := generate()
	if err != nil {
		return "", err
	}
	return gemini.CleanCode(raw)
}

// makeTitle 截取指令前 50 个字符作为标题
func makeTitle(prompt string) string {
	runes := []rune(prompt)
	if len(runes) <= titleMaxLen {
		return prompt
	}
	return string(runes[:titleMaxLen]) + "..."
}
