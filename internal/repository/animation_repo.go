package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/anim_go_server/internal/model"
)

type AnimationRepository struct {
	db *gorm.DB
}

func NewAnimationRepository(db *gorm.DB) *AnimationRepository {
	return &AnimationRepository{db: db}
}

func (r *AnimationRepository) Create(animation *model.Animation) error {
	return r.db.Create(animation).Error
}

func (r *AnimationRepository) GetByID(id int64) (*model.Animation, error) {
	var animation model.Animation
	err := r.db.Where("id = ?", id).First(&animation).Error
	if err != nil {
		return nil, err
	}
	return &animation, nil
}

func (r *AnimationRepository) Update(animation *model.Animation) error {
	return r.db.Save(animation).Error
}

// SetVideo 记录导出视频地址（缩略图可选）
func (r *AnimationRepository) SetVideo(id int64, videoURL, thumbnail string) error {
	fields := map[string]interface{}{
		"video_url": videoURL,
	}
	if thumbnail != "" {
		fields["thumbnail"] = thumbnail
	}
	return r.db.Model(&model.Animation{}).Where("id = ?", id).Updates(fields).Error
}

func (r *AnimationRepository) Delete(id int64) error {
	return r.db.Delete(&model.Animation{}, id).Error
}

// ListByUserID 获取用户的动画列表，按更新时间倒序
func (r *AnimationRepository) ListByUserID(userID int64) ([]*model.Animation, error) {
	var animations []*model.Animation
	err := r.db.Model(&model.Animation{}).
		Select("id", "title", "initial_prompt", "thumbnail", "updated_at").
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&animations).Error
	if err != nil {
		return nil, err
	}
	return animations, nil
}
