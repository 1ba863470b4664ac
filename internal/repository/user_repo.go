package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs3c/anim_go_server/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepository) GetByID(id int64) (*model.User, error) {
	var user model.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByExternalID(externalID string) (*model.User, error) {
	var user model.User
	err := r.db.Where("external_id = ?", externalID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindOrCreate 按外部标识解析用户，首次出现时原子创建。
// 通过 external_id 唯一索引上的 insert-or-ignore 保证并发首访也只创建一条记录。
func (r *UserRepository) FindOrCreate(externalID, email, name string, initialCredits int) (*model.User, error) {
	user := &model.User{
		ExternalID:        externalID,
		Email:             email,
		Name:              name,
		Credits:           initialCredits,
		LastCreditRefresh: time.Now(),
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_id"}},
		DoNothing: true,
	}).Create(user).Error
	if err != nil {
		return nil, err
	}

	// 冲突时插入被忽略，重新按外部标识读取
	return r.GetByExternalID(externalID)
}

func (r *UserRepository) Update(user *model.User) error {
	return r.db.Save(user).Error
}

// DecrementCreditIfAvailable 条件扣减 1 积分，余额不足时不产生任何变更。
// 单条 UPDATE 保证并发请求不会把余额扣成负数。
func (r *UserRepository) DecrementCreditIfAvailable(id int64) (bool, error) {
	result := r.db.Model(&model.User{}).
		Where("id = ? AND credits > 0", id).
		Update("credits", gorm.Expr("credits - 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// IncrementCredits 增加积分（退还预留或支付到账）
func (r *UserRepository) IncrementCredits(id int64, delta int) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).
		Update("credits", gorm.Expr("credits + ?", delta)).Error
}

// SetCredits 直接设置积分（测试用重置入口）
func (r *UserRepository) SetCredits(id int64, credits int) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).
		Update("credits", credits).Error
}

// RefreshMonthlyCredits 每月补足：余额低于下限时抬升到下限，并记录刷新时间。
// CASE WHEN 写法兼容 MySQL 与测试用的 SQLite。
func (r *UserRepository) RefreshMonthlyCredits(id int64, floor int, now time.Time) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"credits":             gorm.Expr("CASE WHEN credits < ? THEN ? ELSE credits END", floor, floor),
		"last_credit_refresh": now,
	}).Error
}

// RefreshAllStale 批量补足所有上次刷新早于 before 的用户
func (r *UserRepository) RefreshAllStale(floor int, before, now time.Time) (int64, error) {
	result := r.db.Model(&model.User{}).
		Where("last_credit_refresh < ?", before).
		Updates(map[string]interface{}{
			"credits":             gorm.Expr("CASE WHEN credits < ? THEN ? ELSE credits END", floor, floor),
			"last_credit_refresh": now,
		})
	return result.RowsAffected, result.Error
}
