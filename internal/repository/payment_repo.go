package repository

import (
	"gorm.io/gorm"

	"github.com/qs3c/anim_go_server/internal/model"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(payment *model.Payment) error {
	return r.db.Create(payment).Error
}

// ExistsByPaymentID 检查支付单号是否已入账，用于回调防重放
func (r *PaymentRepository) ExistsByPaymentID(paymentID string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Payment{}).Where("payment_id = ?", paymentID).Count(&count).Error
	return count > 0, err
}

// ListByUserID 获取用户的支付记录
func (r *PaymentRepository) ListByUserID(userID int64) ([]*model.Payment, error) {
	var payments []*model.Payment
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}
