package model

import (
	"time"
)

// Payment 已验证的支付回调记录，payment_id 唯一索引用于防重放
type Payment struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"not null;index" json:"user_id"`
	OrderID   string    `gorm:"size:100;not null" json:"order_id"`
	PaymentID string    `gorm:"size:100;uniqueIndex;not null" json:"payment_id"`
	PlanID    string    `gorm:"size:20;not null" json:"plan_id"`
	Credits   int       `gorm:"not null" json:"credits"`
	Amount    int       `gorm:"not null" json:"amount"` // 单位：paise
	CreatedAt time.Time `json:"created_at"`
}

func (Payment) TableName() string {
	return "payments"
}
