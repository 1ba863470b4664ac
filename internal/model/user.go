package model

import (
	"time"
)

type User struct {
	ID                int64     `gorm:"primaryKey" json:"id"`
	ExternalID        string    `gorm:"size:100;uniqueIndex;not null" json:"-"`
	Email             string    `gorm:"size:100" json:"email,omitempty"`
	Name              string    `gorm:"size:100" json:"name,omitempty"`
	Credits           int       `gorm:"default:20" json:"credits"`
	LastCreditRefresh time.Time `json:"last_credit_refresh"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
