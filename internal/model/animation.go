package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

const (
	RoleUser   = "user"
	RoleSystem = "system"
)

// Message 对话记录条目，system 角色记录流水线事件
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// MessageList 用于 JSON 数组字段
type MessageList []Message

func (m MessageList) Value() (driver.Value, error) {
	if m == nil {
		return "[]", nil
	}
	return json.Marshal(m)
}

func (m *MessageList) Scan(value interface{}) error {
	if value == nil {
		*m = []Message{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			bytes = []byte(s)
		} else {
			return nil
		}
	}
	return json.Unmarshal(bytes, m)
}

type Animation struct {
	ID            int64       `gorm:"primaryKey" json:"id"`
	UserID        int64       `gorm:"not null;index" json:"user_id"`
	Title         string      `gorm:"size:200;not null" json:"title"`
	InitialPrompt string      `gorm:"type:text;not null" json:"initial_prompt"`
	CurrentCode   string      `gorm:"type:text;not null" json:"current_code"`
	Messages      MessageList `gorm:"type:json" json:"messages"`
	VideoURL      string      `gorm:"size:500" json:"video_url,omitempty"`
	Thumbnail     string      `gorm:"size:500" json:"thumbnail,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `gorm:"index" json:"updated_at"`

	// 关联
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Animation) TableName() string {
	return "animations"
}
