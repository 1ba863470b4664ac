package testutil

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/anim_go_server/internal/model"
)

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	nano := time.Now().UnixNano()
	user := &model.User{
		ExternalID:        fmt.Sprintf("auth0|test_%d", nano),
		Email:             fmt.Sprintf("test_%d@example.com", nano),
		Name:              fmt.Sprintf("Test User %d", nano%10000),
		Credits:           20,
		LastCreditRefresh: time.Now(),
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithExternalID 设置外部标识
func WithExternalID(externalID string) func(*model.User) {
	return func(u *model.User) {
		u.ExternalID = externalID
	}
}

// WithEmail 设置邮箱
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = email
	}
}

// WithCredits 设置积分余额
func WithCredits(credits int) func(*model.User) {
	return func(u *model.User) {
		u.Credits = credits
	}
}

// WithLastRefresh 设置上次积分刷新时间
func WithLastRefresh(at time.Time) func(*model.User) {
	return func(u *model.User) {
		u.LastCreditRefresh = at
	}
}

// TestAnimation 创建测试动画
func TestAnimation(t *testing.T, db *gorm.DB, userID int64, opts ...func(*model.Animation)) *model.Animation {
	t.Helper()

	animation := &model.Animation{
		UserID:        userID,
		Title:         fmt.Sprintf("Test Animation %d", time.Now().UnixNano()%10000),
		InitialPrompt: "bouncing red ball",
		CurrentCode:   "function setup() { createCanvas(400, 400); }\nfunction draw() { background(220); }",
		Messages: model.MessageList{
			{Role: model.RoleUser, Content: "bouncing red ball", Timestamp: time.Now()},
		},
	}

	for _, opt := range opts {
		opt(animation)
	}

	if err := db.Create(animation).Error; err != nil {
		t.Fatalf("Failed to create test animation: %v", err)
	}

	return animation
}

// WithTitle 设置动画标题
func WithTitle(title string) func(*model.Animation) {
	return func(a *model.Animation) {
		a.Title = title
	}
}

// WithCode 设置当前代码
func WithCode(code string) func(*model.Animation) {
	return func(a *model.Animation) {
		a.CurrentCode = code
	}
}

// WithVideoURL 设置导出视频地址
func WithVideoURL(url string) func(*model.Animation) {
	return func(a *model.Animation) {
		a.VideoURL = url
	}
}

// WithMessages 设置对话历史
func WithMessages(messages model.MessageList) func(*model.Animation) {
	return func(a *model.Animation) {
		a.Messages = messages
	}
}

// TestPayment 创建测试支付记录
func TestPayment(t *testing.T, db *gorm.DB, userID int64, paymentID string) *model.Payment {
	t.Helper()

	payment := &model.Payment{
		UserID:    userID,
		OrderID:   fmt.Sprintf("order_%d", time.Now().UnixNano()%100000),
		PaymentID: paymentID,
		PlanID:    "basic",
		Credits:   20,
		Amount:    499,
	}

	if err := db.Create(payment).Error; err != nil {
		t.Fatalf("Failed to create test payment: %v", err)
	}

	return payment
}
