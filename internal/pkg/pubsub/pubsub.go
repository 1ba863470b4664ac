package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelExportEvents = "export_events"
)

// 导出事件状态
const (
	StatusSaved  = "saved"
	StatusFailed = "failed"
)

// ExportMessage 视频导出事件，跨实例转发到用户的通知连接
type ExportMessage struct {
	Type        string `json:"type"`
	UserID      int64  `json:"user_id"`
	AnimationID int64  `json:"animation_id"`
	Status      string `json:"status"`
	VideoURL    string `json:"video_url,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Publisher Redis 发布者
type Publisher struct {
	client *redis.Client
}

// NewPublisher 创建发布者
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishExport 发布导出事件
func (p *Publisher) PublishExport(ctx context.Context, msg *ExportMessage) error {
	msg.Type = "export_event"

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal export message: %w", err)
	}

	return p.client.Publish(ctx, ChannelExportEvents, data).Err()
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client *redis.Client
}

// NewSubscriber 创建订阅者
func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe 订阅导出事件
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*ExportMessage)) error {
	pubsub := s.client.Subscribe(ctx, ChannelExportEvents)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var exportMsg ExportMessage
			if err := json.Unmarshal([]byte(msg.Payload), &exportMsg); err != nil {
				continue // 忽略解析错误
			}

			handler(&exportMsg)
		}
	}
}
