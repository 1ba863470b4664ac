package payment

import (
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"

	"github.com/qs3c/anim_go_server/config"
)

// OrderCreator 支付网关下单接口，方便测试替换
type OrderCreator interface {
	CreateOrder(amount int, currency, receipt string, notes map[string]interface{}) (string, error)
}

// Client Razorpay 封装
type Client struct {
	client *razorpay.Client
}

// NewClient 创建 Razorpay 客户端
func NewClient(cfg *config.RazorpayConfig) *Client {
	return &Client{
		client: razorpay.NewClient(cfg.KeyID, cfg.KeySecret),
	}
}

// CreateOrder 向网关申请订单，返回订单号
func (c *Client) CreateOrder(amount int, currency, receipt string, notes map[string]interface{}) (string, error) {
	data := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
		"notes":    notes,
	}

	order, err := c.client.Order.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create order: %w", err)
	}

	orderID, ok := order["id"].(string)
	if !ok || orderID == "" {
		return "", fmt.Errorf("gateway returned order without id")
	}

	return orderID, nil
}
