package dto

// PlanInfo 积分套餐
type PlanInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Credits     int    `json:"credits"`
	Amount      int    `json:"amount"`
	Description string `json:"description"`
}

// CreateOrderRequest 创建支付订单请求
type CreateOrderRequest struct {
	PlanID string `json:"planId" binding:"required"`
}

// CreateOrderResponse 创建支付订单响应
type CreateOrderResponse struct {
	OrderID  string    `json:"order_id"`
	Amount   int       `json:"amount"`
	Currency string    `json:"currency"`
	Plan     *PlanInfo `json:"plan"`
}

// VerifyPaymentRequest 支付回调验签请求
type VerifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id" binding:"required"`
	PaymentID string `json:"razorpay_payment_id" binding:"required"`
	Signature string `json:"razorpay_signature" binding:"required"`
	PlanID    string `json:"planId" binding:"required"`
}

// VerifyPaymentResponse 支付验签响应
type VerifyPaymentResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Credits int    `json:"credits"`
}
