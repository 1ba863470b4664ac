package dto

// CreditsResponse 积分余额响应
type CreditsResponse struct {
	Credits int `json:"credits"`
}

// RefreshCreditsRequest 占位充值请求（正式充值走支付流程）
type RefreshCreditsRequest struct {
	Credits int `json:"credits"`
}

// RefreshCreditsResponse 占位充值响应
type RefreshCreditsResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Credits int    `json:"credits"`
}
