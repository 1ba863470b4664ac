package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody 统一错误响应结构
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// 各状态码对应的默认错误文案
var defaultErrors = map[int]string{
	http.StatusBadRequest:          "Invalid request",
	http.StatusUnauthorized:        "Invalid or expired token",
	http.StatusForbidden:           "Insufficient credits",
	http.StatusNotFound:            "Not found",
	http.StatusTooManyRequests:     "Rate limit exceeded",
	http.StatusInternalServerError: "Internal server error",
}

// Success 200 成功响应，data 即响应体
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created 201 创建成功
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// Error 错误响应
func Error(c *gin.Context, status int, errMsg string) {
	if errMsg == "" {
		errMsg = defaultErrors[status]
	}
	c.JSON(status, ErrorBody{Error: errMsg})
}

// ErrorWithMessage 带用户提示的错误响应
func ErrorWithMessage(c *gin.Context, status int, errMsg, message string) {
	if errMsg == "" {
		errMsg = defaultErrors[status]
	}
	c.JSON(status, ErrorBody{Error: errMsg, Message: message})
}

// ParamError 400 参数错误
func ParamError(c *gin.Context, errMsg string) {
	Error(c, http.StatusBadRequest, errMsg)
}

// AuthError 401 认证失败
func AuthError(c *gin.Context, errMsg string) {
	Error(c, http.StatusUnauthorized, errMsg)
}

// CreditError 403 积分不足
func CreditError(c *gin.Context, message string) {
	ErrorWithMessage(c, http.StatusForbidden, "Insufficient credits", message)
}

// NotFoundError 404 资源不存在
func NotFoundError(c *gin.Context, errMsg string) {
	Error(c, http.StatusNotFound, errMsg)
}

// RateLimitError 429 上游限流
func RateLimitError(c *gin.Context, message string) {
	ErrorWithMessage(c, http.StatusTooManyRequests, "Rate limit exceeded", message)
}

// ServerError 500 服务器错误
func ServerError(c *gin.Context, errMsg string) {
	Error(c, http.StatusInternalServerError, errMsg)
}

// ServerErrorWithMessage 500 带用户提示
func ServerErrorWithMessage(c *gin.Context, errMsg, message string) {
	ErrorWithMessage(c, http.StatusInternalServerError, errMsg, message)
}
