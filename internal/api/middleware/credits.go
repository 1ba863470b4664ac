package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/anim_go_server/internal/pkg/response"
)

// CreditChecker 查询用户是否还有可用积分
type CreditChecker interface {
	HasCredits(userID int64) (bool, error)
}

// CreditCheck 积分闸门中间件。在进入生成类接口前拦截零余额请求，
// 实际扣减仍由服务层的条件更新完成。
func CreditCheck(credits CreditChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			response.AuthError(c, "Missing authorization token")
			c.Abort()
			return
		}

		hasCredits, err := credits.HasCredits(userID)
		if err != nil {
			response.ServerError(c, "")
			c.Abort()
			return
		}
		if !hasCredits {
			response.CreditError(c, "You have no credits left. Please purchase more to continue.")
			c.Abort()
			return
		}

		c.Next()
	}
}
