package api

import (
	"crypto/rsa"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/anim_go_server/config"
	"github.com/qs3c/anim_go_server/internal/api/handler"
	"github.com/qs3c/anim_go_server/internal/api/middleware"
)

type Router struct {
	animationHandler *handler.AnimationHandler
	userHandler      *handler.UserHandler
	paymentHandler   *handler.PaymentHandler
	websocketHandler *handler.WebSocketHandler
	exportHandler    *handler.ExportHandler
	users            middleware.UserResolver
	credits          middleware.CreditChecker
	jwtKey           *rsa.PublicKey
	cfg              *config.Config
}

func NewRouter(
	animationHandler *handler.AnimationHandler,
	userHandler *handler.UserHandler,
	paymentHandler *handler.PaymentHandler,
	websocketHandler *handler.WebSocketHandler,
	exportHandler *handler.ExportHandler,
	users middleware.UserResolver,
	credits middleware.CreditChecker,
	jwtKey *rsa.PublicKey,
	cfg *config.Config,
) *Router {
	return &Router{
		animationHandler: animationHandler,
		userHandler:      userHandler,
		paymentHandler:   paymentHandler,
		websocketHandler: websocketHandler,
		exportHandler:    exportHandler,
		users:            users,
		credits:          credits,
		jwtKey:           jwtKey,
		cfg:              cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	api := engine.Group("/api")
	{
		// 公开接口 - 套餐目录
		api.GET("/plans", r.paymentHandler.ListPlans)

		// 需要认证的接口
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.jwtKey, r.users))
		{
			// WebSocket 通知连接
			authenticated.GET("/ws", r.websocketHandler.Handle)

			// 动画
			animations := authenticated.Group("/animations")
			{
				animations.GET("", r.animationHandler.List)
				animations.GET("/:id", r.animationHandler.Get)
				animations.PUT("/:id/save-video", r.animationHandler.SaveVideo)
				animations.DELETE("/:id", r.animationHandler.Delete)
				animations.GET("/:id/export", r.exportHandler.Handle)

				// 生成类接口走积分闸门
				gated := animations.Group("")
				gated.Use(middleware.CreditCheck(r.credits))
				{
					gated.POST("", r.animationHandler.Create)
					gated.PUT("/:id/modify", r.animationHandler.Modify)
				}
			}

			// 无状态生成
			generate := authenticated.Group("")
			generate.Use(middleware.CreditCheck(r.credits))
			{
				generate.POST("/generate-code", r.animationHandler.GenerateCode)
			}

			// 用户积分
			user := authenticated.Group("/user")
			{
				user.GET("/credits", r.userHandler.GetCredits)
				user.POST("/refresh-credits", r.userHandler.RefreshCredits)
				user.POST("/reset-credits", r.userHandler.ResetCredits)
			}

			// 支付
			authenticated.POST("/create-order", r.paymentHandler.CreateOrder)
			authenticated.POST("/verify-payment", r.paymentHandler.VerifyPayment)
		}
	}

	return engine
}
