package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/qs3c/anim_go_server/config"
	"github.com/qs3c/anim_go_server/internal/api"
	"github.com/qs3c/anim_go_server/internal/api/handler"
	"github.com/qs3c/anim_go_server/internal/database"
	"github.com/qs3c/anim_go_server/internal/pkg/cron"
	"github.com/qs3c/anim_go_server/internal/pkg/gemini"
	"github.com/qs3c/anim_go_server/internal/pkg/jwt"
	"github.com/qs3c/anim_go_server/internal/pkg/oss"
	"github.com/qs3c/anim_go_server/internal/pkg/payment"
	"github.com/qs3c/anim_go_server/internal/pkg/pubsub"
	"github.com/qs3c/anim_go_server/internal/pkg/ws"
	"github.com/qs3c/anim_go_server/internal/repository"
	"github.com/qs3c/anim_go_server/internal/service"
)

func main() {
	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	defer database.Close(db)
	log.Println("Database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	defer rdb.Close()
	log.Println("Redis connected")

	// 身份提供方验签公钥
	jwtKey, err := jwt.ParsePublicKey(cfg.Auth.JWTPublicKey)
	if err != nil {
		log.Fatalf("Failed to parse JWT public key: %v", err)
	}

	// 初始化 Gemini
	ctx := context.Background()
	geminiClient, err := gemini.NewClient(ctx, &cfg.Gemini)
	if err != nil {
		log.Fatalf("Failed to create gemini client: %v", err)
	}
	defer geminiClient.Close()
	log.Println("Gemini client ready")

	// 初始化 OSS
	ossClient, err := oss.NewClient(&cfg.OSS)
	if err != nil {
		log.Fatalf("Failed to create OSS client: %v", err)
	}

	// 初始化 Razorpay
	razorpayClient := payment.NewClient(&cfg.Razorpay)

	// 初始化 WebSocket Hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub ready")

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	animationRepo := repository.NewAnimationRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	// 初始化 Service
	creditService := service.NewCreditService(userRepo, cfg)
	animationService := service.NewAnimationService(animationRepo, creditService, geminiClient)
	paymentService := service.NewPaymentService(paymentRepo, creditService, razorpayClient, cfg)

	// 跨实例导出事件：本实例发布，所有实例订阅并推给各自的在线连接
	publisher := pubsub.NewPublisher(rdb)
	subscriber := pubsub.NewSubscriber(rdb)
	go func() {
		err := subscriber.Subscribe(ctx, func(msg *pubsub.ExportMessage) {
			if msg.Status != pubsub.StatusSaved {
				return
			}
			wsHub.SendToUser(msg.UserID, ws.NewVideoSavedMessage(msg.AnimationID, msg.VideoURL))
		})
		if err != nil && ctx.Err() == nil {
			log.Printf("Export event subscriber stopped: %v", err)
		}
	}()

	// 初始化 Handler
	animationHandler := handler.NewAnimationHandler(animationService)
	userHandler := handler.NewUserHandler(creditService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	websocketHandler := handler.NewWebSocketHandler(wsHub)
	exportHandler := handler.NewExportHandler(animationService, ossClient, publisher, &cfg.Export)

	// 启动定时任务
	cronService := cron.NewService(creditService)
	cronService.Start()
	defer cronService.Stop()

	// 初始化 Router
	router := api.NewRouter(
		animationHandler,
		userHandler,
		paymentHandler,
		websocketHandler,
		exportHandler,
		creditService,
		creditService,
		jwtKey,
		cfg,
	)
	engine := router.Setup()

	// 启动服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
