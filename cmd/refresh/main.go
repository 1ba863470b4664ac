package main

import (
	"flag"
	"log"
	"os"

	"github.com/qs3c/anim_go_server/config"
	"github.com/qs3c/anim_go_server/internal/database"
	"github.com/qs3c/anim_go_server/internal/repository"
	"github.com/qs3c/anim_go_server/internal/service"
)

// 月度积分补足的一次性执行入口。服务进程内置了同样的定时任务，
// 这个命令用于外部调度（crontab/k8s CronJob）或手动补跑。
var dryRun = flag.Bool("dry-run", false, "Report affected users without updating")

func main() {
	flag.Parse()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	defer database.Close(db)

	if *dryRun {
		var count int64
		err := db.Raw(
			"SELECT COUNT(*) FROM users WHERE last_credit_refresh < DATE_FORMAT(NOW(), '%Y-%m-01')",
		).Scan(&count).Error
		if err != nil {
			log.Fatalf("Failed to count stale users: %v", err)
		}
		log.Printf("Dry run: %d users would be refreshed", count)
		return
	}

	creditService := service.NewCreditService(repository.NewUserRepository(db), cfg)
	affected, err := creditService.RefreshAllMonthly()
	if err != nil {
		log.Fatalf("Credit refresh failed: %v", err)
	}
	log.Printf("Credit refresh completed, users=%d", affected)
}
