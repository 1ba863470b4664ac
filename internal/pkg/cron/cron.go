package cron

import (
	"log"
	"time"

	"github.com/qs3c/anim_go_server/internal/service"
)

type Service struct {
	creditService *service.CreditService
	stopChan      chan struct{}
}

func NewService(creditService *service.CreditService) *Service {
	return &Service{
		creditService: creditService,
		stopChan:      make(chan struct{}),
	}
}

// Start 启动定时任务
func (s *Service) Start() {
	go s.runMonthlyCreditRefresh()
	log.Println("Cron service started (monthly credit refresh)")
}

// Stop 停止定时任务
func (s *Service) Stop() {
	close(s.stopChan)
	log.Println("Cron service stopped")
}

// runMonthlyCreditRefresh 月初补足免费积分。补足本身是幂等的
// （只影响上次刷新在本月之前的用户），之后每 12 小时兜底重跑，
// 覆盖月初进程恰好不在线的情况。
func (s *Service) runMonthlyCreditRefresh() {
	now := time.Now()
	nextMonth := time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, now.Location())
	timer := time.NewTimer(nextMonth.Sub(now))
	defer timer.Stop()

	ticker := time.NewTicker(12 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-timer.C:
			s.refreshCredits()
			now := time.Now()
			next := time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, now.Location())
			timer.Reset(next.Sub(now))
		case <-ticker.C:
			s.refreshCredits()
		}
	}
}

func (s *Service) refreshCredits() {
	affected, err := s.creditService.RefreshAllMonthly()
	if err != nil {
		log.Printf("Monthly credit refresh failed: %v", err)
		return
	}
	if affected > 0 {
		log.Printf("Monthly credit refresh completed, users=%d", affected)
	}
}

// RunNow 立即执行一次补足（手动触发）
func (s *Service) RunNow() (int64, error) {
	log.Println("Manual credit refresh triggered...")
	return s.creditService.RefreshAllMonthly()
}
