package service

import (
	"errors"
	"time"

	"github.com/qs3c/anim_go_server/config"
	"github.com/qs3c/anim_go_server/internal/model"
	"github.com/qs3c/anim_go_server/internal/repository"
)

var ErrInsufficientCredits = errors.New("insufficient credits")

type CreditService struct {
	userRepo *repository.UserRepository
	cfg      *config.Config
}

func NewCreditService(userRepo *repository.UserRepository, cfg *config.Config) *CreditService {
	return &CreditService{
		userRepo: userRepo,
		cfg:      cfg,
	}
}

// ResolveUser 按身份提供方的 subject 解析本地用户，首访时创建并发放初始积分
func (s *CreditService) ResolveUser(externalID, email, name string) (*model.User, error) {
	return s.userRepo.FindOrCreate(externalID, email, name, s.cfg.Credits.Initial)
}

// GetBalance 获取积分余额，读取前先做惰性月度补足
func (s *CreditService) GetBalance(userID int64) (int, error) {
	user, err := s.refreshIfStale(userID)
	if err != nil {
		return 0, err
	}
	return user.Credits, nil
}

// HasCredits 检查是否还有可用积分
func (s *CreditService) HasCredits(userID int64) (bool, error) {
	user, err := s.refreshIfStale(userID)
	if err != nil {
		return false, err
	}
	return user.Credits > 0, nil
}

// UseCredit 预留 1 积分。条件扣减保证并发下不会超扣；
// 后续生成失败时调用 RefundCredit 归还。
func (s *CreditService) UseCredit(userID int64) error {
	if _, err := s.refreshIfStale(userID); err != nil {
		return err
	}

	ok, err := s.userRepo.DecrementCreditIfAvailable(userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInsufficientCredits
	}
	return nil
}

// RefundCredit 归还预留的积分
func (s *CreditService) RefundCredit(userID int64) error {
	return s.userRepo.IncrementCredits(userID, 1)
}

// AddCredits 支付到账
func (s *CreditService) AddCredits(userID int64, credits int) error {
	return s.userRepo.IncrementCredits(userID, credits)
}

// ResetCredits 重置为初始积分（开发调试入口）
func (s *CreditService) ResetCredits(userID int64) (int, error) {
	if err := s.userRepo.SetCredits(userID, s.cfg.Credits.Initial); err != nil {
		return 0, err
	}
	return s.cfg.Credits.Initial, nil
}

// RefreshAllMonthly 批量补足所有上次刷新在本月之前的用户，返回受影响行数
func (s *CreditService) RefreshAllMonthly() (int64, error) {
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return s.userRepo.RefreshAllStale(s.cfg.Credits.MonthlyFloor, monthStart, now)
}

// refreshIfStale 上次刷新不在当月时补足到下限并刷新时间戳
func (s *CreditService) refreshIfStale(userID int64) (*model.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	last := user.LastCreditRefresh
	if last.Year() == now.Year() && last.Month() == now.Month() {
		return user, nil
	}

	if err := s.userRepo.RefreshMonthlyCredits(userID, s.cfg.Credits.MonthlyFloor, now); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(userID)
}
