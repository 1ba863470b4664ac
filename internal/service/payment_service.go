package service

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/qs3c/anim_go_server/config"
	"github.com/qs3c/anim_go_server/internal/model"
	"github.com/qs3c/anim_go_server/internal/model/dto"
	"github.com/qs3c/anim_go_server/internal/pkg/payment"
	"github.com/qs3c/anim_go_server/internal/repository"
)

var (
	ErrInvalidPlan      = errors.New("invalid plan")
	ErrInvalidSignature = errors.New("invalid payment signature")
	ErrDuplicatePayment = errors.New("payment already processed")
)

type PaymentService struct {
	paymentRepo   *repository.PaymentRepository
	creditService *CreditService
	orders        payment.OrderCreator
	cfg           *config.Config
}

func NewPaymentService(
	paymentRepo *repository.PaymentRepository,
	creditService *CreditService,
	orders payment.OrderCreator,
	cfg *config.Config,
) *PaymentService {
	return &PaymentService{
		paymentRepo:   paymentRepo,
		creditService: creditService,
		orders:        orders,
		cfg:           cfg,
	}
}

// ListPlans 获取积分套餐列表
func (s *PaymentService) ListPlans() []*dto.PlanInfo {
	plans := make([]*dto.PlanInfo, 0, len(s.cfg.Plans))
	for _, p := range s.cfg.Plans {
		plans = append(plans, &dto.PlanInfo{
			ID:          p.ID,
			Name:        p.Name,
			Credits:     p.Credits,
			Amount:      p.Amount,
			Description: p.Description,
		})
	}
	return plans
}

// CreateOrder 为指定套餐创建支付订单
func (s *PaymentService) CreateOrder(userID int64, req *dto.CreateOrderRequest) (*dto.CreateOrderResponse, error) {
	plan, ok := s.cfg.FindPlan(req.PlanID)
	if !ok {
		return nil, ErrInvalidPlan
	}

	receipt := fmt.Sprintf("receipt_%d", time.Now().Unix())
	notes := map[string]interface{}{
		"userId":  strconv.FormatInt(userID, 10),
		"planId":  plan.ID,
		"credits": strconv.Itoa(plan.Credits),
	}

	orderID, err := s.orders.CreateOrder(plan.Amount, s.cfg.Razorpay.Currency, receipt, notes)
	if err != nil {
		return nil, err
	}

	return &dto.CreateOrderResponse{
		OrderID:  orderID,
		Amount:   plan.Amount,
		Currency: s.cfg.Razorpay.Currency,
		Plan: &dto.PlanInfo{
			ID:          plan.ID,
			Name:        plan.Name,
			Credits:     plan.Credits,
			Amount:      plan.Amount,
			Description: plan.Description,
		},
	}, nil
}

// VerifyAndCredit 验证支付回调签名并发放积分。
// 同一 payment_id 只入账一次，重放直接拒绝。
func (s *PaymentService) VerifyAndCredit(userID int64, req *dto.VerifyPaymentRequest) (int, error) {
	plan, ok := s.cfg.FindPlan(req.PlanID)
	if !ok {
		return 0, ErrInvalidPlan
	}

	if !payment.VerifySignature(req.OrderID, req.PaymentID, req.Signature, s.cfg.Razorpay.KeySecret) {
		return 0, ErrInvalidSignature
	}

	exists, err := s.paymentRepo.ExistsByPaymentID(req.PaymentID)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, ErrDuplicatePayment
	}

	// 先落支付记录再加积分，payment_id 唯一索引兜底并发重放
	record := &model.Payment{
		UserID:    userID,
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		PlanID:    plan.ID,
		Credits:   plan.Credits,
		Amount:    plan.Amount,
	}
	if err := s.paymentRepo.Create(record); err != nil {
		// 并发重放撞上唯一索引时当作重复入账，其余存储错误原样上抛
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, ErrDuplicatePayment
		}
		return 0, err
	}

	if err := s.creditService.AddCredits(userID, plan.Credits); err != nil {
		return 0, err
	}

	return s.creditService.GetBalance(userID)
}
