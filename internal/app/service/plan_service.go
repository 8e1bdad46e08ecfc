package service

import (
	"errors"
	"strings"
	"time"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/ikkim/storefront-backend/pkg/util"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const SubscriptionsPerPage = 20

var (
	ErrPlanNotFound        = errors.New("service plan not found")
	ErrPlanProductMismatch = errors.New("plan does not belong to the product")
)

type PlanInput struct {
	Name       *string
	Term       *model.PlanTerm
	CustomDays *int
	Price      *decimal.Decimal
	IsActive   *bool
	Ordering   *int
}

type SubscriptionPage struct {
	Subscriptions []model.Subscription `json:"subscriptions"`
	util.Page
}

type PlanService interface {
	ListPlans(productID uint) ([]model.ServicePlan, error)
	ListAllPlans(productID uint) ([]model.ServicePlan, error)
	CreatePlan(productID uint, input PlanInput) (*model.ServicePlan, error)
	UpdatePlan(id uint, input PlanInput) (*model.ServicePlan, error)
	DeletePlan(id uint) error

	ListMySubscriptions(userID uint, page string) (*SubscriptionPage, error)
	ListSubscriptions(status model.SubscriptionStatus, page string) (*SubscriptionPage, error)
	ExpireSubscriptions(now time.Time) (int64, error)
}

type planService struct {
	planRepo    repository.PlanRepository
	productRepo repository.ProductRepository
	subRepo     repository.SubscriptionRepository
}

func NewPlanService(
	planRepo repository.PlanRepository,
	productRepo repository.ProductRepository,
	subRepo repository.SubscriptionRepository,
) PlanService {
	return &planService{
		planRepo:    planRepo,
		productRepo: productRepo,
		subRepo:     subRepo,
	}
}

// ListPlans returns the active plans shown to customers.
func (s *planService) ListPlans(productID uint) ([]model.ServicePlan, error) {
	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return s.planRepo.ListByProduct(productID, true)
}

func (s *planService) ListAllPlans(productID uint) ([]model.ServicePlan, error) {
	return s.planRepo.ListByProduct(productID, false)
}

func (s *planService) CreatePlan(productID uint, input PlanInput) (*model.ServicePlan, error) {
	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
		return nil, ErrNameRequired
	}

	plan := &model.ServicePlan{
		ProductID: productID,
		Term:      model.TermMonth,
		IsActive:  true,
	}
	if err := applyPlanInput(plan, input); err != nil {
		return nil, err
	}
	if err := s.planRepo.Create(plan); err != nil {
		return nil, err
	}

	logger.Info("Service plan created", map[string]interface{}{
		"plan_id":    plan.ID,
		"product_id": productID,
		"term":       plan.Term,
	})
	return plan, nil
}

func (s *planService) UpdatePlan(id uint, input PlanInput) (*model.ServicePlan, error) {
	plan, err := s.planRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return nil, ErrNameRequired
	}
	if err := applyPlanInput(plan, input); err != nil {
		return nil, err
	}
	if err := s.planRepo.Save(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *planService) DeletePlan(id uint) error {
	if err := s.planRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPlanNotFound
		}
		return err
	}
	return nil
}

func applyPlanInput(plan *model.ServicePlan, input PlanInput) error {
	if input.Name != nil {
		plan.Name = strings.TrimSpace(*input.Name)
	}
	if input.Term != nil {
		plan.Term = *input.Term
	}
	if input.CustomDays != nil {
		plan.CustomDays = *input.CustomDays
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return ErrInvalidPrice
		}
		plan.Price = *input.Price
	}
	if input.IsActive != nil {
		plan.IsActive = *input.IsActive
	}
	if input.Ordering != nil {
		plan.Ordering = *input.Ordering
	}
	return plan.Normalize()
}

func (s *planService) ListMySubscriptions(userID uint, page string) (*SubscriptionPage, error) {
	return s.subscriptionPage(repository.SubscriptionFilter{UserID: &userID}, page)
}

func (s *planService) ListSubscriptions(status model.SubscriptionStatus, page string) (*SubscriptionPage, error) {
	return s.subscriptionPage(repository.SubscriptionFilter{Status: status}, page)
}

func (s *planService) subscriptionPage(filter repository.SubscriptionFilter, page string) (*SubscriptionPage, error) {
	countFilter := filter
	countFilter.Limit = 1
	_, total, err := s.subRepo.List(countFilter)
	if err != nil {
		return nil, err
	}
	p := util.Paginate(page, SubscriptionsPerPage, total)
	filter.Offset = p.Offset()
	filter.Limit = p.PerPage
	subs, _, err := s.subRepo.List(filter)
	if err != nil {
		return nil, err
	}
	return &SubscriptionPage{Subscriptions: subs, Page: p}, nil
}

// ExpireSubscriptions marks active subscriptions that ended by now as expired.
func (s *planService) ExpireSubscriptions(now time.Time) (int64, error) {
	n, err := s.subRepo.ExpireDue(now)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.Info("Subscriptions expired", map[string]interface{}{
			"count": n,
		})
	}
	return n, nil
}
