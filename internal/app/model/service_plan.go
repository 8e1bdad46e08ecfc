package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PlanTerm string

const (
	TermMonth   PlanTerm = "month"
	TermQuarter PlanTerm = "quarter"
	TermYear    PlanTerm = "year"
	TermCustom  PlanTerm = "custom"
)

var (
	ErrInvalidPlanTerm   = errors.New("invalid plan term")
	ErrCustomDaysMissing = errors.New("custom term requires custom_days > 0")
)

// ServicePlan is a time-boxed offer attached to a product (hosting, support...).
type ServicePlan struct {
	ID         uint            `gorm:"primarykey" json:"id"`
	ProductID  uint            `gorm:"not null;index" json:"product_id"`
	Name       string          `gorm:"type:varchar(120);not null" json:"name"`
	Term       PlanTerm        `gorm:"type:varchar(10);not null;default:'month'" json:"term"`
	CustomDays int             `gorm:"not null;default:0" json:"custom_days"`
	Price      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"price"`
	IsActive   bool            `gorm:"not null" json:"is_active"`
	Ordering   int             `gorm:"not null;default:0" json:"ordering"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (ServicePlan) TableName() string {
	return "service_plans"
}

// DurationDays is the length of one subscription period.
func (p ServicePlan) DurationDays() int {
	switch p.Term {
	case TermMonth:
		return 30
	case TermQuarter:
		return 90
	case TermYear:
		return 365
	case TermCustom:
		return p.CustomDays
	}
	return 0
}

// Normalize validates the term and clears CustomDays for fixed terms.
func (p *ServicePlan) Normalize() error {
	switch p.Term {
	case TermMonth, TermQuarter, TermYear:
		p.CustomDays = 0
	case TermCustom:
		if p.CustomDays <= 0 {
			return ErrCustomDaysMissing
		}
	default:
		return ErrInvalidPlanTerm
	}
	return nil
}

func (p *ServicePlan) BeforeSave(tx *gorm.DB) error {
	return p.Normalize()
}

type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionExpired   SubscriptionStatus = "expired"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

type Subscription struct {
	ID          uint               `gorm:"primarykey" json:"id"`
	UserID      uint               `gorm:"not null;index" json:"user_id"`
	ProductID   uint               `gorm:"not null;index" json:"product_id"`
	PlanID      uint               `gorm:"not null;index" json:"plan_id"`
	OrderItemID *uint              `gorm:"uniqueIndex" json:"order_item_id,omitempty"` // one subscription per order line
	StartedAt   time.Time          `gorm:"not null" json:"started_at"`
	EndsAt      *time.Time         `gorm:"index" json:"ends_at"`
	Status      SubscriptionStatus `gorm:"type:varchar(10);not null;default:'active';index" json:"status"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`

	User    *User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Product *Product     `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Plan    *ServicePlan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// ComputeEndsAt fills EndsAt from the plan once. An EndsAt already set is kept.
func (s *Subscription) ComputeEndsAt(plan ServicePlan) {
	if s.EndsAt != nil {
		return
	}
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now()
	}
	ends := s.StartedAt.AddDate(0, 0, plan.DurationDays())
	s.EndsAt = &ends
}

// BeforeCreate computes EndsAt when the plan is loaded or can be fetched.
// Bulk status updates run on an empty model, so the hook is create-only.
func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.EndsAt != nil {
		return nil
	}
	if s.Plan != nil {
		s.ComputeEndsAt(*s.Plan)
		return nil
	}
	var plan ServicePlan
	if err := tx.Session(&gorm.Session{NewDB: true}).First(&plan, s.PlanID).Error; err != nil {
		return err
	}
	s.ComputeEndsAt(plan)
	return nil
}
