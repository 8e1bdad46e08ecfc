package repository

import (
	"time"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type SubscriptionFilter struct {
	UserID *uint
	Status model.SubscriptionStatus
	Offset int
	Limit  int
}

type SubscriptionRepository interface {
	WithTx(tx *gorm.DB) SubscriptionRepository
	Create(sub *model.Subscription) error
	List(filter SubscriptionFilter) ([]model.Subscription, int64, error)
	ExpireDue(now time.Time) (int64, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) WithTx(tx *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: tx}
}

func (r *subscriptionRepository) Create(sub *model.Subscription) error {
	if err := r.db.Omit("User", "Product", "Plan").Create(sub).Error; err != nil {
		logger.Error("Failed to create subscription", err, map[string]interface{}{
			"user_id": sub.UserID,
			"plan_id": sub.PlanID,
		})
		return err
	}
	return nil
}

func (r *subscriptionRepository) List(filter SubscriptionFilter) ([]model.Subscription, int64, error) {
	query := r.db.Model(&model.Subscription{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var subs []model.Subscription
	query = query.Preload("Product").Preload("Plan").Preload("User").
		Order("started_at DESC").Order("id DESC")
	if filter.Limit > 0 {
		query = query.Offset(filter.Offset).Limit(filter.Limit)
	}
	if err := query.Find(&subs).Error; err != nil {
		logger.Error("Failed to list subscriptions", err)
		return nil, 0, err
	}
	return subs, total, nil
}

// ExpireDue flips active subscriptions whose end has passed. Safe to rerun.
func (r *subscriptionRepository) ExpireDue(now time.Time) (int64, error) {
	result := r.db.Model(&model.Subscription{}).
		Where("status = ? AND ends_at IS NOT NULL AND ends_at <= ?", model.SubscriptionActive, now).
		Update("status", model.SubscriptionExpired)
	if result.Error != nil {
		logger.Error("Failed to expire subscriptions", result.Error)
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
