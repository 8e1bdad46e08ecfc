package repository

import (
	"time"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"gorm.io/gorm"
)

type PageViewRepository interface {
	ExistsSince(sessionKey string, since time.Time) (bool, error)
	Create(view *model.PageView) error
}

type pageViewRepository struct {
	db *gorm.DB
}

func NewPageViewRepository(db *gorm.DB) PageViewRepository {
	return &pageViewRepository{db: db}
}

func (r *pageViewRepository) ExistsSince(sessionKey string, since time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&model.PageView{}).
		Where("session_key = ? AND created_at >= ?", sessionKey, since).
		Limit(1).
		Count(&count).Error
	return count > 0, err
}

func (r *pageViewRepository) Create(view *model.PageView) error {
	return r.db.Create(view).Error
}
