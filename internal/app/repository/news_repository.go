package repository

import (
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type NewsRepository interface {
	Create(news *model.News) error
	List(offset, limit int) ([]model.News, int64, error)
	Latest(limit int) ([]model.News, error)
	FindByID(id uint) (*model.News, error)
	FindBySlug(slug string) (*model.News, error)
	SlugExists(slug string, excludeID uint) (bool, error)
	Update(id uint, fields map[string]interface{}) error
	Delete(id uint) error
}

type newsRepository struct {
	db *gorm.DB
}

func NewNewsRepository(db *gorm.DB) NewsRepository {
	return &newsRepository{db: db}
}

func (r *newsRepository) Create(news *model.News) error {
	if err := r.db.Omit("Author").Create(news).Error; err != nil {
		logger.Error("Failed to create news", err, map[string]interface{}{
			"slug": news.Slug,
		})
		return err
	}
	return nil
}

func (r *newsRepository) List(offset, limit int) ([]model.News, int64, error) {
	var total int64
	if err := r.db.Model(&model.News{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []model.News
	err := r.db.Preload("Author").
		Order("published_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&items).Error
	if err != nil {
		logger.Error("Failed to list news", err)
		return nil, 0, err
	}
	return items, total, nil
}

func (r *newsRepository) Latest(limit int) ([]model.News, error) {
	var items []model.News
	err := r.db.Order("published_at DESC").Order("id DESC").Limit(limit).Find(&items).Error
	return items, err
}

func (r *newsRepository) FindByID(id uint) (*model.News, error) {
	var news model.News
	if err := r.db.Preload("Author").First(&news, id).Error; err != nil {
		return nil, err
	}
	return &news, nil
}

func (r *newsRepository) FindBySlug(slug string) (*model.News, error) {
	var news model.News
	if err := r.db.Preload("Author").Where("slug = ?", slug).First(&news).Error; err != nil {
		return nil, err
	}
	return &news, nil
}

func (r *newsRepository) SlugExists(slug string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.Unscoped().Model(&model.News{}).Where("slug = ?", slug)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *newsRepository) Update(id uint, fields map[string]interface{}) error {
	result := r.db.Model(&model.News{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		logger.Error("Failed to update news", result.Error, map[string]interface{}{
			"news_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *newsRepository) Delete(id uint) error {
	result := r.db.Delete(&model.News{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
