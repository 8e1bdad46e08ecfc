package repository

import (
	"time"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type ConsultationFilter struct {
	Status model.ConsultationStatus
	Offset int
	Limit  int
}

type ConsultationRepository interface {
	Create(req *model.ConsultationRequest) error
	FindByID(id uint) (*model.ConsultationRequest, error)
	List(filter ConsultationFilter) ([]model.ConsultationRequest, int64, error)
	HasRecentOpen(userID, productID uint, since time.Time) (bool, error)
	UpdateFields(id uint, fields map[string]interface{}) error
}

type consultationRepository struct {
	db *gorm.DB
}

func NewConsultationRepository(db *gorm.DB) ConsultationRepository {
	return &consultationRepository{db: db}
}

func (r *consultationRepository) Create(req *model.ConsultationRequest) error {
	if err := r.db.Omit("User", "Product", "HandledBy").Create(req).Error; err != nil {
		logger.Error("Failed to create consultation request", err, map[string]interface{}{
			"user_id":    req.UserID,
			"product_id": req.ProductID,
		})
		return err
	}
	logger.Debug("Consultation request created", map[string]interface{}{
		"consultation_id": req.ID,
	})
	return nil
}

func (r *consultationRepository) FindByID(id uint) (*model.ConsultationRequest, error) {
	var req model.ConsultationRequest
	err := r.db.Preload("User").Preload("User.Profile").Preload("Product").Preload("HandledBy").
		First(&req, id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *consultationRepository) List(filter ConsultationFilter) ([]model.ConsultationRequest, int64, error) {
	query := r.db.Model(&model.ConsultationRequest{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		logger.Error("Failed to count consultation requests", err)
		return nil, 0, err
	}

	var reqs []model.ConsultationRequest
	query = query.Preload("User").Preload("Product").Preload("HandledBy").
		Order("created_at DESC").Order("id DESC")
	if filter.Limit > 0 {
		query = query.Offset(filter.Offset).Limit(filter.Limit)
	}
	if err := query.Find(&reqs).Error; err != nil {
		logger.Error("Failed to list consultation requests", err)
		return nil, 0, err
	}
	return reqs, total, nil
}

// HasRecentOpen reports a "new" request by the user for the product
// created at or after since.
func (r *consultationRepository) HasRecentOpen(userID, productID uint, since time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&model.ConsultationRequest{}).
		Where("user_id = ? AND product_id = ? AND status = ? AND created_at >= ?",
			userID, productID, model.ConsultationNew, since).
		Count(&count).Error
	return count > 0, err
}

func (r *consultationRepository) UpdateFields(id uint, fields map[string]interface{}) error {
	result := r.db.Model(&model.ConsultationRequest{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		logger.Error("Failed to update consultation request", result.Error, map[string]interface{}{
			"consultation_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
