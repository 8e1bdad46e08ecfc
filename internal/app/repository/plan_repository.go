package repository

import (
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type PlanRepository interface {
	Create(plan *model.ServicePlan) error
	FindByID(id uint) (*model.ServicePlan, error)
	ListByProduct(productID uint, activeOnly bool) ([]model.ServicePlan, error)
	Save(plan *model.ServicePlan) error
	Delete(id uint) error
}

type planRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

func (r *planRepository) Create(plan *model.ServicePlan) error {
	if err := r.db.Omit("Product").Create(plan).Error; err != nil {
		logger.Error("Failed to create service plan", err, map[string]interface{}{
			"product_id": plan.ProductID,
			"term":       plan.Term,
		})
		return err
	}
	return nil
}

func (r *planRepository) FindByID(id uint) (*model.ServicePlan, error) {
	var plan model.ServicePlan
	if err := r.db.First(&plan, id).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *planRepository) ListByProduct(productID uint, activeOnly bool) ([]model.ServicePlan, error) {
	query := r.db.Where("product_id = ?", productID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var plans []model.ServicePlan
	if err := query.Order("ordering ASC").Order("id ASC").Find(&plans).Error; err != nil {
		logger.Error("Failed to list service plans", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}
	return plans, nil
}

// Save writes every column, so the BeforeSave term normalization always runs.
func (r *planRepository) Save(plan *model.ServicePlan) error {
	return r.db.Omit("Product").Save(plan).Error
}

func (r *planRepository) Delete(id uint) error {
	result := r.db.Delete(&model.ServicePlan{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
