package repository

import (
	"strings"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type ProductFilter struct {
	Search     string // name, description or category name
	CategoryID *uint
	ActiveOnly bool
	Offset     int
	Limit      int
}

type ProductRepository interface {
	Create(product *model.Product) error
	FindWithFilter(filter ProductFilter) ([]model.Product, int64, error)
	FindByID(id uint) (*model.Product, error)
	FindByIDs(ids []uint) ([]model.Product, error)
	FindBySlug(slug string, activeOnly bool) (*model.Product, error)
	LatestByCategory(categoryID uint, limit int) ([]model.Product, error)
	FindByName(name string) (*model.Product, error)
	NameExists(name string, excludeID uint) (bool, error)
	SlugExists(slug string, excludeID uint) (bool, error)
	Update(id uint, fields map[string]interface{}) error
	Delete(id uint) error

	AddImage(image *model.ProductImage) error
	FindImage(id uint) (*model.ProductImage, error)
	DeleteImage(id uint) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"name":        product.Name,
		"category_id": product.CategoryID,
	})

	if err := r.db.Omit("Category", "Plans").Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"name":        product.Name,
			"category_id": product.CategoryID,
		})
		return err
	}

	logger.Debug("Product created in database", map[string]interface{}{
		"product_id": product.ID,
		"slug":       product.Slug,
	})
	return nil
}

func (r *productRepository) FindWithFilter(filter ProductFilter) ([]model.Product, int64, error) {
	logger.Debug("Finding products with filter", map[string]interface{}{
		"search":      filter.Search,
		"category_id": filter.CategoryID,
		"active_only": filter.ActiveOnly,
		"offset":      filter.Offset,
		"limit":       filter.Limit,
	})

	query := r.db.Model(&model.Product{})

	if filter.ActiveOnly {
		query = query.Where("products.is_active = ?", true)
	}
	if filter.CategoryID != nil {
		query = query.Where("products.category_id = ?", *filter.CategoryID)
	}
	if q := strings.TrimSpace(filter.Search); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.
			Joins("LEFT JOIN categories ON categories.id = products.category_id").
			Where("LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ? OR LOWER(categories.name) LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		logger.Error("Failed to count products", err)
		return nil, 0, err
	}

	var products []model.Product
	query = query.Select("products.*").
		Preload("Category").
		Order("products.created_at DESC").
		Order("products.id DESC")
	if filter.Limit > 0 {
		query = query.Offset(filter.Offset).Limit(filter.Limit)
	}
	if err := query.Find(&products).Error; err != nil {
		logger.Error("Failed to find products with filter", err)
		return nil, 0, err
	}

	logger.Debug("Products found with filter", map[string]interface{}{
		"count": len(products),
		"total": total,
	})
	return products, total, nil
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	var product model.Product
	err := r.db.Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("ordering ASC, id ASC") }).
		First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindByIDs(ids []uint) ([]model.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []model.Product
	if err := r.db.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) FindBySlug(slug string, activeOnly bool) (*model.Product, error) {
	query := r.db.Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("ordering ASC, id ASC") }).
		Preload("Plans", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("ordering ASC, id ASC")
		}).
		Where("slug = ?", slug)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var product model.Product
	if err := query.First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) LatestByCategory(categoryID uint, limit int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.Where("category_id = ? AND is_active = ?", categoryID, true).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

// FindByName matches live products case-insensitively.
func (r *productRepository) FindByName(name string) (*model.Product, error) {
	var product model.Product
	err := r.db.Where("LOWER(name) = LOWER(?)", strings.TrimSpace(name)).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) NameExists(name string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.Model(&model.Product{}).Where("LOWER(name) = LOWER(?)", strings.TrimSpace(name))
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

// SlugExists also sees soft-deleted rows, they still hold the unique index.
func (r *productRepository) SlugExists(slug string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.Unscoped().Model(&model.Product{}).Where("slug = ?", slug)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *productRepository) Update(id uint, fields map[string]interface{}) error {
	logger.Debug("Updating product", map[string]interface{}{
		"product_id": id,
	})

	result := r.db.Model(&model.Product{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		logger.Error("Failed to update product", result.Error, map[string]interface{}{
			"product_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepository) Delete(id uint) error {
	result := r.db.Delete(&model.Product{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete product", result.Error, map[string]interface{}{
			"product_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepository) AddImage(image *model.ProductImage) error {
	return r.db.Create(image).Error
}

func (r *productRepository) FindImage(id uint) (*model.ProductImage, error) {
	var image model.ProductImage
	if err := r.db.First(&image, id).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

func (r *productRepository) DeleteImage(id uint) error {
	result := r.db.Delete(&model.ProductImage{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
