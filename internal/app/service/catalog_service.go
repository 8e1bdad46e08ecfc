package service

import (
	"errors"
	"strings"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/ikkim/storefront-backend/pkg/util"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	ProductsPerPage      = 12
	HomeProductsPerShelf = 8
	HomeNewsCount        = 6
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrProductNameExists    = errors.New("product name already exists")
	ErrProductImageNotFound = errors.New("product image not found")
	ErrInvalidPrice         = errors.New("price must not be negative")
	ErrInvalidStock         = errors.New("stock must not be negative")
	ErrNameRequired         = errors.New("name is required")
)

type HomeSection struct {
	Category model.Category  `json:"category"`
	Products []model.Product `json:"products"`
}

type HomePage struct {
	Sections []HomeSection `json:"sections"`
	News     []model.News  `json:"news"`
}

type ProductPage struct {
	Products []model.Product `json:"products"`
	Category *model.Category `json:"category,omitempty"`
	Query    string          `json:"q,omitempty"`
	util.Page
}

// ProductInput is the staff product form. Nil fields keep their value on update.
type ProductInput struct {
	CategoryID   *uint
	Name         *string
	Image        *string
	Description  *string
	Price        *decimal.Decimal
	ComparePrice *decimal.NullDecimal
	Stock        *int
	Supplier     *string
	IsActive     *bool
}

type CatalogService interface {
	Home() (*HomePage, error)
	ListCategories() ([]model.Category, error)
	ListProducts(q, page string) (*ProductPage, error)
	ListByCategory(slug, page string) (*ProductPage, error)
	GetProduct(slug string) (*model.Product, error)
	GetProductByID(id uint) (*model.Product, error)
	CheckProductName(name string, excludeID uint) (bool, error)

	CreateCategory(name string) (*model.Category, error)
	UpdateCategory(id uint, name string) (*model.Category, error)
	DeleteCategory(id uint) error

	ListAllProducts(q, page string) (*ProductPage, error)
	CreateProduct(input ProductInput) (*model.Product, error)
	UpdateProduct(id uint, input ProductInput) (*model.Product, error)
	DeleteProduct(id uint) error
	AddProductImage(productID uint, image, alt string, ordering int) (*model.ProductImage, error)
	DeleteProductImage(imageID uint) error
}

type catalogService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	newsRepo     repository.NewsRepository
}

func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	newsRepo repository.NewsRepository,
) CatalogService {
	return &catalogService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		newsRepo:     newsRepo,
	}
}

// Home lists one shelf per category, skipping empty ones, plus the latest news.
func (s *catalogService) Home() (*HomePage, error) {
	categories, err := s.categoryRepo.FindAll()
	if err != nil {
		return nil, err
	}

	home := &HomePage{Sections: []HomeSection{}}
	for _, category := range categories {
		products, err := s.productRepo.LatestByCategory(category.ID, HomeProductsPerShelf)
		if err != nil {
			logger.Error("Failed to load home shelf", err, map[string]interface{}{
				"category_id": category.ID,
			})
			return nil, err
		}
		if len(products) == 0 {
			continue
		}
		home.Sections = append(home.Sections, HomeSection{Category: category, Products: products})
	}

	news, err := s.newsRepo.Latest(HomeNewsCount)
	if err != nil {
		return nil, err
	}
	home.News = news
	return home, nil
}

func (s *catalogService) ListCategories() ([]model.Category, error) {
	return s.categoryRepo.FindAll()
}

func (s *catalogService) ListProducts(q, page string) (*ProductPage, error) {
	return s.pageOf(repository.ProductFilter{Search: q, ActiveOnly: true}, page)
}

// ListAllProducts is the staff listing, inactive products included.
func (s *catalogService) ListAllProducts(q, page string) (*ProductPage, error) {
	return s.pageOf(repository.ProductFilter{Search: q}, page)
}

func (s *catalogService) ListByCategory(slug, page string) (*ProductPage, error) {
	category, err := s.categoryRepo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	result, err := s.pageOf(repository.ProductFilter{CategoryID: &category.ID, ActiveOnly: true}, page)
	if err != nil {
		return nil, err
	}
	result.Category = category
	return result, nil
}

func (s *catalogService) pageOf(filter repository.ProductFilter, page string) (*ProductPage, error) {
	filter.Search = strings.TrimSpace(filter.Search)

	countFilter := filter
	countFilter.Limit = 1
	_, total, err := s.productRepo.FindWithFilter(countFilter)
	if err != nil {
		return nil, err
	}

	p := util.Paginate(page, ProductsPerPage, total)
	filter.Offset = p.Offset()
	filter.Limit = p.PerPage
	products, _, err := s.productRepo.FindWithFilter(filter)
	if err != nil {
		return nil, err
	}
	return &ProductPage{Products: products, Query: filter.Search, Page: p}, nil
}

func (s *catalogService) GetProduct(slug string) (*model.Product, error) {
	product, err := s.productRepo.FindBySlug(slug, true)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *catalogService) GetProductByID(id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *catalogService) CheckProductName(name string, excludeID uint) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, nil
	}
	return s.productRepo.NameExists(name, excludeID)
}

func (s *catalogService) CreateCategory(name string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	slug, err := util.UniqueSlug(util.Slugify(name), func(candidate string) (bool, error) {
		return s.categoryRepo.SlugExists(candidate, 0)
	})
	if err != nil {
		return nil, err
	}

	category := &model.Category{Name: name, Slug: slug}
	if err := s.categoryRepo.Create(category); err != nil {
		return nil, err
	}
	logger.Info("Category created", map[string]interface{}{
		"category_id": category.ID,
		"slug":        slug,
	})
	return category, nil
}

func (s *catalogService) UpdateCategory(id uint, name string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	category, err := s.categoryRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	if category.Name == name {
		return category, nil
	}

	slug, err := util.UniqueSlug(util.Slugify(name), func(candidate string) (bool, error) {
		return s.categoryRepo.SlugExists(candidate, id)
	})
	if err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Update(id, map[string]interface{}{"name": name, "slug": slug}); err != nil {
		return nil, err
	}
	category.Name = name
	category.Slug = slug
	return category, nil
}

func (s *catalogService) DeleteCategory(id uint) error {
	if err := s.categoryRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}
	logger.Info("Category deleted", map[string]interface{}{
		"category_id": id,
	})
	return nil
}

func (s *catalogService) CreateProduct(input ProductInput) (*model.Product, error) {
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
		return nil, ErrNameRequired
	}
	if input.CategoryID == nil {
		return nil, ErrCategoryNotFound
	}
	name := strings.TrimSpace(*input.Name)

	logger.Info("Creating product", map[string]interface{}{
		"name":        name,
		"category_id": *input.CategoryID,
	})

	if _, err := s.categoryRepo.FindByID(*input.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	exists, err := s.productRepo.NameExists(name, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrProductNameExists
	}

	slug, err := s.productSlug(name, 0)
	if err != nil {
		return nil, err
	}

	product := &model.Product{
		CategoryID: *input.CategoryID,
		Name:       name,
		Slug:       slug,
		IsActive:   true,
	}
	if err := applyProductInput(product, input); err != nil {
		return nil, err
	}

	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}

	logger.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"slug":       product.Slug,
	})
	return s.GetProductByID(product.ID)
}

func (s *catalogService) UpdateProduct(id uint, input ProductInput) (*model.Product, error) {
	product, err := s.GetProductByID(id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		if name != product.Name {
			exists, err := s.productRepo.NameExists(name, id)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, ErrProductNameExists
			}
			slug, err := s.productSlug(name, id)
			if err != nil {
				return nil, err
			}
			fields["name"] = name
			fields["slug"] = slug
		}
	}
	if input.CategoryID != nil && *input.CategoryID != product.CategoryID {
		if _, err := s.categoryRepo.FindByID(*input.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, err
		}
		fields["category_id"] = *input.CategoryID
	}

	staged := *product
	if err := applyProductInput(&staged, input); err != nil {
		return nil, err
	}
	if input.Image != nil {
		fields["image"] = staged.Image
	}
	if input.Description != nil {
		fields["description"] = staged.Description
	}
	if input.Price != nil {
		fields["price"] = staged.Price
	}
	if input.ComparePrice != nil {
		fields["compare_price"] = staged.ComparePrice
	}
	if input.Stock != nil {
		fields["stock"] = staged.Stock
	}
	if input.Supplier != nil {
		fields["supplier"] = staged.Supplier
	}
	if input.IsActive != nil {
		fields["is_active"] = staged.IsActive
	}

	if len(fields) > 0 {
		if err := s.productRepo.Update(id, fields); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrProductNotFound
			}
			return nil, err
		}
		logger.Info("Product updated", map[string]interface{}{
			"product_id": id,
			"fields":     len(fields),
		})
	}
	return s.GetProductByID(id)
}

func (s *catalogService) DeleteProduct(id uint) error {
	if err := s.productRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	logger.Info("Product deleted", map[string]interface{}{
		"product_id": id,
	})
	return nil
}

func (s *catalogService) AddProductImage(productID uint, image, alt string, ordering int) (*model.ProductImage, error) {
	if _, err := s.GetProductByID(productID); err != nil {
		return nil, err
	}
	img := &model.ProductImage{
		ProductID: productID,
		Image:     strings.TrimSpace(image),
		Alt:       strings.TrimSpace(alt),
		Ordering:  ordering,
	}
	if err := s.productRepo.AddImage(img); err != nil {
		logger.Error("Failed to add product image", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}
	return img, nil
}

func (s *catalogService) DeleteProductImage(imageID uint) error {
	if err := s.productRepo.DeleteImage(imageID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductImageNotFound
		}
		return err
	}
	return nil
}

func (s *catalogService) productSlug(name string, excludeID uint) (string, error) {
	return util.UniqueSlug(util.Slugify(name), func(candidate string) (bool, error) {
		return s.productRepo.SlugExists(candidate, excludeID)
	})
}

// applyProductInput copies the optional form fields onto product.
func applyProductInput(product *model.Product, input ProductInput) error {
	if input.Image != nil {
		product.Image = strings.TrimSpace(*input.Image)
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return ErrInvalidPrice
		}
		product.Price = *input.Price
	}
	if input.ComparePrice != nil {
		if input.ComparePrice.Valid && input.ComparePrice.Decimal.IsNegative() {
			return ErrInvalidPrice
		}
		product.ComparePrice = *input.ComparePrice
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return ErrInvalidStock
		}
		product.Stock = *input.Stock
	}
	if input.Supplier != nil {
		product.Supplier = strings.TrimSpace(*input.Supplier)
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	return nil
}
