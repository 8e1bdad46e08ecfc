package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/middleware"
	"github.com/ikkim/storefront-backend/pkg/util"
	"github.com/shopspring/decimal"
)

type CatalogController struct {
	catalogService service.CatalogService
	planService    service.PlanService
}

func NewCatalogController(catalogService service.CatalogService, planService service.PlanService) *CatalogController {
	return &CatalogController{
		catalogService: catalogService,
		planService:    planService,
	}
}

type CategoryRequest struct {
	Name string `json:"name" binding:"required,max=200"`
}

// ProductRequest is the staff product form. Price and stock accept numbers
// or localized strings such as "1.234,50".
type ProductRequest struct {
	CategoryID        *uint                  `json:"category_id"`
	Name              *string                `json:"name" binding:"omitempty,max=200"`
	Image             *string                `json:"image" binding:"omitempty,max=500"`
	Description       *string                `json:"description"`
	Price             *util.LocalizedDecimal `json:"price"`
	ComparePrice      *util.LocalizedDecimal `json:"compare_price"`
	ClearComparePrice bool                   `json:"clear_compare_price"`
	Stock             *util.LocalizedInt     `json:"stock"`
	Supplier          *string                `json:"supplier" binding:"omitempty,max=200"`
	IsActive          *bool                  `json:"is_active"`
}

func (r ProductRequest) input() service.ProductInput {
	input := service.ProductInput{
		CategoryID:  r.CategoryID,
		Name:        r.Name,
		Image:       r.Image,
		Description: r.Description,
		Supplier:    r.Supplier,
		IsActive:    r.IsActive,
	}
	if r.Price != nil {
		price := r.Price.Decimal
		input.Price = &price
	}
	switch {
	case r.ClearComparePrice:
		input.ComparePrice = &decimal.NullDecimal{}
	case r.ComparePrice != nil:
		input.ComparePrice = &decimal.NullDecimal{Decimal: r.ComparePrice.Decimal, Valid: true}
	}
	if r.Stock != nil {
		stock := int(*r.Stock)
		input.Stock = &stock
	}
	return input
}

type ProductImageRequest struct {
	Image    string `json:"image" binding:"required,max=500"`
	Alt      string `json:"alt" binding:"max=200"`
	Ordering int    `json:"ordering"`
}

// Home returns the storefront landing page
// GET /api/v1/home
func (ctrl *CatalogController) Home(c *gin.Context) {
	home, err := ctrl.catalogService.Home()
	if err != nil {
		respondError(c, err, "load home page")
		return
	}
	c.JSON(http.StatusOK, home)
}

// ListCategories
// GET /api/v1/categories
func (ctrl *CatalogController) ListCategories(c *gin.Context) {
	categories, err := ctrl.catalogService.ListCategories()
	if err != nil {
		respondError(c, err, "list categories")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"count":      len(categories),
	})
}

// ListProducts searches active products
// GET /api/v1/products?q=&page=
func (ctrl *CatalogController) ListProducts(c *gin.Context) {
	result, err := ctrl.catalogService.ListProducts(c.Query("q"), c.Query("page"))
	if err != nil {
		respondError(c, err, "list products")
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListByCategory
// GET /api/v1/categories/:slug/products?page=
func (ctrl *CatalogController) ListByCategory(c *gin.Context) {
	result, err := ctrl.catalogService.ListByCategory(c.Param("slug"), c.Query("page"))
	if err != nil {
		respondError(c, err, "list category products")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetProduct returns an active product with images and plans
// GET /api/v1/products/:slug
func (ctrl *CatalogController) GetProduct(c *gin.Context) {
	product, err := ctrl.catalogService.GetProduct(c.Param("slug"))
	if err != nil {
		respondError(c, err, "get product")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"product": product,
	})
}

// ListProductPlans returns the active plans of a product
// GET /api/v1/products/:slug/plans
func (ctrl *CatalogController) ListProductPlans(c *gin.Context) {
	product, err := ctrl.catalogService.GetProduct(c.Param("slug"))
	if err != nil {
		respondError(c, err, "get product")
		return
	}
	plans, err := ctrl.planService.ListPlans(product.ID)
	if err != nil {
		respondError(c, err, "list plans")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"plans": plans,
	})
}

// CheckProductName reports whether a name is taken, case-insensitively
// GET /api/v1/products/check-name?name=&exclude_id=
func (ctrl *CatalogController) CheckProductName(c *gin.Context) {
	var excludeID uint
	if raw := c.Query("exclude_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			excludeID = uint(id)
		}
	}

	exists, err := ctrl.catalogService.CheckProductName(c.Query("name"), excludeID)
	if err != nil {
		respondError(c, err, "check product name")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":     true,
		"exists": exists,
	})
}

// StaffListProducts includes inactive products
// GET /api/v1/staff/products?q=&page=
func (ctrl *CatalogController) StaffListProducts(c *gin.Context) {
	result, err := ctrl.catalogService.ListAllProducts(c.Query("q"), c.Query("page"))
	if err != nil {
		respondError(c, err, "list products")
		return
	}
	c.JSON(http.StatusOK, result)
}

// StaffGetProduct
// GET /api/v1/staff/products/:id
func (ctrl *CatalogController) StaffGetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	product, err := ctrl.catalogService.GetProductByID(id)
	if err != nil {
		respondError(c, err, "get product")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"product": product,
	})
}

// CreateCategory
// POST /api/v1/staff/categories
func (ctrl *CatalogController) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	category, err := ctrl.catalogService.CreateCategory(req.Name)
	if err != nil {
		respondError(c, err, "create category")
		return
	}

	middleware.GetLoggerFromContext(c).Info("Category created", map[string]interface{}{
		"category_id": category.ID,
		"slug":        category.Slug,
	})
	c.JSON(http.StatusCreated, gin.H{
		"category": category,
	})
}

// UpdateCategory
// PUT /api/v1/staff/categories/:id
func (ctrl *CatalogController) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	category, err := ctrl.catalogService.UpdateCategory(id, req.Name)
	if err != nil {
		respondError(c, err, "update category")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"category": category,
	})
}

// DeleteCategory
// DELETE /api/v1/staff/categories/:id
func (ctrl *CatalogController) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := ctrl.catalogService.DeleteCategory(id); err != nil {
		respondError(c, err, "delete category")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Category deleted",
	})
}

// CreateProduct
// POST /api/v1/staff/products
func (ctrl *CatalogController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	product, err := ctrl.catalogService.CreateProduct(req.input())
	if err != nil {
		respondError(c, err, "create product")
		return
	}

	log.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"slug":       product.Slug,
	})
	c.JSON(http.StatusCreated, gin.H{
		"product": product,
	})
}

// UpdateProduct
// PUT /api/v1/staff/products/:id
func (ctrl *CatalogController) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	product, err := ctrl.catalogService.UpdateProduct(id, req.input())
	if err != nil {
		respondError(c, err, "update product")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"product": product,
	})
}

// DeleteProduct
// DELETE /api/v1/staff/products/:id
func (ctrl *CatalogController) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := ctrl.catalogService.DeleteProduct(id); err != nil {
		respondError(c, err, "delete product")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Product deleted",
	})
}

// AddProductImage
// POST /api/v1/staff/products/:id/images
func (ctrl *CatalogController) AddProductImage(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req ProductImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	image, err := ctrl.catalogService.AddProductImage(id, req.Image, req.Alt, req.Ordering)
	if err != nil {
		respondError(c, err, "create product image")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"image": image,
	})
}

// DeleteProductImage
// DELETE /api/v1/staff/product-images/:id
func (ctrl *CatalogController) DeleteProductImage(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := ctrl.catalogService.DeleteProductImage(id); err != nil {
		respondError(c, err, "delete product image")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Image deleted",
	})
}
