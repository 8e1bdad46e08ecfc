package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCatalogServiceTest(t *testing.T) (CatalogService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	catalogService := NewCatalogService(
		repository.NewCategoryRepository(testDB),
		repository.NewProductRepository(testDB),
		repository.NewNewsRepository(testDB),
	)
	return catalogService, testDB
}

func TestCatalogService_Home(t *testing.T) {
	catalogService, testDB := setupCatalogServiceTest(t)

	hosting := createTestCategory(t, testDB, "Hosting")
	createTestCategory(t, testDB, "Empty")
	for i := 0; i < HomeProductsPerShelf+2; i++ {
		createTestProduct(t, testDB, hosting, fmt.Sprintf("Plan %d", i), "10.00")
	}
	hidden := createTestProduct(t, testDB, hosting, "Hidden", "1.00")
	require.NoError(t, testDB.Model(hidden).Update("is_active", false).Error)

	for i := 0; i < HomeNewsCount+1; i++ {
		news := &model.News{
			Title:       fmt.Sprintf("News %d", i),
			Slug:        fmt.Sprintf("news-%d", i),
			PublishedAt: time.Now().Add(-time.Duration(i) * time.Hour),
		}
		require.NoError(t, testDB.Create(news).Error)
	}

	home, err := catalogService.Home()
	require.NoError(t, err)
	require.Len(t, home.Sections, 1)
	assert.Equal(t, "Hosting", home.Sections[0].Category.Name)
	assert.Len(t, home.Sections[0].Products, HomeProductsPerShelf)
	for _, p := range home.Sections[0].Products {
		assert.True(t, p.IsActive)
	}
	require.Len(t, home.News, HomeNewsCount)
	assert.Equal(t, "News 0", home.News[0].Title)
}

func TestCatalogService_ListProducts(t *testing.T) {
	catalogService, testDB := setupCatalogServiceTest(t)

	hosting := createTestCategory(t, testDB, "Hosting")
	domains := createTestCategory(t, testDB, "Domains")
	for i := 0; i < ProductsPerPage+3; i++ {
		createTestProduct(t, testDB, hosting, fmt.Sprintf("VPS %02d", i), "20.00")
	}
	createTestProduct(t, testDB, domains, "Dot Com", "12.00")
	off := createTestProduct(t, testDB, domains, "Dot Net", "12.00")
	require.NoError(t, testDB.Model(off).Update("is_active", false).Error)

	page, err := catalogService.ListProducts("", "1")
	require.NoError(t, err)
	assert.Len(t, page.Products, ProductsPerPage)
	assert.Equal(t, int64(ProductsPerPage+4), page.Total)

	page, err = catalogService.ListProducts("", "99")
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page.Page)
	assert.Len(t, page.Products, 4)

	t.Run("Search matches category name", func(t *testing.T) {
		page, err := catalogService.ListProducts("domains", "")
		require.NoError(t, err)
		require.Len(t, page.Products, 1)
		assert.Equal(t, "Dot Com", page.Products[0].Name)
		assert.Equal(t, "domains", page.Query)
	})

	t.Run("By category", func(t *testing.T) {
		page, err := catalogService.ListByCategory("domains", "")
		require.NoError(t, err)
		require.NotNil(t, page.Category)
		assert.Equal(t, domains.ID, page.Category.ID)
		assert.Len(t, page.Products, 1)

		_, err = catalogService.ListByCategory("missing", "")
		assert.ErrorIs(t, err, ErrCategoryNotFound)
	})

	t.Run("Staff listing includes inactive", func(t *testing.T) {
		page, err := catalogService.ListAllProducts("dot", "")
		require.NoError(t, err)
		assert.Len(t, page.Products, 2)
	})

	t.Run("Inactive product detail is hidden", func(t *testing.T) {
		_, err := catalogService.GetProduct(off.Slug)
		assert.ErrorIs(t, err, ErrProductNotFound)

		product, err := catalogService.GetProduct("dot-com")
		require.NoError(t, err)
		assert.Equal(t, "Dot Com", product.Name)
	})
}

func TestCatalogService_Categories(t *testing.T) {
	catalogService, _ := setupCatalogServiceTest(t)

	category, err := catalogService.CreateCategory("Cloud Hosting")
	require.NoError(t, err)
	assert.Equal(t, "cloud-hosting", category.Slug)

	again, err := catalogService.CreateCategory("Cloud  hosting!")
	require.NoError(t, err)
	assert.Equal(t, "cloud-hosting-1", again.Slug)

	_, err = catalogService.CreateCategory("   ")
	assert.ErrorIs(t, err, ErrNameRequired)

	renamed, err := catalogService.UpdateCategory(again.ID, "Dịch vụ")
	require.NoError(t, err)
	assert.Equal(t, "dich-vu", renamed.Slug)

	_, err = catalogService.UpdateCategory(9999, "x")
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	require.NoError(t, catalogService.DeleteCategory(category.ID))
	assert.ErrorIs(t, catalogService.DeleteCategory(category.ID), ErrCategoryNotFound)

	categories, err := catalogService.ListCategories()
	require.NoError(t, err)
	assert.Len(t, categories, 1)
}

func TestCatalogService_CreateProduct(t *testing.T) {
	catalogService, testDB := setupCatalogServiceTest(t)
	category := createTestCategory(t, testDB, "Hosting")

	price := decimal.RequireFromString("99.90")
	negative := decimal.RequireFromString("-1")

	tests := []struct {
		name    string
		input   ProductInput
		wantErr error
	}{
		{
			name: "Valid product",
			input: ProductInput{
				CategoryID: &category.ID,
				Name:       strPtr("Managed VPS"),
				Price:      &price,
				Stock:      intPtr(5),
				Supplier:   strPtr(" Acme "),
			},
		},
		{
			name:    "Duplicate name ignores case",
			input:   ProductInput{CategoryID: &category.ID, Name: strPtr("managed vps")},
			wantErr: ErrProductNameExists,
		},
		{
			name:    "Missing name",
			input:   ProductInput{CategoryID: &category.ID},
			wantErr: ErrNameRequired,
		},
		{
			name:    "Unknown category",
			input:   ProductInput{CategoryID: uintPtr(9999), Name: strPtr("Other")},
			wantErr: ErrCategoryNotFound,
		},
		{
			name:    "Negative price",
			input:   ProductInput{CategoryID: &category.ID, Name: strPtr("Cheap"), Price: &negative},
			wantErr: ErrInvalidPrice,
		},
		{
			name:    "Negative stock",
			input:   ProductInput{CategoryID: &category.ID, Name: strPtr("Scarce"), Stock: intPtr(-1)},
			wantErr: ErrInvalidStock,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			product, err := catalogService.CreateProduct(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, product)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "managed-vps", product.Slug)
			assert.True(t, product.Price.Equal(price))
			assert.Equal(t, "Acme", product.Supplier)
			assert.True(t, product.IsActive)
		})
	}

	exists, err := catalogService.CheckProductName("MANAGED VPS", 0)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = catalogService.CheckProductName("", 0)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCatalogService_UpdateProduct(t *testing.T) {
	catalogService, testDB := setupCatalogServiceTest(t)
	hosting := createTestCategory(t, testDB, "Hosting")
	domains := createTestCategory(t, testDB, "Domains")
	product := createTestProduct(t, testDB, hosting, "Basic VPS", "10.00")
	createTestProduct(t, testDB, hosting, "Pro VPS", "30.00")

	_, err := catalogService.UpdateProduct(product.ID, ProductInput{Name: strPtr("pro vps")})
	assert.ErrorIs(t, err, ErrProductNameExists)

	compare := decimal.NewNullDecimal(decimal.RequireFromString("15.00"))
	updated, err := catalogService.UpdateProduct(product.ID, ProductInput{
		Name:         strPtr("Starter VPS"),
		CategoryID:   &domains.ID,
		ComparePrice: &compare,
		IsActive:     boolPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "starter-vps", updated.Slug)
	assert.Equal(t, domains.ID, updated.CategoryID)
	assert.True(t, updated.ComparePrice.Valid)
	assert.False(t, updated.IsActive)
	assert.True(t, updated.Price.Equal(decimal.RequireFromString("10")))

	_, err = catalogService.UpdateProduct(9999, ProductInput{})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCatalogService_ProductImagesAndDelete(t *testing.T) {
	catalogService, testDB := setupCatalogServiceTest(t)
	category := createTestCategory(t, testDB, "Hosting")
	product := createTestProduct(t, testDB, category, "Basic VPS", "10.00")

	second, err := catalogService.AddProductImage(product.ID, "products/b.png", "back", 2)
	require.NoError(t, err)
	_, err = catalogService.AddProductImage(product.ID, "products/a.png", "front", 1)
	require.NoError(t, err)

	loaded, err := catalogService.GetProductByID(product.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Images, 2)
	assert.Equal(t, "front", loaded.Images[0].Alt)

	_, err = catalogService.AddProductImage(9999, "x.png", "", 0)
	assert.ErrorIs(t, err, ErrProductNotFound)

	require.NoError(t, catalogService.DeleteProductImage(second.ID))
	assert.ErrorIs(t, catalogService.DeleteProductImage(second.ID), ErrProductImageNotFound)

	require.NoError(t, catalogService.DeleteProduct(product.ID))
	assert.ErrorIs(t, catalogService.DeleteProduct(product.ID), ErrProductNotFound)
	_, err = catalogService.GetProductByID(product.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
}
