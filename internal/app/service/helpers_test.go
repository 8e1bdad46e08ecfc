package service

import (
	"testing"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/pkg/util"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createTestCategory(t *testing.T, testDB *gorm.DB, name string) *model.Category {
	category := &model.Category{Name: name, Slug: util.Slugify(name)}
	require.NoError(t, testDB.Create(category).Error)
	return category
}

func createTestProduct(t *testing.T, testDB *gorm.DB, category *model.Category, name, price string) *model.Product {
	product := &model.Product{
		CategoryID: category.ID,
		Name:       name,
		Slug:       util.Slugify(name),
		Price:      decimal.RequireFromString(price),
		Stock:      10,
		IsActive:   true,
	}
	require.NoError(t, testDB.Create(product).Error)
	return product
}

func createTestPlan(t *testing.T, testDB *gorm.DB, product *model.Product, name string, term model.PlanTerm, price string) *model.ServicePlan {
	plan := &model.ServicePlan{
		ProductID: product.ID,
		Name:      name,
		Term:      term,
		Price:     decimal.RequireFromString(price),
		IsActive:  true,
	}
	require.NoError(t, testDB.Create(plan).Error)
	return plan
}

func uintPtr(v uint) *uint { return &v }

func intPtr(v int) *int { return &v }

func boolPtr(v bool) *bool { return &v }
