package main

import (
	"fmt"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type demoPlan struct {
	name  string
	term  model.PlanTerm
	price string
}

type demoProduct struct {
	name        string
	price       string
	stock       int
	supplier    string
	description string
	plans       []demoPlan
}

type demoCategory struct {
	name     string
	products []demoProduct
}

var demoCatalog = []demoCategory{
	{
		name: "Hosting",
		products: []demoProduct{
			{
				name: "Shared Hosting", price: "4.99", stock: 1000, supplier: "Hetzner",
				description: "Managed web hosting with daily backups.",
				plans: []demoPlan{
					{"Monthly", model.TermMonth, "4.99"},
					{"Quarterly", model.TermQuarter, "13.99"},
					{"Yearly", model.TermYear, "49.00"},
				},
			},
			{
				name: "VPS Start", price: "9.90", stock: 200, supplier: "Hetzner",
				description: "2 vCPU, 4 GB RAM, 80 GB SSD.",
				plans: []demoPlan{
					{"Monthly", model.TermMonth, "9.90"},
					{"Yearly", model.TermYear, "99.00"},
				},
			},
		},
	},
	{
		name: "Domains",
		products: []demoProduct{
			{name: ".com registration", price: "12.00", stock: 10000, supplier: "Namecheap",
				description: "One year of .com registration.",
				plans: []demoPlan{{"Yearly", model.TermYear, "12.00"}}},
			{name: "DNS hosting", price: "1.50", stock: 10000, supplier: "Cloudflare",
				description: "Anycast DNS for one zone."},
		},
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a demo catalog",
	Long: `Load demo categories, products, service plans and a welcome article.
The command does nothing when the catalog already has categories.`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	_, closeDB, err := connect()
	if err != nil {
		return err
	}
	defer closeDB()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	gormDB := db.GetDB()
	productRepo := repository.NewProductRepository(gormDB)
	newsRepo := repository.NewNewsRepository(gormDB)
	catalog := service.NewCatalogService(repository.NewCategoryRepository(gormDB), productRepo, newsRepo)
	plans := service.NewPlanService(repository.NewPlanRepository(gormDB), productRepo, repository.NewSubscriptionRepository(gormDB))
	news := service.NewNewsService(newsRepo)

	existing, err := catalog.ListCategories()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		fmt.Println("Catalog already has categories, skipping seed.")
		return nil
	}

	var products, planCount int
	for _, dc := range demoCatalog {
		category, err := catalog.CreateCategory(dc.name)
		if err != nil {
			return fmt.Errorf("category %q: %w", dc.name, err)
		}
		for _, dp := range dc.products {
			product, err := catalog.CreateProduct(productInput(category.ID, dp))
			if err != nil {
				return fmt.Errorf("product %q: %w", dp.name, err)
			}
			products++

			for i, p := range dp.plans {
				if _, err := plans.CreatePlan(product.ID, planInput(p, i)); err != nil {
					return fmt.Errorf("plan %q of %q: %w", p.name, dp.name, err)
				}
				planCount++
			}
		}
	}

	title := "Welcome to the store"
	body := "Browse hosting and domain plans, or ask our staff for a consultation."
	if _, err := news.Create(nil, service.NewsInput{Title: &title, Body: &body}); err != nil {
		return fmt.Errorf("news: %w", err)
	}

	fmt.Printf("Seeded %d categories, %d products, %d plans\n", len(demoCatalog), products, planCount)
	return nil
}

func productInput(categoryID uint, dp demoProduct) service.ProductInput {
	price := decimal.RequireFromString(dp.price)
	active := true
	return service.ProductInput{
		CategoryID:  &categoryID,
		Name:        &dp.name,
		Description: &dp.description,
		Price:       &price,
		Stock:       &dp.stock,
		Supplier:    &dp.supplier,
		IsActive:    &active,
	}
}

func planInput(p demoPlan, ordering int) service.PlanInput {
	price := decimal.RequireFromString(p.price)
	active := true
	return service.PlanInput{
		Name:     &p.name,
		Term:     &p.term,
		Price:    &price,
		IsActive: &active,
		Ordering: &ordering,
	}
}
