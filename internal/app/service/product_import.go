package service

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/ikkim/storefront-backend/pkg/util"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

var ErrEmptySheet = errors.New("no data found in sheet")

// ProductImportRow is one spreadsheet line. Column order:
// category, name, price, compare_price, stock, supplier, description, image, active.
type ProductImportRow struct {
	Line         int
	Category     string
	Name         string
	Price        decimal.Decimal
	ComparePrice decimal.NullDecimal
	Stock        int
	Supplier     string
	Description  string
	Image        string
	IsActive     bool
}

type ImportResult struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Skipped []string `json:"skipped"`
}

// ParseProductSheet reads the first sheet of an XLSX workbook. The first row
// is a header. Rows with a bad price or stock are reported, not fatal.
func ParseProductSheet(r io.Reader) ([]ProductImportRow, []string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, nil, ErrEmptySheet
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, ErrEmptySheet
	}

	var (
		parsed  []ProductImportRow
		skipped []string
	)
	for i, row := range rows[1:] {
		line := i + 2
		cell := func(idx int) string {
			if idx < len(row) {
				return strings.TrimSpace(row[idx])
			}
			return ""
		}

		item := ProductImportRow{
			Line:        line,
			Category:    cell(0),
			Name:        cell(1),
			Supplier:    cell(5),
			Description: cell(6),
			Image:       cell(7),
			IsActive:    parseActiveCell(cell(8)),
		}
		if item.Category == "" || item.Name == "" {
			skipped = append(skipped, fmt.Sprintf("line %d: category and name are required", line))
			continue
		}

		price, err := util.ParseLocalizedDecimal(cell(2))
		if err != nil || price.IsNegative() {
			skipped = append(skipped, fmt.Sprintf("line %d: invalid price %q", line, cell(2)))
			continue
		}
		item.Price = price

		if raw := cell(3); raw != "" {
			compare, err := util.ParseLocalizedDecimal(raw)
			if err != nil || compare.IsNegative() {
				skipped = append(skipped, fmt.Sprintf("line %d: invalid compare price %q", line, raw))
				continue
			}
			item.ComparePrice = decimal.NewNullDecimal(compare)
		}

		stock, err := util.ParseLocalizedInt(cell(4))
		if err != nil {
			skipped = append(skipped, fmt.Sprintf("line %d: invalid stock %q", line, cell(4)))
			continue
		}
		item.Stock = stock

		parsed = append(parsed, item)
	}
	return parsed, skipped, nil
}

func parseActiveCell(s string) bool {
	switch strings.ToLower(s) {
	case "0", "no", "n", "false", "off":
		return false
	}
	return true
}

// ProductImporter upserts spreadsheet rows. Products are matched by name,
// categories are created on first sight.
type ProductImporter struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
}

func NewProductImporter(categoryRepo repository.CategoryRepository, productRepo repository.ProductRepository) *ProductImporter {
	return &ProductImporter{categoryRepo: categoryRepo, productRepo: productRepo}
}

func (imp *ProductImporter) Import(rows []ProductImportRow) (*ImportResult, error) {
	result := &ImportResult{Skipped: []string{}}
	categories := map[string]*model.Category{}

	for _, row := range rows {
		key := strings.ToLower(row.Category)
		category, ok := categories[key]
		if !ok {
			slug, err := util.UniqueSlug(util.Slugify(row.Category), func(candidate string) (bool, error) {
				return imp.categoryRepo.SlugExists(candidate, 0)
			})
			if err != nil {
				return result, err
			}
			category, err = imp.categoryRepo.FindOrCreateByName(row.Category, slug)
			if err != nil {
				return result, err
			}
			categories[key] = category
		}

		existing, err := imp.productRepo.FindByName(row.Name)
		switch {
		case err == nil:
			fields := map[string]interface{}{
				"category_id":   category.ID,
				"price":         row.Price,
				"compare_price": row.ComparePrice,
				"stock":         row.Stock,
				"supplier":      row.Supplier,
				"is_active":     row.IsActive,
			}
			if row.Description != "" {
				fields["description"] = row.Description
			}
			if row.Image != "" {
				fields["image"] = row.Image
			}
			if err := imp.productRepo.Update(existing.ID, fields); err != nil {
				result.Skipped = append(result.Skipped, fmt.Sprintf("line %d: %v", row.Line, err))
				continue
			}
			result.Updated++
		case errors.Is(err, gorm.ErrRecordNotFound):
			slug, err := util.UniqueSlug(util.Slugify(row.Name), func(candidate string) (bool, error) {
				return imp.productRepo.SlugExists(candidate, 0)
			})
			if err != nil {
				return result, err
			}
			product := &model.Product{
				CategoryID:   category.ID,
				Name:         row.Name,
				Slug:         slug,
				Image:        row.Image,
				Description:  row.Description,
				Price:        row.Price,
				ComparePrice: row.ComparePrice,
				Stock:        row.Stock,
				Supplier:     row.Supplier,
				IsActive:     row.IsActive,
			}
			if err := imp.productRepo.Create(product); err != nil {
				result.Skipped = append(result.Skipped, fmt.Sprintf("line %d: %v", row.Line, err))
				continue
			}
			result.Created++
		default:
			return result, err
		}
	}

	logger.Info("Product import finished", map[string]interface{}{
		"created": result.Created,
		"updated": result.Updated,
		"skipped": len(result.Skipped),
	})
	return result, nil
}
