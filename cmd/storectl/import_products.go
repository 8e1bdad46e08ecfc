package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/spf13/cobra"
)

var assumeYes bool

var importProductsCmd = &cobra.Command{
	Use:   "import-products <file.xlsx>",
	Short: "Create or update products from a spreadsheet",
	Long: `Import products from the first sheet of an XLSX workbook.

Columns: category, name, price, compare_price, stock, supplier, description,
image, active. The first row is a header. Products are matched by name;
missing categories are created.`,
	Args: cobra.ExactArgs(1),
	RunE: runImportProducts,
}

func init() {
	importProductsCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(importProductsCmd)
}

func runImportProducts(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer f.Close()

	fmt.Printf("Reading XLSX file: %s\n", args[0])
	rows, rejected, err := service.ParseProductSheet(f)
	if err != nil {
		return fmt.Errorf("failed to read XLSX: %w", err)
	}
	for _, line := range rejected {
		fmt.Printf("  rejected: %s\n", line)
	}
	fmt.Printf("Total products to import: %d\n", len(rows))
	if len(rows) == 0 {
		return nil
	}

	if !assumeYes && !confirm(cmd, "Do you want to proceed with the import? (yes/no): ") {
		fmt.Println("Import cancelled.")
		return nil
	}

	_, closeDB, err := connect()
	if err != nil {
		return err
	}
	defer closeDB()

	gormDB := db.GetDB()
	importer := service.NewProductImporter(
		repository.NewCategoryRepository(gormDB),
		repository.NewProductRepository(gormDB),
	)
	result, err := importer.Import(rows)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Printf("Created: %d, updated: %d, skipped: %d\n", result.Created, result.Updated, len(result.Skipped))
	for _, line := range result.Skipped {
		fmt.Printf("  skipped: %s\n", line)
	}
	return nil
}

func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Print(prompt)
	answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "yes" || answer == "y"
}
