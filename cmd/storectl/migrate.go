package main

import (
	"fmt"

	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, closeDB, err := connect()
		if err != nil {
			return err
		}
		defer closeDB()

		if err := db.Migrate(); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Printf("Migrated %d models\n", len(db.Models()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
