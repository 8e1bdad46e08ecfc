package main

import (
	"fmt"
	"os"

	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/spf13/cobra"
)

var adminFlags db.AdminSeed

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create the first admin account",
	Long: `Create the first admin account. Nothing happens when an admin already
exists. Flags default to ADMIN_USERNAME, ADMIN_EMAIL and ADMIN_PASSWORD.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, closeDB, err := connect()
		if err != nil {
			return err
		}
		defer closeDB()

		if err := db.Migrate(); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		if err := db.SeedAdmin(db.GetDB(), adminFlags); err != nil {
			return fmt.Errorf("failed to create admin: %w", err)
		}
		return nil
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminFlags.Username, "username", os.Getenv("ADMIN_USERNAME"), "admin username")
	createAdminCmd.Flags().StringVar(&adminFlags.Email, "email", os.Getenv("ADMIN_EMAIL"), "admin email")
	createAdminCmd.Flags().StringVar(&adminFlags.Password, "password", os.Getenv("ADMIN_PASSWORD"), "admin password")
	rootCmd.AddCommand(createAdminCmd)
}
