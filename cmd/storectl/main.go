package main

import (
	"fmt"
	"os"

	"github.com/ikkim/storefront-backend/config"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "storectl",
	Short: "Storefront maintenance commands",
	Long: `storectl runs one-off maintenance tasks against the storefront database:
schema migration, the first admin account, bulk product import and
subscription expiry.

Connection settings are read from the same environment and .env file as
the API server.`,
	SilenceUsage: true,
}

var verbose bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log SQL-level debug output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// connect loads configuration and opens the database. The returned func
// closes the connection.
func connect() (*config.Config, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := "info"
	if verbose {
		level = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       level,
		Format:      "console",
		EnableColor: true,
		Service:     "storectl",
	})

	if err := db.Initialize(&cfg.Database); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	closeDB := func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}
	return cfg, closeDB, nil
}
