package main

import (
	"fmt"
	"time"

	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/spf13/cobra"
)

var expireSubscriptionsCmd = &cobra.Command{
	Use:   "expire-subscriptions",
	Short: "Mark subscriptions whose end date has passed as expired",
	Long: `Run the subscription expiry job once. The API server runs the same job
on SUBSCRIPTION_EXPIRY_CRON; this command is for hosts that schedule it
externally.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, closeDB, err := connect()
		if err != nil {
			return err
		}
		defer closeDB()

		gormDB := db.GetDB()
		plans := service.NewPlanService(
			repository.NewPlanRepository(gormDB),
			repository.NewProductRepository(gormDB),
			repository.NewSubscriptionRepository(gormDB),
		)
		n, err := plans.ExpireSubscriptions(time.Now())
		if err != nil {
			return fmt.Errorf("expiry failed: %w", err)
		}
		fmt.Printf("Expired %d subscriptions\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(expireSubscriptionsCmd)
}
