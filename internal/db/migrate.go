package db

import (
	"errors"
	"os"
	"strings"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/ikkim/storefront-backend/pkg/util"
	"gorm.io/gorm"
)

// Models lists every persisted model in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Profile{},
		&model.ProfileImage{},
		&model.Category{},
		&model.Product{},
		&model.ProductImage{},
		&model.ServicePlan{},
		&model.Order{},
		&model.OrderItem{},
		&model.Subscription{},
		&model.ConsultationRequest{},
		&model.News{},
		&model.PageView{},
	}
}

// Migrate runs database migrations on the global connection
func Migrate() error {
	return MigrateDB(DB)
}

// MigrateDB runs AutoMigrate for all models on db.
func MigrateDB(db *gorm.DB) error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := db.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed adds initial data to the database
func Seed() error {
	return SeedAdmin(DB, AdminSeed{
		Username: os.Getenv("ADMIN_USERNAME"),
		Email:    os.Getenv("ADMIN_EMAIL"),
		Password: os.Getenv("ADMIN_PASSWORD"),
	})
}

type AdminSeed struct {
	Username string
	Email    string
	Password string
}

var ErrAdminSeedIncomplete = errors.New("admin username, email and password are required")

// SeedAdmin creates the first admin account. It does nothing when an admin
// already exists, and is skipped silently when no credentials are configured.
func SeedAdmin(db *gorm.DB, seed AdminSeed) error {
	var count int64
	if err := db.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Info("Admin account already exists, skipping seeding")
		return nil
	}

	if seed.Username == "" && seed.Email == "" && seed.Password == "" {
		logger.Warn("No admin credentials configured, skipping admin seeding")
		return nil
	}
	if seed.Username == "" || seed.Email == "" || seed.Password == "" {
		return ErrAdminSeedIncomplete
	}

	hash, err := util.HashPassword(seed.Password)
	if err != nil {
		return err
	}

	admin := model.User{
		Username:     seed.Username,
		Email:        strings.ToLower(seed.Email),
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		IsActive:     true,
		Profile:      &model.Profile{},
	}
	if err := db.Create(&admin).Error; err != nil {
		logger.Error("Failed to seed admin account", err)
		return err
	}

	logger.Info("Seeded admin account", map[string]interface{}{
		"user_id":  admin.ID,
		"username": admin.Username,
	})
	return nil
}
