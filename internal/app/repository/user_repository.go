package repository

import (
	"strings"
	"time"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type UserFilter struct {
	Search string // username, email, names or phone
	Offset int
	Limit  int
}

type UserRepository interface {
	Create(user *model.User) error
	FindByID(id uint) (*model.User, error)
	FindByLogin(login string) (*model.User, error)
	UsernameExists(username string, excludeID uint) (bool, error)
	EmailExists(email string, excludeID uint) (bool, error)
	PhoneTaken(phone string, excludeUserID uint) (bool, error)
	List(filter UserFilter) ([]model.User, int64, error)
	UpdateFields(id uint, fields map[string]interface{}) error
	TouchLastLogin(id uint, at time.Time) error

	FindProfile(userID uint) (*model.Profile, error)
	UpdateProfileFields(profileID uint, fields map[string]interface{}) error
	AddProfileImage(image *model.ProfileImage) error
	FindProfileImage(id uint) (*model.ProfileImage, error)
	DeleteProfileImage(id uint) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts the user and, when set, its profile in one statement group.
func (r *userRepository) Create(user *model.User) error {
	logger.Debug("Creating user in database", map[string]interface{}{
		"username": user.Username,
		"email":    user.Email,
	})

	if err := r.db.Create(user).Error; err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"username": user.Username,
			"email":    user.Email,
		})
		return err
	}

	logger.Debug("User created in database", map[string]interface{}{
		"user_id": user.ID,
	})
	return nil
}

func (r *userRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.db.Preload("Profile").Preload("Profile.Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at DESC")
	}).First(&user, id).Error
	if err != nil {
		logger.Debug("User not found by ID", map[string]interface{}{
			"user_id": id,
			"error":   err.Error(),
		})
		return nil, err
	}
	return &user, nil
}

// FindByLogin matches the username or the email, both case-insensitively.
func (r *userRepository) FindByLogin(login string) (*model.User, error) {
	login = strings.TrimSpace(login)

	var user model.User
	err := r.db.Preload("Profile").
		Where("LOWER(username) = LOWER(?) OR LOWER(email) = LOWER(?)", login, login).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UsernameExists(username string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.Model(&model.User{}).Where("LOWER(username) = LOWER(?)", strings.TrimSpace(username))
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *userRepository) EmailExists(email string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.Model(&model.User{}).Where("LOWER(email) = LOWER(?)", strings.TrimSpace(email))
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *userRepository) PhoneTaken(phone string, excludeUserID uint) (bool, error) {
	var count int64
	query := r.db.Model(&model.Profile{}).Where("phone = ?", phone)
	if excludeUserID != 0 {
		query = query.Where("user_id <> ?", excludeUserID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *userRepository) List(filter UserFilter) ([]model.User, int64, error) {
	logger.Debug("Listing users", map[string]interface{}{
		"search": filter.Search,
		"offset": filter.Offset,
		"limit":  filter.Limit,
	})

	query := r.db.Model(&model.User{}).
		Joins("LEFT JOIN profiles ON profiles.user_id = users.id")

	if q := strings.TrimSpace(filter.Search); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where(
			"LOWER(users.username) LIKE ? OR LOWER(users.email) LIKE ? OR LOWER(users.first_name) LIKE ? OR LOWER(users.last_name) LIKE ? OR profiles.phone LIKE ?",
			like, like, like, like, "%"+q+"%",
		)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		logger.Error("Failed to count users", err)
		return nil, 0, err
	}

	var users []model.User
	err := query.Select("users.*").
		Preload("Profile").
		Order("users.id DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&users).Error
	if err != nil {
		logger.Error("Failed to list users", err)
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepository) UpdateFields(id uint, fields map[string]interface{}) error {
	logger.Debug("Updating user fields", map[string]interface{}{
		"user_id": id,
		"fields":  len(fields),
	})

	result := r.db.Model(&model.User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		logger.Error("Failed to update user", result.Error, map[string]interface{}{
			"user_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) TouchLastLogin(id uint, at time.Time) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).UpdateColumn("last_login_at", at).Error
}

// FindProfile returns the user's profile, creating an empty one for
// accounts made before profiles existed.
func (r *userRepository) FindProfile(userID uint) (*model.Profile, error) {
	profile := model.Profile{UserID: userID}
	err := r.db.Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at DESC")
	}).Where(model.Profile{UserID: userID}).FirstOrCreate(&profile).Error
	if err != nil {
		logger.Error("Failed to load profile", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return &profile, nil
}

func (r *userRepository) UpdateProfileFields(profileID uint, fields map[string]interface{}) error {
	return r.db.Model(&model.Profile{}).Where("id = ?", profileID).Updates(fields).Error
}

func (r *userRepository) AddProfileImage(image *model.ProfileImage) error {
	if err := r.db.Create(image).Error; err != nil {
		logger.Error("Failed to add profile image", err, map[string]interface{}{
			"profile_id": image.ProfileID,
		})
		return err
	}
	return nil
}

func (r *userRepository) FindProfileImage(id uint) (*model.ProfileImage, error) {
	var image model.ProfileImage
	if err := r.db.First(&image, id).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

func (r *userRepository) DeleteProfileImage(id uint) error {
	return r.db.Delete(&model.ProfileImage{}, id).Error
}
