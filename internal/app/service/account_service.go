package service

import (
	"errors"
	"strings"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/ikkim/storefront-backend/pkg/util"
	"gorm.io/gorm"
)

const UsersPerPage = 12

var (
	ErrPhoneLocked           = errors.New("phone is already set and cannot be changed")
	ErrProfileImageNotFound  = errors.New("profile image not found")
	ErrSelfAction            = errors.New("cannot perform this action on yourself")
	ErrRoleChangeNeedsAdmin  = errors.New("only an admin can change roles")
	ErrInvalidRole           = errors.New("invalid role")
	ErrProfileImageForbidden = errors.New("profile image belongs to another user")
)

// ProfileInput carries optional profile edits. Nil fields are left unchanged.
type ProfileInput struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Avatar    *string
}

// UserUpdateInput is a staff edit of another account.
type UserUpdateInput struct {
	ProfileInput
	Email    *string
	IsActive *bool
	Role     *model.UserRole
}

type UserPage struct {
	Users []model.User `json:"users"`
	util.Page
}

type AccountService interface {
	GetProfile(userID uint) (*model.User, error)
	UpdateProfile(userID uint, input ProfileInput) (*model.User, error)
	AddProfileImage(userID uint, image, caption string) (*model.ProfileImage, error)
	DeleteProfileImage(userID, imageID uint) error

	ListUsers(q, page string) (*UserPage, error)
	GetUser(id uint) (*model.User, error)
	UpdateUser(editor *model.User, id uint, input UserUpdateInput) (*model.User, error)
	ToggleActive(editor *model.User, id uint) (*model.User, error)
}

type accountService struct {
	userRepo repository.UserRepository
}

func NewAccountService(userRepo repository.UserRepository) AccountService {
	return &accountService{userRepo: userRepo}
}

func (s *accountService) GetProfile(userID uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.Profile == nil {
		profile, err := s.userRepo.FindProfile(userID)
		if err != nil {
			return nil, err
		}
		user.Profile = profile
	}
	return user, nil
}

// UpdateProfile applies self-service edits. A phone can only be stored once;
// afterwards only staff may change it.
func (s *accountService) UpdateProfile(userID uint, input ProfileInput) (*model.User, error) {
	logger.Info("Updating profile", map[string]interface{}{
		"user_id": userID,
	})

	user, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}
	if input.Phone != nil && user.Profile.PhoneValue() != "" {
		normalized, err := util.NormalizePhone(*input.Phone)
		if err != nil || normalized != user.Profile.PhoneValue() {
			return nil, ErrPhoneLocked
		}
	}

	if err := s.applyProfile(user, input); err != nil {
		return nil, err
	}
	return s.GetProfile(userID)
}

func (s *accountService) applyProfile(user *model.User, input ProfileInput) error {
	userFields := map[string]interface{}{}
	if input.FirstName != nil {
		userFields["first_name"] = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		userFields["last_name"] = strings.TrimSpace(*input.LastName)
	}
	if len(userFields) > 0 {
		if err := s.userRepo.UpdateFields(user.ID, userFields); err != nil {
			return err
		}
	}

	profileFields := map[string]interface{}{}
	if input.Avatar != nil {
		profileFields["avatar"] = strings.TrimSpace(*input.Avatar)
	}
	if input.Phone != nil {
		raw := strings.TrimSpace(*input.Phone)
		if raw == "" {
			profileFields["phone"] = nil
		} else {
			phone, err := util.NormalizePhone(raw)
			if err != nil {
				return ErrInvalidPhone
			}
			if phone != user.Profile.PhoneValue() {
				taken, err := s.userRepo.PhoneTaken(phone, user.ID)
				if err != nil {
					return err
				}
				if taken {
					return ErrPhoneExists
				}
			}
			profileFields["phone"] = phone
		}
	}
	if len(profileFields) > 0 {
		if err := s.userRepo.UpdateProfileFields(user.Profile.ID, profileFields); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrPhoneExists
			}
			logger.Error("Failed to update profile", err, map[string]interface{}{
				"user_id": user.ID,
			})
			return err
		}
	}
	return nil
}

func (s *accountService) AddProfileImage(userID uint, image, caption string) (*model.ProfileImage, error) {
	profile, err := s.userRepo.FindProfile(userID)
	if err != nil {
		return nil, err
	}
	img := &model.ProfileImage{
		ProfileID: profile.ID,
		Image:     strings.TrimSpace(image),
		Caption:   strings.TrimSpace(caption),
	}
	if err := s.userRepo.AddProfileImage(img); err != nil {
		return nil, err
	}
	logger.Info("Profile image added", map[string]interface{}{
		"user_id":  userID,
		"image_id": img.ID,
	})
	return img, nil
}

func (s *accountService) DeleteProfileImage(userID, imageID uint) error {
	img, err := s.userRepo.FindProfileImage(imageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProfileImageNotFound
		}
		return err
	}
	profile, err := s.userRepo.FindProfile(userID)
	if err != nil {
		return err
	}
	if img.ProfileID != profile.ID {
		logger.Warn("Attempt to delete someone else's profile image", map[string]interface{}{
			"user_id":  userID,
			"image_id": imageID,
		})
		return ErrProfileImageForbidden
	}
	return s.userRepo.DeleteProfileImage(imageID)
}

func (s *accountService) ListUsers(q, page string) (*UserPage, error) {
	_, total, err := s.userRepo.List(repository.UserFilter{Search: q, Limit: 1})
	if err != nil {
		return nil, err
	}
	p := util.Paginate(page, UsersPerPage, total)

	users, _, err := s.userRepo.List(repository.UserFilter{
		Search: q,
		Offset: p.Offset(),
		Limit:  p.PerPage,
	})
	if err != nil {
		return nil, err
	}
	return &UserPage{Users: users, Page: p}, nil
}

func (s *accountService) GetUser(id uint) (*model.User, error) {
	return s.GetProfile(id)
}

func (s *accountService) UpdateUser(editor *model.User, id uint, input UserUpdateInput) (*model.User, error) {
	logger.Info("Staff updating user", map[string]interface{}{
		"editor_id": editor.ID,
		"user_id":   id,
	})

	user, err := s.GetProfile(id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		exists, err := s.userRepo.EmailExists(email, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrEmailAlreadyExists
		}
		fields["email"] = email
	}
	if input.IsActive != nil && *input.IsActive != user.IsActive {
		if editor.ID == id {
			return nil, ErrSelfAction
		}
		fields["is_active"] = *input.IsActive
	}
	if input.Role != nil && *input.Role != user.Role {
		if !input.Role.Valid() {
			return nil, ErrInvalidRole
		}
		if editor.Role != model.RoleAdmin {
			return nil, ErrRoleChangeNeedsAdmin
		}
		if editor.ID == id {
			return nil, ErrSelfAction
		}
		fields["role"] = *input.Role
	}
	if len(fields) > 0 {
		if err := s.userRepo.UpdateFields(id, fields); err != nil {
			return nil, err
		}
	}

	if err := s.applyProfile(user, input.ProfileInput); err != nil {
		return nil, err
	}
	return s.GetProfile(id)
}

func (s *accountService) ToggleActive(editor *model.User, id uint) (*model.User, error) {
	if editor.ID == id {
		return nil, ErrSelfAction
	}
	user, err := s.GetProfile(id)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateFields(id, map[string]interface{}{"is_active": !user.IsActive}); err != nil {
		return nil, err
	}
	logger.Info("User active flag toggled", map[string]interface{}{
		"editor_id": editor.ID,
		"user_id":   id,
		"is_active": !user.IsActive,
	})
	user.IsActive = !user.IsActive
	return user, nil
}
