package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

// UserController is the staff user directory.
type UserController struct {
	accountService service.AccountService
	users          UserLoader
}

func NewUserController(accountService service.AccountService, users UserLoader) *UserController {
	return &UserController{
		accountService: accountService,
		users:          users,
	}
}

type UpdateUserRequest struct {
	UpdateProfileRequest
	Email    *string         `json:"email" binding:"omitempty,email"`
	IsActive *bool           `json:"is_active"`
	Role     *model.UserRole `json:"role"`
}

// StaffUserResponse adds the fields only staff see.
type StaffUserResponse struct {
	ProfileResponse
	IsActive    bool        `json:"is_active"`
	LastLoginAt interface{} `json:"last_login_at"`
	DateJoined  interface{} `json:"date_joined"`
}

func newStaffUserResponse(user *model.User) StaffUserResponse {
	return StaffUserResponse{
		ProfileResponse: newProfileResponse(user),
		IsActive:        user.IsActive,
		LastLoginAt:     user.LastLoginAt,
		DateJoined:      user.CreatedAt,
	}
}

// ListUsers searches accounts
// GET /api/v1/staff/users?q=&page=
func (ctrl *UserController) ListUsers(c *gin.Context) {
	result, err := ctrl.accountService.ListUsers(c.Query("q"), c.Query("page"))
	if err != nil {
		respondError(c, err, "list users")
		return
	}

	users := make([]StaffUserResponse, 0, len(result.Users))
	for i := range result.Users {
		users = append(users, newStaffUserResponse(&result.Users[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"users":      users,
		"q":          c.Query("q"),
		"pagination": result.Page,
	})
}

// GetUser returns one account
// GET /api/v1/staff/users/:id
func (ctrl *UserController) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := ctrl.accountService.GetUser(id)
	if err != nil {
		respondError(c, err, "get user")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": newStaffUserResponse(user),
	})
}

// UpdateUser edits an account; role changes need an admin
// PUT /api/v1/staff/users/:id
func (ctrl *UserController) UpdateUser(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	editor, ok := currentStaff(c, ctrl.users)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := ctrl.accountService.UpdateUser(editor, id, service.UserUpdateInput{
		ProfileInput: req.input(),
		Email:        req.Email,
		IsActive:     req.IsActive,
		Role:         req.Role,
	})
	if err != nil {
		respondError(c, err, "update user")
		return
	}

	log.Info("User updated by staff", map[string]interface{}{
		"editor_id": editor.ID,
		"user_id":   id,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "User updated",
		"user":    newStaffUserResponse(user),
	})
}

// ToggleActive flips is_active; not allowed on oneself
// POST /api/v1/staff/users/:id/toggle-active
func (ctrl *UserController) ToggleActive(c *gin.Context) {
	editor, ok := currentStaff(c, ctrl.users)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := ctrl.accountService.ToggleActive(editor, id)
	if err != nil {
		respondError(c, err, "update user")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": newStaffUserResponse(user),
	})
}
