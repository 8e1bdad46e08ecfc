package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

type ProfileController struct {
	accountService service.AccountService
}

func NewProfileController(accountService service.AccountService) *ProfileController {
	return &ProfileController{
		accountService: accountService,
	}
}

type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=150"`
	LastName  *string `json:"last_name" binding:"omitempty,max=150"`
	Phone     *string `json:"phone"`
	Avatar    *string `json:"avatar" binding:"omitempty,max=500"` // URL from the upload API
}

func (r UpdateProfileRequest) input() service.ProfileInput {
	return service.ProfileInput{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Phone:     r.Phone,
		Avatar:    r.Avatar,
	}
}

type AddProfileImageRequest struct {
	Image   string `json:"image" binding:"required,max=500"`
	Caption string `json:"caption" binding:"max=255"`
}

type ProfileResponse struct {
	UserResponse
	Images []model.ProfileImage `json:"images"`
}

func newProfileResponse(user *model.User) ProfileResponse {
	resp := ProfileResponse{UserResponse: newUserResponse(user), Images: []model.ProfileImage{}}
	if user.Profile != nil && user.Profile.Images != nil {
		resp.Images = user.Profile.Images
	}
	return resp
}

// GetProfile returns the current user's profile
// GET /api/v1/profile
func (ctrl *ProfileController) GetProfile(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	user, err := ctrl.accountService.GetProfile(userID)
	if err != nil {
		respondError(c, err, "get user profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile": newProfileResponse(user),
	})
}

// UpdateProfile edits names, avatar and the phone when none is stored yet
// PUT /api/v1/profile
func (ctrl *ProfileController) UpdateProfile(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := ctrl.accountService.UpdateProfile(userID, req.input())
	if err != nil {
		respondError(c, err, "update user profile")
		return
	}

	log.Info("Profile updated", map[string]interface{}{
		"user_id": userID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated",
		"profile": newProfileResponse(user),
	})
}

// AddImage appends a gallery image
// POST /api/v1/profile/images
func (ctrl *ProfileController) AddImage(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req AddProfileImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	image, err := ctrl.accountService.AddProfileImage(userID, req.Image, req.Caption)
	if err != nil {
		respondError(c, err, "create profile image")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"image": image,
	})
}

// DeleteImage removes one of the user's own gallery images
// DELETE /api/v1/profile/images/:id
func (ctrl *ProfileController) DeleteImage(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	imageID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.accountService.DeleteProfileImage(userID, imageID); err != nil {
		respondError(c, err, "delete profile image")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Image deleted",
	})
}
