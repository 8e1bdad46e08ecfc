package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/service"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
	"github.com/ikkim/storefront-backend/internal/storage"
	"github.com/ikkim/storefront-backend/pkg/util"
)

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

// serviceErrors maps service sentinels to responses. Order matters only
// where one error wraps another.
var serviceErrors = []errorMapping{
	{service.ErrUsernameExists, http.StatusConflict, apperrors.AuthUsernameExists, "This username is already taken"},
	{service.ErrEmailAlreadyExists, http.StatusConflict, apperrors.AuthEmailAlreadyExists, "This email is already in use"},
	{service.ErrPhoneExists, http.StatusConflict, apperrors.AuthPhoneExists, "This phone number is already in use"},
	{service.ErrInvalidPhone, http.StatusBadRequest, apperrors.ValidationInvalidFormat, "Phone must be 9 to 15 digits, optionally starting with +"},
	{service.ErrPasswordMismatch, http.StatusBadRequest, apperrors.AuthPasswordMismatch, "Passwords do not match"},
	{util.ErrPasswordTooShort, http.StatusBadRequest, apperrors.ValidationInvalidInput, "Password must be at least 8 characters"},
	{util.ErrPasswordNumeric, http.StatusBadRequest, apperrors.ValidationInvalidInput, "Password must not be entirely numeric"},
	{util.ErrPasswordTooLong, http.StatusBadRequest, apperrors.ValidationInvalidInput, "Password is too long"},
	{util.ErrInvalidNumber, http.StatusBadRequest, apperrors.ValidationInvalidFormat, "Invalid number"},
	{util.ErrNegative, http.StatusBadRequest, apperrors.ValidationInvalidRange, "Value must not be negative"},
	{util.ErrPhoneInvalidChars, http.StatusBadRequest, apperrors.ValidationInvalidFormat, "Phone contains invalid characters"},
	{util.ErrPhoneLength, http.StatusBadRequest, apperrors.ValidationInvalidFormat, "Phone must have 8 to 15 digits"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, apperrors.AuthInvalidCredentials, "Invalid login or password"},
	{service.ErrAccountDisabled, http.StatusForbidden, apperrors.AuthAccountDisabled, "This account is disabled"},
	{service.ErrUserNotFound, http.StatusNotFound, apperrors.UserNotFound, "User not found"},
	{util.ErrExpiredToken, http.StatusUnauthorized, apperrors.AuthTokenExpired, "Session expired, please log in again"},
	{util.ErrInvalidToken, http.StatusUnauthorized, apperrors.AuthTokenInvalid, "Invalid authentication token"},

	{service.ErrPhoneLocked, http.StatusConflict, apperrors.ProfilePhoneLocked, "Phone is already set and cannot be changed"},
	{service.ErrProfileImageNotFound, http.StatusNotFound, apperrors.ProfileImageNotFound, "Image not found"},
	{service.ErrProfileImageForbidden, http.StatusForbidden, apperrors.AuthzOwnerOnly, "This image belongs to another user"},
	{service.ErrSelfAction, http.StatusForbidden, apperrors.AuthzSelfAction, "You cannot do this to your own account"},
	{service.ErrRoleChangeNeedsAdmin, http.StatusForbidden, apperrors.AuthzAdminOnly, "Only an admin can change roles"},
	{service.ErrInvalidRole, http.StatusBadRequest, apperrors.ValidationInvalidInput, "Unknown role"},

	{service.ErrProductNotFound, http.StatusNotFound, apperrors.ProductNotFound, "Product not found"},
	{service.ErrCategoryNotFound, http.StatusNotFound, apperrors.CategoryNotFound, "Category not found"},
	{service.ErrProductNameExists, http.StatusConflict, apperrors.ProductNameExists, "A product with this name already exists"},
	{service.ErrProductImageNotFound, http.StatusNotFound, apperrors.ProductImageNotFound, "Image not found"},
	{service.ErrInvalidPrice, http.StatusBadRequest, apperrors.ValidationInvalidInput, "Price must not be negative"},
	{service.ErrInvalidStock, http.StatusBadRequest, apperrors.ValidationInvalidInput, "Stock must not be negative"},
	{service.ErrNameRequired, http.StatusBadRequest, apperrors.ValidationRequired, "Name is required"},
	{service.ErrPlanNotFound, http.StatusNotFound, apperrors.PlanNotFound, "Service plan not found"},
	{service.ErrPlanProductMismatch, http.StatusBadRequest, apperrors.ValidationInvalidInput, "Plan does not belong to this product"},
	{model.ErrInvalidPlanTerm, http.StatusBadRequest, apperrors.PlanInvalidTerm, "Term must be month, quarter, year or custom"},
	{model.ErrCustomDaysMissing, http.StatusBadRequest, apperrors.PlanInvalidTerm, "A custom term needs custom_days greater than 0"},

	{service.ErrCartLineNotFound, http.StatusNotFound, apperrors.CartLineNotFound, "Product is not in the cart"},
	{service.ErrNothingSelected, http.StatusBadRequest, apperrors.CartNothingSelected, "Select at least one cart item"},
	{service.ErrOrderNotFound, http.StatusNotFound, apperrors.OrderNotFound, "Order not found"},
	{service.ErrInvalidTransition, http.StatusConflict, apperrors.OrderInvalidTransition, "The order status does not allow this change"},
	{service.ErrInvalidOrderStatus, http.StatusBadRequest, apperrors.ValidationInvalidInput, "Unknown order status"},

	{service.ErrConsultationNotFound, http.StatusNotFound, apperrors.ConsultNotFound, "Consultation request not found"},
	{service.ErrConsultationTooFrequent, http.StatusTooManyRequests, apperrors.ConsultTooFrequent, "A request for this product was just sent, please wait"},
	{service.ErrInvalidConsultStatus, http.StatusBadRequest, apperrors.ConsultInvalidStatus, "Unknown consultation status"},
	{service.ErrInvalidQuantity, http.StatusBadRequest, apperrors.ValidationInvalidInput, "Quantity must be at least 1"},

	{service.ErrNewsNotFound, http.StatusNotFound, apperrors.NewsNotFound, "Article not found"},
	{service.ErrTitleRequired, http.StatusBadRequest, apperrors.ValidationRequired, "Title is required"},

	{service.ErrInvalidReportRange, http.StatusBadRequest, apperrors.ReportInvalidRange, "Invalid date range"},
	{service.ErrInvalidReportKind, http.StatusBadRequest, apperrors.ReportInvalidKind, "Unknown report kind"},
	{service.ErrInvalidReportFormat, http.StatusBadRequest, apperrors.ReportInvalidFormat, "Format must be csv or xlsx"},

	{storage.ErrInvalidFolder, http.StatusBadRequest, apperrors.UploadInvalidFolder, "Folder must be products, news, avatars or gallery"},
	{storage.ErrInvalidContentType, http.StatusBadRequest, apperrors.UploadInvalidFileType, "Only image files are allowed (JPEG, PNG, GIF, WEBP)"},
}

// respondError writes the mapped response for a known service error and
// falls back to ParseAndRespond for database errors.
func respondError(c *gin.Context, err error, operation string) {
	log := middleware.GetLoggerFromContext(c)
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			log.Warn("Request rejected", map[string]interface{}{
				"operation": operation,
				"reason":    err.Error(),
				"status":    m.status,
			})
			apperrors.RespondWithError(c, m.status, m.code, m.message)
			return
		}
	}

	log.Error("Request failed", err, map[string]interface{}{
		"operation": operation,
	})
	apperrors.ParseAndRespond(c, err, operation)
}

// parseIDParam reads a positive integer path parameter, answering 400 otherwise.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		middleware.GetLoggerFromContext(c).Warn("Invalid id parameter", map[string]interface{}{
			"param": name,
			"value": c.Param(name),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// requireUserID returns the authenticated user id or answers 401.
func requireUserID(c *gin.Context) (uint, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return 0, false
	}
	return userID, true
}

// UserLoader fetches the account behind a token.
type UserLoader interface {
	GetUserByID(id uint) (*model.User, error)
}

// currentUser loads the authenticated account and refuses disabled ones.
func currentUser(c *gin.Context, users UserLoader) (*model.User, bool) {
	userID, ok := requireUserID(c)
	if !ok {
		return nil, false
	}
	user, err := users.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.Unauthorized(c, "")
			return nil, false
		}
		respondError(c, err, "load current user")
		return nil, false
	}
	if !user.IsActive {
		apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthAccountDisabled, "This account is disabled")
		return nil, false
	}
	return user, true
}

// currentStaff is currentUser for back office actions: the stored role must
// still be staff, whatever the token says.
func currentStaff(c *gin.Context, users UserLoader) (*model.User, bool) {
	user, ok := currentUser(c, users)
	if !ok {
		return nil, false
	}
	if !user.Role.IsStaff() {
		middleware.GetLoggerFromContext(c).Warn("Non staff account on staff route", map[string]interface{}{
			"user_id": user.ID,
			"role":    user.Role,
		})
		apperrors.Forbidden(c, "")
		return nil, false
	}
	return user, true
}

func bindError(c *gin.Context, err error) {
	middleware.GetLoggerFromContext(c).Warn("Invalid request body", map[string]interface{}{
		"path":  c.Request.URL.Path,
		"error": err.Error(),
	})
	apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
}
