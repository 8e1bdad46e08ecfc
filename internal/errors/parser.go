package errors

import (
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is a code/message pair derived from a lower level error.
type ErrorInfo struct {
	Code    string
	Message string
	Status  int
}

// ParseError turns database and infrastructure errors into a client safe
// code and message. context names the operation ("create product", "update user").
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: "Something went wrong", Status: http.StatusInternalServerError}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Code: ResourceNotFound, Message: notFoundMessage(context), Status: http.StatusNotFound}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return parseDuplicateKeyError(err.Error())
	}

	errLower := strings.ToLower(err.Error())

	// postgres 23505 / sqlite "UNIQUE constraint failed"
	if strings.Contains(errLower, "duplicate key") || strings.Contains(errLower, "unique constraint") {
		return parseDuplicateKeyError(errLower)
	}

	// postgres 23503 / sqlite "FOREIGN KEY constraint failed"
	if strings.Contains(errLower, "foreign key constraint") {
		if strings.Contains(errLower, "still referenced") {
			return ErrorInfo{Code: ResourceConflict, Message: "The record is still in use and cannot be deleted", Status: http.StatusConflict}
		}
		return ErrorInfo{Code: ResourceNotFound, Message: "A referenced record does not exist", Status: http.StatusBadRequest}
	}

	if strings.Contains(errLower, "not null constraint") || strings.Contains(errLower, "violates not-null constraint") {
		return ErrorInfo{Code: ValidationRequired, Message: "A required field is missing", Status: http.StatusBadRequest}
	}

	if strings.Contains(errLower, "check constraint") {
		return ErrorInfo{Code: ValidationInvalidInput, Message: "A field has an invalid value", Status: http.StatusBadRequest}
	}

	if strings.Contains(errLower, "connection refused") ||
		strings.Contains(errLower, "no such host") ||
		strings.Contains(errLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "A backing service is unavailable, please try again later",
			Status:  http.StatusServiceUnavailable,
		}
	}

	return ErrorInfo{Code: InternalServerError, Message: defaultErrorMessage(context), Status: http.StatusInternalServerError}
}

func parseDuplicateKeyError(errLower string) ErrorInfo {
	errLower = strings.ToLower(errLower)
	conflict := func(code, msg string) ErrorInfo {
		return ErrorInfo{Code: code, Message: msg, Status: http.StatusConflict}
	}

	switch {
	case strings.Contains(errLower, "email"):
		return conflict(AuthEmailAlreadyExists, "This email is already in use")
	case strings.Contains(errLower, "username"):
		return conflict(AuthUsernameExists, "This username is already taken")
	case strings.Contains(errLower, "phone"):
		return conflict(AuthPhoneExists, "This phone number is already in use")
	case strings.Contains(errLower, "products") && strings.Contains(errLower, "name"):
		return conflict(ProductNameExists, "A product with this name already exists")
	case strings.Contains(errLower, "slug"):
		return conflict(ResourceAlreadyExists, "This slug is already in use")
	}
	return conflict(ResourceAlreadyExists, "The record already exists")
}

func notFoundMessage(context string) string {
	contextLower := strings.ToLower(context)
	for _, pair := range [][2]string{
		{"product", "Product not found"},
		{"category", "Category not found"},
		{"plan", "Service plan not found"},
		{"order", "Order not found"},
		{"consult", "Consultation request not found"},
		{"news", "Article not found"},
		{"user", "User not found"},
	} {
		if strings.Contains(contextLower, pair[0]) {
			return pair[1]
		}
	}
	return "The requested record was not found"
}

func defaultErrorMessage(context string) string {
	contextLower := strings.ToLower(context)
	switch {
	case strings.Contains(contextLower, "create"):
		return "Could not save the record, please try again later"
	case strings.Contains(contextLower, "update"):
		return "Could not update the record, please try again later"
	case strings.Contains(contextLower, "delete"):
		return "Could not delete the record, please try again later"
	}
	return "Something went wrong, please try again later"
}

// ParseAndRespond parses err and writes the mapped status and body.
func ParseAndRespond(c interface{ JSON(int, interface{}) }, err error, context string) {
	info := ParseError(err, context)
	c.JSON(info.Status, ErrorResponse{
		Error:   info.Code,
		Message: info.Message,
	})
}
