package errors

// Error code constants returned in the "error" field of every error body.
// Format: CATEGORY_SPECIFIC_DETAIL. Clients map these codes to UI messages.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // login required
	AuthRequireLogin       = "require_login"            // cart endpoints, kept lowercase for the storefront JS
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // wrong login/password
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"
	AuthAccountDisabled    = "AUTH_ACCOUNT_DISABLED"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"
	AuthUsernameExists     = "AUTH_USERNAME_EXISTS"
	AuthPhoneExists        = "AUTH_PHONE_EXISTS"
	AuthPasswordMismatch   = "AUTH_PASSWORD_MISMATCH"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden  = "AUTHZ_FORBIDDEN"
	AuthzAdminOnly  = "AUTHZ_ADMIN_ONLY"
	AuthzOwnerOnly  = "AUTHZ_OWNER_ONLY"
	AuthzSelfAction = "AUTHZ_SELF_ACTION" // e.g. deactivating your own account

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT"
	ValidationInvalidRange  = "VALIDATION_INVALID_RANGE"
	ValidationRequired      = "VALIDATION_REQUIRED"

	// ==================== Resource (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Catalog (CATALOG_) ====================
	CategoryNotFound     = "CATEGORY_NOT_FOUND"
	ProductNotFound      = "PRODUCT_NOT_FOUND"
	ProductNameExists    = "PRODUCT_NAME_EXISTS"
	ProductImageNotFound = "PRODUCT_IMAGE_NOT_FOUND"
	PlanNotFound         = "PLAN_NOT_FOUND"
	PlanInvalidTerm      = "PLAN_INVALID_TERM"

	// ==================== Cart / Order (CART_, ORDER_) ====================
	CartNothingSelected    = "CART_NOTHING_SELECTED"
	CartLineNotFound       = "CART_LINE_NOT_FOUND"
	OrderNotFound          = "ORDER_NOT_FOUND"
	OrderInvalidTransition = "ORDER_INVALID_TRANSITION"

	// ==================== Consultation (CONSULT_) ====================
	ConsultNotFound      = "CONSULT_NOT_FOUND"
	ConsultTooFrequent   = "CONSULT_TOO_FREQUENT"
	ConsultInvalidStatus = "CONSULT_INVALID_STATUS"

	// ==================== Profile / News ====================
	ProfileImageNotFound = "PROFILE_IMAGE_NOT_FOUND"
	ProfilePhoneLocked   = "PROFILE_PHONE_LOCKED"
	NewsNotFound         = "NEWS_NOT_FOUND"
	UserNotFound         = "USER_NOT_FOUND"

	// ==================== Reports (REPORT_) ====================
	ReportInvalidKind   = "REPORT_INVALID_KIND"
	ReportInvalidFormat = "REPORT_INVALID_FORMAT"
	ReportInvalidRange  = "REPORT_INVALID_RANGE"

	// ==================== Upload (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadInvalidFolder   = "UPLOAD_INVALID_FOLDER"
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== Rate limiting ====================
	RateLimitExceeded = "TOO_MANY_REQUESTS"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
	InternalConfigError   = "INTERNAL_CONFIG_ERROR"
)
