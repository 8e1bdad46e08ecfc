package middleware

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/pkg/util"
)

// Context keys for user information
const (
	UserIDKey    = "user_id"
	UserEmailKey = "user_email"
	UserRoleKey  = "user_role"
	TokenKey     = "access_token"
)

// RevocationChecker reports tokens revoked by logout.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// AccountLoader reads the account row behind a token.
type AccountLoader interface {
	GetUserByID(id uint) (*model.User, error)
}

type AuthMiddleware struct {
	jwtSecret string
	revoked   RevocationChecker
	accounts  AccountLoader
}

// NewAuthMiddleware builds the JWT middleware. revoked may be nil.
func NewAuthMiddleware(jwtSecret string, revoked RevocationChecker) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
		revoked:   revoked,
	}
}

// WithAccounts makes RequireStaff check the stored account as well as the
// token claims, so demoted or disabled staff lose access before expiry.
func (m *AuthMiddleware) WithAccounts(accounts AccountLoader) *AuthMiddleware {
	m.accounts = accounts
	return m
}

var (
	errMissingToken = stderrors.New("missing token")
	errBadHeader    = stderrors.New("invalid authorization header format")
)

// bearerToken reads "Authorization: Bearer <token>", falling back to the
// token query parameter used by websocket clients.
func bearerToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if token := c.Query("token"); token != "" {
			return token, nil
		}
		return "", errMissingToken
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", errBadHeader
	}
	return parts[1], nil
}

// verify validates an access token and checks the logout blacklist.
func (m *AuthMiddleware) verify(c *gin.Context, token string) (*util.Claims, error) {
	claims, err := util.ValidateToken(token, m.jwtSecret)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != util.TokenTypeAccess {
		return nil, util.ErrInvalidToken
	}
	if m.revoked != nil {
		revoked, err := m.revoked.IsRevoked(c.Request.Context(), token)
		if err != nil {
			// blacklist outage: accept the token
			GetLoggerFromContext(c).Warn("Token blacklist unavailable", map[string]interface{}{
				"error": err.Error(),
			})
		} else if revoked {
			return nil, errTokenRevoked
		}
	}
	return claims, nil
}

var errTokenRevoked = stderrors.New("token revoked")

func setClaims(c *gin.Context, token string, claims *util.Claims) {
	c.Set(UserIDKey, claims.UserID)
	c.Set(UserEmailKey, claims.Email)
	c.Set(UserRoleKey, model.UserRole(claims.Role))
	c.Set(TokenKey, token)
}

// Authenticate validates JWT token (required)
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return m.authenticate(false)
}

// RequireLogin is Authenticate for storefront endpoints: guests get the
// require_login code so the client can redirect to the login page.
func (m *AuthMiddleware) RequireLogin() gin.HandlerFunc {
	return m.authenticate(true)
}

func (m *AuthMiddleware) authenticate(storefront bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		token, err := bearerToken(c)
		if err != nil {
			log.Warn("Missing or malformed credentials", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			switch {
			case storefront:
				errors.RequireLogin(c)
			case stderrors.Is(err, errBadHeader):
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "Malformed authorization header")
			default:
				errors.Unauthorized(c, "")
			}
			c.Abort()
			return
		}

		claims, err := m.verify(c, token)
		if err != nil {
			log.Warn("Token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			switch {
			case storefront:
				errors.RequireLogin(c)
			case stderrors.Is(err, util.ErrExpiredToken):
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenExpired, "Session expired, please log in again")
			case stderrors.Is(err, errTokenRevoked):
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenRevoked, "Token has been revoked")
			default:
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "Invalid authentication token")
			}
			c.Abort()
			return
		}

		setClaims(c, token, claims)
		log.Debug("User authenticated successfully", map[string]interface{}{
			"user_id": claims.UserID,
			"role":    claims.Role,
		})

		c.Next()
	}
}

// OptionalAuthenticate validates JWT token if present (optional)
// - If token is present and valid: sets user info in context
// - If token is missing or invalid: continues without user info
func (m *AuthMiddleware) OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		token, err := bearerToken(c)
		if err != nil {
			c.Next()
			return
		}

		claims, err := m.verify(c, token)
		if err != nil {
			log.Debug("Token validation failed - continuing as guest", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			c.Next()
			return
		}

		setClaims(c, token, claims)
		c.Next()
	}
}

// RequireRole checks if user has required role
func (m *AuthMiddleware) RequireRole(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !checkRole(c, roles) {
			c.Abort()
			return
		}
		c.Next()
	}
}

// checkRole answers 403 unless the token role is one of roles.
func checkRole(c *gin.Context, roles []model.UserRole) bool {
	log := GetLoggerFromContext(c)

	role, exists := GetUserRole(c)
	if !exists {
		log.Warn("Role information not found in context", map[string]interface{}{
			"path": c.Request.URL.Path,
		})
		errors.Forbidden(c, "")
		return false
	}

	for _, r := range roles {
		if role == r {
			return true
		}
	}

	userID, _ := GetUserID(c)
	log.Warn("Insufficient permissions", map[string]interface{}{
		"user_id":        userID,
		"user_role":      role,
		"required_roles": roles,
		"path":           c.Request.URL.Path,
	})
	errors.Forbidden(c, "")
	return false
}

// RequireStaff admits staff and admins. With an AccountLoader the stored
// role and active flag win over the token claims.
func (m *AuthMiddleware) RequireStaff() gin.HandlerFunc {
	roles := []model.UserRole{model.RoleStaff, model.RoleAdmin}
	return func(c *gin.Context) {
		if !checkRole(c, roles) {
			c.Abort()
			return
		}
		if m.accounts == nil {
			c.Next()
			return
		}

		log := GetLoggerFromContext(c)
		userID, _ := GetUserID(c)
		user, err := m.accounts.GetUserByID(userID)
		if err != nil {
			log.Warn("Staff account lookup failed", map[string]interface{}{
				"user_id": userID,
				"error":   err.Error(),
			})
			errors.Unauthorized(c, "")
			c.Abort()
			return
		}
		if !user.IsActive {
			errors.RespondWithError(c, http.StatusForbidden, errors.AuthAccountDisabled, "This account is disabled")
			c.Abort()
			return
		}
		if !user.Role.IsStaff() {
			log.Warn("Stored role no longer allows staff access", map[string]interface{}{
				"user_id": userID,
				"role":    user.Role,
			})
			errors.Forbidden(c, "")
			c.Abort()
			return
		}

		c.Set(UserRoleKey, user.Role)
		c.Next()
	}
}

// GetUserID extracts user ID from context
func GetUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok
}

// GetUserEmail extracts user email from context
func GetUserEmail(c *gin.Context) (string, bool) {
	email, exists := c.Get(UserEmailKey)
	if !exists {
		return "", false
	}
	s, ok := email.(string)
	return s, ok
}

// GetUserRole extracts user role from context
func GetUserRole(c *gin.Context) (model.UserRole, bool) {
	role, exists := c.Get(UserRoleKey)
	if !exists {
		return "", false
	}
	r, ok := role.(model.UserRole)
	return r, ok
}

// GetAccessToken returns the raw bearer token of the request.
func GetAccessToken(c *gin.Context) (string, bool) {
	token, exists := c.Get(TokenKey)
	if !exists {
		return "", false
	}
	s, ok := token.(string)
	return s, ok
}
