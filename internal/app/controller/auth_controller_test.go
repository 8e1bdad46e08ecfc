package controller

import (
	"net/http"
	"testing"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthController_Register(t *testing.T) {
	env := setupControllerTest(t)

	t.Run("Success", func(t *testing.T) {
		w := env.do(t, request{method: "POST", path: "/api/v1/auth/register", body: map[string]interface{}{
			"username":  "alice",
			"email":     "Alice@Example.com",
			"password1": "password123",
			"password2": "password123",
		}})

		assert.Equal(t, http.StatusCreated, w.Code)
		resp := decodeBody(t, w)
		user := resp["user"].(map[string]interface{})
		assert.Equal(t, "alice", user["username"])
		assert.Equal(t, "alice@example.com", user["email"])
		assert.Equal(t, false, user["is_staff"])

		tokens := resp["tokens"].(map[string]interface{})
		assert.NotEmpty(t, tokens["access_token"])
		assert.NotEmpty(t, tokens["refresh_token"])
	})

	t.Run("Duplicate username ignores case", func(t *testing.T) {
		w := env.do(t, request{method: "POST", path: "/api/v1/auth/register", body: map[string]interface{}{
			"username":  "ALICE",
			"email":     "other@example.com",
			"password1": "password123",
			"password2": "password123",
		}})

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "AUTH_USERNAME_EXISTS")
	})

	t.Run("Password mismatch", func(t *testing.T) {
		w := env.do(t, request{method: "POST", path: "/api/v1/auth/register", body: map[string]interface{}{
			"username":  "bob",
			"email":     "bob@example.com",
			"password1": "password123",
			"password2": "password124",
		}})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "AUTH_PASSWORD_MISMATCH")
	})

	t.Run("Missing fields", func(t *testing.T) {
		w := env.do(t, request{method: "POST", path: "/api/v1/auth/register", body: map[string]interface{}{
			"username": "carol",
		}})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthController_LoginAndMe(t *testing.T) {
	env := setupControllerTest(t)
	env.createUser(t, "dave", model.RoleUser)

	w := env.do(t, request{method: "POST", path: "/api/v1/auth/login", body: map[string]interface{}{
		"login":    "DAVE@example.com",
		"password": "password123",
	}})
	require.Equal(t, http.StatusOK, w.Code)

	tokens := decodeBody(t, w)["tokens"].(map[string]interface{})
	access := tokens["access_token"].(string)

	w = env.do(t, request{method: "GET", path: "/api/v1/auth/me", token: access})
	assert.Equal(t, http.StatusOK, w.Code)
	user := decodeBody(t, w)["user"].(map[string]interface{})
	assert.Equal(t, "dave", user["username"])

	t.Run("Refresh issues a new pair", func(t *testing.T) {
		w := env.do(t, request{method: "POST", path: "/api/v1/auth/refresh", body: map[string]interface{}{
			"refresh_token": tokens["refresh_token"],
		}})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Access token cannot refresh", func(t *testing.T) {
		w := env.do(t, request{method: "POST", path: "/api/v1/auth/refresh", body: map[string]interface{}{
			"refresh_token": access,
		}})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Wrong password", func(t *testing.T) {
		w := env.do(t, request{method: "POST", path: "/api/v1/auth/login", body: map[string]interface{}{
			"login":    "dave",
			"password": "wrong-password",
		}})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "AUTH_INVALID_CREDENTIALS")
	})

	t.Run("Me without token", func(t *testing.T) {
		w := env.do(t, request{method: "GET", path: "/api/v1/auth/me"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthController_DisabledAccount(t *testing.T) {
	env := setupControllerTest(t)
	user, token := env.createUser(t, "erin", model.RoleUser)
	require.NoError(t, env.db.Model(user).Update("is_active", false).Error)

	w := env.do(t, request{method: "GET", path: "/api/v1/auth/me", token: token})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, request{method: "POST", path: "/api/v1/auth/login", body: map[string]interface{}{
		"login":    "erin",
		"password": "password123",
	}})
	assert.Equal(t, http.StatusForbidden, w.Code)
}
