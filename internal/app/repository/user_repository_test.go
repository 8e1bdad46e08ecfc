package repository

import (
	"testing"
	"time"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupUserTest(t *testing.T) (*gorm.DB, UserRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	repo := NewUserRepository(testDB)
	return testDB, repo
}

func newTestUser(username string) *model.User {
	return &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hashedpassword",
		Role:         model.RoleUser,
		IsActive:     true,
		Profile:      &model.Profile{},
	}
}

func TestUserRepository_Create(t *testing.T) {
	testDB, repo := setupUserTest(t)
	defer db.CleanupTestDB(testDB)

	duplicateEmail := newTestUser("other")
	duplicateEmail.Email = "test@example.com"

	tests := []struct {
		name    string
		user    *model.User
		wantErr bool
	}{
		{
			name:    "Valid user",
			user:    newTestUser("test"),
			wantErr: false,
		},
		{
			name:    "Duplicate email",
			user:    duplicateEmail,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(tt.user)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.NotZero(t, tt.user.ID)
				assert.NotZero(t, tt.user.Profile.ID)
			}
		})
	}
}

func TestUserRepository_FindByID(t *testing.T) {
	testDB, repo := setupUserTest(t)
	defer db.CleanupTestDB(testDB)

	user := newTestUser("test")
	require.NoError(t, repo.Create(user))

	tests := []struct {
		name    string
		id      uint
		wantErr bool
	}{
		{
			name:    "Existing user",
			id:      user.ID,
			wantErr: false,
		},
		{
			name:    "Non-existing user",
			id:      9999,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := repo.FindByID(tt.id)

			if tt.wantErr {
				assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
				assert.Nil(t, found)
			} else {
				require.NoError(t, err)
				require.NotNil(t, found)
				assert.Equal(t, user.Email, found.Email)
				require.NotNil(t, found.Profile)
			}
		})
	}
}

func TestUserRepository_FindByLogin(t *testing.T) {
	testDB, repo := setupUserTest(t)
	defer db.CleanupTestDB(testDB)

	user := newTestUser("Alice")
	require.NoError(t, repo.Create(user))

	for _, login := range []string{"Alice", "alice", " ALICE ", "alice@example.com", "ALICE@EXAMPLE.COM"} {
		found, err := repo.FindByLogin(login)
		require.NoError(t, err, login)
		assert.Equal(t, user.ID, found.ID)
	}

	_, err := repo.FindByLogin("bob")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_MixedCaseEmail(t *testing.T) {
	testDB, repo := setupUserTest(t)
	defer db.CleanupTestDB(testDB)

	// rows written before emails were lowercased on save
	user := newTestUser("legacy")
	user.Email = "Legacy.User@Example.COM"
	require.NoError(t, repo.Create(user))

	found, err := repo.FindByLogin("legacy.user@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	exists, err := repo.EmailExists("LEGACY.USER@example.com", 0)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.EmailExists("legacy.user@example.com", user.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUserRepository_Exists(t *testing.T) {
	testDB, repo := setupUserTest(t)
	defer db.CleanupTestDB(testDB)

	user := newTestUser("alice")
	phone := "+84901234567"
	user.Profile.Phone = &phone
	require.NoError(t, repo.Create(user))

	exists, err := repo.UsernameExists("ALICE", 0)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.UsernameExists("alice", user.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.EmailExists("Alice@Example.com", 0)
	require.NoError(t, err)
	assert.True(t, exists)

	taken, err := repo.PhoneTaken(phone, 0)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.PhoneTaken(phone, user.ID)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestUserRepository_List(t *testing.T) {
	testDB, repo := setupUserTest(t)
	defer db.CleanupTestDB(testDB)

	for _, name := range []string{"alice", "bob", "carol"} {
		require.NoError(t, repo.Create(newTestUser(name)))
	}
	require.NoError(t, testDB.Model(&model.User{}).Where("username = ?", "bob").Update("first_name", "Robert").Error)

	users, total, err := repo.List(UserFilter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, users, 2)
	assert.Equal(t, "carol", users[0].Username)

	users, total, err = repo.List(UserFilter{Search: "rob", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, users, 1)
	assert.Equal(t, "bob", users[0].Username)
}

func TestUserRepository_UpdateAndProfile(t *testing.T) {
	testDB, repo := setupUserTest(t)
	defer db.CleanupTestDB(testDB)

	user := newTestUser("alice")
	require.NoError(t, repo.Create(user))

	at := time.Now()
	require.NoError(t, repo.TouchLastLogin(user.ID, at))
	require.NoError(t, repo.UpdateFields(user.ID, map[string]interface{}{"first_name": "Alice"}))

	profile, err := repo.FindProfile(user.ID)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateProfileFields(profile.ID, map[string]interface{}{"avatar": "avatars/a.png"}))

	image := &model.ProfileImage{ProfileID: profile.ID, Image: "gallery/1.png"}
	require.NoError(t, repo.AddProfileImage(image))

	found, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", found.FirstName)
	assert.NotNil(t, found.LastLoginAt)
	assert.Equal(t, "avatars/a.png", found.Profile.Avatar)
	assert.Len(t, found.Profile.Images, 1)

	require.NoError(t, repo.DeleteProfileImage(image.ID))
	_, err = repo.FindProfileImage(image.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
