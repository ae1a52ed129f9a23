package users

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dangcap/market/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := "./test_users_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.User{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, cleanup
}

func TestRepository_CreateUser(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	user, err := repo.CreateUser("testuser", "$2a$10$storedcredential", entities.UserRoleUser)

	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "testuser", user.Username)
	assert.Equal(t, entities.UserRoleUser, user.Role)
}

func TestRepository_CreateUser_Duplicate(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.CreateUser("testuser", "credential", entities.UserRoleUser)
	require.NoError(t, err)

	_, err = repo.CreateUser("testuser", "other", entities.UserRoleAdmin)
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestRepository_GetUserByUsername(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	created, err := repo.CreateUser("testuser", "credential", entities.UserRoleUser)
	require.NoError(t, err)

	user, err := repo.GetUserByUsername("testuser")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.Equal(t, "credential", user.Password)

	_, err = repo.GetUserByUsername("nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRepository_GetUserByID(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	created, err := repo.CreateUser("testuser", "credential", entities.UserRoleUser)
	require.NoError(t, err)

	user, err := repo.GetUserByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "testuser", user.Username)

	_, err = repo.GetUserByID(9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRepository_ListUsers(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.CreateUser("alice", "credential-a", entities.UserRoleAdmin)
	require.NoError(t, err)
	_, err = repo.CreateUser("bob", "credential-b", entities.UserRoleUser)
	require.NoError(t, err)

	users, err := repo.ListUsers()
	require.NoError(t, err)
	require.Len(t, users, 2)

	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)
	for _, u := range users {
		assert.Empty(t, u.Password, "listing must not expose stored credentials")
	}
}

func TestRepository_UpdateRole(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	created, err := repo.CreateUser("testuser", "credential", entities.UserRoleUser)
	require.NoError(t, err)

	updated, err := repo.UpdateRole(created.ID, entities.UserRoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, entities.UserRoleAdmin, updated.Role)
	assert.Empty(t, updated.Password)

	// Verify persisted
	fetched, err := repo.GetUserByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.UserRoleAdmin, fetched.Role)
}

func TestRepository_UpdateRole_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.UpdateRole(9999, entities.UserRoleAdmin)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRepository_DeleteUser(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	created, err := repo.CreateUser("testuser", "credential", entities.UserRoleUser)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteUser(created.ID))

	_, err = repo.GetUserByID(created.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	assert.ErrorIs(t, repo.DeleteUser(created.ID), ErrUserNotFound)
}
