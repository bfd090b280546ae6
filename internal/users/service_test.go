package users

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rentfleet/rentfleet-backend/pkg/auth"
	"github.com/rentfleet/rentfleet-backend/pkg/clock"
	"github.com/rentfleet/rentfleet-backend/pkg/config"
	"github.com/rentfleet/rentfleet-backend/pkg/enums"
	pkgerrors "github.com/rentfleet/rentfleet-backend/pkg/errors"
	"github.com/rentfleet/rentfleet-backend/pkg/logger"
)

func setupUsersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'user',
  created_at DATETIME,
  updated_at DATETIME
);`).Error)
	return db
}

func testPasswordConfig() config.PasswordConfig {
	// Small parameters keep hashing fast in tests.
	return config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "users-test-secret",
		Issuer:            "rentfleet-test",
		ExpirationMinutes: 15,
	}
}

func newUsersService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := setupUsersTestDB(t)
	service := NewService(
		NewRepository(db),
		testJWTConfig(),
		testPasswordConfig(),
		clock.Fixed{Instant: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)},
		logger.New(logger.Options{ServiceName: "users-test"}),
	)
	return service, db
}

func TestRegisterAndLogin(t *testing.T) {
	service, _ := newUsersService(t)
	ctx := context.Background()

	user, err := service.Register(ctx, RegisterInput{
		Email:    "Ana@Example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.Equal(t, enums.MemberRoleUser, user.Role)
	assert.NotEqual(t, "correct horse", user.PasswordHash)

	token, loggedIn, err := service.Login(ctx, "ana@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	claims, err := auth.ParseAccessToken(testJWTConfig(), token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, enums.MemberRoleUser, claims.Role)
}

func TestRegisterValidation(t *testing.T) {
	service, _ := newUsersService(t)
	ctx := context.Background()

	_, err := service.Register(ctx, RegisterInput{Password: "long enough"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = service.Register(ctx, RegisterInput{Email: "a@b.com", Password: "short"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 8 characters")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	service, _ := newUsersService(t)
	ctx := context.Background()

	_, err := service.Register(ctx, RegisterInput{Email: "ana@example.com", Password: "correct horse"})
	require.NoError(t, err)

	// Normalization makes the second registration collide.
	_, err = service.Register(ctx, RegisterInput{Email: "  ANA@example.com ", Password: "another pass"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestLoginHidesWhichPartFailed(t *testing.T) {
	service, _ := newUsersService(t)
	ctx := context.Background()

	_, err := service.Register(ctx, RegisterInput{Email: "ana@example.com", Password: "correct horse"})
	require.NoError(t, err)

	_, _, unknownEmail := service.Login(ctx, "nobody@example.com", "correct horse")
	_, _, wrongPassword := service.Login(ctx, "ana@example.com", "wrong password")

	require.Error(t, unknownEmail)
	require.Error(t, wrongPassword)
	assert.Equal(t, unknownEmail.Error(), wrongPassword.Error())
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(unknownEmail).Code())
}

func TestGet(t *testing.T) {
	service, _ := newUsersService(t)
	ctx := context.Background()

	user, err := service.Register(ctx, RegisterInput{Email: "ana@example.com", Password: "correct horse"})
	require.NoError(t, err)

	found, err := service.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, found.Email)

	_, err = service.Get(ctx, uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}
