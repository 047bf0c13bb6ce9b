package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vyapardesk/vyapardesk/internal/auth/domain"
	"github.com/vyapardesk/vyapardesk/internal/auth/repository"
	"github.com/vyapardesk/vyapardesk/internal/clock"
	"github.com/vyapardesk/vyapardesk/internal/config"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (domain.Service, *clock.FakeClock) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Session{}))
	t.Cleanup(func() {
		db.Exec("DELETE FROM sessions")
		db.Exec("DELETE FROM users")
	})

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC))

	svc := New(Params{
		Log:         zap.NewNop(),
		Cfg:         config.Config{SessionTTLHours: 24},
		Clock:       fake,
		GenID:       node,
		Repo:        repository.ProvideUserRepository(db),
		SessionRepo: repository.ProvideSessionRepository(db),
	})
	return svc, fake
}

func TestCreateUserAndLogin(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, domain.CreateUserRequest{
		Username: "Owner",
		Email:    "owner@example.com",
		Password: "super-secret",
		Role:     "owner",
		Scopes:   []string{"invoices:write", "customers:write"},
	})
	require.NoError(t, err)
	assert.Equal(t, "owner", user.Username)
	assert.Equal(t, "owner", user.Role)
	require.NotNil(t, user.PasswordHash)
	assert.NotEqual(t, "super-secret", *user.PasswordHash)

	result, err := svc.Login(ctx, domain.LoginRequest{
		Username: "owner",
		Password: "super-secret",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.RawToken)
	assert.Equal(t, user.ID, result.User.ID)
	assert.Equal(t, result.ExpiresAt, result.User.CreatedAt.Add(24*time.Hour))
}

func TestCreateUserRejectsDuplicatesAndWeakPasswords(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, domain.CreateUserRequest{Username: "sam", Password: "short"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.CreateUser(ctx, domain.CreateUserRequest{Username: "sam", Password: "long-enough-pass"})
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, domain.CreateUserRequest{Username: "SAM", Password: "long-enough-pass"})
	assert.ErrorIs(t, err, domain.ErrUserExists)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, domain.CreateUserRequest{Username: "clerk", Password: "valid-password"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, domain.LoginRequest{Username: "clerk", Password: "wrong"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, domain.LoginRequest{Username: "nobody", Password: "valid-password"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthenticateLifecycle(t *testing.T) {
	svc, fake := setupService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, domain.CreateUserRequest{Username: "clerk", Password: "valid-password"})
	require.NoError(t, err)

	result, err := svc.Login(ctx, domain.LoginRequest{Username: "clerk", Password: "valid-password"})
	require.NoError(t, err)

	session, user, err := svc.Authenticate(ctx, result.RawToken)
	require.NoError(t, err)
	assert.Equal(t, result.SessionID, session.ID)
	assert.Equal(t, "clerk", user.Username)

	_, _, err = svc.Authenticate(ctx, "garbage-token")
	assert.ErrorIs(t, err, domain.ErrInvalidSession)

	fake.Advance(25 * time.Hour)
	_, _, err = svc.Authenticate(ctx, result.RawToken)
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, domain.CreateUserRequest{Username: "clerk", Password: "valid-password"})
	require.NoError(t, err)

	result, err := svc.Login(ctx, domain.LoginRequest{Username: "clerk", Password: "valid-password"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, result.RawToken))

	_, _, err = svc.Authenticate(ctx, result.RawToken)
	assert.ErrorIs(t, err, domain.ErrSessionRevoked)
}

func TestChangePassword(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, domain.CreateUserRequest{Username: "clerk", Password: "valid-password"})
	require.NoError(t, err)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, "brand-new-password"))

	_, err = svc.Login(ctx, domain.LoginRequest{Username: "clerk", Password: "valid-password"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, domain.LoginRequest{Username: "clerk", Password: "brand-new-password"})
	assert.NoError(t, err)
}
