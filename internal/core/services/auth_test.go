package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/lettersmith/lettersmith-core/internal/adapters/driven/auth"
	"github.com/lettersmith/lettersmith-core/internal/adapters/driven/memory"
	"github.com/lettersmith/lettersmith-core/internal/core/domain"
)

type authFixture struct {
	authSvc *AuthService
	userSvc *UserService
	users   *memory.UserStore
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	users := memory.NewUserStore()
	adapter := auth.NewAdapterWithCost("test-secret", bcrypt.MinCost)
	f := &authFixture{
		authSvc: NewAuthService(users, memory.NewSessionStore(), adapter),
		userSvc: NewUserService(users, adapter),
		users:   users,
	}

	_, err := f.userSvc.Create(context.Background(), "jane@example.com", "Jane", "password", domain.TierBasic)
	require.NoError(t, err)
	return f
}

func TestAuthenticate(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	resp, err := f.authSvc.Authenticate(ctx, domain.LoginRequest{
		Email:    "jane@example.com",
		Password: "password",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "jane@example.com", resp.User.Email)

	authCtx, err := f.authSvc.ValidateToken(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, authCtx.UserID)
	assert.Equal(t, domain.TierBasic, authCtx.Tier)
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.authSvc.Authenticate(context.Background(), domain.LoginRequest{
		Email:    "jane@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthenticate_UnknownEmail(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.authSvc.Authenticate(context.Background(), domain.LoginRequest{
		Email:    "nobody@example.com",
		Password: "password",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthenticate_DisabledAccount(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	user, err := f.users.GetByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	user.Active = false
	require.NoError(t, f.users.Save(ctx, user))

	_, err = f.authSvc.Authenticate(ctx, domain.LoginRequest{
		Email:    "jane@example.com",
		Password: "password",
	})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestValidateToken_Garbage(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.authSvc.ValidateToken(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogoutClosesSession(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	resp, err := f.authSvc.Authenticate(ctx, domain.LoginRequest{
		Email:    "jane@example.com",
		Password: "password",
	})
	require.NoError(t, err)

	authCtx, err := f.authSvc.ValidateToken(ctx, resp.Token)
	require.NoError(t, err)

	require.NoError(t, f.authSvc.Logout(ctx, authCtx.SessionID))

	_, err = f.authSvc.ValidateToken(ctx, resp.Token)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestCreateUser(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	user, err := f.userSvc.Create(ctx, "  John@Example.COM ", "John", "secret", domain.TierBasic)
	require.NoError(t, err)
	assert.Equal(t, "john@example.com", user.Email)
	assert.True(t, user.Active)
	assert.NotEqual(t, "secret", user.PasswordHash)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.userSvc.Create(context.Background(), "jane@example.com", "Jane", "secret", domain.TierBasic)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestCreateUser_MissingFields(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.userSvc.Create(ctx, "", "X", "secret", domain.TierBasic)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.userSvc.Create(ctx, "x@example.com", "X", "", domain.TierBasic)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
