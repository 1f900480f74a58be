package services

import (
	"context"
	"testing"
	"time"

	"tricy/internal/models"
	"tricy/internal/utils"
	"tricy/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthFixture(t *testing.T) (*memStore, AuthService) {
	t.Helper()
	store := newMemStore()
	service := NewAuthService(
		&fakeUserRepo{memStore: store},
		utils.NewPasswordHasher(bcrypt.MinCost),
		utils.NewTokenManager("test-secret", time.Hour),
		&recordingEvents{},
		logger.NewNop(),
	)
	return store, service
}

func registerRequest(email string) *models.CreateUserRequest {
	return &models.CreateUserRequest{
		Name:        "Ana Cruz",
		Email:       email,
		PhoneNumber: "+63 917 123 4567",
		Password:    "secret123",
		Role:        models.UserRolePassenger,
	}
}

func TestRegisterAndLogin(t *testing.T) {
	store, service := newAuthFixture(t)
	ctx := context.Background()

	user, err := service.Register(ctx, registerRequest("Ana@Example.com"))
	require.NoError(t, err)
	assert.NotEmpty(t, user.UserID)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.Equal(t, "+639171234567", user.PhoneNumber)
	assert.NotEqual(t, "secret123", store.users[user.UserID].PasswordHash)

	resp, err := service.Login(ctx, &models.LoginRequest{Email: "ana@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, utils.TokenTypeBearer, resp.TokenType)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, user.UserID, resp.User.UserID)

	claims, err := service.ValidateToken(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.UserID, claims.UserID)
	assert.Equal(t, string(models.UserRolePassenger), claims.Role)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	_, service := newAuthFixture(t)
	ctx := context.Background()

	_, err := service.Register(ctx, registerRequest("ana@example.com"))
	require.NoError(t, err)
	_, err = service.Register(ctx, registerRequest("ANA@example.com"))

	assert.ErrorIs(t, err, utils.ErrConflict)
}

func TestRegisterValidation(t *testing.T) {
	_, service := newAuthFixture(t)

	req := registerRequest("not-an-email")
	_, err := service.Register(context.Background(), req)
	assert.ErrorIs(t, err, utils.ErrValidation)

	req = registerRequest("ana@example.com")
	req.Role = "pilot"
	_, err = service.Register(context.Background(), req)
	assert.ErrorIs(t, err, utils.ErrValidation)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	_, service := newAuthFixture(t)
	ctx := context.Background()
	_, err := service.Register(ctx, registerRequest("ana@example.com"))
	require.NoError(t, err)

	_, err = service.Login(ctx, &models.LoginRequest{Email: "ana@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, utils.ErrUnauthorized)

	_, err = service.Login(ctx, &models.LoginRequest{Email: "bob@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, utils.ErrUnauthorized)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	_, service := newAuthFixture(t)

	_, err := service.ValidateToken(context.Background(), "not.a.token")

	assert.ErrorIs(t, err, utils.ErrUnauthorized)
}
