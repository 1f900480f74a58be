package services

import (
	"context"
	"testing"

	"tricy/internal/models"
	"tricy/internal/utils"
	"tricy/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newUserFixture(t *testing.T) (*memStore, UserService, *utils.PasswordHasher) {
	t.Helper()
	store := newMemStore()
	store.addUser("U1", "+639171234567")
	hasher := utils.NewPasswordHasher(bcrypt.MinCost)
	return store, NewUserService(&fakeUserRepo{memStore: store}, hasher, logger.NewNop()), hasher
}

func strPtr(s string) *string {
	return &s
}

func TestUpdateUser(t *testing.T) {
	store, service, hasher := newUserFixture(t)

	user, err := service.Update(context.Background(), "U1", &models.UpdateUserRequest{
		Name:     strPtr("  Ana  "),
		Password: strPtr("new-secret"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana", user.Name)

	ok, err := hasher.Verify("new-secret", store.users["U1"].PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUpdateUserRejectsEmptyAndInvalid(t *testing.T) {
	_, service, _ := newUserFixture(t)

	_, err := service.Update(context.Background(), "U1", &models.UpdateUserRequest{})
	assert.ErrorIs(t, err, utils.ErrValidation)

	_, err = service.Update(context.Background(), "U1", &models.UpdateUserRequest{Email: strPtr("nope")})
	assert.ErrorIs(t, err, utils.ErrValidation)

	_, err = service.Update(context.Background(), "missing", &models.UpdateUserRequest{Name: strPtr("x")})
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestRegisterDevice(t *testing.T) {
	store, service, _ := newUserFixture(t)

	_, err := service.Update(context.Background(), "U1", &models.UpdateUserRequest{
		DeviceToken:    strPtr(" fcm-token "),
		DevicePlatform: strPtr("android"),
	})
	require.NoError(t, err)
	assert.Equal(t, "fcm-token", store.users["U1"].DeviceToken)
	assert.Equal(t, "android", store.users["U1"].DevicePlatform)

	_, err = service.Update(context.Background(), "U1", &models.UpdateUserRequest{DeviceToken: strPtr("lonely")})
	assert.ErrorIs(t, err, utils.ErrValidation)

	_, err = service.Update(context.Background(), "U1", &models.UpdateUserRequest{
		DeviceToken:    strPtr("t"),
		DevicePlatform: strPtr("windows"),
	})
	assert.ErrorIs(t, err, utils.ErrValidation)
}

func TestDeleteUser(t *testing.T) {
	_, service, _ := newUserFixture(t)

	require.NoError(t, service.Delete(context.Background(), "U1"))

	_, err := service.Get(context.Background(), "U1")
	assert.ErrorIs(t, err, utils.ErrNotFound)
	assert.ErrorIs(t, service.Delete(context.Background(), "U1"), utils.ErrNotFound)
}

func TestDriverRegistration(t *testing.T) {
	store := newMemStore()
	store.addUser("U2", "")
	service := NewDriverService(&fakeDriverRepo{memStore: store}, logger.NewNop())

	driver, err := service.Create(context.Background(), &models.CreateDriverRequest{UserID: "U2", LicenseNumber: "LIC-1"})
	require.NoError(t, err)
	assert.Equal(t, models.AvailabilityOffline, driver.AvailabilityStatus)
	assert.Zero(t, driver.Rating)

	got, err := service.Get(context.Background(), driver.DriverID)
	require.NoError(t, err)
	assert.Equal(t, "LIC-1", got.LicenseNumber)

	_, err = service.Create(context.Background(), &models.CreateDriverRequest{UserID: "missing", LicenseNumber: "LIC-2"})
	assert.ErrorIs(t, err, utils.ErrNotFound)

	_, err = service.Create(context.Background(), &models.CreateDriverRequest{UserID: "U2"})
	assert.ErrorIs(t, err, utils.ErrValidation)
}
