package services

import (
	"context"
	"strings"

	"tricy/internal/models"
	"tricy/internal/repositories/interfaces"
	"tricy/internal/utils"
	"tricy/pkg/logger"
)

type UserService interface {
	Get(ctx context.Context, userID string) (*models.User, error)
	List(ctx context.Context, params *utils.PaginationParams) ([]*models.User, error)
	Update(ctx context.Context, userID string, req *models.UpdateUserRequest) (*models.User, error)
	Delete(ctx context.Context, userID string) error
}

type userService struct {
	userRepo interfaces.UserRepository
	hasher   *utils.PasswordHasher
	logger   *logger.Logger
}

func NewUserService(userRepo interfaces.UserRepository, hasher *utils.PasswordHasher, log *logger.Logger) UserService {
	if log == nil {
		log = logger.NewNop()
	}
	return &userService{userRepo: userRepo, hasher: hasher, logger: log}
}

func (s *userService) Get(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *userService) List(ctx context.Context, params *utils.PaginationParams) ([]*models.User, error) {
	if params == nil {
		params = &utils.PaginationParams{Skip: utils.DefaultSkip, Limit: utils.DefaultPageSize}
	}
	return s.userRepo.List(ctx, params)
}

func (s *userService) Update(ctx context.Context, userID string, req *models.UpdateUserRequest) (*models.User, error) {
	if req == nil || req.IsEmpty() {
		return nil, utils.ValidationError("no fields to update")
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		updates["email"] = normalizeEmail(*req.Email)
	}
	if req.PhoneNumber != nil {
		updates["phone_number"] = utils.NormalizePhone(*req.PhoneNumber)
	}
	if req.Password != nil {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, utils.WrapError(utils.KindInternal, "failed to hash password", err)
		}
		updates["password_hash"] = hash
	}
	if req.DeviceToken != nil && req.DevicePlatform != nil {
		updates["device_token"] = strings.TrimSpace(*req.DeviceToken)
		updates["device_platform"] = *req.DevicePlatform
	}

	user, err := s.userRepo.Update(ctx, userID, updates)
	if err != nil {
		return nil, err
	}

	s.logger.WithUserID(userID).WithField("fields", len(updates)).Info("User updated")
	return user, nil
}

func (s *userService) Delete(ctx context.Context, userID string) error {
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}
	s.logger.WithUserID(userID).Info("User deleted")
	return nil
}
