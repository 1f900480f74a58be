package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"tricy/internal/models"
	"tricy/internal/repositories/interfaces"
	"tricy/internal/utils"
	"tricy/pkg/logger"

	"github.com/google/uuid"
)

type AuthService interface {
	Register(ctx context.Context, req *models.CreateUserRequest) (*models.User, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error)
}

type authService struct {
	userRepo interfaces.UserRepository
	hasher   *utils.PasswordHasher
	tokens   *utils.TokenManager
	events   EventDispatcher
	logger   *logger.Logger
	now      func() time.Time
}

func NewAuthService(
	userRepo interfaces.UserRepository,
	hasher *utils.PasswordHasher,
	tokens *utils.TokenManager,
	events EventDispatcher,
	log *logger.Logger,
) AuthService {
	if log == nil {
		log = logger.NewNop()
	}
	return &authService{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		events:   events,
		logger:   log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *authService) Register(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	email := normalizeEmail(req.Email)
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, utils.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, utils.NewError(utils.KindConflict, utils.MsgUserExists)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, utils.WrapError(utils.KindInternal, "failed to hash password", err)
	}

	user := &models.User{
		UserID:       uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PhoneNumber:  utils.NormalizePhone(req.PhoneNumber),
		PasswordHash: hash,
		Role:         req.Role,
		CreatedAt:    s.now(),
	}

	// The unique email constraint still catches a concurrent registration.
	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.WithError(err).Error("Failed to create user")
		return nil, err
	}

	s.logger.WithUserID(user.UserID).WithField("role", user.Role).Info("User registered")
	if s.events != nil {
		s.events.Publish(ctx, utils.EventUserRegistered, map[string]interface{}{
			"user_id": user.UserID,
			"role":    string(user.Role),
		})
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			s.logFailedLogin(req.Email, "unknown email")
			return nil, utils.NewError(utils.KindUnauthorized, utils.MsgInvalidCredentials)
		}
		return nil, err
	}

	ok, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		return nil, utils.WrapError(utils.KindInternal, "failed to verify password", err)
	}
	if !ok {
		s.logFailedLogin(req.Email, "wrong password")
		return nil, utils.NewError(utils.KindUnauthorized, utils.MsgInvalidCredentials)
	}

	token, err := s.tokens.Issue(user.UserID, string(user.Role))
	if err != nil {
		return nil, utils.WrapError(utils.KindInternal, "failed to issue token", err)
	}

	s.logger.WithUserID(user.UserID).Info("User logged in")
	if s.events != nil {
		s.events.Publish(ctx, utils.EventUserLogin, map[string]interface{}{"user_id": user.UserID})
	}

	return &models.AuthResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresIn:   token.ExpiresIn,
		User:        user,
	}, nil
}

func (s *authService) ValidateToken(ctx context.Context, token string) (*utils.JWTClaims, error) {
	claims, err := s.tokens.Decode(token)
	if err != nil {
		message := utils.MsgInvalidToken
		if errors.Is(err, utils.ErrTokenExpired) {
			message = utils.MsgTokenExpired
		}
		return nil, utils.WrapError(utils.KindUnauthorized, message, err)
	}
	return claims, nil
}

func (s *authService) logFailedLogin(email, reason string) {
	s.logger.LogSecurityEvent("login_failed", "low", map[string]interface{}{
		"email":  email,
		"reason": reason,
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
