package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"tricy/internal/models"
	"tricy/internal/repositories/interfaces"
	"tricy/internal/utils"
	"tricy/pkg/cache"
	"tricy/pkg/logger"
	"tricy/pkg/oauth"

	"github.com/google/uuid"
)

// IdentityProvider is an external sign-in such as Google.
type IdentityProvider interface {
	Name() string
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth.Profile, error)
}

// OAuthService signs riders in through an external identity provider.
// First-time sign-ins create a passenger account keyed by the verified email.
type OAuthService interface {
	Begin(ctx context.Context) (string, error)
	Complete(ctx context.Context, state, code string) (*models.AuthResponse, error)
}

type oauthService struct {
	provider IdentityProvider
	states   cache.Cache
	userRepo interfaces.UserRepository
	hasher   *utils.PasswordHasher
	tokens   *utils.TokenManager
	events   EventDispatcher
	logger   *logger.Logger
	now      func() time.Time
}

func NewOAuthService(
	provider IdentityProvider,
	states cache.Cache,
	userRepo interfaces.UserRepository,
	hasher *utils.PasswordHasher,
	tokens *utils.TokenManager,
	events EventDispatcher,
	log *logger.Logger,
) OAuthService {
	if log == nil {
		log = logger.NewNop()
	}
	return &oauthService{
		provider: provider,
		states:   states,
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		events:   events,
		logger:   log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *oauthService) Begin(ctx context.Context) (string, error) {
	state, err := randomState()
	if err != nil {
		return "", utils.WrapError(utils.KindInternal, "failed to create oauth state", err)
	}
	if err := s.states.Set(ctx, s.stateKey(state), s.provider.Name(), utils.OAuthStateTTL); err != nil {
		return "", utils.WrapError(utils.KindUnavailable, "failed to store oauth state", err)
	}
	return s.provider.AuthURL(state), nil
}

func (s *oauthService) Complete(ctx context.Context, state, code string) (*models.AuthResponse, error) {
	if state == "" || code == "" {
		return nil, utils.ValidationError("state and code are required")
	}

	// States are single use.
	var provider string
	if err := s.states.Get(ctx, s.stateKey(state), &provider); err != nil || provider != s.provider.Name() {
		s.logger.LogSecurityEvent("oauth_state_rejected", "medium", map[string]interface{}{"provider": s.provider.Name()})
		return nil, utils.NewError(utils.KindUnauthorized, "invalid or expired oauth state")
	}
	if err := s.states.Delete(ctx, s.stateKey(state)); err != nil {
		s.logger.WithError(err).Warn("Failed to delete oauth state")
	}

	profile, err := s.provider.Exchange(ctx, code)
	if err != nil {
		if errors.Is(err, oauth.ErrExchangeFailed) {
			return nil, utils.WrapError(utils.KindUnauthorized, "sign-in was rejected", err)
		}
		return nil, utils.WrapError(utils.KindUnavailable, "identity provider unavailable", err)
	}
	if profile.Email == "" || !profile.EmailVerified {
		return nil, utils.NewError(utils.KindUnauthorized, "email is not verified with the identity provider")
	}

	user, err := s.findOrCreate(ctx, profile)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user.UserID, string(user.Role))
	if err != nil {
		return nil, utils.WrapError(utils.KindInternal, "failed to issue token", err)
	}

	s.logger.WithUserID(user.UserID).WithField("provider", profile.Provider).Info("User signed in with identity provider")
	if s.events != nil {
		s.events.Publish(ctx, utils.EventUserLogin, map[string]interface{}{
			"user_id":  user.UserID,
			"provider": profile.Provider,
		})
	}

	return &models.AuthResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresIn:   token.ExpiresIn,
		User:        user,
	}, nil
}

func (s *oauthService) findOrCreate(ctx context.Context, profile *oauth.Profile) (*models.User, error) {
	email := normalizeEmail(profile.Email)
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, utils.ErrNotFound) {
		return nil, err
	}

	// The account has no usable password until the rider sets one.
	hash, err := s.hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, utils.WrapError(utils.KindInternal, "failed to hash password", err)
	}

	name := strings.TrimSpace(profile.Name)
	if name == "" {
		name = email
	}
	user = &models.User{
		UserID:       uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.UserRolePassenger,
		CreatedAt:    s.now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.WithUserID(user.UserID).WithField("provider", profile.Provider).Info("User registered through identity provider")
	if s.events != nil {
		s.events.Publish(ctx, utils.EventUserRegistered, map[string]interface{}{
			"user_id":  user.UserID,
			"role":     string(user.Role),
			"provider": profile.Provider,
		})
	}
	return user, nil
}

func (s *oauthService) stateKey(state string) string {
	return utils.CacheOAuthStatePrefix + state
}

func randomState() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
