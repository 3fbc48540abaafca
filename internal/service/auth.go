package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/AtoyanMikhail/tokenauth/internal/cache"
	"github.com/AtoyanMikhail/tokenauth/internal/logger"
	"github.com/AtoyanMikhail/tokenauth/internal/password"
	"github.com/AtoyanMikhail/tokenauth/internal/repository/models"
	"github.com/AtoyanMikhail/tokenauth/internal/token"
)

const DefaultHistoryLimit = 50

type SignUpInput struct {
	Username  string
	Password  string
	FirstName *string
	LastName  *string
	Email     *string
}

type SignInInput struct {
	Username  string
	Password  string
	UserAgent string
	IPAddress string
}

type AuthService struct {
	users   models.UserRepository
	roles   models.RoleRepository
	history models.LoginHistoryRepository
	tokens  *TokenService
	hasher  *password.Hasher
	logger  logger.Logger

	attempts    cache.AttemptCounter
	maxAttempts int64
}

type AuthOption func(*AuthService)

// WithAttemptLimit refuses sign-in for a username and IP pair once limit
// failed attempts are on record. A limit <= 0 disables the check.
func WithAttemptLimit(counter cache.AttemptCounter, limit int) AuthOption {
	return func(s *AuthService) {
		if limit > 0 {
			s.attempts = counter
			s.maxAttempts = int64(limit)
		}
	}
}

func NewAuthService(
	users models.UserRepository,
	roles models.RoleRepository,
	history models.LoginHistoryRepository,
	tokens *TokenService,
	hasher *password.Hasher,
	l logger.Logger,
	opts ...AuthOption,
) *AuthService {
	s := &AuthService{
		users:   users,
		roles:   roles,
		history: history,
		tokens:  tokens,
		hasher:  hasher,
		logger:  l,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*models.User, error) {
	if err := s.ensureUsernameFree(ctx, in.Username); err != nil {
		return nil, err
	}
	if in.Email != nil {
		if err := s.ensureEmailFree(ctx, *in.Email); err != nil {
			return nil, err
		}
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     in.Username,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	s.logger.Info("User signed up",
		logger.String("user_id", user.ID),
		logger.String("username", user.Username))
	return user, nil
}

// SignIn checks the password and issues a fresh pair. The login history write
// is best effort.
func (s *AuthService) SignIn(ctx context.Context, in SignInInput) (*Pair, error) {
	if s.throttled(ctx, in.Username, in.IPAddress) {
		return nil, ErrTooManyAttempts
	}

	user, err := s.users.GetUserByUsername(ctx, in.Username)
	if errors.Is(err, models.ErrNotFound) {
		s.registerFailure(ctx, in.Username, in.IPAddress)
		return nil, ErrWrongCredentials
	}
	if err != nil {
		return nil, err
	}

	ok, err := s.hasher.Verify(in.Password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.registerFailure(ctx, in.Username, in.IPAddress)
		return nil, ErrWrongCredentials
	}

	pair, err := s.tokens.IssuePair(ctx, user.ID, true)
	if err != nil {
		return nil, err
	}

	s.resetFailures(ctx, in.Username, in.IPAddress)

	record := &models.LoginRecord{
		UserID:    user.ID,
		UserAgent: in.UserAgent,
		IPAddress: in.IPAddress,
	}
	if err := s.history.CreateLoginRecord(ctx, record); err != nil {
		s.logger.Warn("Failed to write login history",
			logger.String("user_id", user.ID),
			logger.Error(err))
	}

	s.logger.Info("User signed in", logger.String("user_id", user.ID))
	return pair, nil
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*Pair, error) {
	return s.tokens.RedeemRefresh(ctx, refreshToken)
}

// Logout revokes the session the access token was paired with.
func (s *AuthService) Logout(ctx context.Context, claims *token.Claims) error {
	return s.tokens.Revoke(ctx, claims.UserID, claims.RefreshID)
}

func (s *AuthService) LogoutAll(ctx context.Context, userID string) error {
	_, err := s.tokens.RevokeAll(ctx, userID)
	return err
}

func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// ChangePassword stores the new hash and revokes every session of the user.
func (s *AuthService) ChangePassword(ctx context.Context, userID, newPassword string) error {
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if _, err := s.tokens.RevokeAll(ctx, userID); err != nil {
		return err
	}

	s.logger.Info("Password changed", logger.String("user_id", userID))
	return nil
}

func (s *AuthService) LoginHistory(ctx context.Context, userID string, limit int) ([]*models.LoginRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.history.ListLoginRecords(ctx, userID, limit)
}

// Authorize lists the role names of userID.
func (s *AuthService) Authorize(ctx context.Context, userID string) ([]string, error) {
	roles, err := s.roles.ListUserRoles(ctx, userID)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, role.Name)
	}
	return names, nil
}

func (s *AuthService) ActiveSessions(ctx context.Context, userID string) (int, error) {
	return s.tokens.ActiveSessions(ctx, userID)
}

func (s *AuthService) ensureUsernameFree(ctx context.Context, username string) error {
	_, err := s.users.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		return ErrUserExists
	case errors.Is(err, models.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("failed to check username: %w", err)
	}
}

func (s *AuthService) ensureEmailFree(ctx context.Context, email string) error {
	_, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return ErrEmailExists
	case errors.Is(err, models.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("failed to check email: %w", err)
	}
}

// throttled fails open: an unreachable counter never blocks sign-in.
func (s *AuthService) throttled(ctx context.Context, username, ip string) bool {
	if s.attempts == nil {
		return false
	}

	count, err := s.attempts.Count(ctx, username, ip)
	if err != nil {
		s.logger.Warn("Sign-in attempt counter unavailable", logger.Error(err))
		return false
	}
	if count >= s.maxAttempts {
		s.logger.Warn("Sign-in throttled",
			logger.String("username", username),
			logger.String("ip", ip))
		return true
	}
	return false
}

func (s *AuthService) registerFailure(ctx context.Context, username, ip string) {
	if s.attempts == nil {
		return
	}
	if _, err := s.attempts.Register(ctx, username, ip); err != nil {
		s.logger.Warn("Failed to register sign-in attempt", logger.Error(err))
	}
}

func (s *AuthService) resetFailures(ctx context.Context, username, ip string) {
	if s.attempts == nil {
		return
	}
	if err := s.attempts.Reset(ctx, username, ip); err != nil {
		s.logger.Warn("Failed to reset sign-in attempts", logger.Error(err))
	}
}
