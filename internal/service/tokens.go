// Package service binds the token codec, the session store and the credential
// store into the sign-in, refresh and logout flows.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/AtoyanMikhail/tokenauth/internal/logger"
	"github.com/AtoyanMikhail/tokenauth/internal/session"
	"github.com/AtoyanMikhail/tokenauth/internal/token"
)

// Pair is what a client receives after sign-in or refresh.
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// TokenService owns the refresh-token lifecycle: issued, then exactly one of
// redeemed, revoked or expired.
type TokenService struct {
	codec  *token.Codec
	store  session.Store
	logger logger.Logger
	now    func() time.Time
}

type TokenServiceOption func(*TokenService)

// WithServiceClock replaces time.Now when computing session TTLs. Use the
// same clock the codec was built with.
func WithServiceClock(now func() time.Time) TokenServiceOption {
	return func(s *TokenService) {
		s.now = now
	}
}

func NewTokenService(codec *token.Codec, store session.Store, l logger.Logger, opts ...TokenServiceOption) *TokenService {
	s := &TokenService{
		codec:  codec,
		store:  store,
		logger: l,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IssuePair mints a refresh token and an access token linked to it, and
// registers the refresh token before returning. If registration fails nothing
// is handed out.
func (s *TokenService) IssuePair(ctx context.Context, userID string, fresh bool) (*Pair, error) {
	refresh, err := s.codec.MintRefresh(userID)
	if err != nil {
		return nil, err
	}

	access, err := s.codec.MintAccess(userID, fresh, refresh.ID)
	if err != nil {
		return nil, err
	}

	ttl := refresh.ExpiresAt.Sub(s.now())
	if err := s.store.Save(ctx, userID, refresh.ID, ttl); err != nil {
		return nil, fmt.Errorf("failed to register refresh token: %w", err)
	}

	s.logger.Debug("Token pair issued",
		logger.String("user_id", userID),
		logger.String("token_id", refresh.ID),
		logger.Bool("fresh", fresh))

	return &Pair{AccessToken: access, RefreshToken: refresh.Token}, nil
}

// RedeemRefresh exchanges a refresh token for a new non-fresh pair. The old
// token id is removed before the new pair is minted, and only the caller
// whose removal actually deleted it may proceed.
func (s *TokenService) RedeemRefresh(ctx context.Context, refreshToken string) (*Pair, error) {
	claims, err := s.codec.ParseRefresh(refreshToken)
	if err != nil {
		return nil, ErrRefreshTokenInvalid
	}

	removed, err := s.store.Remove(ctx, claims.UserID, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to redeem refresh token: %w", err)
	}
	if !removed {
		s.logger.Warn("Refresh token replayed or revoked",
			logger.String("user_id", claims.UserID),
			logger.String("token_id", claims.ID))
		return nil, ErrRefreshTokenInvalid
	}

	return s.IssuePair(ctx, claims.UserID, false)
}

// Revoke ends one session. Revoking an unknown session is not an error.
func (s *TokenService) Revoke(ctx context.Context, userID, tokenID string) error {
	removed, err := s.store.Remove(ctx, userID, tokenID)
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	s.logger.Info("Session revoked",
		logger.String("user_id", userID),
		logger.String("token_id", tokenID),
		logger.Bool("was_active", removed))
	return nil
}

// RevokeAll ends every session of userID and reports how many were live.
func (s *TokenService) RevokeAll(ctx context.Context, userID string) (int, error) {
	removed, err := s.store.RemoveAll(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke sessions: %w", err)
	}

	s.logger.Info("All sessions revoked",
		logger.String("user_id", userID),
		logger.Int("count", removed))
	return removed, nil
}

func (s *TokenService) ActiveSessions(ctx context.Context, userID string) (int, error) {
	ids, err := s.store.Active(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to list sessions: %w", err)
	}
	return len(ids), nil
}
