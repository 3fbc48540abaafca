// Package token mints and verifies the signed access and refresh tokens.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/AtoyanMikhail/tokenauth/internal/config"
	"github.com/AtoyanMikhail/tokenauth/internal/logger"
)

// Token types carried in the "type" claim.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var (
	// ErrInvalidToken covers every parse failure: bad signature, malformed
	// input, expiry. Callers never learn which one it was.
	ErrInvalidToken = errors.New("invalid token")
	ErrMissingClaim = errors.New("missing claim")
)

// Claims is the flat payload of both token kinds. Fresh and RefreshID are
// meaningful on access tokens only; the jti is set on refresh tokens only.
type Claims struct {
	UserID    string `json:"subject"`
	Type      string `json:"type"`
	Fresh     bool   `json:"fresh"`
	RefreshID string `json:"rt,omitempty"`
	jwt.RegisteredClaims
}

// RefreshToken is a freshly minted refresh token together with the values the
// session store needs.
type RefreshToken struct {
	Token     string
	ID        string
	ExpiresAt time.Time
}

type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	leeway     time.Duration
	now        func() time.Time
	l          logger.Logger
}

// Option tweaks a Codec at construction time.
type Option func(*Codec)

// WithClock replaces time.Now, used for issued-at stamps and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

func NewCodec(cfg config.JWTConfig, l logger.Logger, opts ...Option) (*Codec, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("jwt secret key is empty")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.ClockSkew < 0 {
		return nil, errors.New("invalid clock skew configuration")
	}

	c := &Codec{
		secret:     []byte(cfg.SecretKey),
		accessTTL:  cfg.AccessTTL.Std(),
		refreshTTL: cfg.RefreshTTL.Std(),
		leeway:     cfg.ClockSkew.Std(),
		now:        time.Now,
		l:          l,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// MintAccess signs an access token for subject linked to the refresh token
// with id refreshID.
func (c *Codec) MintAccess(subject string, fresh bool, refreshID string) (string, error) {
	now := c.now()
	claims := Claims{
		UserID:    subject,
		Type:      TypeAccess,
		Fresh:     fresh,
		RefreshID: refreshID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.accessTTL)),
		},
	}

	return c.sign(claims)
}

// MintRefresh signs a refresh token with a new random v4 UUID as its jti.
func (c *Codec) MintRefresh(subject string) (*RefreshToken, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token id: %w", err)
	}

	now := c.now()
	expiresAt := now.Add(c.refreshTTL)
	claims := Claims{
		UserID: subject,
		Type:   TypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := c.sign(claims)
	if err != nil {
		return nil, err
	}

	// The jwt NumericDate has second precision; report what the token says.
	return &RefreshToken{Token: signed, ID: id.String(), ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Parse verifies signature and expiry and returns the claims.
func (c *Codec) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := c.parser().ParseWithClaims(tokenString, claims, c.keyFunc)
	if err != nil {
		c.l.Debug("Token rejected", logger.Error(err))
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.UserID == "" {
		c.l.Debug("Token rejected", logger.String("reason", "invalid claims"))
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// ParseAccess is Parse restricted to access tokens.
func (c *Codec) ParseAccess(tokenString string) (*Claims, error) {
	return c.parseTyped(tokenString, TypeAccess)
}

// ParseRefresh is Parse restricted to refresh tokens carrying a jti.
func (c *Codec) ParseRefresh(tokenString string) (*Claims, error) {
	claims, err := c.parseTyped(tokenString, TypeRefresh)
	if err != nil {
		return nil, err
	}
	if claims.ID == "" {
		c.l.Debug("Token rejected", logger.String("reason", "refresh token without jti"))
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ExtractClaim verifies the token and returns the raw value of one claim.
func (c *Codec) ExtractClaim(tokenString, name string) (interface{}, error) {
	claims := jwt.MapClaims{}

	if _, err := c.parser().ParseWithClaims(tokenString, claims, c.keyFunc); err != nil {
		c.l.Debug("Token rejected", logger.Error(err))
		return nil, ErrInvalidToken
	}

	value, ok := claims[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingClaim, name)
	}
	return value, nil
}

func (c *Codec) parseTyped(tokenString, tokenType string) (*Claims, error) {
	claims, err := c.Parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Type != tokenType {
		c.l.Debug("Token rejected",
			logger.String("reason", "unexpected token type"),
			logger.String("type", claims.Type))
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (c *Codec) sign(claims Claims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (c *Codec) parser() *jwt.Parser {
	return jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(c.leeway),
		jwt.WithTimeFunc(c.now),
	)
}

func (c *Codec) keyFunc(t *jwt.Token) (interface{}, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}
	return c.secret, nil
}
