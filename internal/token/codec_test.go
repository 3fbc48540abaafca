package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtoyanMikhail/tokenauth/internal/config"
	"github.com/AtoyanMikhail/tokenauth/internal/logger"
)

type mockLogger struct{}

func (m *mockLogger) Debug(msg string, fields ...logger.Field)  {}
func (m *mockLogger) Info(msg string, fields ...logger.Field)   {}
func (m *mockLogger) Warn(msg string, fields ...logger.Field)   {}
func (m *mockLogger) Error(msg string, fields ...logger.Field)  {}
func (m *mockLogger) Fatal(msg string, fields ...logger.Field)  {}
func (m *mockLogger) Panic(msg string, fields ...logger.Field)  {}
func (m *mockLogger) With(fields ...logger.Field) logger.Logger { return m }
func (m *mockLogger) Sync() error                               { return nil }
func (m *mockLogger) SetLevel(level logger.Level)               {}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		SecretKey:  "test-secret",
		AccessTTL:  config.Duration(15 * time.Minute),
		RefreshTTL: config.Duration(30 * 24 * time.Hour),
	}
}

func SetupCodec(t *testing.T, cfg config.JWTConfig) (*Codec, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)}

	codec, err := NewCodec(cfg, &mockLogger{}, WithClock(clock.Now))
	require.NoError(t, err)

	return codec, clock
}

func TestNewCodec_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.JWTConfig)
	}{
		{name: "empty secret", mutate: func(c *config.JWTConfig) { c.SecretKey = "" }},
		{name: "zero access ttl", mutate: func(c *config.JWTConfig) { c.AccessTTL = 0 }},
		{name: "zero refresh ttl", mutate: func(c *config.JWTConfig) { c.RefreshTTL = 0 }},
		{name: "negative skew", mutate: func(c *config.JWTConfig) { c.ClockSkew = config.Duration(-time.Second) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testJWTConfig()
			tt.mutate(&cfg)

			_, err := NewCodec(cfg, &mockLogger{})
			assert.Error(t, err)
		})
	}
}

func TestCodec_MintAccess(t *testing.T) {
	codec, clock := SetupCodec(t, testJWTConfig())

	signed, err := codec.MintAccess("user-1", true, "refresh-id")
	require.NoError(t, err)
	assert.Len(t, strings.Split(signed, "."), 3)

	claims, err := codec.ParseAccess(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, TypeAccess, claims.Type)
	assert.True(t, claims.Fresh)
	assert.Equal(t, "refresh-id", claims.RefreshID)
	assert.Equal(t, clock.now, claims.IssuedAt.Time.UTC())
	assert.Equal(t, clock.now.Add(15*time.Minute), claims.ExpiresAt.Time.UTC())
}

func TestCodec_MintRefresh(t *testing.T) {
	codec, clock := SetupCodec(t, testJWTConfig())

	first, err := codec.MintRefresh("user-1")
	require.NoError(t, err)
	second, err := codec.MintRefresh("user-1")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	parsedID, err := uuid.Parse(first.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsedID.Version())
	assert.Equal(t, clock.now.Add(30*24*time.Hour), first.ExpiresAt.UTC())

	claims, err := codec.ParseRefresh(first.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, first.ID, claims.ID)
	assert.Equal(t, TypeRefresh, claims.Type)
}

func TestCodec_ParseExpiry(t *testing.T) {
	tests := []struct {
		name    string
		skew    time.Duration
		advance time.Duration
		wantErr bool
	}{
		{name: "one second before expiry", advance: 15*time.Minute - time.Second},
		{name: "exactly at expiry is expired", advance: 15 * time.Minute, wantErr: true},
		{name: "after expiry", advance: 16 * time.Minute, wantErr: true},
		{name: "within clock skew", skew: 30 * time.Second, advance: 15*time.Minute + 10*time.Second},
		{name: "beyond clock skew", skew: 30 * time.Second, advance: 15*time.Minute + time.Minute, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testJWTConfig()
			cfg.ClockSkew = config.Duration(tt.skew)
			codec, clock := SetupCodec(t, cfg)

			signed, err := codec.MintAccess("user-1", false, "rid")
			require.NoError(t, err)

			clock.Advance(tt.advance)
			_, err = codec.Parse(signed)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidToken)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCodec_ParseRejects(t *testing.T) {
	codec, _ := SetupCodec(t, testJWTConfig())

	other := testJWTConfig()
	other.SecretKey = "another-secret"
	foreign, _ := SetupCodec(t, other)

	valid, err := codec.MintAccess("user-1", true, "rid")
	require.NoError(t, err)
	foreignToken, err := foreign.MintAccess("user-1", true, "rid")
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"subject": "user-1",
		"type":    TypeAccess,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not.a.token"},
		{name: "tampered payload", token: tampered},
		{name: "foreign secret", token: foreignToken},
		{name: "alg none", token: noneToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Parse(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Equal(t, ErrInvalidToken.Error(), err.Error())
		})
	}
}

func TestCodec_TypeConfusion(t *testing.T) {
	codec, _ := SetupCodec(t, testJWTConfig())

	access, err := codec.MintAccess("user-1", true, "rid")
	require.NoError(t, err)
	refresh, err := codec.MintRefresh("user-1")
	require.NoError(t, err)

	_, err = codec.ParseRefresh(access)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = codec.ParseAccess(refresh.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCodec_ExtractClaim(t *testing.T) {
	codec, _ := SetupCodec(t, testJWTConfig())

	access, err := codec.MintAccess("user-1", false, "rid-42")
	require.NoError(t, err)

	rt, err := codec.ExtractClaim(access, "rt")
	require.NoError(t, err)
	assert.Equal(t, "rid-42", rt)

	fresh, err := codec.ExtractClaim(access, "fresh")
	require.NoError(t, err)
	assert.Equal(t, false, fresh)

	_, err = codec.ExtractClaim(access, "jti")
	assert.ErrorIs(t, err, ErrMissingClaim)

	_, err = codec.ExtractClaim("broken", "rt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
