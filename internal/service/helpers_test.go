package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/AtoyanMikhail/tokenauth/internal/config"
	"github.com/AtoyanMikhail/tokenauth/internal/logger"
	"github.com/AtoyanMikhail/tokenauth/internal/password"
	"github.com/AtoyanMikhail/tokenauth/internal/repository/models"
	"github.com/AtoyanMikhail/tokenauth/internal/session"
	"github.com/AtoyanMikhail/tokenauth/internal/token"
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
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		SecretKey:  "test-secret",
		AccessTTL:  config.Duration(15 * time.Minute),
		RefreshTTL: config.Duration(30 * 24 * time.Hour),
	}
}

func testHasher() *password.Hasher {
	return password.NewHasherWithCost(1, 8*1024, 1)
}

// SetupTokenService wires a codec and service around store with a shared fake clock.
func SetupTokenService(t *testing.T, store session.Store, clock *fakeClock) (*TokenService, *token.Codec) {
	t.Helper()

	codec, err := token.NewCodec(testJWTConfig(), &mockLogger{}, token.WithClock(clock.Now))
	require.NoError(t, err)

	return NewTokenService(codec, store, &mockLogger{}, WithServiceClock(clock.Now)), codec
}

func newMemoryStore(t *testing.T, clock *fakeClock) *session.MemoryStore {
	t.Helper()

	store := session.NewMemoryStore(time.Minute, &mockLogger{}, session.WithMemoryClock(clock.Now))
	t.Cleanup(func() { store.Close() })
	return store
}

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	if args.Error(0) == nil && user.ID == "" {
		user.ID = "generated-id"
	}
	return args.Error(0)
}

func (m *mockUserRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*models.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if u, ok := args.Get(0).(*models.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*models.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	return m.Called(ctx, userID, passwordHash).Error(0)
}

type mockRoleRepo struct {
	mock.Mock
}

func (m *mockRoleRepo) CreateRole(ctx context.Context, role *models.Role) error {
	args := m.Called(ctx, role)
	if args.Error(0) == nil && role.ID == "" {
		role.ID = "role-" + role.Name
	}
	return args.Error(0)
}

func (m *mockRoleRepo) GetRoleByID(ctx context.Context, id string) (*models.Role, error) {
	args := m.Called(ctx, id)
	if r, ok := args.Get(0).(*models.Role); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRoleRepo) GetRoleByName(ctx context.Context, name string) (*models.Role, error) {
	args := m.Called(ctx, name)
	if r, ok := args.Get(0).(*models.Role); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRoleRepo) ListRoles(ctx context.Context) ([]*models.Role, error) {
	args := m.Called(ctx)
	roles, _ := args.Get(0).([]*models.Role)
	return roles, args.Error(1)
}

func (m *mockRoleRepo) UpdateRole(ctx context.Context, role *models.Role) error {
	return m.Called(ctx, role).Error(0)
}

func (m *mockRoleRepo) DeleteRole(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRoleRepo) AssignRole(ctx context.Context, userID, roleID string) error {
	return m.Called(ctx, userID, roleID).Error(0)
}

func (m *mockRoleRepo) UnassignRole(ctx context.Context, userID, roleID string) error {
	return m.Called(ctx, userID, roleID).Error(0)
}

func (m *mockRoleRepo) ListUserRoles(ctx context.Context, userID string) ([]*models.Role, error) {
	args := m.Called(ctx, userID)
	roles, _ := args.Get(0).([]*models.Role)
	return roles, args.Error(1)
}

func (m *mockRoleRepo) HasRole(ctx context.Context, userID, roleName string) (bool, error) {
	args := m.Called(ctx, userID, roleName)
	return args.Bool(0), args.Error(1)
}

type mockHistoryRepo struct {
	mock.Mock
}

func (m *mockHistoryRepo) CreateLoginRecord(ctx context.Context, record *models.LoginRecord) error {
	return m.Called(ctx, record).Error(0)
}

func (m *mockHistoryRepo) ListLoginRecords(ctx context.Context, userID string, limit int) ([]*models.LoginRecord, error) {
	args := m.Called(ctx, userID, limit)
	records, _ := args.Get(0).([]*models.LoginRecord)
	return records, args.Error(1)
}
