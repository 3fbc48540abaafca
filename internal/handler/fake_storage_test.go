package handler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AtoyanMikhail/tokenauth/internal/repository/models"
)

// fakeStorage is an in-memory credential store for end-to-end handler tests.
type fakeStorage struct {
	mu        sync.Mutex
	users     map[string]*models.User
	roles     map[string]*models.Role
	userRoles map[string]map[string]bool
	history   []*models.LoginRecord
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		users:     make(map[string]*models.User),
		roles:     make(map[string]*models.Role),
		userRoles: make(map[string]map[string]bool),
	}
}

func (s *fakeStorage) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == user.Username {
			return models.ErrConflict
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *fakeStorage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, models.ErrNotFound
}

func (s *fakeStorage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findUser(func(u *models.User) bool { return u.Username == username })
}

func (s *fakeStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(func(u *models.User) bool { return u.Email != nil && *u.Email == email })
}

func (s *fakeStorage) findUser(match func(*models.User) bool) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if match(u) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *fakeStorage) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return models.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (s *fakeStorage) CreateRole(ctx context.Context, role *models.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.roles {
		if r.Name == role.Name {
			return models.ErrConflict
		}
	}
	if role.ID == "" {
		role.ID = uuid.NewString()
	}
	copied := *role
	s.roles[role.ID] = &copied
	return nil
}

func (s *fakeStorage) GetRoleByID(ctx context.Context, id string) (*models.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.roles[id]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, models.ErrNotFound
}

func (s *fakeStorage) GetRoleByName(ctx context.Context, name string) (*models.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.roles {
		if r.Name == name {
			copied := *r
			return &copied, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *fakeStorage) ListRoles(ctx context.Context) ([]*models.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	roles := make([]*models.Role, 0, len(s.roles))
	for _, r := range s.roles {
		copied := *r
		roles = append(roles, &copied)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].Name < roles[j].Name })
	return roles, nil
}

func (s *fakeStorage) UpdateRole(ctx context.Context, role *models.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.roles[role.ID]; !ok {
		return models.ErrNotFound
	}
	copied := *role
	s.roles[role.ID] = &copied
	return nil
}

func (s *fakeStorage) DeleteRole(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.roles[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.roles, id)
	for _, assigned := range s.userRoles {
		delete(assigned, id)
	}
	return nil
}

func (s *fakeStorage) AssignRole(ctx context.Context, userID, roleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userRoles[userID] == nil {
		s.userRoles[userID] = make(map[string]bool)
	}
	s.userRoles[userID][roleID] = true
	return nil
}

func (s *fakeStorage) UnassignRole(ctx context.Context, userID, roleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.userRoles[userID][roleID] {
		return models.ErrNotFound
	}
	delete(s.userRoles[userID], roleID)
	return nil
}

func (s *fakeStorage) ListUserRoles(ctx context.Context, userID string) ([]*models.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var roles []*models.Role
	for roleID := range s.userRoles[userID] {
		copied := *s.roles[roleID]
		roles = append(roles, &copied)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].Name < roles[j].Name })
	return roles, nil
}

func (s *fakeStorage) HasRole(ctx context.Context, userID, roleName string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for roleID := range s.userRoles[userID] {
		if s.roles[roleID].Name == roleName {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStorage) CreateLoginRecord(ctx context.Context, record *models.LoginRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record.ID = uuid.NewString()
	record.CreatedAt = time.Now()
	copied := *record
	s.history = append(s.history, &copied)
	return nil
}

func (s *fakeStorage) ListLoginRecords(ctx context.Context, userID string, limit int) ([]*models.LoginRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []*models.LoginRecord
	for i := len(s.history) - 1; i >= 0 && len(records) < limit; i-- {
		if s.history[i].UserID == userID {
			copied := *s.history[i]
			records = append(records, &copied)
		}
	}
	return records, nil
}
