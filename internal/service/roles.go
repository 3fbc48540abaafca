package service

import (
	"context"
	"errors"

	"github.com/AtoyanMikhail/tokenauth/internal/logger"
	"github.com/AtoyanMikhail/tokenauth/internal/password"
	"github.com/AtoyanMikhail/tokenauth/internal/repository/models"
)

// AdminRole guards the role management endpoints.
const AdminRole = "Admin"

type RoleService struct {
	roles  models.RoleRepository
	users  models.UserRepository
	hasher *password.Hasher
	logger logger.Logger
}

func NewRoleService(roles models.RoleRepository, users models.UserRepository, hasher *password.Hasher, l logger.Logger) *RoleService {
	return &RoleService{
		roles:  roles,
		users:  users,
		hasher: hasher,
		logger: l,
	}
}

func (s *RoleService) CreateRole(ctx context.Context, name string, description *string) (*models.Role, error) {
	role := &models.Role{Name: name, Description: description}
	if err := s.roles.CreateRole(ctx, role); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, ErrRoleExists
		}
		return nil, err
	}

	s.logger.Info("Role created", logger.String("role", name))
	return role, nil
}

func (s *RoleService) ListRoles(ctx context.Context) ([]*models.Role, error) {
	return s.roles.ListRoles(ctx)
}

func (s *RoleService) UpdateRole(ctx context.Context, id, name string, description *string) (*models.Role, error) {
	role := &models.Role{ID: id, Name: name, Description: description}
	if err := s.roles.UpdateRole(ctx, role); err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			return nil, ErrRoleNotFound
		case errors.Is(err, models.ErrConflict):
			return nil, ErrRoleExists
		}
		return nil, err
	}
	return role, nil
}

func (s *RoleService) DeleteRole(ctx context.Context, id string) error {
	if err := s.roles.DeleteRole(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return ErrRoleNotFound
		}
		return err
	}

	s.logger.Info("Role deleted", logger.String("role_id", id))
	return nil
}

func (s *RoleService) AssignRole(ctx context.Context, roleName, userID string) error {
	role, user, err := s.resolve(ctx, roleName, userID)
	if err != nil {
		return err
	}
	if err := s.roles.AssignRole(ctx, user.ID, role.ID); err != nil {
		return err
	}

	s.logger.Info("Role assigned",
		logger.String("role", role.Name),
		logger.String("user_id", user.ID))
	return nil
}

func (s *RoleService) UnassignRole(ctx context.Context, roleName, userID string) error {
	role, user, err := s.resolve(ctx, roleName, userID)
	if err != nil {
		return err
	}
	if err := s.roles.UnassignRole(ctx, user.ID, role.ID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return ErrRoleNotAssigned
		}
		return err
	}

	s.logger.Info("Role unassigned",
		logger.String("role", role.Name),
		logger.String("user_id", user.ID))
	return nil
}

func (s *RoleService) HasRole(ctx context.Context, userID, roleName string) (bool, error) {
	return s.roles.HasRole(ctx, userID, roleName)
}

// CreateAdmin makes sure username exists and holds the Admin role. An existing
// user keeps their password.
func (s *RoleService) CreateAdmin(ctx context.Context, username, plainPassword string) (*models.User, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, models.ErrNotFound) {
		hash, hashErr := s.hasher.Hash(plainPassword)
		if hashErr != nil {
			return nil, hashErr
		}
		user = &models.User{Username: username, PasswordHash: hash}
		err = s.users.CreateUser(ctx, user)
	}
	if err != nil {
		return nil, err
	}

	role, err := s.roles.GetRoleByName(ctx, AdminRole)
	if errors.Is(err, models.ErrNotFound) {
		role = &models.Role{Name: AdminRole}
		err = s.roles.CreateRole(ctx, role)
	}
	if err != nil {
		return nil, err
	}

	if err := s.roles.AssignRole(ctx, user.ID, role.ID); err != nil {
		return nil, err
	}

	s.logger.Info("Administrator ready",
		logger.String("user_id", user.ID),
		logger.String("username", user.Username))
	return user, nil
}

func (s *RoleService) resolve(ctx context.Context, roleName, userID string) (*models.Role, *models.User, error) {
	role, err := s.roles.GetRoleByName(ctx, roleName)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil, ErrRoleNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil, ErrUserNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	return role, user, nil
}
