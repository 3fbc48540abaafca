package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/AtoyanMikhail/tokenauth/internal/logger"
	"github.com/AtoyanMikhail/tokenauth/internal/repository/models"
)

const roleColumns = `id, name, description, created_at, updated_at`

func (r *postgresStorage) CreateRole(ctx context.Context, role *models.Role) error {
	query := `
		INSERT INTO roles (id, name, description)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at`

	if role.ID == "" {
		role.ID = uuid.NewString()
	}

	err := r.db.QueryRowxContext(ctx, query, role.ID, role.Name, role.Description).
		Scan(&role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		r.l.Error("Failed to create role", logger.Error(err), logger.String("name", role.Name))
		return classify(err, "create role")
	}

	r.l.Info("Role created", logger.String("role_id", role.ID), logger.String("name", role.Name))
	return nil
}

func (r *postgresStorage) GetRoleByID(ctx context.Context, id string) (*models.Role, error) {
	role := &models.Role{}
	if err := r.db.GetContext(ctx, role, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id); err != nil {
		return nil, classify(err, "get role")
	}
	return role, nil
}

func (r *postgresStorage) GetRoleByName(ctx context.Context, name string) (*models.Role, error) {
	role := &models.Role{}
	if err := r.db.GetContext(ctx, role, `SELECT `+roleColumns+` FROM roles WHERE name = $1`, name); err != nil {
		return nil, classify(err, "get role")
	}
	return role, nil
}

func (r *postgresStorage) ListRoles(ctx context.Context) ([]*models.Role, error) {
	var roles []*models.Role
	if err := r.db.SelectContext(ctx, &roles, `SELECT `+roleColumns+` FROM roles ORDER BY name`); err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	return roles, nil
}

func (r *postgresStorage) UpdateRole(ctx context.Context, role *models.Role) error {
	query := `
		UPDATE roles
		SET name = $2, description = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query, role.ID, role.Name, role.Description).
		Scan(&role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		return classify(err, "update role")
	}

	r.l.Info("Role updated", logger.String("role_id", role.ID))
	return nil
}

func (r *postgresStorage) DeleteRole(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		r.l.Error("Failed to delete role", logger.Error(err), logger.String("role_id", id))
		return classify(err, "delete role")
	}

	if err := checkAffected(result, "delete role"); err != nil {
		return err
	}

	r.l.Info("Role deleted", logger.String("role_id", id))
	return nil
}

func (r *postgresStorage) AssignRole(ctx context.Context, userID, roleID string) error {
	query := `
		INSERT INTO user_roles (user_id, role_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, role_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, userID, roleID); err != nil {
		r.l.Error("Failed to assign role", logger.Error(err),
			logger.String("user_id", userID), logger.String("role_id", roleID))
		return fmt.Errorf("failed to assign role: %w", err)
	}

	return nil
}

func (r *postgresStorage) UnassignRole(ctx context.Context, userID, roleID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2`, userID, roleID)
	if err != nil {
		r.l.Error("Failed to unassign role", logger.Error(err),
			logger.String("user_id", userID), logger.String("role_id", roleID))
		return classify(err, "unassign role")
	}

	return checkAffected(result, "unassign role")
}

func (r *postgresStorage) ListUserRoles(ctx context.Context, userID string) ([]*models.Role, error) {
	query := `
		SELECT r.id, r.name, r.description, r.created_at, r.updated_at
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1
		ORDER BY r.name`

	var roles []*models.Role
	if err := r.db.SelectContext(ctx, &roles, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get roles for user %s: %w", userID, err)
	}
	return roles, nil
}

func (r *postgresStorage) HasRole(ctx context.Context, userID, roleName string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM user_roles ur
			JOIN roles r ON r.id = ur.role_id
			WHERE ur.user_id = $1 AND r.name = $2
		)`

	var has bool
	if err := r.db.GetContext(ctx, &has, query, userID, roleName); err != nil {
		return false, fmt.Errorf("failed to check role membership: %w", err)
	}
	return has, nil
}
