package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/AtoyanMikhail/tokenauth/internal/logger"
	"github.com/AtoyanMikhail/tokenauth/internal/repository/models"
)

const userColumns = `id, username, password_hash, first_name, last_name, email, created_at, updated_at`

func (r *postgresStorage) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, password_hash, first_name, last_name, email)
		VALUES (:id, :username, :password_hash, :first_name, :last_name, :email)
		RETURNING created_at, updated_at`

	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	stmt, err := r.db.PrepareNamedContext(ctx, query)
	if err != nil {
		r.l.Error("Failed to prepare query", logger.Error(err))
		return fmt.Errorf("failed to prepare query: %w", err)
	}
	defer stmt.Close()

	if err := stmt.QueryRowxContext(ctx, user).Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
		r.l.Error("Failed to execute insert query", logger.Error(err))
		return classify(err, "create user")
	}

	r.l.Info("User created", logger.String("user_id", user.ID), logger.String("username", user.Username))
	return nil
}

func (r *postgresStorage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *postgresStorage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *postgresStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *postgresStorage) getUser(ctx context.Context, query string, arg string) (*models.User, error) {
	user := &models.User{}
	if err := r.db.GetContext(ctx, user, query, arg); err != nil {
		return nil, classify(err, "get user")
	}
	return user, nil
}

func (r *postgresStorage) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	query := `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, userID, passwordHash)
	if err != nil {
		r.l.Error("Failed to update password", logger.Error(err), logger.String("user_id", userID))
		return classify(err, "update password")
	}

	if err := checkAffected(result, "update password"); err != nil {
		return err
	}

	r.l.Info("Password updated", logger.String("user_id", userID))
	return nil
}
