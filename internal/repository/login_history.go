package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/AtoyanMikhail/tokenauth/internal/repository/models"
)

func (r *postgresStorage) CreateLoginRecord(ctx context.Context, record *models.LoginRecord) error {
	query := `
		INSERT INTO login_history (id, user_id, user_agent, ip_address)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	err := r.db.QueryRowxContext(ctx, query, record.ID, record.UserID, record.UserAgent, record.IPAddress).
		Scan(&record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create login record: %w", err)
	}

	return nil
}

func (r *postgresStorage) ListLoginRecords(ctx context.Context, userID string, limit int) ([]*models.LoginRecord, error) {
	query := `
		SELECT id, user_id, user_agent, ip_address, created_at
		FROM login_history
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	var records []*models.LoginRecord
	if err := r.db.SelectContext(ctx, &records, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to get login history for user %s: %w", userID, err)
	}
	return records, nil
}
