package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file" //used for migrations
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/AtoyanMikhail/tokenauth/internal/config"
	"github.com/AtoyanMikhail/tokenauth/internal/logger"
	"github.com/AtoyanMikhail/tokenauth/internal/repository/models"
)

const (
	uniqueViolation      = "23505"
	invalidTextRepresent = "22P02"
)

type postgresStorage struct {
	db  *sqlx.DB
	l   logger.Logger
	cfg config.DatabaseConfig
}

func NewPostgresStorage(cfg config.DatabaseConfig, l logger.Logger) (models.Storage, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.DBName,
		cfg.SSLMode,
	)
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open db connection: %v", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("could not establish db connection: %v", err)
	}

	return &postgresStorage{db: db, l: l, cfg: cfg}, nil
}

func (r *postgresStorage) Close() error {
	return r.db.Close()
}

func (r *postgresStorage) RunMigrations(migrationsPath string) error {
	driver, err := postgres.WithInstance(r.db.DB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://"+migrationsPath,
		"postgres", driver,
	)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}

	r.l.Info("Migrations applied", logger.String("path", migrationsPath))
	return nil
}

// classify turns driver errors into repository sentinels.
func classify(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, models.ErrNotFound)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case uniqueViolation:
			return fmt.Errorf("%s: %w", what, models.ErrConflict)
		case invalidTextRepresent:
			// a malformed uuid can not match any row
			return fmt.Errorf("%s: %w", what, models.ErrNotFound)
		}
	}

	return fmt.Errorf("failed to %s: %w", what, err)
}

func checkAffected(result sql.Result, what string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", what, models.ErrNotFound)
	}
	return nil
}
