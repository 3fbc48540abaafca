package models

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

type RoleRepository interface {
	CreateRole(ctx context.Context, role *Role) error
	GetRoleByID(ctx context.Context, id string) (*Role, error)
	GetRoleByName(ctx context.Context, name string) (*Role, error)
	ListRoles(ctx context.Context) ([]*Role, error)
	UpdateRole(ctx context.Context, role *Role) error
	DeleteRole(ctx context.Context, id string) error
	AssignRole(ctx context.Context, userID, roleID string) error
	UnassignRole(ctx context.Context, userID, roleID string) error
	ListUserRoles(ctx context.Context, userID string) ([]*Role, error)
	HasRole(ctx context.Context, userID, roleName string) (bool, error)
}

type LoginHistoryRepository interface {
	CreateLoginRecord(ctx context.Context, record *LoginRecord) error
	ListLoginRecords(ctx context.Context, userID string, limit int) ([]*LoginRecord, error)
}

// Storage is the whole credential store.
type Storage interface {
	UserRepository
	RoleRepository
	LoginHistoryRepository
	RunMigrations(migrationsPath string) error
	Close() error
}
