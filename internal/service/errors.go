package service

import "errors"

var (
	ErrRefreshTokenInvalid = errors.New("refresh token not found or was stolen")
	ErrWrongCredentials    = errors.New("wrong username or password")
	ErrTooManyAttempts     = errors.New("too many failed sign-in attempts")
	ErrUserExists          = errors.New("user with this username already exists")
	ErrEmailExists         = errors.New("user with this email already exists")
	ErrUserNotFound        = errors.New("user not found")
	ErrRoleExists          = errors.New("role with this name already exists")
	ErrRoleNotFound        = errors.New("role not found")
	ErrRoleNotAssigned     = errors.New("role is not assigned to user")
)
