package models

import (
	"net/http"
	"time"
)

type SignUpReq struct {
	Username  string  `json:"username" validate:"required,min=3,max=15"`
	Password  string  `json:"password" validate:"required,min=8,max=20"`
	FirstName *string `json:"first_name" validate:"omitempty,max=30"`
	LastName  *string `json:"last_name" validate:"omitempty,max=30"`
	Email     *string `json:"email" validate:"omitempty,email"`
}

type SignInReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type TokensRes struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type ChangePasswordReq struct {
	Password string `json:"password" validate:"required,min=8,max=20"`
}

type UserRes struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FirstName *string   `json:"first_name"`
	LastName  *string   `json:"last_name"`
	Email     *string   `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type LoginHistoryRes struct {
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
	CreatedAt time.Time `json:"created_at"`
}

type SessionsRes struct {
	Active int `json:"active"`
}

type LogoutRes struct {
	Logout string `json:"logout"`
}

type LogoutAllRes struct {
	LogoutAll string `json:"logout_all"`
}

type MessageRes struct {
	Message string `json:"message"`
}

type CreateRoleReq struct {
	Name        string  `json:"name" validate:"required,max=80"`
	Description *string `json:"description" validate:"omitempty,max=255"`
}

type UpdateRoleReq struct {
	ID          string  `json:"id" validate:"required,uuid"`
	Name        string  `json:"name" validate:"required,max=80"`
	Description *string `json:"description" validate:"omitempty,max=255"`
}

type RoleAssignmentReq struct {
	RoleName string `json:"role_name" validate:"required"`
	UserID   string `json:"user_id" validate:"required,uuid"`
}

type RoleRes struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// ErrorRes is the body of every failed request.
type ErrorRes struct {
	Code        int    `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func NewErrorRes(status int, description string) ErrorRes {
	return ErrorRes{
		Code:        status,
		Name:        http.StatusText(status),
		Description: description,
	}
}
