// Package middleware gates protected routes on bearer tokens, freshness and
// role membership.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/AtoyanMikhail/tokenauth/internal/logger"
	"github.com/AtoyanMikhail/tokenauth/internal/models"
	"github.com/AtoyanMikhail/tokenauth/internal/token"
)

type claimsContextKey struct{}

// TokenParser is the part of the codec the middleware needs.
type TokenParser interface {
	ParseAccess(tokenString string) (*token.Claims, error)
}

// RoleChecker answers role membership questions.
type RoleChecker interface {
	HasRole(ctx context.Context, userID, roleName string) (bool, error)
}

// ClaimsFromContext returns the claims stored by RequireAccessToken.
func ClaimsFromContext(ctx context.Context) (*token.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(*token.Claims)
	return claims, ok
}

func WithClaims(ctx context.Context, claims *token.Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey{}, claims)
}

type Auth struct {
	parser TokenParser
	roles  RoleChecker
	logger logger.Logger
}

func NewAuth(parser TokenParser, roles RoleChecker, l logger.Logger) *Auth {
	return &Auth{parser: parser, roles: roles, logger: l}
}

// RequireAccessToken rejects the request with 401 unless it carries a valid
// access token.
func (a *Auth) RequireAccessToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := BearerToken(r)
		if !ok {
			WriteError(w, http.StatusUnauthorized, "Missing Authorization Header")
			return
		}

		claims, err := a.parser.ParseAccess(raw)
		if err != nil {
			WriteError(w, http.StatusUnauthorized, "Token is invalid or expired")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// RequireFresh must run after RequireAccessToken.
func (a *Auth) RequireFresh(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok || !claims.Fresh {
			WriteError(w, http.StatusUnauthorized, "Fresh token required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole resolves the caller like RequireAccessToken and then insists on
// membership in roleName.
func (a *Auth) RequireRole(roleName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return a.RequireAccessToken(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, _ := ClaimsFromContext(r.Context())

			ok, err := a.roles.HasRole(r.Context(), claims.UserID, roleName)
			if err != nil {
				a.logger.Error("Failed to check role membership",
					logger.String("user_id", claims.UserID),
					logger.String("role", roleName),
					logger.Error(err))
				WriteError(w, http.StatusInternalServerError, "Something went wrong. Please try again later")
				return
			}
			if !ok {
				WriteError(w, http.StatusForbidden, "access only for "+strings.ToLower(roleName))
				return
			}

			next.ServeHTTP(w, r)
		}))
	}
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(r *http.Request) (string, bool) {
	const bearer = "Bearer "
	value := r.Header.Get("Authorization")
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	raw := strings.TrimSpace(value[len(bearer):])
	if raw == "" {
		return "", false
	}

	return raw, true
}

// WriteError sends the {code, name, description} body used for every failure.
func WriteError(w http.ResponseWriter, status int, description string) {
	WriteJSON(w, status, models.NewErrorRes(status, description))
}

func WriteJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
