// Package handler exposes the auth and role services over HTTP.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/AtoyanMikhail/tokenauth/internal/logger"
	"github.com/AtoyanMikhail/tokenauth/internal/middleware"
	"github.com/AtoyanMikhail/tokenauth/internal/service"
)

const (
	msgSomethingWentWrong  = "Something went wrong. Please try again later"
	msgWrongCredentials    = "Wrong username or password"
	msgRefreshTokenInvalid = "Refresh token not found or was stolen. Please make sign-in and logout all other devices"
	msgTooManyAttempts     = "Too many failed sign-in attempts. Please try again later"
)

type Handler struct {
	auth     *service.AuthService
	roles    *service.RoleService
	mw       *middleware.Auth
	validate *validator.Validate
	logger   logger.Logger
}

func New(auth *service.AuthService, roles *service.RoleService, mw *middleware.Auth, l logger.Logger) *Handler {
	validate := validator.New()
	// report fields by their JSON names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Handler{
		auth:     auth,
		roles:    roles,
		mw:       mw,
		validate: validate,
		logger:   l,
	}
}

type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }

// decodeBody reads a JSON body into dst and validates it. Any problem comes
// back as a *validationError.
func (h *Handler) decodeBody(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &validationError{msg: "Request body is not valid JSON"}
	}

	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return &validationError{msg: err.Error()}
		}

		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, describeField(fe))
		}
		return &validationError{msg: strings.Join(msgs, "; ")}
	}

	return nil
}

func describeField(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s: missing data for required field", field)
	case "min":
		return fmt.Sprintf("%s: shorter than minimum length %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s: longer than maximum length %s", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s: not a valid email address", field)
	case "uuid":
		return fmt.Sprintf("%s: not a valid UUID", field)
	default:
		return fmt.Sprintf("%s: failed on %s", field, fe.Tag())
	}
}

// fail maps an error to its status and public description. Unknown errors are
// logged and hidden behind a generic message.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validationError
	switch {
	case errors.As(err, &verr):
		middleware.WriteError(w, http.StatusBadRequest, verr.msg)
	case errors.Is(err, service.ErrRefreshTokenInvalid):
		middleware.WriteError(w, http.StatusUnauthorized, msgRefreshTokenInvalid)
	case errors.Is(err, service.ErrWrongCredentials):
		middleware.WriteError(w, http.StatusBadRequest, msgWrongCredentials)
	case errors.Is(err, service.ErrTooManyAttempts):
		middleware.WriteError(w, http.StatusTooManyRequests, msgTooManyAttempts)
	case errors.Is(err, service.ErrUserExists),
		errors.Is(err, service.ErrEmailExists),
		errors.Is(err, service.ErrRoleExists):
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrRoleNotFound),
		errors.Is(err, service.ErrRoleNotAssigned):
		middleware.WriteError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error("Request failed",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Error(err))
		middleware.WriteError(w, http.StatusInternalServerError, msgSomethingWentWrong)
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
