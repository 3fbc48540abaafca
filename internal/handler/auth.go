package handler

import (
	"net/http"
	"strconv"

	"github.com/AtoyanMikhail/tokenauth/internal/middleware"
	"github.com/AtoyanMikhail/tokenauth/internal/models"
	repomodels "github.com/AtoyanMikhail/tokenauth/internal/repository/models"
	"github.com/AtoyanMikhail/tokenauth/internal/service"
)

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req models.SignUpReq
	if err := h.decodeBody(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	user, err := h.auth.SignUp(r.Context(), service.SignUpInput{
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, toUserRes(user))
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req models.SignInReq
	if err := h.decodeBody(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	pair, err := h.auth.SignIn(r.Context(), service.SignInInput{
		Username:  req.Username,
		Password:  req.Password,
		UserAgent: r.UserAgent(),
		IPAddress: clientIP(r),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, toTokensRes(pair))
}

// Refresh redeems the refresh token carried as the bearer credential.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	raw, ok := middleware.BearerToken(r)
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Missing Authorization Header")
		return
	}

	pair, err := h.auth.Refresh(r.Context(), raw)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, toTokensRes(pair))
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	if err := h.auth.Logout(r.Context(), claims); err != nil {
		h.fail(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, models.LogoutRes{Logout: "ok"})
}

func (h *Handler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	if err := h.auth.LogoutAll(r.Context(), claims.UserID); err != nil {
		h.fail(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, models.LogoutAllRes{LogoutAll: "ok"})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	user, err := h.auth.Me(r.Context(), claims.UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, toUserRes(user))
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req models.ChangePasswordReq
	if err := h.decodeBody(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	claims, _ := middleware.ClaimsFromContext(r.Context())
	if err := h.auth.ChangePassword(r.Context(), claims.UserID, req.Password); err != nil {
		h.fail(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, models.MessageRes{Message: "Password successfully changed"})
}

// LoginHistory accepts an optional ?limit= query parameter.
func (h *Handler) LoginHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			middleware.WriteError(w, http.StatusBadRequest, "limit: must be an integer between 1 and 500")
			return
		}
		limit = n
	}

	claims, _ := middleware.ClaimsFromContext(r.Context())
	records, err := h.auth.LoginHistory(r.Context(), claims.UserID, limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	res := make([]models.LoginHistoryRes, 0, len(records))
	for _, rec := range records {
		res = append(res, models.LoginHistoryRes{
			UserAgent: rec.UserAgent,
			IPAddress: rec.IPAddress,
			CreatedAt: rec.CreatedAt,
		})
	}
	middleware.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) Authorize(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	names, err := h.auth.Authorize(r.Context(), claims.UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, names)
}

func (h *Handler) Sessions(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	active, err := h.auth.ActiveSessions(r.Context(), claims.UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, models.SessionsRes{Active: active})
}

func toTokensRes(pair *service.Pair) models.TokensRes {
	return models.TokensRes{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}
}

func toUserRes(user *repomodels.User) models.UserRes {
	return models.UserRes{
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}
