package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AtoyanMikhail/tokenauth/internal/middleware"
	"github.com/AtoyanMikhail/tokenauth/internal/models"
	repomodels "github.com/AtoyanMikhail/tokenauth/internal/repository/models"
)

func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req models.CreateRoleReq
	if err := h.decodeBody(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	role, err := h.roles.CreateRole(r.Context(), req.Name, req.Description)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, toRoleRes(role))
}

func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.roles.ListRoles(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	res := make([]models.RoleRes, 0, len(roles))
	for _, role := range roles {
		res = append(res, toRoleRes(role))
	}
	middleware.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateRoleReq
	if err := h.decodeBody(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	role, err := h.roles.UpdateRole(r.Context(), req.ID, req.Name, req.Description)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, toRoleRes(role))
}

func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	roleID := chi.URLParam(r, "role_id")
	if err := h.roles.DeleteRole(r.Context(), roleID); err != nil {
		h.fail(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, models.MessageRes{Message: "Role " + roleID + " successfully deleted"})
}

func (h *Handler) AssignRole(w http.ResponseWriter, r *http.Request) {
	var req models.RoleAssignmentReq
	if err := h.decodeBody(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.roles.AssignRole(r.Context(), req.RoleName, req.UserID); err != nil {
		h.fail(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, models.MessageRes{
		Message: "Role " + req.RoleName + " successfully assigned to " + req.UserID,
	})
}

func (h *Handler) UnassignRole(w http.ResponseWriter, r *http.Request) {
	var req models.RoleAssignmentReq
	if err := h.decodeBody(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	if err := h.roles.UnassignRole(r.Context(), req.RoleName, req.UserID); err != nil {
		h.fail(w, r, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, models.MessageRes{
		Message: "Role " + req.RoleName + " successfully unassigned from " + req.UserID,
	})
}

func toRoleRes(role *repomodels.Role) models.RoleRes {
	return models.RoleRes{ID: role.ID, Name: role.Name, Description: role.Description}
}
