package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/AtoyanMikhail/tokenauth/internal/middleware"
	"github.com/AtoyanMikhail/tokenauth/internal/service"
)

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.AccessLog(h.logger))
	r.Use(chimw.Recoverer)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/sign-up", h.SignUp)
		r.Post("/sign-in", h.SignIn)
		r.Get("/refresh", h.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(h.mw.RequireAccessToken)

			r.Get("/logout", h.Logout)
			r.Get("/logout_all", h.LogoutAll)
			r.Get("/me", h.Me)
			r.Get("/login_history", h.LoginHistory)
			r.Get("/authorize", h.Authorize)
			r.Get("/sessions", h.Sessions)
			r.With(h.mw.RequireFresh).Post("/change_password", h.ChangePassword)
		})
	})

	r.Route("/roles", func(r chi.Router) {
		r.Use(h.mw.RequireRole(service.AdminRole))

		r.Post("/", h.CreateRole)
		r.Get("/", h.ListRoles)
		r.Put("/", h.UpdateRole)
		r.Delete("/{role_id}", h.DeleteRole)
		r.Post("/assign", h.AssignRole)
		r.Post("/unassign", h.UnassignRole)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusNotFound, "The requested URL was not found on the server")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusMethodNotAllowed, "The method is not allowed for the requested URL")
	})

	return r
}
