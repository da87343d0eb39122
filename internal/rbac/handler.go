package rbac

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sharebrasil/portal/internal/platform/httpx"
	"github.com/sharebrasil/portal/internal/shared"
)

// Handler exposes role listings.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers role routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/me", h.myRoles)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.UserManagerRoles()...))
		r.Get("/", h.listRoles)
	})
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.ListRoles(r.Context())
	if err != nil {
		h.logger.Error("list roles", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": roles})
}

func (h *Handler) myRoles(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	if principal.Service {
		httpx.JSON(w, http.StatusOK, map[string]any{"service": true, "roles": shared.AllRoles()})
		return
	}
	roles, err := h.service.RolesFor(r.Context(), principal.UserID)
	if err != nil {
		h.logger.Error("load roles", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"user_id": principal.UserID, "roles": roles})
}
