package users

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sharebrasil/portal/internal/platform/httpx"
	"github.com/sharebrasil/portal/internal/rbac"
	"github.com/sharebrasil/portal/internal/shared"
)

// Handler exposes the user-management functions.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountFunctions registers the function endpoints. The router must already authenticate the caller.
func (h *Handler) MountFunctions(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.UserManagerRoles()...))
		r.Post("/create-user", h.create(ModeManager))
		r.Post("/update-user", h.update(ModeManager))
		r.Post("/delete-user", h.delete)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.RoleAdmin))
		r.Post("/admin-create-user", h.create(ModeAdmin))
		r.Post("/admin-update-user", h.update(ModeAdmin))
	})
}

// MountRoutes registers read routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.UserManagerRoles()...))
		r.Get("/", h.list)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	p, perPage := shared.PageParams(r)
	page := shared.NewPagination(p, perPage, 0)
	users, err := h.service.ListUsers(r.Context(), page)
	if err != nil {
		h.fail(w, "list users", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"users": users, "pagination": page})
}

func (h *Handler) create(mode Mode) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in CreateInput
		if err := httpx.DecodeJSON(r, &in); err != nil {
			httpx.RespondError(w, err)
			return
		}
		user, err := h.service.Create(r.Context(), mode, in)
		if err != nil {
			h.fail(w, "create user", err)
			return
		}
		httpx.JSON(w, http.StatusCreated, map[string]any{"success": true, "user": user})
	}
}

func (h *Handler) update(mode Mode) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in UpdateInput
		if err := httpx.DecodeJSON(r, &in); err != nil {
			httpx.RespondError(w, err)
			return
		}
		user, err := h.service.Update(r.Context(), mode, in)
		if err != nil {
			h.fail(w, "update user", err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "user": user})
	}
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	var in DeleteInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), in); err != nil {
		h.fail(w, "delete user", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	var status int
	var coded *httpx.CodedError
	if errors.As(err, &coded) {
		status = coded.Status
	}
	if status == 0 || status >= http.StatusInternalServerError {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
