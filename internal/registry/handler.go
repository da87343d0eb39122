package registry

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sharebrasil/portal/internal/platform/httpx"
	"github.com/sharebrasil/portal/internal/rbac"
	"github.com/sharebrasil/portal/internal/shared"
)

// Handler exposes read-only registry endpoints.
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

// MountRoutes registers registry routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.OperationsRoles()...))
		r.Get("/clients", h.listClients)
		r.Get("/clients/{id}", h.showClient)
		r.Get("/aircraft", h.listAircraft)
		r.Get("/crew-members", h.listCrewMembers)
	})
}

func filterFromRequest(r *http.Request) ListFilter {
	q := r.URL.Query()
	f := ListFilter{Search: q.Get("q"), Status: q.Get("status")}
	f.Limit, _ = strconv.Atoi(q.Get("limit"))
	f.Offset, _ = strconv.Atoi(q.Get("offset"))
	return f
}

func (h *Handler) listClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.service.ListClients(r.Context(), filterFromRequest(r))
	if err != nil {
		h.logger.Error("list clients", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"clients": clients})
}

func (h *Handler) showClient(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	client, err := h.service.GetClient(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("get client", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

func (h *Handler) listAircraft(w http.ResponseWriter, r *http.Request) {
	aircraft, err := h.service.ListAircraft(r.Context(), filterFromRequest(r))
	if err != nil {
		h.logger.Error("list aircraft", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"aircraft": aircraft})
}

func (h *Handler) listCrewMembers(w http.ResponseWriter, r *http.Request) {
	crew, err := h.service.ListCrewMembers(r.Context(), filterFromRequest(r))
	if err != nil {
		h.logger.Error("list crew members", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"crew_members": crew})
}
