package logbook

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sharebrasil/portal/internal/platform/httpx"
	"github.com/sharebrasil/portal/internal/rbac"
	"github.com/sharebrasil/portal/internal/shared"
)

// Handler exposes flight-hour endpoints.
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

// MountRoutes registers /logbook routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.RequireAny(shared.OperationsRoles()...)).Get("/flight-hours/{canac}", h.flightHours)
}

func (h *Handler) flightHours(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.FlightHours(r.Context(), chi.URLParam(r, "canac"), r.URL.Query().Get("month"))
	if err != nil {
		if errors.Is(err, ErrValidation) {
			httpx.ProblemWithCode(w, http.StatusBadRequest, "Validation Failed", err.Error(), httpx.CodeInvalidPayload)
			return
		}
		h.logger.Error("flight hours", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}
