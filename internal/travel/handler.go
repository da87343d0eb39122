package travel

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

// Handler exposes travel report endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	renderer *Renderer
	rbac     rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, renderer *Renderer, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, renderer: renderer, rbac: rbac}
}

// MountRoutes registers /travel-reports routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.TravelRoles()...))
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.show)
		r.Get("/{id}/print", h.print)
		r.Get("/{id}/pdf", h.pdf)
	})
}

// MountFunctions registers the generate-travel-pdf function.
func (h *Handler) MountFunctions(r chi.Router) {
	r.With(h.rbac.RequireAny(shared.TravelRoles()...)).Post("/generate-travel-pdf", h.generate)
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		httpx.ProblemWithCode(w, http.StatusBadRequest, "Validation Failed", err.Error(), httpx.CodeInvalidPayload)
	case errors.Is(err, ErrReportNotFound):
		httpx.ProblemWithCode(w, http.StatusNotFound, "Not Found", err.Error(), httpx.CodeNotFound)
	case errors.Is(err, ErrDuplicateSubmission):
		httpx.ProblemWithCode(w, http.StatusConflict, "Conflict", err.Error(), httpx.CodeConflict)
	default:
		h.logger.Error("travel request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in CreateReportInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	in.IdempotencyKey = r.Header.Get("Idempotency-Key")
	result, err := h.service.CreateReport(r.Context(), in)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, result)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := ReportFilter{Status: ReportStatus(q.Get("status"))}
	if raw := q.Get("client_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.respondError(w, r, ErrValidation)
			return
		}
		f.ClientID = &id
	}
	f.Limit, _ = strconv.Atoi(q.Get("limit"))
	f.Offset, _ = strconv.Atoi(q.Get("offset"))
	reports, err := h.service.ListReports(r.Context(), f)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"reports": reports})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.reportID(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	detail, err := h.service.GetReport(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, detail)
}

func (h *Handler) print(w http.ResponseWriter, r *http.Request) {
	id, ok := h.reportID(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	h.writeHTML(w, r, id, r.URL.Query().Get("download") == "1")
}

func (h *Handler) pdf(w http.ResponseWriter, r *http.Request) {
	id, ok := h.reportID(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	doc, err := h.renderer.RenderPDF(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.Filename(".pdf")+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Body)
}

type generateRequest struct {
	ReportID string `json:"reportId"`
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, ok := h.reportID(w, r, req.ReportID)
	if !ok {
		return
	}
	h.writeHTML(w, r, id, r.URL.Query().Get("download") == "1")
}

func (h *Handler) writeHTML(w http.ResponseWriter, r *http.Request, id uuid.UUID, download bool) {
	doc, err := h.renderer.RenderHTML(r.Context(), id, true)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if download {
		w.Header().Set("Content-Disposition", `attachment; filename="`+doc.Filename(".html")+`"`)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Body)
}

func (h *Handler) reportID(w http.ResponseWriter, r *http.Request, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		httpx.ProblemWithCode(w, http.StatusBadRequest, "Validation Failed", "invalid report id", httpx.CodeInvalidPayload)
		return uuid.Nil, false
	}
	return id, true
}
