package reconciliation

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sharebrasil/portal/internal/platform/httpx"
	"github.com/sharebrasil/portal/internal/rbac"
	"github.com/sharebrasil/portal/internal/shared"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler exposes the reconciliation dashboards.
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

// MountRoutes registers /reconciliations routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.FinanceRoles()...))

		r.Get("/client", h.listClient)
		r.Get("/client/summary", h.clientSummary)
		r.Get("/client/export.xlsx", h.exportClient)
		r.Patch("/client/{id}", h.updateClient)

		r.Get("/crew", h.listCrew)
		r.Get("/crew/summary", h.crewSummary)
		r.Patch("/crew/{id}", h.updateCrew)

		r.Get("/bank", h.listBank)
		r.Get("/bank/summary", h.bankSummary)
		r.Post("/bank", h.createBank)
		r.Patch("/bank/{id}", h.updateBank)
	})
}

type statusRequest struct {
	Status string `json:"status"`
}

type createBankRequest struct {
	TravelExpenseID uuid.UUID `json:"travel_expense_id"`
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrNotCrewPaid):
		httpx.ProblemWithCode(w, http.StatusBadRequest, "Validation Failed", err.Error(), httpx.CodeInvalidPayload)
	case errors.Is(err, ErrNotFound):
		httpx.ProblemWithCode(w, http.StatusNotFound, "Not Found", err.Error(), httpx.CodeNotFound)
	case errors.Is(err, ErrAlreadyRegistered):
		httpx.ProblemWithCode(w, http.StatusConflict, "Conflict", err.Error(), httpx.CodeConflict)
	default:
		h.logger.Error("reconciliation request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func (h *Handler) listClient(w http.ResponseWriter, r *http.Request) {
	ledger, err := h.service.ListClient(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ledger)
}

func (h *Handler) listCrew(w http.ResponseWriter, r *http.Request) {
	ledger, err := h.service.ListCrew(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ledger)
}

func (h *Handler) listBank(w http.ResponseWriter, r *http.Request) {
	ledger, err := h.service.ListBank(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ledger)
}

func (h *Handler) clientSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.ClientSummary(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) crewSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.CrewSummary(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) bankSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.BankSummary(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) exportClient(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.service.ExportClientXLSX(r.Context(), &buf, r.URL.Query().Get("status")); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="conciliacao-clientes.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) updateClient(w http.ResponseWriter, r *http.Request) {
	id, status, ok := h.transitionRequest(w, r)
	if !ok {
		return
	}
	entry, err := h.service.UpdateClientStatus(r.Context(), id, status)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) updateCrew(w http.ResponseWriter, r *http.Request) {
	id, status, ok := h.transitionRequest(w, r)
	if !ok {
		return
	}
	entry, err := h.service.UpdateCrewStatus(r.Context(), id, status)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) updateBank(w http.ResponseWriter, r *http.Request) {
	id, status, ok := h.transitionRequest(w, r)
	if !ok {
		return
	}
	entry, err := h.service.UpdateBankStatus(r.Context(), id, status)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) createBank(w http.ResponseWriter, r *http.Request) {
	var req createBankRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if req.TravelExpenseID == uuid.Nil {
		httpx.ProblemWithCode(w, http.StatusBadRequest, "Validation Failed", "travel_expense_id is required", httpx.CodeInvalidPayload)
		return
	}
	entry, err := h.service.CreateBank(r.Context(), req.TravelExpenseID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) transitionRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, string, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.ProblemWithCode(w, http.StatusBadRequest, "Validation Failed", "invalid id", httpx.CodeInvalidPayload)
		return uuid.Nil, "", false
	}
	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return uuid.Nil, "", false
	}
	return id, req.Status, true
}
