package reconciliation

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/sharebrasil/portal/internal/rbac"
	"github.com/sharebrasil/portal/internal/shared"
)

type staticRoles []string

func (s staticRoles) RolesFor(ctx context.Context, id uuid.UUID) ([]string, error) { return s, nil }

func (s staticRoles) CountByRole(ctx context.Context) (map[string]int, error) {
	return nil, errors.New("unused")
}

func newRouter(f *fixture, roles ...string) http.Handler {
	h := NewHandler(nil, f.svc, rbac.Middleware{Service: rbac.NewService(staticRoles(roles))})
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			p := &shared.Principal{UserID: uuid.New()}
			next.ServeHTTP(w, req.WithContext(shared.ContextWithPrincipal(req.Context(), p)))
		})
	})
	r.Route("/reconciliations", h.MountRoutes)
	return r
}

func TestHandlerTransitions(t *testing.T) {
	f := newFixture(t)
	row := f.repo.addClient("300", StatusPendente)
	router := newRouter(f, shared.RoleFinanceiro)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodPatch, "/reconciliations/client/"+row.ID.String(), strings.NewReader(`{"status":"enviado"}`)))
	require.Equal(t, http.StatusOK, res.Code, res.Body.String())
	require.Contains(t, res.Body.String(), `"status":"enviado"`)
	require.Contains(t, res.Body.String(), `"sent_date"`)

	res = httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodPatch, "/reconciliations/client/"+row.ID.String(), strings.NewReader(`{"status":"voando"}`)))
	require.Equal(t, http.StatusBadRequest, res.Code)
	require.Contains(t, res.Body.String(), `"code":"invalid_payload"`)

	res = httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodPatch, "/reconciliations/crew/"+uuid.NewString(), strings.NewReader(`{"status":"pago"}`)))
	require.Equal(t, http.StatusNotFound, res.Code)

	res = httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/reconciliations/client?status=enviado", nil))
	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), `"enviado":"300"`)
}

func TestHandlerBankAndExport(t *testing.T) {
	f := newFixture(t)
	expense := f.repo.addExpense("Tripulante", "75")
	f.repo.addClient("300", StatusPendente)
	router := newRouter(f, shared.RoleGestor)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/reconciliations/bank", strings.NewReader(`{"travel_expense_id":"`+expense.String()+`"}`)))
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())

	res = httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/reconciliations/bank", strings.NewReader(`{"travel_expense_id":"`+expense.String()+`"}`)))
	require.Equal(t, http.StatusConflict, res.Code)

	res = httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/reconciliations/client/export.xlsx", nil))
	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, xlsxContentType, res.Header().Get("Content-Type"))
	require.NotZero(t, res.Body.Len())
}

func TestHandlerRequiresFinanceRole(t *testing.T) {
	f := newFixture(t)
	router := newRouter(f, shared.RoleTripulante, shared.RoleOperacional)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/reconciliations/client", nil))
	require.Equal(t, http.StatusForbidden, res.Code)
}
