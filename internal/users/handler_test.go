package users

import (
	"context"
	"encoding/json"
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

type storeFromMap map[uuid.UUID][]string

func (s storeFromMap) RolesFor(ctx context.Context, id uuid.UUID) ([]string, error) { return s[id], nil }
func (s storeFromMap) CountByRole(ctx context.Context) (map[string]int, error) { return nil, nil }

func TestFunctionsRoleGate(t *testing.T) {
	gestor, admin := uuid.New(), uuid.New()
	roles := rbac.NewService(storeFromMap{gestor: {shared.RoleGestor}, admin: {shared.RoleAdmin}})
	svc, _, _ := newTestService()
	svc.roles = roles
	h := NewHandler(nil, svc, rbac.Middleware{Service: roles})

	r := chi.NewRouter()
	r.Route("/functions/v1", h.MountFunctions)

	call := func(caller uuid.UUID, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req = req.WithContext(shared.ContextWithPrincipal(req.Context(), &shared.Principal{UserID: caller}))
		res := httptest.NewRecorder()
		r.ServeHTTP(res, req)
		return res
	}

	body := `{"email":"c@d.com","password":"S3nha!forte","full_name":"C"}`
	res := call(gestor, "/functions/v1/create-user", body)
	require.Equal(t, http.StatusCreated, res.Code)
	var out struct {
		Success bool `json:"success"`
		User    User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &out))
	require.True(t, out.Success)
	require.Equal(t, shared.RoleTripulante, out.User.Role)

	res = call(gestor, "/functions/v1/admin-create-user", `{"email":"e@f.com","password":"S3nha!forte","full_name":"E"}`)
	require.Equal(t, http.StatusForbidden, res.Code)

	res = call(admin, "/functions/v1/admin-create-user", `{"email":"e@f.com","password":"S3nha!forte","full_name":"E","is_active":false}`)
	require.Equal(t, http.StatusCreated, res.Code)

	res = call(gestor, "/functions/v1/create-user", `{"email":"g@h.com","password":"short","full_name":"G"}`)
	require.Equal(t, http.StatusBadRequest, res.Code)
	require.Contains(t, res.Body.String(), `"code":"weak_password"`)

	res = call(uuid.New(), "/functions/v1/delete-user", `{"user_id":"`+out.User.ID.String()+`"}`)
	require.Equal(t, http.StatusForbidden, res.Code)

	res = call(gestor, "/functions/v1/delete-user", `{"user_id":"`+out.User.ID.String()+`"}`)
	require.Equal(t, http.StatusOK, res.Code)
}
