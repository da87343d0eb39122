package rbac

import (
	"log/slog"
	"net/http"

	"github.com/sharebrasil/portal/internal/platform/httpx"
	"github.com/sharebrasil/portal/internal/shared"
)

// Middleware wires RBAC authorization helpers for HTTP handlers.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

// RequireAny ensures the current principal has at least one of the required roles.
// Roles are re-read from the store on every request.
func (m Middleware) RequireAny(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := shared.PrincipalFromContext(r.Context())
			if principal == nil {
				httpx.ProblemWithCode(w, http.StatusUnauthorized, "Unauthorized", "missing principal", httpx.CodeUnauthorized)
				return
			}
			ok, err := m.Service.HasAny(r.Context(), principal, roles...)
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("rbac require any", slog.Any("error", err))
				}
				httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
				return
			}
			if !ok {
				httpx.ProblemWithCode(w, http.StatusForbidden, "Forbidden", "insufficient role", httpx.CodeForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
