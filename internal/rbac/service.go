package rbac

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sharebrasil/portal/internal/shared"
)

// ErrUnknownRole indicates a role outside the assignable set.
var ErrUnknownRole = errors.New("rbac: unknown role")

// Store reads role assignments.
type Store interface {
	RolesFor(ctx context.Context, userID uuid.UUID) ([]string, error)
	CountByRole(ctx context.Context) (map[string]int, error)
}

// Service orchestrates RBAC lookups.
type Service struct {
	store Store
}

// NewService constructs a Service over store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// RolesFor returns the normalised roles currently assigned to the user.
func (s *Service) RolesFor(ctx context.Context, userID uuid.UUID) ([]string, error) {
	roles, err := s.store.RolesFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return normalizeRoles(roles), nil
}

// HasAny reports whether the principal holds at least one of roles according to user_roles.
// Token claims are not trusted for this check.
func (s *Service) HasAny(ctx context.Context, principal *shared.Principal, roles ...string) (bool, error) {
	if principal == nil {
		return false, nil
	}
	if principal.Service {
		return true, nil
	}
	granted, err := s.RolesFor(ctx, principal.UserID)
	if err != nil {
		return false, err
	}
	return hasAnyRole(granted, normalizeRoles(roles)), nil
}

// ListRoles returns every assignable role with its user count.
func (s *Service) ListRoles(ctx context.Context) ([]RoleCount, error) {
	counts, err := s.store.CountByRole(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]RoleCount, 0, len(shared.AllRoles()))
	for _, role := range shared.AllRoles() {
		out = append(out, RoleCount{Role: role, Users: counts[role]})
	}
	return out, nil
}

// PGStore implements Store on user_roles.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore constructs a PGStore.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// rolesForSQL yields no roles for deactivated accounts, so tokens issued before
// deactivation stop passing role checks.
const rolesForSQL = `SELECT ur.role FROM user_roles ur
JOIN auth_users u ON u.id = ur.user_id
WHERE ur.user_id = $1 AND u.is_active`

// RolesFor lists role names assigned to userID.
func (p *PGStore) RolesFor(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, err := p.pool.Query(ctx, rolesForSQL, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// CountByRole groups user_roles by role.
func (p *PGStore) CountByRole(ctx context.Context) (map[string]int, error) {
	rows, err := p.pool.Query(ctx, `SELECT role, COUNT(*) FROM user_roles GROUP BY role`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var role string
		var n int
		if err := rows.Scan(&role, &n); err != nil {
			return nil, err
		}
		counts[role] = n
	}
	return counts, rows.Err()
}

func normalizeRoles(roles []string) []string {
	unique := make(map[string]struct{}, len(roles))
	normalized := make([]string, 0, len(roles))
	for _, r := range roles {
		r = strings.TrimSpace(strings.ToLower(r))
		if r == "" {
			continue
		}
		if _, ok := unique[r]; ok {
			continue
		}
		unique[r] = struct{}{}
		normalized = append(normalized, r)
	}
	return normalized
}

func hasAnyRole(granted, required []string) bool {
	if len(required) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(granted))
	for _, g := range granted {
		set[g] = struct{}{}
	}
	for _, r := range required {
		if _, ok := set[r]; ok {
			return true
		}
	}
	return false
}
