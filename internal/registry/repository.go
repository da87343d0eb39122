package registry

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the registry row does not exist.
var ErrNotFound = errors.New("registry: not found")

// Repository reads the registry tables.
type Repository interface {
	ListClients(ctx context.Context, f ListFilter) ([]Client, error)
	GetClient(ctx context.Context, id uuid.UUID) (Client, error)
	ListAircraft(ctx context.Context, f ListFilter) ([]Aircraft, error)
	ListCrewMembers(ctx context.Context, f ListFilter) ([]CrewMember, error)
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) ListClients(ctx context.Context, f ListFilter) ([]Client, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, company_name, COALESCE(cnpj, '') FROM clients
WHERE ($1 = '' OR company_name ILIKE '%' || $1 || '%')
ORDER BY company_name LIMIT $2 OFFSET $3`, f.Search, f.Limit, f.Offset)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Client, error) {
		var c Client
		err := row.Scan(&c.ID, &c.CompanyName, &c.CNPJ)
		return c, err
	})
}

func (r *pgRepository) GetClient(ctx context.Context, id uuid.UUID) (Client, error) {
	var c Client
	err := r.pool.QueryRow(ctx, `SELECT id, company_name, COALESCE(cnpj, '') FROM clients WHERE id = $1`, id).
		Scan(&c.ID, &c.CompanyName, &c.CNPJ)
	if errors.Is(err, pgx.ErrNoRows) {
		return Client{}, ErrNotFound
	}
	return c, err
}

func (r *pgRepository) ListAircraft(ctx context.Context, f ListFilter) ([]Aircraft, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, registration, COALESCE(model, ''), COALESCE(status, '') FROM aircraft
WHERE ($1 = '' OR registration ILIKE '%' || $1 || '%' OR model ILIKE '%' || $1 || '%')
  AND ($2 = '' OR status = $2)
ORDER BY registration LIMIT $3 OFFSET $4`, f.Search, f.Status, f.Limit, f.Offset)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Aircraft, error) {
		var a Aircraft
		err := row.Scan(&a.ID, &a.Registration, &a.Model, &a.Status)
		return a, err
	})
}

func (r *pgRepository) ListCrewMembers(ctx context.Context, f ListFilter) ([]CrewMember, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, full_name, COALESCE(canac, ''), COALESCE(status, '') FROM crew_members
WHERE ($1 = '' OR full_name ILIKE '%' || $1 || '%' OR canac = $1)
  AND ($2 = '' OR status = $2)
ORDER BY full_name LIMIT $3 OFFSET $4`, f.Search, f.Status, f.Limit, f.Offset)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (CrewMember, error) {
		var m CrewMember
		err := row.Scan(&m.ID, &m.FullName, &m.CANAC, &m.Status)
		return m, err
	})
}
