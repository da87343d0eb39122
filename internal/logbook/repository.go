package logbook

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads logbook entries.
type Repository interface {
	EntriesFor(ctx context.Context, canac string, from, to time.Time) ([]Entry, error)
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

// EntriesFor returns entries in [from, to) where canac is PIC or SIC.
func (r *pgRepository) EntriesFor(ctx context.Context, canac string, from, to time.Time) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, date, COALESCE(aircraft_registration, ''), COALESCE(pic_canac, ''), COALESCE(sic_canac, ''),
	COALESCE(total_time, 0), COALESCE(night_time, 0), COALESCE(ifr_approaches, 0), COALESCE(landings, 0)
FROM logbook_entries
WHERE (pic_canac = $1 OR sic_canac = $1) AND date >= $2 AND date < $3
ORDER BY date, id`, canac, from, to)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Entry, error) {
		var e Entry
		err := row.Scan(&e.ID, &e.Date, &e.AircraftRegistration, &e.PICCanac, &e.SICCanac,
			&e.TotalTime, &e.NightTime, &e.IFRApproaches, &e.Landings)
		return e, err
	})
}
