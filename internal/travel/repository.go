package travel

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sharebrasil/portal/internal/platform/db"
)

// Repository defines travel report data access.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error

	GetReport(ctx context.Context, id uuid.UUID) (Report, error)
	ClientName(ctx context.Context, clientID uuid.UUID) (string, error)
	ListExpenses(ctx context.Context, reportID uuid.UUID) ([]Expense, error)
	ListReports(ctx context.Context, filter ReportFilter) ([]Report, error)
	SetPDFURL(ctx context.Context, id uuid.UUID, url string) error
}

// TxRepository defines the writes of one submission.
type TxRepository interface {
	ClientName(ctx context.Context, clientID uuid.UUID) (string, error)
	// NextSequence atomically allocates the next report sequence for the client.
	NextSequence(ctx context.Context, clientID uuid.UUID, clientName string) (int, error)
	InsertReport(ctx context.Context, report Report) (Report, error)
	InsertExpense(ctx context.Context, expense Expense) (Expense, error)
	InsertClientReconciliation(ctx context.Context, rec ClientReconciliation) (uuid.UUID, error)
	InsertCrewReconciliation(ctx context.Context, rec CrewReconciliation) (uuid.UUID, error)
}

var _ Repository = (*pgRepository)(nil)
var _ TxRepository = (*pgTxRepository)(nil)

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

// WithTx runs fn in a read-committed transaction so the counter upsert waits
// for concurrent submissions instead of failing them.
func (r *pgRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTxOptions(ctx, r.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		return fn(ctx, &pgTxRepository{tx: tx})
	})
}

const selectReport = `SELECT r.id, r.number, r.client_id, COALESCE(c.company_name, ''), r.aircraft_registration, r.crew_member,
	r.destination, r.start_date, r.end_date, COALESCE(r.description, ''), r.total_amount, r.status, r.type,
	COALESCE(r.pdf_url, ''), COALESCE(r.created_by, '00000000-0000-0000-0000-000000000000'::uuid), r.created_at
FROM travel_reports r LEFT JOIN clients c ON c.id = r.client_id`

func scanReport(row pgx.Row) (Report, error) {
	var rep Report
	err := row.Scan(&rep.ID, &rep.Number, &rep.ClientID, &rep.ClientName, &rep.AircraftRegistration, &rep.CrewMember,
		&rep.Destination, &rep.StartDate, &rep.EndDate, &rep.Description, &rep.TotalAmount, &rep.Status, &rep.Type,
		&rep.PDFURL, &rep.CreatedBy, &rep.CreatedAt)
	return rep, err
}

func (r *pgRepository) GetReport(ctx context.Context, id uuid.UUID) (Report, error) {
	rep, err := scanReport(r.pool.QueryRow(ctx, selectReport+` WHERE r.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Report{}, ErrReportNotFound
	}
	return rep, err
}

func clientName(ctx context.Context, q querier, clientID uuid.UUID) (string, error) {
	var name string
	err := q.QueryRow(ctx, `SELECT company_name FROM clients WHERE id = $1`, clientID).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("%w: unknown client", ErrValidation)
	}
	return name, err
}

func (r *pgRepository) ClientName(ctx context.Context, clientID uuid.UUID) (string, error) {
	return clientName(ctx, r.pool, clientID)
}

func (r *pgRepository) ListExpenses(ctx context.Context, reportID uuid.UUID) ([]Expense, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, travel_report_id, category, description, amount, payer, COALESCE(receipt_url, ''), created_at
FROM travel_expenses WHERE travel_report_id = $1 ORDER BY created_at, id`, reportID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Expense, error) {
		var e Expense
		err := row.Scan(&e.ID, &e.TravelReportID, &e.Category, &e.Description, &e.Amount, &e.Payer, &e.ReceiptURL, &e.CreatedAt)
		return e, err
	})
}

func (r *pgRepository) ListReports(ctx context.Context, f ReportFilter) ([]Report, error) {
	rows, err := r.pool.Query(ctx, selectReport+`
WHERE ($1::uuid IS NULL OR r.client_id = $1)
  AND ($2 = '' OR r.status = $2)
ORDER BY r.created_at DESC LIMIT $3 OFFSET $4`, f.ClientID, string(f.Status), f.Limit, f.Offset)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Report, error) {
		return scanReport(row)
	})
}

func (r *pgRepository) SetPDFURL(ctx context.Context, id uuid.UUID, url string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE travel_reports SET pdf_url = $2 WHERE id = $1`, id, url)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrReportNotFound
	}
	return nil
}

type pgTxRepository struct {
	tx pgx.Tx
}

func (r *pgTxRepository) ClientName(ctx context.Context, clientID uuid.UUID) (string, error) {
	return clientName(ctx, r.tx, clientID)
}

// nextSequenceSQL matches legacy numbers on the literal company name; LIKE
// would treat % and _ in the name as wildcards.
const nextSequenceSQL = `WITH seed AS (
	SELECT COALESCE(MAX((substring(number FROM 'REL\s*(\d+)'))::int), 0) AS last
	FROM travel_reports WHERE strpos(lower(number), lower($2)) > 0
)
INSERT INTO travel_report_counters (client_id, last_seq)
SELECT $1, seed.last + 1 FROM seed
ON CONFLICT (client_id) DO UPDATE SET last_seq = travel_report_counters.last_seq + 1, updated_at = NOW()
RETURNING last_seq`

// NextSequence seeds the counter from the highest legacy "REL NNN" among the
// client's reports the first time, then increments it atomically.
func (r *pgTxRepository) NextSequence(ctx context.Context, clientID uuid.UUID, name string) (int, error) {
	var seq int
	err := r.tx.QueryRow(ctx, nextSequenceSQL, clientID, name).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("allocate report number: %w", err)
	}
	return seq, nil
}

func (r *pgTxRepository) InsertReport(ctx context.Context, rep Report) (Report, error) {
	var createdBy *uuid.UUID
	if rep.CreatedBy != uuid.Nil {
		createdBy = &rep.CreatedBy
	}
	err := r.tx.QueryRow(ctx, `INSERT INTO travel_reports
	(number, client_id, aircraft_registration, crew_member, destination, start_date, end_date, description, total_amount, status, type, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10, $11, $12)
RETURNING id, created_at`,
		rep.Number, rep.ClientID, rep.AircraftRegistration, rep.CrewMember, rep.Destination, rep.StartDate, rep.EndDate,
		rep.Description, rep.TotalAmount, string(rep.Status), string(rep.Type), createdBy).Scan(&rep.ID, &rep.CreatedAt)
	if err != nil {
		return Report{}, fmt.Errorf("insert travel report: %w", err)
	}
	return rep, nil
}

func (r *pgTxRepository) InsertExpense(ctx context.Context, e Expense) (Expense, error) {
	err := r.tx.QueryRow(ctx, `INSERT INTO travel_expenses (travel_report_id, category, description, amount, payer, receipt_url)
VALUES ($1, $2, $3, $4, $5, NULLIF($6, '')) RETURNING id, created_at`,
		e.TravelReportID, string(e.Category), e.Description, e.Amount, string(e.Payer), e.ReceiptURL).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return Expense{}, fmt.Errorf("insert travel expense: %w", err)
	}
	return e, nil
}

func (r *pgTxRepository) InsertClientReconciliation(ctx context.Context, rec ClientReconciliation) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.tx.QueryRow(ctx, `INSERT INTO client_reconciliations (travel_report_id, client_id, aircraft_registration, amount, status)
VALUES ($1, $2, $3, $4, 'pendente') RETURNING id`, rec.TravelReportID, rec.ClientID, rec.AircraftRegistration, rec.Amount).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert client reconciliation: %w", err)
	}
	return id, nil
}

func (r *pgTxRepository) InsertCrewReconciliation(ctx context.Context, rec CrewReconciliation) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.tx.QueryRow(ctx, `INSERT INTO crew_reconciliations (travel_report_id, crew_member, amount, status)
VALUES ($1, $2, $3, 'pendente') RETURNING id`, rec.TravelReportID, rec.CrewMember, rec.Amount).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert crew reconciliation: %w", err)
	}
	return id, nil
}
