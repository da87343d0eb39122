package reconciliation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/sharebrasil/portal/internal/platform/db"
)

// CrewExpense is the slice of a travel expense the bank ledger needs.
type CrewExpense struct {
	ID     uuid.UUID
	Payer  string
	Amount decimal.Decimal
}

// Repository persists the three ledgers.
type Repository interface {
	ListClient(ctx context.Context, status string) ([]ClientEntry, error)
	ListCrew(ctx context.Context, status string) ([]CrewEntry, error)
	ListBank(ctx context.Context, status string) ([]BankEntry, error)
	UpdateClientStatus(ctx context.Context, id uuid.UUID, status string, stamps Stamps) (ClientEntry, error)
	UpdateCrewStatus(ctx context.Context, id uuid.UUID, status string, stamps Stamps) (CrewEntry, error)
	UpdateBankStatus(ctx context.Context, id uuid.UUID, status string, stamps Stamps) (BankEntry, error)
	GetExpense(ctx context.Context, expenseID uuid.UUID) (CrewExpense, error)
	InsertBank(ctx context.Context, expense CrewExpense) (BankEntry, error)
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const selectClient = `SELECT cr.id, cr.travel_report_id, COALESCE(tr.number, ''), cr.client_id, COALESCE(c.company_name, ''),
	COALESCE(cr.aircraft_registration, ''), cr.amount, cr.status, cr.sent_date, cr.paid_date, cr.created_at
FROM client_reconciliations cr
LEFT JOIN clients c ON c.id = cr.client_id
LEFT JOIN travel_reports tr ON tr.id = cr.travel_report_id`

const selectCrew = `SELECT cw.id, cw.travel_report_id, COALESCE(tr.number, ''), cw.crew_member, cw.amount, cw.status, cw.paid_date, cw.created_at
FROM crew_reconciliations cw
LEFT JOIN travel_reports tr ON tr.id = cw.travel_report_id`

const selectBank = `SELECT br.id, br.travel_expense_id, te.travel_report_id, COALESCE(tr.number, ''), COALESCE(tr.crew_member, ''),
	te.category, COALESCE(te.description, ''), br.amount, br.status, br.paid_date, br.created_at
FROM bank_reconciliations br
JOIN travel_expenses te ON te.id = br.travel_expense_id
JOIN travel_reports tr ON tr.id = te.travel_report_id`

func scanClient(row pgx.Row) (ClientEntry, error) {
	var e ClientEntry
	err := row.Scan(&e.ID, &e.TravelReportID, &e.ReportNumber, &e.ClientID, &e.ClientName,
		&e.AircraftRegistration, &e.Amount, &e.Status, &e.SentDate, &e.PaidDate, &e.CreatedAt)
	return e, err
}

func scanCrew(row pgx.Row) (CrewEntry, error) {
	var e CrewEntry
	err := row.Scan(&e.ID, &e.TravelReportID, &e.ReportNumber, &e.CrewMember, &e.Amount, &e.Status, &e.PaidDate, &e.CreatedAt)
	return e, err
}

func scanBank(row pgx.Row) (BankEntry, error) {
	var e BankEntry
	err := row.Scan(&e.ID, &e.TravelExpenseID, &e.TravelReportID, &e.ReportNumber, &e.CrewMember,
		&e.Category, &e.Description, &e.Amount, &e.Status, &e.PaidDate, &e.CreatedAt)
	return e, err
}

func (r *pgRepository) ListClient(ctx context.Context, status string) ([]ClientEntry, error) {
	rows, err := r.pool.Query(ctx, selectClient+` WHERE ($1 = '' OR cr.status = $1) ORDER BY cr.created_at DESC`, status)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (ClientEntry, error) { return scanClient(row) })
}

func (r *pgRepository) ListCrew(ctx context.Context, status string) ([]CrewEntry, error) {
	rows, err := r.pool.Query(ctx, selectCrew+` WHERE ($1 = '' OR cw.status = $1) ORDER BY cw.created_at DESC`, status)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (CrewEntry, error) { return scanCrew(row) })
}

func (r *pgRepository) ListBank(ctx context.Context, status string) ([]BankEntry, error) {
	rows, err := r.pool.Query(ctx, selectBank+` WHERE ($1 = '' OR br.status = $1) ORDER BY br.created_at DESC`, status)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (BankEntry, error) { return scanBank(row) })
}

// Updates run inside one transaction so the joined row returned reflects the write.

func (r *pgRepository) UpdateClientStatus(ctx context.Context, id uuid.UUID, status string, stamps Stamps) (ClientEntry, error) {
	var out ClientEntry
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE client_reconciliations
SET status = $2, sent_date = COALESCE($3, sent_date), paid_date = COALESCE($4, paid_date), updated_at = NOW()
WHERE id = $1`, id, status, stamps.SentDate, stamps.PaidDate)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		out, err = scanClient(tx.QueryRow(ctx, selectClient+` WHERE cr.id = $1`, id))
		return err
	})
	return out, err
}

func (r *pgRepository) UpdateCrewStatus(ctx context.Context, id uuid.UUID, status string, stamps Stamps) (CrewEntry, error) {
	var out CrewEntry
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE crew_reconciliations
SET status = $2, paid_date = COALESCE($3, paid_date), updated_at = NOW()
WHERE id = $1`, id, status, stamps.PaidDate)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		out, err = scanCrew(tx.QueryRow(ctx, selectCrew+` WHERE cw.id = $1`, id))
		return err
	})
	return out, err
}

func (r *pgRepository) UpdateBankStatus(ctx context.Context, id uuid.UUID, status string, stamps Stamps) (BankEntry, error) {
	var out BankEntry
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE bank_reconciliations
SET status = $2, paid_date = COALESCE($3, paid_date), updated_at = NOW()
WHERE id = $1`, id, status, stamps.PaidDate)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		out, err = scanBank(tx.QueryRow(ctx, selectBank+` WHERE br.id = $1`, id))
		return err
	})
	return out, err
}

func (r *pgRepository) GetExpense(ctx context.Context, expenseID uuid.UUID) (CrewExpense, error) {
	var e CrewExpense
	err := r.pool.QueryRow(ctx, `SELECT id, payer, amount FROM travel_expenses WHERE id = $1`, expenseID).
		Scan(&e.ID, &e.Payer, &e.Amount)
	if errors.Is(err, pgx.ErrNoRows) {
		return CrewExpense{}, ErrNotFound
	}
	return e, err
}

func (r *pgRepository) InsertBank(ctx context.Context, expense CrewExpense) (BankEntry, error) {
	var out BankEntry
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var id uuid.UUID
		err := tx.QueryRow(ctx, `INSERT INTO bank_reconciliations (id, travel_expense_id, amount, status)
VALUES ($1, $2, $3, $4) RETURNING id`, uuid.New(), expense.ID, expense.Amount, StatusPending).Scan(&id)
		if db.IsUniqueViolation(err) {
			return ErrAlreadyRegistered
		}
		if err != nil {
			return err
		}
		out, err = scanBank(tx.QueryRow(ctx, selectBank+` WHERE br.id = $1`, id))
		return err
	})
	return out, err
}
