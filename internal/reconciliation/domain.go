// Package reconciliation serves the client, crew and bank settlement ledgers.
package reconciliation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound indicates the ledger row does not exist.
	ErrNotFound = errors.New("reconciliation: not found")
	// ErrInvalidStatus indicates the target status is not part of the ledger's set.
	ErrInvalidStatus = errors.New("reconciliation: invalid status")
	// ErrNotCrewPaid indicates an expense that the crew did not pay was offered for bank settlement.
	ErrNotCrewPaid = errors.New("reconciliation: expense was not paid by the crew")
	// ErrAlreadyRegistered indicates the expense already has a bank settlement row.
	ErrAlreadyRegistered = errors.New("reconciliation: expense already registered")
)

// Ledger names one of the three settlement ledgers.
type Ledger string

const (
	LedgerClient Ledger = "client"
	LedgerCrew   Ledger = "crew"
	LedgerBank   Ledger = "bank"
)

// Status values per ledger. Client and crew ledgers speak Portuguese; the
// bank ledger stores English literals.
const (
	StatusPendente = "pendente"
	StatusEnviado  = "enviado"
	StatusPago     = "pago"

	StatusPending   = "pending"
	StatusPaid      = "paid"
	StatusCompleted = "completed"
)

var ledgerStatuses = map[Ledger][]string{
	LedgerClient: {StatusPendente, StatusEnviado, StatusPago},
	LedgerCrew:   {StatusPendente, StatusPago},
	LedgerBank:   {StatusPending, StatusPaid, StatusCompleted},
}

// Statuses lists the recognised statuses of ledger.
func (l Ledger) Statuses() []string {
	return append([]string(nil), ledgerStatuses[l]...)
}

// ParseStatus normalises raw and checks it against the ledger's set. Blank
// input is accepted as "no filter" only when allowBlank is set.
func (l Ledger) ParseStatus(raw string, allowBlank bool) (string, error) {
	status := strings.ToLower(strings.TrimSpace(raw))
	if status == "" && allowBlank {
		return "", nil
	}
	for _, s := range ledgerStatuses[l] {
		if s == status {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q for %s ledger", ErrInvalidStatus, raw, l)
}

// Stamps tells which date columns a transition sets.
type Stamps struct {
	SentDate *time.Time
	PaidDate *time.Time
}

// StampsFor returns the date fields a move to status stamps at the given instant.
// Any recognised status may follow any other; only the stamp differs.
func StampsFor(l Ledger, status string, at time.Time) Stamps {
	var s Stamps
	switch l {
	case LedgerClient:
		switch status {
		case StatusEnviado:
			s.SentDate = &at
		case StatusPago:
			s.PaidDate = &at
		}
	case LedgerCrew:
		if status == StatusPago {
			s.PaidDate = &at
		}
	case LedgerBank:
		if status == StatusPaid || status == StatusCompleted {
			s.PaidDate = &at
		}
	}
	return s
}

// ClientEntry is one client_reconciliations row joined to its client and report.
type ClientEntry struct {
	ID                   uuid.UUID       `json:"id"`
	TravelReportID       uuid.UUID       `json:"travel_report_id"`
	ReportNumber         string          `json:"report_number"`
	ClientID             uuid.UUID       `json:"client_id"`
	ClientName           string          `json:"client_name"`
	AircraftRegistration string          `json:"aircraft_registration"`
	Amount               decimal.Decimal `json:"amount"`
	Status               string          `json:"status"`
	SentDate             *time.Time      `json:"sent_date,omitempty"`
	PaidDate             *time.Time      `json:"paid_date,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
}

// CrewEntry is one crew_reconciliations row.
type CrewEntry struct {
	ID             uuid.UUID       `json:"id"`
	TravelReportID uuid.UUID       `json:"travel_report_id"`
	ReportNumber   string          `json:"report_number"`
	CrewMember     string          `json:"crew_member"`
	Amount         decimal.Decimal `json:"amount"`
	Status         string          `json:"status"`
	PaidDate       *time.Time      `json:"paid_date,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// BankEntry is one bank_reconciliations row joined to its expense and report.
type BankEntry struct {
	ID              uuid.UUID       `json:"id"`
	TravelExpenseID uuid.UUID       `json:"travel_expense_id"`
	TravelReportID  uuid.UUID       `json:"travel_report_id"`
	ReportNumber    string          `json:"report_number"`
	CrewMember      string          `json:"crew_member"`
	Category        string          `json:"category"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"`
	Status          string          `json:"status"`
	PaidDate        *time.Time      `json:"paid_date,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ClientSummary totals the client ledger by status.
type ClientSummary struct {
	Pago     decimal.Decimal `json:"pago"`
	Enviado  decimal.Decimal `json:"enviado"`
	Pendente decimal.Decimal `json:"pendente"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}

// CrewSummary totals the crew ledger by status.
type CrewSummary struct {
	Pago     decimal.Decimal `json:"pago"`
	Pendente decimal.Decimal `json:"pendente"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}

// BankSummary totals the bank ledger by status.
type BankSummary struct {
	Paid      decimal.Decimal `json:"paid"`
	Pending   decimal.Decimal `json:"pending"`
	Completed decimal.Decimal `json:"completed"`
	Total     decimal.Decimal `json:"total"`
	Count     int             `json:"count"`
}

// SummarizeClient totals entries by status.
func SummarizeClient(entries []ClientEntry) ClientSummary {
	var s ClientSummary
	for _, e := range entries {
		switch e.Status {
		case StatusPago:
			s.Pago = s.Pago.Add(e.Amount)
		case StatusEnviado:
			s.Enviado = s.Enviado.Add(e.Amount)
		default:
			s.Pendente = s.Pendente.Add(e.Amount)
		}
		s.Total = s.Total.Add(e.Amount)
		s.Count++
	}
	return s
}

// SummarizeCrew totals entries by status.
func SummarizeCrew(entries []CrewEntry) CrewSummary {
	var s CrewSummary
	for _, e := range entries {
		if e.Status == StatusPago {
			s.Pago = s.Pago.Add(e.Amount)
		} else {
			s.Pendente = s.Pendente.Add(e.Amount)
		}
		s.Total = s.Total.Add(e.Amount)
		s.Count++
	}
	return s
}

// SummarizeBank totals entries by status.
func SummarizeBank(entries []BankEntry) BankSummary {
	var s BankSummary
	for _, e := range entries {
		switch e.Status {
		case StatusPaid:
			s.Paid = s.Paid.Add(e.Amount)
		case StatusCompleted:
			s.Completed = s.Completed.Add(e.Amount)
		default:
			s.Pending = s.Pending.Add(e.Amount)
		}
		s.Total = s.Total.Add(e.Amount)
		s.Count++
	}
	return s
}

// Transition is the outcome of one status change, used for audit and notifications.
type Transition struct {
	Ledger    Ledger          `json:"ledger"`
	ID        uuid.UUID       `json:"id"`
	Status    string          `json:"status"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference"`
	ChangedBy uuid.UUID       `json:"changed_by"`
	ChangedAt time.Time       `json:"changed_at"`
}
