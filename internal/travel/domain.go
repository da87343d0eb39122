package travel

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrValidation wraps every input rejection of the builder.
	ErrValidation = errors.New("travel: validation failed")
	// ErrReportNotFound indicates the report does not exist.
	ErrReportNotFound = errors.New("travel: report not found")
	// ErrDuplicateSubmission indicates the idempotency key was already used.
	ErrDuplicateSubmission = errors.New("travel: report already submitted")
)

// Category classifies an expense.
type Category string

// Known expense categories.
const (
	CategoryFuel      Category = "Combustível"
	CategoryLodging   Category = "Hospedagem"
	CategoryFood      Category = "Alimentação"
	CategoryTransport Category = "Transporte"
	CategoryOther     Category = "Outros"
)

// Categories lists the expense categories in display order.
func Categories() []Category {
	return []Category{CategoryFuel, CategoryLodging, CategoryFood, CategoryTransport, CategoryOther}
}

// ParseCategory accepts a known category, matching case-insensitively.
func ParseCategory(raw string) (Category, error) {
	raw = strings.TrimSpace(raw)
	for _, c := range Categories() {
		if strings.EqualFold(raw, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: unknown category %q", ErrValidation, raw)
}

// Known reports whether c is one of the five categories.
func (c Category) Known() bool {
	_, err := ParseCategory(string(c))
	return err == nil
}

// Payer identifies who fronted an expense.
type Payer string

// Known payers.
const (
	PayerCrew        Payer = "Tripulante"
	PayerClient      Payer = "Cliente"
	PayerShareBrasil Payer = "ShareBrasil"
)

// Payers lists the payers in display order.
func Payers() []Payer {
	return []Payer{PayerCrew, PayerClient, PayerShareBrasil}
}

// ParsePayer accepts a known payer, matching case-insensitively.
func ParsePayer(raw string) (Payer, error) {
	raw = strings.TrimSpace(raw)
	for _, p := range Payers() {
		if strings.EqualFold(raw, string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: unknown payer %q", ErrValidation, raw)
}

// ReportStatus is the lifecycle state of a travel report.
type ReportStatus string

// Report statuses.
const (
	StatusDraft     ReportStatus = "draft"
	StatusSubmitted ReportStatus = "submitted"
	StatusApproved  ReportStatus = "approved"
	StatusRejected  ReportStatus = "rejected"
)

// ReportType separates company trips from personal ones.
type ReportType string

// Report types.
const (
	TypeCompany  ReportType = "company"
	TypePersonal ReportType = "personal"
)

// Report is a persisted travel report.
type Report struct {
	ID                   uuid.UUID       `json:"id"`
	Number               string          `json:"number"`
	ClientID             uuid.UUID       `json:"client_id"`
	ClientName           string          `json:"client_name,omitempty"`
	AircraftRegistration string          `json:"aircraft_registration"`
	CrewMember           string          `json:"crew_member"`
	Destination          string          `json:"destination"`
	StartDate            time.Time       `json:"start_date"`
	EndDate              time.Time       `json:"end_date"`
	Description          string          `json:"description,omitempty"`
	TotalAmount          decimal.Decimal `json:"total_amount"`
	Status               ReportStatus    `json:"status"`
	Type                 ReportType      `json:"type"`
	PDFURL               string          `json:"pdf_url,omitempty"`
	CreatedBy            uuid.UUID       `json:"created_by"`
	CreatedAt            time.Time       `json:"created_at"`
}

// Expense is a persisted expense row. Category and Payer keep the stored literal.
type Expense struct {
	ID             uuid.UUID       `json:"id"`
	TravelReportID uuid.UUID       `json:"travel_report_id"`
	Category       Category        `json:"category"`
	Description    string          `json:"description"`
	Amount         decimal.Decimal `json:"amount"`
	Payer          Payer           `json:"payer"`
	ReceiptURL     string          `json:"receipt_url,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ReportDetail bundles a report with its expenses and recomputed totals.
type ReportDetail struct {
	Report   Report    `json:"report"`
	Expenses []Expense `json:"expenses"`
	Totals   Totals    `json:"totals"`
}

// CreateReportInput is the builder submission.
type CreateReportInput struct {
	ClientID             uuid.UUID     `json:"client_id"`
	AircraftRegistration string        `json:"aircraft_registration"`
	CrewMember           string        `json:"crew_member"`
	Destination          string        `json:"destination"`
	StartDate            string        `json:"start_date"`
	EndDate              string        `json:"end_date"`
	Description          string        `json:"description"`
	Type                 ReportType    `json:"type"`
	Expenses             []ExpenseLine `json:"expenses"`
	// IdempotencyKey is taken from the Idempotency-Key header, not the body.
	IdempotencyKey string `json:"-"`
}

// CreateResult reports what a submission wrote.
type CreateResult struct {
	Report               Report                `json:"report"`
	Expenses             []Expense             `json:"expenses"`
	Totals               Totals                `json:"totals"`
	ClientReconciliation *ClientReconciliation `json:"client_reconciliation,omitempty"`
	CrewReconciliation   *CrewReconciliation   `json:"crew_reconciliation,omitempty"`
}

// ClientReconciliation is the draft client-ledger row derived from a report.
type ClientReconciliation struct {
	ID                   uuid.UUID       `json:"id"`
	TravelReportID       uuid.UUID       `json:"travel_report_id"`
	ClientID             uuid.UUID       `json:"client_id"`
	AircraftRegistration string          `json:"aircraft_registration"`
	Amount               decimal.Decimal `json:"amount"`
}

// CrewReconciliation is the draft crew-ledger row derived from a report.
type CrewReconciliation struct {
	ID             uuid.UUID       `json:"id"`
	TravelReportID uuid.UUID       `json:"travel_report_id"`
	CrewMember     string          `json:"crew_member"`
	Amount         decimal.Decimal `json:"amount"`
}

// ReportFilter narrows report listings.
type ReportFilter struct {
	ClientID *uuid.UUID
	Status   ReportStatus
	Limit    int
	Offset   int
}
