package reconciliation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sharebrasil/portal/internal/observability"
	"github.com/sharebrasil/portal/internal/shared"
)

// Notifier enqueues the outbound notification of a transition.
type Notifier interface {
	EnqueueReconciliationNotify(ctx context.Context, t Transition) error
}

// Options carries the Service collaborators. Every field is optional.
type Options struct {
	Cache    *Cache
	Notifier Notifier
	Audit    shared.AuditRecorder
	Metrics  *observability.Metrics
	Logger   *slog.Logger
	Now      func() time.Time
}

// Service reads and transitions the settlement ledgers.
type Service struct {
	repo     Repository
	cache    *Cache
	notifier Notifier
	audit    shared.AuditRecorder
	metrics  *observability.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewService builds Service instance.
func NewService(repo Repository, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		repo:     repo,
		cache:    opts.Cache,
		notifier: opts.Notifier,
		audit:    opts.Audit,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
		now:      opts.Now,
	}
}

// ClientLedger is the client dashboard payload.
type ClientLedger struct {
	Entries []ClientEntry `json:"entries"`
	Summary ClientSummary `json:"summary"`
}

// CrewLedger is the crew dashboard payload.
type CrewLedger struct {
	Entries []CrewEntry `json:"entries"`
	Summary CrewSummary `json:"summary"`
}

// BankLedger is the bank dashboard payload.
type BankLedger struct {
	Entries []BankEntry `json:"entries"`
	Summary BankSummary `json:"summary"`
}

// ListClient returns the client ledger, optionally filtered by status.
func (s *Service) ListClient(ctx context.Context, status string) (ClientLedger, error) {
	status, err := LedgerClient.ParseStatus(status, true)
	if err != nil {
		return ClientLedger{}, err
	}
	entries, err := s.repo.ListClient(ctx, status)
	if err != nil {
		return ClientLedger{}, err
	}
	return ClientLedger{Entries: entries, Summary: SummarizeClient(entries)}, nil
}

// ListCrew returns the crew ledger, optionally filtered by status.
func (s *Service) ListCrew(ctx context.Context, status string) (CrewLedger, error) {
	status, err := LedgerCrew.ParseStatus(status, true)
	if err != nil {
		return CrewLedger{}, err
	}
	entries, err := s.repo.ListCrew(ctx, status)
	if err != nil {
		return CrewLedger{}, err
	}
	return CrewLedger{Entries: entries, Summary: SummarizeCrew(entries)}, nil
}

// ListBank returns the bank ledger, optionally filtered by status.
func (s *Service) ListBank(ctx context.Context, status string) (BankLedger, error) {
	status, err := LedgerBank.ParseStatus(status, true)
	if err != nil {
		return BankLedger{}, err
	}
	entries, err := s.repo.ListBank(ctx, status)
	if err != nil {
		return BankLedger{}, err
	}
	return BankLedger{Entries: entries, Summary: SummarizeBank(entries)}, nil
}

// ClientSummary returns the cached client totals.
func (s *Service) ClientSummary(ctx context.Context, status string) (ClientSummary, error) {
	var out ClientSummary
	err := s.cachedSummary(ctx, LedgerClient, status, &out, func(ctx context.Context, status string) (any, error) {
		entries, err := s.repo.ListClient(ctx, status)
		if err != nil {
			return nil, err
		}
		return SummarizeClient(entries), nil
	})
	return out, err
}

// CrewSummary returns the cached crew totals.
func (s *Service) CrewSummary(ctx context.Context, status string) (CrewSummary, error) {
	var out CrewSummary
	err := s.cachedSummary(ctx, LedgerCrew, status, &out, func(ctx context.Context, status string) (any, error) {
		entries, err := s.repo.ListCrew(ctx, status)
		if err != nil {
			return nil, err
		}
		return SummarizeCrew(entries), nil
	})
	return out, err
}

// BankSummary returns the cached bank totals.
func (s *Service) BankSummary(ctx context.Context, status string) (BankSummary, error) {
	var out BankSummary
	err := s.cachedSummary(ctx, LedgerBank, status, &out, func(ctx context.Context, status string) (any, error) {
		entries, err := s.repo.ListBank(ctx, status)
		if err != nil {
			return nil, err
		}
		return SummarizeBank(entries), nil
	})
	return out, err
}

func (s *Service) cachedSummary(ctx context.Context, ledger Ledger, raw string, dest any, load func(context.Context, string) (any, error)) error {
	status, err := ledger.ParseStatus(raw, true)
	if err != nil {
		return err
	}
	key, err := s.cache.SummaryKey(ctx, ledger, status)
	if err != nil {
		s.logger.Warn("reconciliation cache version", slog.Any("error", err))
		value, err := load(ctx, status)
		if err != nil {
			return err
		}
		return roundTrip(value, dest)
	}
	return s.cache.FetchJSON(ctx, key, dest, func(ctx context.Context) (any, error) {
		return load(ctx, status)
	})
}

// UpdateClientStatus moves a client row to status, stamping sent_date or paid_date.
func (s *Service) UpdateClientStatus(ctx context.Context, id uuid.UUID, raw string) (ClientEntry, error) {
	status, err := LedgerClient.ParseStatus(raw, false)
	if err != nil {
		return ClientEntry{}, err
	}
	at := s.now()
	entry, err := s.repo.UpdateClientStatus(ctx, id, status, StampsFor(LedgerClient, status, at))
	if err != nil {
		return ClientEntry{}, err
	}
	s.afterTransition(ctx, Transition{
		Ledger:    LedgerClient,
		ID:        entry.ID,
		Status:    status,
		Amount:    entry.Amount,
		Reference: reference(entry.ReportNumber, entry.ClientName),
		ChangedAt: at,
	})
	return entry, nil
}

// UpdateCrewStatus moves a crew row to status, stamping paid_date on pago.
func (s *Service) UpdateCrewStatus(ctx context.Context, id uuid.UUID, raw string) (CrewEntry, error) {
	status, err := LedgerCrew.ParseStatus(raw, false)
	if err != nil {
		return CrewEntry{}, err
	}
	at := s.now()
	entry, err := s.repo.UpdateCrewStatus(ctx, id, status, StampsFor(LedgerCrew, status, at))
	if err != nil {
		return CrewEntry{}, err
	}
	s.afterTransition(ctx, Transition{
		Ledger:    LedgerCrew,
		ID:        entry.ID,
		Status:    status,
		Amount:    entry.Amount,
		Reference: reference(entry.ReportNumber, entry.CrewMember),
		ChangedAt: at,
	})
	return entry, nil
}

// UpdateBankStatus moves a bank row to status, stamping paid_date on paid or completed.
func (s *Service) UpdateBankStatus(ctx context.Context, id uuid.UUID, raw string) (BankEntry, error) {
	status, err := LedgerBank.ParseStatus(raw, false)
	if err != nil {
		return BankEntry{}, err
	}
	at := s.now()
	entry, err := s.repo.UpdateBankStatus(ctx, id, status, StampsFor(LedgerBank, status, at))
	if err != nil {
		return BankEntry{}, err
	}
	s.afterTransition(ctx, Transition{
		Ledger:    LedgerBank,
		ID:        entry.ID,
		Status:    status,
		Amount:    entry.Amount,
		Reference: reference(entry.ReportNumber, entry.CrewMember),
		ChangedAt: at,
	})
	return entry, nil
}

// CreateBank registers a crew-paid expense for bank settlement.
func (s *Service) CreateBank(ctx context.Context, expenseID uuid.UUID) (BankEntry, error) {
	expense, err := s.repo.GetExpense(ctx, expenseID)
	if err != nil {
		return BankEntry{}, err
	}
	if expense.Payer != "Tripulante" {
		return BankEntry{}, fmt.Errorf("%w: payer %q", ErrNotCrewPaid, expense.Payer)
	}
	entry, err := s.repo.InsertBank(ctx, expense)
	if err != nil {
		return BankEntry{}, err
	}
	s.invalidate(ctx)
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  shared.ActorID(ctx),
			Action:   "reconciliation.bank.create",
			Entity:   "bank_reconciliations",
			EntityID: entry.ID.String(),
			Meta:     map[string]any{"travel_expense_id": expenseID.String(), "amount": entry.Amount.StringFixed(2)},
		})
	}
	return entry, nil
}

func (s *Service) afterTransition(ctx context.Context, t Transition) {
	t.ChangedBy = shared.ActorID(ctx)
	s.invalidate(ctx)
	s.metrics.Transition(string(t.Ledger), t.Status)
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  t.ChangedBy,
			Action:   "reconciliation." + string(t.Ledger) + ".status",
			Entity:   tableFor(t.Ledger),
			EntityID: t.ID.String(),
			Meta:     map[string]any{"status": t.Status, "amount": t.Amount.StringFixed(2)},
			At:       t.ChangedAt,
		})
	}
	if s.notifier != nil {
		if err := s.notifier.EnqueueReconciliationNotify(ctx, t); err != nil {
			s.logger.Warn("enqueue reconciliation notify",
				slog.String("ledger", string(t.Ledger)),
				slog.String("id", t.ID.String()),
				slog.Any("error", err))
		}
	}
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("reconciliation cache invalidate", slog.Any("error", err))
	}
}

func tableFor(l Ledger) string {
	switch l {
	case LedgerClient:
		return "client_reconciliations"
	case LedgerCrew:
		return "crew_reconciliations"
	default:
		return "bank_reconciliations"
	}
}

func reference(number, party string) string {
	switch {
	case number == "":
		return party
	case party == "":
		return number
	}
	return number + " / " + party
}

