package travel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sharebrasil/portal/internal/observability"
	"github.com/sharebrasil/portal/internal/platform/storage"
	"github.com/sharebrasil/portal/internal/shared"
)

const idempotencyModule = "travel_report"

// Idempotency guards submissions carrying an Idempotency-Key.
type Idempotency interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// Invalidator drops cached dashboard summaries after new ledger rows appear.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// PDFQueue schedules background PDF rendering.
type PDFQueue interface {
	EnqueueReportPDF(ctx context.Context, reportID uuid.UUID) error
}

// Options wires the optional collaborators of Service.
type Options struct {
	Bucket      string
	Logger      *slog.Logger
	Idempotency Idempotency
	Cache       Invalidator
	PDFQueue    PDFQueue
	Metrics     *observability.Metrics
	Audit       shared.AuditRecorder
	Now         func() time.Time
}

// Service builds and reads travel reports.
type Service struct {
	repo  Repository
	store storage.Store
	opts  Options
}

// NewService constructs a Service.
func NewService(repo Repository, store storage.Store, opts Options) *Service {
	if opts.Bucket == "" {
		opts.Bucket = "travel-reports"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{repo: repo, store: store, opts: opts}
}

type header struct {
	start, end time.Time
}

func validateHeader(in CreateReportInput) (header, error) {
	var missing []string
	if in.ClientID == uuid.Nil {
		missing = append(missing, "client")
	}
	if strings.TrimSpace(in.AircraftRegistration) == "" {
		missing = append(missing, "aircraft")
	}
	if strings.TrimSpace(in.CrewMember) == "" {
		missing = append(missing, "crew member")
	}
	if strings.TrimSpace(in.Destination) == "" {
		missing = append(missing, "destination")
	}
	if len(missing) > 0 {
		return header{}, fmt.Errorf("%w: %s required", ErrValidation, strings.Join(missing, ", "))
	}
	start, err := time.Parse(time.DateOnly, strings.TrimSpace(in.StartDate))
	if err != nil {
		return header{}, fmt.Errorf("%w: start_date must be YYYY-MM-DD", ErrValidation)
	}
	end, err := time.Parse(time.DateOnly, strings.TrimSpace(in.EndDate))
	if err != nil {
		return header{}, fmt.Errorf("%w: end_date must be YYYY-MM-DD", ErrValidation)
	}
	if end.Before(start) {
		return header{}, fmt.Errorf("%w: end_date before start_date", ErrValidation)
	}
	switch in.Type {
	case "", TypeCompany, TypePersonal:
	default:
		return header{}, fmt.Errorf("%w: unknown report type %q", ErrValidation, in.Type)
	}
	return header{start: start, end: end}, nil
}

// CreateReport validates the submission, uploads receipts, then writes the report,
// its expenses and the derived reconciliations in one transaction.
// Uploaded receipts are not removed when the transaction fails.
func (s *Service) CreateReport(ctx context.Context, in CreateReportInput) (result CreateResult, err error) {
	defer func() { s.opts.Metrics.ReportCreated(err) }()

	hdr, err := validateHeader(in)
	if err != nil {
		return CreateResult{}, err
	}
	lines, err := PrepareLines(in.Expenses)
	if err != nil {
		return CreateResult{}, err
	}

	if in.IdempotencyKey != "" && s.opts.Idempotency != nil {
		if err := s.opts.Idempotency.CheckAndInsert(ctx, in.IdempotencyKey, idempotencyModule); err != nil {
			if errors.Is(err, shared.ErrIdempotencyConflict) {
				return CreateResult{}, ErrDuplicateSubmission
			}
			return CreateResult{}, err
		}
		defer func() {
			if err != nil {
				_ = s.opts.Idempotency.Delete(context.WithoutCancel(ctx), in.IdempotencyKey)
			}
		}()
	}

	expenses, err := s.uploadReceipts(ctx, lines)
	if err != nil {
		return CreateResult{}, err
	}
	totals := ComputeTotals(expenses)
	derived := DeriveReconciliations(totals)
	now := s.opts.Now()
	reportType := in.Type
	if reportType == "" {
		reportType = TypeCompany
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		name, err := tx.ClientName(ctx, in.ClientID)
		if err != nil {
			return err
		}
		seq, err := tx.NextSequence(ctx, in.ClientID, name)
		if err != nil {
			return err
		}
		report, err := tx.InsertReport(ctx, Report{
			Number:               FormatReportNumber(seq, now, in.AircraftRegistration, name),
			ClientID:             in.ClientID,
			AircraftRegistration: strings.TrimSpace(in.AircraftRegistration),
			CrewMember:           strings.TrimSpace(in.CrewMember),
			Destination:          strings.TrimSpace(in.Destination),
			StartDate:            hdr.start,
			EndDate:              hdr.end,
			Description:          strings.TrimSpace(in.Description),
			TotalAmount:          totals.PayerTotal(),
			Status:               StatusSubmitted,
			Type:                 reportType,
			CreatedBy:            shared.ActorID(ctx),
		})
		if err != nil {
			return err
		}
		report.ClientName = name
		result = CreateResult{Report: report, Totals: totals}

		for _, e := range expenses {
			e.TravelReportID = report.ID
			saved, err := tx.InsertExpense(ctx, e)
			if err != nil {
				return err
			}
			result.Expenses = append(result.Expenses, saved)
		}

		if derived.ClientAmount != nil {
			rec := ClientReconciliation{
				TravelReportID:       report.ID,
				ClientID:             in.ClientID,
				AircraftRegistration: report.AircraftRegistration,
				Amount:               *derived.ClientAmount,
			}
			if rec.ID, err = tx.InsertClientReconciliation(ctx, rec); err != nil {
				return err
			}
			result.ClientReconciliation = &rec
		}
		if derived.CrewAmount != nil {
			rec := CrewReconciliation{
				TravelReportID: report.ID,
				CrewMember:     report.CrewMember,
				Amount:         *derived.CrewAmount,
			}
			if rec.ID, err = tx.InsertCrewReconciliation(ctx, rec); err != nil {
				return err
			}
			result.CrewReconciliation = &rec
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrValidation) {
			s.opts.Logger.Error("create travel report", slog.String("client_id", in.ClientID.String()), slog.Any("error", err))
		}
		return CreateResult{}, err
	}

	s.afterCreate(ctx, result)
	return result, nil
}

func (s *Service) afterCreate(ctx context.Context, result CreateResult) {
	logger := s.opts.Logger.With(slog.String("report_id", result.Report.ID.String()))
	if s.opts.Cache != nil && (result.ClientReconciliation != nil || result.CrewReconciliation != nil) {
		if err := s.opts.Cache.Invalidate(ctx); err != nil {
			logger.Warn("invalidate reconciliation cache", slog.Any("error", err))
		}
	}
	if s.opts.PDFQueue != nil {
		if err := s.opts.PDFQueue.EnqueueReportPDF(ctx, result.Report.ID); err != nil {
			logger.Warn("enqueue report pdf", slog.Any("error", err))
		}
	}
	if s.opts.Audit != nil {
		_ = s.opts.Audit.Record(ctx, shared.AuditLog{
			ActorID:  shared.ActorID(ctx),
			Action:   "travel_report.create",
			Entity:   "travel_report",
			EntityID: result.Report.ID.String(),
			Meta: map[string]any{
				"number":       result.Report.Number,
				"total_amount": result.Report.TotalAmount.StringFixed(2),
				"expenses":     len(result.Expenses),
			},
		})
	}
	logger.Info("travel report created", slog.String("number", result.Report.Number), slog.String("total", result.Report.TotalAmount.StringFixed(2)))
}

// uploadReceipts stores attached receipts and returns the expense rows to insert.
func (s *Service) uploadReceipts(ctx context.Context, lines []PreparedLine) ([]Expense, error) {
	expenses := make([]Expense, 0, len(lines))
	for _, line := range lines {
		e := Expense{
			Category:    line.Category,
			Description: line.Description,
			Amount:      line.Amount,
			Payer:       line.Payer,
			ReceiptURL:  line.ReceiptURL,
		}
		if line.Receipt != nil {
			url, err := s.uploadReceipt(ctx, *line.Receipt)
			s.opts.Metrics.ReceiptUploaded(err)
			if err != nil {
				return nil, err
			}
			e.ReceiptURL = url
		}
		expenses = append(expenses, e)
	}
	return expenses, nil
}

func (s *Service) uploadReceipt(ctx context.Context, r DecodedReceipt) (string, error) {
	if s.store == nil {
		return "", errors.New("travel: receipt storage not configured")
	}
	contentType := storage.DetectContentType(r.ContentType, r.Data)
	if err := storage.CheckContentType(contentType); err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}
	url, err := s.store.Put(ctx, storage.Object{
		Bucket:      s.opts.Bucket,
		Name:        fmt.Sprintf("receipts/%s/%s", uuid.NewString(), r.Filename),
		ContentType: contentType,
		Data:        r.Data,
	})
	if err != nil {
		return "", fmt.Errorf("upload receipt %s: %w", r.Filename, err)
	}
	return url, nil
}

// GetReport loads a report with its expenses and recomputed totals.
func (s *Service) GetReport(ctx context.Context, id uuid.UUID) (ReportDetail, error) {
	report, err := s.repo.GetReport(ctx, id)
	if err != nil {
		return ReportDetail{}, err
	}
	expenses, err := s.repo.ListExpenses(ctx, id)
	if err != nil {
		return ReportDetail{}, err
	}
	return ReportDetail{Report: report, Expenses: expenses, Totals: ComputeTotals(expenses)}, nil
}

// ListReports returns reports newest first.
func (s *Service) ListReports(ctx context.Context, f ReportFilter) ([]Report, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.repo.ListReports(ctx, f)
}

// AttachPDF records where the rendered PDF was stored.
func (s *Service) AttachPDF(ctx context.Context, id uuid.UUID, url string) error {
	return s.repo.SetPDFURL(ctx, id, url)
}
