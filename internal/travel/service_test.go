package travel

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/sharebrasil/portal/internal/observability"
	"github.com/sharebrasil/portal/internal/platform/storage"
)

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate(ctx context.Context) error {
	c.calls++
	return nil
}

type recordingQueue struct{ ids []uuid.UUID }

func (q *recordingQueue) EnqueueReportPDF(ctx context.Context, id uuid.UUID) error {
	q.ids = append(q.ids, id)
	return nil
}

type fixture struct {
	repo   *memoryRepo
	store  *storage.Memory
	cache  *countingInvalidator
	queue  *recordingQueue
	idem   *memoryIdempotency
	svc    *Service
	client uuid.UUID
}

func newFixture() *fixture {
	f := &fixture{
		repo:  newMemoryRepo(),
		store: storage.NewMemory("https://files.test"),
		cache: &countingInvalidator{},
		queue: &recordingQueue{},
		idem:  &memoryIdempotency{},
	}
	f.client = f.repo.addClient("Acme Ltda")
	f.svc = NewService(f.repo, f.store, Options{
		Idempotency: f.idem,
		Cache:       f.cache,
		PDFQueue:    f.queue,
		Metrics:     observability.NewMetrics(),
		Now:         func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC) },
	})
	return f
}

func (f *fixture) input(lines ...ExpenseLine) CreateReportInput {
	return CreateReportInput{
		ClientID:             f.client,
		AircraftRegistration: "PT-ABC",
		CrewMember:           "João Silva",
		Destination:          "SBGR",
		StartDate:            "2024-03-10",
		EndDate:              "2024-03-12",
		Expenses:             lines,
	}
}

func line(category, amount, payer string) ExpenseLine {
	return ExpenseLine{Category: category, Description: category, Amount: NewAmount(dec(amount)), Payer: payer}
}

func TestCreateReportEndToEnd(t *testing.T) {
	f := newFixture()
	res, err := f.svc.CreateReport(context.Background(), f.input(
		line("Combustível", "300", "Tripulante"),
		line("Hospedagem", "200", "Cliente"),
	))
	require.NoError(t, err)

	require.True(t, res.Report.TotalAmount.Equal(dec("500")))
	require.True(t, res.Totals.Client().Equal(dec("200")))
	require.True(t, res.Totals.Crew().Equal(dec("300")))
	require.True(t, res.Totals.ShareBrasil().IsZero())
	require.Equal(t, "REL 001/24 - PT-ABC - Acme Ltda", res.Report.Number)
	require.Equal(t, StatusSubmitted, res.Report.Status)
	require.Equal(t, TypeCompany, res.Report.Type)

	require.Len(t, f.repo.reports, 1)
	require.Len(t, f.repo.expenses, 2)
	require.Len(t, f.repo.clientRec, 1)
	require.True(t, f.repo.clientRec[0].Amount.Equal(dec("300")))
	require.Len(t, f.repo.crewRec, 1)
	require.True(t, f.repo.crewRec[0].Amount.Equal(dec("300")))
	require.Equal(t, "João Silva", f.repo.crewRec[0].CrewMember)

	require.Equal(t, 1, f.cache.calls)
	require.Equal(t, []uuid.UUID{res.Report.ID}, f.queue.ids)
}

func TestCreateReportReconciliationRules(t *testing.T) {
	f := newFixture()
	_, err := f.svc.CreateReport(context.Background(), f.input(
		line("Combustível", "100", "Tripulante"),
		line("Alimentação", "50", "Cliente"),
	))
	require.NoError(t, err)
	require.Len(t, f.repo.clientRec, 1)
	require.True(t, f.repo.clientRec[0].Amount.Equal(dec("100")))
	require.Len(t, f.repo.crewRec, 1)
	require.True(t, f.repo.crewRec[0].Amount.Equal(dec("100")))

	f = newFixture()
	_, err = f.svc.CreateReport(context.Background(), f.input(line("Hospedagem", "200", "Cliente")))
	require.NoError(t, err)
	require.Empty(t, f.repo.clientRec)
	require.Empty(t, f.repo.crewRec)
	require.Zero(t, f.cache.calls)
}

func TestCreateReportValidation(t *testing.T) {
	f := newFixture()
	cases := map[string]func(*CreateReportInput){
		"no client":      func(in *CreateReportInput) { in.ClientID = uuid.Nil },
		"no aircraft":    func(in *CreateReportInput) { in.AircraftRegistration = " " },
		"no crew":        func(in *CreateReportInput) { in.CrewMember = "" },
		"no destination": func(in *CreateReportInput) { in.Destination = "" },
		"bad dates":      func(in *CreateReportInput) { in.EndDate = "2024-03-01" },
		"bad date":       func(in *CreateReportInput) { in.StartDate = "10/03/2024" },
		"unknown client": func(in *CreateReportInput) { in.ClientID = uuid.New() },
		"no lines":       func(in *CreateReportInput) { in.Expenses = []ExpenseLine{{Description: "x"}} },
		"unknown payer":  func(in *CreateReportInput) { in.Expenses = []ExpenseLine{line("Outros", "1", "Empresa")} },
		"unknown type":   func(in *CreateReportInput) { in.Type = "leisure" },
	}
	for name, mutate := range cases {
		in := f.input(line("Outros", "10", "Cliente"))
		mutate(&in)
		_, err := f.svc.CreateReport(context.Background(), in)
		require.ErrorIs(t, err, ErrValidation, name)
	}
	require.Empty(t, f.repo.reports)
	require.Empty(t, f.repo.expenses)
}

func TestCreateReportRollsBackOnReconciliationFailure(t *testing.T) {
	f := newFixture()
	f.repo.failClientRec = errors.New("insert failed")

	_, err := f.svc.CreateReport(context.Background(), f.input(line("Combustível", "300", "Tripulante")))
	require.Error(t, err)
	require.Empty(t, f.repo.reports)
	require.Empty(t, f.repo.expenses)
	require.Empty(t, f.repo.clientRec)
	require.Empty(t, f.repo.crewRec)
	require.Empty(t, f.queue.ids)

	// the counter allocation is rolled back with the rest
	f.repo.failClientRec = nil
	res, err := f.svc.CreateReport(context.Background(), f.input(line("Combustível", "300", "Tripulante")))
	require.NoError(t, err)
	require.Equal(t, "REL 001/24 - PT-ABC - Acme Ltda", res.Report.Number)
}

func TestResubmissionWithoutKeyDuplicatesReport(t *testing.T) {
	f := newFixture()
	in := f.input(line("Combustível", "300", "Tripulante"))

	first, err := f.svc.CreateReport(context.Background(), in)
	require.NoError(t, err)
	second, err := f.svc.CreateReport(context.Background(), in)
	require.NoError(t, err)

	require.Len(t, f.repo.reports, 2)
	require.NotEqual(t, first.Report.ID, second.Report.ID)
	require.Equal(t, "REL 001/24 - PT-ABC - Acme Ltda", first.Report.Number)
	require.Equal(t, "REL 002/24 - PT-ABC - Acme Ltda", second.Report.Number)
	require.Len(t, f.repo.clientRec, 2)
	require.Len(t, f.repo.crewRec, 2)
}

func TestResubmissionWithKeyIsRejected(t *testing.T) {
	f := newFixture()
	in := f.input(line("Combustível", "300", "Tripulante"))
	in.IdempotencyKey = "form-123"

	_, err := f.svc.CreateReport(context.Background(), in)
	require.NoError(t, err)
	_, err = f.svc.CreateReport(context.Background(), in)
	require.ErrorIs(t, err, ErrDuplicateSubmission)
	require.Len(t, f.repo.reports, 1)
}

func TestFailedSubmissionReleasesKey(t *testing.T) {
	f := newFixture()
	in := f.input(line("Combustível", "300", "Tripulante"))
	in.IdempotencyKey = "form-456"

	f.repo.failCrewRec = errors.New("boom")
	_, err := f.svc.CreateReport(context.Background(), in)
	require.Error(t, err)

	f.repo.failCrewRec = nil
	_, err = f.svc.CreateReport(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, f.repo.reports, 1)
}

func TestNumberSeededFromLegacyReports(t *testing.T) {
	f := newFixture()
	f.repo.reports = append(f.repo.reports,
		Report{ID: uuid.New(), ClientID: uuid.New(), Number: "REL 007/23 - PT-XYZ - Acme Ltda"},
		Report{ID: uuid.New(), ClientID: uuid.New(), Number: "REL 041/23 - PT-XYZ - Outra Empresa"},
	)
	res, err := f.svc.CreateReport(context.Background(), f.input(line("Outros", "10", "Cliente")))
	require.NoError(t, err)
	require.Equal(t, "REL 008/24 - PT-ABC - Acme Ltda", res.Report.Number)
}

func TestCreateReportUploadsReceipts(t *testing.T) {
	f := newFixture()
	png := []byte("\x89PNG\r\n\x1a\n0000")
	withReceipt := line("Combustível", "300", "Tripulante")
	withReceipt.Receipt = &Receipt{Filename: "abastecimento.png", Data: base64.StdEncoding.EncodeToString(png)}

	res, err := f.svc.CreateReport(context.Background(), f.input(withReceipt, line("Hospedagem", "200", "Cliente")))
	require.NoError(t, err)
	require.Equal(t, 1, f.store.Len())
	url := res.Expenses[0].ReceiptURL
	require.True(t, strings.HasPrefix(url, "https://files.test/travel-reports/receipts/"), url)
	require.True(t, strings.HasSuffix(url, "/abastecimento.png"), url)
	require.Empty(t, res.Expenses[1].ReceiptURL)
}

func TestCreateReportRejectsUnsupportedReceipt(t *testing.T) {
	f := newFixture()
	bad := line("Combustível", "300", "Tripulante")
	bad.Receipt = &Receipt{Filename: "nota.exe", ContentType: "application/x-msdownload", Data: base64.StdEncoding.EncodeToString([]byte("MZ\x90\x00binary"))}

	_, err := f.svc.CreateReport(context.Background(), f.input(bad))
	require.ErrorIs(t, err, ErrValidation)
	require.Zero(t, f.store.Len())
	require.Empty(t, f.repo.reports)
}

func TestCreateReportUploadFailureAborts(t *testing.T) {
	f := newFixture()
	f.store.FailWith(errors.New("bucket offline"))
	withReceipt := line("Combustível", "300", "Tripulante")
	withReceipt.Receipt = &Receipt{Filename: "a.pdf", Data: base64.StdEncoding.EncodeToString([]byte("%PDF-1.7"))}

	_, err := f.svc.CreateReport(context.Background(), f.input(withReceipt))
	require.Error(t, err)
	require.Empty(t, f.repo.reports)
}

func TestGetAndListReports(t *testing.T) {
	f := newFixture()
	res, err := f.svc.CreateReport(context.Background(), f.input(line("Combustível", "300", "Tripulante"), line("Hospedagem", "200", "Cliente")))
	require.NoError(t, err)

	detail, err := f.svc.GetReport(context.Background(), res.Report.ID)
	require.NoError(t, err)
	require.Equal(t, "Acme Ltda", detail.Report.ClientName)
	require.Len(t, detail.Expenses, 2)
	require.True(t, detail.Totals.Grand.Equal(dec("500")))

	_, err = f.svc.GetReport(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrReportNotFound)

	other := uuid.New()
	reports, err := f.svc.ListReports(context.Background(), ReportFilter{ClientID: &other})
	require.NoError(t, err)
	require.Empty(t, reports)
	reports, err = f.svc.ListReports(context.Background(), ReportFilter{ClientID: &f.client})
	require.NoError(t, err)
	require.Len(t, reports, 1)

	require.NoError(t, f.svc.AttachPDF(context.Background(), res.Report.ID, "https://files.test/r.pdf"))
	require.Equal(t, "https://files.test/r.pdf", f.repo.reports[0].PDFURL)
}
