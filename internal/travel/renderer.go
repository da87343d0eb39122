package travel

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/sharebrasil/portal/internal/view"
)

const reportTemplate = "reports/travel_report.html"

// PDFConverter turns HTML into PDF bytes.
type PDFConverter interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// Renderer produces the printable travel report.
type Renderer struct {
	repo    Repository
	engine  *view.Engine
	pdf     PDFConverter
	logoURL string
	now     func() time.Time
}

// NewRenderer constructs a Renderer. pdf may be nil when only HTML is served.
func NewRenderer(repo Repository, engine *view.Engine, pdf PDFConverter, logoURL string) *Renderer {
	return &Renderer{repo: repo, engine: engine, pdf: pdf, logoURL: logoURL, now: time.Now}
}

// Document is a rendered report.
type Document struct {
	ReportID uuid.UUID
	Number   string
	Body     []byte
}

// Filename derives a download name from the report number.
func (d Document) Filename(ext string) string {
	name := strings.NewReplacer("/", "-", "\\", "-", `"`, "", "\n", " ").Replace(d.Number)
	if strings.TrimSpace(name) == "" {
		name = d.ReportID.String()
	}
	return name + ext
}

// SummaryRow is one line of a totals table.
type SummaryRow struct {
	Label  string
	Amount decimal.Decimal
}

type reportView struct {
	Report       Report
	ClientName   string
	Expenses     []Expense
	Totals       Totals
	CategoryRows []SummaryRow
	PayerRows    []SummaryRow
	Receipts     []Expense
	LogoURL      string
	AutoPrint    bool
	GeneratedAt  time.Time
}

var payerLabels = map[Payer]string{
	PayerCrew:        "Tripulante",
	PayerClient:      "Cliente",
	PayerShareBrasil: "Share Brasil",
}

func (r *Renderer) load(ctx context.Context, id uuid.UUID) (reportView, error) {
	var (
		report   Report
		expenses []Expense
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		report, err = r.repo.GetReport(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		expenses, err = r.repo.ListExpenses(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return reportView{}, err
	}
	clientName := report.ClientName
	if clientName == "" {
		name, err := r.repo.ClientName(ctx, report.ClientID)
		if err != nil && !errors.Is(err, ErrValidation) {
			return reportView{}, err
		}
		clientName = name
	}

	totals := ComputeTotals(expenses)
	v := reportView{
		Report:      report,
		ClientName:  clientName,
		Expenses:    expenses,
		Totals:      totals,
		LogoURL:     r.logoURL,
		GeneratedAt: r.now(),
	}
	for _, c := range Categories() {
		v.CategoryRows = append(v.CategoryRows, SummaryRow{Label: string(c), Amount: totals.ByCategory[c]})
	}
	for _, p := range Payers() {
		v.PayerRows = append(v.PayerRows, SummaryRow{Label: payerLabels[p], Amount: totals.ByPayer[p]})
	}
	for _, e := range expenses {
		if e.ReceiptURL != "" {
			v.Receipts = append(v.Receipts, e)
		}
	}
	return v, nil
}

// RenderHTML renders the report. autoPrint adds the window.print() trigger.
func (r *Renderer) RenderHTML(ctx context.Context, id uuid.UUID, autoPrint bool) (Document, error) {
	v, err := r.load(ctx, id)
	if err != nil {
		return Document{}, err
	}
	v.AutoPrint = autoPrint
	html, err := r.engine.RenderString(reportTemplate, v)
	if err != nil {
		return Document{}, err
	}
	return Document{ReportID: id, Number: v.Report.Number, Body: []byte(html)}, nil
}

// RenderPDF renders the report and converts it to PDF.
func (r *Renderer) RenderPDF(ctx context.Context, id uuid.UUID) (Document, error) {
	if r.pdf == nil {
		return Document{}, errors.New("travel: pdf converter not configured")
	}
	doc, err := r.RenderHTML(ctx, id, false)
	if err != nil {
		return Document{}, err
	}
	pdf, err := r.pdf.RenderHTML(ctx, string(doc.Body))
	if err != nil {
		return Document{}, err
	}
	doc.Body = pdf
	return doc, nil
}
