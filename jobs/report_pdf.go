package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	jobmetrics "github.com/sharebrasil/portal/internal/jobs"
	"github.com/sharebrasil/portal/internal/platform/storage"
	"github.com/sharebrasil/portal/internal/travel"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// PDFRenderer renders a stored travel report.
type PDFRenderer interface {
	RenderPDF(ctx context.Context, id uuid.UUID) (travel.Document, error)
}

// PDFAttacher records the stored PDF location.
type PDFAttacher interface {
	AttachPDF(ctx context.Context, id uuid.UUID, url string) error
}

// ReportPDFJob renders travel reports through Gotenberg and uploads the result.
type ReportPDFJob struct {
	Renderer PDFRenderer
	Reports  PDFAttacher
	Store    storage.Store
	Bucket   string
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// Handle processes TaskReportPDF tasks.
func (j *ReportPDFJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Renderer == nil || j.Store == nil || j.Reports == nil {
		return errors.New("report pdf: handler not configured")
	}
	var payload ReportPDFPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil || payload.ReportID == uuid.Nil {
		return asynq.SkipRetry
	}
	tracker := metricsOr(j.Metrics).Track(TaskReportPDF)
	defer func() { err = tracker.End(err) }()

	logger := loggerOr(j.Logger).With(slog.String("report_id", payload.ReportID.String()))
	doc, err := j.Renderer.RenderPDF(ctx, payload.ReportID)
	if errors.Is(err, travel.ErrReportNotFound) {
		logger.Warn("report pdf: report vanished")
		return asynq.SkipRetry
	}
	if err != nil {
		logger.Error("report pdf: render", slog.Any("error", err))
		return err
	}
	bucket := j.Bucket
	if bucket == "" {
		bucket = "travel-reports"
	}
	url, err := j.Store.Put(ctx, storage.Object{
		Bucket:      bucket,
		Name:        "reports/" + payload.ReportID.String() + "/" + doc.Filename(".pdf"),
		ContentType: "application/pdf",
		Data:        doc.Body,
	})
	if err != nil {
		logger.Error("report pdf: upload", slog.Any("error", err))
		return err
	}
	if err := j.Reports.AttachPDF(ctx, payload.ReportID, url); err != nil {
		logger.Error("report pdf: attach", slog.Any("error", err))
		return err
	}
	logger.Info("report pdf stored", slog.String("url", url))
	return nil
}

func metricsOr(m *jobmetrics.Metrics) *jobmetrics.Metrics {
	if m != nil {
		return m
	}
	return defaultJobMetrics
}

func loggerOr(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}
