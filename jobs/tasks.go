package jobs

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/sharebrasil/portal/internal/reconciliation"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReportPDF renders a travel report to PDF and stores it.
	TaskReportPDF = "travel:report_pdf"
	// TaskReconciliationNotify posts a reconciliation transition to the webhook.
	TaskReconciliationNotify = "reconciliation:notify"
	// TaskIdempotencyCleanup purges expired idempotency keys.
	TaskIdempotencyCleanup = "maintenance:idempotency_cleanup"
)

// ReportPDFPayload identifies the report to render.
type ReportPDFPayload struct {
	ReportID uuid.UUID `json:"report_id"`
}

// NotifyPayload is the webhook body of a reconciliation transition.
type NotifyPayload struct {
	Event      string                    `json:"event"`
	Transition reconciliation.Transition `json:"transition"`
}

// CleanupPayload configures the retention of idempotency keys.
type CleanupPayload struct {
	RetentionHours int `json:"retention_hours"`
}

// NewReportPDFTask constructs an Asynq task.
func NewReportPDFTask(reportID uuid.UUID) (*asynq.Task, error) {
	data, err := json.Marshal(ReportPDFPayload{ReportID: reportID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportPDF, data, asynq.MaxRetry(3)), nil
}

// NewNotifyTask constructs an Asynq task.
func NewNotifyTask(t reconciliation.Transition) (*asynq.Task, error) {
	data, err := json.Marshal(NotifyPayload{Event: "reconciliation." + string(t.Ledger) + ".status", Transition: t})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReconciliationNotify, data, asynq.MaxRetry(3)), nil
}

// NewCleanupTask constructs an Asynq task.
func NewCleanupTask(retentionHours int) (*asynq.Task, error) {
	if retentionHours <= 0 {
		retentionHours = 72
	}
	data, err := json.Marshal(CleanupPayload{RetentionHours: retentionHours})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIdempotencyCleanup, data, asynq.MaxRetry(1)), nil
}
