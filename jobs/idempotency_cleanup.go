package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/sharebrasil/portal/internal/jobs"
)

// KeyPurger deletes idempotency keys older than the retention window.
type KeyPurger interface {
	Cleanup(ctx context.Context, olderThan time.Duration) (int64, error)
}

// IdempotencyCleanupJob removes processed submission keys past retention.
type IdempotencyCleanupJob struct {
	Store   KeyPurger
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// Handle processes TaskIdempotencyCleanup tasks.
func (j *IdempotencyCleanupJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	var payload CleanupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	if payload.RetentionHours <= 0 {
		payload.RetentionHours = 72
	}
	tracker := metricsOr(j.Metrics).Track(TaskIdempotencyCleanup)
	defer func() { err = tracker.End(err) }()

	deleted, err := j.Store.Cleanup(ctx, time.Duration(payload.RetentionHours)*time.Hour)
	if err != nil {
		loggerOr(j.Logger).Error("idempotency cleanup", slog.Any("error", err))
		return err
	}
	loggerOr(j.Logger).Info("idempotency cleanup", slog.Int64("deleted", deleted), slog.Int("retention_hours", payload.RetentionHours))
	return nil
}
