package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/sharebrasil/portal/internal/jobs"
)

// NotifyJob posts reconciliation transitions to the configured webhook.
type NotifyJob struct {
	WebhookURL string
	HTTP       *http.Client
	Logger     *slog.Logger
	Metrics    *jobmetrics.Metrics
}

// Handle processes TaskReconciliationNotify tasks. Without a webhook URL the
// task is acknowledged and dropped.
func (j *NotifyJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil {
		return errors.New("notify: handler not configured")
	}
	var payload NotifyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	logger := loggerOr(j.Logger).With(
		slog.String("ledger", string(payload.Transition.Ledger)),
		slog.String("id", payload.Transition.ID.String()),
	)
	if j.WebhookURL == "" {
		logger.Debug("notify: webhook not configured, skipping")
		return nil
	}
	tracker := metricsOr(j.Metrics).Track(TaskReconciliationNotify)
	defer func() { err = tracker.End(err) }()

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, j.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	client := j.HTTP
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		logger.Warn("notify: post", slog.Any("error", err))
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 300 {
		err = fmt.Errorf("notify: webhook returned %s", resp.Status)
		logger.Warn("notify: rejected", slog.Int("status", resp.StatusCode))
		return err
	}
	logger.Info("notify: delivered", slog.String("status", payload.Transition.Status))
	return nil
}
