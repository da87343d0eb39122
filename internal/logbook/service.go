package logbook

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Service answers flight-hour questions.
type Service struct {
	repo Repository
}

// NewService builds Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// FlightHours sums the month ("YYYY-MM") flown by canac. Empty months yield zero totals.
func (s *Service) FlightHours(ctx context.Context, canac, month string) (FlightHours, error) {
	canac = strings.TrimSpace(canac)
	if canac == "" {
		return FlightHours{}, fmt.Errorf("%w: canac is required", ErrValidation)
	}
	from, err := time.Parse("2006-01", strings.TrimSpace(month))
	if err != nil {
		return FlightHours{}, fmt.Errorf("%w: month must be YYYY-MM", ErrValidation)
	}
	entries, err := s.repo.EntriesFor(ctx, canac, from, from.AddDate(0, 1, 0))
	if err != nil {
		return FlightHours{}, err
	}
	return Aggregate(canac, from.Format("2006-01"), entries), nil
}
