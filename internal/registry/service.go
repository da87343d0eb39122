package registry

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

const (
	defaultLimit = 100
	maxLimit     = 500
)

// Service serves registry selections for the report builder and logbook screens.
type Service struct {
	repo Repository
}

// NewService builds Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func normalize(f ListFilter) ListFilter {
	f.Search = strings.TrimSpace(f.Search)
	f.Status = strings.TrimSpace(f.Status)
	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// ListClients returns clients ordered by company name.
func (s *Service) ListClients(ctx context.Context, f ListFilter) ([]Client, error) {
	return s.repo.ListClients(ctx, normalize(f))
}

// GetClient fetches one client.
func (s *Service) GetClient(ctx context.Context, id uuid.UUID) (Client, error) {
	return s.repo.GetClient(ctx, id)
}

// ListAircraft returns aircraft ordered by registration.
func (s *Service) ListAircraft(ctx context.Context, f ListFilter) ([]Aircraft, error) {
	return s.repo.ListAircraft(ctx, normalize(f))
}

// ListCrewMembers returns crew members ordered by name.
func (s *Service) ListCrewMembers(ctx context.Context, f ListFilter) ([]CrewMember, error) {
	return s.repo.ListCrewMembers(ctx, normalize(f))
}
