package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/sharebrasil/portal/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo   Repository
	tokens *Tokens
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *Tokens) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Identity, error) {
	identity, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !identity.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return identity, nil
}

// Login authenticates and issues an access token carrying the user's current roles.
func (s *Service) Login(ctx context.Context, email, password string) (Token, error) {
	identity, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return Token{}, err
	}
	roles, err := s.repo.RolesFor(ctx, identity.ID)
	if err != nil {
		return Token{}, err
	}
	return s.tokens.Issue(identity.ID, identity.Email, roles)
}

// Verify resolves a bearer token into a principal.
func (s *Service) Verify(raw string) (*shared.Principal, error) {
	return s.tokens.Verify(raw)
}
