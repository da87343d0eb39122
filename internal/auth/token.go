package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"

	"github.com/sharebrasil/portal/internal/shared"
)

// ErrInvalidToken indicates a bearer token that failed verification.
var ErrInvalidToken = errors.New("auth: invalid token")

// Claims is the JWT payload issued by the portal.
type Claims struct {
	Email string   `json:"email"`
	Roles []string `json:"roles"`
	jwt.StandardClaims
}

// Tokens issues and verifies HS256 access tokens.
type Tokens struct {
	secret     []byte
	serviceKey string
	ttl        time.Duration
	now        func() time.Time
}

// NewTokens builds a token codec. A bearer equal to serviceKey authenticates as the service principal.
func NewTokens(secret, serviceKey string, ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &Tokens{secret: []byte(secret), serviceKey: serviceKey, ttl: ttl, now: time.Now}
}

// Issue signs a token for the identity.
func (t *Tokens) Issue(id uuid.UUID, email string, roles []string) (Token, error) {
	now := t.now()
	expires := now.Add(t.ttl)
	claims := &Claims{
		Email: email,
		Roles: roles,
		StandardClaims: jwt.StandardClaims{
			Subject:   id.String(),
			IssuedAt:  now.Unix(),
			ExpiresAt: expires.Unix(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return Token{}, fmt.Errorf("auth: sign token: %w", err)
	}
	return Token{AccessToken: signed, TokenType: "bearer", ExpiresAt: expires}, nil
}

// Verify parses raw into a principal.
func (t *Tokens) Verify(raw string) (*shared.Principal, error) {
	if raw == "" {
		return nil, ErrInvalidToken
	}
	if t.serviceKey != "" && subtle.ConstantTimeCompare([]byte(raw), []byte(t.serviceKey)) == 1 {
		return &shared.Principal{Service: true, Roles: []string{shared.RoleAdmin}}, nil
	}
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return &shared.Principal{UserID: id, Email: claims.Email, Roles: claims.Roles}, nil
}
