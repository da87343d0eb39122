package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sharebrasil/portal/internal/platform/db"
)

// ErrNotFound indicates the user does not exist.
var ErrNotFound = errors.New("users: not found")

// ErrEmailTaken indicates another identity already uses the email.
var ErrEmailTaken = errors.New("users: email already registered")

// Repository defines user data access.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetUser(ctx context.Context, id uuid.UUID) (User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]User, error)
}

// TxRepository defines writes performed inside one transaction.
type TxRepository interface {
	InsertIdentity(ctx context.Context, email, passwordHash string, active bool) (uuid.UUID, error)
	UpdateIdentity(ctx context.Context, id uuid.UUID, email, passwordHash *string, active *bool) error
	DeleteIdentity(ctx context.Context, id uuid.UUID) error
	ReplaceRole(ctx context.Context, userID uuid.UUID, role string) error
	UpsertProfile(ctx context.Context, profile Profile) error
	GetUser(ctx context.Context, id uuid.UUID) (User, error)
}

var _ Repository = (*pgRepository)(nil)
var _ TxRepository = (*pgTxRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &pgTxRepository{tx: tx})
	})
}

const selectUser = `SELECT u.id, u.email, COALESCE(p.full_name, ''), COALESCE(p.phone, ''),
	COALESCE((SELECT role FROM user_roles r WHERE r.user_id = u.id ORDER BY r.created_at LIMIT 1), ''),
	u.is_active, u.created_at, u.updated_at
FROM auth_users u LEFT JOIN user_profiles p ON p.user_id = u.id`

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func getUser(ctx context.Context, q rowQuerier, id uuid.UUID) (User, error) {
	var u User
	err := q.QueryRow(ctx, selectUser+` WHERE u.id = $1`, id).
		Scan(&u.ID, &u.Email, &u.FullName, &u.Phone, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

func (r *pgRepository) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	return getUser(ctx, r.pool, id)
}

func (r *pgRepository) ListUsers(ctx context.Context, limit, offset int) ([]User, error) {
	rows, err := r.pool.Query(ctx, selectUser+` ORDER BY lower(u.email) LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &u.Phone, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

type pgTxRepository struct {
	tx pgx.Tx
}

func (r *pgTxRepository) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	return getUser(ctx, r.tx, id)
}

func (r *pgTxRepository) InsertIdentity(ctx context.Context, email, passwordHash string, active bool) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.tx.QueryRow(ctx, `INSERT INTO auth_users (email, password_hash, is_active) VALUES ($1, $2, $3) RETURNING id`,
		strings.ToLower(strings.TrimSpace(email)), passwordHash, active).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return uuid.Nil, ErrEmailTaken
		}
		return uuid.Nil, err
	}
	return id, nil
}

func (r *pgTxRepository) UpdateIdentity(ctx context.Context, id uuid.UUID, email, passwordHash *string, active *bool) error {
	var normalized *string
	if email != nil {
		v := strings.ToLower(strings.TrimSpace(*email))
		normalized = &v
	}
	tag, err := r.tx.Exec(ctx, `UPDATE auth_users SET
	email = COALESCE($2, email),
	password_hash = COALESCE($3, password_hash),
	is_active = COALESCE($4, is_active),
	updated_at = NOW()
WHERE id = $1`, id, normalized, passwordHash, active)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrEmailTaken
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgTxRepository) DeleteIdentity(ctx context.Context, id uuid.UUID) error {
	tag, err := r.tx.Exec(ctx, `DELETE FROM auth_users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgTxRepository) ReplaceRole(ctx context.Context, userID uuid.UUID, role string) error {
	if _, err := r.tx.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear roles: %w", err)
	}
	_, err := r.tx.Exec(ctx, `INSERT INTO user_roles (user_id, role) VALUES ($1, $2)`, userID, role)
	return err
}

func (r *pgTxRepository) UpsertProfile(ctx context.Context, p Profile) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO user_profiles (user_id, full_name, phone, email, updated_at)
VALUES ($1, $2, NULLIF($3, ''), $4, NOW())
ON CONFLICT (user_id) DO UPDATE SET full_name = EXCLUDED.full_name, phone = EXCLUDED.phone, email = EXCLUDED.email, updated_at = NOW()`,
		p.UserID, p.FullName, p.Phone, strings.ToLower(strings.TrimSpace(p.Email)))
	return err
}
