package users

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sharebrasil/portal/internal/platform/httpx"
	"github.com/sharebrasil/portal/internal/shared"
)

// RoleChecker answers role questions against the stored assignments.
type RoleChecker interface {
	HasAny(ctx context.Context, principal *shared.Principal, roles ...string) (bool, error)
}

// Service implements the privileged user-management functions.
type Service struct {
	repo      Repository
	roles     RoleChecker
	audit     shared.AuditRecorder
	validator *validator.Validate
	hashCost  int
}

// NewService builds Service instance.
func NewService(repo Repository, roles RoleChecker, audit shared.AuditRecorder) *Service {
	return &Service{repo: repo, roles: roles, audit: audit, validator: validator.New(), hashCost: bcrypt.DefaultCost}
}

// ListUsers returns one page of accounts.
func (s *Service) ListUsers(ctx context.Context, page shared.Pagination) ([]User, error) {
	return s.repo.ListUsers(ctx, page.PerPage, page.Offset())
}

// Create registers an identity, assigns its role and upserts its profile in one transaction.
func (s *Service) Create(ctx context.Context, mode Mode, in CreateInput) (User, error) {
	if err := s.validator.Struct(in); err != nil {
		return User{}, httpx.Coded(httpx.CodeInvalidPayload, http.StatusBadRequest, err.Error(), httpx.ErrValidation)
	}
	if problems := PasswordProblems(in.Password); len(problems) > 0 {
		return User{}, httpx.Coded(httpx.CodeWeakPassword, http.StatusBadRequest, weakPasswordMessage(problems), httpx.ErrValidation)
	}
	role, err := normalizeRole(in.Role)
	if err != nil {
		return User{}, err
	}
	if err := s.ensureMayGrant(ctx, role); err != nil {
		return User{}, err
	}
	active := true
	if mode == ModeAdmin && in.IsActive != nil {
		active = *in.IsActive
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return User{}, httpx.Coded(httpx.CodeUserCreationFailed, http.StatusInternalServerError, "could not hash password", err)
	}

	var created User
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.InsertIdentity(ctx, in.Email, string(hash), active)
		if err != nil {
			if errors.Is(err, ErrEmailTaken) {
				return httpx.Coded(httpx.CodeUserCreationFailed, http.StatusConflict, "email already registered", err)
			}
			return httpx.Coded(httpx.CodeUserCreationFailed, http.StatusInternalServerError, "could not create user", err)
		}
		if err := tx.ReplaceRole(ctx, id, role); err != nil {
			return httpx.Coded(httpx.CodeRoleAssignmentFailed, http.StatusInternalServerError, "could not assign role", err)
		}
		profile := Profile{UserID: id, FullName: strings.TrimSpace(in.FullName), Phone: strings.TrimSpace(in.Phone), Email: in.Email}
		if err := tx.UpsertProfile(ctx, profile); err != nil {
			return httpx.Coded(httpx.CodeProfileUpsertFailed, http.StatusInternalServerError, "could not save profile", err)
		}
		created, err = tx.GetUser(ctx, id)
		return err
	})
	if err != nil {
		return User{}, err
	}
	s.record(ctx, actionName(mode, "create"), created.ID, map[string]any{"email": created.Email, "role": role})
	return created, nil
}

// Update applies the non-nil fields of in. Email and activation changes require ModeAdmin.
func (s *Service) Update(ctx context.Context, mode Mode, in UpdateInput) (User, error) {
	if err := s.validator.Struct(in); err != nil {
		return User{}, httpx.Coded(httpx.CodeInvalidPayload, http.StatusBadRequest, err.Error(), httpx.ErrValidation)
	}
	if mode != ModeAdmin && (in.Email != nil || in.IsActive != nil) {
		return User{}, httpx.Coded(httpx.CodeForbidden, http.StatusForbidden, "email and is_active are changed through admin-update-user", httpx.ErrForbidden)
	}
	var hash *string
	if in.Password != nil {
		if problems := PasswordProblems(*in.Password); len(problems) > 0 {
			return User{}, httpx.Coded(httpx.CodeWeakPassword, http.StatusBadRequest, weakPasswordMessage(problems), httpx.ErrValidation)
		}
		raw, err := bcrypt.GenerateFromPassword([]byte(*in.Password), s.hashCost)
		if err != nil {
			return User{}, httpx.Coded(httpx.CodeUserUpdateFailed, http.StatusInternalServerError, "could not hash password", err)
		}
		h := string(raw)
		hash = &h
	}
	var role string
	if in.Role != nil {
		var err error
		if role, err = normalizeRole(*in.Role); err != nil {
			return User{}, err
		}
		if err := s.ensureMayGrant(ctx, role); err != nil {
			return User{}, err
		}
	}

	var updated User
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetUser(ctx, in.UserID)
		if err != nil {
			return notFoundOr(err, httpx.CodeUserUpdateFailed)
		}
		if err := s.ensureMayManage(ctx, current); err != nil {
			return err
		}
		if in.Email != nil || hash != nil || in.IsActive != nil {
			if err := tx.UpdateIdentity(ctx, in.UserID, in.Email, hash, in.IsActive); err != nil {
				if errors.Is(err, ErrEmailTaken) {
					return httpx.Coded(httpx.CodeUserUpdateFailed, http.StatusConflict, "email already registered", err)
				}
				return notFoundOr(err, httpx.CodeUserUpdateFailed)
			}
		}
		if in.Role != nil && role != current.Role {
			if err := tx.ReplaceRole(ctx, in.UserID, role); err != nil {
				return httpx.Coded(httpx.CodeRoleAssignmentFailed, http.StatusInternalServerError, "could not assign role", err)
			}
		}
		if in.FullName != nil || in.Phone != nil || in.Email != nil {
			profile := Profile{UserID: in.UserID, FullName: current.FullName, Phone: current.Phone, Email: current.Email}
			if in.FullName != nil {
				profile.FullName = strings.TrimSpace(*in.FullName)
			}
			if in.Phone != nil {
				profile.Phone = strings.TrimSpace(*in.Phone)
			}
			if in.Email != nil {
				profile.Email = *in.Email
			}
			if err := tx.UpsertProfile(ctx, profile); err != nil {
				return httpx.Coded(httpx.CodeProfileUpsertFailed, http.StatusInternalServerError, "could not save profile", err)
			}
		}
		updated, err = tx.GetUser(ctx, in.UserID)
		return err
	})
	if err != nil {
		return User{}, err
	}
	meta := map[string]any{"password_changed": hash != nil}
	if in.Role != nil {
		meta["role"] = role
	}
	if in.IsActive != nil {
		meta["is_active"] = *in.IsActive
	}
	s.record(ctx, actionName(mode, "update"), updated.ID, meta)
	return updated, nil
}

// Delete removes an account. Callers cannot delete themselves.
func (s *Service) Delete(ctx context.Context, in DeleteInput) error {
	if in.UserID == uuid.Nil {
		return httpx.Coded(httpx.CodeInvalidPayload, http.StatusBadRequest, "user_id is required", httpx.ErrValidation)
	}
	if principal := shared.PrincipalFromContext(ctx); principal != nil && !principal.Service && principal.UserID == in.UserID {
		return httpx.Coded(httpx.CodeForbidden, http.StatusForbidden, "cannot delete your own account", httpx.ErrForbidden)
	}
	var email string
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetUser(ctx, in.UserID)
		if err != nil {
			return notFoundOr(err, httpx.CodeUserDeletionFailed)
		}
		if err := s.ensureMayManage(ctx, current); err != nil {
			return err
		}
		email = current.Email
		if err := tx.DeleteIdentity(ctx, in.UserID); err != nil {
			return notFoundOr(err, httpx.CodeUserDeletionFailed)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.record(ctx, "users.delete", in.UserID, map[string]any{"email": email})
	return nil
}

func (s *Service) callerIsAdmin(ctx context.Context) (bool, error) {
	return s.roles.HasAny(ctx, shared.PrincipalFromContext(ctx), shared.RoleAdmin)
}

// ensureMayGrant rejects granting admin by non-admin callers.
func (s *Service) ensureMayGrant(ctx context.Context, role string) error {
	if role != shared.RoleAdmin {
		return nil
	}
	admin, err := s.callerIsAdmin(ctx)
	if err != nil {
		return err
	}
	if !admin {
		return httpx.Coded(httpx.CodeForbidden, http.StatusForbidden, "only admins may grant the admin role", httpx.ErrForbidden)
	}
	return nil
}

// ensureMayManage rejects changes to admin accounts by non-admin callers.
func (s *Service) ensureMayManage(ctx context.Context, target User) error {
	if target.Role != shared.RoleAdmin {
		return nil
	}
	admin, err := s.callerIsAdmin(ctx)
	if err != nil {
		return err
	}
	if !admin {
		return httpx.Coded(httpx.CodeForbidden, http.StatusForbidden, "only admins may modify admin accounts", httpx.ErrForbidden)
	}
	return nil
}

func (s *Service) record(ctx context.Context, action string, id uuid.UUID, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  shared.ActorID(ctx),
		Action:   action,
		Entity:   "user",
		EntityID: id.String(),
		Meta:     meta,
	})
}

func normalizeRole(raw string) (string, error) {
	role := strings.ToLower(strings.TrimSpace(raw))
	if role == "" {
		return shared.RoleTripulante, nil
	}
	if !shared.IsKnownRole(role) {
		return "", httpx.Coded(httpx.CodeInvalidPayload, http.StatusBadRequest, "unknown role "+raw, httpx.ErrValidation)
	}
	return role, nil
}

func notFoundOr(err error, code string) error {
	var coded *httpx.CodedError
	if errors.As(err, &coded) {
		return err
	}
	if errors.Is(err, ErrNotFound) {
		return httpx.Coded(httpx.CodeNotFound, http.StatusNotFound, "user not found", err)
	}
	return httpx.Coded(code, http.StatusInternalServerError, "", err)
}

func actionName(mode Mode, verb string) string {
	if mode == ModeAdmin {
		return "users.admin_" + verb
	}
	return "users." + verb
}
