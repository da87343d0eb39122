// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors for domain layer.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicate    = errors.New("duplicate entry")
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// Machine-readable codes returned alongside problem details.
const (
	CodeWeakPassword         = "weak_password"
	CodeUserCreationFailed   = "user_creation_failed"
	CodeRoleAssignmentFailed = "role_assignment_failed"
	CodeProfileUpsertFailed  = "profile_upsert_failed"
	CodeUserUpdateFailed     = "user_update_failed"
	CodeUserDeletionFailed   = "user_deletion_failed"
	CodeInvalidPayload       = "invalid_payload"
	CodeUnauthorized         = "unauthorized"
	CodeForbidden            = "forbidden"
	CodeNotFound             = "not_found"
	CodeConflict             = "conflict"
)

// CodedError carries a stable code and HTTP status for callers that branch on it.
type CodedError struct {
	Code    string
	Status  int
	Message string
	Err     error
}

func (e *CodedError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Code
}

func (e *CodedError) Unwrap() error { return e.Err }

// Coded builds a CodedError wrapping err.
func Coded(code string, status int, message string, err error) *CodedError {
	return &CodedError{Code: code, Status: status, Message: message, Err: err}
}

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	var coded *CodedError
	if errors.As(err, &coded) {
		status := coded.Status
		if status == 0 {
			status = http.StatusBadRequest
		}
		detail := coded.Error()
		if status >= http.StatusInternalServerError && coded.Message == "" {
			detail = ""
		}
		ProblemWithCode(w, status, http.StatusText(status), detail, coded.Code)
		return
	}
	switch {
	case errors.Is(err, ErrNotFound):
		ProblemWithCode(w, http.StatusNotFound, "Not Found", err.Error(), CodeNotFound)
	case errors.Is(err, ErrDuplicate):
		ProblemWithCode(w, http.StatusConflict, "Duplicate", err.Error(), CodeConflict)
	case errors.Is(err, ErrValidation):
		ProblemWithCode(w, http.StatusBadRequest, "Validation Failed", err.Error(), CodeInvalidPayload)
	case errors.Is(err, ErrForbidden):
		ProblemWithCode(w, http.StatusForbidden, "Forbidden", err.Error(), CodeForbidden)
	case errors.Is(err, ErrUnauthorized):
		ProblemWithCode(w, http.StatusUnauthorized, "Unauthorized", err.Error(), CodeUnauthorized)
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
