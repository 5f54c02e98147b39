package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrCustomerNotFound     = errors.New("customer not found")
	ErrProductNotFound      = errors.New("product not found")
	ErrAssetNotFound        = errors.New("asset not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrRoleNotFound         = errors.New("role not found")
	ErrServiceOrderNotFound = errors.New("service order not found")

	// ErrConflict is the parent of every referential or uniqueness failure
	// reported by the entity store. Match with errors.Is.
	ErrConflict      = errors.New("conflict")
	ErrDuplicate     = &conflictError{msg: "record already exists"}
	ErrHasDependents = &conflictError{msg: "record is still referenced by other records"}
	ErrProtectedRole = &conflictError{msg: "role is protected"}

	ErrProductNotInstallable = errors.New("only system products can be installed as assets")
	ErrAssetCustomerMismatch = errors.New("asset does not belong to the service order customer")
	ErrTechnicianIneligible  = errors.New("user is not eligible for this assignment")
	ErrInvalidTransition     = errors.New("invalid status transition")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionExpired     = errors.New("session expired or revoked")
	ErrForbidden          = errors.New("access forbidden")
)

type conflictError struct{ msg string }

func (e *conflictError) Error() string        { return e.msg }
func (e *conflictError) Is(target error) bool { return target == ErrConflict }

// ValidationError reports field-level input problems found before any
// store call is made.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns an empty ValidationError ready for Add calls.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records a message for field. The first message for a field wins.
func (e *ValidationError) Add(field, msg string) {
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = msg
	}
}

// OrNil returns nil when no field was flagged, so callers can write
// `return v.OrNil()`.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}
