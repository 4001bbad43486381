// Package apperror defines the sentinel errors shared across services and
// mapped to HTTP statuses by the handlers. Services wrap them with context
// via fmt.Errorf("...: %w", err); callers test with errors.Is.
package apperror

import "errors"

var (
	// ErrUnauthenticated means no valid principal accompanied the request.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrInactiveAccount means the principal exists but is deactivated.
	// Inactive principals are authorized for nothing, regardless of role.
	ErrInactiveAccount = errors.New("inactive account")

	// ErrForbidden means the principal is authenticated but its role lacks
	// the required permission. Raised before any store mutation.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound means a referenced entity is absent from the store.
	ErrNotFound = errors.New("not found")

	// ErrConflict means a uniqueness constraint would be violated.
	ErrConflict = errors.New("conflict")

	// ErrInvalidState means the entity cannot undergo the requested
	// transition, e.g. converting an already-converted lead.
	ErrInvalidState = errors.New("invalid state")

	// ErrValidation means the input is malformed.
	ErrValidation = errors.New("validation failed")

	// ErrTransactionFailure means a multi-step orchestration aborted and
	// rolled back; the wrapped cause is preserved.
	ErrTransactionFailure = errors.New("transaction failure")
)
