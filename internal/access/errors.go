package access

import "errors"

// Denial outcomes. These are expected results, not failures.
var (
	// ErrAccessDenied indicates no gate admitted the principal and no request exists.
	ErrAccessDenied = errors.New("access denied")
	// ErrPendingApproval indicates the latest guest request is still pending.
	ErrPendingApproval = errors.New("pending approval")
	// ErrAccessRejected indicates the latest guest request was rejected.
	ErrAccessRejected = errors.New("access rejected")
	// ErrAccessUnavailable indicates a fail-closed denial caused by storage failures.
	ErrAccessUnavailable = errors.New("access checks unavailable")
)

// Workflow and context errors returned to callers.
var (
	// ErrRequestNotFound indicates an unknown guest request id.
	ErrRequestNotFound = errors.New("guest request not found")
	// ErrInvalidStateTransition indicates a transition out of a terminal status.
	ErrInvalidStateTransition = errors.New("invalid guest request state transition")
	// ErrInvalidContext indicates a site/sdwt pair without a reference row.
	ErrInvalidContext = errors.New("invalid site or sdwt")
	// ErrInvalidInput indicates a missing or malformed operation argument.
	ErrInvalidInput = errors.New("invalid input")
)

// Admin maintenance errors.
var (
	// ErrConflict indicates a create that collides with an existing row.
	ErrConflict = errors.New("already exists")
	// ErrNotFound indicates an unknown row in a maintenance operation.
	ErrNotFound = errors.New("not found")
)
