package domain

import "errors"

// Directory and session errors.
var (
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrDuplicateEmail       = errors.New("user with this email already exists")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrInvalidField         = errors.New("invalid field value")
	ErrForbidden            = errors.New("access forbidden")
	ErrNotFound             = errors.New("not found")
	ErrUserNotFound         = fmtNotFound("user")
	ErrUnauthenticated      = errors.New("not authenticated")
	ErrRateLimited          = errors.New("too many failed attempts, try again later")
)

// Ticket errors.
var (
	ErrTicketNotFound    = fmtNotFound("ticket")
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrDuplicateTicket is returned by a repository when the ticket id or
	// idempotency key is already taken.
	ErrDuplicateTicket = errors.New("ticket already exists")
)

// notFoundError keeps a resource name while still matching ErrNotFound.
type notFoundError struct{ resource string }

func (e *notFoundError) Error() string        { return e.resource + " not found" }
func (e *notFoundError) Is(target error) bool { return target == ErrNotFound }

func fmtNotFound(resource string) error { return &notFoundError{resource: resource} }
