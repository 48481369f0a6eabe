package fault

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")
	ErrUniqueViolation  = errors.New("unique violation")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrFileSystem       = errors.New("file system failure")
	ErrPermissionDenied = errors.New("permission denied")
)

type ErrorType int

const (
	ErrClient ErrorType = iota
	ErrInternal
)

type Fault struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Fault) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.typeString(), e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.typeString(), e.Message)
}

// Unwrap allows errors.Is and errors.As to work.
func (e *Fault) Unwrap() error {
	return e.Err
}

// typeString returns a human-readable representation of the error type.
func (e *Fault) typeString() string {
	switch e.Type {
	case ErrClient:
		return "ClientError"
	case ErrInternal:
		return "InternalError"
	default:
		return "UnknownError"
	}
}

// NewClientError creates a new client error.
func NewClientError(msg string, err error) error {
	return &Fault{
		Type:    ErrClient,
		Message: msg,
		Err:     err,
	}
}

// NewInternalError creates a new internal server error.
func NewInternalError(msg string, err error) error {
	return &Fault{
		Type:    ErrInternal,
		Message: msg,
		Err:     err,
	}
}

// NotFound wraps msg as a client-visible not-found fault.
func NotFound(msg string) error {
	return &Fault{Type: ErrClient, Message: msg, Err: ErrNotFound}
}

// Conflict marks a retryable or caller-resolvable collision, such as a
// duplicate interview id handed out under concurrent creation.
func Conflict(msg string, err error) error {
	if err == nil {
		err = ErrConflict
	}
	return &Fault{Type: ErrClient, Message: msg, Err: err}
}

// Store wraps a database failure as an internal store-unavailable fault.
func Store(msg string, err error) error {
	return &Fault{Type: ErrInternal, Message: msg, Err: errors.Join(ErrStoreUnavailable, err)}
}

// FileSystem wraps a file operation failure.
func FileSystem(msg string, err error) error {
	return &Fault{Type: ErrInternal, Message: msg, Err: errors.Join(ErrFileSystem, err)}
}

// IsClientError checks if an error is a client error.
func IsClientError(err error) bool {
	var ce *Fault
	if errors.As(err, &ce) {
		return ce.Type == ErrClient
	}
	return false
}

// IsInternalError checks if an error is an internal error.
func IsInternalError(err error) bool {
	var ce *Fault
	if errors.As(err, &ce) {
		return ce.Type == ErrInternal
	}
	return false
}

// IsNotFound reports whether err carries the not-found sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict reports whether err is a conflict or unique violation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrUniqueViolation)
}
