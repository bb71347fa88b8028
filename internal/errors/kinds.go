package errors

import (
	goerrors "errors"
	"fmt"
)

// Kind classifies failures that reach the user.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindLimitExceeded
	KindAuthRequired
	KindStoreFailure
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindLimitExceeded:
		return "limit_exceeded"
	case KindAuthRequired:
		return "auth_required"
	case KindStoreFailure:
		return "store_failure"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is checks.
var (
	ErrValidation    = &Error{Kind: KindValidation, Message: "invalid input"}
	ErrLimitExceeded = &Error{Kind: KindLimitExceeded, Message: "You have reached the maximum number of habits"}
	ErrAuthRequired  = &Error{Kind: KindAuthRequired, Message: "User not authenticated"}
	ErrStoreFailure  = &Error{Kind: KindStoreFailure, Message: "storage request failed"}
)

// Error carries a Kind, the operation that failed, a message safe to show the
// user, and the underlying cause (if any).
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind, so wrapped errors satisfy the sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Validation reports bad input shape.
func Validation(op, format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Op: op, Message: fmt.Sprintf(format, args...)}
}

// LimitExceeded reports that the owner already has the maximum number of habits.
func LimitExceeded(op string) error {
	return &Error{Kind: KindLimitExceeded, Op: op, Message: ErrLimitExceeded.Message}
}

// AuthRequired reports that no identity could be resolved.
func AuthRequired(op string) error {
	return &Error{Kind: KindAuthRequired, Op: op, Message: ErrAuthRequired.Message}
}

// StoreFailure wraps a persistence error with the message shown to the user.
func StoreFailure(op, message string, err error) error {
	return &Error{Kind: KindStoreFailure, Op: op, Message: message, Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if goerrors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// UserMessage converts any error into the string shown to the user. Causes are
// not included; they belong in the log.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if goerrors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
