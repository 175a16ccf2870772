package checkout

import (
	"errors"

	"go.uber.org/multierr"
)

// Preflight sentinels, reported wrapped in an *Error.
var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrUnauthenticated   = errors.New("user not authenticated")
	ErrNoShippingOption  = errors.New("no shipping option selected")
	ErrInvalidForm       = errors.New("checkout form incomplete or invalid")
	ErrInvalidPayment    = errors.New("payment details incomplete or invalid")
	ErrAlreadyProcessing = errors.New("checkout already processing")
	ErrAttemptInProgress = errors.New("checkout attempt in progress")
	ErrAttemptForeign    = errors.New("checkout key used by another user")
)

// Kind classifies a checkout failure.
type Kind int

const (
	KindPrecondition Kind = iota + 1
	KindUnauthenticated
	KindAvailability
	KindCommit
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindPrecondition:
		return "precondition"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindAvailability:
		return "availability"
	case KindCommit:
		return "commit"
	case KindConflict:
		return "conflict"
	}
	return "unknown"
}

// Error is returned by Checkout. Message is the single user-facing summary
// of the attempt; Err carries the cause for logs and errors.Is.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Problems lists the individual stock problems of an availability failure.
func (e *Error) Problems() []string {
	if e.Kind != KindAvailability {
		return nil
	}
	errs := multierr.Errors(e.Err)
	out := make([]string, 0, len(errs))
	for _, err := range errs {
		out = append(out, err.Error())
	}
	return out
}

// KindOf returns the Kind of a checkout error, false for other errors.
func KindOf(err error) (Kind, bool) {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind, true
	}
	return 0, false
}

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}
