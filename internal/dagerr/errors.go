// Package dagerr defines the error-kind taxonomy shared by every component
// of the DAG store (spec.md §7). Every leaf error returned by a store,
// cache, validator, or engine call is one of these kinds; nothing is
// recovered inside the core, so the kind travels unchanged up to the RPC
// facade, which is the only place it gets translated into a transport
// status.
package dagerr

import (
	"github.com/cockroachdb/errors"
)

// Kind classifies an error for the purposes of RPC-facade translation. It
// is not itself an error type — use New/Wrap to attach a Kind to an error
// value built with github.com/cockroachdb/errors, which preserves the
// originating stack frame.
type Kind int

const (
	// Unexpected covers invariant violations, dropped result channels, and
	// anything else that should never happen on a correct code path.
	Unexpected Kind = iota
	// Decode means a wire payload failed to parse into a domain object.
	Decode
	// NotFound means a requested hash is absent from the blob store.
	NotFound
	// StoreIO means the underlying key-value store returned an error.
	StoreIO
	// CasConflict means a compare-and-swap saw a value other than the
	// expected previous one; Actual carries what was observed.
	CasConflict
)

func (k Kind) String() string {
	switch k {
	case Decode:
		return "decode"
	case NotFound:
		return "not_found"
	case StoreIO:
		return "store_io"
	case CasConflict:
		return "cas_conflict"
	default:
		return "unexpected"
	}
}

// kindError pairs a Kind with the wrapped cause.
type kindError struct {
	kind  Kind
	cause error
}

func (e *kindError) Error() string { return e.cause.Error() }
func (e *kindError) Unwrap() error { return e.cause }

// New builds a new error of the given kind with a message, capturing a
// stack trace via cockroachdb/errors.
func New(kind Kind, msg string) error {
	return &kindError{kind: kind, cause: errors.New(msg)}
}

// Newf is New with fmt-style formatting.
func Newf(kind Kind, format string, args ...interface{}) error {
	return &kindError{kind: kind, cause: errors.Newf(format, args...)}
}

// Wrap attaches kind to an existing error, preserving err as the cause.
// Wrapping nil returns nil.
func Wrap(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: kind, cause: errors.Wrap(err, msg)}
}

// KindOf reports the Kind attached to err by New/Wrap, or Unexpected if err
// was never classified by this package.
func KindOf(err error) Kind {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.kind
	}
	return Unexpected
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// CasConflictError carries the value actually observed by a failed CAS, as
// required by spec.md §4.B ("On conflict, returns the observed current
// value."). Actual is nil when the key was observed absent.
type CasConflictError struct {
	Key    string
	Actual []byte
}

func (e *CasConflictError) Error() string {
	return errors.Newf("dagerr: cas conflict on key %q", e.Key).Error()
}

// NewCasConflict wraps a CasConflictError with the CasConflict kind.
func NewCasConflict(key string, actual []byte) error {
	return &kindError{kind: CasConflict, cause: &CasConflictError{Key: key, Actual: actual}}
}

// AsCasConflict extracts the CasConflictError detail from err, if present.
func AsCasConflict(err error) (*CasConflictError, bool) {
	var c *CasConflictError
	ok := errors.As(err, &c)
	return c, ok
}
