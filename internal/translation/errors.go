package translation

import (
	"errors"
	"fmt"
)

var (
	// ErrDocumentNotFound is returned when the referenced document does not
	// exist in the catalogue.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrEmptyPage is returned when the requested page has no extractable
	// text. Not retried.
	ErrEmptyPage = errors.New("no text on page")
)

// ValidationError reports a malformed request field. Surfaced as a client
// error, never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// TransientError marks an AI call that failed for I/O reasons (network,
// timeout, upstream overload). The queue worker records it on the job and
// re-raises so the transport's retry policy can act on it.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// IsTransient reports whether err is (or wraps) a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
