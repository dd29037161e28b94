package xbrl

import (
	"errors"
	"fmt"
)

var (
	// ErrNotLoadable reports a document that could not be normalized, fetched or parsed.
	ErrNotLoadable = errors.New("file not loadable")
	// ErrMalformedXML reports a well-formedness failure.
	ErrMalformedXML = errors.New("malformed XML")
	// ErrPolicyBlocked reports a reference rejected by the disclosure system.
	ErrPolicyBlocked = errors.New("blocked by disclosure system")
	// ErrNoRoot reports a parsed document without a root element.
	ErrNoRoot = errors.New("document has no root element")
)

// LoadingError aborts a whole load when a major error occurs on an entry or
// discovered document and the session is configured to abort on such errors.
type LoadingError struct {
	URI  string
	Code string
	Err  error
}

func (e *LoadingError) Error() string {
	return fmt.Sprintf("loading aborted at %s (%s): %v", e.URI, e.Code, e.Err)
}

func (e *LoadingError) Unwrap() error {
	return e.Err
}

// abortLoading unwinds to the nearest exported entry point.
func abortLoading(uri, code string, err error) {
	panic(&LoadingError{URI: uri, Code: code, Err: err})
}

// recoverLoading converts a LoadingError panic into an error return. Any
// other panic is re-raised.
func recoverLoading(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	if le, ok := r.(*LoadingError); ok {
		*errp = le
		return
	}
	panic(r)
}
