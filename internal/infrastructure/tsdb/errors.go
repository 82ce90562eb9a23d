package tsdb

import (
	"errors"
	"fmt"
)

// Sentinel errors for time-series write operations.
//
// Every failure returned by Client.WritePoint is a *WriteError whose Kind is
// one of ErrEncoding, ErrTransport or ErrRejected, so callers can branch with
// errors.Is:
//
//	if errors.Is(err, tsdb.ErrRejected) {
//	    // Backend answered with a non-2xx status
//	}
var (
	// ErrEncoding indicates the point could not be encoded; no request was sent.
	ErrEncoding = errors.New("tsdb: invalid point")

	// ErrTransport indicates the backend could not be reached
	// (DNS failure, connection refused, timeout, cancelled context).
	ErrTransport = errors.New("tsdb: transport failure")

	// ErrRejected indicates the backend answered with a non-2xx status.
	ErrRejected = errors.New("tsdb: write rejected")

	// ErrConnectionFailed indicates the backend health check failed.
	ErrConnectionFailed = errors.New("tsdb: connection failed")
)

// WriteError describes a failed write.
type WriteError struct {
	// Kind is ErrEncoding, ErrTransport or ErrRejected.
	Kind error

	// StatusCode and Body are set for ErrRejected.
	StatusCode int
	Body       string

	// Err is the underlying cause, if any.
	Err error
}

func (e *WriteError) Error() string {
	switch {
	case e.Kind == ErrRejected:
		return fmt.Sprintf("%v: HTTP %d: %s", e.Kind, e.StatusCode, e.Body)
	case e.Err != nil && errors.Is(e.Err, e.Kind):
		return e.Err.Error()
	case e.Err != nil:
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	default:
		return e.Kind.Error()
	}
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *WriteError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
