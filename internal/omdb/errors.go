package omdb

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is wrapped by the RemoteError returned when OMDb has no record
// for a requested id.
var ErrNotFound = errors.New("movie not found")

// NetworkError reports that the API could not be reached.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("omdb %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// RemoteError reports a non-success answer from the API: a bad status code,
// an explicit error payload or a body that could not be decoded.
type RemoteError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *RemoteError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("omdb %s: status %d: %s", e.Op, e.StatusCode, msg)
	}
	return fmt.Sprintf("omdb %s: %s", e.Op, msg)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is an OMDb "not found" answer.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsCanceled reports whether err comes from a request whose context was
// cancelled by the caller, as opposed to one that timed out.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// UserMessage renders err as the short text shown in place of results.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		if errors.Is(err, context.DeadlineExceeded) {
			return "The movie database took too long to answer"
		}
		return "Something went wrong with fetching movies"
	}
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) && remoteErr.Message != "" {
		return remoteErr.Message
	}
	return err.Error()
}
