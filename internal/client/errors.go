package client

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a backend failure.
type ErrorKind int

const (
	// RemoteRejected means the backend answered with a non-success status.
	RemoteRejected ErrorKind = iota + 1
	// TransportUnavailable means the backend could not be reached.
	TransportUnavailable
	// MalformedResponse means the reply could not be decoded.
	MalformedResponse
)

func (k ErrorKind) String() string {
	switch k {
	case RemoteRejected:
		return "remote rejected"
	case TransportUnavailable:
		return "transport unavailable"
	case MalformedResponse:
		return "malformed response"
	default:
		return "unknown"
	}
}

// BackendError is the error returned by every Client implementation.
type BackendError struct {
	Kind ErrorKind
	// Status is the HTTP status or gRPC code for RemoteRejected.
	Status int
	// Body is the response body or status message, truncated.
	Body string
	Err  error
}

const maxErrorBody = 2048

func (e *BackendError) Error() string {
	switch e.Kind {
	case RemoteRejected:
		return fmt.Sprintf("API request failed with status %d: %s", e.Status, e.Body)
	case TransportUnavailable:
		if e.Err != nil {
			return "backend unavailable: " + e.Err.Error()
		}
		return "backend unavailable"
	case MalformedResponse:
		if e.Err != nil {
			return "malformed backend response: " + e.Err.Error()
		}
		return "malformed backend response"
	default:
		if e.Err != nil {
			return e.Err.Error()
		}
		return "backend error"
	}
}

func (e *BackendError) Unwrap() error { return e.Err }

func rejected(status int, body string) *BackendError {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody] + "..."
	}
	return &BackendError{Kind: RemoteRejected, Status: status, Body: body}
}

func unavailable(err error) *BackendError {
	return &BackendError{Kind: TransportUnavailable, Err: err}
}

func malformed(err error) *BackendError {
	return &BackendError{Kind: MalformedResponse, Err: err}
}

// KindOf returns the ErrorKind of err, or 0 when err is not a BackendError.
func KindOf(err error) ErrorKind {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Kind
	}
	return 0
}
