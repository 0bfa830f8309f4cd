package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed call.
type Kind int

const (
	// KindNetwork means no response was received.
	KindNetwork Kind = iota + 1
	// KindTimeout means the request deadline elapsed before a response.
	KindTimeout
	// KindCanceled means the caller cancelled a non-streaming request.
	KindCanceled
	// KindUnauthorized is a 401 response.
	KindUnauthorized
	// KindClient is any other non-2xx status below 500.
	KindClient
	// KindServer is a 5xx status.
	KindServer
	// KindStreamUnsupported is a successful stream response without a readable body.
	KindStreamUnsupported
	// KindStreamCancelled is a caller-initiated abort of an open stream.
	KindStreamCancelled
	// KindDecode is a 2xx response whose body could not be decoded.
	KindDecode
	// KindSave is a 2xx download that could not be written locally.
	KindSave
)

var (
	ErrNetwork           = errors.New("network failure")
	ErrTimeout           = errors.New("timeout")
	ErrCanceled          = errors.New("request cancelled")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrClientError       = errors.New("client error")
	ErrServerError       = errors.New("server error")
	ErrStreamUnsupported = errors.New("stream unsupported")
	ErrStreamCancelled   = errors.New("stream cancelled")
	ErrDecode            = errors.New("undecodable response")
	ErrSave              = errors.New("save failed")
)

var kindNames = map[Kind]string{
	KindNetwork:           "network",
	KindTimeout:           "timeout",
	KindCanceled:          "canceled",
	KindUnauthorized:      "unauthorized",
	KindClient:            "client",
	KindServer:            "server",
	KindStreamUnsupported: "stream_unsupported",
	KindStreamCancelled:   "stream_cancelled",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) sentinel() error {
	switch k {
	case KindNetwork:
		return ErrNetwork
	case KindTimeout:
		return ErrTimeout
	case KindCanceled:
		return ErrCanceled
	case KindUnauthorized:
		return ErrUnauthorized
	case KindClient:
		return ErrClientError
	case KindServer:
		return ErrServerError
	case KindStreamUnsupported:
		return ErrStreamUnsupported
	case KindStreamCancelled:
		return ErrStreamCancelled
	case KindDecode:
		return ErrDecode
	case KindSave:
		return ErrSave
	}

	return nil
}

// Error is the normalized failure surfaced for every non-2xx response and
// every transport failure. Message is always suitable for direct display.
// Status is zero when no response was received; the remaining problem
// fields are empty when the server did not supply them.
type Error struct {
	Kind      Kind
	Message   string
	Status    int
	Title     string
	Detail    string
	TraceID   string
	Timestamp string
	Err       error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s [%d]: %s", e.Kind, e.Status, e.Message)
	}

	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel error for e's Kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// AsError returns the *Error in err's chain, if any.
func AsError(err error) (*Error, bool) {
	return errors.AsType[*Error](err)
}

// StatusKind maps a non-2xx status code onto its Kind.
func StatusKind(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status >= http.StatusInternalServerError:
		return KindServer
	default:
		return KindClient
	}
}
