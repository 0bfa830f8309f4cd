package client

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// maxErrBodySize caps the amount of response body read when
// normalizing an error. This prevents unbounded memory usage when
// a large body arrives with a failing status.
const maxErrBodySize = 64 << 10 // 64KB

const (
	defaultContentType = "application/json;charset=UTF-8"
	defaultAccept      = "application/json"
	eventStreamAccept  = "text/event-stream"
	headerRequestID    = "X-Request-ID"
)

// execFn represents a func to operate on a successful response.
type execFn func(response *http.Response) error

// ErrUnexpectedStatusCode is the sentinel wrapped by [UnexpectedStatusError].
var ErrUnexpectedStatusCode = errors.New("unexpected status code")

// UnexpectedStatusError keeps the raw status and body of a failed
// response. It is the cause carried by a status-derived [Error].
type UnexpectedStatusError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("%v: %d, body: %s", e.Err, e.StatusCode, e.Body)
}

func (e *UnexpectedStatusError) Unwrap() error {
	return e.Err
}

// ResponseType hints how a successful body should be handled.
type ResponseType int

const (
	// ResponseJSON decodes the body into the descriptor's destination.
	ResponseJSON ResponseType = iota
	// ResponseBinary returns the raw envelope so headers stay readable.
	ResponseBinary
)

// Descriptor describes one outbound call. It is built by [NewDescriptor]
// and is not modified by the [Client].
type Descriptor struct {
	Method           string
	Path             string
	Query            url.Values
	Body             any
	Header           http.Header
	Response         ResponseType
	SkipAuthRedirect bool

	contentType *string
	parts       []part
	dest        any
	useJSONNum  bool
}

// part is a single multipart/form-data entry.
type part struct {
	field    string
	filename string
	value    string
	r        io.Reader
}

// Response is the envelope returned by [Client.Send]. Body is populated
// only for binary responses; JSON bodies are decoded into the destination.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}
