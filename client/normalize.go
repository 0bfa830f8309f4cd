package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/http"
	"os"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/adamwoolhether/adminapi/client/download"
)

const (
	msgTimeout      = "request timed out, please try again later"
	msgNetwork      = "network error, please check your connection"
	msgCanceled     = "request cancelled"
	msgUnauthorized = "unauthorized, please re-authenticate"
	msgStreamCancel = "stream cancelled"
	msgNoStream     = "streaming responses are not supported by this transport"
	msgDecode       = "unexpected response from server"
	msgSave         = "could not save the downloaded file"
)

func failedMessage(status int) string {
	return fmt.Sprintf("request failed (%d)", status)
}

// Normalize converts a completed non-2xx response body into an *Error.
// The body may be a problem-details JSON object, a JSON string, plain text,
// or the bytes of a binary response that carries one of those. Invalid
// UTF-8 is replaced rather than rejected.
func Normalize(status int, body []byte) *Error {
	e := &Error{
		Kind:   StatusKind(status),
		Status: status,
		Err: &UnexpectedStatusError{
			StatusCode: status,
			Body:       string(body),
			Err:        ErrUnexpectedStatusCode,
		},
	}

	text := strings.TrimSpace(strings.ToValidUTF8(string(body), "\uFFFD"))
	if text == "" {
		e.Message = failedMessage(status)
		return e
	}

	if !gjson.Valid(text) {
		e.Message = text
		return e
	}

	res := gjson.Parse(text)
	switch {
	case res.IsObject():
		applyProblem(e, res)
	case res.Type == gjson.String && strings.TrimSpace(res.Str) != "":
		e.Message = strings.TrimSpace(res.Str)
	default:
		e.Message = text
	}

	return e
}

// applyProblem copies problem-details fields onto e. The display message
// prefers detail, then message, then title.
func applyProblem(e *Error, res gjson.Result) {
	detail := strings.TrimSpace(res.Get("detail").String())
	message := strings.TrimSpace(res.Get("message").String())
	title := strings.TrimSpace(res.Get("title").String())

	e.Detail = detail
	e.Title = title
	if e.Title == "" {
		e.Title = http.StatusText(e.Status)
	}

	switch {
	case detail != "":
		e.Message = detail
	case message != "":
		e.Message = message
	case title != "":
		e.Message = title
	default:
		e.Message = failedMessage(e.Status)
	}

	if s := res.Get("status"); s.Exists() && s.Int() > 0 {
		e.Status = int(s.Int())
	}
	e.TraceID = res.Get("traceId").String()
	e.Timestamp = res.Get("timestamp").String()
}

// normalizeTransport classifies a failure where no response was received.
// The body is never consulted.
func normalizeTransport(err error) *Error {
	switch {
	case errors.Is(err, context.Canceled):
		return &Error{Kind: KindCanceled, Message: msgCanceled, Err: err}
	case isTimeout(err):
		return &Error{Kind: KindTimeout, Message: msgTimeout, Err: err}
	default:
		return &Error{Kind: KindNetwork, Message: msgNetwork, Err: err}
	}
}

// normalizeBody classifies a failure that happened after a 2xx status,
// while the body was being read, decoded or written to disk.
func normalizeBody(status int, err error) *Error {
	if e, ok := AsError(err); ok {
		if e.Status == 0 {
			e.Status = status
		}
		return e
	}

	var nerr *Error
	switch {
	case errors.Is(err, context.Canceled), isTimeout(err):
		nerr = normalizeTransport(err)
	case errors.Is(err, download.ErrInvalidFilename):
		nerr = &Error{Kind: KindSave, Message: msgSave, Err: err}
	case errors.Is(err, download.ErrContentLengthMismatch), errors.Is(err, io.ErrUnexpectedEOF):
		nerr = &Error{Kind: KindNetwork, Message: msgNetwork, Err: err}
	case isFileError(err):
		nerr = &Error{Kind: KindSave, Message: msgSave, Err: err}
	case isNetError(err):
		nerr = &Error{Kind: KindNetwork, Message: msgNetwork, Err: err}
	default:
		nerr = &Error{Kind: KindDecode, Message: msgDecode, Err: err}
	}
	nerr.Status = status

	return nerr
}

func isFileError(err error) bool {
	if _, ok := errors.AsType[*fs.PathError](err); ok {
		return true
	}
	_, ok := errors.AsType[*os.LinkError](err)
	return ok
}

func isNetError(err error) bool {
	_, ok := errors.AsType[net.Error](err)
	return ok
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	ne, ok := errors.AsType[net.Error](err)
	return ok && ne.Timeout()
}

// unauthorized supersedes any body-derived message once the session guard
// has run.
func unauthorized(cause *Error) *Error {
	return &Error{
		Kind:      KindUnauthorized,
		Message:   msgUnauthorized,
		Status:    http.StatusUnauthorized,
		Title:     cause.Title,
		Detail:    cause.Detail,
		TraceID:   cause.TraceID,
		Timestamp: cause.Timestamp,
		Err:       cause.Err,
	}
}
