package download

import (
	"errors"
	"fmt"
)

var (
	ErrContentLengthMismatch = errors.New("content length mismatch")
	ErrDownloadCancelled     = errors.New("download cancelled")
	ErrInvalidFilename       = errors.New("invalid filename")
)

// Error wraps one of the package sentinels with detail.
type Error struct {
	Detail string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ProgressFunc receives the bytes written so far and the expected total,
// which is -1 when the server did not send a length.
type ProgressFunc func(written, total int64)
