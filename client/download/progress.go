package download

import (
	"context"
	"io"
	"time"
)

// progressWriter counts bytes and forwards them to report, throttled to
// one call per interval.
type progressWriter struct {
	w        io.Writer
	report   ProgressFunc
	interval time.Duration
	written  int64
	total    int64
	last     time.Time
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.w.Write(p)
	pw.written += int64(n)

	switch {
	case pw.total >= 0 && pw.written == pw.total:
		pw.report(pw.written, pw.total)
	case time.Since(pw.last) >= pw.interval:
		pw.last = time.Now()
		pw.report(pw.written, pw.total)
	}

	return n, err
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
