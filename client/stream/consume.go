package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
)

const readBufferSize = 4 << 10 // 4KB

var (
	// ErrCancelled marks a stream stopped by its caller's context.
	ErrCancelled = errors.New("stream cancelled")
	// ErrNoBody is returned when there is nothing to read from.
	ErrNoBody = errors.New("stream has no body")
)

// Consume reads r until EOF or the [DONE] sentinel and returns the
// accumulated text. When ctx ends, r is closed if it is an [io.Closer] so
// a blocked network read returns promptly, onChunk is no longer called,
// and the partial result is returned with an error wrapping ErrCancelled.
func Consume(ctx context.Context, r io.Reader, onChunk ChunkFunc) (Result, error) {
	if r == nil {
		return Result{}, ErrNoBody
	}

	dec := NewDecoder(func(delta, full string) {
		if ctx.Err() == nil && onChunk != nil {
			onChunk(delta, full)
		}
	})

	if c, ok := r.(io.Closer); ok {
		stop := context.AfterFunc(ctx, func() {
			_ = c.Close()
		})
		defer stop()
	}

	buf := make([]byte, readBufferSize)
	for {
		if ctx.Err() != nil {
			return dec.Result(), cancelled(ctx)
		}

		n, err := r.Read(buf)
		if ctx.Err() != nil {
			return dec.Result(), cancelled(ctx)
		}

		if n > 0 {
			if _, werr := dec.Write(buf[:n]); werr != nil {
				return dec.Result(), fmt.Errorf("decoding stream: %w", werr)
			}
		}

		if dec.Done() || errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return dec.Result(), fmt.Errorf("reading stream: %w", err)
		}
	}

	return dec.Flush(), nil
}

func cancelled(ctx context.Context) error {
	return fmt.Errorf("%w: %w", ErrCancelled, context.Cause(ctx))
}
