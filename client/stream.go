package client

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/adamwoolhether/adminapi/client/stream"
)

// Stream posts body as JSON and consumes the text/event-stream response,
// calling onChunk with each appended piece and the text so far. It returns
// the final accumulated text.
//
// Streams are bounded by ctx only; the client timeout does not apply.
// Cancelling ctx aborts the read and yields a [KindStreamCancelled] error
// while the partial text is still returned; a ctx deadline yields
// [KindTimeout] instead. A 2xx response with an empty body is an empty
// stream. A non-2xx status is normalized from the error body and the
// decoder is never entered.
func (c *Client) Stream(ctx context.Context, path string, body any, onChunk stream.ChunkFunc, opts ...RequestOption) (string, error) {
	if body != nil {
		opts = append([]RequestOption{WithPayload(body)}, opts...)
	}

	d, err := NewDescriptor(http.MethodPost, path, opts...)
	if err != nil {
		return "", err
	}

	ctx, span := c.startSpan(ctx, "client.stream", d)
	defer span.End()

	text, err := c.stream(ctx, d, onChunk)
	endSpan(span, err)

	return text, err
}

func (c *Client) stream(ctx context.Context, d Descriptor, onChunk stream.ChunkFunc) (string, error) {
	req, err := c.buildRequest(ctx, d, eventStreamAccept)
	if err != nil {
		return "", err
	}

	start := time.Now()

	hc := *c.c
	hc.Timeout = 0

	resp, err := hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", streamAborted(ctx, 0, err)
		}
		nerr := normalizeTransport(err)
		c.logger.Warn("stream failed", "path", req.URL.Path, "kind", nerr.Kind.String(), "error", err)
		return "", nerr
	}
	// http.Client substitutes http.NoBody for an empty body, which is a
	// stream with no events. Only a transport that cannot stream leaves it nil.
	if resp.Body == nil {
		return "", &Error{Kind: KindStreamUnsupported, Message: msgNoStream, Status: resp.StatusCode}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Error("failed to close stream body", "error", err)
		}
	}()

	if !isSuccess(resp.StatusCode) {
		return "", c.failure(ctx, resp, d)
	}

	c.logger.Debug("stream opened", "path", req.URL.Path, "status", resp.StatusCode)

	res, err := stream.Consume(ctx, resp.Body, onChunk)
	switch {
	case errors.Is(err, stream.ErrCancelled):
		nerr := streamAborted(ctx, resp.StatusCode, err)
		c.logger.Info("stream aborted", "path", req.URL.Path, "kind", nerr.Kind.String(), "received", len(res.FullText))
		return res.FullText, nerr
	case err != nil:
		c.logger.Warn("stream interrupted", "path", req.URL.Path, "error", err)
		return res.FullText, &Error{Kind: KindNetwork, Message: msgNetwork, Status: resp.StatusCode, Err: err}
	}

	c.logger.Debug("stream completed", "path", req.URL.Path, "received", len(res.FullText), "since", time.Since(start).String())

	return res.FullText, nil
}

// streamAborted classifies a stream ended by ctx. An elapsed deadline is a
// timeout; anything else is a caller cancellation.
func streamAborted(ctx context.Context, status int, err error) *Error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Message: msgTimeout, Status: status, Err: err}
	}

	return &Error{Kind: KindStreamCancelled, Message: msgStreamCancel, Status: status, Err: err}
}
