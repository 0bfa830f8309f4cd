// Package stream decodes incrementally delivered event-stream text.
//
// A [Decoder] is an [io.Writer]: feed it network chunks in order and it
// reassembles UTF-8 characters split across chunk boundaries, splits the
// text into newline-delimited frames and accumulates the payloads of
// `data:` frames until the `[DONE]` sentinel. [Consume] drives a Decoder
// from an [io.Reader] and honours context cancellation:
//
//	res, err := stream.Consume(ctx, resp.Body, func(delta, full string) {
//		fmt.Print(delta)
//	})
//	if errors.Is(err, stream.ErrCancelled) {
//		// res holds the text received before cancellation.
//	}
package stream
