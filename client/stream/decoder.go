package stream

import (
	"bytes"
	"errors"
	"strings"
	"unicode/utf8"
)

const (
	dataMarker   = "data:"
	doneSentinel = "[DONE]"
	replacement  = "\uFFFD"
)

// ErrFlushed is returned by Write once the decoder has been flushed.
var ErrFlushed = errors.New("decoder already flushed")

// ChunkFunc receives each piece of appended text along with everything
// accumulated so far.
type ChunkFunc func(delta, full string)

// Result is a snapshot of an accumulated stream.
type Result struct {
	FullText      string
	LastEventData string
}

// Decoder turns raw stream bytes into accumulated text. It is not safe
// for concurrent use.
type Decoder struct {
	onChunk ChunkFunc

	// carry holds the leading bytes of a multi-byte character whose
	// remaining bytes have not arrived yet.
	carry []byte
	// line holds a frame whose terminating newline has not arrived yet.
	line strings.Builder

	full    strings.Builder
	last    string
	done    bool
	flushed bool
}

// NewDecoder returns a Decoder invoking onChunk, which may be nil, for
// every piece of text appended to the result.
func NewDecoder(onChunk ChunkFunc) *Decoder {
	return &Decoder{onChunk: onChunk}
}

// Write feeds the next chunk of the stream. Bytes after the [DONE]
// sentinel are accepted and ignored.
func (d *Decoder) Write(p []byte) (int, error) {
	if d.flushed {
		return 0, ErrFlushed
	}
	if d.done {
		return len(p), nil
	}

	buf := p
	if len(d.carry) > 0 {
		buf = append(d.carry, p...)
	}

	complete, rest := splitIncomplete(buf)
	d.carry = bytes.Clone(rest)
	d.feed(strings.ToValidUTF8(string(complete), replacement))

	return len(p), nil
}

// Flush ends the stream: leftover bytes of an unfinished character become
// a replacement character and the final unterminated frame is processed.
// Flush is idempotent.
func (d *Decoder) Flush() Result {
	if d.flushed {
		return d.Result()
	}
	d.flushed = true

	if len(d.carry) > 0 {
		d.carry = nil
		d.feed(replacement)
	}

	if d.line.Len() > 0 && !d.done {
		line := d.line.String()
		d.line.Reset()
		d.frame(line)
	}

	return d.Result()
}

// Done reports whether the [DONE] sentinel has been seen.
func (d *Decoder) Done() bool {
	return d.done
}

// Result returns a snapshot of the text accumulated so far.
func (d *Decoder) Result() Result {
	return Result{FullText: d.full.String(), LastEventData: d.last}
}

func (d *Decoder) feed(text string) {
	for text != "" && !d.done {
		i := strings.IndexByte(text, '\n')
		if i < 0 {
			d.line.WriteString(text)
			return
		}

		d.line.WriteString(text[:i])
		line := d.line.String()
		d.line.Reset()
		text = text[i+1:]

		d.frame(line)
	}
}

// frame handles one complete line. A data frame contributes its payload
// with exactly one leading space removed; any other non-blank line is
// continuation text appended verbatim.
func (d *Decoder) frame(line string) {
	if d.done {
		return
	}
	line = strings.TrimSuffix(line, "\r")

	if payload, ok := strings.CutPrefix(line, dataMarker); ok {
		payload = strings.TrimPrefix(payload, " ")
		switch payload {
		case "":
			return
		case doneSentinel:
			d.done = true
			return
		}

		d.last = payload
		d.emit(payload)
		return
	}

	if strings.TrimSpace(line) == "" {
		return
	}
	d.emit(line)
}

func (d *Decoder) emit(text string) {
	d.full.WriteString(text)
	if d.onChunk != nil {
		d.onChunk(text, d.full.String())
	}
}

// splitIncomplete separates a trailing, not yet complete UTF-8 sequence
// from b. Invalid bytes are left in complete so they can be replaced.
func splitIncomplete(b []byte) (complete, rest []byte) {
	for i := 1; i < utf8.UTFMax && i <= len(b); i++ {
		c := b[len(b)-i]
		if c < utf8.RuneSelf {
			return b, nil
		}
		if utf8.RuneStart(c) {
			if utf8.FullRune(b[len(b)-i:]) {
				return b, nil
			}
			return b[:len(b)-i], b[len(b)-i:]
		}
	}

	return b, nil
}
