package client

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// TokenSource supplies the current bearer credential. An empty string
// means no credential is stored.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a plain func to [TokenSource].
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// UnauthorizedHandler reacts to a 401 response, typically by clearing
// the stored session and sending the user back to the login page.
type UnauthorizedHandler interface {
	HandleUnauthorized(ctx context.Context)
}

// UnauthorizedFunc adapts a plain func to [UnauthorizedHandler].
type UnauthorizedFunc func(ctx context.Context)

func (f UnauthorizedFunc) HandleUnauthorized(ctx context.Context) { f(ctx) }

// bearer is an http.RoundTripper attaching the current token. A request
// that already carries an Authorization header is left untouched.
type bearer struct {
	tokens TokenSource
	base   http.RoundTripper
}

func (b bearer) RoundTrip(r *http.Request) (*http.Response, error) {
	if r.Header.Get("Authorization") != "" {
		return b.base.RoundTrip(r)
	}

	token := b.tokens.Token()
	if token == "" {
		return b.base.RoundTrip(r)
	}

	cpy := r.Clone(r.Context())
	cpy.Header.Set("Authorization", "Bearer "+token)
	return b.base.RoundTrip(cpy)
}

// requestID is an http.RoundTripper stamping each request with a fresh id
// unless the caller supplied one.
type requestID struct {
	base http.RoundTripper
}

func (rid requestID) RoundTrip(r *http.Request) (*http.Response, error) {
	if r.Header.Get(headerRequestID) != "" {
		return rid.base.RoundTrip(r)
	}

	cpy := r.Clone(r.Context())
	cpy.Header.Set(headerRequestID, uuid.NewString())
	return rid.base.RoundTrip(cpy)
}
