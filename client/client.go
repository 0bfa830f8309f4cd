package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/adamwoolhether/adminapi/client/throttle"
)

const (
	// DefaultTimeout bounds non-streaming calls unless WithTimeout says otherwise.
	DefaultTimeout = 600 * time.Second
	// DefaultBaseURL is used when WithBaseURL is not given or is empty.
	DefaultBaseURL = "http://localhost:8080/web"
)

// Client wraps the std-lib *http.Client with the admin API conventions:
// base URL prefixing, default headers, bearer credentials and one
// normalized error shape for every failure.
type Client struct {
	c              *http.Client
	logger         *slog.Logger
	baseURL        *url.URL
	onUnauthorized UnauthorizedHandler
	tracer         trace.Tracer
	headers        http.Header
}

// Build creates a [Client] from the given options.
func Build(optFns ...Option) (*Client, error) {
	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	client := &Client{
		c:              &http.Client{Timeout: DefaultTimeout},
		logger:         slog.Default(),
		baseURL:        opts.baseURL,
		onUnauthorized: opts.onUnauthorized,
		tracer:         opts.tracer,
		headers:        opts.headers,
	}

	if opts.client != nil {
		cpy := *opts.client
		client.c = &cpy
	}

	if opts.logger != nil {
		client.logger = opts.logger
	}

	if opts.timeout != nil {
		client.c.Timeout = *opts.timeout
	}

	if opts.noFollowRedirects {
		client.c.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	if client.baseURL == nil {
		u, err := NormalizeBaseURL(DefaultBaseURL)
		if err != nil {
			return nil, err
		}
		client.baseURL = u
	}

	if client.tracer == nil {
		client.tracer = noop.NewTracerProvider().Tracer("adminapi/client")
	}

	var transport http.RoundTripper
	switch {
	case opts.rt != nil:
		transport = opts.rt
	case opts.client != nil && opts.client.Transport != nil:
		transport = opts.client.Transport
	default:
		transport = http.DefaultTransport
	}
	if opts.userAgent != "" {
		transport = userAgent{value: opts.userAgent, base: transport}
	}
	if opts.tokens != nil {
		transport = bearer{tokens: opts.tokens, base: transport}
	}
	transport = requestID{base: transport}
	if opts.throttle != nil {
		rt, err := throttle.NewRoundTripper(*opts.throttle, client.logger, transport)
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		transport = rt
	}
	client.c.Transport = transport

	return client, nil
}

// BaseURL returns a copy of the resolved base URL.
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// NormalizeBaseURL trims raw, strips a trailing slash and requires an
// absolute URL. An empty value yields [DefaultBaseURL].
func NormalizeBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	trimmed = strings.TrimRight(trimmed, "/")

	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parsing base url %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", raw)
	}

	return u, nil
}

// NewDescriptor builds a [Descriptor] for method and path.
func NewDescriptor(method, path string, opts ...RequestOption) (Descriptor, error) {
	d := Descriptor{Method: method, Path: path}
	for _, opt := range opts {
		if err := opt(&d); err != nil {
			return Descriptor{}, err
		}
	}

	return d, nil
}

// Get issues a GET and decodes the success payload into the destination, if any.
func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) error {
	return c.call(ctx, http.MethodGet, path, nil, opts)
}

// Post issues a POST with body encoded as JSON.
func (c *Client) Post(ctx context.Context, path string, body any, opts ...RequestOption) error {
	return c.call(ctx, http.MethodPost, path, body, opts)
}

// Put issues a PUT with body encoded as JSON.
func (c *Client) Put(ctx context.Context, path string, body any, opts ...RequestOption) error {
	return c.call(ctx, http.MethodPut, path, body, opts)
}

// Patch issues a PATCH with body encoded as JSON.
func (c *Client) Patch(ctx context.Context, path string, body any, opts ...RequestOption) error {
	return c.call(ctx, http.MethodPatch, path, body, opts)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string, opts ...RequestOption) error {
	return c.call(ctx, http.MethodDelete, path, nil, opts)
}

func (c *Client) call(ctx context.Context, method, path string, body any, opts []RequestOption) error {
	if body != nil {
		opts = append([]RequestOption{WithPayload(body)}, opts...)
	}

	d, err := NewDescriptor(method, path, opts...)
	if err != nil {
		return err
	}

	_, err = c.Send(ctx, d)
	return err
}

// Send executes d. JSON successes are decoded into the destination and
// return an envelope without Body; binary successes return the raw body
// and headers. Every failure is an [*Error] except payload validation,
// which returns [FieldErrors] before anything is sent.
func (c *Client) Send(ctx context.Context, d Descriptor) (*Response, error) {
	ctx, span := c.startSpan(ctx, "client.send", d)
	defer span.End()

	req, err := c.buildRequest(ctx, d, defaultAccept)
	if err != nil {
		endSpan(span, err)
		return nil, err
	}

	var out *Response
	err = c.exec(req, d, func(resp *http.Response) error {
		out = &Response{StatusCode: resp.StatusCode, Header: resp.Header.Clone()}

		if isBinary(d.Response, resp.Header) {
			b, err := io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("reading binary body: %w", err)
			}
			out.Body = b
			return nil
		}

		return decodeJSON(resp, d)
	})
	endSpan(span, err)
	if err != nil {
		return nil, err
	}

	return out, nil
}

func decodeJSON(resp *http.Response, d Descriptor) error {
	if d.dest == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	dec := json.NewDecoder(resp.Body)
	if d.useJSONNum {
		dec.UseNumber()
	}

	if err := dec.Decode(d.dest); err != nil && !errors.Is(err, io.EOF) {
		if errors.Is(err, context.Canceled) || isTimeout(err) || isNetError(err) {
			return fmt.Errorf("reading body: %w", err)
		}
		return &Error{Kind: KindDecode, Message: msgDecode, Status: resp.StatusCode, Err: fmt.Errorf("decoding body: %w", err)}
	}

	return nil
}

// exec runs the request and hands a successful response to fn. Any other
// outcome, including a failure inside fn, is normalized. The body is drained
// and closed afterwards.
func (c *Client) exec(req *http.Request, d Descriptor, fn execFn) error {
	start := time.Now()

	resp, err := c.c.Do(req)
	if err != nil {
		nerr := normalizeTransport(err)
		c.logger.Warn("request failed", "method", req.Method, "path", req.URL.Path, "kind", nerr.Kind.String(), "error", err)
		return nerr
	}

	discardBody := true
	defer func() {
		if discardBody {
			if _, err := io.Copy(io.Discard, resp.Body); err != nil {
				c.logger.Error("failed to discard unused body", "error", err)
			}
		}
		if err := resp.Body.Close(); err != nil {
			c.logger.Error("failed to close response body", "error", err)
		}
	}()

	c.logger.Debug("request completed", "method", req.Method, "path", req.URL.Path, "status", resp.StatusCode, "since", time.Since(start).String())

	if !isSuccess(resp.StatusCode) {
		return c.failure(req.Context(), resp, d)
	}

	if err := fn(resp); err != nil {
		discardBody = false
		nerr := normalizeBody(resp.StatusCode, err)
		c.logger.Warn("response handling failed", "method", req.Method, "path", req.URL.Path, "status", resp.StatusCode, "kind", nerr.Kind.String(), "error", err)
		return nerr
	}

	return nil
}

// failure reads the error body and normalizes it. A 401 runs the
// unauthorized hook unless the descriptor opted out.
func (c *Client) failure(ctx context.Context, resp *http.Response, d Descriptor) *Error {
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrBodySize))
	if err != nil {
		c.logger.Error("failed to read error body", "status", resp.StatusCode, "error", err)
	}

	nerr := Normalize(resp.StatusCode, b)
	if nerr.Kind == KindUnauthorized && !d.SkipAuthRedirect {
		if c.onUnauthorized != nil {
			c.onUnauthorized.HandleUnauthorized(ctx)
		}
		nerr = unauthorized(nerr)
	}

	c.logger.Warn("request rejected", "method", resp.Request.Method, "path", resp.Request.URL.Path, "status", nerr.Status, "message", nerr.Message, "trace_id", nerr.TraceID)

	return nerr
}

// buildRequest instantiates the *http.Request for d.
func (c *Client) buildRequest(ctx context.Context, d Descriptor, accept string) (*http.Request, error) {
	if d.Method == "" {
		return nil, errors.New("descriptor method must not be empty")
	}

	if _, raw := d.Body.(io.Reader); d.Body != nil && !raw {
		if err := Validate(d.Body); err != nil {
			return nil, fmt.Errorf("validating payload: %w", err)
		}
	}

	reqURL, err := c.resolve(d.Path, d.Query)
	if err != nil {
		return nil, err
	}

	contentType := defaultContentType
	if d.contentType != nil {
		contentType = *d.contentType
	}

	var body io.Reader
	switch {
	case len(d.parts) > 0:
		buf, ct, err := encodeMultipart(d.parts)
		if err != nil {
			return nil, err
		}
		body = buf
		contentType = ct
	case d.Body != nil:
		if r, ok := d.Body.(io.Reader); ok {
			body = r
			break
		}
		var payload bytes.Buffer
		if err := json.NewEncoder(&payload).Encode(d.Body); err != nil {
			return nil, fmt.Errorf("encoding request payload: %w", err)
		}
		body = &payload
	}

	req, err := http.NewRequestWithContext(ctx, d.Method, reqURL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("instantiating request: %w", err)
	}

	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", accept)
	for k, v := range c.headers {
		req.Header[k] = slices.Clone(v)
	}
	for k, v := range d.Header {
		req.Header.Del(k)
		for _, element := range v {
			req.Header.Add(k, element)
		}
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	return req, nil
}

// resolve prefixes relative paths with the base URL. Absolute URLs are
// used as given.
func (c *Client) resolve(path string, query url.Values) (*url.URL, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("parsing path %q: %w", path, err)
	}

	var u url.URL
	if ref.IsAbs() {
		u = *ref
	} else {
		u = *c.baseURL
		u.Path = strings.TrimRight(c.baseURL.Path, "/") + "/" + strings.TrimLeft(ref.Path, "/")
		u.RawPath = ""
		u.RawQuery = ref.RawQuery
	}

	if len(query) > 0 {
		q := u.Query()
		for k, v := range query {
			for _, element := range v {
				q.Add(k, element)
			}
		}
		u.RawQuery = q.Encode()
	}

	return &u, nil
}

func encodeMultipart(parts []part) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, p := range parts {
		if p.r == nil {
			if err := w.WriteField(p.field, p.value); err != nil {
				return nil, "", fmt.Errorf("writing form field %s: %w", p.field, err)
			}
			continue
		}

		fw, err := w.CreateFormFile(p.field, p.filename)
		if err != nil {
			return nil, "", fmt.Errorf("creating form file %s: %w", p.field, err)
		}
		if _, err := io.Copy(fw, p.r); err != nil {
			return nil, "", fmt.Errorf("copying form file %s: %w", p.field, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart writer: %w", err)
	}

	return &buf, w.FormDataContentType(), nil
}
