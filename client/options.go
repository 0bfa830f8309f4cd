package client

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/adminapi/client/throttle"
)

// Option is a functional option for configuring a [Client] via [Build].
type Option func(*options) error
type options struct {
	client            *http.Client
	rt                http.RoundTripper
	baseURL           *url.URL
	timeout           *time.Duration
	userAgent         string
	throttle          *throttle.Config
	noFollowRedirects bool
	logger            *slog.Logger
	tokens            TokenSource
	onUnauthorized    UnauthorizedHandler
	tracer            trace.Tracer
	headers           http.Header
}

// WithClient replaces the default [http.Client] used by the [Client].
func WithClient(hc *http.Client) Option {
	return func(c *options) error {
		if hc == nil {
			return errors.New("client must not be nil")
		}
		c.client = hc
		return nil
	}
}

// WithTransport sets a custom [http.RoundTripper] as the base transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *options) error {
		if rt == nil {
			return errors.New("transport must not be nil")
		}
		c.rt = rt
		return nil
	}
}

// WithBaseURL prefixes every relative descriptor path. Surrounding
// whitespace and a trailing slash are stripped; an empty path becomes
// the default "/web" prefix.
func WithBaseURL(raw string) Option {
	return func(c *options) error {
		u, err := NormalizeBaseURL(raw)
		if err != nil {
			return err
		}
		c.baseURL = u
		return nil
	}
}

// WithTimeout sets the overall request timeout on the underlying [http.Client].
// Streaming calls are bounded by their context instead.
func WithTimeout(d time.Duration) Option {
	return func(c *options) error {
		if d < 0 {
			return errors.New("timeout must not be negative")
		}
		c.timeout = &d
		return nil
	}
}

// WithUserAgent adds a persistent User-Agent header to all outgoing requests.
func WithUserAgent(header string) Option {
	return func(c *options) error {
		c.userAgent = header
		return nil
	}
}

// WithThrottle enables token-bucket rate limiting with the given requests per second and burst capacity.
func WithThrottle(rps, burst int) Option {
	return func(c *options) error {
		if rps <= 0 || burst <= 0 {
			return fmt.Errorf("rps[%d] and burst[%d] %w", rps, burst, throttle.ErrMustNotBeZero)
		}
		c.throttle = &throttle.Config{RPS: rps, Burst: burst}
		return nil
	}
}

// WithNoFollowRedirects prevents the [Client] from following HTTP redirects.
func WithNoFollowRedirects() Option {
	return func(c *options) error {
		c.noFollowRedirects = true
		return nil
	}
}

// WithLogger injects a custom [slog.Logger] into the [Client].
func WithLogger(logger *slog.Logger) Option {
	return func(c *options) error {
		c.logger = logger
		return nil
	}
}

// WithTokenSource attaches a bearer credential, read fresh on every request.
func WithTokenSource(ts TokenSource) Option {
	return func(c *options) error {
		if ts == nil {
			return errors.New("token source must not be nil")
		}
		c.tokens = ts
		return nil
	}
}

// WithUnauthorizedHandler registers the hook run on a 401 response
// unless the call opted out with [WithSkipAuthRedirect].
func WithUnauthorizedHandler(h UnauthorizedHandler) Option {
	return func(c *options) error {
		if h == nil {
			return errors.New("unauthorized handler must not be nil")
		}
		c.onUnauthorized = h
		return nil
	}
}

// WithTracer records a span per call with the given tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *options) error {
		c.tracer = tracer
		return nil
	}
}

// WithDefaultHeaders adds headers to every request. Descriptor headers
// with the same key take precedence.
func WithDefaultHeaders(headers map[string][]string) Option {
	return func(c *options) error {
		if c.headers == nil {
			c.headers = make(http.Header, len(headers))
		}
		for k, v := range headers {
			for _, element := range v {
				c.headers.Add(k, element)
			}
		}
		return nil
	}
}

// userAgent is an http.RoundTripper, enabling the persistent User-Agent header.
type userAgent struct {
	value string
	base  http.RoundTripper
}

func (ua userAgent) RoundTrip(r *http.Request) (*http.Response, error) {
	cpy := r.Clone(r.Context())
	cpy.Header.Set("User-Agent", ua.value)
	return ua.base.RoundTrip(cpy)
}

// RequestOption is a functional option for [NewDescriptor] and the verb helpers.
type RequestOption func(d *Descriptor) error

// WithPayload sets the JSON-encoded request body. Struct payloads carrying
// `validate` tags are checked before anything is sent.
func WithPayload(body any) RequestOption {
	return func(d *Descriptor) error {
		d.Body = body

		return nil
	}
}

// WithContentType overrides the default JSON Content-Type header.
func WithContentType(contentType string) RequestOption {
	return func(d *Descriptor) error {
		if contentType == "" {
			return errors.New("cannot use empty content type")
		}

		d.contentType = &contentType

		return nil
	}
}

// WithHeaders adds custom headers to the outgoing request.
func WithHeaders(headers map[string][]string) RequestOption {
	return func(d *Descriptor) error {
		if d.Header == nil {
			d.Header = make(http.Header, len(headers))
		}
		for k, v := range headers {
			for _, element := range v {
				d.Header.Add(k, element)
			}
		}

		return nil
	}
}

// WithQuery appends query parameters to the request URL.
func WithQuery(values url.Values) RequestOption {
	return func(d *Descriptor) error {
		if d.Query == nil {
			d.Query = url.Values{}
		}
		for k, v := range values {
			for _, element := range v {
				d.Query.Add(k, element)
			}
		}

		return nil
	}
}

// WithQueryStrings appends single-valued query parameters to the request URL.
func WithQueryStrings(queryKV map[string]string) RequestOption {
	return func(d *Descriptor) error {
		if d.Query == nil {
			d.Query = url.Values{}
		}
		for k, v := range queryKV {
			d.Query.Add(k, v)
		}

		return nil
	}
}

// WithBinaryResponse marks the response as a file download. [Client.Send]
// then returns the raw body and headers instead of decoding JSON.
func WithBinaryResponse() RequestOption {
	return func(d *Descriptor) error {
		d.Response = ResponseBinary

		return nil
	}
}

// WithSkipAuthRedirect suppresses the unauthorized hook for this call.
// A 401 is still returned as an [Error] of KindUnauthorized.
func WithSkipAuthRedirect() RequestOption {
	return func(d *Descriptor) error {
		d.SkipAuthRedirect = true

		return nil
	}
}

// WithDestination decodes the HTTP response body into bodyTemplate.
// bodyTemplate must be a pointer.
func WithDestination[T any](bodyTemplate *T) RequestOption {
	return func(d *Descriptor) error {
		if bodyTemplate == nil {
			return errors.New("destination must not be nil")
		}
		d.dest = bodyTemplate

		return nil
	}
}

// WithJSONNumb tells the JSON decoder to use [json.Decoder.UseNumber],
// preserving number precision as [json.Number] instead of float64.
func WithJSONNumb() RequestOption {
	return func(d *Descriptor) error {
		d.useJSONNum = true

		return nil
	}
}

// WithMultipartFile adds a file part, switching the body to multipart/form-data.
func WithMultipartFile(field, filename string, r io.Reader) RequestOption {
	return func(d *Descriptor) error {
		if field == "" || r == nil {
			return errors.New("multipart file needs a field name and a reader")
		}
		d.parts = append(d.parts, part{field: field, filename: filename, r: r})

		return nil
	}
}

// WithFormField adds a plain value part to a multipart/form-data body.
func WithFormField(field, value string) RequestOption {
	return func(d *Descriptor) error {
		if field == "" {
			return errors.New("form field name must not be empty")
		}
		d.parts = append(d.parts, part{field: field, value: value})

		return nil
	}
}
