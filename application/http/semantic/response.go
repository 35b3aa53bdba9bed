package semantic

import (
	"strconv"
	"strings"
	"sync"

	"http-message/application/http/semantic/status"

	"github.com/pkg/errors"
)

const DefaultProtocolVersion = "1.1"

// Response is an immutable HTTP response message.
// Use [NewResponse] to create one; the zero value is not usable.
type Response struct {
	statusCode   int
	reasonPhrase string
	version      string
	headers      Headers

	bodyMu sync.Mutex
	body   Body // nil until the first call to Body, unless given.
}

type ResponseOptions struct {
	// StatusCode defaults to 200 if zero.
	StatusCode int
	// ReasonPhrase is resolved from the status code if nil.
	ReasonPhrase *string
	// Version defaults to [DefaultProtocolVersion] if empty.
	Version string

	// Headers are registered in order.
	// Fields with the same name (case-insensitive) are merged.
	Headers []Field

	// Body and Content are mutually exclusive.
	// If neither is set, an empty body is created on first access.
	Body    Body
	Content string
}

func NewResponse(opts ResponseOptions) (*Response, error) {
	code := opts.StatusCode
	if code == 0 {
		code = int(status.OK.Code)
	}
	if !status.IsValidCode(code) {
		return nil, errors.Wrapf(ErrInvalidArgument, "status code has to be between %d and %d, got %d",
			status.MinCode, status.MaxCode, code)
	}

	headers, err := NewHeaders(opts.Headers...)
	if err != nil {
		return nil, errors.Wrap(err, "registering headers")
	}

	r := &Response{
		statusCode: code,
		version:    opts.Version,
		headers:    headers,
		body:       opts.Body,
	}

	if r.version == "" {
		r.version = DefaultProtocolVersion
	}

	if opts.ReasonPhrase != nil {
		r.reasonPhrase = *opts.ReasonPhrase
	} else {
		r.reasonPhrase = status.Text(uint(code))
	}

	if opts.Content != "" {
		if opts.Body != nil {
			return nil, errors.Wrap(ErrInvalidArgument, "both body and content are given")
		}
		r.body = newBody(opts.Content)
	}

	return r, nil
}

func (r *Response) StatusCode() int         { return r.statusCode }
func (r *Response) ReasonPhrase() string    { return r.reasonPhrase }
func (r *Response) ProtocolVersion() string { return r.version }

func (r *Response) Status() status.Status {
	return status.Status{Code: uint(r.statusCode), ReasonPhrase: r.reasonPhrase}
}

// Headers returns a copy of all header fields in registration order.
func (r *Response) Headers() []Field { return r.headers.Fields() }

// HeaderMap returns a copy of all header fields keyed by canonical name.
func (r *Response) HeaderMap() map[string][]string { return r.headers.Map() }

// HasHeader reports whether name is present, ignoring case.
func (r *Response) HasHeader(name string) bool { return r.headers.Has(name) }

// Header returns the values of name, ignoring case.
// It returns an empty slice if name is absent.
func (r *Response) Header(name string) []string {
	values, _ := r.headers.Values(name)
	return values
}

// HeaderLine returns the values of name joined with ", ".
func (r *Response) HeaderLine(name string) string { return r.headers.Line(name) }

// WithHeader returns a copy of r with every value of name replaced by values.
func (r *Response) WithHeader(name string, values ...string) (*Response, error) {
	clone := r.clone()
	if err := clone.headers.Set(name, values...); err != nil {
		return nil, errors.Wrap(err, "setting header")
	}
	return clone, nil
}

// WithAddedHeader returns a copy of r with values appended to name.
func (r *Response) WithAddedHeader(name string, values ...string) (*Response, error) {
	clone := r.clone()
	if err := clone.headers.Add(name, values...); err != nil {
		return nil, errors.Wrap(err, "adding header")
	}
	return clone, nil
}

// WithoutHeader returns a copy of r without name.
// If name is absent, r itself is returned.
func (r *Response) WithoutHeader(name string) *Response {
	if !r.headers.Has(name) {
		return r
	}

	clone := r.clone()
	clone.headers.Del(name)
	return clone
}

// WithStatus returns a copy of r with the given status.
// If reasonPhrase is empty, the standard phrase of code is used when there is one.
func (r *Response) WithStatus(code int, reasonPhrase string) (*Response, error) {
	if !status.IsValidCode(code) {
		return nil, errors.Wrapf(ErrInvalidArgument, "status code has to be between %d and %d, got %d",
			status.MinCode, status.MaxCode, code)
	}

	if reasonPhrase == "" {
		reasonPhrase = status.Text(uint(code))
	}

	clone := r.clone()
	clone.statusCode = code
	clone.reasonPhrase = reasonPhrase
	return clone, nil
}

// WithStatusText is [Response.WithStatus] with the code given as decimal text.
// Surrounding whitespace is ignored.
func (r *Response) WithStatusText(code string, reasonPhrase string) (*Response, error) {
	c, err := strconv.Atoi(strings.TrimSpace(code))
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidArgument, "status code %q is not an integer", code)
	}
	return r.WithStatus(c, reasonPhrase)
}

// WithProtocolVersion returns a copy of r with the given version.
// If version is unchanged, r itself is returned.
func (r *Response) WithProtocolVersion(version string) *Response {
	if r.version == version {
		return r
	}

	clone := r.clone()
	clone.version = version
	return clone
}

// Body returns the content stream.
// If the response was created without one, an empty stream is created on
// the first call and returned from then on.
func (r *Response) Body() Body {
	r.bodyMu.Lock()
	defer r.bodyMu.Unlock()

	if r.body == nil {
		r.body = newBody("")
	}
	return r.body
}

// WithBody returns a copy of r with body as its content stream.
// If body is the stream r already holds, r itself is returned.
// A nil body gives a copy whose empty stream is created on first access.
func (r *Response) WithBody(body Body) *Response {
	if sameBody(r.currentBody(), body) {
		return r
	}

	clone := r.clone()
	clone.body = body
	return clone
}

func (r *Response) currentBody() Body {
	r.bodyMu.Lock()
	defer r.bodyMu.Unlock()
	return r.body
}

// clone copies r. The headers are deep-copied; the body is shared.
func (r *Response) clone() *Response {
	return &Response{
		statusCode:   r.statusCode,
		reasonPhrase: r.reasonPhrase,
		version:      r.version,
		headers:      r.headers.Clone(),
		body:         r.currentBody(),
	}
}
