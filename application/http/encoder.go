package http

import (
	"bufio"
	"bytes"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"http-message/application/http/semantic"
	"http-message/application/http/transfer"
	"http-message/application/util/rule"
	iolib "http-message/lib/io"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

type EncodeOptions struct {
	// UseSoleLF specifies wheter a single LF character should be used as a line terminator.
	//
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-2.2-3
	UseSoleLF bool

	// StampDate adds a Date field taken from Clock when the response has none.
	// An existing Date in an obsolete format is rewritten as IMF-fixdate.
	//
	// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-6.6.1-8
	StampDate bool

	// EnsureContentLength adds a Content-Length field when the body size is known
	// and the response has neither Content-Length nor Transfer-Encoding.
	// Responses to 1xx, 204 and 304 never get one.
	EnsureContentLength bool

	// Clock defaults to the wall clock.
	Clock clock.Clock
	// Logger defaults to a logger that discards everything.
	Logger *slog.Logger
}

var DefaultEncodeOptions = EncodeOptions{
	UseSoleLF:           false,
	StampDate:           true,
	EnsureContentLength: true,
}

// sizer is implemented by bodies that know their full size.
type sizer interface{ Len() int }

// ResponseEncoder writes responses in HTTP/1.x message syntax.
// It is not safe for concurrent use.
type ResponseEncoder struct {
	bw   *bufio.Writer
	opts EncodeOptions

	clock  clock.Clock
	logger *slog.Logger
}

func NewResponseEncoder(w io.Writer, opts EncodeOptions) *ResponseEncoder {
	re := &ResponseEncoder{
		bw:     bufio.NewWriter(w),
		opts:   opts,
		clock:  opts.Clock,
		logger: opts.Logger,
	}

	if re.clock == nil {
		re.clock = clock.New()
	}
	if re.logger == nil {
		re.logger = slog.New(slog.DiscardHandler)
	}

	return re
}

// Encode writes the status line, the header section and the body of response.
// A seekable body is rewound before being copied. The body is never closed,
// since responses derived from the same one share it.
func (re *ResponseEncoder) Encode(response *semantic.Response) error {
	ver, err := VersionFromText(response.ProtocolVersion())
	if err != nil {
		return errors.Wrap(err, "parsing protocol version")
	}

	body := response.Body()
	if seeker, ok := body.(io.Seeker); ok {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			return errors.Wrap(err, "rewinding body")
		}
	}

	response, err = re.completeHeaders(response, body)
	if err != nil {
		return errors.Wrap(err, "completing headers")
	}

	if err := re.encodeStatusLine(ver, response.StatusCode(), response.ReasonPhrase()); err != nil {
		return errors.Wrap(err, "encoding status line")
	}

	if err := re.encodeHeaders(rawFields(response.Headers())); err != nil {
		return errors.Wrap(err, "encoding headers")
	}

	// I think it's better to flush it before body.
	if err := re.bw.Flush(); err != nil {
		return errors.Wrap(err, "flushing response line & header")
	}

	n, err := re.encodeBody(response, body)
	if err != nil {
		return errors.Wrap(err, "writing response body")
	}

	if err := re.bw.Flush(); err != nil {
		return errors.Wrap(err, "flushing response body")
	}

	re.logger.Debug("encoded response",
		slog.Int("status", response.StatusCode()),
		slog.String("version", ver.String()),
		slog.Int64("body_bytes", n),
	)

	return nil
}

// completeHeaders derives a response carrying the fields the options ask for.
func (re *ResponseEncoder) completeHeaders(response *semantic.Response, body semantic.Body) (*semantic.Response, error) {
	var err error

	if re.opts.StampDate {
		if response, err = re.stampDate(response); err != nil {
			return nil, errors.Wrap(err, "stamping date")
		}
	}

	// A sender must not send Content-Length along with Transfer-Encoding.
	//
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-6.2-2
	if isChunked(response) {
		return response.WithoutHeader("Content-Length"), nil
	}

	if re.opts.EnsureContentLength && !isBodiless(response.StatusCode()) &&
		!response.HasHeader("Content-Length") && !response.HasHeader("Transfer-Encoding") {
		if s, ok := body.(sizer); ok {
			length := strconv.Itoa(s.Len())
			if response, err = response.WithHeader("Content-Length", length); err != nil {
				return nil, errors.Wrap(err, "setting content length")
			}
		}
	}

	return response, nil
}

// stampDate adds a Date field from the clock, or rewrites an existing one
// given in an obsolete format as IMF-fixdate.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-5.6.7-6
func (re *ResponseEncoder) stampDate(response *semantic.Response) (*semantic.Response, error) {
	if !response.HasHeader("Date") {
		date := semantic.FormatDate(re.clock.Now())
		re.logger.Debug("stamped date", slog.String("date", date))
		return response.WithHeader("Date", date)
	}

	raw := response.HeaderLine("Date")
	t, err := semantic.ParseDate(raw)
	if err != nil {
		return nil, errors.Wrap(err, "parsing Date")
	}

	date := semantic.FormatDate(t)
	if date == raw {
		return response, nil
	}

	re.logger.Debug("rewrote date", slog.String("from", raw), slog.String("date", date))
	return response.WithHeader("Date", date)
}

// isBodiless reports whether responses with code never carry content.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-6.3-2.1
func isBodiless(code int) bool {
	return code < 200 || code == 204 || code == 304
}

func isChunked(response *semantic.Response) bool {
	return transfer.IsChunked(transfer.ParseCodings(response.Header("Transfer-Encoding")))
}

// encodeBody frames the body by its final transfer coding, or limits it to
// Content-Length when it is declared. Nothing is written for 1xx, 204 and 304.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-6.3
func (re *ResponseEncoder) encodeBody(response *semantic.Response, body semantic.Body) (int64, error) {
	if isBodiless(response.StatusCode()) {
		return 0, nil
	}

	if isChunked(response) {
		cw := transfer.NewChunkedWriter(re.bw)
		n, err := io.Copy(cw, body)
		if err != nil {
			return n, errors.Wrap(err, "writing chunks")
		}
		if err := cw.Close(); err != nil {
			return n, errors.Wrap(err, "closing chunked body")
		}
		return n, nil
	}

	var src io.Reader = body
	if response.HasHeader("Content-Length") {
		length, err := strconv.ParseUint(response.HeaderLine("Content-Length"), 10, 64)
		if err != nil {
			return 0, errors.Wrap(err, "failed to parse Content-Length")
		}
		src = iolib.ExactReader(body, length)
	}

	return re.bw.ReadFrom(src)
}

// rawFields turns semantic fields into field lines.
// Values of a field are combined into one line, except for Set-Cookie.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-5.3-5
func rawFields(fields []semantic.Field) []Field {
	raw := make([]Field, 0, len(fields))
	for _, f := range fields {
		if strings.EqualFold(f.Name, "Set-Cookie") {
			for _, v := range f.Values {
				raw = append(raw, Field{Name: []byte(f.Name), Value: []byte(v)})
			}
			continue
		}

		values := make([][]byte, len(f.Values))
		for i, v := range f.Values {
			values[i] = []byte(v)
		}
		raw = append(raw, Field{Name: []byte(f.Name), Value: bytes.Join(values, []byte{',', rule.SP})})
	}
	return raw
}

func (re *ResponseEncoder) writeLine(line []byte) error {
	if _, err := re.bw.Write(line); err != nil {
		return errors.Wrap(err, "writing line")
	}

	term := rule.CRLF
	if re.opts.UseSoleLF {
		term = term[1:]
	}

	if _, err := re.bw.Write(term); err != nil {
		return errors.Wrap(err, "writing line terminator")
	}

	return nil
}

func (re *ResponseEncoder) encodeHeaders(headers []Field) error {
	for _, field := range headers {
		if err := re.writeLine(field.Text()); err != nil {
			return errors.Wrap(err, "writing field")
		}
	}

	// Write a empty line as all the headers are written.
	if err := re.writeLine(nil); err != nil {
		return errors.Wrap(err, "writing line terminator")
	}

	return nil
}

// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-4
func (re *ResponseEncoder) encodeStatusLine(ver Version, code int, reasonPhrase string) error {
	if !rule.IsValidFieldValue(reasonPhrase) {
		return errors.Errorf("reason phrase has invalid characters: %q", reasonPhrase)
	}

	buf := bytes.NewBuffer(nil)

	buf.Write(ver.Text())
	buf.WriteByte(rule.SP)
	buf.Write([]byte(strconv.Itoa(code)))
	buf.WriteByte(rule.SP)
	buf.Write([]byte(reasonPhrase))

	if err := re.writeLine(buf.Bytes()); err != nil {
		return errors.Wrap(err, "writing line")
	}

	return nil
}
