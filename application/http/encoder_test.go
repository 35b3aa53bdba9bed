package http

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"http-message/application/http/semantic"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
)

type ResponseEncoderTestSuite struct {
	suite.Suite

	clock *clock.Mock
	buf   bytes.Buffer
}

func TestResponseEncoderTestSuite(t *testing.T) {
	suite.Run(t, new(ResponseEncoderTestSuite))
}

func (s *ResponseEncoderTestSuite) SetupTest() {
	s.clock = clock.NewMock() // Starts at the unix epoch.
	s.buf.Reset()
}

func (s *ResponseEncoderTestSuite) TearDownTest() {
	goleak.VerifyNone(s.T())
}

func (s *ResponseEncoderTestSuite) newResponse(opts semantic.ResponseOptions) *semantic.Response {
	r, err := semantic.NewResponse(opts)
	s.Require().NoError(err)
	return r
}

func (s *ResponseEncoderTestSuite) TestEncode() {
	testcases := []struct {
		desc     string
		opts     EncodeOptions
		response semantic.ResponseOptions
		expected string
	}{
		{
			desc: "default options",
			opts: DefaultEncodeOptions,
			response: semantic.ResponseOptions{
				StatusCode: 404,
				Headers: []semantic.Field{
					{Name: "Content-Type", Values: []string{"text/plain"}},
					{Name: "X", Values: []string{"a", "b"}},
					{Name: "Set-Cookie", Values: []string{"a=1", "b=2"}},
				},
				Content: "not here",
			},
			expected: "" +
				"HTTP/1.1 404 Not Found\r\n" +
				"Content-Type: text/plain\r\n" +
				"X: a, b\r\n" +
				"Set-Cookie: a=1\r\n" +
				"Set-Cookie: b=2\r\n" +
				"Date: Thu, 01 Jan 1970 00:00:00 GMT\r\n" +
				"Content-Length: 8\r\n" +
				"\r\n" +
				"not here",
		},
		{
			desc:     "nothing added",
			opts:     EncodeOptions{},
			response: semantic.ResponseOptions{},
			expected: "" +
				"HTTP/1.1 200 OK\r\n" +
				"\r\n",
		},
		{
			desc: "sole LF",
			opts: EncodeOptions{UseSoleLF: true},
			response: semantic.ResponseOptions{
				StatusCode: 201,
				Version:    "1.0",
				Headers:    []semantic.Field{{Name: "Location", Values: []string{"/a"}}},
			},
			expected: "" +
				"HTTP/1.0 201 Created\n" +
				"Location: /a\n" +
				"\n",
		},
		{
			desc: "existing date and length are kept",
			opts: DefaultEncodeOptions,
			response: semantic.ResponseOptions{
				Headers: []semantic.Field{
					{Name: "date", Values: []string{"Sun, 06 Nov 1994 08:49:37 GMT"}},
					{Name: "content-length", Values: []string{"2"}},
				},
				Content: "ok",
			},
			expected: "" +
				"HTTP/1.1 200 OK\r\n" +
				"date: Sun, 06 Nov 1994 08:49:37 GMT\r\n" +
				"content-length: 2\r\n" +
				"\r\n" +
				"ok",
		},
		{
			desc: "no length with transfer encoding",
			opts: EncodeOptions{EnsureContentLength: true},
			response: semantic.ResponseOptions{
				Headers: []semantic.Field{{Name: "Transfer-Encoding", Values: []string{"identity"}}},
				Content: "ok",
			},
			expected: "" +
				"HTTP/1.1 200 OK\r\n" +
				"Transfer-Encoding: identity\r\n" +
				"\r\n" +
				"ok",
		},
		{
			desc: "no length for unsized body",
			opts: EncodeOptions{EnsureContentLength: true},
			response: semantic.ResponseOptions{
				Body: io.NopCloser(strings.NewReader("stream")),
			},
			expected: "" +
				"HTTP/1.1 200 OK\r\n" +
				"\r\n" +
				"stream",
		},
		{
			desc: "chunked",
			opts: DefaultEncodeOptions,
			response: semantic.ResponseOptions{
				Headers: []semantic.Field{
					{Name: "Date", Values: []string{"Sun, 06 Nov 1994 08:49:37 GMT"}},
					{Name: "Transfer-Encoding", Values: []string{"gzip", "chunked"}},
				},
				Content: "Hello",
			},
			expected: "" +
				"HTTP/1.1 200 OK\r\n" +
				"Date: Sun, 06 Nov 1994 08:49:37 GMT\r\n" +
				"Transfer-Encoding: gzip, chunked\r\n" +
				"\r\n" +
				"5\r\n" +
				"Hello\r\n" +
				"0\r\n" +
				"\r\n",
		},
		{
			desc: "body is cut at content length",
			opts: EncodeOptions{},
			response: semantic.ResponseOptions{
				Headers: []semantic.Field{{Name: "Content-Length", Values: []string{"3"}}},
				Content: "Hello",
			},
			expected: "" +
				"HTTP/1.1 200 OK\r\n" +
				"Content-Length: 3\r\n" +
				"\r\n" +
				"Hel",
		},
		{
			desc:     "empty deferred body has zero length",
			opts:     EncodeOptions{EnsureContentLength: true},
			response: semantic.ResponseOptions{},
			expected: "" +
				"HTTP/1.1 200 OK\r\n" +
				"Content-Length: 0\r\n" +
				"\r\n",
		},
		{
			desc: "no length or content for 101",
			opts: DefaultEncodeOptions,
			response: semantic.ResponseOptions{
				StatusCode: 101,
				Headers:    []semantic.Field{{Name: "Upgrade", Values: []string{"websocket"}}},
			},
			expected: "" +
				"HTTP/1.1 101 Switching Protocols\r\n" +
				"Upgrade: websocket\r\n" +
				"Date: Thu, 01 Jan 1970 00:00:00 GMT\r\n" +
				"\r\n",
		},
		{
			desc: "no length or content for 204",
			opts: DefaultEncodeOptions,
			response: semantic.ResponseOptions{
				StatusCode: 204,
				Content:    "ignored",
			},
			expected: "" +
				"HTTP/1.1 204 No Content\r\n" +
				"Date: Thu, 01 Jan 1970 00:00:00 GMT\r\n" +
				"\r\n",
		},
		{
			desc: "no content for 304 keeps given length",
			opts: DefaultEncodeOptions,
			response: semantic.ResponseOptions{
				StatusCode: 304,
				Headers:    []semantic.Field{{Name: "Content-Length", Values: []string{"42"}}},
			},
			expected: "" +
				"HTTP/1.1 304 Not Modified\r\n" +
				"Content-Length: 42\r\n" +
				"Date: Thu, 01 Jan 1970 00:00:00 GMT\r\n" +
				"\r\n",
		},
		{
			desc: "no length added for 304",
			opts: DefaultEncodeOptions,
			response: semantic.ResponseOptions{
				StatusCode: 304,
			},
			expected: "" +
				"HTTP/1.1 304 Not Modified\r\n" +
				"Date: Thu, 01 Jan 1970 00:00:00 GMT\r\n" +
				"\r\n",
		},
		{
			desc: "content length is dropped when chunked",
			opts: DefaultEncodeOptions,
			response: semantic.ResponseOptions{
				Headers: []semantic.Field{
					{Name: "Content-Length", Values: []string{"5"}},
					{Name: "Transfer-Encoding", Values: []string{"chunked"}},
				},
				Content: "Hello",
			},
			expected: "" +
				"HTTP/1.1 200 OK\r\n" +
				"Transfer-Encoding: chunked\r\n" +
				"Date: Thu, 01 Jan 1970 00:00:00 GMT\r\n" +
				"\r\n" +
				"5\r\n" +
				"Hello\r\n" +
				"0\r\n" +
				"\r\n",
		},
		{
			desc: "obsolete date is rewritten",
			opts: EncodeOptions{StampDate: true},
			response: semantic.ResponseOptions{
				Headers: []semantic.Field{{Name: "Date", Values: []string{"Sunday, 06-Nov-94 08:49:37 GMT"}}},
			},
			expected: "" +
				"HTTP/1.1 200 OK\r\n" +
				"Date: Sun, 06 Nov 1994 08:49:37 GMT\r\n" +
				"\r\n",
		},
	}

	for _, tc := range testcases {
		s.Run(tc.desc, func() {
			s.buf.Reset()
			tc.opts.Clock = s.clock

			re := NewResponseEncoder(&s.buf, tc.opts)
			s.Require().NoError(re.Encode(s.newResponse(tc.response)))
			s.Equal(tc.expected, s.buf.String())
		})
	}
}

func (s *ResponseEncoderTestSuite) TestEncodeDoesNotChangeResponse() {
	r := s.newResponse(semantic.ResponseOptions{Content: "body"})

	re := NewResponseEncoder(&s.buf, EncodeOptions{
		StampDate:           true,
		EnsureContentLength: true,
		Clock:               s.clock,
	})
	s.Require().NoError(re.Encode(r))

	s.False(r.HasHeader("Date"))
	s.False(r.HasHeader("Content-Length"))
}

func (s *ResponseEncoderTestSuite) TestEncodeRewindsBody() {
	r := s.newResponse(semantic.ResponseOptions{Content: "body"})
	re := NewResponseEncoder(&s.buf, EncodeOptions{StampDate: true, Clock: s.clock})

	s.Require().NoError(re.Encode(r))
	first := s.buf.String()
	s.buf.Reset()

	s.clock.Add(time.Hour)
	s.Require().NoError(re.Encode(r))
	second := s.buf.String()

	s.Equal(strings.Replace(first, "00:00:00", "01:00:00", 1), second)
	s.True(strings.HasSuffix(second, "\r\n\r\nbody"))
}

func (s *ResponseEncoderTestSuite) TestEncodeBodyErrors() {
	testcases := []struct {
		desc          string
		contentLength string
	}{
		{desc: "body shorter than content length", contentLength: "10"},
		{desc: "content length not a number", contentLength: "ten"},
		{desc: "content length listed twice", contentLength: "5, 5"},
	}

	for _, tc := range testcases {
		s.Run(tc.desc, func() {
			r := s.newResponse(semantic.ResponseOptions{
				Headers: []semantic.Field{{Name: "Content-Length", Values: []string{tc.contentLength}}},
				Content: "Hello",
			})

			re := NewResponseEncoder(io.Discard, EncodeOptions{Clock: s.clock})
			s.Error(re.Encode(r))
		})
	}
}

func (s *ResponseEncoderTestSuite) TestEncodeInvalid() {
	testcases := []struct {
		desc     string
		response func() *semantic.Response
	}{
		{
			desc: "version without minor",
			response: func() *semantic.Response {
				return s.newResponse(semantic.ResponseOptions{Version: "2"})
			},
		},
		{
			desc: "reason phrase with CRLF",
			response: func() *semantic.Response {
				r, err := s.newResponse(semantic.ResponseOptions{}).WithStatus(200, "OK\r\nX: injected")
				s.Require().NoError(err)
				return r
			},
		},
	}

	for _, tc := range testcases {
		s.Run(tc.desc, func() {
			s.buf.Reset()
			re := NewResponseEncoder(&s.buf, EncodeOptions{Clock: s.clock})
			s.Error(re.Encode(tc.response()))
			s.Empty(s.buf.String())
		})
	}
}

func (s *ResponseEncoderTestSuite) TestEncodeInvalidDate() {
	r := s.newResponse(semantic.ResponseOptions{
		Headers: []semantic.Field{{Name: "Date", Values: []string{"yesterday"}}},
	})

	re := NewResponseEncoder(&s.buf, DefaultEncodeOptions)
	s.Error(re.Encode(r))
	s.Empty(s.buf.String())
}

type failingWriter struct{}

var errWrite = errors.New("write failed")

func (failingWriter) Write([]byte) (int, error) { return 0, errWrite }

func (s *ResponseEncoderTestSuite) TestEncodeWriteError() {
	re := NewResponseEncoder(failingWriter{}, DefaultEncodeOptions)
	err := re.Encode(s.newResponse(semantic.ResponseOptions{}))
	s.Require().Error(err)
	s.True(errors.Is(err, errWrite))
}

func (s *ResponseEncoderTestSuite) TestEncodeLogs() {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	re := NewResponseEncoder(&s.buf, EncodeOptions{StampDate: true, Clock: s.clock, Logger: logger})
	s.Require().NoError(re.Encode(s.newResponse(semantic.ResponseOptions{Content: "abc"})))

	s.Contains(logs.String(), "stamped date")
	s.Contains(logs.String(), "encoded response")
	s.Contains(logs.String(), "status=200")
	s.Contains(logs.String(), "body_bytes=3")
}

func TestRawFields(t *testing.T) {
	suite.Run(t, new(rawFieldsTestSuite))
}

type rawFieldsTestSuite struct{ suite.Suite }

func (s *rawFieldsTestSuite) TestCombine() {
	fields := rawFields([]semantic.Field{
		{Name: "Accept", Values: []string{"a", "b"}},
		{Name: "set-cookie", Values: []string{"x=1", "y=2"}},
		{Name: "Empty", Values: []string{}},
	})

	s.Equal([]Field{
		{Name: []byte("Accept"), Value: []byte("a, b")},
		{Name: []byte("set-cookie"), Value: []byte("x=1")},
		{Name: []byte("set-cookie"), Value: []byte("y=2")},
		{Name: []byte("Empty"), Value: []byte{}},
	}, fields)
}
