package transfer

import (
	"bytes"
	"io"
	"strconv"

	"http-message/application/util/rule"

	"github.com/pkg/errors"
)

// ChunkedWriter frames everything written to it as chunks.
// Close writes the last chunk and the empty trailer section;
// it doesn't close the underlying writer.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-7.1
type ChunkedWriter struct {
	w         io.Writer
	headerBuf *bytes.Buffer
	closed    bool
}

var _ io.WriteCloser = (*ChunkedWriter)(nil)

func NewChunkedWriter(w io.Writer) *ChunkedWriter {
	return &ChunkedWriter{
		w:         w,
		headerBuf: bytes.NewBuffer(nil),
	}
}

func (cw *ChunkedWriter) Write(p []byte) (n int, err error) {
	if cw.closed {
		return 0, errors.New("write on closed chunked writer")
	}

	if len(p) == 0 {
		// We should ignore 0 length chunks since it means EOF.
		return 0, nil
	}

	n, err = cw.encodeChunk(p)
	if err != nil {
		return n, errors.Wrap(err, "encoding chunk")
	}

	return n, nil
}

func (cw *ChunkedWriter) Close() error {
	if cw.closed {
		return nil
	}
	cw.closed = true

	if _, err := cw.encodeChunk(nil); err != nil {
		return errors.Wrap(err, "encoding last chunk")
	}

	// No trailers.
	if err := writeLine(cw.w, nil); err != nil {
		return errors.Wrap(err, "writing last trailer line")
	}

	return nil
}

func (cw *ChunkedWriter) encodeChunk(data []byte) (n int, err error) {
	buf := cw.headerBuf
	buf.Reset()
	buf.Write([]byte(strconv.FormatUint(uint64(len(data)), 16)))

	if err := writeLine(cw.w, buf.Bytes()); err != nil {
		return 0, errors.Wrap(err, "writing chunk header")
	}

	if len(data) == 0 {
		// Last chunk. only write header.
		return 0, nil
	}

	// chunk data + CRLF
	r := io.MultiReader(bytes.NewReader(data), bytes.NewReader(rule.CRLF))

	n64, err := io.Copy(cw.w, r)
	if err != nil {
		return max(0, int(n64)), errors.Wrap(err, "writing data")
	}

	return int(n64) - len(rule.CRLF), nil
}

func writeLine(w io.Writer, line []byte) error {
	r := bytes.NewReader(append(line, rule.CRLF...))

	_, err := io.Copy(w, r)
	if err != nil {
		return errors.Wrap(err, "writing line")
	}

	return nil
}
