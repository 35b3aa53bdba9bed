package iolib

import "io"

// ExactReader creates new [ExactLimitedReader].
func ExactReader(r io.Reader, n uint64) io.Reader { return &ExactLimitedReader{R: r, N: n} }

// ExactLimitedReader is [io.LimitedReader] that insists on getting all N bytes:
// if R ends early, Read fails with [io.ErrUnexpectedEOF].
type ExactLimitedReader struct {
	R io.Reader // underlying reader
	N uint64    // bytes remaining
}

func (l *ExactLimitedReader) Read(p []byte) (n int, err error) {
	if l.N == 0 {
		return 0, io.EOF
	}
	if uint64(len(p)) > l.N {
		p = p[:l.N]
	}
	n, err = l.R.Read(p)
	l.N -= uint64(n)
	if err == io.EOF && l.N > 0 {
		err = io.ErrUnexpectedEOF
	}
	if err == io.EOF {
		// The last byte came along with EOF.
		err = nil
	}
	return
}
