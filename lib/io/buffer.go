package iolib

import (
	"io"
	"sync"

	"github.com/pkg/errors"
)

var (
	ErrClosed        = errors.New("buffer is closed")
	ErrNegativeSeek  = errors.New("negative position")
	ErrInvalidWhence = errors.New("invalid whence")
)

// Buffer is an in-memory, seekable stream.
// Unlike [bytes.Buffer], reading doesn't consume the content:
// the cursor moves, and the content can be read again after seeking back.
// It is safe for concurrent use.
type Buffer struct {
	mu     sync.Mutex
	data   []byte
	off    int64
	closed bool
}

var _ io.ReadWriteSeeker = (*Buffer)(nil)
var _ io.Closer = (*Buffer)(nil)

func NewBuffer(content string) *Buffer {
	return &Buffer{data: []byte(content)}
}

func (b *Buffer) Read(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, ErrClosed
	}
	if b.off >= int64(len(b.data)) {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}

	n = copy(p, b.data[b.off:])
	b.off += int64(n)
	return n, nil
}

// Write writes p at the cursor, overwriting existing content and growing the
// buffer as needed. A gap left by seeking past the end is zero-filled.
func (b *Buffer) Write(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, ErrClosed
	}

	end := b.off + int64(len(p))
	if end > int64(len(b.data)) {
		grown := make([]byte, end)
		copy(grown, b.data)
		b.data = grown
	}

	n = copy(b.data[b.off:], p)
	b.off += int64(n)
	return n, nil
}

func (b *Buffer) Seek(offset int64, whence int) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, ErrClosed
	}

	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = b.off + offset
	case io.SeekEnd:
		abs = int64(len(b.data)) + offset
	default:
		return 0, errors.Wrapf(ErrInvalidWhence, "whence %d", whence)
	}

	if abs < 0 {
		return 0, errors.Wrapf(ErrNegativeSeek, "seeking to %d", abs)
	}

	b.off = abs
	return abs, nil
}

// Close releases the content. Every subsequent operation fails with [ErrClosed].
func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	b.data = nil
	b.off = 0
	return nil
}

// Len returns the size of the whole content regardless of the cursor.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

// String returns the whole content without moving the cursor.
func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.data)
}
