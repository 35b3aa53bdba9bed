package semantic

import (
	"io"
	"reflect"

	iolib "http-message/lib/io"
)

// Body is the content stream of a message.
// The message only stores and hands out the reference; it never reads,
// rewinds or closes it.
type Body interface {
	io.ReadCloser
}

func newBody(content string) Body { return iolib.NewBuffer(content) }

// sameBody reports whether a and b are the same stream reference.
func sameBody(a, b Body) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}
