// Package transfer implements the transfer codings applied to a message
// body when it is written to the wire.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-7
package transfer

import (
	"strings"

	"http-message/application/util/rule"
)

type Coding string

const (
	CodingChunked Coding = "chunked"
)

// ParseCodings splits Transfer-Encoding values into codings, in the order
// they were applied. Coding names are case-insensitive; parameters are dropped.
func ParseCodings(values []string) []Coding {
	codings := make([]Coding, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			name, _, _ := strings.Cut(part, ";")
			name = rule.TrimOWS(name)
			if name == "" {
				continue
			}
			codings = append(codings, Coding(strings.ToLower(name)))
		}
	}
	return codings
}

// IsChunked reports whether chunked is the final coding.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-6.1-10
func IsChunked(codings []Coding) bool {
	if len(codings) == 0 {
		return false
	}
	return codings[len(codings)-1] == CodingChunked
}
