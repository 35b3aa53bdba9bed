// Package http writes HTTP/1.x response messages onto the wire.
//
// The message itself is modeled by package semantic; this package only
// knows the syntax.
//
// Reference:
//
// - https://datatracker.ietf.org/doc/html/rfc9110
//
// - https://datatracker.ietf.org/doc/html/rfc9112
package http
