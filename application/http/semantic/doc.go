// Package semantic implements the semantics of HTTP response messages.
//
// A [Response] is immutable: every With* method returns a new Response and
// leaves the receiver untouched, so a Response can be shared freely between
// goroutines.
//
// Header names are matched case-insensitively, but keep the casing they
// were registered with.
//
// Reference:
//
// - https://datatracker.ietf.org/doc/html/rfc9110#section-5
//
// - https://datatracker.ietf.org/doc/html/rfc9110#section-15
package semantic
