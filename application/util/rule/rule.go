package rule

import "strings"

// IsOWS reports whether r is optional whitespace (SP or HTAB).
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-5.6.3
func IsOWS(r rune) bool {
	for _, ws := range OWS {
		if r == rune(ws) {
			return true
		}
	}
	return false
}

func IsAlpha(r rune) bool { return ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') }
func IsDigit(r rune) bool { return '0' <= r && r <= '9' }

// IsCTL reports whether r is a control character (0x00-0x1F, DEL).
func IsCTL(r rune) bool { return (0 <= r && r < rune(SP)) || r == rune(DEL) }

// TrimOWS strips leading and trailing SP and HTAB from s.
// Other whitespace characters are left alone.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-5-1
func TrimOWS(s string) string { return strings.TrimFunc(s, IsOWS) }
