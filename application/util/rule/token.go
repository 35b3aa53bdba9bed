package rule

// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-5.6.2-2
func IsValidToken(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, c := range s {
		if IsAlpha(c) || IsDigit(c) {
			continue
		}

		switch c {
		case '!', '#', '$', '%', '&', '\'', '*', '+',
			'-', '.', '^', '_', '`', '|', '~':
			continue
		}

		return false
	}

	return true
}

// IsValidFieldValue reports whether s can be written as a field value.
// CR, LF, NUL and the other control characters are rejected; HTAB is allowed.
// obs-text (0x80-0xFF) is accepted as opaque data.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-5.5
func IsValidFieldValue(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == HTAB {
			continue
		}
		if IsCTL(rune(c)) {
			return false
		}
	}
	return true
}
