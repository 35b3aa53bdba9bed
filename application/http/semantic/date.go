package semantic

import (
	"time"

	"github.com/pkg/errors"
)

const (
	// Preferred format: IMF-fixdate. Always in GMT.
	imfFixDateFormat = "Mon, 02 Jan 2006 15:04:05 GMT"
	// Obsolete RFC 850 format
	rfc850DateFormat = time.RFC850
	// Obsolete asctime format
	asctimeDateFormat = time.ANSIC
)

// FormatDate formats t as IMF-fixdate, the format senders must generate.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-5.6.7-6
func FormatDate(t time.Time) string { return t.UTC().Format(imfFixDateFormat) }

// ParseDate accepts all three HTTP date formats. The result is in UTC.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-5.6.7
func ParseDate(raw string) (time.Time, error) {
	layouts := []string{imfFixDateFormat, rfc850DateFormat, asctimeDateFormat}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, errors.Errorf("invalid time format: %q", raw)
}
