// Package phone validates and normalizes phone number input.
package phone

import (
	"regexp"
	"strings"
)

// e164Re is the sole validation rule for phone numbers: a leading plus
// followed by 6 to 15 digits.
var e164Re = regexp.MustCompile(`^\+\d{6,15}$`)

// ValidNumber reports whether s is an acceptable E.164 number.
func ValidNumber(s string) bool {
	return e164Re.MatchString(s)
}

// SplitRecipients parses a free-form destination field as pasted into the
// dialer console: entries separated by commas or newlines, surrounding
// whitespace trimmed, empty entries dropped. No validation is applied here.
func SplitRecipients(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})

	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		out = append(out, f)
	}
	return out
}
