// Package validate holds the form-field checks used by the manager
// handlers. All checks are pure functions over strings.
package validate

import (
	"regexp"
	"strings"
)

var (
	variableRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	labelRe    = regexp.MustCompile(`^[^<>]+$`)
	integerRe  = regexp.MustCompile(`^[0-9]+$`)
	alphanumRe = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	emailRe    = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)
)

// Clean strips surrounding whitespace from form input.
func Clean(s string) string {
	return strings.TrimSpace(s)
}

// Required reports whether the input is non-empty after cleaning.
func Required(s string) bool {
	return Clean(s) != ""
}

// Variable reports whether the input is a valid variable-style token:
// letters, numbers, and underscores only.
func Variable(s string) bool {
	return variableRe.MatchString(s)
}

// Label reports whether the input is acceptable as free-form label text.
// Angle brackets are rejected to keep markup out of stored names.
func Label(s string) bool {
	return labelRe.MatchString(s)
}

// Integer reports whether the input is a non-negative decimal integer.
func Integer(s string) bool {
	return integerRe.MatchString(s)
}

// Alphanum reports whether the input is strictly alphanumeric.
func Alphanum(s string) bool {
	return alphanumRe.MatchString(s)
}

// Email reports whether the input is a well-formed email address.
func Email(s string) bool {
	return emailRe.MatchString(s)
}

// Emails checks a comma-delimited list of email addresses. An empty
// input is vacuously valid. On success the input is returned unchanged;
// on any malformed entry ok is false.
//
// User-facing copy asks for semicolon-delimited lists, but the split has
// always been on commas; the comma is kept for compatibility.
func Emails(input string) (string, bool) {
	if len(input) == 0 {
		return "", true
	}

	for _, email := range strings.Split(input, ",") {
		if !Email(email) {
			return "", false
		}
	}
	return input, true
}
