package processor

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// placeholderValues are boolean-ish strings some widgets leave in text
// fields; they match nothing useful and are never treated as addresses.
var placeholderValues = map[string]struct{}{
	"on":    {},
	"off":   {},
	"true":  {},
	"false": {},
}

// ValidEmail reports whether s, after trimming, is a syntactically valid
// email address and not a known placeholder value.
func ValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if _, ok := placeholderValues[strings.ToLower(s)]; ok {
		return false
	}
	return emailPattern.MatchString(s)
}
