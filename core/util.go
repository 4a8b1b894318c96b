package core

import (
	"strings"
	"time"
)

var NowFunc = time.Now // mockable

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// StringPtr returns a pointer to a cleaned copy of s, or nil when s is blank.
func StringPtr(s string) *string {
	s = CleanString(s)
	if s == "" {
		return nil
	}
	return &s
}
