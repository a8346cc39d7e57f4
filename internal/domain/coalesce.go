package domain

import (
	"strings"
	"time"
)

// CoalesceStr returns the first non-blank string from vals.
func CoalesceStr(vals ...string) string {
	for _, v := range vals {
		if !isBlank(v) {
			return v
		}
	}
	return ""
}

// isBlank reports whether s is empty or whitespace-only.
func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// TimePtr returns a pointer to a copy of t.
func TimePtr(t time.Time) *time.Time {
	return &t
}

// StrPtr returns a pointer to a copy of s.
func StrPtr(s string) *string {
	return &s
}
