package utils

import "github.com/microcosm-cc/bluemonday"

// Check-in notes and locations are free text echoed back to clients, so
// strip any markup outright rather than allowing a UGC subset.
var sanitizer = bluemonday.StrictPolicy()

// Sanitize removes all HTML from user supplied free text.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
