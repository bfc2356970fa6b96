// Package services holds the business logic between the HTTP handlers and
// the persistence layer. "Not found" is a normal return value here (nil
// pointer or false), never an error; only handlers decide status codes.
package services

const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

func clampLimit(limit int) int {
	if limit < 1 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

func clampSkip(skip int) int {
	if skip < 0 {
		return 0
	}
	return skip
}
