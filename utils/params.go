package utils

import (
	"fmt"
	"regexp"
	"strconv"
)

// ParseNonNegative reads an optional non-negative integer query value.
// Empty input yields 0.
func ParseNonNegative(name, raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", name)
	}
	return n, nil
}

// LiteralPattern quotes a user search term so it is matched as a plain
// substring by a regex engine.
func LiteralPattern(term string) string {
	return regexp.QuoteMeta(term)
}
