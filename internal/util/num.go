package util

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	nonNumericChars = regexp.MustCompile(`[^0-9,.\-]`)
	numberToken     = regexp.MustCompile(`^-?\d+(?:[.,]\d+)?$`)
	percentToken    = regexp.MustCompile(`^\d+(?:,\d+)?%$`)
)

// ParseNumber strips everything outside [0-9,.-], swaps the decimal comma for
// a dot and parses the remainder. ok is false when nothing numeric is left or
// the remainder is malformed.
func ParseNumber(raw string) (float64, bool) {
	cleaned := nonNumericChars.ReplaceAllString(raw, "")
	if cleaned == "" {
		return 0, false
	}
	normalized := strings.ReplaceAll(cleaned, ",", ".")
	parsed, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, false
	}
	return parsed, true
}

func IsNumberToken(token string) bool {
	return numberToken.MatchString(token)
}

func IsPercentToken(token string) bool {
	return percentToken.MatchString(token)
}

func HasDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}
