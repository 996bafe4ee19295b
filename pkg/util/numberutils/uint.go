package numberutils

import (
	"fmt"
	"strconv"
	"unicode"
)

// IsDigits checks if the given string is non-empty and contains only digits (0-9).
func IsDigits(str string) bool {
	if str == "" {
		return false
	}
	for _, r := range str {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ToUint64WithError converts a string of digits to an uint64.
// Signs, spaces and values overflowing uint64 are rejected.
func ToUint64WithError(str string) (uint64, error) {
	if !IsDigits(str) {
		return 0, fmt.Errorf("%q is not an unsigned integer", str)
	}
	return strconv.ParseUint(str, 10, 64)
}
