// Package ids generates and parses the 24-character hexadecimal identifiers
// used for orders and related records.
package ids

import (
	"strings"

	"github.com/google/uuid"
)

// Length is the number of hex characters in an identifier.
const Length = 24

// New returns a fresh 24-character lowercase hex identifier.
func New() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:Length]
}

// TransactionCode returns a globally unique payment transaction code.
func TransactionCode() string {
	return "TX" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// Valid reports whether s is exactly one identifier.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	return isHex(s)
}

// Extract returns the identifier at the start of raw. Payment gateways append
// their own fragments to the order id on redirect, so anything after the
// first Length hex characters is discarded.
func Extract(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if len(raw) < Length {
		return "", false
	}
	candidate := strings.ToLower(raw[:Length])
	if !isHex(candidate) {
		return "", false
	}
	return candidate, true
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
