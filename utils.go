package paperview

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

func JsonPrint(tag string, v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%s: error marshaling: %v\n", tag, err)
		return
	}
	fmt.Printf("%s: %s\n", tag, string(b))
}

// NormalizeAddress lowercases a hex wallet address. Addresses are not
// case-sensitive identifiers in this domain; all comparisons go through
// this.
func NormalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// SameAddress reports whether two addresses identify the same wallet.
func SameAddress(a, b string) bool {
	return NormalizeAddress(a) == NormalizeAddress(b)
}

// IsHexAddress reports whether s looks like a 0x-prefixed 20-byte address.
func IsHexAddress(s string) bool {
	if len(s) != 42 || s[:2] != "0x" {
		return false
	}
	for i := 2; i < len(s); i++ {
		c := s[i]
		ok := c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
		if !ok {
			return false
		}
	}
	return true
}

// ParsePercent parses an "NN%" attribute value into an integer 0..100.
// Malformed or out-of-range input yields (0, false); a missing score is
// treated as 0 downstream, not as an error.
func ParsePercent(s string) (int, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 100 {
		return 0, false
	}
	return n, true
}

// FormatTokenAmount renders a 6-decimal fixed-point stablecoin amount as a
// human-readable decimal string.
func FormatTokenAmount(units int64) string {
	whole := units / 1_000_000
	frac := units % 1_000_000
	if frac < 0 {
		frac = -frac
	}
	if frac == 0 {
		return strconv.FormatInt(whole, 10)
	}
	s := fmt.Sprintf("%d.%06d", whole, frac)
	// For units in (-1, 0) the whole part formats as "0" and drops the sign.
	if units < 0 && whole == 0 {
		s = "-" + s
	}
	return strings.TrimRight(s, "0")
}
