package util

import "strings"

// Domain returns the lower-cased part after the last "@", or "" if there is none.
func Domain(addr string) string {
	i := strings.LastIndexByte(addr, '@')
	if i < 0 || i == len(addr)-1 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(addr[i+1:]))
}

// NormalizeAddress trims whitespace and lower-cases the address for lookups.
// The unnormalized address is still what gets sent and counted.
func NormalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}
