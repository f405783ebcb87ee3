package models

import (
	"fmt"
	"strings"
)

const (
	windowKeyPrefix  = "rl"
	attemptKeyPrefix = "lockout"
)

// WindowKey is the store key for one address on one limiter: rl:{name}:{address}.
// Both segments are escaped so IPv6 colons cannot forge a neighbouring key.
func WindowKey(limiter, address string) string {
	return fmt.Sprintf("%s:%s:%s", windowKeyPrefix, sanitizeKeySegment(limiter), sanitizeKeySegment(address))
}

// AttemptKey is the store key for an address's attempt record.
func AttemptKey(address string) string {
	return fmt.Sprintf("%s:%s", attemptKeyPrefix, sanitizeKeySegment(address))
}

// sanitizeKeySegment escapes '_' to "__" then ':' to "_c". The order makes
// the mapping injective.
func sanitizeKeySegment(s string) string {
	s = strings.ReplaceAll(s, "_", "__")
	s = strings.ReplaceAll(s, ":", "_c")
	return s
}
