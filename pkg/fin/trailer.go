package fin

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

// DefaultMACKey is the shared secret both sides of the mock link use. The
// SHA256(message||key) construction is a deliberate stand-in for SWIFT's
// LAU scheme, not a real HMAC; it must stay bit-exact so clients and the
// server agree.
const DefaultMACKey = "MOCK_SECRET_KEY"

var (
	// trailerSuffixRe strips a block-5 trailer anchored at end-of-string.
	trailerSuffixRe = regexp.MustCompile(`(?s)\{5:.*?\}\}$`)

	// trailerBlockRe is the strict shape a trailer must have to be
	// validated. Values that are not uppercase hex fail as missing.
	trailerBlockRe = regexp.MustCompile(`\{5:\{MAC:([A-F0-9]+)\}\{CHK:([A-F0-9]+)\}\}`)
)

// Checksum computes the mock LAU checksum: SHA-256 over the message with
// any trailing block-5 removed, first 12 hex digits, uppercased.
func Checksum(message string) string {
	base := trailerSuffixRe.ReplaceAllString(message, "")
	sum := sha256.Sum256([]byte(base))
	return strings.ToUpper(hex.EncodeToString(sum[:])[:12])
}

// MAC computes the mock authentication code: SHA-256 over message||key,
// first 16 hex digits, uppercased. The message passed in must not carry a
// trailer; use ValidateTrailer for full-message verification.
func MAC(message, key string) string {
	if key == "" {
		key = DefaultMACKey
	}
	sum := sha256.Sum256([]byte(message + key))
	return strings.ToUpper(hex.EncodeToString(sum[:])[:16])
}

// StripTrailer returns the message with a trailing block 5 removed.
func StripTrailer(message string) string {
	return trailerSuffixRe.ReplaceAllString(message, "")
}

// AppendTrailer computes MAC and CHK over base and returns the message
// with the block-5 trailer attached.
func AppendTrailer(base, key string) string {
	return base + fmt.Sprintf("{5:{MAC:%s}{CHK:%s}}", MAC(base, key), Checksum(base))
}

// ValidateTrailer checks the block-5 trailer of a complete message.
// The checksum is compared first, then the MAC; the reason strings are
// part of the wire contract (clients grep for "mismatch").
func ValidateTrailer(message, key string) (bool, string) {
	match := trailerBlockRe.FindStringSubmatch(message)
	if match == nil {
		return false, "Missing Block 5 trailer"
	}
	providedMAC := match[1]
	providedCHK := match[2]

	expectedCHK := Checksum(message)
	expectedMAC := MAC(StripTrailer(message), key)

	if providedCHK != expectedCHK {
		return false, fmt.Sprintf("Checksum mismatch: expected %s, got %s", expectedCHK, providedCHK)
	}
	if providedMAC != expectedMAC {
		return false, fmt.Sprintf("MAC mismatch: expected %s, got %s", expectedMAC, providedMAC)
	}
	return true, "Valid"
}
