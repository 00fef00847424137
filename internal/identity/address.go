// Package identity validates and normalizes the user-facing identifiers of an
// Ethereum account: hex addresses and ENS names.
package identity

import (
	"errors"
	"regexp"
	"strings"

	"golang.org/x/crypto/sha3"
)

// ZeroAddress is returned by resolvers for unset records.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

var addressRe = regexp.MustCompile(`^0[xX][0-9a-fA-F]{40}$`)

// ErrInvalidAddress is returned for strings that are not 20-byte hex addresses.
var ErrInvalidAddress = errors.New("invalid ethereum address")

// IsAddress reports whether s is 0x followed by 40 hex characters. Case is not checked.
func IsAddress(s string) bool {
	return addressRe.MatchString(s)
}

// Keccak256 hashes the concatenation of data with legacy Keccak-256.
func Keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}

// Checksum returns the EIP-55 mixed-case form of addr.
func Checksum(addr string) (string, error) {
	if !IsAddress(addr) {
		return "", ErrInvalidAddress
	}
	lower := strings.ToLower(addr[2:])
	hash := Keccak256([]byte(lower))

	out := make([]byte, 0, 42)
	out = append(out, '0', 'x')
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		if c >= 'a' && c <= 'f' {
			nibble := hash[i/2]
			if i%2 == 0 {
				nibble >>= 4
			}
			if nibble&0x0f >= 8 {
				c -= 'a' - 'A'
			}
		}
		out = append(out, c)
	}
	return string(out), nil
}

// IsValidChecksum accepts all-lowercase and all-uppercase addresses and
// requires mixed-case addresses to match their EIP-55 checksum.
func IsValidChecksum(addr string) bool {
	if !IsAddress(addr) {
		return false
	}
	body := addr[2:]
	if body == strings.ToLower(body) || body == strings.ToUpper(body) {
		return true
	}
	sum, err := Checksum(addr)
	return err == nil && sum[2:] == body
}

// Shorten renders an address as 0x1234...abcd. Inputs that are not
// addresses are returned unchanged.
func Shorten(addr string) string {
	if !IsAddress(addr) {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}
