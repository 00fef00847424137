package identity

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Kind classifies a normalized query.
type Kind string

const (
	KindAddress Kind = "address"
	KindName    Kind = "name"
)

// ErrInvalidInput is returned when a query cannot be interpreted as an
// address or ENS name.
var ErrInvalidInput = errors.New("invalid identity input")

// Query is a normalized lookup input.
type Query struct {
	Raw   string
	Value string
	Kind  Kind
}

// Profile links people paste instead of the bare identifier.
var profileURLRe = regexp.MustCompile(`^(?:https?://)?(?:www\.)?(?:app\.ethfollow\.xyz|ethfollow\.xyz|efp\.app|etherscan\.io/address|app\.ens\.domains|ens\.app|web3\.bio|opensea\.io|rainbow\.me)/`)

// Normalize turns user input into an address or ENS name query. Mixed-case
// addresses must carry a valid EIP-55 checksum; all-lower and all-upper
// addresses are accepted as is.
func Normalize(raw string) (Query, error) {
	s := strings.TrimSpace(raw)
	s = profileURLRe.ReplaceAllString(s, "")
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	s = strings.Trim(s, "/")
	s = strings.TrimPrefix(s, "@")
	s = strings.TrimSpace(s)

	if s == "" {
		return Query{}, fmt.Errorf("%w: empty", ErrInvalidInput)
	}

	if IsAddress(s) {
		if !IsValidChecksum(s) {
			return Query{}, fmt.Errorf("%w: bad checksum %q", ErrInvalidInput, s)
		}
		return Query{Raw: raw, Value: strings.ToLower(s), Kind: KindAddress}, nil
	}
	if strings.HasPrefix(strings.ToLower(s), "0x") && !strings.Contains(s, ".") {
		return Query{}, fmt.Errorf("%w: malformed address %q", ErrInvalidInput, s)
	}

	name, err := NormalizeName(s)
	if err != nil {
		return Query{}, err
	}
	if !strings.Contains(name, ".") {
		name += ".eth"
	}
	return Query{Raw: raw, Value: name, Kind: KindName}, nil
}

// NormalizeName lowercases and NFC-normalizes an ENS name and checks that
// every label is non-empty and free of whitespace and control characters.
func NormalizeName(name string) (string, error) {
	name = norm.NFC.String(strings.ToLower(strings.TrimSpace(name)))
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrInvalidInput)
	}
	for _, label := range strings.Split(name, ".") {
		if label == "" {
			return "", fmt.Errorf("%w: empty label in %q", ErrInvalidInput, name)
		}
		for _, r := range label {
			if unicode.IsSpace(r) || unicode.IsControl(r) || r == '/' {
				return "", fmt.Errorf("%w: illegal character %q in %q", ErrInvalidInput, r, name)
			}
		}
	}
	return name, nil
}

// Namehash computes the EIP-137 namehash of a normalized name.
func Namehash(name string) [32]byte {
	var node [32]byte
	if name == "" {
		return node
	}
	labels := strings.Split(name, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		labelHash := Keccak256([]byte(labels[i]))
		copy(node[:], Keccak256(node[:], labelHash))
	}
	return node
}

// ReverseName returns the reverse-registrar name for addr.
func ReverseName(addr string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimPrefix(addr, "0x"), "0X")) + ".addr.reverse"
}
