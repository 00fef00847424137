package ens

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/vytor/web3profile/internal/identity"
)

var (
	selResolver = selector("resolver(bytes32)")
	selAddr     = selector("addr(bytes32)")
	selName     = selector("name(bytes32)")
	selText     = selector("text(bytes32,string)")
)

var errShortResult = errors.New("abi: result too short")

func selector(signature string) []byte {
	return identity.Keccak256([]byte(signature))[:4]
}

func encodeNode(sel []byte, node [32]byte) string {
	buf := make([]byte, 0, 36)
	buf = append(buf, sel...)
	buf = append(buf, node[:]...)
	return "0x" + hex.EncodeToString(buf)
}

// encodeNodeString encodes f(bytes32,string).
func encodeNodeString(sel []byte, node [32]byte, s string) string {
	padded := (len(s) + 31) / 32 * 32
	buf := make([]byte, 0, 4+32*3+padded)
	buf = append(buf, sel...)
	buf = append(buf, node[:]...)
	buf = append(buf, uint256(64)...)
	buf = append(buf, uint256(uint64(len(s)))...)
	data := make([]byte, padded)
	copy(data, s)
	buf = append(buf, data...)
	return "0x" + hex.EncodeToString(buf)
}

func uint256(v uint64) []byte {
	word := make([]byte, 32)
	binary.BigEndian.PutUint64(word[24:], v)
	return word
}

func decodeHex(result string) ([]byte, error) {
	result = strings.TrimPrefix(result, "0x")
	if len(result)%2 == 1 {
		return nil, fmt.Errorf("abi: odd-length hex result")
	}
	return hex.DecodeString(result)
}

// decodeAddress reads an address word. Empty results decode to the zero address.
func decodeAddress(result string) (string, error) {
	data, err := decodeHex(result)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return identity.ZeroAddress, nil
	}
	if len(data) < 32 {
		return "", errShortResult
	}
	return "0x" + hex.EncodeToString(data[12:32]), nil
}

// decodeString reads a single dynamic string return value.
func decodeString(result string) (string, error) {
	data, err := decodeHex(result)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", nil
	}
	if len(data) < 64 {
		return "", errShortResult
	}
	offset, err := wordToInt(data[:32])
	if err != nil {
		return "", err
	}
	if offset+32 > len(data) {
		return "", errShortResult
	}
	length, err := wordToInt(data[offset : offset+32])
	if err != nil {
		return "", err
	}
	start := offset + 32
	if start+length > len(data) {
		return "", errShortResult
	}
	return string(data[start : start+length]), nil
}

func wordToInt(word []byte) (int, error) {
	for _, b := range word[:24] {
		if b != 0 {
			return 0, fmt.Errorf("abi: integer overflows")
		}
	}
	v := binary.BigEndian.Uint64(word[24:])
	if v > 1<<31 {
		return 0, fmt.Errorf("abi: integer overflows")
	}
	return int(v), nil
}
