package common

import (
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ParseBlockNumber parses a block number as nodes print it: 0x-prefixed hex or decimal.
func ParseBlockNumber(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if hex, ok := strings.CutPrefix(strings.ToLower(s), "0x"); ok {
		return strconv.ParseUint(hex, 16, 64)
	}
	return strconv.ParseUint(s, 10, 64)
}

// NormalizeAddress returns the lowercased hex form used as the storage key for addresses.
func NormalizeAddress(addr common.Address) string {
	return strings.ToLower(addr.Hex())
}

// IsHexAddress reports whether s is a well-formed 0x-prefixed 20 byte address.
func IsHexAddress(s string) bool {
	return strings.HasPrefix(s, "0x") && common.IsHexAddress(s)
}

// IsHexHash reports whether s is a well-formed 0x-prefixed 32 byte hash.
func IsHexHash(s string) bool {
	if !strings.HasPrefix(s, "0x") || len(s) != 2+2*common.HashLength {
		return false
	}
	for _, c := range s[2:] {
		if !isHexChar(c) {
			return false
		}
	}
	return true
}

func isHexChar(c rune) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func ToLowerWithTrim(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
