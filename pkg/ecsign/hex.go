package ecsign

import (
	"encoding/hex"
	"fmt"
)

// HexToBytes decodes a hex string.  Both letter cases are accepted; an odd
// length or a non-hex character is an ErrInvalidEncoding error.
func HexToBytes(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		return nil, makeError(ErrInvalidEncoding,
			fmt.Sprintf("hex string has odd length %d", len(s)))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, makeError(ErrInvalidEncoding,
			fmt.Sprintf("malformed hex string: %v", err))
	}
	return b, nil
}

// BytesToHex encodes b as lowercase hex.
func BytesToHex(b []byte) string {
	return hex.EncodeToString(b)
}

// ConcatBytes returns a new slice holding all arrays in order.
func ConcatBytes(arrays ...[]byte) []byte {
	size := 0
	for _, a := range arrays {
		size += len(a)
	}
	out := make([]byte, 0, size)
	for _, a := range arrays {
		out = append(out, a...)
	}
	return out
}
