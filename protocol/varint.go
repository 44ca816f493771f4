package protocol

import "errors"

// Varint limits. Values below VarintMax1 take one byte, below VarintMax2 two
// bytes and below VarintMax3 three bytes.
const (
	VarintMax1 = 192
	VarintMax2 = 1 << 14
	VarintMax3 = 1 << 22

	varintPrefix = 0b11000000
)

var (
	ErrVarintRange     = errors.New("protocol: varint out of range")
	ErrVarintTruncated = errors.New("protocol: varint truncated")
)

// VarintLen returns the number of bytes AppendVarint emits for n.
func VarintLen(n int) int {
	switch {
	case n < VarintMax1:
		return 1
	case n < VarintMax2:
		return 2
	default:
		return 3
	}
}

// AppendVarint appends the variable-length encoding of n to dst.
// It panics when n is negative or not below VarintMax3.
func AppendVarint(dst []byte, n int) []byte {
	switch {
	case n < 0:
		panic(ErrVarintRange)
	case n < VarintMax1:
		return append(dst, byte(n))
	case n < VarintMax2:
		return append(dst, byte(n>>8)|varintPrefix, byte(n))
	case n < VarintMax3:
		// three byte form is only understood by a few commands
		return append(dst, byte(n>>16)|varintPrefix, byte(n>>8), byte(n))
	default:
		panic(ErrVarintRange)
	}
}

// EncodeVarint is the checked form of AppendVarint.
func EncodeVarint(n int) ([]byte, error) {
	if n < 0 || n >= VarintMax3 {
		return nil, ErrVarintRange
	}
	return AppendVarint(make([]byte, 0, VarintLen(n)), n), nil
}

// DecodeVarint reads a one or two byte varint from the front of b and
// returns the value and the number of bytes consumed. Trailing bytes are
// ignored. Three byte values need DecodeVarintFixed because the prefix alone
// cannot tell them apart from two byte values.
func DecodeVarint(b []byte) (int, int, error) {
	if len(b) == 0 {
		return 0, 0, ErrVarintTruncated
	}
	if b[0]&varintPrefix != varintPrefix {
		return int(b[0]), 1, nil
	}
	if len(b) < 2 {
		return 0, 0, ErrVarintTruncated
	}
	return int(b[0]&^varintPrefix)<<8 | int(b[1]), 2, nil
}

// DecodeVarintFixed decodes a varint known to occupy width bytes.
func DecodeVarintFixed(b []byte, width int) (int, error) {
	if len(b) < width {
		return 0, ErrVarintTruncated
	}
	switch width {
	case 1:
		return int(b[0]), nil
	case 2:
		if b[0]&varintPrefix != varintPrefix {
			return 0, ErrVarintRange
		}
		return int(b[0]&^varintPrefix)<<8 | int(b[1]), nil
	case 3:
		if b[0]&varintPrefix != varintPrefix {
			return 0, ErrVarintRange
		}
		return int(b[0]&^varintPrefix)<<16 | int(b[1])<<8 | int(b[2]), nil
	default:
		return 0, ErrVarintRange
	}
}
