// Package codec implements the canonical, deterministic byte encoding of a
// vertex (the funds_struct / graph_struct / nonce layout of spec.md §4.1 and
// §6) and the content-addressing hash derived from it. The cursor-based
// reader/writer helpers are grounded in the teacher's wire/common.go
// ReadElement/WriteElement style, specialized to this module's fixed field
// layout instead of wire's tagged-message dispatch.
package codec

import (
	"encoding/binary"
	"math"

	"github.com/dagledger/fullnode/hashutil"
)

// NonceSize is the length in bytes of the nonce field, identical for blocks
// and transactions.
const NonceSize = 16

// MaxBlockDataSize is the maximum length in bytes of a block's Data field.
const MaxBlockDataSize = 100

// signedValueFlag marks, in the high bit of an 8-byte output value, that the
// value required the wide encoding (i.e. didn't fit in 4 bytes).
const signedValueFlag = uint64(1) << 63

// maxSmallValue is the largest value encodable in 4 bytes (2^31 - 1).
const maxSmallValue = uint64(1)<<31 - 1

// ErrorCode enumerates every way a decode can fail, per spec.md §7's
// Decode error category.
type ErrorCode int

const (
	ErrTruncated ErrorCode = iota
	ErrTrailingBytes
	ErrNonCanonicalValueEncoding
	ErrOversizedField
	ErrTooManyTokens
	ErrTooManyInputs
	ErrTooManyOutputs
	ErrTooManyParents
)

var errorCodeStrings = map[ErrorCode]string{
	ErrTruncated:                 "ErrTruncated",
	ErrTrailingBytes:             "ErrTrailingBytes",
	ErrNonCanonicalValueEncoding: "ErrNonCanonicalValueEncoding",
	ErrOversizedField:            "ErrOversizedField",
	ErrTooManyTokens:             "ErrTooManyTokens",
	ErrTooManyInputs:             "ErrTooManyInputs",
	ErrTooManyOutputs:            "ErrTooManyOutputs",
	ErrTooManyParents:            "ErrTooManyParents",
}

func (c ErrorCode) String() string {
	if s, ok := errorCodeStrings[c]; ok {
		return s
	}
	return "ErrUnknownCode"
}

// DecodeError wraps an ErrorCode with a human-readable message, in the
// RuleError idiom grounded on blockdag/error.go.
type DecodeError struct {
	Code        ErrorCode
	Description string
}

func (e DecodeError) Error() string {
	return e.Description
}

func decodeError(code ErrorCode, description string) error {
	return DecodeError{Code: code, Description: description}
}

// cursor reads sequentially from a byte slice, tracking position.
type cursor struct {
	buf []byte
	pos int
}

func (c *cursor) remaining() int {
	return len(c.buf) - c.pos
}

func (c *cursor) readBytes(n int) ([]byte, error) {
	if c.remaining() < n {
		return nil, decodeError(ErrTruncated, "unexpected end of vertex bytes")
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

func (c *cursor) readUint8() (uint8, error) {
	b, err := c.readBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *cursor) readUint16() (uint16, error) {
	b, err := c.readBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (c *cursor) readUint64() (uint64, error) {
	b, err := c.readBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (c *cursor) readFloat64() (float64, error) {
	bits, err := c.readUint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

func (c *cursor) readHash() (hashutil.Hash, error) {
	b, err := c.readBytes(hashutil.Size)
	if err != nil {
		return hashutil.Hash{}, err
	}
	h, _ := hashutil.HashFromBytes(b)
	return h, nil
}
