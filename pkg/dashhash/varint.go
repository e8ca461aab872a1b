package dashhash

import (
	"encoding/binary"
	"fmt"
)

// WriteVarInt writes a Bitcoin-style variable-length integer (1/3/5/9 bytes).
func WriteVarInt(val uint64) []byte {
	switch {
	case val < 0xfd:
		return []byte{byte(val)}
	case val <= 0xffff:
		b := make([]byte, 3)
		b[0] = 0xfd
		binary.LittleEndian.PutUint16(b[1:], uint16(val))
		return b
	case val <= 0xffffffff:
		b := make([]byte, 5)
		b[0] = 0xfe
		binary.LittleEndian.PutUint32(b[1:], uint32(val))
		return b
	default:
		b := make([]byte, 9)
		b[0] = 0xff
		binary.LittleEndian.PutUint64(b[1:], val)
		return b
	}
}

// ReadVarInt reads a Bitcoin-style variable-length integer from data.
// Returns the value and the number of bytes consumed.
func ReadVarInt(data []byte) (uint64, int, error) {
	if len(data) == 0 {
		return 0, 0, fmt.Errorf("dashhash: empty data for varint")
	}

	switch {
	case data[0] < 0xfd:
		return uint64(data[0]), 1, nil
	case data[0] == 0xfd:
		if len(data) < 3 {
			return 0, 0, fmt.Errorf("dashhash: insufficient data for uint16 varint")
		}
		return uint64(binary.LittleEndian.Uint16(data[1:3])), 3, nil
	case data[0] == 0xfe:
		if len(data) < 5 {
			return 0, 0, fmt.Errorf("dashhash: insufficient data for uint32 varint")
		}
		return uint64(binary.LittleEndian.Uint32(data[1:5])), 5, nil
	default:
		if len(data) < 9 {
			return 0, 0, fmt.Errorf("dashhash: insufficient data for uint64 varint")
		}
		return binary.LittleEndian.Uint64(data[1:9]), 9, nil
	}
}

// Cursor is a single forward-only reader over a byte buffer used by the
// wire codec (C1). Decoding never looks ahead past a structure's declared
// length, matching spec.md §4.1's streaming-cursor requirement.
type Cursor struct {
	data []byte
	pos  int
}

// NewCursor wraps data for sequential decoding.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Offset returns the current read offset, used to identify Malformed errors.
func (c *Cursor) Offset() int {
	return c.pos
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	return len(c.data) - c.pos
}

// ReadBytes reads exactly n bytes, or fails if fewer remain.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if c.Remaining() < n {
		return nil, &MalformedError{Offset: c.pos, Reason: fmt.Sprintf("need %d bytes, have %d", n, c.Remaining())}
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// ReadHash256 reads a 32-byte Hash256 in canonical little-endian wire order.
func (c *Cursor) ReadHash256() (Hash256, error) {
	b, err := c.ReadBytes(Hash256Size)
	if err != nil {
		return Hash256{}, err
	}
	var h Hash256
	copy(h[:], b)
	return h, nil
}

// ReadUint8 reads a single byte.
func (c *Cursor) ReadUint8() (uint8, error) {
	b, err := c.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadUint16LE reads a 2-byte little-endian uint16.
func (c *Cursor) ReadUint16LE() (uint16, error) {
	b, err := c.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadUint32LE reads a 4-byte little-endian uint32.
func (c *Cursor) ReadUint32LE() (uint32, error) {
	b, err := c.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadVarInt reads a VarInt, advancing the cursor.
func (c *Cursor) ReadVarInt() (uint64, error) {
	v, n, err := ReadVarInt(c.data[c.pos:])
	if err != nil {
		return 0, &MalformedError{Offset: c.pos, Reason: err.Error()}
	}
	c.pos += n
	return v, nil
}

// MalformedError identifies the byte offset at which decoding failed,
// satisfying spec.md §4.1's "fails with Malformed identifying the offset".
type MalformedError struct {
	Offset int
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed at offset %d: %s", e.Offset, e.Reason)
}
