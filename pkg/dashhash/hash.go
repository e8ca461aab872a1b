// Package dashhash provides the low-level hashing and wire-integer
// primitives shared by every component of the masternode-list processor:
// double-SHA256, Bitcoin-style display-order hex, and VarInt encoding.
package dashhash

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// Hash256Size is the length in bytes of a Hash256.
const Hash256Size = 32

// Hash256 is a 32-byte opaque identifier. Canonical wire form is
// little-endian raw bytes; display form is reversed hex.
type Hash256 [Hash256Size]byte

// DoubleSHA256 computes SHA256(SHA256(data)), used throughout the Dash
// (Bitcoin-family) wire format for block, transaction, and entry hashes.
func DoubleSHA256(data []byte) Hash256 {
	first := sha256.Sum256(data)
	return Hash256(sha256.Sum256(first[:]))
}

// ReverseBytes returns a new slice with bytes reversed.
func ReverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}

// String returns the reversed-hex display form (Bitcoin/Dash convention).
func (h Hash256) String() string {
	return hex.EncodeToString(ReverseBytes(h[:]))
}

// Bytes returns the canonical little-endian wire bytes.
func (h Hash256) Bytes() []byte {
	return h[:]
}

// IsZero reports whether every byte of h is zero.
func (h Hash256) IsZero() bool {
	return h == Hash256{}
}

// Less reports whether h sorts before o by raw byte value, used for the
// canonical orderings spec.md §4.3/§4.4 requires (ascending pro_reg_tx_hash,
// ascending (llmq_type, llmq_hash)).
func (h Hash256) Less(o Hash256) bool {
	for i := range h {
		if h[i] != o[i] {
			return h[i] < o[i]
		}
	}
	return false
}

// HashFromHex parses a reversed-hex display string into a Hash256.
func HashFromHex(s string) (Hash256, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Hash256{}, err
	}
	if len(b) != Hash256Size {
		return Hash256{}, fmt.Errorf("dashhash: expected %d bytes, got %d", Hash256Size, len(b))
	}
	var h Hash256
	copy(h[:], ReverseBytes(b))
	return h, nil
}

// Uint32ToBytesLE converts a uint32 to 4-byte little-endian.
func Uint32ToBytesLE(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

// Uint16ToBytesLE converts a uint16 to 2-byte little-endian.
func Uint16ToBytesLE(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}
