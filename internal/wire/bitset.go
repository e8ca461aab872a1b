package wire

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// WireBitSet is a fixed-size bitset with popcount and membership-test
// semantics, wrapping github.com/bits-and-blooms/bitset rather than a
// hand-rolled bit slice (spec.md §3's signers/valid_members/member_list
// bitsets need exactly the set/test/popcount operations that library
// provides).
type WireBitSet struct {
	bits *bitset.BitSet
	n    int
}

// NewWireBitSet creates an all-zero bitset of n bits.
func NewWireBitSet(n int) *WireBitSet {
	return &WireBitSet{bits: bitset.New(uint(n)), n: n}
}

// Len returns the declared bit count (N from spec.md §3, the llmq_size).
func (w *WireBitSet) Len() int { return w.n }

// Set marks position i as present.
func (w *WireBitSet) Set(i int) { w.bits.Set(uint(i)) }

// Test reports whether position i is present.
func (w *WireBitSet) Test(i int) bool {
	if i < 0 || i >= w.n {
		return false
	}
	return w.bits.Test(uint(i))
}

// Count returns the popcount (number of set bits).
func (w *WireBitSet) Count() int {
	return int(w.bits.Count())
}

// EncodeBitset serializes a bitset to ceil(n/8) bytes, LSB-first within
// each byte, per spec.md §4.1.
func EncodeBitset(w *WireBitSet) []byte {
	n := w.n
	out := make([]byte, (n+7)/8)
	for i := 0; i < n; i++ {
		if w.Test(i) {
			out[i/8] |= 1 << uint(i%8)
		}
	}
	return out
}

// DecodeBitset deserializes a bitset of n declared bits from its
// ceil(n/8)-byte LSB-first wire form.
func DecodeBitset(data []byte, n int) (*WireBitSet, error) {
	want := (n + 7) / 8
	if len(data) != want {
		return nil, fmt.Errorf("wire: bitset expected %d bytes for %d bits, got %d", want, n, len(data))
	}
	w := NewWireBitSet(n)
	for i := 0; i < n; i++ {
		if data[i/8]&(1<<uint(i%8)) != 0 {
			w.Set(i)
		}
	}
	return w, nil
}
