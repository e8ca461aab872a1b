package merkle

import (
	"testing"

	"github.com/PastaPastaPasta/masternode-diff-processor/pkg/dashhash"
)

func leaf(b byte) dashhash.Hash256 {
	var h dashhash.Hash256
	h[0] = b
	return h
}

func TestRootSingleLeaf(t *testing.T) {
	l := leaf(1)
	if got := Root([]dashhash.Hash256{l}); got != l {
		t.Fatalf("single-leaf root should equal the leaf, got %x", got)
	}
}

func TestRootEmpty(t *testing.T) {
	if got := Root(nil); got != (dashhash.Hash256{}) {
		t.Fatalf("empty root should be zero, got %x", got)
	}
}

func TestRootOddDuplicatesLast(t *testing.T) {
	leaves := []dashhash.Hash256{leaf(1), leaf(2), leaf(3)}
	withDup := append(append([]dashhash.Hash256{}, leaves...), leaf(3))
	if Root(leaves) != Root(withDup) {
		t.Fatal("odd-count root should equal duplicating the last leaf")
	}
}

func TestRootOrderSensitive(t *testing.T) {
	a := Root([]dashhash.Hash256{leaf(1), leaf(2)})
	b := Root([]dashhash.Hash256{leaf(2), leaf(1)})
	if a == b {
		t.Fatal("swapping leaf order should change the root")
	}
}

func TestVerifyCoinbaseProofRoundTrip(t *testing.T) {
	cb := leaf(0xaa)
	sibling := leaf(0xbb)
	root, err := VerifyCoinbaseProof(cb, Proof{Hashes: []dashhash.Hash256{sibling}}, 2)
	if err != nil {
		t.Fatalf("VerifyCoinbaseProof: %v", err)
	}
	expected := Root([]dashhash.Hash256{cb, sibling})
	if !VerifyAgainstRoot(root, expected) {
		t.Fatal("recomputed root via proof should match direct Root computation")
	}
}

func TestVerifyCoinbaseProofTooManyHashes(t *testing.T) {
	hashes := make([]dashhash.Hash256, 10)
	_, err := VerifyCoinbaseProof(leaf(1), Proof{Hashes: hashes}, 2)
	if err != ErrInvalidProof {
		t.Fatalf("expected ErrInvalidProof, got %v", err)
	}
}

func TestVerifyCoinbaseProofZeroTransactions(t *testing.T) {
	_, err := VerifyCoinbaseProof(leaf(1), Proof{}, 0)
	if err != ErrInvalidProof {
		t.Fatalf("expected ErrInvalidProof, got %v", err)
	}
}
