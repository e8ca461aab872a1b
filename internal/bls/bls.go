// Package bls provides the minimal BLS12-381 surface the quorum validator
// needs: aggregating member public keys and verifying a threshold signature
// against a message. It wraps github.com/supranational/blst's MinPk scheme
// (public keys in G1, signatures in G2), the same binding Dash's own
// reference implementation uses for LLMQ threshold signatures.
package bls

import (
	"errors"

	blst "github.com/supranational/blst/bindings/go"
)

// dst is the domain separation tag used for LLMQ threshold-signature
// verification.
var dst = []byte("BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_POP_")

const (
	PublicKeySize = 48 // compressed G1
	SignatureSize = 96 // compressed G2
)

var (
	ErrInvalidPublicKey = errors.New("bls: invalid compressed public key")
	ErrInvalidSignature = errors.New("bls: invalid compressed signature")
	ErrNoPublicKeys     = errors.New("bls: no public keys to aggregate")
)

// AggregatePublicKeys combines the given compressed G1 public keys into a
// single compressed aggregate public key, in the order given (order does
// not affect the result: point addition is commutative).
func AggregatePublicKeys(pubKeys [][]byte) ([]byte, error) {
	if len(pubKeys) == 0 {
		return nil, ErrNoPublicKeys
	}

	points := make([]*blst.P1Affine, len(pubKeys))
	for i, pk := range pubKeys {
		p := new(blst.P1Affine).Uncompress(pk)
		if p == nil {
			return nil, ErrInvalidPublicKey
		}
		points[i] = p
	}

	agg := new(blst.P1Aggregate)
	if !agg.Aggregate(points, true) {
		return nil, ErrInvalidPublicKey
	}
	return agg.ToAffine().Compress(), nil
}

// VerifySignature checks a single (possibly aggregate) BLS signature against
// a compressed public key and a message.
func VerifySignature(pubKey, msg, sig []byte) (bool, error) {
	if len(pubKey) == 0 {
		return false, ErrInvalidPublicKey
	}
	if len(sig) == 0 {
		return false, ErrInvalidSignature
	}

	pk := new(blst.P1Affine).Uncompress(pubKey)
	if pk == nil {
		return false, ErrInvalidPublicKey
	}
	s := new(blst.P2Affine).Uncompress(sig)
	if s == nil {
		return false, ErrInvalidSignature
	}

	return s.Verify(true, pk, true, msg, dst), nil
}
