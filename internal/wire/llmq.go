package wire

import (
	"fmt"

	"github.com/PastaPastaPasta/masternode-diff-processor/pkg/dashhash"
)

// serializeWithoutHash produces the canonical byte encoding of every
// LLMQEntry field except entry_hash and the in-memory verified/saved flags,
// in the documented field order (spec.md §3/§4.1).
func (e *LLMQEntry) serializeWithoutHash() []byte {
	var buf []byte
	buf = append(buf, e.LLMQType)
	buf = append(buf, e.LLMQHash[:]...)
	buf = append(buf, dashhash.Uint16ToBytesLE(e.Version)...)
	if e.IsIndexed() && e.Index != nil {
		buf = append(buf, dashhash.Uint16ToBytesLE(*e.Index)...)
	}
	buf = append(buf, EncodeBitset(e.Signers)...)
	buf = append(buf, EncodeBitset(e.ValidMembers)...)
	buf = append(buf, e.PublicKey[:]...)
	buf = append(buf, e.VerificationVectorHash[:]...)
	buf = append(buf, e.ThresholdSignature[:]...)
	buf = append(buf, e.AllCommitmentAggregatedSig[:]...)
	return buf
}

// Encode serializes the entry to its wire form.
func (e *LLMQEntry) Encode() []byte {
	return e.serializeWithoutHash()
}

// EntryHash computes (and caches) the quorum's entry_hash, the same
// DSHA256-over-fields-without-hash construction spec.md §4.3 uses for
// masternode entries.
func (e *LLMQEntry) EntryHash() dashhash.Hash256 {
	e.EntryHashCached = dashhash.DoubleSHA256(e.serializeWithoutHash())
	return e.EntryHashCached
}

// DecodeLLMQEntry reads one LLMQEntry from the cursor, resolving its
// signer/valid-member bitset sizes from the llmq_type's declared N, and
// computes its entry_hash.
func DecodeLLMQEntry(c *dashhash.Cursor) (LLMQEntry, error) {
	var e LLMQEntry

	llmqType, err := c.ReadUint8()
	if err != nil {
		return e, err
	}
	n, ok := LLMQSize(llmqType)
	if !ok {
		return e, &dashhash.MalformedError{Offset: c.Offset(), Reason: fmt.Sprintf("unknown llmq_type %d", llmqType)}
	}

	llmqHash, err := c.ReadHash256()
	if err != nil {
		return e, err
	}
	version, err := c.ReadUint16LE()
	if err != nil {
		return e, err
	}

	e.LLMQType = llmqType
	e.LLMQHash = llmqHash
	e.Version = version

	if e.IsIndexed() {
		idx, err := c.ReadUint16LE()
		if err != nil {
			return e, err
		}
		e.Index = &idx
	}

	signerBytes, err := c.ReadBytes((n + 7) / 8)
	if err != nil {
		return e, err
	}
	signers, err := DecodeBitset(signerBytes, n)
	if err != nil {
		return e, &dashhash.MalformedError{Offset: c.Offset(), Reason: err.Error()}
	}

	validBytes, err := c.ReadBytes((n + 7) / 8)
	if err != nil {
		return e, err
	}
	validMembers, err := DecodeBitset(validBytes, n)
	if err != nil {
		return e, &dashhash.MalformedError{Offset: c.Offset(), Reason: err.Error()}
	}

	pubKeyBytes, err := c.ReadBytes(BLSPublicKeySize)
	if err != nil {
		return e, err
	}
	vvh, err := c.ReadHash256()
	if err != nil {
		return e, err
	}
	thresholdSigBytes, err := c.ReadBytes(BLSSignatureSize)
	if err != nil {
		return e, err
	}
	allCommitSigBytes, err := c.ReadBytes(BLSSignatureSize)
	if err != nil {
		return e, err
	}

	e.Signers = signers
	e.ValidMembers = validMembers
	copy(e.PublicKey[:], pubKeyBytes)
	e.VerificationVectorHash = vvh
	copy(e.ThresholdSignature[:], thresholdSigBytes)
	copy(e.AllCommitmentAggregatedSig[:], allCommitSigBytes)
	e.EntryHash()
	return e, nil
}
