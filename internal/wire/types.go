// Package wire implements the Dash MNLISTDIFF/QRINFO wire codec (spec C1):
// deserializing and reserializing masternode entries, quorum entries,
// snapshots, list-diffs, and QRInfo bundles. All integers are little-endian;
// counts use Bitcoin-style VarInt; decoding is a single forward-only cursor.
package wire

import "github.com/PastaPastaPasta/masternode-diff-processor/pkg/dashhash"

// Hash160Size is the length in bytes of a voting-key hash.
const Hash160Size = 20

// Hash160 is an opaque 160-bit identifier (RIPEMD160(SHA256(pubkey))-shaped),
// used here only for the voting_key_hash field.
type Hash160 [Hash160Size]byte

// BLSPublicKeySize is the length in bytes of a BLS12-381 public key.
const BLSPublicKeySize = 48

// BLSSignatureSize is the length in bytes of a BLS12-381 signature.
const BLSSignatureSize = 96

// BLSPublicKey is opaque to the wire codec and validator; its semantics are
// delegated to the BLS adapter (internal/bls).
type BLSPublicKey [BLSPublicKeySize]byte

// BLSSignature is opaque to the wire codec and validator; its semantics are
// delegated to the BLS adapter (internal/bls).
type BLSSignature [BLSSignatureSize]byte

// MasternodeEntry is a single row of the masternode list (spec.md §3).
type MasternodeEntry struct {
	ProRegTxHash    dashhash.Hash256
	ConfirmedHash   dashhash.Hash256
	IP              [16]byte
	Port            uint16
	OperatorPubKey  BLSPublicKey
	VotingKeyHash   Hash160
	IsValid         bool
	UpdateHeight    uint32
	EntryHashCached dashhash.Hash256 // derived; recomputed by EntryHash(), see entry_hash invariant
}

// SkipListMode enumerates how a LLMQSnapshot's skip_list should be
// interpreted (spec.md §3/§4.6).
type SkipListMode uint8

const (
	SkipListModeNoSkipping SkipListMode = 0
	SkipListModeSkipFirst  SkipListMode = 1
	SkipListModeSkipExcept SkipListMode = 2
	SkipListModeSkipAll    SkipListMode = 3
)

// LLMQEntry is a single quorum commitment (spec.md §3).
type LLMQEntry struct {
	LLMQType                   uint8
	LLMQHash                   dashhash.Hash256
	Version                    uint16
	Index                      *uint16 // present iff version indicates indexed
	Signers                    *WireBitSet
	ValidMembers               *WireBitSet
	PublicKey                  BLSPublicKey
	VerificationVectorHash     dashhash.Hash256
	ThresholdSignature         BLSSignature
	AllCommitmentAggregatedSig BLSSignature
	EntryHashCached            dashhash.Hash256
	Verified                   bool
	Saved                      bool
}

// IsIndexed reports whether this entry carries a rotation Index, per
// spec.md §3 ("index: Option<u16>, present iff version indicates indexed").
// Versions 2 and 4 are the DIP-0024 rotated-quorum commitment versions in
// the Dash reference implementation; all others are non-indexed.
func (e *LLMQEntry) IsIndexed() bool {
	return e.Version == 2 || e.Version == 4
}

// LLMQSnapshot records which positions of a prior cycle's quorum were kept
// forward (spec.md §3, DIP-0024).
type LLMQSnapshot struct {
	MemberList   *WireBitSet
	SkipList     []int32
	SkipListMode SkipListMode
}

// DeletedQuorum identifies a quorum removed by a ListDiff.
type DeletedQuorum struct {
	LLMQType uint8
	LLMQHash dashhash.Hash256
}

// ListDiff is the deserialized form of a Dash MNLISTDIFF message
// (spec.md §3/§4.4).
type ListDiff struct {
	BaseBlockHash              dashhash.Hash256
	BlockHash                  dashhash.Hash256
	BlockHeight                uint32 // resolved by the host, not carried on the wire
	TotalTransactions          uint32
	CoinbaseTx                 []byte
	CoinbaseMerkleHashes       []dashhash.Hash256
	CoinbaseMerkleFlags        []byte
	DeletedMasternodes         []dashhash.Hash256
	AddedOrModifiedMasternodes []MasternodeEntry
	DeletedQuorums             []DeletedQuorum
	AddedQuorums               []LLMQEntry
}

// QRInfo bundles the five nested diffs and snapshots needed to reconstruct
// rotated-quorum state (spec.md §3/§4.7).
type QRInfo struct {
	SnapshotAtHMinusC  LLMQSnapshot
	SnapshotAtHMinus2C LLMQSnapshot
	SnapshotAtHMinus3C LLMQSnapshot
	SnapshotAtHMinus4C *LLMQSnapshot // present iff ExtraShare

	DiffTip      ListDiff
	DiffH        ListDiff
	DiffHMinusC  ListDiff
	DiffHMinus2C ListDiff
	DiffHMinus3C ListDiff
	DiffHMinus4C *ListDiff // present iff ExtraShare

	ExtraShare         bool
	LastQuorumPerIndex []LLMQEntry
	QuorumSnapshotList []LLMQSnapshot
	MNListDiffList     []ListDiff
}
