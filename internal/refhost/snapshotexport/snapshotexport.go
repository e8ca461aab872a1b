// Package snapshotexport gives operators a portable, human-inspectable dump
// of a host's cache contents (a MasternodeList plus its LLMQSnapshot) for
// copying cache state between hosts or attaching to a bug report. This is a
// distinct concern from C11's bbolt persistence, which reuses C1's wire
// codec byte-for-byte; export uses keyasint CBOR, the format the teacher
// uses for its own cross-process messages (internal/p2p/messages.go).
package snapshotexport

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/PastaPastaPasta/masternode-diff-processor/internal/masternodelist"
	"github.com/PastaPastaPasta/masternode-diff-processor/internal/wire"
	"github.com/PastaPastaPasta/masternode-diff-processor/pkg/dashhash"
)

type exportedEntry struct {
	ProRegTxHash   []byte `cbor:"1,keyasint"`
	ConfirmedHash  []byte `cbor:"2,keyasint"`
	IP             []byte `cbor:"3,keyasint"`
	Port           uint16 `cbor:"4,keyasint"`
	OperatorPubKey []byte `cbor:"5,keyasint"`
	VotingKeyHash  []byte `cbor:"6,keyasint"`
	IsValid        bool   `cbor:"7,keyasint"`
	UpdateHeight   uint32 `cbor:"8,keyasint"`
}

type exportedQuorum struct {
	LLMQType                   uint8  `cbor:"1,keyasint"`
	LLMQHash                   []byte `cbor:"2,keyasint"`
	Version                    uint16 `cbor:"3,keyasint"`
	HasIndex                   bool   `cbor:"4,keyasint"`
	Index                      uint16 `cbor:"5,keyasint"`
	SignersN                   int    `cbor:"6,keyasint"`
	Signers                    []byte `cbor:"7,keyasint"`
	ValidMembersN              int    `cbor:"8,keyasint"`
	ValidMembers               []byte `cbor:"9,keyasint"`
	PublicKey                  []byte `cbor:"10,keyasint"`
	VerificationVectorHash     []byte `cbor:"11,keyasint"`
	ThresholdSignature         []byte `cbor:"12,keyasint"`
	AllCommitmentAggregatedSig []byte `cbor:"13,keyasint"`
	Verified                   bool   `cbor:"14,keyasint"`
}

type exportedList struct {
	BlockHash []byte           `cbor:"1,keyasint"`
	Height    uint32           `cbor:"2,keyasint"`
	Entries   []exportedEntry  `cbor:"3,keyasint"`
	Quorums   []exportedQuorum `cbor:"4,keyasint"`
}

type exportedSnapshot struct {
	BlockHash      []byte  `cbor:"1,keyasint"`
	MemberListN    int     `cbor:"2,keyasint"`
	MemberListBits []byte  `cbor:"3,keyasint"`
	SkipList       []int32 `cbor:"4,keyasint"`
	SkipListMode   uint8   `cbor:"5,keyasint"`
}

// EncodeList serializes a MasternodeList to its portable CBOR form.
func EncodeList(l *masternodelist.List) ([]byte, error) {
	out := exportedList{
		BlockHash: l.BlockHash.Bytes(),
		Height:    l.Height,
	}
	for _, e := range l.Entries {
		out.Entries = append(out.Entries, exportedEntry{
			ProRegTxHash:   e.ProRegTxHash.Bytes(),
			ConfirmedHash:  e.ConfirmedHash.Bytes(),
			IP:             e.IP[:],
			Port:           e.Port,
			OperatorPubKey: e.OperatorPubKey[:],
			VotingKeyHash:  e.VotingKeyHash[:],
			IsValid:        e.IsValid,
			UpdateHeight:   e.UpdateHeight,
		})
	}
	for _, q := range l.Quorums {
		eq := exportedQuorum{
			LLMQType:                   q.LLMQType,
			LLMQHash:                   q.LLMQHash.Bytes(),
			Version:                    q.Version,
			SignersN:                   q.Signers.Len(),
			Signers:                    wire.EncodeBitset(q.Signers),
			ValidMembersN:              q.ValidMembers.Len(),
			ValidMembers:               wire.EncodeBitset(q.ValidMembers),
			PublicKey:                  q.PublicKey[:],
			VerificationVectorHash:     q.VerificationVectorHash.Bytes(),
			ThresholdSignature:         q.ThresholdSignature[:],
			AllCommitmentAggregatedSig: q.AllCommitmentAggregatedSig[:],
			Verified:                   q.Verified,
		}
		if q.Index != nil {
			eq.HasIndex = true
			eq.Index = *q.Index
		}
		out.Quorums = append(out.Quorums, eq)
	}
	return cbor.Marshal(out)
}

// DecodeList reconstructs a MasternodeList from its CBOR export form.
func DecodeList(data []byte) (*masternodelist.List, error) {
	var in exportedList
	if err := cbor.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("snapshotexport: decode list: %w", err)
	}
	blockHash, err := hashFromBytes(in.BlockHash)
	if err != nil {
		return nil, fmt.Errorf("snapshotexport: block_hash: %w", err)
	}
	l := masternodelist.New(blockHash, in.Height)

	for _, ee := range in.Entries {
		var e wire.MasternodeEntry
		if e.ProRegTxHash, err = hashFromBytes(ee.ProRegTxHash); err != nil {
			return nil, fmt.Errorf("snapshotexport: pro_reg_tx_hash: %w", err)
		}
		if e.ConfirmedHash, err = hashFromBytes(ee.ConfirmedHash); err != nil {
			return nil, fmt.Errorf("snapshotexport: confirmed_hash: %w", err)
		}
		if len(ee.IP) != len(e.IP) {
			return nil, fmt.Errorf("snapshotexport: ip: expected %d bytes, got %d", len(e.IP), len(ee.IP))
		}
		copy(e.IP[:], ee.IP)
		e.Port = ee.Port
		if len(ee.OperatorPubKey) != len(e.OperatorPubKey) {
			return nil, fmt.Errorf("snapshotexport: operator_pub_key: expected %d bytes, got %d", len(e.OperatorPubKey), len(ee.OperatorPubKey))
		}
		copy(e.OperatorPubKey[:], ee.OperatorPubKey)
		if len(ee.VotingKeyHash) != len(e.VotingKeyHash) {
			return nil, fmt.Errorf("snapshotexport: voting_key_hash: expected %d bytes, got %d", len(e.VotingKeyHash), len(ee.VotingKeyHash))
		}
		copy(e.VotingKeyHash[:], ee.VotingKeyHash)
		e.IsValid = ee.IsValid
		e.UpdateHeight = ee.UpdateHeight
		e.EntryHash()
		l.Entries[e.ProRegTxHash] = e
	}

	for _, eq := range in.Quorums {
		var q wire.LLMQEntry
		q.LLMQType = eq.LLMQType
		if q.LLMQHash, err = hashFromBytes(eq.LLMQHash); err != nil {
			return nil, fmt.Errorf("snapshotexport: llmq_hash: %w", err)
		}
		q.Version = eq.Version
		if eq.HasIndex {
			idx := eq.Index
			q.Index = &idx
		}
		if q.Signers, err = wire.DecodeBitset(eq.Signers, eq.SignersN); err != nil {
			return nil, fmt.Errorf("snapshotexport: signers: %w", err)
		}
		if q.ValidMembers, err = wire.DecodeBitset(eq.ValidMembers, eq.ValidMembersN); err != nil {
			return nil, fmt.Errorf("snapshotexport: valid_members: %w", err)
		}
		if len(eq.PublicKey) != len(q.PublicKey) {
			return nil, fmt.Errorf("snapshotexport: public_key: expected %d bytes, got %d", len(q.PublicKey), len(eq.PublicKey))
		}
		copy(q.PublicKey[:], eq.PublicKey)
		if q.VerificationVectorHash, err = hashFromBytes(eq.VerificationVectorHash); err != nil {
			return nil, fmt.Errorf("snapshotexport: verification_vector_hash: %w", err)
		}
		if len(eq.ThresholdSignature) != len(q.ThresholdSignature) {
			return nil, fmt.Errorf("snapshotexport: threshold_signature: expected %d bytes, got %d", len(q.ThresholdSignature), len(eq.ThresholdSignature))
		}
		copy(q.ThresholdSignature[:], eq.ThresholdSignature)
		if len(eq.AllCommitmentAggregatedSig) != len(q.AllCommitmentAggregatedSig) {
			return nil, fmt.Errorf("snapshotexport: all_commitment_aggregated_signature: expected %d bytes, got %d", len(q.AllCommitmentAggregatedSig), len(eq.AllCommitmentAggregatedSig))
		}
		copy(q.AllCommitmentAggregatedSig[:], eq.AllCommitmentAggregatedSig)
		q.Verified = eq.Verified
		q.EntryHash()
		l.SetQuorum(q.LLMQType, q.LLMQHash, q)
	}

	return l, nil
}

// EncodeSnapshot serializes an LLMQSnapshot keyed by the block hash it was
// captured at.
func EncodeSnapshot(blockHash dashhash.Hash256, snapshot wire.LLMQSnapshot) ([]byte, error) {
	out := exportedSnapshot{
		BlockHash:      blockHash.Bytes(),
		MemberListN:    snapshot.MemberList.Len(),
		MemberListBits: wire.EncodeBitset(snapshot.MemberList),
		SkipList:       snapshot.SkipList,
		SkipListMode:   uint8(snapshot.SkipListMode),
	}
	return cbor.Marshal(out)
}

// DecodeSnapshot reconstructs the (block_hash, LLMQSnapshot) pair EncodeSnapshot produced.
func DecodeSnapshot(data []byte) (dashhash.Hash256, wire.LLMQSnapshot, error) {
	var in exportedSnapshot
	if err := cbor.Unmarshal(data, &in); err != nil {
		return dashhash.Hash256{}, wire.LLMQSnapshot{}, fmt.Errorf("snapshotexport: decode snapshot: %w", err)
	}
	blockHash, err := hashFromBytes(in.BlockHash)
	if err != nil {
		return dashhash.Hash256{}, wire.LLMQSnapshot{}, fmt.Errorf("snapshotexport: block_hash: %w", err)
	}
	memberList, err := wire.DecodeBitset(in.MemberListBits, in.MemberListN)
	if err != nil {
		return dashhash.Hash256{}, wire.LLMQSnapshot{}, fmt.Errorf("snapshotexport: member_list: %w", err)
	}
	snapshot := wire.LLMQSnapshot{
		MemberList:   memberList,
		SkipList:     in.SkipList,
		SkipListMode: wire.SkipListMode(in.SkipListMode),
	}
	return blockHash, snapshot, nil
}

func hashFromBytes(b []byte) (dashhash.Hash256, error) {
	var h dashhash.Hash256
	if len(b) != dashhash.Hash256Size {
		return h, fmt.Errorf("expected %d bytes, got %d", dashhash.Hash256Size, len(b))
	}
	copy(h[:], b)
	return h, nil
}
