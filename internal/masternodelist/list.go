// Package masternodelist holds the MasternodeList model: the set of
// masternode and quorum entries known as of a given block, plus the
// two derived Merkle roots the coinbase commits to.
package masternodelist

import (
	"sort"

	"github.com/PastaPastaPasta/masternode-diff-processor/internal/merkle"
	"github.com/PastaPastaPasta/masternode-diff-processor/internal/wire"
	"github.com/PastaPastaPasta/masternode-diff-processor/pkg/dashhash"
)

// List is the masternode/quorum state as of a single block. Iteration order
// over Entries/Quorums is irrelevant; the two Merkle roots below are the
// only canonically-ordered views of this state (spec.md §3's "canonical
// order induced by sort of keys").
type List struct {
	BlockHash dashhash.Hash256
	Height    uint32

	Entries map[dashhash.Hash256]wire.MasternodeEntry
	Quorums map[quorumKey]wire.LLMQEntry

	mnRootCached   *dashhash.Hash256
	llmqRootCached *dashhash.Hash256
}

type quorumKey struct {
	llmqType uint8
	llmqHash dashhash.Hash256
}

// New returns an empty list anchored at the given block.
func New(blockHash dashhash.Hash256, height uint32) *List {
	return &List{
		BlockHash: blockHash,
		Height:    height,
		Entries:   make(map[dashhash.Hash256]wire.MasternodeEntry),
		Quorums:   make(map[quorumKey]wire.LLMQEntry),
	}
}

// Clone produces a deep-enough copy safe to mutate independently of l: a new
// list sharing no map with the original, suitable as the starting point for
// applying a diff against a persisted base (spec.md §4.4 step 1).
func (l *List) Clone() *List {
	clone := New(l.BlockHash, l.Height)
	for k, v := range l.Entries {
		clone.Entries[k] = v
	}
	for k, v := range l.Quorums {
		clone.Quorums[k] = v
	}
	return clone
}

// Entry looks up a masternode by its pro_reg_tx_hash.
func (l *List) Entry(proRegTxHash dashhash.Hash256) (wire.MasternodeEntry, bool) {
	e, ok := l.Entries[proRegTxHash]
	return e, ok
}

// Quorum looks up a quorum by (llmq_type, llmq_hash).
func (l *List) Quorum(llmqType uint8, llmqHash dashhash.Hash256) (wire.LLMQEntry, bool) {
	q, ok := l.Quorums[quorumKey{llmqType, llmqHash}]
	return q, ok
}

// SetQuorum inserts or replaces the quorum entry for (llmq_type, llmq_hash).
func (l *List) SetQuorum(llmqType uint8, llmqHash dashhash.Hash256, entry wire.LLMQEntry) {
	l.Quorums[quorumKey{llmqType, llmqHash}] = entry
}

// DeleteQuorum removes the quorum entry for (llmq_type, llmq_hash), if present.
func (l *List) DeleteQuorum(llmqType uint8, llmqHash dashhash.Hash256) {
	delete(l.Quorums, quorumKey{llmqType, llmqHash})
}

// ValidMasternodes returns the masternodes with is_valid == true, in no
// particular order. Callers that need a canonical order (score-sorting for
// quorum membership, C5/C6) sort the result themselves.
func (l *List) ValidMasternodes() []wire.MasternodeEntry {
	out := make([]wire.MasternodeEntry, 0, len(l.Entries))
	for _, e := range l.Entries {
		if e.IsValid {
			out = append(out, e)
		}
	}
	return out
}

// sortedProRegHashes returns Entries' keys sorted ascending.
func (l *List) sortedProRegHashes() []dashhash.Hash256 {
	keys := make([]dashhash.Hash256, 0, len(l.Entries))
	for k := range l.Entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

// sortedQuorumKeys returns Quorums' keys sorted ascending by (llmq_type, llmq_hash).
func (l *List) sortedQuorumKeys() []quorumKey {
	keys := make([]quorumKey, 0, len(l.Quorums))
	for k := range l.Quorums {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].llmqType != keys[j].llmqType {
			return keys[i].llmqType < keys[j].llmqType
		}
		return keys[i].llmqHash.Less(keys[j].llmqHash)
	})
	return keys
}

// MasternodeMerkleRoot is the Merkle root of entry_hash values sorted
// ascending by pro_reg_tx_hash (spec.md §4.3). Cached after first computation
// and invalidated by InvalidateCaches. Each entry's entry_hash is recomputed
// from its fields here, not taken from EntryHashCached.
func (l *List) MasternodeMerkleRoot() dashhash.Hash256 {
	if l.mnRootCached != nil {
		return *l.mnRootCached
	}
	keys := l.sortedProRegHashes()
	leaves := make([]dashhash.Hash256, len(keys))
	for i, k := range keys {
		e := l.Entries[k]
		leaves[i] = e.EntryHash()
	}
	root := merkle.Root(leaves)
	l.mnRootCached = &root
	return root
}

// LLMQMerkleRoot is the Merkle root of LLMQEntry.entry_hash values across all
// llmq_types, sorted ascending by (llmq_type, llmq_hash) (spec.md §4.3).
func (l *List) LLMQMerkleRoot() dashhash.Hash256 {
	if l.llmqRootCached != nil {
		return *l.llmqRootCached
	}
	keys := l.sortedQuorumKeys()
	leaves := make([]dashhash.Hash256, len(keys))
	for i, k := range keys {
		q := l.Quorums[k]
		leaves[i] = q.EntryHash()
	}
	root := merkle.Root(leaves)
	l.llmqRootCached = &root
	return root
}

// InvalidateCaches drops the cached Merkle roots; callers must call this
// after mutating Entries or Quorums directly.
func (l *List) InvalidateCaches() {
	l.mnRootCached = nil
	l.llmqRootCached = nil
}
