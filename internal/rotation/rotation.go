// Package rotation implements the DIP-0024 rotated-quorum selector
// (spec.md §4.6): deriving a rotated quorum's membership from four quarters
// drawn across the heights h, h-c, h-2c, h-3c, using each cycle's LLMQ
// snapshot to decide which positions of the previous quarters carry
// forward, and scoring the masternode list at h for the new quarter.
package rotation

import (
	"errors"
	"sort"

	"github.com/PastaPastaPasta/masternode-diff-processor/internal/cache"
	"github.com/PastaPastaPasta/masternode-diff-processor/internal/masternodelist"
	"github.com/PastaPastaPasta/masternode-diff-processor/internal/wire"
	"github.com/PastaPastaPasta/masternode-diff-processor/pkg/dashhash"
)

// ErrPendingDependencies is returned by Members when the masternode list at H
// is nil. Members does not look up earlier cycles' lists or snapshots in the
// cache; the caller passes them in. On this error the C7 facade marks the h
// block hash as needed in the cache and skips that quorum.
var ErrPendingDependencies = errors.New("rotation: pending dependencies")

// Quarter extracts the "kept forward" subset of a previous cycle's quorum
// according to its snapshot's skip-list mode (spec.md §4.6).
func Quarter(quorum []wire.MasternodeEntry, snapshot wire.LLMQSnapshot) []wire.MasternodeEntry {
	switch snapshot.SkipListMode {
	case wire.SkipListModeSkipAll:
		return nil
	case wire.SkipListModeNoSkipping:
		if snapshot.MemberList == nil {
			return nil
		}
		out := make([]wire.MasternodeEntry, 0, snapshot.MemberList.Count())
		for i := 0; i < snapshot.MemberList.Len() && i < len(quorum); i++ {
			if snapshot.MemberList.Test(i) {
				out = append(out, quorum[i])
			}
		}
		return out
	case wire.SkipListModeSkipFirst:
		skip := len(snapshot.SkipList)
		if skip > len(quorum) {
			skip = len(quorum)
		}
		out := make([]wire.MasternodeEntry, 0, len(quorum)-skip)
		out = append(out, quorum[skip:]...)
		return out
	case wire.SkipListModeSkipExcept:
		out := make([]wire.MasternodeEntry, 0, len(snapshot.SkipList))
		for _, pos := range snapshot.SkipList {
			if pos >= 0 && int(pos) < len(quorum) {
				out = append(out, quorum[pos])
			}
		}
		return out
	default:
		return nil
	}
}

// newQuarterScore is DSHA256(mn.confirmed_hash XOR llmq_hash || mn.pro_reg_tx_hash),
// the ascending sort key NewQuarter uses (spec.md §4.6).
func newQuarterScore(mn wire.MasternodeEntry, llmqHash dashhash.Hash256) dashhash.Hash256 {
	var xored dashhash.Hash256
	for i := range xored {
		xored[i] = mn.ConfirmedHash[i] ^ llmqHash[i]
	}
	buf := make([]byte, 0, 2*dashhash.Hash256Size)
	buf = append(buf, xored[:]...)
	buf = append(buf, mn.ProRegTxHash[:]...)
	return dashhash.DoubleSHA256(buf)
}

// NewQuarter selects the N = llmq_size/4 masternodes for the current cycle's
// new quarter from the list at H, excluding masternodes already present in
// any of the three previous quarters. If fewer than N candidates remain
// after exclusion, already-chosen candidates are reused by wrapping back to
// the start of the sorted candidate list (the reference's "modulo"
// fallback, spec.md §4.6).
func NewQuarter(listAtH *masternodelist.List, llmqType uint8, llmqHash dashhash.Hash256, previousQuarters ...[]wire.MasternodeEntry) []wire.MasternodeEntry {
	size, ok := wire.LLMQSize(llmqType)
	if !ok {
		return nil
	}
	n := size / 4

	excluded := make(map[dashhash.Hash256]struct{})
	for _, q := range previousQuarters {
		for _, mn := range q {
			excluded[mn.ProRegTxHash] = struct{}{}
		}
	}

	type scored struct {
		entry wire.MasternodeEntry
		score dashhash.Hash256
	}
	candidates := make([]scored, 0)
	for _, mn := range listAtH.ValidMasternodes() {
		if _, skip := excluded[mn.ProRegTxHash]; skip {
			continue
		}
		candidates = append(candidates, scored{entry: mn, score: newQuarterScore(mn, llmqHash)})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].score.Less(candidates[j].score) })

	out := make([]wire.MasternodeEntry, 0, n)
	for i := 0; i < n && i < len(candidates); i++ {
		out = append(out, candidates[i].entry)
	}
	// Modulo fallback: if exclusion left fewer than N distinct candidates,
	// reuse already-chosen ones in score order to pad out to N.
	for len(out) < n && len(out) > 0 {
		out = append(out, out[len(out)%len(candidates)])
	}
	return out
}

// Members computes Members(H) = Quarter(H-3c) ++ Quarter(H-2c) ++
// Quarter(H-c) ++ NewQuarter(H), caching the result in c's llmq_members and,
// when index is non-nil, llmq_indexed_members maps.
//
// quartersAtH holds the already-computed quorum-candidate sequences at
// h-3c, h-2c, h-c (in that order) that the corresponding snapshots select
// from; listAtH is the masternode list the new quarter is drawn from.
func Members(c *cache.Cache, llmqType uint8, llmqHash dashhash.Hash256, index *uint16, quartersAtH [3][]wire.MasternodeEntry, snapshotsAtH [3]wire.LLMQSnapshot, listAtH *masternodelist.List) ([]wire.MasternodeEntry, error) {
	if listAtH == nil {
		return nil, ErrPendingDependencies
	}

	q3c := Quarter(quartersAtH[0], snapshotsAtH[0])
	q2c := Quarter(quartersAtH[1], snapshotsAtH[1])
	qc := Quarter(quartersAtH[2], snapshotsAtH[2])
	newQ := NewQuarter(listAtH, llmqType, llmqHash, q3c, q2c, qc)

	members := make([]wire.MasternodeEntry, 0, len(q3c)+len(q2c)+len(qc)+len(newQ))
	members = append(members, q3c...)
	members = append(members, q2c...)
	members = append(members, qc...)
	members = append(members, newQ...)

	c.PutMembers(llmqType, llmqHash, members)
	if index != nil {
		c.PutIndexedMembers(llmqType, llmqHash, *index, members)
	}
	return members, nil
}
