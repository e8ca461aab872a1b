// Package diffapply implements C4: reconstructing a MasternodeList from a
// base list and a ListDiff, verifying the result against the diff's
// coinbase commitments.
package diffapply

import (
	"errors"

	"github.com/PastaPastaPasta/masternode-diff-processor/internal/masternodelist"
	"github.com/PastaPastaPasta/masternode-diff-processor/internal/merkle"
	"github.com/PastaPastaPasta/masternode-diff-processor/internal/quorum"
	"github.com/PastaPastaPasta/masternode-diff-processor/internal/wire"
	"github.com/PastaPastaPasta/masternode-diff-processor/pkg/dashhash"
)

var (
	// ErrBaseMismatch is returned when D.base_block_hash does not match the
	// supplied base list's block hash, and the host cannot supply the
	// correct base.
	ErrBaseMismatch = errors.New("diffapply: base block hash mismatch")
	// ErrUnknownBlock is returned when the height of base_block_hash or
	// block_hash cannot be resolved.
	ErrUnknownBlock = errors.New("diffapply: unknown block")
)

// ShouldProcessLLMQType lets the host gate which quorum types get verified
// (spec.md §4.4 step 3); quorum types for which it returns false are stored
// with Verified == false without running C5.
type ShouldProcessLLMQType func(llmqType uint8) bool

// Result is the outcome of applying one ListDiff, carrying the reconstructed
// list and every verification flag. None of the boolean checks failing
// aborts the computation — the result always carries all five fields
// (spec.md §4.4 step 6).
type Result struct {
	List                 *masternodelist.List
	HasFoundCoinbase     bool
	HasValidCoinbase     bool
	HasValidMNListRoot   bool
	HasValidLLMQListRoot bool
	HasValidQuorums      bool
}

// Apply reconstructs the list at D.block_hash from base and D, verifying it
// against D's coinbase commitments (spec.md §4.4). blockHeight resolves
// block_hash, required for the ErrUnknownBlock check and to stamp
// update_height on modified entries. chainMerkleRoot is the block's own
// Merkle root as known to the host's header chain, or nil when the host
// cannot supply it; without it has_valid_coinbase stays false, since the
// inclusion proof has nothing trusted to resolve against.
func Apply(base *masternodelist.List, d *wire.ListDiff, blockHeight uint32, chainMerkleRoot *dashhash.Hash256, shouldProcess ShouldProcessLLMQType) (*Result, error) {
	if base.BlockHash != d.BaseBlockHash {
		return nil, ErrBaseMismatch
	}
	// ^uint32(0) is the host's "height unknown" sentinel.
	if blockHeight == ^uint32(0) {
		return nil, ErrUnknownBlock
	}

	l := base.Clone()
	l.BlockHash = d.BlockHash
	l.Height = blockHeight

	// Step 1-2: masternode deletions then additions/replacements.
	for _, h := range d.DeletedMasternodes {
		delete(l.Entries, h)
	}
	for _, e := range d.AddedOrModifiedMasternodes {
		e.UpdateHeight = blockHeight
		l.Entries[e.ProRegTxHash] = e
	}

	// Step 3: quorum deletions then additions, validated per-type.
	for _, dq := range d.DeletedQuorums {
		l.DeleteQuorum(dq.LLMQType, dq.LLMQHash)
	}
	result := &Result{List: l}
	result.HasValidQuorums = true
	for i := range d.AddedQuorums {
		q := d.AddedQuorums[i]
		if shouldProcess != nil && shouldProcess(q.LLMQType) {
			q.Verified = quorum.Validate(l, &q)
			if !q.Verified {
				result.HasValidQuorums = false
			}
		} else {
			q.Verified = false
		}
		l.SetQuorum(q.LLMQType, q.LLMQHash, q)
	}
	l.InvalidateCaches()

	// Step 4: compute both Merkle roots.
	mnRoot := l.MasternodeMerkleRoot()
	llmqRoot := l.LLMQMerkleRoot()

	// Step 5: decode the coinbase and compare commitments. A coinbase that
	// fails to decode as a CbTx special transaction leaves has_found_coinbase
	// and the two root flags false, but never aborts Apply.
	cb, err := wire.DecodeCoinbaseCommitments(d.CoinbaseTx)
	if err == nil {
		result.HasFoundCoinbase = true
		result.HasValidMNListRoot = cb.MerkleRootMNList == mnRoot
		if cb.HasMerkleRootQuorums {
			result.HasValidLLMQListRoot = cb.MerkleRootQuorums == llmqRoot
		}
	}

	// has_valid_coinbase is an orthogonal check: the coinbase's inclusion
	// proof must resolve to the block's own Merkle root, regardless of what
	// the embedded commitments say.
	if chainMerkleRoot != nil {
		coinbaseHash := dashhash.DoubleSHA256(d.CoinbaseTx)
		proof := merkle.Proof{Hashes: d.CoinbaseMerkleHashes, Flags: d.CoinbaseMerkleFlags}
		if proofRoot, proofErr := merkle.VerifyCoinbaseProof(coinbaseHash, proof, d.TotalTransactions); proofErr == nil {
			result.HasValidCoinbase = merkle.VerifyAgainstRoot(proofRoot, *chainMerkleRoot)
		}
	}

	return result, nil
}
