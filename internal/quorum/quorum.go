// Package quorum implements the LLMQ commitment validator (spec.md §4.5):
// candidate-member selection by per-quorum score, threshold/popcount checks,
// and the two BLS signature verifications that gate has_valid_quorums.
package quorum

import (
	"sort"

	"github.com/PastaPastaPasta/masternode-diff-processor/internal/bls"
	"github.com/PastaPastaPasta/masternode-diff-processor/internal/masternodelist"
	"github.com/PastaPastaPasta/masternode-diff-processor/internal/wire"
	"github.com/PastaPastaPasta/masternode-diff-processor/pkg/dashhash"
)

// scoredMember pairs a masternode with its per-quorum score for sorting.
type scoredMember struct {
	entry wire.MasternodeEntry
	score dashhash.Hash256
}

// quorumScore is DSHA256(pro_reg_tx_hash || llmq_hash), the ascending sort
// key used to pick a quorum's candidate member set.
func quorumScore(proRegTxHash, llmqHash dashhash.Hash256) dashhash.Hash256 {
	buf := make([]byte, 0, 2*dashhash.Hash256Size)
	buf = append(buf, proRegTxHash[:]...)
	buf = append(buf, llmqHash[:]...)
	return dashhash.DoubleSHA256(buf)
}

// CandidateMembers returns the first llmq_size(llmqType) valid masternodes
// in L, ordered by ascending quorumScore against llmqHash (spec.md §4.5
// step 1).
func CandidateMembers(l *masternodelist.List, llmqType uint8, llmqHash dashhash.Hash256) ([]wire.MasternodeEntry, bool) {
	size, ok := wire.LLMQSize(llmqType)
	if !ok {
		return nil, false
	}

	valid := l.ValidMasternodes()
	scored := make([]scoredMember, len(valid))
	for i, e := range valid {
		scored[i] = scoredMember{entry: e, score: quorumScore(e.ProRegTxHash, llmqHash)}
	}
	sort.Slice(scored, func(i, j int) bool { return scored[i].score.Less(scored[j].score) })

	if len(scored) > size {
		scored = scored[:size]
	}
	out := make([]wire.MasternodeEntry, len(scored))
	for i, s := range scored {
		out[i] = s.entry
	}
	return out, true
}

// CommitmentHash is DSHA256(llmq_type || llmq_hash || valid_members ||
// public_key || verification_vector_hash) (spec.md §4.5 step 3).
func CommitmentHash(q *wire.LLMQEntry) dashhash.Hash256 {
	var buf []byte
	buf = append(buf, q.LLMQType)
	buf = append(buf, q.LLMQHash[:]...)
	buf = append(buf, wire.EncodeBitset(q.ValidMembers)...)
	buf = append(buf, q.PublicKey[:]...)
	buf = append(buf, q.VerificationVectorHash[:]...)
	return dashhash.DoubleSHA256(buf)
}

// Validate runs spec.md §4.5 steps 1-5 against the candidate member set
// drawn from l, returning true iff every check passes. It never returns an
// error: an unverifiable quorum simply fails validation, matching the
// non-aborting partial-validation semantics the rest of the processor uses.
func Validate(l *masternodelist.List, q *wire.LLMQEntry) bool {
	candidates, ok := CandidateMembers(l, q.LLMQType, q.LLMQHash)
	if !ok {
		return false
	}
	threshold, ok := wire.LLMQThreshold(q.LLMQType)
	if !ok {
		return false
	}
	size, _ := wire.LLMQSize(q.LLMQType)

	if q.Signers == nil || q.ValidMembers == nil {
		return false
	}
	if q.Signers.Len() != size || q.ValidMembers.Len() != size {
		return false
	}
	if q.Signers.Count() < threshold || q.ValidMembers.Count() < threshold {
		return false
	}

	commitment := CommitmentHash(q)

	thresholdOK, err := bls.VerifySignature(q.PublicKey[:], commitment[:], q.ThresholdSignature[:])
	if err != nil || !thresholdOK {
		return false
	}

	signerPubKeys := make([][]byte, 0, q.Signers.Count())
	for i := 0; i < len(candidates) && i < size; i++ {
		if q.Signers.Test(i) {
			pk := candidates[i].OperatorPubKey
			signerPubKeys = append(signerPubKeys, pk[:])
		}
	}
	if len(signerPubKeys) == 0 {
		return false
	}
	aggPubKey, err := bls.AggregatePublicKeys(signerPubKeys)
	if err != nil {
		return false
	}

	aggOK, err := bls.VerifySignature(aggPubKey, commitment[:], q.AllCommitmentAggregatedSig[:])
	if err != nil {
		return false
	}
	return aggOK
}
