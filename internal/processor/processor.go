// Package processor implements the C7 facade: the two entry points a host
// calls, process_list_diff and process_qrinfo, wiring together the wire
// codec, diff-apply step, cache, and host callbacks behind a single
// error-coded result.
package processor

import (
	"go.uber.org/zap"

	"github.com/PastaPastaPasta/masternode-diff-processor/internal/cache"
	"github.com/PastaPastaPasta/masternode-diff-processor/internal/diffapply"
	"github.com/PastaPastaPasta/masternode-diff-processor/internal/hostcontract"
	"github.com/PastaPastaPasta/masternode-diff-processor/internal/masternodelist"
	"github.com/PastaPastaPasta/masternode-diff-processor/internal/rotation"
	"github.com/PastaPastaPasta/masternode-diff-processor/internal/wire"
	"github.com/PastaPastaPasta/masternode-diff-processor/pkg/dashhash"
)

// ErrorCode is the facade's result status. Zero (None) means success;
// every other value identifies why a call stopped early or left its result
// unsaved. Depending on the code, the result returned with it is partial,
// unsaved, or nil (ParseError, HasNoBaseBlockHash and UnknownBlockHash from
// ProcessListDiff carry no result).
type ErrorCode uint8

const (
	ErrorNone ErrorCode = iota
	ErrorPersistInRetrieval
	ErrorLocallyStored
	ErrorParseError
	ErrorHasNoBaseBlockHash
	ErrorUnknownBlockHash
)

func (e ErrorCode) String() string {
	switch e {
	case ErrorNone:
		return "None"
	case ErrorPersistInRetrieval:
		return "PersistInRetrieval"
	case ErrorLocallyStored:
		return "LocallyStored"
	case ErrorParseError:
		return "ParseError"
	case ErrorHasNoBaseBlockHash:
		return "HasNoBaseBlockHash"
	case ErrorUnknownBlockHash:
		return "UnknownBlockHash"
	default:
		return "Unknown"
	}
}

// Processor holds the long-lived state a single logical session needs: the
// cache it exclusively owns for the call's duration, and the host it
// delegates persistence and policy decisions to.
type Processor struct {
	host   hostcontract.Host
	cache  *cache.Cache
	logger *zap.Logger
}

// New constructs a Processor. logger may be zap.NewNop() if the host does
// not want structured logging.
func New(host hostcontract.Host, c *cache.Cache, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{host: host, cache: c, logger: logger}
}

// resolveBase finds the base list for a diff, checking the cache first and
// falling back to the host's persisted store.
func (p *Processor) resolveBase(ctx hostcontract.Ctx, baseBlockHash dashhash.Hash256) (*masternodelist.List, bool) {
	if l, ok := p.cache.MasternodeList(baseBlockHash); ok {
		return l, true
	}
	if l, ok := p.host.GetMasternodeListByBlockHash(ctx, baseBlockHash); ok {
		p.cache.PutMasternodeList(l)
		return l, true
	}
	return nil, false
}

// ProcessListDiff decodes and applies one MNLISTDIFF message (spec.md §4.7).
func (p *Processor) ProcessListDiff(ctx hostcontract.Ctx, raw []byte) (*diffapply.Result, ErrorCode) {
	c := dashhash.NewCursor(raw)
	d, err := wire.DecodeListDiff(c)
	if err != nil {
		p.logger.Warn("process_list_diff: malformed message", zap.Error(err))
		return nil, ErrorParseError
	}

	if existing, ok := p.cache.MasternodeList(d.BlockHash); ok {
		p.logger.Debug("process_list_diff: target already cached", zap.String("block_hash", d.BlockHash.String()))
		return &diffapply.Result{List: existing}, ErrorLocallyStored
	}

	if decision := p.host.ShouldProcessDiffWithRange(ctx, d.BaseBlockHash, d.BlockHash); decision != hostcontract.RangeDecisionProceed {
		p.logger.Debug("process_list_diff: host rejected range early", zap.String("block_hash", d.BlockHash.String()), zap.Uint8("decision", uint8(decision)))
		return nil, ErrorLocallyStored
	}

	base, ok := p.resolveBase(ctx, d.BaseBlockHash)
	if !ok {
		p.logger.Warn("process_list_diff: base block hash not resolvable", zap.String("base_block_hash", d.BaseBlockHash.String()))
		return nil, ErrorHasNoBaseBlockHash
	}

	targetHeight := p.host.GetBlockHeightByHash(ctx, d.BlockHash)
	if targetHeight == hostcontract.UnknownHeight {
		p.host.AddInsightLookup(ctx, d.BlockHash)
		p.logger.Warn("process_list_diff: target block hash not resolvable, requested insight lookup", zap.String("block_hash", d.BlockHash.String()))
		return nil, ErrorUnknownBlockHash
	}

	// §4.9's get_merkle_root_by_hash supplies the chain's own Merkle root
	// for the coinbase inclusion check; when the host doesn't know the block,
	// has_valid_coinbase stays false and the commitment-root flags stand on
	// their own.
	var chainRoot *dashhash.Hash256
	if root, ok := p.host.GetMerkleRootByHash(ctx, d.BlockHash); ok {
		chainRoot = &root
	}

	result, err := diffapply.Apply(base, &d, targetHeight, chainRoot, func(llmqType uint8) bool {
		return p.host.ShouldProcessLLMQOfType(ctx, llmqType)
	})
	if err != nil {
		p.logger.Warn("process_list_diff: apply failed", zap.Error(err))
		return nil, ErrorHasNoBaseBlockHash
	}

	p.cache.PutMasternodeList(result.List)
	if !p.host.SaveMasternodeList(ctx, result.List.BlockHash, result.List) {
		p.logger.Warn("process_list_diff: host failed to persist list", zap.String("block_hash", result.List.BlockHash.String()))
		return result, ErrorPersistInRetrieval
	}
	return result, ErrorNone
}

// QRInfoResult bundles the six diffs a QRINFO message resolves into, plus
// its snapshots and auxiliary lists (spec.md §4.7).
type QRInfoResult struct {
	Tip, H, HMinusC, HMinus2C, HMinus3C *diffapply.Result
	HMinus4C                            *diffapply.Result

	SnapshotAtHMinusC, SnapshotAtHMinus2C, SnapshotAtHMinus3C wire.LLMQSnapshot
	SnapshotAtHMinus4C                                        *wire.LLMQSnapshot

	ExtraShare         bool
	LastQuorumPerIndex []wire.LLMQEntry
	QuorumSnapshotList []wire.LLMQSnapshot
	MNListDiffList     []wire.ListDiff

	// RotatedMembers holds the DIP-0024 computed membership (C6) for every
	// rotated-type LLMQ entry found in the h-cycle diff, one per quorum
	// index. Populated only once the h, h-c, h-2c, and h-3c lists all
	// resolved successfully.
	RotatedMembers []RotatedQuorumMembers
}

// RotatedQuorumMembers is the deterministic membership C6 computes for one
// rotated LLMQ entry (spec.md §4.6): four quarters concatenated in
// h-3c, h-2c, h-c, new-quarter order.
type RotatedQuorumMembers struct {
	LLMQType uint8
	LLMQHash dashhash.Hash256
	Index    uint16
	Members  []wire.MasternodeEntry
}

// findQuorumByIndex locates the added quorum of llmqType carrying the given
// DIP-0024 rotation index within a sub-diff's added quorums.
func findQuorumByIndex(d *wire.ListDiff, llmqType uint8, index uint16) (*wire.LLMQEntry, bool) {
	for i := range d.AddedQuorums {
		q := &d.AddedQuorums[i]
		if q.LLMQType == llmqType && q.Index != nil && *q.Index == index {
			return q, true
		}
	}
	return nil, false
}

// computeRotatedMembers invokes C6 for every rotated-type LLMQ entry added
// at h, matching it against its counterparts at h-c, h-2c, h-3c by rotation
// index to assemble the three prior quarters the selector concatenates with
// the newly drawn quarter at h (spec.md §4.6, §2 data flow). A missing
// counterpart at h-c, h-2c or h-3c, or an error from the selector, marks the
// h block hash as needed and skips that entry rather than aborting the whole
// bundle. If any of the h, h-c, h-2c, h-3c results is absent, nothing is
// computed and nothing is marked.
func (p *Processor) computeRotatedMembers(out *QRInfoResult, q *wire.QRInfo) {
	if out.H == nil || out.HMinusC == nil || out.HMinus2C == nil || out.HMinus3C == nil {
		return
	}
	for i := range q.DiffH.AddedQuorums {
		entry := q.DiffH.AddedQuorums[i]
		if !wire.LLMQIsRotated(entry.LLMQType) || entry.Index == nil {
			continue
		}
		index := *entry.Index

		q3c, ok3c := findQuorumByIndex(&q.DiffHMinus3C, entry.LLMQType, index)
		q2c, ok2c := findQuorumByIndex(&q.DiffHMinus2C, entry.LLMQType, index)
		qc, okC := findQuorumByIndex(&q.DiffHMinusC, entry.LLMQType, index)
		if !ok3c || !ok2c || !okC {
			p.cache.MarkNeeded(q.DiffH.BlockHash)
			continue
		}

		// Each prior cycle's quarter is the size-N new-quarter that cycle
		// itself drew (spec.md §4.6), each excluding the quarters drawn in
		// the cycles before it; Members then filters every one through its
		// own snapshot before drawing the fresh quarter at h.
		q3cRaw := rotation.NewQuarter(out.HMinus3C.List, entry.LLMQType, q3c.LLMQHash)
		q2cRaw := rotation.NewQuarter(out.HMinus2C.List, entry.LLMQType, q2c.LLMQHash, q3cRaw)
		qcRaw := rotation.NewQuarter(out.HMinusC.List, entry.LLMQType, qc.LLMQHash, q3cRaw, q2cRaw)

		quartersAtH := [3][]wire.MasternodeEntry{q3cRaw, q2cRaw, qcRaw}
		snapshotsAtH := [3]wire.LLMQSnapshot{q.SnapshotAtHMinus3C, q.SnapshotAtHMinus2C, q.SnapshotAtHMinusC}

		members, err := rotation.Members(p.cache, entry.LLMQType, entry.LLMQHash, &index, quartersAtH, snapshotsAtH, out.H.List)
		if err != nil {
			p.cache.MarkNeeded(q.DiffH.BlockHash)
			continue
		}
		out.RotatedMembers = append(out.RotatedMembers, RotatedQuorumMembers{
			LLMQType: entry.LLMQType,
			LLMQHash: entry.LLMQHash,
			Index:    index,
			Members:  members,
		})
	}
}

// ProcessQRInfo decodes and applies one QRINFO message. Dependency ordering
// is strict: h-4c (if present), then h-3c, h-2c, h-c, h, tip — each diff's
// base must already be in the cache by the time it is applied, and
// snapshots are committed to the cache before their corresponding diff is
// processed (spec.md §4.7).
func (p *Processor) ProcessQRInfo(ctx hostcontract.Ctx, raw []byte) (*QRInfoResult, ErrorCode) {
	c := dashhash.NewCursor(raw)
	q, err := wire.DecodeQRInfo(c)
	if err != nil {
		p.logger.Warn("process_qrinfo: malformed message", zap.Error(err))
		return nil, ErrorParseError
	}

	out := &QRInfoResult{
		ExtraShare:          q.ExtraShare,
		SnapshotAtHMinusC:   q.SnapshotAtHMinusC,
		SnapshotAtHMinus2C:  q.SnapshotAtHMinus2C,
		SnapshotAtHMinus3C:  q.SnapshotAtHMinus3C,
		SnapshotAtHMinus4C:  q.SnapshotAtHMinus4C,
		LastQuorumPerIndex:  q.LastQuorumPerIndex,
		QuorumSnapshotList:  q.QuorumSnapshotList,
		MNListDiffList:      q.MNListDiffList,
	}

	p.cache.PutSnapshot(q.DiffHMinus3C.BlockHash, q.SnapshotAtHMinus3C)
	p.host.SaveLLMQSnapshot(ctx, q.DiffHMinus3C.BlockHash, q.SnapshotAtHMinus3C)
	p.cache.PutSnapshot(q.DiffHMinus2C.BlockHash, q.SnapshotAtHMinus2C)
	p.host.SaveLLMQSnapshot(ctx, q.DiffHMinus2C.BlockHash, q.SnapshotAtHMinus2C)
	p.cache.PutSnapshot(q.DiffHMinusC.BlockHash, q.SnapshotAtHMinusC)
	p.host.SaveLLMQSnapshot(ctx, q.DiffHMinusC.BlockHash, q.SnapshotAtHMinusC)
	if q.ExtraShare && q.SnapshotAtHMinus4C != nil && q.DiffHMinus4C != nil {
		p.cache.PutSnapshot(q.DiffHMinus4C.BlockHash, *q.SnapshotAtHMinus4C)
		p.host.SaveLLMQSnapshot(ctx, q.DiffHMinus4C.BlockHash, *q.SnapshotAtHMinus4C)
	}

	// Route each sub-diff back through ProcessListDiff so the persistence
	// and error-coding logic has exactly one implementation; the re-encode
	// is cheap next to a DKG-sized quorum payload.
	applyOne := func(d *wire.ListDiff) (*diffapply.Result, ErrorCode) {
		raw := d.Encode()
		return p.ProcessListDiff(ctx, raw)
	}

	if q.ExtraShare && q.DiffHMinus4C != nil {
		res, code := applyOne(q.DiffHMinus4C)
		out.HMinus4C = res
		if code != ErrorNone && code != ErrorLocallyStored {
			return out, code
		}
	}

	res3c, code := applyOne(&q.DiffHMinus3C)
	out.HMinus3C = res3c
	if code != ErrorNone && code != ErrorLocallyStored {
		return out, code
	}

	res2c, code := applyOne(&q.DiffHMinus2C)
	out.HMinus2C = res2c
	if code != ErrorNone && code != ErrorLocallyStored {
		return out, code
	}

	resC, code := applyOne(&q.DiffHMinusC)
	out.HMinusC = resC
	if code != ErrorNone && code != ErrorLocallyStored {
		return out, code
	}

	resH, code := applyOne(&q.DiffH)
	out.H = resH
	if code != ErrorNone && code != ErrorLocallyStored {
		return out, code
	}

	resTip, code := applyOne(&q.DiffTip)
	out.Tip = resTip
	if code != ErrorNone && code != ErrorLocallyStored {
		return out, code
	}

	p.computeRotatedMembers(out, &q)

	return out, ErrorNone
}
