// Package refhost is the reference C9 implementation (C11): bbolt-backed
// persistence, Prometheus counters/gauges, and zap structured logging,
// wired together behind hostcontract.Host. It demonstrates the contract
// end to end; it is not part of the processor's core compute path.
package refhost

import (
	"go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/PastaPastaPasta/masternode-diff-processor/internal/hostcontract"
	"github.com/PastaPastaPasta/masternode-diff-processor/internal/masternodelist"
	"github.com/PastaPastaPasta/masternode-diff-processor/internal/wire"
	"github.com/PastaPastaPasta/masternode-diff-processor/pkg/dashhash"
)

// HostConfig is the reference host's explicit options struct (spec.md
// §4.12), following the teacher's convention of a typed constructor
// argument rather than environment variables or a file-backed layer.
type HostConfig struct {
	DBPath            string
	Logger            *zap.Logger
	ShouldProcessType func(llmqType uint8) bool

	// ChainLookup resolves block heights/hashes/merkle roots; in
	// production this is backed by a node's chain index. Left nil in
	// tests that don't exercise height-dependent lookups.
	ChainLookup ChainLookup
}

// ChainLookup is the subset of chain-header knowledge the reference host
// needs but does not itself store (spec.md §6 treats this as external).
type ChainLookup interface {
	BlockHeightByHash(hash dashhash.Hash256) (uint32, bool)
	BlockHashByHeight(height uint32) (dashhash.Hash256, bool)
	MerkleRootByHash(hash dashhash.Hash256) (dashhash.Hash256, bool)
}

// Host is the reference hostcontract.Host implementation.
type Host struct {
	store             *BoltStore
	logger            *zap.Logger
	shouldProcessType func(llmqType uint8) bool
	chain             ChainLookup
}

var _ hostcontract.Host = (*Host)(nil)

// New opens (or creates) the bbolt database at cfg.DBPath and returns a
// ready-to-use Host.
func New(cfg HostConfig) (*Host, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	store, err := NewBoltStore(cfg.DBPath, logger)
	if err != nil {
		return nil, err
	}
	shouldProcess := cfg.ShouldProcessType
	if shouldProcess == nil {
		shouldProcess = func(uint8) bool { return true }
	}
	return &Host{store: store, logger: logger, shouldProcessType: shouldProcess, chain: cfg.ChainLookup}, nil
}

// Close closes the underlying bbolt database.
func (h *Host) Close() error {
	return h.store.Close()
}

func (h *Host) GetBlockHeightByHash(ctx hostcontract.Ctx, hash dashhash.Hash256) uint32 {
	if h.chain == nil {
		return hostcontract.UnknownHeight
	}
	height, ok := h.chain.BlockHeightByHash(hash)
	if !ok {
		return hostcontract.UnknownHeight
	}
	return height
}

func (h *Host) GetBlockHashByHeight(ctx hostcontract.Ctx, height uint32) (dashhash.Hash256, bool) {
	if h.chain == nil {
		return dashhash.Hash256{}, false
	}
	return h.chain.BlockHashByHeight(height)
}

func (h *Host) GetMerkleRootByHash(ctx hostcontract.Ctx, hash dashhash.Hash256) (dashhash.Hash256, bool) {
	if h.chain == nil {
		return dashhash.Hash256{}, false
	}
	return h.chain.MerkleRootByHash(hash)
}

func (h *Host) GetMasternodeListByBlockHash(ctx hostcontract.Ctx, hash dashhash.Hash256) (*masternodelist.List, bool) {
	return h.store.GetMasternodeList(hash)
}

func (h *Host) SaveMasternodeList(ctx hostcontract.Ctx, hash dashhash.Hash256, list *masternodelist.List) bool {
	if err := h.store.PutMasternodeList(list); err != nil {
		h.logger.Warn("refhost: failed to persist masternode list", zap.String("block_hash", hash.String()), zap.Error(err))
		return false
	}
	ListsCached.Set(float64(h.store.Count()))
	return true
}

func (h *Host) GetLLMQSnapshotByBlockHash(ctx hostcontract.Ctx, hash dashhash.Hash256) (wire.LLMQSnapshot, bool) {
	return h.store.GetLLMQSnapshot(hash)
}

func (h *Host) SaveLLMQSnapshot(ctx hostcontract.Ctx, hash dashhash.Hash256, snapshot wire.LLMQSnapshot) bool {
	if err := h.store.PutLLMQSnapshot(hash, snapshot); err != nil {
		h.logger.Warn("refhost: failed to persist llmq snapshot", zap.String("block_hash", hash.String()), zap.Error(err))
		return false
	}
	n := 0
	_ = h.store.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketLLMQSnapshots).Stats().KeyN
		return nil
	})
	SnapshotsCached.Set(float64(n))
	return true
}

func (h *Host) ShouldProcessLLMQOfType(ctx hostcontract.Ctx, llmqType uint8) bool {
	return h.shouldProcessType(llmqType)
}

// ValidateLLMQ is not used by the reference host: quorum commitment
// validation is the processor's own job (C5), not a host policy decision,
// so this always defers by returning true.
func (h *Host) ValidateLLMQ(ctx hostcontract.Ctx, data []byte) bool {
	return true
}

func (h *Host) ShouldProcessDiffWithRange(ctx hostcontract.Ctx, base, target dashhash.Hash256) hostcontract.RangeDecision {
	return hostcontract.RangeDecisionProceed
}

func (h *Host) AddInsightLookup(ctx hostcontract.Ctx, hash dashhash.Hash256) {
	h.logger.Debug("refhost: insight lookup requested", zap.String("block_hash", hash.String()))
}

func (h *Host) Log(ctx hostcontract.Ctx, message string) {
	h.logger.Info(message)
}
