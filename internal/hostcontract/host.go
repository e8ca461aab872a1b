// Package hostcontract defines the callback surface the facade (C7) drives
// against an embedding host: block-height resolution, list/snapshot
// persistence, and policy gates. The processor never dereferences Ctx; it
// is carried verbatim into every call and exists purely so a host can thread
// its own session state through without the processor needing to know its
// shape.
package hostcontract

import (
	"github.com/PastaPastaPasta/masternode-diff-processor/internal/masternodelist"
	"github.com/PastaPastaPasta/masternode-diff-processor/internal/wire"
	"github.com/PastaPastaPasta/masternode-diff-processor/pkg/dashhash"
)

// Ctx is the opaque per-call context a host passes through every callback.
// The processor stores and forwards it but never inspects its contents.
type Ctx interface{}

// UnknownHeight is the get_block_height_by_hash sentinel for "not found".
const UnknownHeight = ^uint32(0)

// RangeDecision is should_process_diff_with_range's early-rejection code; 0
// means proceed.
type RangeDecision uint8

const RangeDecisionProceed RangeDecision = 0

// Host is the full C9 callback surface.
type Host interface {
	GetBlockHeightByHash(ctx Ctx, hash dashhash.Hash256) uint32
	GetBlockHashByHeight(ctx Ctx, height uint32) (dashhash.Hash256, bool)
	GetMerkleRootByHash(ctx Ctx, hash dashhash.Hash256) (dashhash.Hash256, bool)

	GetMasternodeListByBlockHash(ctx Ctx, hash dashhash.Hash256) (*masternodelist.List, bool)
	SaveMasternodeList(ctx Ctx, hash dashhash.Hash256, list *masternodelist.List) bool

	GetLLMQSnapshotByBlockHash(ctx Ctx, hash dashhash.Hash256) (wire.LLMQSnapshot, bool)
	SaveLLMQSnapshot(ctx Ctx, hash dashhash.Hash256, snapshot wire.LLMQSnapshot) bool

	ShouldProcessLLMQOfType(ctx Ctx, llmqType uint8) bool
	ValidateLLMQ(ctx Ctx, data []byte) bool
	ShouldProcessDiffWithRange(ctx Ctx, base, target dashhash.Hash256) RangeDecision

	AddInsightLookup(ctx Ctx, hash dashhash.Hash256)
	Log(ctx Ctx, message string)
}
