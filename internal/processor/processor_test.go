package processor

import (
	"testing"

	"go.uber.org/zap"

	"github.com/PastaPastaPasta/masternode-diff-processor/internal/cache"
	"github.com/PastaPastaPasta/masternode-diff-processor/internal/hostcontract"
	"github.com/PastaPastaPasta/masternode-diff-processor/internal/masternodelist"
	"github.com/PastaPastaPasta/masternode-diff-processor/internal/testfixtures"
	"github.com/PastaPastaPasta/masternode-diff-processor/internal/wire"
	"github.com/PastaPastaPasta/masternode-diff-processor/pkg/dashhash"
)

var hashB = testfixtures.HashFromByte

// stubHost is a minimal Host backed by plain maps, enough to drive the
// facade through its height-resolution and persistence calls.
type stubHost struct {
	heights map[dashhash.Hash256]uint32
	lists   map[dashhash.Hash256]*masternodelist.List
	saveOK  bool
}

func newStubHost() *stubHost {
	return &stubHost{
		heights: make(map[dashhash.Hash256]uint32),
		lists:   make(map[dashhash.Hash256]*masternodelist.List),
		saveOK:  true,
	}
}

func (h *stubHost) GetBlockHeightByHash(ctx hostcontract.Ctx, hash dashhash.Hash256) uint32 {
	if height, ok := h.heights[hash]; ok {
		return height
	}
	return hostcontract.UnknownHeight
}
func (h *stubHost) GetBlockHashByHeight(ctx hostcontract.Ctx, height uint32) (dashhash.Hash256, bool) {
	return dashhash.Hash256{}, false
}
func (h *stubHost) GetMerkleRootByHash(ctx hostcontract.Ctx, hash dashhash.Hash256) (dashhash.Hash256, bool) {
	return dashhash.Hash256{}, false
}
func (h *stubHost) GetMasternodeListByBlockHash(ctx hostcontract.Ctx, hash dashhash.Hash256) (*masternodelist.List, bool) {
	l, ok := h.lists[hash]
	return l, ok
}
func (h *stubHost) SaveMasternodeList(ctx hostcontract.Ctx, hash dashhash.Hash256, list *masternodelist.List) bool {
	h.lists[hash] = list
	return h.saveOK
}
func (h *stubHost) GetLLMQSnapshotByBlockHash(ctx hostcontract.Ctx, hash dashhash.Hash256) (wire.LLMQSnapshot, bool) {
	return wire.LLMQSnapshot{}, false
}
func (h *stubHost) SaveLLMQSnapshot(ctx hostcontract.Ctx, hash dashhash.Hash256, snapshot wire.LLMQSnapshot) bool {
	return true
}
func (h *stubHost) ShouldProcessLLMQOfType(ctx hostcontract.Ctx, llmqType uint8) bool { return true }
func (h *stubHost) ValidateLLMQ(ctx hostcontract.Ctx, data []byte) bool               { return true }
func (h *stubHost) ShouldProcessDiffWithRange(ctx hostcontract.Ctx, base, target dashhash.Hash256) hostcontract.RangeDecision {
	return hostcontract.RangeDecisionProceed
}
func (h *stubHost) AddInsightLookup(ctx hostcontract.Ctx, hash dashhash.Hash256) {}
func (h *stubHost) Log(ctx hostcontract.Ctx, message string)                    {}

func buildCoinbaseTx(mnRoot, llmqRoot dashhash.Hash256) []byte {
	var buf []byte
	const txVersion, txType = 3, 5
	verType := uint32(txType)<<16 | uint32(txVersion)
	buf = append(buf, dashhash.Uint32ToBytesLE(verType)...)
	buf = append(buf, dashhash.WriteVarInt(1)...)
	buf = append(buf, make([]byte, 36)...)
	buf = append(buf, dashhash.WriteVarInt(0)...)
	buf = append(buf, []byte{0xff, 0xff, 0xff, 0xff}...)
	buf = append(buf, dashhash.WriteVarInt(1)...)
	buf = append(buf, make([]byte, 8)...)
	buf = append(buf, dashhash.WriteVarInt(0)...)
	buf = append(buf, make([]byte, 4)...)

	var payload []byte
	payload = append(payload, dashhash.Uint16ToBytesLE(1)...)
	payload = append(payload, dashhash.Uint32ToBytesLE(1738792)...)
	payload = append(payload, mnRoot[:]...)
	buf = append(buf, dashhash.WriteVarInt(uint64(len(payload)))...)
	buf = append(buf, payload...)
	return buf
}

func TestProcessListDiffParseError(t *testing.T) {
	p := New(newStubHost(), cache.New(), zap.NewNop())
	_, code := p.ProcessListDiff(nil, []byte{0x01})
	if code != ErrorParseError {
		t.Fatalf("expected ErrorParseError, got %v", code)
	}
}

func TestProcessListDiffHasNoBaseBlockHash(t *testing.T) {
	p := New(newStubHost(), cache.New(), zap.NewNop())
	d := &wire.ListDiff{BaseBlockHash: hashB(1), BlockHash: hashB(2), CoinbaseTx: buildCoinbaseTx(dashhash.Hash256{}, dashhash.Hash256{})}
	_, code := p.ProcessListDiff(nil, d.Encode())
	if code != ErrorHasNoBaseBlockHash {
		t.Fatalf("expected ErrorHasNoBaseBlockHash, got %v", code)
	}
}

func TestProcessListDiffSuccess(t *testing.T) {
	c := cache.New()
	base := masternodelist.New(hashB(1), 100)
	c.PutMasternodeList(base)

	host := newStubHost()
	host.heights[hashB(2)] = 101

	p := New(host, c, zap.NewNop())
	d := &wire.ListDiff{
		BaseBlockHash: hashB(1),
		BlockHash:     hashB(2),
		CoinbaseTx:    buildCoinbaseTx(dashhash.Hash256{}, dashhash.Hash256{}),
	}
	result, code := p.ProcessListDiff(nil, d.Encode())
	if code != ErrorNone {
		t.Fatalf("expected ErrorNone, got %v", code)
	}
	if result.List.BlockHash != hashB(2) {
		t.Fatalf("expected reconstructed list at block 2, got %x", result.List.BlockHash)
	}
	if _, ok := host.lists[hashB(2)]; !ok {
		t.Fatal("expected the host to have received the persisted list")
	}
	if _, ok := c.MasternodeList(hashB(2)); !ok {
		t.Fatal("expected the cache to hold the new list")
	}
}

func TestProcessListDiffPersistFailure(t *testing.T) {
	c := cache.New()
	base := masternodelist.New(hashB(1), 100)
	c.PutMasternodeList(base)

	host := newStubHost()
	host.heights[hashB(2)] = 101
	host.saveOK = false

	p := New(host, c, zap.NewNop())
	d := &wire.ListDiff{BaseBlockHash: hashB(1), BlockHash: hashB(2), CoinbaseTx: buildCoinbaseTx(dashhash.Hash256{}, dashhash.Hash256{})}
	result, code := p.ProcessListDiff(nil, d.Encode())
	if code != ErrorPersistInRetrieval {
		t.Fatalf("expected ErrorPersistInRetrieval, got %v", code)
	}
	if result == nil {
		t.Fatal("expected a result to still be returned on persistence failure")
	}
}

func TestProcessListDiffLocallyStored(t *testing.T) {
	c := cache.New()
	base := masternodelist.New(hashB(1), 100)
	c.PutMasternodeList(base)
	already := masternodelist.New(hashB(2), 101)
	c.PutMasternodeList(already)

	p := New(newStubHost(), c, zap.NewNop())
	d := &wire.ListDiff{BaseBlockHash: hashB(1), BlockHash: hashB(2), CoinbaseTx: buildCoinbaseTx(dashhash.Hash256{}, dashhash.Hash256{})}
	_, code := p.ProcessListDiff(nil, d.Encode())
	if code != ErrorLocallyStored {
		t.Fatalf("expected ErrorLocallyStored, got %v", code)
	}
}

func TestProcessQRInfoParseError(t *testing.T) {
	p := New(newStubHost(), cache.New(), zap.NewNop())
	_, code := p.ProcessQRInfo(nil, []byte{0x01})
	if code != ErrorParseError {
		t.Fatalf("expected ErrorParseError, got %v", code)
	}
}

func TestProcessQRInfoAppliesInDependencyOrder(t *testing.T) {
	c := cache.New()
	base := masternodelist.New(hashB(0), 1738700)
	c.PutMasternodeList(base)

	host := newStubHost()
	host.heights[hashB(10)] = 1738792 - 3*24
	host.heights[hashB(20)] = 1738792 - 2*24
	host.heights[hashB(30)] = 1738792 - 24
	host.heights[hashB(40)] = 1738792
	host.heights[hashB(50)] = 1738792 + 1

	p := New(host, c, zap.NewNop())

	mkDiff := func(base, block dashhash.Hash256) wire.ListDiff {
		return wire.ListDiff{BaseBlockHash: base, BlockHash: block, CoinbaseTx: buildCoinbaseTx(dashhash.Hash256{}, dashhash.Hash256{})}
	}
	snap := wire.LLMQSnapshot{SkipListMode: wire.SkipListModeNoSkipping, MemberList: wire.NewWireBitSet(4)}

	q := wire.QRInfo{
		ExtraShare:         false,
		SnapshotAtHMinusC:  snap,
		SnapshotAtHMinus2C: snap,
		SnapshotAtHMinus3C: snap,
		DiffHMinus3C:       mkDiff(hashB(0), hashB(10)),
		DiffHMinus2C:       mkDiff(hashB(10), hashB(20)),
		DiffHMinusC:        mkDiff(hashB(20), hashB(30)),
		DiffH:              mkDiff(hashB(30), hashB(40)),
		DiffTip:            mkDiff(hashB(40), hashB(50)),
	}

	result, code := p.ProcessQRInfo(nil, q.Encode())
	if code != ErrorNone {
		t.Fatalf("expected ErrorNone, got %v", code)
	}
	if result.HMinus3C == nil || result.HMinus3C.List.BlockHash != hashB(10) {
		t.Fatal("expected h-3c diff applied against the seeded base")
	}
	if result.Tip == nil || result.Tip.List.BlockHash != hashB(50) {
		t.Fatal("expected tip diff applied last, chained from all prior results")
	}
}

// rotatedQuorumStub returns a minimal LLMQTypeTestDIP0024 entry at the given
// rotation index, with empty-but-correctly-sized signer/valid-member
// bitsets (this test exercises C6's membership wiring, not C5 validation).
func rotatedQuorumStub(llmqHash dashhash.Hash256, index uint16) wire.LLMQEntry {
	size, _ := wire.LLMQSize(wire.LLMQTypeTestDIP0024)
	idx := index
	return wire.LLMQEntry{
		LLMQType:     wire.LLMQTypeTestDIP0024,
		LLMQHash:     llmqHash,
		Version:      2,
		Index:        &idx,
		Signers:      wire.NewWireBitSet(size),
		ValidMembers: wire.NewWireBitSet(size),
	}
}

func TestProcessQRInfoComputesRotatedMembers(t *testing.T) {
	c := cache.New()
	base := masternodelist.New(hashB(0), 1738700)
	c.PutMasternodeList(base)

	host := newStubHost()
	host.heights[hashB(10)] = 1738792 - 3*24
	host.heights[hashB(20)] = 1738792 - 2*24
	host.heights[hashB(30)] = 1738792 - 24
	host.heights[hashB(40)] = 1738792
	host.heights[hashB(50)] = 1738792 + 1

	p := New(host, c, zap.NewNop())

	mnSeed := func(from, n byte) []wire.MasternodeEntry {
		out := make([]wire.MasternodeEntry, n)
		for i := byte(0); i < n; i++ {
			out[i] = testfixtures.SampleMasternodeEntry(from + i)
		}
		return out
	}

	mkDiff := func(base, block dashhash.Hash256, mns []wire.MasternodeEntry, quorum *wire.LLMQEntry) wire.ListDiff {
		d := wire.ListDiff{
			BaseBlockHash:              base,
			BlockHash:                  block,
			CoinbaseTx:                 buildCoinbaseTx(dashhash.Hash256{}, dashhash.Hash256{}),
			AddedOrModifiedMasternodes: mns,
		}
		if quorum != nil {
			d.AddedQuorums = []wire.LLMQEntry{*quorum}
		}
		return d
	}

	q3c := rotatedQuorumStub(hashB(110), 0)
	q2c := rotatedQuorumStub(hashB(120), 0)
	qc := rotatedQuorumStub(hashB(130), 0)
	qh := rotatedQuorumStub(hashB(140), 0)

	snap := testfixtures.SampleLLMQSnapshot(1)

	q := wire.QRInfo{
		ExtraShare:         false,
		SnapshotAtHMinusC:  snap,
		SnapshotAtHMinus2C: snap,
		SnapshotAtHMinus3C: snap,
		DiffHMinus3C:       mkDiff(hashB(0), hashB(10), mnSeed(1, 4), &q3c),
		DiffHMinus2C:       mkDiff(hashB(10), hashB(20), mnSeed(11, 4), &q2c),
		DiffHMinusC:        mkDiff(hashB(20), hashB(30), mnSeed(21, 4), &qc),
		DiffH:              mkDiff(hashB(30), hashB(40), mnSeed(31, 4), &qh),
		DiffTip:            mkDiff(hashB(40), hashB(50), nil, nil),
	}

	result, code := p.ProcessQRInfo(nil, q.Encode())
	if code != ErrorNone {
		t.Fatalf("expected ErrorNone, got %v", code)
	}
	if len(result.RotatedMembers) != 1 {
		t.Fatalf("expected one computed rotated-quorum membership, got %d", len(result.RotatedMembers))
	}
	rm := result.RotatedMembers[0]
	if rm.LLMQType != wire.LLMQTypeTestDIP0024 || rm.Index != 0 {
		t.Fatalf("unexpected rotated member key: type=%d index=%d", rm.LLMQType, rm.Index)
	}
	size, _ := wire.LLMQSize(wire.LLMQTypeTestDIP0024)
	if len(rm.Members) != size {
		t.Fatalf("expected total rotated membership %d, got %d", size, len(rm.Members))
	}
	if cached, ok := c.Members(wire.LLMQTypeTestDIP0024, qh.LLMQHash); !ok || len(cached) != len(rm.Members) {
		t.Fatal("expected rotated membership to be cached under the h-cycle quorum hash")
	}
}
