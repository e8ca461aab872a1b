package wire

import (
	"testing"

	"github.com/PastaPastaPasta/masternode-diff-processor/pkg/dashhash"
)

func sampleHash(b byte) dashhash.Hash256 {
	var h dashhash.Hash256
	h[0] = b
	return h
}

func sampleEntry(b byte) MasternodeEntry {
	e := MasternodeEntry{
		ProRegTxHash:  sampleHash(b),
		ConfirmedHash: sampleHash(b + 1),
		Port:          9999,
		IsValid:       true,
		UpdateHeight:  1738792,
	}
	e.IP[0] = 127
	e.IP[15] = 1
	e.OperatorPubKey[0] = b
	e.VotingKeyHash[0] = b
	e.EntryHash()
	return e
}

func TestMasternodeEntryRoundTrip(t *testing.T) {
	e := sampleEntry(7)
	encoded := e.Encode()

	c := dashhash.NewCursor(encoded)
	decoded, err := DecodeMasternodeEntry(c)
	if err != nil {
		t.Fatalf("DecodeMasternodeEntry: %v", err)
	}
	if decoded.ProRegTxHash != e.ProRegTxHash || decoded.Port != e.Port || decoded.UpdateHeight != e.UpdateHeight {
		t.Fatalf("round trip mismatch: got %+v want %+v", decoded, e)
	}
	if decoded.EntryHashCached != e.EntryHashCached {
		t.Fatal("entry hash should be stable across round trip")
	}
	if c.Remaining() != 0 {
		t.Fatalf("leftover bytes after decode: %d", c.Remaining())
	}
}

func TestEntryHashDeterminism(t *testing.T) {
	a := sampleEntry(1)
	b := sampleEntry(1)
	if a.EntryHash() != b.EntryHash() {
		t.Fatal("identical entries must produce identical entry_hash")
	}

	c := sampleEntry(1)
	c.UpdateHeight++
	if c.EntryHash() == a.EntryHash() {
		t.Fatal("single-field mutation must change entry_hash")
	}
}

func sampleLLMQEntry(llmqType uint8, b byte) LLMQEntry {
	n, _ := LLMQSize(llmqType)
	signers := NewWireBitSet(n)
	valid := NewWireBitSet(n)
	for i := 0; i < n; i += 2 {
		signers.Set(i)
		valid.Set(i)
	}
	e := LLMQEntry{
		LLMQType:               llmqType,
		LLMQHash:               sampleHash(b),
		Version:                1,
		Signers:                signers,
		ValidMembers:           valid,
		VerificationVectorHash: sampleHash(b + 1),
	}
	e.PublicKey[0] = b
	e.ThresholdSignature[0] = b
	e.AllCommitmentAggregatedSig[0] = b
	e.EntryHash()
	return e
}

func TestLLMQEntryRoundTrip(t *testing.T) {
	e := sampleLLMQEntry(LLMQType50_60, 3)
	encoded := e.Encode()

	c := dashhash.NewCursor(encoded)
	decoded, err := DecodeLLMQEntry(c)
	if err != nil {
		t.Fatalf("DecodeLLMQEntry: %v", err)
	}
	if decoded.LLMQHash != e.LLMQHash || decoded.Signers.Count() != e.Signers.Count() {
		t.Fatalf("round trip mismatch: got %+v", decoded)
	}
	if decoded.EntryHashCached != e.EntryHashCached {
		t.Fatal("entry hash should be stable across round trip")
	}
	if c.Remaining() != 0 {
		t.Fatalf("leftover bytes: %d", c.Remaining())
	}
}

func TestLLMQEntryIndexedRoundTrip(t *testing.T) {
	e := sampleLLMQEntry(LLMQTypeTestDIP0024, 9)
	e.Version = 2
	idx := uint16(5)
	e.Index = &idx
	e.EntryHash()

	encoded := e.Encode()
	c := dashhash.NewCursor(encoded)
	decoded, err := DecodeLLMQEntry(c)
	if err != nil {
		t.Fatalf("DecodeLLMQEntry: %v", err)
	}
	if decoded.Index == nil || *decoded.Index != 5 {
		t.Fatalf("expected index 5, got %v", decoded.Index)
	}
}

func TestLLMQEntryUnknownTypeIsMalformed(t *testing.T) {
	e := sampleLLMQEntry(LLMQType50_60, 1)
	e.LLMQType = 255
	encoded := e.Encode()
	// Patching the type byte alone desynchronizes the rest of the buffer,
	// but decode must fail fast on the unknown type rather than read garbage.
	encoded[0] = 255
	c := dashhash.NewCursor(encoded)
	_, err := DecodeLLMQEntry(c)
	if err == nil {
		t.Fatal("expected error for unknown llmq_type")
	}
}

func TestLLMQSnapshotRoundTrip(t *testing.T) {
	ml := NewWireBitSet(10)
	ml.Set(1)
	ml.Set(3)
	s := LLMQSnapshot{
		MemberList:   ml,
		SkipList:     []int32{1, -2, 3},
		SkipListMode: SkipListModeSkipExcept,
	}
	encoded := s.Encode()
	c := dashhash.NewCursor(encoded)
	decoded, err := DecodeLLMQSnapshot(c)
	if err != nil {
		t.Fatalf("DecodeLLMQSnapshot: %v", err)
	}
	if decoded.SkipListMode != s.SkipListMode || len(decoded.SkipList) != 3 || decoded.SkipList[1] != -2 {
		t.Fatalf("round trip mismatch: %+v", decoded)
	}
	if decoded.MemberList.Count() != 2 {
		t.Fatalf("member list count = %d, want 2", decoded.MemberList.Count())
	}
}

func TestListDiffRoundTrip(t *testing.T) {
	d := ListDiff{
		BaseBlockHash:        sampleHash(1),
		BlockHash:            sampleHash(2),
		TotalTransactions:    3,
		CoinbaseTx:           []byte{0xde, 0xad, 0xbe, 0xef},
		CoinbaseMerkleHashes: []dashhash.Hash256{sampleHash(9)},
		CoinbaseMerkleFlags:  []byte{0x01},
		DeletedMasternodes:   []dashhash.Hash256{sampleHash(4)},
		AddedOrModifiedMasternodes: []MasternodeEntry{
			sampleEntry(5),
		},
		DeletedQuorums: []DeletedQuorum{{LLMQType: LLMQType50_60, LLMQHash: sampleHash(6)}},
		AddedQuorums:   []LLMQEntry{sampleLLMQEntry(LLMQType50_60, 7)},
	}
	encoded := d.Encode()
	c := dashhash.NewCursor(encoded)
	decoded, err := DecodeListDiff(c)
	if err != nil {
		t.Fatalf("DecodeListDiff: %v", err)
	}
	if decoded.BlockHash != d.BlockHash || len(decoded.AddedOrModifiedMasternodes) != 1 || len(decoded.AddedQuorums) != 1 {
		t.Fatalf("round trip mismatch: %+v", decoded)
	}
	if c.Remaining() != 0 {
		t.Fatalf("leftover bytes: %d", c.Remaining())
	}
}

func TestQRInfoRoundTripNoExtraShare(t *testing.T) {
	mkDiff := func(b byte) ListDiff {
		return ListDiff{BaseBlockHash: sampleHash(b), BlockHash: sampleHash(b + 1), TotalTransactions: 1, CoinbaseTx: []byte{b}}
	}
	mkSnap := func(b byte) LLMQSnapshot {
		ml := NewWireBitSet(4)
		ml.Set(int(b) % 4)
		return LLMQSnapshot{MemberList: ml, SkipListMode: SkipListModeNoSkipping}
	}

	q := QRInfo{
		ExtraShare:         false,
		SnapshotAtHMinusC:  mkSnap(1),
		SnapshotAtHMinus2C: mkSnap(2),
		SnapshotAtHMinus3C: mkSnap(3),
		DiffTip:            mkDiff(10),
		DiffH:              mkDiff(20),
		DiffHMinusC:        mkDiff(30),
		DiffHMinus2C:       mkDiff(40),
		DiffHMinus3C:       mkDiff(50),
		LastQuorumPerIndex: []LLMQEntry{sampleLLMQEntry(LLMQType50_60, 1)},
	}

	encoded := q.Encode()
	c := dashhash.NewCursor(encoded)
	decoded, err := DecodeQRInfo(c)
	if err != nil {
		t.Fatalf("DecodeQRInfo: %v", err)
	}
	if decoded.DiffHMinus4C != nil || decoded.SnapshotAtHMinus4C != nil {
		t.Fatal("h-4c fields must be absent when extra_share is false")
	}
	if decoded.DiffTip.BlockHash != q.DiffTip.BlockHash {
		t.Fatal("tip diff mismatch after round trip")
	}
	if c.Remaining() != 0 {
		t.Fatalf("leftover bytes: %d", c.Remaining())
	}
}

// TestDecodeQRInfoReferenceFieldOrder assembles a QRINFO message by hand in
// the Dash reference layout — snapshot(h-c), snapshot(h-2c), snapshot(h-3c),
// diff(tip), diff(h), diff(h-c), diff(h-2c), diff(h-3c), extra_share, then
// the three trailing lists — and checks each component lands in the right
// slot, independently of what Encode produces.
func TestDecodeQRInfoReferenceFieldOrder(t *testing.T) {
	mkSnap := func(skip int32) LLMQSnapshot {
		ml := NewWireBitSet(4)
		ml.Set(0)
		return LLMQSnapshot{MemberList: ml, SkipList: []int32{skip}, SkipListMode: SkipListModeSkipExcept}
	}
	mkDiff := func(b byte) ListDiff {
		return ListDiff{BaseBlockHash: sampleHash(b), BlockHash: sampleHash(b + 1), TotalTransactions: 1, CoinbaseTx: []byte{b}}
	}

	snapC := mkSnap(1)
	snap2C := mkSnap(2)
	snap3C := mkSnap(3)
	diffTip := mkDiff(10)
	diffH := mkDiff(20)
	diffC := mkDiff(30)
	diff2C := mkDiff(40)
	diff3C := mkDiff(50)

	var raw []byte
	raw = append(raw, snapC.Encode()...)
	raw = append(raw, snap2C.Encode()...)
	raw = append(raw, snap3C.Encode()...)
	raw = append(raw, diffTip.Encode()...)
	raw = append(raw, diffH.Encode()...)
	raw = append(raw, diffC.Encode()...)
	raw = append(raw, diff2C.Encode()...)
	raw = append(raw, diff3C.Encode()...)
	raw = append(raw, 0) // extra_share
	raw = append(raw, dashhash.WriteVarInt(0)...)
	raw = append(raw, dashhash.WriteVarInt(0)...)
	raw = append(raw, dashhash.WriteVarInt(0)...)

	c := dashhash.NewCursor(raw)
	decoded, err := DecodeQRInfo(c)
	if err != nil {
		t.Fatalf("DecodeQRInfo: %v", err)
	}
	if decoded.SnapshotAtHMinusC.SkipList[0] != 1 || decoded.SnapshotAtHMinus2C.SkipList[0] != 2 || decoded.SnapshotAtHMinus3C.SkipList[0] != 3 {
		t.Fatal("snapshots decoded out of order")
	}
	if decoded.DiffTip.BlockHash != diffTip.BlockHash {
		t.Fatalf("first diff on the wire must be the tip diff, got %x", decoded.DiffTip.BlockHash)
	}
	if decoded.DiffH.BlockHash != diffH.BlockHash || decoded.DiffHMinusC.BlockHash != diffC.BlockHash {
		t.Fatal("h / h-c diffs decoded out of order")
	}
	if decoded.DiffHMinus2C.BlockHash != diff2C.BlockHash || decoded.DiffHMinus3C.BlockHash != diff3C.BlockHash {
		t.Fatal("h-2c / h-3c diffs decoded out of order")
	}
	if decoded.ExtraShare {
		t.Fatal("extra_share byte after the diffs must decode to false")
	}
	if c.Remaining() != 0 {
		t.Fatalf("leftover bytes: %d", c.Remaining())
	}
}

func TestQRInfoRoundTripWithExtraShare(t *testing.T) {
	mkDiff := func(b byte) ListDiff {
		return ListDiff{BaseBlockHash: sampleHash(b), BlockHash: sampleHash(b + 1), TotalTransactions: 1, CoinbaseTx: []byte{b}}
	}
	mkSnap := func(b byte) LLMQSnapshot {
		ml := NewWireBitSet(4)
		ml.Set(int(b) % 4)
		return LLMQSnapshot{MemberList: ml, SkipListMode: SkipListModeNoSkipping}
	}
	snap4c := mkSnap(4)
	diff4c := mkDiff(60)

	q := QRInfo{
		ExtraShare:         true,
		SnapshotAtHMinusC:  mkSnap(1),
		SnapshotAtHMinus2C: mkSnap(2),
		SnapshotAtHMinus3C: mkSnap(3),
		SnapshotAtHMinus4C: &snap4c,
		DiffTip:            mkDiff(10),
		DiffH:              mkDiff(20),
		DiffHMinusC:        mkDiff(30),
		DiffHMinus2C:       mkDiff(40),
		DiffHMinus3C:       mkDiff(50),
		DiffHMinus4C:       &diff4c,
	}

	encoded := q.Encode()
	c := dashhash.NewCursor(encoded)
	decoded, err := DecodeQRInfo(c)
	if err != nil {
		t.Fatalf("DecodeQRInfo: %v", err)
	}
	if decoded.DiffHMinus4C == nil || decoded.SnapshotAtHMinus4C == nil {
		t.Fatal("h-4c fields must be present when extra_share is true")
	}
	if decoded.DiffHMinus4C.BlockHash != diff4c.BlockHash {
		t.Fatal("h-4c diff mismatch after round trip")
	}
}
