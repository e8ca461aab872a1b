// Package testfixtures provides synthetic masternode-list and quorum
// builders shared across this repository's tests, the same role the
// teacher's testutil package plays for sharechain fixtures.
package testfixtures

import (
	"github.com/PastaPastaPasta/masternode-diff-processor/internal/masternodelist"
	"github.com/PastaPastaPasta/masternode-diff-processor/internal/wire"
	"github.com/PastaPastaPasta/masternode-diff-processor/pkg/dashhash"
)

// HashFromByte builds a Hash256 with its first byte set to b and the rest
// zero, enough to produce distinct, deterministic test hashes.
func HashFromByte(b byte) dashhash.Hash256 {
	var h dashhash.Hash256
	h[0] = b
	return h
}

// SampleMasternodeEntry returns a valid masternode entry keyed by
// HashFromByte(seed), with its entry_hash already computed.
func SampleMasternodeEntry(seed byte) wire.MasternodeEntry {
	e := wire.MasternodeEntry{
		ProRegTxHash:  HashFromByte(seed),
		ConfirmedHash: HashFromByte(seed + 1),
		Port:          9999,
		IsValid:       true,
		UpdateHeight:  100,
	}
	e.EntryHash()
	return e
}

// SampleMasternodeList builds a list at HashFromByte(blockSeed)/height with
// count valid masternode entries seeded sequentially from entrySeedStart.
func SampleMasternodeList(blockSeed byte, height uint32, entrySeedStart byte, count int) *masternodelist.List {
	l := masternodelist.New(HashFromByte(blockSeed), height)
	for i := 0; i < count; i++ {
		e := SampleMasternodeEntry(entrySeedStart + byte(i))
		l.Entries[e.ProRegTxHash] = e
	}
	return l
}

// SampleLLMQSnapshot returns a no-skipping snapshot over n members, all
// present, suitable as a rotation-quarter base when the test does not care
// about skip-list mechanics.
func SampleLLMQSnapshot(n int) wire.LLMQSnapshot {
	members := wire.NewWireBitSet(n)
	for i := 0; i < n; i++ {
		members.Set(i)
	}
	return wire.LLMQSnapshot{MemberList: members, SkipListMode: wire.SkipListModeNoSkipping}
}
