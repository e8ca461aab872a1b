// Package cache holds the in-memory, non-thread-safe state the processor
// accumulates across calls: persisted masternode lists, LLMQ snapshots, the
// rotated-quorum member lists the selector derives, and the set of block
// hashes still needed before a computation can complete.
package cache

import (
	"github.com/PastaPastaPasta/masternode-diff-processor/internal/masternodelist"
	"github.com/PastaPastaPasta/masternode-diff-processor/internal/wire"
	"github.com/PastaPastaPasta/masternode-diff-processor/pkg/dashhash"
)

type membersKey struct {
	llmqType uint8
	llmqHash dashhash.Hash256
}

type indexedMembersKey struct {
	llmqType uint8
	llmqHash dashhash.Hash256
	index    uint16
}

// Cache is the processor's working state (spec.md §4.8). The zero value is
// not usable; construct with New.
type Cache struct {
	mnLists               map[dashhash.Hash256]*masternodelist.List
	llmqSnapshots         map[dashhash.Hash256]wire.LLMQSnapshot
	llmqMembers           map[membersKey][]wire.MasternodeEntry
	llmqIndexedMembers    map[indexedMembersKey][]wire.MasternodeEntry
	neededMasternodeLists map[dashhash.Hash256]struct{}
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{
		mnLists:               make(map[dashhash.Hash256]*masternodelist.List),
		llmqSnapshots:         make(map[dashhash.Hash256]wire.LLMQSnapshot),
		llmqMembers:           make(map[membersKey][]wire.MasternodeEntry),
		llmqIndexedMembers:    make(map[indexedMembersKey][]wire.MasternodeEntry),
		neededMasternodeLists: make(map[dashhash.Hash256]struct{}),
	}
}

// Reset clears all cached state; called by the host between independent
// sessions (spec.md §4.8).
func (c *Cache) Reset() {
	c.mnLists = make(map[dashhash.Hash256]*masternodelist.List)
	c.llmqSnapshots = make(map[dashhash.Hash256]wire.LLMQSnapshot)
	c.llmqMembers = make(map[membersKey][]wire.MasternodeEntry)
	c.llmqIndexedMembers = make(map[indexedMembersKey][]wire.MasternodeEntry)
	c.neededMasternodeLists = make(map[dashhash.Hash256]struct{})
}

func (c *Cache) MasternodeList(blockHash dashhash.Hash256) (*masternodelist.List, bool) {
	l, ok := c.mnLists[blockHash]
	return l, ok
}

func (c *Cache) PutMasternodeList(l *masternodelist.List) {
	c.mnLists[l.BlockHash] = l
}

func (c *Cache) Snapshot(blockHash dashhash.Hash256) (wire.LLMQSnapshot, bool) {
	s, ok := c.llmqSnapshots[blockHash]
	return s, ok
}

func (c *Cache) PutSnapshot(blockHash dashhash.Hash256, s wire.LLMQSnapshot) {
	c.llmqSnapshots[blockHash] = s
}

func (c *Cache) Members(llmqType uint8, llmqHash dashhash.Hash256) ([]wire.MasternodeEntry, bool) {
	m, ok := c.llmqMembers[membersKey{llmqType, llmqHash}]
	return m, ok
}

func (c *Cache) PutMembers(llmqType uint8, llmqHash dashhash.Hash256, members []wire.MasternodeEntry) {
	c.llmqMembers[membersKey{llmqType, llmqHash}] = members
}

func (c *Cache) IndexedMembers(llmqType uint8, llmqHash dashhash.Hash256, index uint16) ([]wire.MasternodeEntry, bool) {
	m, ok := c.llmqIndexedMembers[indexedMembersKey{llmqType, llmqHash, index}]
	return m, ok
}

func (c *Cache) PutIndexedMembers(llmqType uint8, llmqHash dashhash.Hash256, index uint16, members []wire.MasternodeEntry) {
	c.llmqIndexedMembers[indexedMembersKey{llmqType, llmqHash, index}] = members
}

// MarkNeeded records a block hash the selector could not find a required
// masternode list or snapshot for.
func (c *Cache) MarkNeeded(blockHash dashhash.Hash256) {
	c.neededMasternodeLists[blockHash] = struct{}{}
}

// NeededMasternodeLists returns the current set of still-needed block
// hashes, in no particular order.
func (c *Cache) NeededMasternodeLists() []dashhash.Hash256 {
	out := make([]dashhash.Hash256, 0, len(c.neededMasternodeLists))
	for h := range c.neededMasternodeLists {
		out = append(out, h)
	}
	return out
}

// ClearNeeded removes a block hash from the needed set once the host has
// supplied it.
func (c *Cache) ClearNeeded(blockHash dashhash.Hash256) {
	delete(c.neededMasternodeLists, blockHash)
}
