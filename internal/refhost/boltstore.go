package refhost

import (
	"fmt"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/PastaPastaPasta/masternode-diff-processor/internal/masternodelist"
	"github.com/PastaPastaPasta/masternode-diff-processor/internal/wire"
	"github.com/PastaPastaPasta/masternode-diff-processor/pkg/dashhash"
)

var (
	bucketMasternodeLists = []byte("masternode_lists")
	bucketLLMQSnapshots   = []byte("llmq_snapshots")
)

// BoltStore persists masternode lists and LLMQ snapshots keyed by block
// hash, one bucket per kind, reusing C1's wire codec for both rather than a
// second serialization format (spec.md §4.11).
type BoltStore struct {
	db     *bbolt.DB
	logger *zap.Logger
}

// NewBoltStore opens (creating if absent) a bbolt database at path and
// ensures both buckets exist.
func NewBoltStore(path string, logger *zap.Logger) (*BoltStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("refhost: open bolt db: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketMasternodeLists); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketLLMQSnapshots)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("refhost: init buckets: %w", err)
	}
	return &BoltStore{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// PutMasternodeList persists l under its own BlockHash.
func (s *BoltStore) PutMasternodeList(l *masternodelist.List) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketMasternodeLists).Put(l.BlockHash[:], encodeList(l))
	})
}

// GetMasternodeList looks up a previously persisted list by block hash.
func (s *BoltStore) GetMasternodeList(blockHash dashhash.Hash256) (*masternodelist.List, bool) {
	var l *masternodelist.List
	_ = s.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(bucketMasternodeLists).Get(blockHash[:])
		if raw == nil {
			return nil
		}
		decoded, err := decodeList(raw)
		if err != nil {
			s.logger.Warn("refhost: corrupt masternode list record", zap.String("block_hash", blockHash.String()), zap.Error(err))
			return nil
		}
		l = decoded
		return nil
	})
	return l, l != nil
}

// PutLLMQSnapshot persists snapshot under blockHash.
func (s *BoltStore) PutLLMQSnapshot(blockHash dashhash.Hash256, snapshot wire.LLMQSnapshot) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketLLMQSnapshots).Put(blockHash[:], snapshot.Encode())
	})
}

// GetLLMQSnapshot looks up a previously persisted snapshot by block hash.
func (s *BoltStore) GetLLMQSnapshot(blockHash dashhash.Hash256) (wire.LLMQSnapshot, bool) {
	var (
		snapshot wire.LLMQSnapshot
		found    bool
	)
	_ = s.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(bucketLLMQSnapshots).Get(blockHash[:])
		if raw == nil {
			return nil
		}
		c := dashhash.NewCursor(raw)
		decoded, err := wire.DecodeLLMQSnapshot(c)
		if err != nil {
			s.logger.Warn("refhost: corrupt snapshot record", zap.String("block_hash", blockHash.String()), zap.Error(err))
			return nil
		}
		snapshot = decoded
		found = true
		return nil
	})
	return snapshot, found
}

// Count returns the number of masternode lists persisted, used by the
// lists_cached gauge.
func (s *BoltStore) Count() int {
	n := 0
	_ = s.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket(bucketMasternodeLists).Stats().KeyN
		return nil
	})
	return n
}

// encodeList serializes a full masternode list (not a diff) using C1's
// per-entry wire codec: block_hash, height, then VarInt-counted entries and
// quorums.
func encodeList(l *masternodelist.List) []byte {
	var buf []byte
	buf = append(buf, l.BlockHash[:]...)
	buf = append(buf, dashhash.Uint32ToBytesLE(l.Height)...)

	buf = append(buf, dashhash.WriteVarInt(uint64(len(l.Entries)))...)
	for _, e := range l.Entries {
		buf = append(buf, e.Encode()...)
	}

	buf = append(buf, dashhash.WriteVarInt(uint64(len(l.Quorums)))...)
	for _, q := range l.Quorums {
		buf = append(buf, q.Encode()...)
	}
	return buf
}

// decodeList is encodeList's inverse.
func decodeList(raw []byte) (*masternodelist.List, error) {
	c := dashhash.NewCursor(raw)
	blockHash, err := c.ReadHash256()
	if err != nil {
		return nil, err
	}
	height, err := c.ReadUint32LE()
	if err != nil {
		return nil, err
	}
	l := masternodelist.New(blockHash, height)

	entryCount, err := c.ReadVarInt()
	if err != nil {
		return nil, err
	}
	for i := uint64(0); i < entryCount; i++ {
		e, err := wire.DecodeMasternodeEntry(c)
		if err != nil {
			return nil, err
		}
		l.Entries[e.ProRegTxHash] = e
	}

	quorumCount, err := c.ReadVarInt()
	if err != nil {
		return nil, err
	}
	for i := uint64(0); i < quorumCount; i++ {
		q, err := wire.DecodeLLMQEntry(c)
		if err != nil {
			return nil, err
		}
		l.SetQuorum(q.LLMQType, q.LLMQHash, q)
	}

	return l, nil
}
