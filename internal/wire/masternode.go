package wire

import (
	"github.com/PastaPastaPasta/masternode-diff-processor/pkg/dashhash"
)

// masternodeEntrySize is the exact wire size of a MasternodeEntry (excluding
// the derived entry_hash, which is never carried on the wire).
const masternodeEntrySize = 32 + 32 + 16 + 2 + BLSPublicKeySize + Hash160Size + 1 + 4

// serializeWithoutHash produces the canonical byte encoding of every
// MasternodeEntry field except entry_hash, in the documented field order.
// This is both the wire form and the entry_hash preimage (spec.md §4.3).
func (e *MasternodeEntry) serializeWithoutHash() []byte {
	buf := make([]byte, 0, masternodeEntrySize)
	buf = append(buf, e.ProRegTxHash[:]...)
	buf = append(buf, e.ConfirmedHash[:]...)
	buf = append(buf, e.IP[:]...)
	buf = append(buf, dashhash.Uint16ToBytesLE(e.Port)...)
	buf = append(buf, e.OperatorPubKey[:]...)
	buf = append(buf, e.VotingKeyHash[:]...)
	if e.IsValid {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	buf = append(buf, dashhash.Uint32ToBytesLE(e.UpdateHeight)...)
	return buf
}

// Encode serializes the entry to its wire form.
func (e *MasternodeEntry) Encode() []byte {
	return e.serializeWithoutHash()
}

// EntryHash computes (and caches) entry_hash = DSHA256(serialize(entry
// without the hash field)), per spec.md §4.3's invariant.
func (e *MasternodeEntry) EntryHash() dashhash.Hash256 {
	e.EntryHashCached = dashhash.DoubleSHA256(e.serializeWithoutHash())
	return e.EntryHashCached
}

// DecodeMasternodeEntry reads one MasternodeEntry from the cursor and
// computes its entry_hash.
func DecodeMasternodeEntry(c *dashhash.Cursor) (MasternodeEntry, error) {
	var e MasternodeEntry

	proRegTxHash, err := c.ReadHash256()
	if err != nil {
		return e, err
	}
	confirmedHash, err := c.ReadHash256()
	if err != nil {
		return e, err
	}
	ip, err := c.ReadBytes(16)
	if err != nil {
		return e, err
	}
	port, err := c.ReadUint16LE()
	if err != nil {
		return e, err
	}
	pubKeyBytes, err := c.ReadBytes(BLSPublicKeySize)
	if err != nil {
		return e, err
	}
	votingKeyBytes, err := c.ReadBytes(Hash160Size)
	if err != nil {
		return e, err
	}
	isValidByte, err := c.ReadUint8()
	if err != nil {
		return e, err
	}
	updateHeight, err := c.ReadUint32LE()
	if err != nil {
		return e, err
	}

	e.ProRegTxHash = proRegTxHash
	e.ConfirmedHash = confirmedHash
	copy(e.IP[:], ip)
	e.Port = port
	copy(e.OperatorPubKey[:], pubKeyBytes)
	copy(e.VotingKeyHash[:], votingKeyBytes)
	e.IsValid = isValidByte != 0
	e.UpdateHeight = updateHeight
	e.EntryHash()
	return e, nil
}
