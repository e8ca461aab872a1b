package wire

import (
	"github.com/PastaPastaPasta/masternode-diff-processor/pkg/dashhash"
)

// Encode serializes a ListDiff to its wire form. BlockHeight is not part of
// the wire format (spec.md §3 does not list it among ListDiff's fields — it
// is resolved by the host via block-height lookups) and is not encoded.
func (d *ListDiff) Encode() []byte {
	var buf []byte
	buf = append(buf, d.BaseBlockHash[:]...)
	buf = append(buf, d.BlockHash[:]...)
	buf = append(buf, dashhash.Uint32ToBytesLE(d.TotalTransactions)...)

	buf = append(buf, dashhash.WriteVarInt(uint64(len(d.CoinbaseTx)))...)
	buf = append(buf, d.CoinbaseTx...)

	buf = append(buf, dashhash.WriteVarInt(uint64(len(d.CoinbaseMerkleHashes)))...)
	for _, h := range d.CoinbaseMerkleHashes {
		buf = append(buf, h[:]...)
	}
	buf = append(buf, dashhash.WriteVarInt(uint64(len(d.CoinbaseMerkleFlags)))...)
	buf = append(buf, d.CoinbaseMerkleFlags...)

	buf = append(buf, dashhash.WriteVarInt(uint64(len(d.DeletedMasternodes)))...)
	for _, h := range d.DeletedMasternodes {
		buf = append(buf, h[:]...)
	}

	buf = append(buf, dashhash.WriteVarInt(uint64(len(d.AddedOrModifiedMasternodes)))...)
	for i := range d.AddedOrModifiedMasternodes {
		buf = append(buf, d.AddedOrModifiedMasternodes[i].Encode()...)
	}

	buf = append(buf, dashhash.WriteVarInt(uint64(len(d.DeletedQuorums)))...)
	for _, q := range d.DeletedQuorums {
		buf = append(buf, q.LLMQType)
		buf = append(buf, q.LLMQHash[:]...)
	}

	buf = append(buf, dashhash.WriteVarInt(uint64(len(d.AddedQuorums)))...)
	for i := range d.AddedQuorums {
		buf = append(buf, d.AddedQuorums[i].Encode()...)
	}

	return buf
}

// DecodeListDiff reads one ListDiff from the cursor.
func DecodeListDiff(c *dashhash.Cursor) (ListDiff, error) {
	var d ListDiff

	baseHash, err := c.ReadHash256()
	if err != nil {
		return d, err
	}
	blockHash, err := c.ReadHash256()
	if err != nil {
		return d, err
	}
	totalTx, err := c.ReadUint32LE()
	if err != nil {
		return d, err
	}
	d.BaseBlockHash = baseHash
	d.BlockHash = blockHash
	d.TotalTransactions = totalTx

	cbLen, err := c.ReadVarInt()
	if err != nil {
		return d, err
	}
	cbTx, err := c.ReadBytes(int(cbLen))
	if err != nil {
		return d, err
	}
	d.CoinbaseTx = append([]byte{}, cbTx...)

	hashCount, err := c.ReadVarInt()
	if err != nil {
		return d, err
	}
	d.CoinbaseMerkleHashes = make([]dashhash.Hash256, hashCount)
	for i := range d.CoinbaseMerkleHashes {
		h, err := c.ReadHash256()
		if err != nil {
			return d, err
		}
		d.CoinbaseMerkleHashes[i] = h
	}

	flagLen, err := c.ReadVarInt()
	if err != nil {
		return d, err
	}
	flags, err := c.ReadBytes(int(flagLen))
	if err != nil {
		return d, err
	}
	d.CoinbaseMerkleFlags = append([]byte{}, flags...)

	deletedCount, err := c.ReadVarInt()
	if err != nil {
		return d, err
	}
	d.DeletedMasternodes = make([]dashhash.Hash256, deletedCount)
	for i := range d.DeletedMasternodes {
		h, err := c.ReadHash256()
		if err != nil {
			return d, err
		}
		d.DeletedMasternodes[i] = h
	}

	addedCount, err := c.ReadVarInt()
	if err != nil {
		return d, err
	}
	d.AddedOrModifiedMasternodes = make([]MasternodeEntry, addedCount)
	for i := range d.AddedOrModifiedMasternodes {
		e, err := DecodeMasternodeEntry(c)
		if err != nil {
			return d, err
		}
		d.AddedOrModifiedMasternodes[i] = e
	}

	deletedQCount, err := c.ReadVarInt()
	if err != nil {
		return d, err
	}
	d.DeletedQuorums = make([]DeletedQuorum, deletedQCount)
	for i := range d.DeletedQuorums {
		t, err := c.ReadUint8()
		if err != nil {
			return d, err
		}
		h, err := c.ReadHash256()
		if err != nil {
			return d, err
		}
		d.DeletedQuorums[i] = DeletedQuorum{LLMQType: t, LLMQHash: h}
	}

	addedQCount, err := c.ReadVarInt()
	if err != nil {
		return d, err
	}
	d.AddedQuorums = make([]LLMQEntry, addedQCount)
	for i := range d.AddedQuorums {
		q, err := DecodeLLMQEntry(c)
		if err != nil {
			return d, err
		}
		d.AddedQuorums[i] = q
	}

	return d, nil
}
