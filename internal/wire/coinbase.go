package wire

import (
	"github.com/PastaPastaPasta/masternode-diff-processor/pkg/dashhash"
)

// CbTxPayload is the decoded special-transaction payload Dash's coinbase
// carries (DIP-0004), committing to both derived Merkle roots this package
// computes.
type CbTxPayload struct {
	Version              uint16
	Height               uint32
	MerkleRootMNList     dashhash.Hash256
	MerkleRootQuorums    dashhash.Hash256
	HasMerkleRootQuorums bool
}

const specialTxTypeCoinbase = 5

// DecodeCoinbaseCommitments parses a serialized coinbase transaction far
// enough to reach its DIP-0002 special-transaction payload, then decodes
// that payload as a CbTx (DIP-0004) structure. It does not validate
// signatures or amounts; it exists solely to extract the two Merkle-root
// commitments the diff-apply step compares against.
func DecodeCoinbaseCommitments(raw []byte) (CbTxPayload, error) {
	var out CbTxPayload
	c := dashhash.NewCursor(raw)

	verType, err := c.ReadUint32LE()
	if err != nil {
		return out, err
	}
	txVersion := uint16(verType & 0xffff)
	txType := uint16(verType >> 16)

	if err := skipTxInputs(c); err != nil {
		return out, err
	}
	if err := skipTxOutputs(c); err != nil {
		return out, err
	}
	if _, err := c.ReadUint32LE(); err != nil { // lock_time
		return out, err
	}

	if txVersion < 3 || txType != specialTxTypeCoinbase {
		return out, &dashhash.MalformedError{Offset: c.Offset(), Reason: "coinbase is not a DIP-0002 special transaction"}
	}

	payloadLen, err := c.ReadVarInt()
	if err != nil {
		return out, err
	}
	payload, err := c.ReadBytes(int(payloadLen))
	if err != nil {
		return out, err
	}

	return decodeCbTxPayload(payload)
}

func decodeCbTxPayload(payload []byte) (CbTxPayload, error) {
	var out CbTxPayload
	pc := dashhash.NewCursor(payload)

	version, err := pc.ReadUint16LE()
	if err != nil {
		return out, err
	}
	height, err := pc.ReadUint32LE()
	if err != nil {
		return out, err
	}
	mnRoot, err := pc.ReadHash256()
	if err != nil {
		return out, err
	}
	out.Version = version
	out.Height = height
	out.MerkleRootMNList = mnRoot

	if version >= 2 {
		qRoot, err := pc.ReadHash256()
		if err != nil {
			return out, err
		}
		out.MerkleRootQuorums = qRoot
		out.HasMerkleRootQuorums = true
	}
	return out, nil
}

// skipTxInputs reads past the tx_in vector without retaining its contents:
// each input is a 36-byte outpoint, a VarInt-prefixed scriptSig, and a
// 4-byte sequence number.
func skipTxInputs(c *dashhash.Cursor) error {
	count, err := c.ReadVarInt()
	if err != nil {
		return err
	}
	for i := uint64(0); i < count; i++ {
		if _, err := c.ReadBytes(36); err != nil {
			return err
		}
		scriptLen, err := c.ReadVarInt()
		if err != nil {
			return err
		}
		if _, err := c.ReadBytes(int(scriptLen)); err != nil {
			return err
		}
		if _, err := c.ReadBytes(4); err != nil {
			return err
		}
	}
	return nil
}

// skipTxOutputs reads past the tx_out vector: each output is an 8-byte
// value and a VarInt-prefixed scriptPubKey.
func skipTxOutputs(c *dashhash.Cursor) error {
	count, err := c.ReadVarInt()
	if err != nil {
		return err
	}
	for i := uint64(0); i < count; i++ {
		if _, err := c.ReadBytes(8); err != nil {
			return err
		}
		scriptLen, err := c.ReadVarInt()
		if err != nil {
			return err
		}
		if _, err := c.ReadBytes(int(scriptLen)); err != nil {
			return err
		}
	}
	return nil
}
