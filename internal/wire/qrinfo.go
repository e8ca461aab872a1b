package wire

import "github.com/PastaPastaPasta/masternode-diff-processor/pkg/dashhash"

// Encode serializes a QRInfo bundle in the Dash reference wire order: the
// three snapshots (h-c, h-2c, h-3c), the five diffs in tip, h, h-c, h-2c,
// h-3c order, the extra_share flag, then — only when extra_share is set —
// the h-4c snapshot and diff, followed by the three trailing list fields.
func (q *QRInfo) Encode() []byte {
	var buf []byte

	buf = append(buf, q.SnapshotAtHMinusC.Encode()...)
	buf = append(buf, q.SnapshotAtHMinus2C.Encode()...)
	buf = append(buf, q.SnapshotAtHMinus3C.Encode()...)

	buf = append(buf, q.DiffTip.Encode()...)
	buf = append(buf, q.DiffH.Encode()...)
	buf = append(buf, q.DiffHMinusC.Encode()...)
	buf = append(buf, q.DiffHMinus2C.Encode()...)
	buf = append(buf, q.DiffHMinus3C.Encode()...)

	if q.ExtraShare {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	if q.ExtraShare && q.SnapshotAtHMinus4C != nil {
		buf = append(buf, q.SnapshotAtHMinus4C.Encode()...)
	}
	if q.ExtraShare && q.DiffHMinus4C != nil {
		buf = append(buf, q.DiffHMinus4C.Encode()...)
	}

	buf = append(buf, dashhash.WriteVarInt(uint64(len(q.LastQuorumPerIndex)))...)
	for i := range q.LastQuorumPerIndex {
		buf = append(buf, q.LastQuorumPerIndex[i].Encode()...)
	}
	buf = append(buf, dashhash.WriteVarInt(uint64(len(q.QuorumSnapshotList)))...)
	for i := range q.QuorumSnapshotList {
		buf = append(buf, q.QuorumSnapshotList[i].Encode()...)
	}
	buf = append(buf, dashhash.WriteVarInt(uint64(len(q.MNListDiffList)))...)
	for i := range q.MNListDiffList {
		buf = append(buf, q.MNListDiffList[i].Encode()...)
	}

	return buf
}

// DecodeQRInfo reads one QRInfo bundle from the cursor, in the same field
// order Encode writes.
func DecodeQRInfo(c *dashhash.Cursor) (QRInfo, error) {
	var q QRInfo

	snapC, err := DecodeLLMQSnapshot(c)
	if err != nil {
		return q, err
	}
	snap2C, err := DecodeLLMQSnapshot(c)
	if err != nil {
		return q, err
	}
	snap3C, err := DecodeLLMQSnapshot(c)
	if err != nil {
		return q, err
	}
	q.SnapshotAtHMinusC = snapC
	q.SnapshotAtHMinus2C = snap2C
	q.SnapshotAtHMinus3C = snap3C

	diffTip, err := DecodeListDiff(c)
	if err != nil {
		return q, err
	}
	diffH, err := DecodeListDiff(c)
	if err != nil {
		return q, err
	}
	diffC, err := DecodeListDiff(c)
	if err != nil {
		return q, err
	}
	diff2C, err := DecodeListDiff(c)
	if err != nil {
		return q, err
	}
	diff3C, err := DecodeListDiff(c)
	if err != nil {
		return q, err
	}
	q.DiffTip = diffTip
	q.DiffH = diffH
	q.DiffHMinusC = diffC
	q.DiffHMinus2C = diff2C
	q.DiffHMinus3C = diff3C

	extraByte, err := c.ReadUint8()
	if err != nil {
		return q, err
	}
	q.ExtraShare = extraByte != 0

	if q.ExtraShare {
		snap4C, err := DecodeLLMQSnapshot(c)
		if err != nil {
			return q, err
		}
		q.SnapshotAtHMinus4C = &snap4C
		diff4C, err := DecodeListDiff(c)
		if err != nil {
			return q, err
		}
		q.DiffHMinus4C = &diff4C
	}

	lastQCount, err := c.ReadVarInt()
	if err != nil {
		return q, err
	}
	q.LastQuorumPerIndex = make([]LLMQEntry, lastQCount)
	for i := range q.LastQuorumPerIndex {
		e, err := DecodeLLMQEntry(c)
		if err != nil {
			return q, err
		}
		q.LastQuorumPerIndex[i] = e
	}

	snapListCount, err := c.ReadVarInt()
	if err != nil {
		return q, err
	}
	q.QuorumSnapshotList = make([]LLMQSnapshot, snapListCount)
	for i := range q.QuorumSnapshotList {
		s, err := DecodeLLMQSnapshot(c)
		if err != nil {
			return q, err
		}
		q.QuorumSnapshotList[i] = s
	}

	diffListCount, err := c.ReadVarInt()
	if err != nil {
		return q, err
	}
	q.MNListDiffList = make([]ListDiff, diffListCount)
	for i := range q.MNListDiffList {
		d, err := DecodeListDiff(c)
		if err != nil {
			return q, err
		}
		q.MNListDiffList[i] = d
	}

	return q, nil
}
