package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/PastaPastaPasta/masternode-diff-processor/pkg/dashhash"
)

// Encode serializes a LLMQSnapshot: skip_list_mode as a VarInt, then the
// member_list as a VarInt bit-length followed by its ceil(n/8)-byte LSB-first
// packing, then skip_list as a VarInt count followed by 4-byte little-endian
// signed entries. The member_list's bit-length is carried on the wire
// (unlike a LLMQEntry's signers/valid_members, whose N is implied by
// llmq_type) because a snapshot describes an entire previous cycle's
// quorum membership, whose size is not otherwise recoverable at decode time.
func (s *LLMQSnapshot) Encode() []byte {
	var buf []byte
	buf = append(buf, dashhash.WriteVarInt(uint64(s.SkipListMode))...)

	n := 0
	if s.MemberList != nil {
		n = s.MemberList.Len()
	}
	buf = append(buf, dashhash.WriteVarInt(uint64(n))...)
	if s.MemberList != nil {
		buf = append(buf, EncodeBitset(s.MemberList)...)
	}

	buf = append(buf, dashhash.WriteVarInt(uint64(len(s.SkipList)))...)
	for _, v := range s.SkipList {
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, uint32(v))
		buf = append(buf, b...)
	}
	return buf
}

// DecodeLLMQSnapshot reads one LLMQSnapshot from the cursor.
func DecodeLLMQSnapshot(c *dashhash.Cursor) (LLMQSnapshot, error) {
	var s LLMQSnapshot

	mode, err := c.ReadVarInt()
	if err != nil {
		return s, err
	}
	if mode > uint64(SkipListModeSkipAll) {
		return s, &dashhash.MalformedError{Offset: c.Offset(), Reason: fmt.Sprintf("invalid skip_list_mode %d", mode)}
	}
	s.SkipListMode = SkipListMode(mode)

	n, err := c.ReadVarInt()
	if err != nil {
		return s, err
	}
	memberBytes, err := c.ReadBytes((int(n) + 7) / 8)
	if err != nil {
		return s, err
	}
	memberList, err := DecodeBitset(memberBytes, int(n))
	if err != nil {
		return s, &dashhash.MalformedError{Offset: c.Offset(), Reason: err.Error()}
	}
	s.MemberList = memberList

	count, err := c.ReadVarInt()
	if err != nil {
		return s, err
	}
	s.SkipList = make([]int32, count)
	for i := range s.SkipList {
		b, err := c.ReadBytes(4)
		if err != nil {
			return s, err
		}
		s.SkipList[i] = int32(binary.LittleEndian.Uint32(b))
	}

	return s, nil
}
