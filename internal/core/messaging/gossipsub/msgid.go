package gossipsub

import (
	"encoding/binary"

	pb "github.com/libp2p/go-libp2p-pubsub/pb"
	"github.com/mr-tron/base58"
	"lukechampine.com/blake3"
)

// MessageID 计算消息 ID（pubsub.MsgIdFunction）
//
// 序号参与哈希，同一作者重复发布相同数据得到不同 ID。
func MessageID(m *pb.Message) string {
	return ComputeID(m.GetFrom(), m.GetSeqno(), m.GetData())
}

// ComputeID base58(blake3-256(author || len(seqno) || seqno || data))
func ComputeID(author, seqno, data []byte) string {
	h := blake3.New(32, nil)
	_, _ = h.Write(author)
	var n [binary.MaxVarintLen64]byte
	_, _ = h.Write(n[:binary.PutUvarint(n[:], uint64(len(seqno)))])
	_, _ = h.Write(seqno)
	_, _ = h.Write(data)
	return base58.Encode(h.Sum(nil))
}
