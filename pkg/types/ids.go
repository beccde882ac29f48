package types

import (
	"time"
)

// ============================================================================
//                              PeerID - 节点标识
// ============================================================================

// PeerID 节点地址
//
// 由身份公钥派生，字符串形式与 libp2p peer.ID 的 Base58 表示一致（如 12D3KooW...）。
type PeerID string

// EmptyPeerID 空节点地址
const EmptyPeerID PeerID = ""

// String 返回字符串表示
func (p PeerID) String() string {
	return string(p)
}

// ShortString 返回日志用的短标识
func (p PeerID) ShortString() string {
	s := string(p)
	if len(s) > 12 {
		return s[len(s)-8:]
	}
	return s
}

// IsEmpty 是否为空
func (p PeerID) IsEmpty() bool {
	return p == EmptyPeerID
}

// ============================================================================
//                              Endpoint - 网络位置
// ============================================================================

// Endpoint 网络位置描述（multiaddr 文本形式）
//
// 可能携带 /p2p/<PeerID> 后缀，例如：
//
//	/ip4/1.2.3.4/tcp/4001/p2p/12D3KooW...
type Endpoint string

// String 返回字符串表示
func (e Endpoint) String() string {
	return string(e)
}

// EndpointsToStrings 转换为字符串切片
func EndpointsToStrings(eps []Endpoint) []string {
	out := make([]string, len(eps))
	for i, ep := range eps {
		out[i] = string(ep)
	}
	return out
}

// ============================================================================
//                              PeerRecord - 节点记录
// ============================================================================

// PeerRecord 节点记录
//
// 协调器在共享状态中为已连接/已发现节点保存一份；路由表模块内部另有一份，
// 后者才是 DHT 查询的权威来源。
type PeerRecord struct {
	// ID 节点地址
	ID PeerID `json:"id"`

	// Endpoints 已知地址（插入顺序，去重）
	Endpoints []Endpoint `json:"endpoints"`

	// LastSeen 逻辑时间戳（事件循环的处理序号）
	LastSeen uint64 `json:"last_seen"`

	// SeenAt 墙钟时间，用于已发现节点的 TTL 清理
	SeenAt time.Time `json:"seen_at"`
}

// Clone 深拷贝
func (r PeerRecord) Clone() PeerRecord {
	r.Endpoints = append([]Endpoint(nil), r.Endpoints...)
	return r
}

// HasEndpoint 是否已包含地址
func (r *PeerRecord) HasEndpoint(ep Endpoint) bool {
	for _, e := range r.Endpoints {
		if e == ep {
			return true
		}
	}
	return false
}

// AddEndpoint 添加地址，已存在时返回 false
func (r *PeerRecord) AddEndpoint(ep Endpoint) bool {
	if r.HasEndpoint(ep) {
		return false
	}
	r.Endpoints = append(r.Endpoints, ep)
	return true
}

// RemoveEndpoint 移除地址，不存在时返回 false
func (r *PeerRecord) RemoveEndpoint(ep Endpoint) bool {
	for i, e := range r.Endpoints {
		if e == ep {
			r.Endpoints = append(r.Endpoints[:i], r.Endpoints[i+1:]...)
			return true
		}
	}
	return false
}
