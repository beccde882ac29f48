package config

import "time"

// DiscoveryConfig 引导与节点发现配置
type DiscoveryConfig struct {
	// BootstrapPeers 种子节点（multiaddr 文本，可带 /p2p/<PeerID>）
	//
	// 环境变量 BOOTSTRAP_PEERS 以逗号分隔覆盖此项。
	BootstrapPeers []string `json:"bootstrap_peers,omitempty"`

	// DiscoveredTTL 已发现节点在共享状态中的保留时间
	DiscoveredTTL Duration `json:"discovered_ttl"`

	// MaxDiscovered 已发现节点表容量（LRU）
	MaxDiscovered int `json:"max_discovered"`

	// PruneInterval TTL 清理周期
	PruneInterval Duration `json:"prune_interval"`

	// MaxPendingLookups 路由表为空时暂存的 FindPeer 数量上限
	MaxPendingLookups int `json:"max_pending_lookups"`
}

// DefaultDiscoveryConfig 返回默认发现配置
func DefaultDiscoveryConfig() DiscoveryConfig {
	return DiscoveryConfig{
		DiscoveredTTL:     Duration(30 * time.Minute),
		MaxDiscovered:     1024,
		PruneInterval:     Duration(time.Minute),
		MaxPendingLookups: 64,
	}
}

// Validate 验证发现配置
func (c DiscoveryConfig) Validate() error {
	if c.DiscoveredTTL <= 0 || c.PruneInterval <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxDiscovered <= 0 {
		return ErrInvalidLimit
	}
	if c.MaxPendingLookups < 0 {
		return ErrInvalidLimit
	}
	return nil
}
