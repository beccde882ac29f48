package config

import (
	"strings"
	"time"
)

// DefaultTopic 文档更新的规范主题
const DefaultTopic = "docstore/v1/updates"

// GossipConfig 主题广播配置
type GossipConfig struct {
	// Topics 启动时加入的主题，第一个为发布用的规范主题
	Topics []string `json:"topics"`

	// Heartbeat mesh 维护周期
	Heartbeat Duration `json:"heartbeat"`

	// StrictSigning 严格签名校验
	StrictSigning bool `json:"strict_signing"`

	// RequireMeshPeers 主题内无对端时拒绝发布并上报 Error
	RequireMeshPeers bool `json:"require_mesh_peers"`
}

// DefaultGossipConfig 返回默认广播配置
func DefaultGossipConfig() GossipConfig {
	return GossipConfig{
		Topics:           []string{DefaultTopic},
		Heartbeat:        Duration(time.Second),
		StrictSigning:    true,
		RequireMeshPeers: true,
	}
}

// CanonicalTopic 发布用主题
func (c GossipConfig) CanonicalTopic() string {
	if len(c.Topics) == 0 {
		return DefaultTopic
	}
	return c.Topics[0]
}

// Validate 验证广播配置
func (c GossipConfig) Validate() error {
	if len(c.Topics) == 0 {
		return ErrNoTopics
	}
	seen := make(map[string]struct{}, len(c.Topics))
	for _, t := range c.Topics {
		if strings.TrimSpace(t) == "" {
			return ErrNoTopics
		}
		if _, dup := seen[t]; dup {
			return ErrDuplicateTopic
		}
		seen[t] = struct{}{}
	}
	if c.Heartbeat <= 0 {
		return ErrInvalidTimeout
	}
	return nil
}
