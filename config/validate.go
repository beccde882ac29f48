package config

import (
	"errors"
)

// 配置错误
var (
	ErrNilConfig            = errors.New("config is nil")
	ErrEmptyAgentVersion    = errors.New("agent_version must not be empty")
	ErrEphemeralWithKeyFile = errors.New("identity: ephemeral conflicts with key_file")
	ErrNoTransport          = errors.New("transport: at least one transport must be enabled")
	ErrInvalidPort          = errors.New("invalid port")
	ErrInvalidAddress       = errors.New("invalid address")
	ErrInvalidTimeout       = errors.New("timeout/interval must be positive")
	ErrInvalidLimit         = errors.New("invalid limit")
	ErrInvalidWaterMarks    = errors.New("conn_mgr: invalid low/high water marks")
	ErrNoTopics             = errors.New("gossip: at least one non-empty topic is required")
	ErrDuplicateTopic       = errors.New("gossip: duplicate topic")
)

// ValidateAll 验证整个配置
func ValidateAll(c *Config) error {
	if c == nil {
		return ErrNilConfig
	}
	return c.Validate()
}

// ValidateAndFix 验证配置并修复可自动修复的问题
//
// 可修复的问题：
//   - 低水位大于高水位：交换
//   - 主题列表为空：使用默认主题
//   - 没有启用任何传输：启用 TCP
func ValidateAndFix(c *Config) (*Config, error) {
	if c == nil {
		return NewConfig(), nil
	}
	if c.ConnMgr.LowWater > c.ConnMgr.HighWater {
		c.ConnMgr.LowWater, c.ConnMgr.HighWater = c.ConnMgr.HighWater, c.ConnMgr.LowWater
	}
	if len(c.Gossip.Topics) == 0 {
		c.Gossip.Topics = []string{DefaultTopic}
	}
	if !c.Transport.EnableTCP && !c.Transport.EnableQUIC && !c.Transport.EnableWebRTC &&
		len(c.Transport.ExtraListenAddrs) == 0 {
		c.Transport.EnableTCP = true
	}
	return c, c.Validate()
}
