// Package config 提供 docstore 节点的统一配置
//
// 每个配置段都有 DefaultXxxConfig() 与 Validate()。加载优先级（由 cmd 层实施）：
//
//	命令行参数 > 环境变量 > JSON 配置文件 > 默认值
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dep2p/go-docstore/pkg/types"
)

// DefaultAgentVersion identify 协议中上报的 agent 版本
const DefaultAgentVersion = "simple-p2p-docstore/0.1"

// Config 节点完整配置
type Config struct {
	// Role 节点角色（client / relay / full）
	Role types.Role `json:"role"`

	// AgentVersion identify 上报的 agent 版本
	AgentVersion string `json:"agent_version"`

	// Identity 身份配置
	Identity IdentityConfig `json:"identity"`

	// Transport 传输层配置
	Transport TransportConfig `json:"transport"`

	// Discovery 引导与发现配置
	Discovery DiscoveryConfig `json:"discovery"`

	// Gossip 主题广播配置
	Gossip GossipConfig `json:"gossip"`

	// ConnMgr 连接管理配置
	ConnMgr ConnManagerConfig `json:"conn_mgr"`

	// Queue 命令/事件队列配置
	Queue QueueConfig `json:"queue"`

	// Diagnostics 诊断服务配置
	Diagnostics DiagnosticsConfig `json:"diagnostics"`

	// LogFile 日志文件路径，空表示输出到 stderr
	LogFile string `json:"log_file,omitempty"`
}

// NewConfig 创建默认配置
//
// 默认角色为 FullNode。
func NewConfig() *Config {
	return &Config{
		Role:         types.RoleFullNode,
		AgentVersion: DefaultAgentVersion,
		Identity:     DefaultIdentityConfig(),
		Transport:    DefaultTransportConfig(),
		Discovery:    DefaultDiscoveryConfig(),
		Gossip:       DefaultGossipConfig(),
		ConnMgr:      DefaultConnManagerConfig(),
		Queue:        DefaultQueueConfig(),
		Diagnostics:  DefaultDiagnosticsConfig(),
	}
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	if !c.Role.IsValid() {
		return fmt.Errorf("%w: %d", types.ErrUnknownRole, int(c.Role))
	}
	if c.AgentVersion == "" {
		return ErrEmptyAgentVersion
	}
	validators := []func() error{
		c.Identity.Validate,
		c.Transport.Validate,
		c.Discovery.Validate,
		c.Gossip.Validate,
		c.ConnMgr.Validate,
		c.Queue.Validate,
		c.Diagnostics.Validate,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

// Clone 深拷贝（切片字段独立）
func (c *Config) Clone() *Config {
	out := *c
	out.Transport.ExtraListenAddrs = append([]string(nil), c.Transport.ExtraListenAddrs...)
	out.Discovery.BootstrapPeers = append([]string(nil), c.Discovery.BootstrapPeers...)
	out.Gossip.Topics = append([]string(nil), c.Gossip.Topics...)
	return &out
}

// FromJSON 在默认配置之上解析 JSON
//
// JSON 中未出现的字段保持默认值。
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	return cfg, nil
}

// LoadFile 从 JSON 文件加载配置
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}
	return FromJSON(data)
}
