package docstore

import (
	"fmt"
	"strings"

	"github.com/dep2p/go-docstore/config"
	"github.com/dep2p/go-docstore/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
//                              预设配置常量
// ════════════════════════════════════════════════════════════════════════════

// 预设名称常量
const (
	// PresetNameClient 客户端预设名称
	PresetNameClient = "client"

	// PresetNameRelay 中继预设名称
	PresetNameRelay = "relay"

	// PresetNameFullNode 全节点预设名称
	PresetNameFullNode = "full"
)

// Preset 按角色预设的配置
type Preset struct {
	// Name 预设名称
	Name string

	// Description 预设描述
	Description string

	// UseCase 适用场景
	UseCase string

	apply func(cfg *config.Config)
}

// Apply 将预设应用到配置
func (p *Preset) Apply(cfg *config.Config) {
	if p == nil || cfg == nil || p.apply == nil {
		return
	}
	p.apply(cfg)
}

// String 返回预设名称
func (p *Preset) String() string {
	return p.Name
}

// ════════════════════════════════════════════════════════════════════════════
//                              预设定义
// ════════════════════════════════════════════════════════════════════════════

// PresetClient 客户端
//
// 特点：
//   - DHT 客户端模式，不应答查询
//   - 不提供中继服务，依赖中继与打洞
//   - 较少的并发连接
var PresetClient = &Preset{
	Name:        PresetNameClient,
	Description: "轻量客户端，只发起查询",
	UseCase:     "浏览器、移动端、NAT 后的个人设备",
	apply: func(cfg *config.Config) {
		cfg.Role = types.RoleClient
		cfg.Transport.EnableHolePunching = true
		cfg.ConnMgr.LowWater = 8
		cfg.ConnMgr.HighWater = 32
		cfg.Discovery.MaxDiscovered = 256
	},
}

// PresetRelay 中继
//
// 特点：
//   - DHT 服务端模式
//   - 提供 circuit relay v2 服务
//   - 大量并发连接
var PresetRelay = &Preset{
	Name:        PresetNameRelay,
	Description: "公网中继，为 NAT 后的节点转发流量",
	UseCase:     "公网服务器、引导节点",
	apply: func(cfg *config.Config) {
		cfg.Role = types.RoleRelay
		cfg.ConnMgr.LowWater = 128
		cfg.ConnMgr.HighWater = 512
		cfg.Discovery.MaxDiscovered = 4096
	},
}

// PresetFullNode 全节点
//
// 默认配置即全节点。
var PresetFullNode = &Preset{
	Name:        PresetNameFullNode,
	Description: "常驻全节点，参与路由并提供中继",
	UseCase:     "桌面常驻进程、服务器",
	apply: func(cfg *config.Config) {
		def := config.NewConfig()
		cfg.Role = types.RoleFullNode
		cfg.ConnMgr = def.ConnMgr
		cfg.Discovery.MaxDiscovered = def.Discovery.MaxDiscovered
	},
}

// ════════════════════════════════════════════════════════════════════════════
//                              预设查询
// ════════════════════════════════════════════════════════════════════════════

// AvailablePresets 返回所有可用预设
//
// 示例：
//
//	for _, p := range docstore.AvailablePresets() {
//	    fmt.Printf("%s: %s\n", p.Name, p.Description)
//	}
func AvailablePresets() []*Preset {
	return []*Preset{PresetClient, PresetRelay, PresetFullNode}
}

// PresetByName 按名称查找预设，大小写不敏感
func PresetByName(name string) (*Preset, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, p := range AvailablePresets() {
		if p.Name == n {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
}

// PresetForRole 返回角色对应的预设
func PresetForRole(role types.Role) *Preset {
	switch role {
	case types.RoleClient:
		return PresetClient
	case types.RoleRelay:
		return PresetRelay
	default:
		return PresetFullNode
	}
}
