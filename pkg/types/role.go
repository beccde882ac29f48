package types

import (
	"fmt"
	"strings"
)

// ============================================================================
//                              Role - 节点角色
// ============================================================================

// Role 节点角色
//
// 构造节点时确定，此后不变。决定路由表的参与模式以及是否启用中继能力：
//   - Client:   DHT 仅查询，不提供中继
//   - Relay:    DHT 服务端，提供中继
//   - FullNode: DHT 服务端，提供中继
type Role int

const (
	// RoleClient 客户端（浏览器/受限网络）
	RoleClient Role = iota
	// RoleRelay 中继节点
	RoleRelay
	// RoleFullNode 全节点
	RoleFullNode
)

// AllRoles 所有角色
var AllRoles = []Role{RoleClient, RoleRelay, RoleFullNode}

// String 返回角色名
func (r Role) String() string {
	switch r {
	case RoleClient:
		return "client"
	case RoleRelay:
		return "relay"
	case RoleFullNode:
		return "full"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// IsValid 是否为已知角色
func (r Role) IsValid() bool {
	return r >= RoleClient && r <= RoleFullNode
}

// RoutingMode 该角色对应的路由表模式
func (r Role) RoutingMode() RoutingMode {
	if r == RoleClient {
		return RoutingModeClient
	}
	return RoutingModeServer
}

// RelayCapable 该角色是否启用中继
func (r Role) RelayCapable() bool {
	return r == RoleRelay || r == RoleFullNode
}

// ParseRole 解析角色名
//
// 接受 client / relay / full / fullnode / full-node（大小写不敏感）。
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "client":
		return RoleClient, nil
	case "relay":
		return RoleRelay, nil
	case "full", "fullnode", "full-node", "full_node":
		return RoleFullNode, nil
	default:
		return RoleClient, fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

// MarshalText 实现 encoding.TextMarshaler
func (r Role) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRole, int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (r *Role) UnmarshalText(b []byte) error {
	v, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// ============================================================================
//                              RoutingMode - 路由表模式
// ============================================================================

// RoutingMode 路由表参与模式
type RoutingMode int

const (
	// RoutingModeClient 仅发起查询，不存储记录、不应答查询
	RoutingModeClient RoutingMode = iota
	// RoutingModeServer 存储记录并应答查询
	RoutingModeServer
)

// String 返回模式名
func (m RoutingMode) String() string {
	if m == RoutingModeServer {
		return "server"
	}
	return "client"
}
