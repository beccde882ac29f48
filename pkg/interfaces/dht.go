// Package interfaces 定义 docstore 公共接口
//
// 本文件定义 RoutingTable 接口。
package interfaces

import (
	"errors"

	"github.com/dep2p/go-docstore/pkg/types"
)

// ErrNoKnownPeers 路由表为空，查询无法发出
var ErrNoKnownPeers = errors.New("routing table has no known peers")

// QueryID 路由表查询 ID
type QueryID string

// RoutingTable 分布式路由表
//
// 查询结果以 QueryCompleted 事件投递，按 QueryID 关联。
type RoutingTable interface {
	// Mode 参与模式
	Mode() types.RoutingMode

	// AddAddress 插入 (节点, 地址)
	//
	// 幂等：已知地址返回 (false, nil)。
	AddAddress(peer types.PeerID, ep types.Endpoint) (bool, error)

	// FindClosestPeers 发起最近节点查询
	//
	// 路由表为空时返回 ErrNoKnownPeers，不产生 QueryCompleted 事件。
	FindClosestPeers(target types.PeerID) (QueryID, error)

	// Bootstrap 触发一次路由表刷新（查询距离自身最近的节点）
	Bootstrap() error

	// Size 路由表中的节点数
	Size() int

	// Close 关闭模块
	Close() error
}
