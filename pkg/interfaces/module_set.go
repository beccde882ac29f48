// Package interfaces 定义 docstore 公共接口
//
// 本文件定义按角色组合出的模块集合。
package interfaces

import (
	"sync"

	"go.uber.org/multierr"

	"github.com/dep2p/go-docstore/pkg/types"
)

// ModuleSet 一组协议模块
//
// 由组合器按角色产生；协调器只持有引用。Relay 为 nil 表示未启用中继。
type ModuleSet struct {
	Role      types.Role
	Transport Transport
	Liveness  Liveness
	Gossip    Gossip
	Routing   RoutingTable
	Relay     Relay

	closeOnce sync.Once
	closeErr  error
}

// HasRelay 是否启用中继
func (m *ModuleSet) HasRelay() bool {
	return m != nil && m.Relay != nil
}

// Close 按与创建相反的顺序关闭全部模块，传输层最后关闭
//
// 可重复调用，只有第一次真正关闭。
func (m *ModuleSet) Close() error {
	if m == nil {
		return nil
	}
	m.closeOnce.Do(func() { m.closeErr = m.closeAll() })
	return m.closeErr
}

func (m *ModuleSet) closeAll() error {
	var err error
	if m.Relay != nil {
		err = multierr.Append(err, m.Relay.Close())
	}
	if m.Routing != nil {
		err = multierr.Append(err, m.Routing.Close())
	}
	if m.Gossip != nil {
		err = multierr.Append(err, m.Gossip.Close())
	}
	if m.Liveness != nil {
		err = multierr.Append(err, m.Liveness.Close())
	}
	if m.Transport != nil {
		err = multierr.Append(err, m.Transport.Close())
	}
	return err
}
