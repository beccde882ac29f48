// Package liveness 提供节点存活检测服务
//
// 在共享主机上挂载 libp2p ping 协议，对外提供 Ping。
// identify 交换的结果由 host 包以 IdentifyReceived 事件投递，不经过这里。
package liveness

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	lphost "github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/p2p/protocol/ping"

	"github.com/dep2p/go-docstore/pkg/interfaces"
	"github.com/dep2p/go-docstore/pkg/lib/log"
	"github.com/dep2p/go-docstore/pkg/types"
)

var logger = log.Logger("core/liveness")

var (
	// ErrServiceClosed 服务已关闭
	ErrServiceClosed = errors.New("liveness service closed")
	// ErrPingTimeout ping 超时
	ErrPingTimeout = errors.New("ping timeout")
)

// Service 存活检测服务
type Service struct {
	host    lphost.Host
	svc     *ping.PingService
	timeout time.Duration
	closed  atomic.Bool
}

var _ interfaces.Liveness = (*Service)(nil)

// New 在主机上挂载 ping 协议
func New(h lphost.Host, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Service{
		host:    h,
		svc:     ping.NewPingService(h),
		timeout: timeout,
	}
}

// Ping 实现 Liveness
func (s *Service) Ping(ctx context.Context, p types.PeerID) (time.Duration, error) {
	if s.closed.Load() {
		return 0, ErrServiceClosed
	}
	pid, err := peer.Decode(p.String())
	if err != nil {
		return 0, fmt.Errorf("解析节点地址失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	select {
	case res, ok := <-ping.Ping(ctx, s.host, pid):
		if !ok {
			return 0, ErrPingTimeout
		}
		if res.Error != nil {
			return 0, res.Error
		}
		logger.Debug("ping 成功", "peer", p.ShortString(), "rtt", res.RTT)
		return res.RTT, nil
	case <-ctx.Done():
		return 0, ErrPingTimeout
	}
}

// Close 实现 Liveness
func (s *Service) Close() error {
	if s.closed.CompareAndSwap(false, true) {
		s.host.RemoveStreamHandler(ping.ID)
	}
	return nil
}
