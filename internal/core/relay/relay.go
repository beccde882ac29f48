package relay

import (
	"fmt"
	"sync"

	lphost "github.com/libp2p/go-libp2p/core/host"
	circuit "github.com/libp2p/go-libp2p/p2p/protocol/circuitv2/relay"

	"github.com/dep2p/go-docstore/pkg/interfaces"
	"github.com/dep2p/go-docstore/pkg/lib/log"
)

var logger = log.Logger("core/relay")

// Service 中继服务端
type Service struct {
	relay *circuit.Relay

	closeOnce sync.Once
	closeErr  error
}

var _ interfaces.Relay = (*Service)(nil)

// New 在主机上启用电路中继服务（默认资源配置）
func New(h lphost.Host) (*Service, error) {
	if h == nil {
		return nil, ErrNoHost
	}
	r, err := circuit.New(h, circuit.WithResources(circuit.DefaultResources()))
	if err != nil {
		return nil, fmt.Errorf("启动中继服务失败: %w", err)
	}
	logger.Info("中继服务已启用", "protocol", interfaces.RelayHopProtocol)
	return &Service{relay: r}, nil
}

// Close 实现 Relay
func (s *Service) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.relay.Close()
		logger.Info("中继服务已停止")
	})
	return s.closeErr
}
