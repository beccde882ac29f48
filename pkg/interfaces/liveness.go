// Package interfaces 定义 docstore 公共接口
//
// 本文件定义 Liveness 接口。
package interfaces

import (
	"context"
	"time"

	"github.com/dep2p/go-docstore/pkg/types"
)

// Liveness 存活检测
//
// identify 交换的结果以 IdentifyReceived 事件投递，本接口只暴露主动探测。
type Liveness interface {
	// Ping 发送 ping 并测量 RTT
	Ping(ctx context.Context, peer types.PeerID) (time.Duration, error)

	// Close 停止服务
	Close() error
}
