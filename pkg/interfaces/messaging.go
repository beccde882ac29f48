// Package interfaces 定义 docstore 公共接口
//
// 本文件定义 Gossip 接口。
package interfaces

import (
	"context"
	"errors"
	"time"
)

// ErrInsufficientPeers 主题内没有可投递的对端
var ErrInsufficientPeers = errors.New("insufficient peers subscribed to topic")

// Gossip 主题广播模块
//
// 入站消息与订阅变化以 GossipMessage / GossipSubscribed / GossipUnsubscribed 事件投递。
type Gossip interface {
	// Subscribe 加入主题
	Subscribe(topic string) error

	// Publish 在主题上发布，返回消息 ID
	//
	// 主题内没有任何对端时返回 ErrInsufficientPeers（取决于实现配置）。
	Publish(ctx context.Context, topic string, data []byte) (string, error)

	// Topics 已加入的主题
	Topics() []string

	// Close 关闭模块
	Close() error
}

// GossipSpec gossip 模块配置
type GossipSpec struct {
	// StrictSigning 每条消息必须携带可验证的发布者签名
	StrictSigning bool

	// Heartbeat mesh 维护周期
	Heartbeat time.Duration

	// RequireMeshPeers 主题内无对端时拒绝发布
	RequireMeshPeers bool
}
