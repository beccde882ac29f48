package config

import (
	"github.com/dep2p/go-docstore/internal/util/mailbox"
)

// QueueConfig 命令队列与事件队列配置
//
// 上限为 0 表示无界；设置上限后按 Overflow 策略处理溢出。
type QueueConfig struct {
	// MaxCommands 命令队列上限
	MaxCommands int `json:"max_commands"`

	// MaxEvents 领域事件队列上限
	MaxEvents int `json:"max_events"`

	// Overflow 溢出策略：drop-oldest / reject-new
	Overflow string `json:"overflow"`
}

// DefaultQueueConfig 返回默认队列配置（无界）
func DefaultQueueConfig() QueueConfig {
	return QueueConfig{
		Overflow: mailbox.DropOldest.String(),
	}
}

// Policy 解析后的溢出策略
func (c QueueConfig) Policy() mailbox.OverflowPolicy {
	p, _ := mailbox.ParseOverflowPolicy(c.Overflow)
	return p
}

// Validate 验证队列配置
func (c QueueConfig) Validate() error {
	if c.MaxCommands < 0 || c.MaxEvents < 0 {
		return ErrInvalidLimit
	}
	if _, err := mailbox.ParseOverflowPolicy(c.Overflow); err != nil {
		return err
	}
	return nil
}
