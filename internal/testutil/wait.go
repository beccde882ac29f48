// Package testutil 提供测试辅助工具
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dep2p/go-docstore/pkg/types"
)

// WaitForCondition 等待条件满足或超时
//
// 先立即检查一次，之后按 interval 轮询；超时返回 false。
func WaitForCondition(t *testing.T, timeout, interval time.Duration, condition func() bool) bool {
	t.Helper()

	if condition() {
		return true
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			if condition() {
				return true
			}
		}
	}
}

// WaitForConditionOrFail 等待条件满足，超时则 fail 测试
func WaitForConditionOrFail(t *testing.T, timeout, interval time.Duration, condition func() bool, msg string) {
	t.Helper()
	if !WaitForCondition(t, timeout, interval, condition) {
		t.Fatalf("等待超时: %s", msg)
	}
}

// EventSource 可逐个读取领域事件的对象
type EventSource interface {
	NextEvent(ctx context.Context) (types.DomainEvent, error)
}

// WaitForEvent 读取事件直到 match 返回 true
//
// 不匹配的事件被丢弃。超时则 fail 测试。
func WaitForEvent(t *testing.T, src EventSource, timeout time.Duration, match func(types.DomainEvent) bool) types.DomainEvent {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for {
		ev, err := src.NextEvent(ctx)
		if err != nil {
			t.Fatalf("等待事件失败: %v", err)
			return nil
		}
		if match(ev) {
			return ev
		}
	}
}

// KindIs 按事件类型匹配
func KindIs(kind types.EventKind) func(types.DomainEvent) bool {
	return func(ev types.DomainEvent) bool {
		return ev.Kind() == kind
	}
}
