package eventbus

import "github.com/dep2p/go-docstore/pkg/types"

// DefaultBufSize 默认订阅缓冲区大小
const DefaultBufSize = 16

type subscriptionSettings struct {
	buffer int
	kinds  map[types.EventKind]struct{}
}

// SubscriptionOpt 订阅选项
type SubscriptionOpt func(*subscriptionSettings)

// BufSize 设置订阅缓冲区大小
func BufSize(size int) SubscriptionOpt {
	return func(s *subscriptionSettings) {
		if size > 0 {
			s.buffer = size
		}
	}
}

// Kinds 只接收指定类型的事件，不设置则接收全部
func Kinds(kinds ...types.EventKind) SubscriptionOpt {
	return func(s *subscriptionSettings) {
		if s.kinds == nil {
			s.kinds = make(map[types.EventKind]struct{}, len(kinds))
		}
		for _, k := range kinds {
			s.kinds[k] = struct{}{}
		}
	}
}
