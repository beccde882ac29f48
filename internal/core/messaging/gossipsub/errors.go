package gossipsub

import "errors"

var (
	// ErrNotSubscribed 尚未加入主题
	ErrNotSubscribed = errors.New("gossipsub: topic not joined")
	// ErrDuplicateMessage 消息与 seen 缓存中的消息 ID 相同，未被发出
	ErrDuplicateMessage = errors.New("gossipsub: duplicate message id")
	// ErrClosed 模块已关闭
	ErrClosed = errors.New("gossipsub: closed")
)
