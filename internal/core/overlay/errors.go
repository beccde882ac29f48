package overlay

import "errors"

var (
	// ErrLoopClosed 事件循环已终止，命令无法投递
	ErrLoopClosed = errors.New("overlay: event loop closed")
	// ErrCommandQueueFull 命令队列已满（reject-new 策略）
	ErrCommandQueueFull = errors.New("overlay: command queue full")
	// ErrAlreadyStarted 事件循环已启动
	ErrAlreadyStarted = errors.New("overlay: already started")
	// ErrNilModules 未提供模块集合
	ErrNilModules = errors.New("overlay: module set is nil")
	// ErrEmptyTarget FindPeer 目标为空
	ErrEmptyTarget = errors.New("overlay: empty find_peer target")
)
