package dht

import "errors"

var (
	// ErrInvalidPeer 节点 ID 无法解析
	ErrInvalidPeer = errors.New("dht: invalid peer id")
	// ErrInvalidEndpoint 地址无法解析
	ErrInvalidEndpoint = errors.New("dht: invalid endpoint")
	// ErrPeerMismatch 地址中的 /p2p 组件与节点 ID 不一致
	ErrPeerMismatch = errors.New("dht: endpoint peer id mismatch")
	// ErrClosed 模块已关闭
	ErrClosed = errors.New("dht: closed")
)
