package host

import "errors"

var (
	// ErrInvalidEndpoint 地址无法解析
	ErrInvalidEndpoint = errors.New("host: invalid endpoint")
	// ErrDialSelf 拨号自身
	ErrDialSelf = errors.New("host: dial to self")
	// ErrIdentityDiscovery 地址未携带节点身份，且握手未能获知对端身份
	ErrIdentityDiscovery = errors.New("host: peer identity discovery failed")
	// ErrClosed 主机已关闭
	ErrClosed = errors.New("host: closed")
)
