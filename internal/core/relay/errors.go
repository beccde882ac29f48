package relay

import "errors"

// ErrNoHost 缺少主机
var ErrNoHost = errors.New("relay: host is required")
