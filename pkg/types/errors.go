package types

import "errors"

// ErrUnknownRole 未知角色
var ErrUnknownRole = errors.New("unknown role")
