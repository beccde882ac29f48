package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/dep2p/go-docstore/pkg/lib/log"
	"github.com/dep2p/go-docstore/pkg/types"
)

var logger = log.Logger("config")

// 环境变量
const (
	// EnvIdentityKeyPath 身份密钥文件路径
	EnvIdentityKeyPath = "IDENTITY_KEY_PATH"
	// EnvBootstrapPeers 种子节点，逗号分隔
	EnvBootstrapPeers = "BOOTSTRAP_PEERS"
	// EnvSignalingPort WebRTC-direct UDP 端口
	EnvSignalingPort = "SIGNALING_PORT"
	// EnvRole 节点角色
	EnvRole = "DOCSTORE_ROLE"
	// EnvLogFile 日志文件
	EnvLogFile = "DOCSTORE_LOG_FILE"
	// EnvIntrospectAddr 自省服务地址，设置即启用
	EnvIntrospectAddr = "DOCSTORE_INTROSPECT_ADDR"
)

// LookupFunc 环境变量查询函数，签名同 os.LookupEnv
type LookupFunc func(key string) (string, bool)

// ApplyEnv 用环境变量覆盖配置
//
// 非法的 SIGNALING_PORT 记录警告后保持原值；非法的 DOCSTORE_ROLE 返回错误。
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	if v, ok := lookup(EnvIdentityKeyPath); ok && v != "" {
		c.Identity.KeyFile = v
	}
	if v, ok := lookup(EnvBootstrapPeers); ok {
		c.Discovery.BootstrapPeers = SplitList(v)
	}
	if v, ok := lookup(EnvSignalingPort); ok && v != "" {
		port, err := strconv.ParseUint(strings.TrimSpace(v), 10, 16)
		if err != nil {
			logger.Warn("SIGNALING_PORT 无效，保持原值", "value", v, "port", c.Transport.SignalingPort)
		} else {
			c.Transport.SignalingPort = int(port)
		}
	}
	if v, ok := lookup(EnvRole); ok && v != "" {
		role, err := types.ParseRole(v)
		if err != nil {
			return err
		}
		c.Role = role
	}
	if v, ok := lookup(EnvLogFile); ok && v != "" {
		c.LogFile = v
	}
	if v, ok := lookup(EnvIntrospectAddr); ok && v != "" {
		c.Diagnostics.EnableIntrospect = true
		c.Diagnostics.IntrospectAddr = v
	}
	return nil
}

// SplitList 按逗号分割并去除空白，丢弃空项
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
