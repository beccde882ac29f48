package config

// IdentityConfig 身份配置
type IdentityConfig struct {
	// KeyFile 密钥文件路径
	//
	// 为空时依次使用环境变量 IDENTITY_KEY_PATH 与 <cwd>/.p2p/identity.key。
	KeyFile string `json:"key_file,omitempty"`

	// Ephemeral 使用临时身份，不读写磁盘
	Ephemeral bool `json:"ephemeral,omitempty"`
}

// DefaultIdentityConfig 返回默认身份配置
func DefaultIdentityConfig() IdentityConfig {
	return IdentityConfig{}
}

// Validate 验证身份配置
func (c IdentityConfig) Validate() error {
	if c.Ephemeral && c.KeyFile != "" {
		return ErrEphemeralWithKeyFile
	}
	return nil
}
