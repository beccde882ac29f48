package config

import "time"

// ConnManagerConfig 连接管理配置
//
// 连接数超过高水位时裁剪到低水位；保护期内的新连接不会被裁剪。
type ConnManagerConfig struct {
	// LowWater 低水位
	LowWater int `json:"low_water"`

	// HighWater 高水位
	HighWater int `json:"high_water"`

	// GracePeriod 新连接保护期
	GracePeriod Duration `json:"grace_period"`
}

// DefaultConnManagerConfig 返回默认连接管理配置
func DefaultConnManagerConfig() ConnManagerConfig {
	return ConnManagerConfig{
		LowWater:    32,
		HighWater:   96,
		GracePeriod: Duration(20 * time.Second),
	}
}

// Validate 验证连接管理配置
func (c ConnManagerConfig) Validate() error {
	if c.LowWater < 0 || c.HighWater <= 0 || c.LowWater > c.HighWater {
		return ErrInvalidWaterMarks
	}
	if c.GracePeriod < 0 {
		return ErrInvalidTimeout
	}
	return nil
}
