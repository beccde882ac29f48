package identity

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dep2p/go-docstore/config"
	"github.com/dep2p/go-docstore/pkg/lib/log"
)

var logger = log.Logger("core/identity")

// DefaultKeyPath 相对于工作目录的默认密钥路径
var DefaultKeyPath = filepath.Join(".p2p", "identity.key")

// ResolvePath 解析密钥文件路径
//
// 优先级：explicit > IDENTITY_KEY_PATH > <cwd>/.p2p/identity.key。
// 无法获取工作目录时退回相对路径。
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if v := os.Getenv(config.EnvIdentityKeyPath); v != "" {
		return v
	}
	cwd, err := os.Getwd()
	if err != nil {
		return DefaultKeyPath
	}
	return filepath.Join(cwd, DefaultKeyPath)
}

// LoadOrCreate 加载或创建身份
//
// 返回值 created 表示本次是否生成了新身份。
// 损坏的已有文件不是错误：记录警告后生成新身份并覆盖写入。
func LoadOrCreate(path string) (*Identity, bool, error) {
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		id, derr := Decode(data)
		if derr == nil {
			logger.Info("加载节点身份", "path", path, "peer", log.TruncateID(id.PeerID().String(), 16))
			return id, false, nil
		}
		logger.Warn("身份文件损坏，重新生成", "path", path, "err", derr)
	case errors.Is(err, fs.ErrNotExist):
	default:
		logger.Warn("身份文件不可读，重新生成", "path", path, "err", err)
	}

	id, err := Generate()
	if err != nil {
		return nil, false, err
	}
	if err := save(id, path); err != nil {
		return nil, false, err
	}
	logger.Info("已生成新的节点身份", "path", path, "peer", log.TruncateID(id.PeerID().String(), 16))
	return id, true, nil
}

// save 持久化身份
func save(id *Identity, path string) error {
	data, err := Encode(id)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return &PathError{Op: "mkdir", Path: dir, Err: err}
		}
	}
	if err := atomicWriteFile(path, data, 0o600); err != nil {
		return &PathError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// atomicWriteFile 原子写文件
//
// 流程：同目录临时文件 → 写入 → fsync → chmod → rename。
// 任一步骤失败时目标文件保持不变，临时文件被清理。
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-identity-")
	if err != nil {
		return fmt.Errorf("创建临时文件失败: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("写入临时文件失败: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("同步临时文件失败: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("设置文件权限失败: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("关闭临时文件失败: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename 失败: %w", err)
	}
	success = true
	return nil
}
