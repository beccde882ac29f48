package identity

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-docstore/config"
)

// TestIdentity_RoundTrip 测试编码/解码后节点地址不变
func TestIdentity_RoundTrip(t *testing.T) {
	id, err := Generate()
	require.NoError(t, err)

	data, err := Encode(id)
	require.NoError(t, err)

	back, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, id.PeerID(), back.PeerID())
	assert.True(t, id.PublicKey().Equals(back.PublicKey()))
	assert.NotEmpty(t, id.PeerID())
}

// TestDecode_Invalid 测试非法数据
func TestDecode_Invalid(t *testing.T) {
	_, err := Decode(nil)
	assert.ErrorIs(t, err, ErrEmptyKey)

	_, err = Decode([]byte("definitely not a protobuf key"))
	assert.ErrorIs(t, err, ErrCorruptKey)

	_, err = FromPrivateKey(nil)
	assert.ErrorIs(t, err, ErrNilKey)

	_, err = Encode(nil)
	assert.ErrorIs(t, err, ErrNilKey)
}

// TestLoadOrCreate_CreatesWithOwnerOnlyPerms 测试首次创建
func TestLoadOrCreate_CreatesWithOwnerOnlyPerms(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "identity.key")

	id, created, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.True(t, created)

	info, err := os.Stat(path)
	require.NoError(t, err)
	if runtime.GOOS != "windows" {
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}

	// 不留下临时文件
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	// 再次加载得到同一身份
	again, created, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, id.PeerID(), again.PeerID())
}

// TestLoadOrCreate_CorruptFileIsNotFatal 测试损坏文件视为不存在
func TestLoadOrCreate_CorruptFileIsNotFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity.key")
	require.NoError(t, os.WriteFile(path, []byte{0xde, 0xad, 0xbe, 0xef}, 0o600))

	id, created, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.True(t, created)
	require.NotNil(t, id)

	// 新身份已覆盖损坏文件
	again, created, err := LoadOrCreate(path)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, id.PeerID(), again.PeerID())
}

// TestLoadOrCreate_FilesystemErrorIsFatal 测试文件系统错误
func TestLoadOrCreate_FilesystemErrorIsFatal(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	// 父路径是普通文件，无法创建目录
	path := filepath.Join(blocker, "sub", "identity.key")
	_, _, err := LoadOrCreate(path)
	require.Error(t, err)

	var pe *PathError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "mkdir", pe.Op)
	assert.Contains(t, err.Error(), blocker)
}

// TestResolvePath 测试路径解析优先级
func TestResolvePath(t *testing.T) {
	t.Setenv(config.EnvIdentityKeyPath, "/from/env.key")
	assert.Equal(t, "/explicit.key", ResolvePath("/explicit.key"))
	assert.Equal(t, "/from/env.key", ResolvePath(""))

	t.Setenv(config.EnvIdentityKeyPath, "")
	cwd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cwd, ".p2p", "identity.key"), ResolvePath(""))
}
