package log

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]any{
		"debug":   LevelDebug,
		"DEBUG":   LevelDebug,
		" warn ":  LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"info":    LevelInfo,
		"":        LevelInfo,
		"verbose": LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), "input %q", in)
	}
}

func TestLazyLogger_FollowsDefault(t *testing.T) {
	var buf bytes.Buffer
	l := Logger("overlay")

	SetOutput(&buf, LevelDebug)
	defer SetOutput(os.Stderr, LevelInfo)

	l.Debug("处理命令", "kind", "publish")
	out := buf.String()
	assert.Contains(t, out, "component=overlay")
	assert.Contains(t, out, "kind=publish")
	assert.Equal(t, "overlay", l.Component())
}

func TestLazyLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, LevelWarn)
	defer SetOutput(os.Stderr, LevelInfo)

	Logger("x").Info("不应出现")
	Logger("x").Warn("应出现")
	assert.False(t, strings.Contains(buf.String(), "不应出现"))
	assert.True(t, strings.Contains(buf.String(), "应出现"))
}

func TestSetupFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "node.log")
	closer, err := SetupFile(path, LevelInfo)
	require.NoError(t, err)
	defer SetOutput(os.Stderr, LevelInfo)

	Logger("file").Info("写入文件")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "写入文件")
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "12D3Ko", TruncateID("12D3KooWabc", 6))
	assert.Equal(t, "abc", TruncateID("abc", 8))
	assert.Equal(t, "", TruncateID("", 8))
}
