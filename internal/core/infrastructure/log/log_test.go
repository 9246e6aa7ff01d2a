package log

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logconfig "github.com/weisyn/wallet/internal/config/log"
)

// readEntries 读取JSON日志文件中的全部条目
func readEntries(t *testing.T, path string) []map[string]interface{} {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var entries []map[string]interface{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func newFileLogger(t *testing.T, level string) (*Logger, string) {
	t.Helper()
	opts := logconfig.DefaultOptions(filepath.Join(t.TempDir(), "logs"))
	opts.Level = level
	logger, err := New(logconfig.New(opts))
	require.NoError(t, err)
	t.Cleanup(func() { _ = logger.Close() })
	return logger, opts.FilePath
}

// TestFileOutput 测试日志写入文件
func TestFileOutput(t *testing.T) {
	logger, path := newFileLogger(t, "info")

	logger.Info("交易已提交")
	logger.Warnf("重试 %d 次", 3)
	require.NoError(t, logger.Close())

	entries := readEntries(t, path)
	require.Len(t, entries, 2)
	assert.Equal(t, "info", entries[0]["level"])
	assert.Equal(t, "交易已提交", entries[0]["message"])
	assert.Equal(t, "warn", entries[1]["level"])
	assert.Equal(t, "重试 3 次", entries[1]["message"])
}

// TestLevelFilter 测试日志级别过滤
func TestLevelFilter(t *testing.T) {
	logger, path := newFileLogger(t, "warn")

	logger.Debug("debug")
	logger.Info("info")
	logger.Error("error")
	require.NoError(t, logger.Close())

	entries := readEntries(t, path)
	require.Len(t, entries, 1)
	assert.Equal(t, "error", entries[0]["message"])
}

// TestWithFields 测试结构化字段
func TestWithFields(t *testing.T) {
	logger, path := newFileLogger(t, "debug")

	logger.With("tx", "0xabc", "attempt", 2, "dangling").Debug("等待回执")
	require.NoError(t, logger.Close())

	entries := readEntries(t, path)
	require.Len(t, entries, 1)
	assert.Equal(t, "0xabc", entries[0]["tx"])
	assert.EqualValues(t, 2, entries[0]["attempt"])
	assert.NotContains(t, entries[0], "dangling")
}

func TestToZapFields(t *testing.T) {
	fields := toZapFields("a", 1, 2, "b")
	require.Len(t, fields, 2)
	assert.Equal(t, "a", fields[0].Key)
	assert.Equal(t, "2", fields[1].Key)

	assert.Empty(t, toZapFields("odd"))
}

func TestNopLogger(t *testing.T) {
	logger := NewNop()
	logger.Info("ignored")
	logger.With("k", "v").Error("ignored")
	assert.NoError(t, logger.Close())
	assert.NotNil(t, logger.GetZapLogger())
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	cfg := logconfig.New(&logconfig.LogOptions{Level: "verbose"})
	assert.Equal(t, "info", cfg.GetZapLevel().String())
}
