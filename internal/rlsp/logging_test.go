package rlsp

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"DEBUG":   zapcore.DebugLevel,
		"warn":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"info":    zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLevel(in), "parseLevel(%q)", in)
	}
}

func TestPurgeOldLogsRemovesOnlyStaleSessionAndWireLogs(t *testing.T) {
	dir := t.TempDir()

	fresh := filepath.Join(dir, "session-1-1.log")
	stale := filepath.Join(dir, "session-2-2.log")
	staleWire := filepath.Join(dir, "wire-3-3.log")
	unrelated := filepath.Join(dir, "other-4-4.log")

	for _, p := range []string{fresh, stale, staleWire, unrelated} {
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}

	old := time.Now().AddDate(0, 0, -retentionDays-1)
	require.NoError(t, os.Chtimes(stale, old, old))
	require.NoError(t, os.Chtimes(staleWire, old, old))

	require.NoError(t, purgeOldLogs(dir))

	assertExists(t, fresh, true)
	assertExists(t, stale, false)
	assertExists(t, staleWire, false)
	assertExists(t, unrelated, true)
}

func assertExists(t *testing.T, path string, want bool) {
	t.Helper()
	_, err := os.Stat(path)
	if want {
		assert.NoError(t, err, "expected %s to still exist", path)
	} else {
		assert.True(t, os.IsNotExist(err), "expected %s to have been purged", path)
	}
}

func TestNewLoggerWritesASessionLogUnderTheCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	logger, sessionID, closeLog, err := NewLogger("debug", true)
	require.NoError(t, err)
	require.NotEmpty(t, sessionID)
	defer closeLog()

	logger.Info("hello")

	dir, err := cacheDir()
	require.NoError(t, err)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	found := false
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".log" {
			found = true
		}
	}
	assert.True(t, found, "expected a session log file under %s", dir)
}
