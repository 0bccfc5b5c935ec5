package rlsp

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// retentionDays is the default log retention window (spec §6 "Environment":
// "Logs older than N days (default 7) are purged at startup").
const retentionDays = 7

// sessionLogPrefix and wireLogPrefix name the two log files a run can
// produce (spec §6 "session-<timestamp>-<pid>.log and optional
// wire-<timestamp>-<pid>.log").
const (
	sessionLogPrefix = "session-"
	wireLogPrefix    = "wire-"
)

// cacheDir resolves the platform cache directory this process logs under
// (spec §6 "$XDG_CACHE_HOME, ~/Library/Caches, %LOCALAPPDATA% equivalents"),
// which is exactly what os.UserCacheDir resolves across GOOS.
func cacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolve cache directory: %w", err)
	}
	dir := filepath.Join(base, "rholang-lsp")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create cache directory %s: %w", dir, err)
	}
	return dir, nil
}

// parseLevel maps the --log-level flag (spec §6) onto zap's level type.
func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// NewLogger builds the server's logger, writing to a fresh
// session-<timestamp>-<pid>.log under the platform cache directory in
// addition to stderr, and purges log files older than retentionDays left
// over from previous runs (spec §6). The returned close func must run at
// shutdown to flush and release the file handle; sessionID is a per-run
// identifier included in every log line, since a log file's pid can be
// reused across restarts and the timestamp alone only has second
// resolution.
func NewLogger(level string, noColor bool) (logger *zap.Logger, sessionID string, close func() error, err error) {
	dir, err := cacheDir()
	if err != nil {
		return nil, "", nil, err
	}
	if err := purgeOldLogs(dir); err != nil {
		// A purge failure should never block startup (spec §7 "IO errors
		// during indexing: logged, ... continues"; the same tolerance applies
		// to housekeeping around the logs themselves).
		fmt.Fprintf(os.Stderr, "rholang-lsp: log purge: %v\n", err)
	}

	sessionID = uuid.NewString()
	name := fmt.Sprintf("%s%d-%d.log", sessionLogPrefix, time.Now().Unix(), os.Getpid())
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, "", nil, fmt.Errorf("open log file %s: %w", path, err)
	}

	fileEncoderCfg := zap.NewProductionEncoderConfig()
	fileEncoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	fileEncoder := zapcore.NewJSONEncoder(fileEncoderCfg)

	consoleEncoderCfg := fileEncoderCfg
	if !noColor {
		consoleEncoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	consoleEncoder := zapcore.NewConsoleEncoder(consoleEncoderCfg)

	lvl := parseLevel(level)
	core := zapcore.NewTee(
		zapcore.NewCore(fileEncoder, zapcore.AddSync(f), lvl),
		zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stderr), lvl),
	)
	logger = zap.New(core).With(zap.String("session", sessionID))

	return logger, sessionID, f.Close, nil
}

// newWireLogger builds the optional wire-<timestamp>-<pid>.log used to
// trace raw jsonrpc2 traffic (spec §6), only opened when --log-level is
// debug, since every request/response pair is logged at that level.
func newWireLogger(level string) (*zap.Logger, func() error, error) {
	if parseLevel(level) != zapcore.DebugLevel {
		return zap.NewNop(), func() error { return nil }, nil
	}
	dir, err := cacheDir()
	if err != nil {
		return nil, nil, err
	}
	name := fmt.Sprintf("%s%d-%d.log", wireLogPrefix, time.Now().Unix(), os.Getpid())
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open wire log %s: %w", path, err)
	}
	encoderCfg := zap.NewProductionEncoderConfig()
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(f), zapcore.DebugLevel)
	return zap.New(core), f.Close, nil
}

// purgeOldLogs removes session-*.log and wire-*.log files whose mtime is
// older than retentionDays (spec §6).
func purgeOldLogs(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, sessionLogPrefix) && !strings.HasPrefix(name, wireLogPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			_ = os.Remove(filepath.Join(dir, name))
		}
	}
	return nil
}
