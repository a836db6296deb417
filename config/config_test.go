package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, path, level string) {
	t.Helper()
	body := "log:\n  level: " + level + "\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestLoadConfigDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cinehub.yaml")
	writeConfigFile(t, path, "info")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.HTTP.Addr)
	assert.Equal(t, "cinehub.db", cfg.DB.Path)
	assert.Equal(t, 64, cfg.Push.MailboxSize)
	assert.Equal(t, "0 * * * *", cfg.Scanner.UpcomingSpec)
	assert.Equal(t, 7*24*time.Hour, cfg.Scanner.UpcomingWindow)
	assert.Equal(t, slog.LevelInfo, cfg.Log.LevelVar().Level())
}

func TestLoadConfigMissingExplicitFileFails(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLogLevelHotReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cinehub.yaml")
	writeConfigFile(t, path, "info")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, slog.LevelInfo, cfg.Log.LevelVar().Level())

	// Rewriting the file must move the live level without a restart.
	writeConfigFile(t, path, "debug")

	require.Eventually(t, func() bool {
		return cfg.Log.LevelVar().Level() == slog.LevelDebug
	}, 5*time.Second, 25*time.Millisecond, "log level did not follow the config file")
}

func TestParseLevelFallsBackToInfo(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, parseLevel("nonsense"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLevel("ERROR"))
}
