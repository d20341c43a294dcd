package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	t.Run("Reads values from file", func(t *testing.T) {
		// Given: a config file with every section set
		path := writeConfig(t, `
log-level: debug
http-port: "8000"
socket-port: "8001"
redis:
  host: redis
  port: "6380"
sqlite-storage-path: /tmp/history.db
game-ttl: 2h
`)

		// When: the config is loaded
		conf, err := Load(path)

		// Then: the values come from the file
		require.NoError(t, err)
		assert.Equal(t, "debug", conf.LogLevel)
		assert.Equal(t, "8000", conf.HTTPPort)
		assert.Equal(t, "8001", conf.SocketPort)
		assert.Equal(t, "redis:6380", conf.Redis.GetRedisAddr())
		assert.Equal(t, "/tmp/history.db", conf.SQLiteStoragePath)
		assert.Equal(t, 2*time.Hour, conf.GameTTL)
	})

	t.Run("Falls back to defaults", func(t *testing.T) {
		path := writeConfig(t, "log-level: info\n")

		conf, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, "9090", conf.HTTPPort)
		assert.Equal(t, "9091", conf.SocketPort)
		assert.Equal(t, "localhost:6379", conf.Redis.GetRedisAddr())
		assert.Equal(t, 24*time.Hour, conf.GameTTL)
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))

		require.Error(t, err)
		assert.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "absent.yml")) })
	})
}
