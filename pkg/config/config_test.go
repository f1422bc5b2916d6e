package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fishpi/gofish/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadClientConfigFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: "debug"
reconnect:
  max_retries: 3
`), 0o644))

	cfg, err := config.LoadClientConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 3, cfg.Reconnect.MaxRetries)

	// 未配置的字段回填默认值
	assert.Equal(t, "https://fishpi.cn", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, 256, cfg.WebSocket.SendQueueSize)
	assert.Equal(t, 5*time.Second, cfg.Reconnect.Interval)
}

func TestLoadClientConfigMissingFile(t *testing.T) {
	_, err := config.LoadClientConfig("no/such/file.yaml")
	assert.Error(t, err)
}
