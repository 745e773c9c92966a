package txui

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "txui.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
listen: ":9000"
secret_key: "0123456789abcdef0123456789abcdef"
log_level: debug
store:
  backend: bolt
  ttl: 10m
  encrypt: true
  bolt:
    path: /var/lib/txui/tx.db
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Listen)
	assert.Equal(t, "/static", cfg.StaticPrefix)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, BackendBolt, cfg.Store.Backend)
	assert.Equal(t, 10*time.Minute, cfg.Store.TTL)
	assert.True(t, cfg.Store.Encrypt)
	assert.Equal(t, "/var/lib/txui/tx.db", cfg.Store.Bolt.Path)
	assert.Equal(t, "localhost:6379", cfg.Store.Redis.Address)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown backend", "store:\n  backend: etcd\n"},
		{"negative ttl", "store:\n  ttl: -1m\n"},
		{"encrypt without key", "store:\n  encrypt: true\n"},
		{"bolt without path", "store:\n  backend: bolt\n  bolt:\n    path: \"\"\n"},
		{"bad log level", "log_level: loud\n"},
		{"bad yaml", "listen: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestConfig_YAMLRoundTrip(t *testing.T) {
	data, err := DefaultConfig().YAML()
	require.NoError(t, err)
	assert.Contains(t, string(data), "ttl: 30m0s")

	cfg, err := LoadConfig(writeConfig(t, string(data)))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestNewAppFromConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SecretKey = "0123456789abcdef0123456789abcdef"
	cfg.StaticPrefix = "/assets"

	app, err := NewAppFromConfig(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })

	assert.Equal(t, "/assets/app.js", app.assetURL("app.js"))
	assert.Equal(t, 30*time.Minute, app.Store().ttl)
}

func TestNewAppFromConfig_Bolt(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Store.Backend = BackendBolt
	cfg.Store.Bolt.Path = filepath.Join(t.TempDir(), "tx.db")

	app, err := NewAppFromConfig(cfg)
	require.NoError(t, err)
	require.NoError(t, app.Close())
}

func TestConfig_OpenStore(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Store.TTL = 5 * time.Minute

	plain, err := cfg.OpenStore()
	require.NoError(t, err)
	t.Cleanup(func() { plain.Backend().Close() })
	assert.Equal(t, 5*time.Minute, plain.ttl)
	assert.Nil(t, plain.encoder)

	cfg.SecretKey = "0123456789abcdef0123456789abcdef"
	cfg.Store.Encrypt = true
	sealed, err := cfg.OpenStore()
	require.NoError(t, err)
	t.Cleanup(func() { sealed.Backend().Close() })
	assert.NotNil(t, sealed.encoder)
	assert.True(t, sealed.sensitive)
}
