package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Aidin1998/wallet_system/internal/storage"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"WALLET_API_BASE_URL", LegacyBaseURLEnv, "WALLET_STORAGE_DRIVER", "WALLET_API_TIMEOUT", "WALLET_LOGGING_LEVEL"} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "Wallet System", cfg.App.Name)
	assert.Equal(t, "1.0.0", cfg.App.Version)
	assert.Equal(t, "http://localhost:3002", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, storage.DriverBadger, cfg.Storage.Driver)
	assert.Equal(t, "~/.wallet-system", cfg.Storage.Path)
	assert.Equal(t, "walletId", cfg.Storage.WalletIDKey)
	assert.Equal(t, "userPreferences", cfg.Storage.PreferencesKey)
	assert.Equal(t, 1500*time.Millisecond, cfg.Session.ReloadDelay)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("WALLET_API_TIMEOUT", "3s")
	t.Setenv("WALLET_STORAGE_DRIVER", "memory")
	t.Setenv("WALLET_LOGGING_LEVEL", "debug")

	t.Run("legacy base url", func(t *testing.T) {
		t.Setenv(LegacyBaseURLEnv, "http://wallet.internal:8080")
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "http://wallet.internal:8080", cfg.API.BaseURL)
		assert.Equal(t, 3*time.Second, cfg.API.Timeout)
		assert.Equal(t, storage.DriverMemory, cfg.Storage.Driver)
		assert.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("prefixed base url wins", func(t *testing.T) {
		t.Setenv(LegacyBaseURLEnv, "http://legacy:1")
		t.Setenv("WALLET_API_BASE_URL", "https://wallet.example.com")
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "https://wallet.example.com", cfg.API.BaseURL)
	})
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "wallet.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  base_url: http://files.test:9000
  timeout: 4s
storage:
  driver: redis
  redis_addr: cache:6379
  key_prefix: "team:"
logging:
  format: console
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://files.test:9000", cfg.API.BaseURL)
	assert.Equal(t, 4*time.Second, cfg.API.Timeout)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, storage.Config{
		Driver:    storage.DriverRedis,
		Path:      "~/.wallet-system",
		RedisAddr: "cache:6379",
		KeyPrefix: "team:",
	}, cfg.Storage.Store())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	base, err := Load("")
	require.NoError(t, err)

	cases := map[string]func(c *Config){
		"bad url":        func(c *Config) { c.API.BaseURL = "not a url" },
		"zero timeout":   func(c *Config) { c.API.Timeout = 0 },
		"unknown driver": func(c *Config) { c.Storage.Driver = "etcd" },
		"badger no path": func(c *Config) { c.Storage.Path = "" },
		"redis no addr":  func(c *Config) { c.Storage.Driver = "redis"; c.Storage.RedisAddr = "" },
		"bad level":      func(c *Config) { c.Logging.Level = "trace" },
		"no id key":      func(c *Config) { c.Storage.WalletIDKey = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := *base
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}

	assert.NoError(t, base.Validate())
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("VITE_API_BASE_URL=http://dotenv.test:3002\n"), 0o600))

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), path))
	t.Cleanup(func() { os.Unsetenv(LegacyBaseURLEnv) })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://dotenv.test:3002", cfg.API.BaseURL)
}

func TestValidateEnvironment(t *testing.T) {
	clearEnv(t)
	core, logs := observer.New(zapcore.WarnLevel)

	missing := ValidateEnvironment(zap.New(core))
	assert.Equal(t, []string{LegacyBaseURLEnv}, missing)
	assert.Equal(t, 1, logs.Len())

	t.Setenv(LegacyBaseURLEnv, "http://set:1")
	assert.Empty(t, ValidateEnvironment(zap.New(core)))
}
