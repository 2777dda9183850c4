package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets keys for the duration of the test.
func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	clearEnv(t, "PORT", "STORAGE_TIMEOUT", "PRESENCE_TTL", "WS_SEND_BUFFER", "LOG_LEVEL")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORAGE_DRIVER", StorageMemory)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.StorageTimeout)
	assert.Equal(t, 10*time.Minute, cfg.PresenceTTL)
	assert.Equal(t, 256, cfg.WSSendBuffer)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	clearEnv(t, "JWT_SECRET")
	t.Setenv("STORAGE_DRIVER", StorageMemory)

	_, err := Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Config{StorageDriver: StoragePostgres, DatabaseURL: "postgres://x", StorageTimeout: time.Second, WSSendBuffer: 8}
	require.NoError(t, base.Validate())

	noDSN := base
	noDSN.DatabaseURL = ""
	assert.Error(t, noDSN.Validate())

	unknown := base
	unknown.StorageDriver = "mongo"
	assert.Error(t, unknown.Validate())

	noTimeout := base
	noTimeout.StorageTimeout = 0
	assert.Error(t, noTimeout.Validate())
}
