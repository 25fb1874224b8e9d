package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allConfigKeys lists every VAULTKEEPER_ env var that Load() reads.
var allConfigKeys = []string{
	"VAULTKEEPER_LISTEN_ADDR",
	"VAULTKEEPER_MONGO_URI",
	"VAULTKEEPER_DB_NAME",
	"VAULTKEEPER_BACKUP_DIR",
	"VAULTKEEPER_EXPORT_PATH",
}

// isolateConfigEnv saves and unsets all VAULTKEEPER_ env vars so tests don't
// inherit values from the host environment (e.g. a running dev server).
// t.Cleanup restores original values after the test.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, ":5000", cfg.ListenAddr)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, "vaultkeeper", cfg.DBName)
	assert.Equal(t, "backups", cfg.BackupDir)
	assert.Equal(t, "export.txt", cfg.ExportPath)
}

func TestLoad_Overrides(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("VAULTKEEPER_LISTEN_ADDR", "127.0.0.1:9090")
	t.Setenv("VAULTKEEPER_MONGO_URI", "mongodb://db:27017")
	t.Setenv("VAULTKEEPER_DB_NAME", "vault_test")
	t.Setenv("VAULTKEEPER_BACKUP_DIR", "/var/backups/vault")
	t.Setenv("VAULTKEEPER_EXPORT_PATH", "/tmp/export.txt")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9090", cfg.ListenAddr)
	assert.Equal(t, "mongodb://db:27017", cfg.MongoURI)
	assert.Equal(t, "vault_test", cfg.DBName)
	assert.Equal(t, "/var/backups/vault", cfg.BackupDir)
	assert.Equal(t, "/tmp/export.txt", cfg.ExportPath)
}
