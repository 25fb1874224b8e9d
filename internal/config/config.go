// Package config loads application configuration from environment variables.
package config

import (
	"os"
)

// Version is the service version reported by the root and health endpoints.
const Version = "1.0.0"

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr string
	MongoURI   string
	DBName     string
	BackupDir  string
	ExportPath string
}

// Load reads configuration from environment variables and returns a Config.
// All variables are optional and fall back to defaults:
// VAULTKEEPER_LISTEN_ADDR (:5000), VAULTKEEPER_MONGO_URI (mongodb://localhost:27017),
// VAULTKEEPER_DB_NAME (vaultkeeper), VAULTKEEPER_BACKUP_DIR (backups),
// VAULTKEEPER_EXPORT_PATH (export.txt).
func Load() (*Config, error) {
	listenAddr := ":5000"
	if v, ok := os.LookupEnv("VAULTKEEPER_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	mongoURI := "mongodb://localhost:27017"
	if v, ok := os.LookupEnv("VAULTKEEPER_MONGO_URI"); ok {
		mongoURI = v
	}

	dbName := "vaultkeeper"
	if v, ok := os.LookupEnv("VAULTKEEPER_DB_NAME"); ok {
		dbName = v
	}

	backupDir := "backups"
	if v, ok := os.LookupEnv("VAULTKEEPER_BACKUP_DIR"); ok {
		backupDir = v
	}

	exportPath := "export.txt"
	if v, ok := os.LookupEnv("VAULTKEEPER_EXPORT_PATH"); ok {
		exportPath = v
	}

	return &Config{
		ListenAddr: listenAddr,
		MongoURI:   mongoURI,
		DBName:     dbName,
		BackupDir:  backupDir,
		ExportPath: exportPath,
	}, nil
}
