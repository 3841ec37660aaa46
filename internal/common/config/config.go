package config

import (
	"os"
	"strconv"
)

// ============================================================
// Configuration
// ============================================================

type Config struct {
	Port         string
	Environment  string
	ReadTimeout  int
	WriteTimeout int

	EditorURL string
	FilesURL  string

	HistoryLimit   int
	PrimitivesPath string
	WSPort         string

	UploadDir   string
	FilesDBPath string
	MaxUploadMB int
}

// Load reads the configuration from environment variables. defaultPort is
// used when PORT is unset so each service keeps its own port.
func Load(defaultPort string) *Config {
	return &Config{
		Port:         getEnv("PORT", defaultPort),
		Environment:  getEnv("ENV", "development"),
		ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 10),
		WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 10),

		EditorURL: getEnv("EDITOR_URL", "http://localhost:3001"),
		FilesURL:  getEnv("FILES_URL", "http://localhost:3002"),

		HistoryLimit:   getEnvAsInt("HISTORY_LIMIT", 100),
		PrimitivesPath: getEnv("PRIMITIVES_PATH", ""),
		WSPort:         getEnv("WS_PORT", "3101"),

		UploadDir:   getEnv("UPLOAD_DIR", "uploads"),
		FilesDBPath: getEnv("FILES_DB_PATH", "data/db/files.db"),
		MaxUploadMB: getEnvAsInt("MAX_UPLOAD_MB", 50),
	}
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}
