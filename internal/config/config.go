package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed tuning.yaml
var tuningYAML []byte

type Config struct {
	Extractor ExtractorConfig
	Database  DatabaseConfig
	Audit     AuditConfig
	Log       LogConfig
	Web       WebConfig
	Tuning    TuningConfig
}

type ExtractorConfig struct {
	URL string // face embedding service, defaults to http://localhost:8000
}

type DatabaseConfig struct {
	Path string // sqlite database file, defaults to facegate.db
}

type AuditConfig struct {
	Path string // append-only login history file, defaults to login_history.log
}

type LogConfig struct {
	Path  string // process log file, defaults to server.log
	Level string // slog level, defaults to info
}

type WebConfig struct {
	Host string
	Port int
}

type TuningConfig struct {
	Recognition RecognitionTuning `yaml:"recognition"`
}

type RecognitionTuning struct {
	DistanceThreshold float64 `yaml:"distance_threshold"`
	EmbeddingDim      int     `yaml:"embedding_dim"`
}

// envString reads an environment variable with a fallback default.
func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

func Load() *Config {
	var tuning TuningConfig
	if err := yaml.Unmarshal(tuningYAML, &tuning); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded tuning.yaml: " + err.Error())
	}

	return &Config{
		Extractor: ExtractorConfig{
			URL: envString("EXTRACTOR_URL", "http://localhost:8000"),
		},
		Database: DatabaseConfig{
			Path: envString("DATABASE_PATH", "facegate.db"),
		},
		Audit: AuditConfig{
			Path: envString("AUDIT_LOG_PATH", "login_history.log"),
		},
		Log: LogConfig{
			Path:  envString("SERVER_LOG_PATH", "server.log"),
			Level: envString("LOG_LEVEL", "info"),
		},
		Web: WebConfig{
			Host: envString("WEB_HOST", "0.0.0.0"),
			Port: envInt("WEB_PORT", 8080),
		},
		Tuning: tuning,
	}
}
