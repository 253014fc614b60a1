// Package config provides configuration management for the reconciler.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Ignore store backends.
const (
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
)

// Config represents the application configuration.
type Config struct {
	Storage StorageConfig
	Output  OutputConfig
	HTTP    HTTPConfig
	Debug   bool
}

// StorageConfig represents persistence configuration.
type StorageConfig struct {
	DBPath        string
	IgnoreBackend string
	BoltPath      string
}

// OutputConfig represents export and report configuration.
type OutputConfig struct {
	Dir            string
	KeywordsFile   string
	NarrativeMax   int
	ReportPageSize int
}

// HTTPConfig represents the API server configuration.
type HTTPConfig struct {
	Addr string
}

// Load loads configuration from environment variables.
// It automatically loads .env file from the current directory if available.
// You can optionally specify a custom .env file path.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		// Try to load .env from current directory (ignore error if not found)
		_ = godotenv.Load()
	}

	narrativeMax, err := parseIntEnv("RECON_NARRATIVE_MAX", 200)
	if err != nil {
		return nil, err
	}

	pageSize, err := parseIntEnv("RECON_REPORT_PAGE_SIZE", 40)
	if err != nil {
		return nil, err
	}

	dbPath := getEnvOrDefault("RECON_DB_PATH", "./data/reconciler.db")

	config := &Config{
		Storage: StorageConfig{
			DBPath:        dbPath,
			IgnoreBackend: strings.ToLower(getEnvOrDefault("RECON_IGNORE_BACKEND", BackendSQLite)),
			BoltPath:      os.Getenv("RECON_BOLT_PATH"),
		},
		Output: OutputConfig{
			Dir:            getEnvOrDefault("RECON_OUTPUT_DIR", "./exports"),
			KeywordsFile:   os.Getenv("RECON_KEYWORDS_FILE"),
			NarrativeMax:   narrativeMax,
			ReportPageSize: pageSize,
		},
		HTTP: HTTPConfig{
			Addr: getEnvOrDefault("RECON_HTTP_ADDR", ":8080"),
		},
		Debug: os.Getenv("DEBUG") == "true",
	}

	if config.Storage.BoltPath == "" {
		config.Storage.BoltPath = strings.TrimSuffix(dbPath, ".db") + ".bolt"
	}

	return config, nil
}

// Validate validates the configuration.
// It checks if the required fields are set and that enumerated values are known.
func (c *Config) Validate(required ...[]string) error {
	switch c.Storage.IgnoreBackend {
	case BackendSQLite, BackendBolt:
	default:
		return fmt.Errorf("invalid RECON_IGNORE_BACKEND %q: expected %s or %s", c.Storage.IgnoreBackend, BackendSQLite, BackendBolt)
	}

	if c.Output.NarrativeMax <= 0 || c.Output.ReportPageSize <= 0 {
		return fmt.Errorf("RECON_NARRATIVE_MAX and RECON_REPORT_PAGE_SIZE must be positive")
	}

	var missing []string

	for _, path := range required {
		if len(path) < 2 {
			continue
		}

		var value string
		switch path[0] {
		case "storage":
			switch path[1] {
			case "dbPath":
				value = c.Storage.DBPath
			case "boltPath":
				value = c.Storage.BoltPath
			}
		case "output":
			switch path[1] {
			case "dir":
				value = c.Output.Dir
			case "keywordsFile":
				value = c.Output.KeywordsFile
			}
		case "http":
			if path[1] == "addr" {
				value = c.HTTP.Addr
			}
		}

		if value == "" {
			missing = append(missing, strings.Join(path, "."))
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %v\nPlease check your .env file or environment variables", missing)
	}

	return nil
}

// getEnvOrDefault returns the value of the environment variable or a default value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseIntEnv parses an int from an environment variable.
// Returns defaultValue if the environment variable is not set.
func parseIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s: %s", key, value)
	}

	return parsed, nil
}
