package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Import   ImportConfig   `toml:"import"`
	Fetch    FetchConfig    `toml:"fetch"`
	Enrich   EnrichConfig   `toml:"enrich"`
	Storage  StorageConfig  `toml:"storage"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ImportConfig contains batch sizing for bookmark file imports.
type ImportConfig struct {
	CollectionBatchSize int `toml:"collection_batch_size"`
	BookmarkChunkSize   int `toml:"bookmark_chunk_size"`
	ValidationChunkSize int `toml:"validation_chunk_size"`
}

// FetchConfig contains settings for outbound page metadata requests.
type FetchConfig struct {
	TimeoutSeconds  int     `toml:"timeout_seconds"`
	MaxRedirects    int     `toml:"max_redirects"`
	MaxAttempts     int     `toml:"max_attempts"`
	UserAgent       string  `toml:"user_agent"`
	RequestsPerHost float64 `toml:"requests_per_host"`
}

// EnrichConfig contains settings for the metadata enrichment worker pool.
type EnrichConfig struct {
	Workers            int `toml:"workers"`
	ProgressTTLMinutes int `toml:"progress_ttl_minutes"`
}

// StorageConfig contains object storage settings for favicon assets.
type StorageConfig struct {
	Root       string `toml:"root"`
	CDNBaseURL string `toml:"cdn_base_url"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
