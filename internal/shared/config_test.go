package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "linkhive.db" {
			t.Errorf("expected database path linkhive.db, got %s", config.Database.Path)
		}

		if config.Import.CollectionBatchSize != 100 {
			t.Errorf("expected collection batch size 100, got %d", config.Import.CollectionBatchSize)
		}

		if config.Fetch.MaxRedirects != 5 {
			t.Errorf("expected max redirects 5, got %d", config.Fetch.MaxRedirects)
		}

		if config.Enrich.Workers != 10 {
			t.Errorf("expected 10 workers, got %d", config.Enrich.Workers)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
path = "/custom/path.db"
max_open_conns = 20
max_idle_conns = 10

[import]
collection_batch_size = 50
bookmark_chunk_size = 25
validation_chunk_size = 500

[fetch]
timeout_seconds = 3
max_redirects = 2
max_attempts = 1
user_agent = "test-agent/1.0"
requests_per_host = 0.5

[enrich]
workers = 2
progress_ttl_minutes = 1

[storage]
root = "/tmp/objects"
cdn_base_url = "http://cdn.test"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}

		if config.Import.CollectionBatchSize != 50 {
			t.Errorf("expected collection batch size 50, got %d", config.Import.CollectionBatchSize)
		}

		if config.Fetch.UserAgent != "test-agent/1.0" {
			t.Errorf("expected user agent test-agent/1.0, got %s", config.Fetch.UserAgent)
		}

		if config.Storage.CDNBaseURL != "http://cdn.test" {
			t.Errorf("expected cdn base url http://cdn.test, got %s", config.Storage.CDNBaseURL)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig("does-not-exist.toml"); err == nil {
			t.Error("expected error for missing config file")
		}
	})
}
