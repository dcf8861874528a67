package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gatehouse/internal/constants"
)

func validConfig() *Config {
	cfg := &Config{}
	cfg.Auth.Secret = "test-secret"
	cfg.ApplyDefaults()
	return cfg
}

// =============================================================================
// Defaults
// =============================================================================

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()

	if cfg.Environment != constants.EnvDevelopment {
		t.Errorf("Expected development environment, got %s", cfg.Environment)
	}
	if cfg.Port != constants.DefaultPort {
		t.Errorf("Expected port %d, got %d", constants.DefaultPort, cfg.Port)
	}
	if cfg.Auth.TokenTTLHours != constants.AuthTokenTTLHours {
		t.Errorf("Expected TTL %d hours, got %d", constants.AuthTokenTTLHours, cfg.Auth.TokenTTLHours)
	}
	if cfg.Upload.MaxSizeBytes != constants.DefaultMaxUploadBytes {
		t.Errorf("Expected max upload %d, got %d", constants.DefaultMaxUploadBytes, cfg.Upload.MaxSizeBytes)
	}
	if len(cfg.Upload.AllowedTypes) == 0 {
		t.Error("Expected default allowed types")
	}
	if cfg.Storage.Backend != "local" {
		t.Errorf("Expected local backend default, got %s", cfg.Storage.Backend)
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{Port: 8080}
	cfg.Auth.Secret = "s"
	cfg.Upload.MaxSizeBytes = 1024
	cfg.ApplyDefaults()

	if cfg.Port != 8080 {
		t.Errorf("Explicit port overwritten: %d", cfg.Port)
	}
	if cfg.Upload.MaxSizeBytes != 1024 {
		t.Errorf("Explicit max size overwritten: %d", cfg.Upload.MaxSizeBytes)
	}
}

// =============================================================================
// Validation
// =============================================================================

func TestValidate_RequiresSecret(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()

	err := cfg.validate()
	if err == nil {
		t.Fatal("Expected validation failure without auth secret")
	}
	if !strings.Contains(err.Error(), "auth.secret") {
		t.Errorf("Expected auth.secret in error, got %v", err)
	}
}

func TestValidate_RemoteBackendNeedsEndpointAndBucket(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Backend = "remote"

	err := cfg.validate()
	if err == nil {
		t.Fatal("Expected validation failure for unconfigured remote backend")
	}
	if !strings.Contains(err.Error(), "storage.remote.endpoint") {
		t.Errorf("Expected endpoint error, got %v", err)
	}

	cfg.Storage.Remote.Endpoint = "store.example.com"
	cfg.Storage.Remote.Bucket = "uploads"
	if err := cfg.validate(); err != nil {
		t.Errorf("Expected valid remote config, got %v", err)
	}
}

func TestValidate_RejectsUnknownBackend(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Backend = "ftp"

	if err := cfg.validate(); err == nil {
		t.Error("Expected validation failure for unknown backend")
	}
}

// =============================================================================
// Load / Save round trip
// =============================================================================

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := validConfig()
	cfg.Port = 9999
	cfg.Upload.AllowedTypes = []string{"image/*"}
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Port != 9999 {
		t.Errorf("Expected port 9999, got %d", loaded.Port)
	}
	if len(loaded.Upload.AllowedTypes) != 1 || loaded.Upload.AllowedTypes[0] != "image/*" {
		t.Errorf("Allowed types not preserved: %v", loaded.Upload.AllowedTypes)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("port: [not-a-number"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Expected error for invalid YAML")
	}
}
