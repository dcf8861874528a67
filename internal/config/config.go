package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"gatehouse/internal/constants"
	"gatehouse/internal/logger"
)

// AuthConfig holds credential issuance settings.
type AuthConfig struct {
	// Secret signs bearer credentials. Required — there is no default.
	Secret        string `yaml:"secret"`
	TokenTTLHours int    `yaml:"token_ttl_hours"`
	BcryptCost    int    `yaml:"bcrypt_cost"`
}

// TokenTTL returns the credential lifetime as a time.Duration.
func (c *AuthConfig) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}

// UploadConfig holds the upload acceptance policy.
type UploadConfig struct {
	MaxSizeBytes int64    `yaml:"max_size_bytes"`
	AllowedTypes []string `yaml:"allowed_types"`
}

// RemoteStorageConfig configures the S3-compatible object store backend.
type RemoteStorageConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Folder    string `yaml:"folder"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// StorageConfig selects and configures the storage backend.
// Backend is a deployment-time choice: "local" or "remote".
type StorageConfig struct {
	Backend   string              `yaml:"backend"`
	Directory string              `yaml:"directory"` // local backend root
	Remote    RemoteStorageConfig `yaml:"remote"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level     string `yaml:"level"`
	Directory string `yaml:"directory"` // empty = stdout only
}

// Config holds all application configuration.
type Config struct {
	Environment  string        `yaml:"environment"`
	Port         int           `yaml:"port"`
	BaseURL      string        `yaml:"base_url"`
	DatabasePath string        `yaml:"database_path"`
	Auth         AuthConfig    `yaml:"auth"`
	Upload       UploadConfig  `yaml:"upload"`
	Storage      StorageConfig `yaml:"storage"`
	Log          LogConfig     `yaml:"log"`
}

// IsProduction reports whether the server runs in production mode.
// Controls the Secure attribute on issued cookies.
func (cfg *Config) IsProduction() bool {
	return cfg.Environment == constants.EnvProduction
}

// ApplyDefaults fills zero-valued fields with constant defaults.
func (cfg *Config) ApplyDefaults() {
	if cfg.Environment == "" {
		cfg.Environment = constants.EnvDevelopment
	}
	if cfg.Port == 0 {
		cfg.Port = constants.DefaultPort
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = constants.DefaultBaseURL
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = constants.DefaultDatabaseFile
	}

	// Auth defaults
	if cfg.Auth.TokenTTLHours == 0 {
		cfg.Auth.TokenTTLHours = constants.AuthTokenTTLHours
	}
	if cfg.Auth.BcryptCost == 0 {
		cfg.Auth.BcryptCost = constants.AuthBcryptCost
	}

	// Upload defaults
	if cfg.Upload.MaxSizeBytes == 0 {
		cfg.Upload.MaxSizeBytes = constants.DefaultMaxUploadBytes
	}
	if len(cfg.Upload.AllowedTypes) == 0 {
		cfg.Upload.AllowedTypes = append([]string(nil), constants.DefaultAllowedTypes...)
	}

	// Storage defaults
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "local"
	}
	if cfg.Storage.Directory == "" {
		cfg.Storage.Directory = constants.DefaultUploadDir
	}

	// Log defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = constants.DefaultLogLevel
	}
}

// validate checks that all configurable values are within acceptable ranges.
func (cfg *Config) validate() error {
	var errs []string

	if cfg.Environment != constants.EnvDevelopment && cfg.Environment != constants.EnvProduction {
		errs = append(errs, "environment must be development or production")
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		errs = append(errs, "port must be between 1 and 65535")
	}
	if cfg.Auth.Secret == "" {
		errs = append(errs, "auth.secret must be set")
	}
	if cfg.Auth.TokenTTLHours < 1 {
		errs = append(errs, "auth.token_ttl_hours must be >= 1")
	}
	if cfg.Auth.BcryptCost < 4 || cfg.Auth.BcryptCost > 31 {
		errs = append(errs, "auth.bcrypt_cost must be between 4 and 31")
	}
	if cfg.Upload.MaxSizeBytes < 1 {
		errs = append(errs, "upload.max_size_bytes must be >= 1")
	}

	switch cfg.Storage.Backend {
	case "local":
		if cfg.Storage.Directory == "" {
			errs = append(errs, "storage.directory must be set for the local backend")
		}
	case "remote":
		if cfg.Storage.Remote.Endpoint == "" {
			errs = append(errs, "storage.remote.endpoint must be set for the remote backend")
		}
		if cfg.Storage.Remote.Bucket == "" {
			errs = append(errs, "storage.remote.bucket must be set for the remote backend")
		}
	default:
		errs = append(errs, "storage.backend must be local or remote")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// LogEffectiveValues logs all effective configuration values at startup.
// The auth secret is never logged.
func (cfg *Config) LogEffectiveValues(log *logger.Logger) {
	log.Info("config: environment=%s", cfg.Environment)
	log.Info("config: port=%d", cfg.Port)
	log.Info("config: base_url=%s", cfg.BaseURL)
	log.Info("config: database_path=%s", cfg.DatabasePath)
	log.Info("config: auth.token_ttl_hours=%d", cfg.Auth.TokenTTLHours)
	log.Info("config: auth.bcrypt_cost=%d", cfg.Auth.BcryptCost)
	log.Info("config: upload.max_size_bytes=%d", cfg.Upload.MaxSizeBytes)
	log.Info("config: upload.allowed_types=%s", strings.Join(cfg.Upload.AllowedTypes, ","))
	log.Info("config: storage.backend=%s", cfg.Storage.Backend)
	if cfg.Storage.Backend == "local" {
		log.Info("config: storage.directory=%s", cfg.Storage.Directory)
	} else {
		log.Info("config: storage.remote.endpoint=%s bucket=%s folder=%s",
			cfg.Storage.Remote.Endpoint, cfg.Storage.Remote.Bucket, cfg.Storage.Remote.Folder)
	}
	log.Info("config: log.level=%s", cfg.Log.Level)
}

// DefaultConfigPath returns the per-user config file location.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return constants.ConfigFile
	}
	return filepath.Join(home, constants.ConfigDir, constants.ConfigFile)
}

// Load reads the config file at path, applies defaults, and validates.
// An empty path falls back to DefaultConfigPath.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.ApplyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config as YAML to path, creating parent directories.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, constants.FilePermissions)
}
