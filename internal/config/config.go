// Package config manages configuration for the slicerlink CLI and the local
// staging server. It uses Viper for unified configuration management from
// files and environment variables.
package config

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"slicerlink/internal/constants"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config represents the unified configuration structure for the CLI and the
// local staging server. It supports loading from YAML files and environment
// variables.
type Config struct {
	// Remote file server connection (server staging provider + original fetch)
	ServerURL   string `mapstructure:"server_url" yaml:"server_url" validate:"omitempty,url"`
	Username    string `mapstructure:"username" yaml:"username"`
	AppPassword string `mapstructure:"app_password" yaml:"app_password"`

	// Staging provider selection and provider-specific knobs
	StagingProvider constants.StagingProvider `mapstructure:"staging_provider" yaml:"staging_provider"`
	S3Bucket        string                    `mapstructure:"s3_bucket" yaml:"s3_bucket"`
	S3Region        string                    `mapstructure:"s3_region" yaml:"s3_region"`
	S3Prefix        string                    `mapstructure:"s3_prefix" yaml:"s3_prefix"`
	LocalListenAddr string                    `mapstructure:"local_listen_addr" yaml:"local_listen_addr"`

	// Handoff behavior
	DownloadDir       string        `mapstructure:"download_dir" yaml:"download_dir"`
	ObservationWindow time.Duration `mapstructure:"observation_window" yaml:"observation_window"`
	CleanupDelay      time.Duration `mapstructure:"cleanup_delay" yaml:"cleanup_delay"`
	ShareTTL          time.Duration `mapstructure:"share_ttl" yaml:"share_ttl"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

var validate = validator.New()

// Load loads the configuration using Viper.
// Loads from ~/.slicerlink/config.yaml when present, then applies environment
// variables with the SLICERLINK_ prefix. Environment variables take precedence
// over config file values. A missing config file is acceptable; defaults cover
// every knob.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if err := loadConfigFile(v); err != nil {
		// Config file not found is acceptable (env vars and defaults suffice)
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("error loading config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix("SLICERLINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.StagingProvider = normalizeStagingProvider(cfg.StagingProvider)
	cfg.ServerURL = normalizeServerURL(cfg.ServerURL)

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadCLI loads configuration specifically for CLI usage.
// Returns an error if the config file doesn't exist; defaults still fill any
// knob the file leaves out.
func LoadCLI() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if err := loadConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.StagingProvider = normalizeStagingProvider(cfg.StagingProvider)
	cfg.ServerURL = normalizeServerURL(cfg.ServerURL)

	return &cfg, nil
}

// MustLoad loads configuration and exits on error.
// Suitable for application startup where configuration errors should be fatal.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	return cfg
}

// Save saves the configuration to the user's home directory.
// Overwrites the existing config file if it exists.
func Save(config *Config) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("error resolving home directory: %w", err)
	}

	configDir := constants.ConfigDirPath(homeDir)

	if err = os.MkdirAll(configDir, constants.ConfigDirPermissions); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	configFilePath := filepath.Join(configDir, constants.ConfigFileName)

	v := viper.New()
	v.Set("server_url", normalizeServerURL(config.ServerURL))
	v.Set("username", config.Username)
	v.Set("app_password", config.AppPassword)
	v.Set("staging_provider", string(normalizeStagingProvider(config.StagingProvider)))
	if config.S3Bucket != "" {
		v.Set("s3_bucket", config.S3Bucket)
	}
	if config.S3Region != "" {
		v.Set("s3_region", config.S3Region)
	}
	if config.S3Prefix != "" {
		v.Set("s3_prefix", config.S3Prefix)
	}
	if config.LocalListenAddr != "" {
		v.Set("local_listen_addr", config.LocalListenAddr)
	}
	if config.DownloadDir != "" {
		v.Set("download_dir", config.DownloadDir)
	}

	if err = v.WriteConfigAs(configFilePath); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	// App passwords live in this file; keep it owner-readable only
	if err = os.Chmod(configFilePath, constants.ConfigFilePermissions); err != nil {
		return fmt.Errorf("error setting config file permissions: %w", err)
	}

	return nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("error resolving home directory: %w", err)
	}

	configDir := constants.ConfigDirPath(homeDir)
	return filepath.Join(configDir, constants.ConfigFileName), nil
}

// GetLogLevel returns the slog.Level from the string configuration.
// Defaults to INFO if the level string is invalid.
func (c *Config) GetLogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// ResolveDownloadDir returns the directory fallback downloads are saved to.
// Defaults to ~/Downloads when not configured.
func (c *Config) ResolveDownloadDir() (string, error) {
	if c.DownloadDir != "" {
		return c.DownloadDir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("error resolving home directory: %w", err)
	}
	return filepath.Join(homeDir, "Downloads"), nil
}

// ValidateStaging validates that the configuration carries everything the
// selected staging provider needs. Called before a send or serve, not at
// load time, so a partially configured CLI can still run apps or configure.
func (c *Config) ValidateStaging() error {
	provider := normalizeStagingProvider(c.StagingProvider)

	switch provider {
	case constants.ServerStaging:
		return validateServerStaging(c)
	case constants.S3Staging:
		return validateS3Staging(c)
	case constants.LocalStaging:
		return validateLocalStaging(c)
	default:
		return fmt.Errorf("unsupported staging provider: %s (supported: %s)",
			provider, constants.StagingProvidersString())
	}
}

// Helper functions

func setDefaults(v *viper.Viper) {
	v.SetDefault("staging_provider", string(constants.ServerStaging))
	v.SetDefault("local_listen_addr", constants.DefaultLocalListenAddr)
	v.SetDefault("observation_window", constants.DefaultObservationWindow)
	v.SetDefault("cleanup_delay", constants.DefaultCleanupDelay)
	v.SetDefault("share_ttl", constants.DefaultShareTTL)
	v.SetDefault("log_level", "INFO")
}

func loadConfigFile(v *viper.Viper) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("error resolving home directory: %w", err)
	}

	configFile := constants.ConfigFilePath(homeDir)

	v.SetConfigFile(configFile)
	v.SetConfigType("yaml")

	if readErr := v.ReadInConfig(); readErr != nil {
		return readErr
	}

	return nil
}

func bindEnvVars(v *viper.Viper) {
	// Bind all environment variables explicitly
	envVars := []string{
		"APP_PASSWORD",
		"CLEANUP_DELAY",
		"DOWNLOAD_DIR",
		"LOCAL_LISTEN_ADDR",
		"LOG_LEVEL",
		"OBSERVATION_WINDOW",
		"S3_BUCKET",
		"S3_PREFIX",
		"S3_REGION",
		"SERVER_URL",
		"SHARE_TTL",
		"STAGING_PROVIDER",
		"USERNAME",
	}

	for _, envVar := range envVars {
		// Convert to lowercase to match mapstructure tags (keep underscores)
		configKey := strings.ToLower(envVar)
		_ = v.BindEnv(configKey, "SLICERLINK_"+envVar)
	}
}

func validateServerStaging(cfg *Config) error {
	required := map[string]string{
		"ServerURL":   cfg.ServerURL,
		"Username":    cfg.Username,
		"AppPassword": cfg.AppPassword,
	}

	for field, value := range required {
		if value == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}
	}

	return nil
}

func validateS3Staging(cfg *Config) error {
	required := map[string]string{
		"S3Bucket": cfg.S3Bucket,
		"S3Region": cfg.S3Region,
	}

	for field, value := range required {
		if value == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}
	}

	return nil
}

func validateLocalStaging(cfg *Config) error {
	if cfg.LocalListenAddr == "" {
		// NewLocalStager falls back to the default loopback address
		return nil
	}
	if _, _, err := net.SplitHostPort(cfg.LocalListenAddr); err != nil {
		return fmt.Errorf("invalid LocalListenAddr: %w", err)
	}

	return nil
}

// normalizeServerURL trims whitespace and trailing slashes so staged paths can
// be appended directly.
// Accepts: https://files.example.com/, https://files.example.com
// Returns: https://files.example.com
func normalizeServerURL(serverURL string) string {
	serverURL = strings.TrimSpace(serverURL)
	return strings.TrimRight(serverURL, "/")
}

// normalizeStagingProvider trims whitespace and uppercases the staging provider identifier.
func normalizeStagingProvider(provider constants.StagingProvider) constants.StagingProvider {
	normalized := strings.TrimSpace(string(provider))
	if normalized == "" {
		return ""
	}
	return constants.StagingProvider(strings.ToUpper(normalized))
}
