package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"slicerlink/internal/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_GetLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
		expected slog.Level
	}{
		{
			name:     "DEBUG level",
			logLevel: "DEBUG",
			expected: slog.LevelDebug,
		},
		{
			name:     "INFO level",
			logLevel: "INFO",
			expected: slog.LevelInfo,
		},
		{
			name:     "WARN level",
			logLevel: "WARN",
			expected: slog.LevelWarn,
		},
		{
			name:     "ERROR level",
			logLevel: "ERROR",
			expected: slog.LevelError,
		},
		{
			name:     "invalid level defaults to INFO",
			logLevel: "INVALID",
			expected: slog.LevelInfo,
		},
		{
			name:     "empty string defaults to INFO",
			logLevel: "",
			expected: slog.LevelInfo,
		},
		{
			name:     "lowercase level",
			logLevel: "debug",
			expected: slog.LevelDebug,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{LogLevel: tt.logLevel}
			result := cfg.GetLogLevel()
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestValidateStaging(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid server staging config",
			cfg: &Config{
				StagingProvider: constants.ServerStaging,
				ServerURL:       "https://files.example.com",
				Username:        "printer",
				AppPassword:     "abcde-fghij-klmno-pqrst-uvwxy",
			},
			wantErr: false,
		},
		{
			name: "server staging missing ServerURL",
			cfg: &Config{
				StagingProvider: constants.ServerStaging,
				Username:        "printer",
				AppPassword:     "abcde-fghij-klmno-pqrst-uvwxy",
			},
			wantErr: true,
			errMsg:  "ServerURL cannot be empty",
		},
		{
			name: "server staging missing Username",
			cfg: &Config{
				StagingProvider: constants.ServerStaging,
				ServerURL:       "https://files.example.com",
				AppPassword:     "abcde-fghij-klmno-pqrst-uvwxy",
			},
			wantErr: true,
			errMsg:  "Username cannot be empty",
		},
		{
			name: "server staging missing AppPassword",
			cfg: &Config{
				StagingProvider: constants.ServerStaging,
				ServerURL:       "https://files.example.com",
				Username:        "printer",
			},
			wantErr: true,
			errMsg:  "AppPassword cannot be empty",
		},
		{
			name: "valid s3 staging config",
			cfg: &Config{
				StagingProvider: constants.S3Staging,
				S3Bucket:        "slicer-handoff",
				S3Region:        "eu-central-1",
			},
			wantErr: false,
		},
		{
			name: "s3 staging missing S3Bucket",
			cfg: &Config{
				StagingProvider: constants.S3Staging,
				S3Region:        "eu-central-1",
			},
			wantErr: true,
			errMsg:  "S3Bucket cannot be empty",
		},
		{
			name: "s3 staging missing S3Region",
			cfg: &Config{
				StagingProvider: constants.S3Staging,
				S3Bucket:        "slicer-handoff",
			},
			wantErr: true,
			errMsg:  "S3Region cannot be empty",
		},
		{
			name: "valid local staging config",
			cfg: &Config{
				StagingProvider: constants.LocalStaging,
				LocalListenAddr: "127.0.0.1:8680",
			},
			wantErr: false,
		},
		{
			name: "local staging defaults an empty listen address",
			cfg: &Config{
				StagingProvider: constants.LocalStaging,
			},
			wantErr: false,
		},
		{
			name: "local staging rejects a malformed listen address",
			cfg: &Config{
				StagingProvider: constants.LocalStaging,
				LocalListenAddr: "no-port",
			},
			wantErr: true,
			errMsg:  "invalid LocalListenAddr",
		},
		{
			name: "lowercase provider is accepted",
			cfg: &Config{
				StagingProvider: constants.StagingProvider("s3"),
				S3Bucket:        "slicer-handoff",
				S3Region:        "eu-central-1",
			},
			wantErr: false,
		},
		{
			name: "unsupported provider",
			cfg: &Config{
				StagingProvider: constants.StagingProvider("ftp"),
			},
			wantErr: true,
			errMsg:  "unsupported staging provider",
		},
		{
			name:    "empty provider",
			cfg:     &Config{},
			wantErr: true,
			errMsg:  "unsupported staging provider",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.ValidateStaging()

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestConfigStruct(t *testing.T) {
	t.Run("can create config with all fields", func(t *testing.T) {
		cfg := &Config{
			ServerURL:         "https://files.example.com",
			Username:          "printer",
			AppPassword:       "secret",
			StagingProvider:   constants.S3Staging,
			S3Bucket:          "slicer-handoff",
			S3Region:          "eu-central-1",
			S3Prefix:          "exports/",
			LocalListenAddr:   "127.0.0.1:8680",
			DownloadDir:       "/tmp/downloads",
			ObservationWindow: constants.DefaultObservationWindow,
			CleanupDelay:      constants.DefaultCleanupDelay,
			ShareTTL:          constants.DefaultShareTTL,
			LogLevel:          "INFO",
		}

		assert.NotNil(t, cfg)
		assert.Equal(t, "https://files.example.com", cfg.ServerURL)
		assert.Equal(t, constants.S3Staging, cfg.StagingProvider)
		assert.Equal(t, constants.DefaultObservationWindow, cfg.ObservationWindow)
		assert.Equal(t, "INFO", cfg.LogLevel)
	})
}

func TestValidationRules(t *testing.T) {
	t.Run("URL validation for ServerURL", func(t *testing.T) {
		tests := []struct {
			name    string
			url     string
			wantErr bool
		}{
			{
				name:    "valid https URL",
				url:     "https://files.example.com",
				wantErr: false,
			},
			{
				name:    "valid http URL",
				url:     "http://localhost:8080",
				wantErr: false,
			},
			{
				name:    "empty URL is valid (omitempty)",
				url:     "",
				wantErr: false,
			},
			{
				name:    "invalid URL",
				url:     "not-a-url",
				wantErr: true,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				cfg := &Config{
					ServerURL: tt.url,
				}

				err := validate.Struct(cfg)

				if tt.wantErr {
					assert.Error(t, err, "Expected validation error for URL: %s", tt.url)
				} else {
					assert.NoError(t, err, "Expected no validation error for URL: %s", tt.url)
				}
			})
		}
	})
}

func TestGetConfigPath(t *testing.T) {
	t.Run("returns a non-empty path", func(t *testing.T) {
		path, err := GetConfigPath()
		require.NoError(t, err)
		assert.NotEmpty(t, path)
		assert.Contains(t, path, ".slicerlink")
		assert.Contains(t, path, "config.yaml")
	})
}

func TestNormalizeServerURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "strips trailing slash",
			input:    "https://files.example.com/",
			expected: "https://files.example.com",
		},
		{
			name:     "strips multiple trailing slashes",
			input:    "https://files.example.com///",
			expected: "https://files.example.com",
		},
		{
			name:     "handles already normalized",
			input:    "https://files.example.com",
			expected: "https://files.example.com",
		},
		{
			name:     "handles with whitespace",
			input:    "  https://files.example.com/  ",
			expected: "https://files.example.com",
		},
		{
			name:     "preserves path segments",
			input:    "https://example.com/cloud/",
			expected: "https://example.com/cloud",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := normalizeServerURL(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestNormalizeStagingProvider(t *testing.T) {
	tests := []struct {
		name     string
		input    constants.StagingProvider
		expected constants.StagingProvider
	}{
		{
			name:     "empty provider",
			input:    "",
			expected: "",
		},
		{
			name:     "lowercase provider",
			input:    constants.StagingProvider("server"),
			expected: constants.ServerStaging,
		},
		{
			name:     "uppercase provider",
			input:    constants.StagingProvider("S3"),
			expected: constants.S3Staging,
		},
		{
			name:     "mixed case provider",
			input:    constants.StagingProvider("Local"),
			expected: constants.LocalStaging,
		},
		{
			name:     "provider with whitespace",
			input:    constants.StagingProvider("  server  "),
			expected: constants.ServerStaging,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := normalizeStagingProvider(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestResolveDownloadDir(t *testing.T) {
	t.Run("configured directory wins", func(t *testing.T) {
		cfg := &Config{DownloadDir: "/srv/exports"}

		dir, err := cfg.ResolveDownloadDir()
		require.NoError(t, err)
		assert.Equal(t, "/srv/exports", dir)
	})

	t.Run("defaults to home Downloads", func(t *testing.T) {
		tmpHome := t.TempDir()
		t.Setenv("HOME", tmpHome)

		cfg := &Config{}

		dir, err := cfg.ResolveDownloadDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(tmpHome, "Downloads"), dir)
	})
}

func TestSave(t *testing.T) {
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)

	testConfig := &Config{
		ServerURL:       "https://files.example.com/",
		Username:        "printer",
		AppPassword:     "abcde-fghij-klmno-pqrst-uvwxy",
		StagingProvider: constants.StagingProvider("server"),
		DownloadDir:     "/tmp/downloads",
	}

	err := Save(testConfig)
	require.NoError(t, err)

	configPath := filepath.Join(tmpHome, constants.ConfigDirName, constants.ConfigFileName)

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(constants.ConfigFilePermissions), info.Mode().Perm())

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, "server_url")
	// Trailing slash is normalized away before writing
	assert.Contains(t, content, "https://files.example.com")
	assert.NotContains(t, content, "https://files.example.com/")
	assert.Contains(t, content, "SERVER")
}

func TestSaveAndLoadCLI(t *testing.T) {
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)

	testConfig := &Config{
		ServerURL:       "https://files.example.com",
		Username:        "printer",
		AppPassword:     "abcde-fghij-klmno-pqrst-uvwxy",
		StagingProvider: constants.ServerStaging,
	}

	require.NoError(t, Save(testConfig))

	loaded, err := LoadCLI()
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, testConfig.ServerURL, loaded.ServerURL)
	assert.Equal(t, testConfig.Username, loaded.Username)
	assert.Equal(t, testConfig.AppPassword, loaded.AppPassword)
	assert.Equal(t, constants.ServerStaging, loaded.StagingProvider)
}

// TestLoadWithEnvironmentVariables tests Load() with environment variables
func TestLoadWithEnvironmentVariables(t *testing.T) {
	// Isolate from any real config file in the developer's home
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SLICERLINK_LOG_LEVEL", "DEBUG")
	t.Setenv("SLICERLINK_STAGING_PROVIDER", "s3")
	t.Setenv("SLICERLINK_S3_BUCKET", "slicer-handoff")

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// Verify environment variables were loaded
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, constants.S3Staging, cfg.StagingProvider)
	assert.Equal(t, "slicer-handoff", cfg.S3Bucket)
}

// TestLoadDefaults tests Load() falls back to defaults without file or env
func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, constants.ServerStaging, cfg.StagingProvider)
	assert.Equal(t, constants.DefaultLocalListenAddr, cfg.LocalListenAddr)
	assert.Equal(t, constants.DefaultObservationWindow, cfg.ObservationWindow)
	assert.Equal(t, constants.DefaultCleanupDelay, cfg.CleanupDelay)
	assert.Equal(t, constants.DefaultShareTTL, cfg.ShareTTL)
	assert.Equal(t, "INFO", cfg.LogLevel)
}

// TestLoadCLIWithoutConfigFile tests LoadCLI() when config file is missing
func TestLoadCLIWithoutConfigFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadCLI()
	require.Error(t, err)
	assert.Nil(t, cfg)
}

// TestObservationWindowFromEnv tests duration parsing from environment strings
func TestObservationWindowFromEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SLICERLINK_OBSERVATION_WINDOW", "2s")
	t.Setenv("SLICERLINK_CLEANUP_DELAY", "90s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.ObservationWindow)
	assert.Equal(t, 90*time.Second, cfg.CleanupDelay)
}
