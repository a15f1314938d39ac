// Package cmd implements the CLI commands for the slicerlink tool.
package cmd

import (
	"context"
	"fmt"
	"strings"

	"slicerlink/internal/config"
	"slicerlink/internal/constants"
	"slicerlink/internal/output"

	"github.com/spf13/cobra"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Configure the file server connection and staging provider",
	Long: fmt.Sprintf(`Configure the remote file server connection, the staging provider, and the
fallback download directory.
This creates or updates the configuration file at ~/%s/%s`, constants.ConfigDirName, constants.ConfigFileName),
	Run: runConfigure,
}

func init() {
	rootCmd.AddCommand(configureCmd)
}

func runConfigure(_ *cobra.Command, _ []string) {
	service := NewConfigureService(
		NewOutputWrapper(),
		NewConfigSaver(),
		NewConfigLoader(),
		NewConfigPathGetter(),
	)
	if err := service.Configure(context.Background()); err != nil {
		output.Errorf(err.Error())
	}
}

// ConfigLoader defines an interface for loading configuration
type ConfigLoader interface {
	Load() (*config.Config, error)
}

// ConfigSaver defines an interface for saving configuration
type ConfigSaver interface {
	Save(*config.Config) error
}

// ConfigPathGetter defines an interface for retrieving the configuration path
type ConfigPathGetter interface {
	GetConfigPath() (string, error)
}

// ConfigLoaderFunc adapts a function to the ConfigLoader interface
type ConfigLoaderFunc func() (*config.Config, error)

// Load executes the underlying function to load configuration
func (f ConfigLoaderFunc) Load() (*config.Config, error) {
	return f()
}

// ConfigSaverFunc adapts a function to the ConfigSaver interface
type ConfigSaverFunc func(*config.Config) error

// Save executes the underlying function to persist configuration
func (f ConfigSaverFunc) Save(cfg *config.Config) error {
	return f(cfg)
}

// ConfigPathGetterFunc adapts a function to the ConfigPathGetter interface
type ConfigPathGetterFunc func() (string, error)

// GetConfigPath executes the underlying function to retrieve the config path
func (f ConfigPathGetterFunc) GetConfigPath() (string, error) {
	return f()
}

// NewConfigLoader creates a ConfigLoader using the global config.LoadCLI
// function, which fails when no config file exists yet.
func NewConfigLoader() ConfigLoader {
	return ConfigLoaderFunc(config.LoadCLI)
}

// NewConfigSaver creates a ConfigSaver using the global config.Save function
func NewConfigSaver() ConfigSaver {
	return ConfigSaverFunc(config.Save)
}

// NewConfigPathGetter creates a ConfigPathGetter using the global config.GetConfigPath function
func NewConfigPathGetter() ConfigPathGetter {
	return ConfigPathGetterFunc(config.GetConfigPath)
}

// ConfigureService handles configuration logic
type ConfigureService struct {
	output           OutputInterface
	configSaver      ConfigSaver
	configLoader     ConfigLoader
	configPathGetter ConfigPathGetter
}

// NewConfigureService creates a new ConfigureService with the provided dependencies
func NewConfigureService(
	outputter OutputInterface,
	configSaver ConfigSaver,
	configLoader ConfigLoader,
	configPathGetter ConfigPathGetter,
) *ConfigureService {
	return &ConfigureService{
		output:           outputter,
		configSaver:      configSaver,
		configLoader:     configLoader,
		configPathGetter: configPathGetter,
	}
}

// Configure runs the interactive configuration flow. Blank input keeps the
// existing value for every field; provider-specific requirements are checked
// once at the end, so a local-only setup never has to enter server
// credentials.
func (s *ConfigureService) Configure(_ context.Context) error {
	cfg, err := s.configLoader.Load()
	configExists := err == nil

	if configExists {
		s.output.Successf("Found existing configuration")
	} else {
		cfg = &config.Config{}
		s.output.Infof("Creating new configuration")
	}

	serverURL := s.output.Prompt("File server URL (blank to skip)")
	if serverURL == "" && cfg.ServerURL != "" {
		serverURL = cfg.ServerURL
		s.output.Infof("Using existing server URL: %s", serverURL)
	}
	cfg.ServerURL = serverURL

	username := s.output.Prompt("Username")
	if username == "" && cfg.Username != "" {
		username = cfg.Username
		s.output.Infof("Using existing username: %s", username)
	}
	cfg.Username = username

	appPassword := s.output.PromptSecret("App password")
	if appPassword == "" && cfg.AppPassword != "" {
		appPassword = cfg.AppPassword
		s.output.Infof("Using existing app password")
	}
	cfg.AppPassword = appPassword

	provider, err := s.promptStagingProvider(cfg.StagingProvider)
	if err != nil {
		return err
	}
	cfg.StagingProvider = provider

	if provider == constants.S3Staging {
		s.promptS3(cfg)
	}

	downloadDir := s.output.Prompt("Download directory (blank for ~/Downloads)")
	if downloadDir == "" && cfg.DownloadDir != "" {
		downloadDir = cfg.DownloadDir
		s.output.Infof("Using existing download directory: %s", downloadDir)
	}
	cfg.DownloadDir = downloadDir

	if err = cfg.ValidateStaging(); err != nil {
		return fmt.Errorf("configuration incomplete for the %s provider: %w", cfg.StagingProvider, err)
	}

	if err = s.configSaver.Save(cfg); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	configPath, err := s.configPathGetter.GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	s.output.Successf("Configuration saved successfully")
	s.output.KeyValue("Configuration path", configPath)
	s.output.Infof("Configuration complete!")
	return nil
}

func (s *ConfigureService) promptStagingProvider(existing constants.StagingProvider) (constants.StagingProvider, error) {
	input := s.output.Prompt(fmt.Sprintf("Staging provider (%s)", constants.StagingProvidersString()))
	if input == "" {
		if existing != "" {
			s.output.Infof("Using existing staging provider: %s", existing)
			return existing, nil
		}
		s.output.Infof("Using default staging provider: %s", constants.ServerStaging)
		return constants.ServerStaging, nil
	}
	return parseStagingProvider(input)
}

func (s *ConfigureService) promptS3(cfg *config.Config) {
	bucket := s.output.Prompt("S3 bucket")
	if bucket == "" && cfg.S3Bucket != "" {
		bucket = cfg.S3Bucket
		s.output.Infof("Using existing S3 bucket: %s", bucket)
	}
	cfg.S3Bucket = bucket

	region := s.output.Prompt("S3 region")
	if region == "" && cfg.S3Region != "" {
		region = cfg.S3Region
		s.output.Infof("Using existing S3 region: %s", region)
	}
	cfg.S3Region = region

	prefix := s.output.Prompt("S3 key prefix (blank for none)")
	if prefix == "" && cfg.S3Prefix != "" {
		prefix = cfg.S3Prefix
		s.output.Infof("Using existing S3 key prefix: %s", prefix)
	}
	cfg.S3Prefix = prefix
}

// parseStagingProvider matches user input against the supported providers,
// ignoring case and surrounding whitespace.
func parseStagingProvider(raw string) (constants.StagingProvider, error) {
	normalized := constants.StagingProvider(strings.ToUpper(strings.TrimSpace(raw)))
	for _, provider := range constants.StagingProviders {
		if provider == normalized {
			return provider, nil
		}
	}
	return "", fmt.Errorf("unknown staging provider: %s (supported: %s)",
		raw, constants.StagingProvidersString())
}
