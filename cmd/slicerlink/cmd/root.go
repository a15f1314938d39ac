package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"slicerlink/internal/config"
	"slicerlink/internal/constants"
	"slicerlink/internal/logger"
	"slicerlink/internal/output"

	"github.com/spf13/cobra"
)

var (
	debug         bool
	timeout       string
	timeoutCancel context.CancelFunc
	verbose       bool
)

var rootCmd = &cobra.Command{
	Use:   constants.ProjectName,
	Short: constants.ProjectName,
	Long: fmt.Sprintf(`%s - %s
Hand off 3D models to desktop slicer applications in one step`,
		constants.ProjectName, *constants.GetVersion()),
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		startTime := time.Now().UTC()
		cmd.SetContext(context.WithValue(cmd.Context(), constants.StartTimeCtxKey, startTime))
		printHeader(cmd)

		if verbose {
			output.Infof("CLI build: " + output.Bold(*constants.GetVersion()))
			output.Infof("Verbose output enabled")
		}

		logLevel := slog.LevelInfo
		if debug {
			logLevel = slog.LevelDebug
		}
		log := logger.Initialize(constants.CLI, logLevel)

		// Runs after flag parsing, before the subcommand. A "0" timeout
		// disables the deadline; watch mode relies on that.
		if timeout != "0" {
			timeoutDuration, err := parseTimeout(timeout)
			if err != nil {
				return fmt.Errorf("error parsing timeout: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeoutDuration)
			timeoutCancel = cancel
			cmd.SetContext(ctx)

			if verbose {
				output.Infof("Timeout: %s", timeoutDuration)
			}
		} else if verbose {
			output.Infof("Timeout disabled")
		}

		// A missing config file is not fatal here: apps and configure work
		// without one, and send reports the gap itself.
		attachConfig(cmd, log)

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, _ []string) {
		if verbose {
			startTime := getStartTimeFromContext(cmd)
			if !startTime.IsZero() {
				output.Infof("Time elapsed: %s", output.Bold(output.Duration(time.Since(startTime))))
			}
		}
		if timeoutCancel != nil {
			timeoutCancel()
		}
	},
}

// Execute runs the root command and handles cleanup of timeout context.
func Execute() {
	err := rootCmd.Execute()
	if timeoutCancel != nil {
		timeoutCancel()
	}

	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&timeout, "timeout", "10m", "Command timeout (e.g. 10m, 30s, 600); 0 disables it")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debugging logs")
}

// parseTimeout accepts either a Go duration ("10m", "30s", "1h") or a
// bare number of seconds ("600"). Empty means the 10 minute default.
func parseTimeout(timeoutStr string) (time.Duration, error) {
	if timeoutStr == "" {
		timeoutStr = "10m"
	}

	duration, err := time.ParseDuration(timeoutStr)
	if err == nil {
		return duration, nil
	}

	seconds, err := strconv.Atoi(timeoutStr)
	if err != nil {
		errMsg := fmt.Sprintf(
			"invalid timeout format: %s (use duration like '10m' or '30s', or seconds like '600')",
			timeoutStr)
		return 0, errors.New(errMsg)
	}

	return time.Duration(seconds) * time.Second, nil
}

// attachConfig loads the CLI configuration and stores it on the command
// context, where subcommands read it back via getConfigFromContext.
// Failures are logged and swallowed so commands that need no config
// still run.
func attachConfig(cmd *cobra.Command, log *slog.Logger) {
	cfg, err := config.LoadCLI()
	if err != nil {
		log.Warn("failed to load configuration", "error", err)
		return
	}

	configPath, err := config.GetConfigPath()
	if err != nil {
		log.Warn("failed to get config path", "error", err)
		return
	}

	cmd.SetContext(context.WithValue(cmd.Context(), constants.ConfigCtxKey, cfg))
	if verbose {
		output.Infof("Loaded configuration from %s", output.Bold(configPath))
		output.Infof("Staging provider: %s", output.Bold(string(cfg.StagingProvider)))
		if cfg.ServerURL != "" {
			output.Infof("Server URL: %s", output.Bold(cfg.ServerURL))
		}
	}
}

func printHeader(cmd *cobra.Command) {
	output.Header(output.Bold("🖨️ " + constants.ProjectName + " " + cmd.CalledAs()))
}

// getConfigFromContext returns the config attachConfig stored earlier,
// or an error when no config file was found at startup.
func getConfigFromContext(cmd *cobra.Command) (*config.Config, error) {
	cfg, ok := cmd.Context().Value(constants.ConfigCtxKey).(*config.Config)
	if !ok || cfg == nil {
		return nil, fmt.Errorf("config not found in context")
	}
	return cfg, nil
}

func getStartTimeFromContext(cmd *cobra.Command) time.Time {
	startTime, ok := cmd.Context().Value(constants.StartTimeCtxKey).(time.Time)
	if !ok {
		return time.Time{}
	}
	return startTime
}

// RootCmd returns the root command for use by tools like doc generators.
func RootCmd() *cobra.Command {
	return rootCmd
}
