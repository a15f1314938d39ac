package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"slicerlink/internal/config"
	"slicerlink/internal/constants"
	"slicerlink/internal/output"
	"slicerlink/internal/staging"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the loopback staging server in the foreground",
	Long: `Run the loopback staging server in the foreground until interrupted.

Staged artifacts live in memory behind tokened URLs and expire on their own;
the server is what the LOCAL staging provider uploads to when it runs inside
a send. Running it standalone is useful for poking at the staging endpoints
or for keeping staged URLs alive across several sends.`,
	Run: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) {
	cfg, err := getConfigFromContext(cmd)
	if err != nil {
		// No config file yet; the defaults are all a loopback server needs.
		cfg, err = config.Load()
		if err != nil {
			output.Errorf("failed to load configuration: %v", err)
			return
		}
	}

	stager := staging.NewLocalStager(cfg, slog.Default())
	if err = stager.Start(); err != nil {
		output.Errorf(err.Error())
		return
	}

	ttl := cfg.ShareTTL
	if ttl <= 0 {
		ttl = constants.DefaultShareTTL
	}

	output.Successf("Staging server listening on %s", output.Bold(stager.BaseURL()))
	output.KeyValue("Artifact TTL", ttl.String())
	output.Infof("Press Ctrl+C to stop")

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	output.Blank()
	output.Infof("Shutting down staging server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err = stager.Close(ctx); err != nil {
		output.Errorf("staging server shutdown error: %v", err)
		return
	}

	output.Successf("Staging server stopped")
}
