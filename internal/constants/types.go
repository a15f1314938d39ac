package constants

import "strings"

// StagingProvider represents the backend used to stage artifacts.
type StagingProvider string

const (
	// ServerStaging stages artifacts on the remote file server's slicer endpoint.
	ServerStaging StagingProvider = "SERVER"
	// S3Staging stages artifacts as presigned S3 objects.
	S3Staging StagingProvider = "S3"
	// LocalStaging stages artifacts on a loopback HTTP server.
	LocalStaging StagingProvider = "LOCAL"
)

// StagingProviders lists all supported staging providers.
var StagingProviders = []StagingProvider{ServerStaging, S3Staging, LocalStaging}

// StagingProvidersString returns the supported providers as a lowercase comma-separated list.
func StagingProvidersString() string {
	names := make([]string, 0, len(StagingProviders))
	for _, p := range StagingProviders {
		names = append(names, strings.ToLower(string(p)))
	}
	return strings.Join(names, ", ")
}

// Environment represents the execution environment (e.g., CLI, server).
type Environment string

// Environment types for logger configuration.
const (
	Development Environment = "development"
	Production  Environment = "production"
	CLI         Environment = "cli"
)
