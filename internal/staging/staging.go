// Package staging uploads export artifacts to a short-lived, reachable URL
// and deletes them once the handoff has settled. Three providers are
// available: "server" stages on the remote file server's slicer endpoint,
// "s3" stages as presigned S3 objects, and "local" serves artifacts from an
// in-process loopback HTTP server.
package staging

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"slicerlink/internal/config"
	"slicerlink/internal/constants"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Artifact is the payload handed to a stager: the produced bytes plus the
// filename and content type the download URL should advertise. Slicers key
// off the filename extension, so it must match the artifact format.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Share is the handle returned by a successful staging upload. FileID is an
// opaque provider-scoped handle; the only valid use is passing it back to
// Delete on the same stager.
type Share struct {
	DownloadURL string
	ShareToken  string
	FileID      string
	ExpiresAt   time.Time
}

// Stager uploads artifacts for sharing and deletes them afterwards.
type Stager interface {
	// Upload stages the artifact and returns its share handle. The staged
	// resource is time-boxed server-side; callers should not rely on the
	// URL past Share.ExpiresAt.
	Upload(ctx context.Context, artifact Artifact) (*Share, error)

	// Delete removes the staged resource. Best-effort: callers log failures
	// and move on, the resource expires on its own regardless.
	Delete(ctx context.Context, fileID string) error
}

// New returns the stager for the provider selected in the configuration.
// The context is used only for AWS configuration loading when the s3
// provider is selected. The local provider is returned stopped; callers
// start it with Start before uploading.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (Stager, error) {
	switch cfg.StagingProvider {
	case constants.ServerStaging:
		return NewServerStager(cfg, log), nil
	case constants.S3Staging:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.S3Region))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
		}
		client := s3.NewFromConfig(awsCfg)
		return NewS3Stager(client, s3.NewPresignClient(client), cfg, log), nil
	case constants.LocalStaging:
		return NewLocalStager(cfg, log), nil
	default:
		return nil, fmt.Errorf("unsupported staging provider: %s (supported: %s)",
			cfg.StagingProvider, constants.StagingProvidersString())
	}
}
