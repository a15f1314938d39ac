// Package files fetches original model files from the remote file server for
// the passthrough flow, where the artifact is handed to the slicer unmodified
// instead of being converted locally.
package files

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"slicerlink/internal/config"
	"slicerlink/internal/constants"
	apperrors "slicerlink/internal/errors"
	"slicerlink/internal/logger"
)

// Fetcher retrieves stored file bytes over the credentialed HTTP contract.
type Fetcher struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpClient *http.Client
}

// NewFetcher creates a fetcher for the configured remote file server.
func NewFetcher(cfg *config.Config, log *slog.Logger) *Fetcher {
	return &Fetcher{
		cfg:    cfg,
		logger: log,
		httpClient: &http.Client{
			Timeout: constants.DefaultUploadTimeout,
		},
	}
}

// Fetch returns the raw bytes of the stored original file. Any transport
// failure, non-2xx status, or empty body surfaces as a fetch failure; there
// is no local fallback for a passthrough source that cannot be read.
func (f *Fetcher) Fetch(ctx context.Context, fileID string) ([]byte, error) {
	fetchURL, err := url.JoinPath(f.cfg.ServerURL, constants.FileContentPath, url.PathEscape(fileID))
	if err != nil {
		return nil, apperrors.ErrFetchOriginalFailed("Fetching the original file failed",
			fmt.Errorf("invalid server URL: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return nil, apperrors.ErrFetchOriginalFailed("Fetching the original file failed",
			fmt.Errorf("failed to create request: %w", err))
	}
	req.SetBasicAuth(f.cfg.Username, f.cfg.AppPassword)

	logArgs := []any{
		"operation", "HTTP.Request",
		"method", http.MethodGet,
		"url", fetchURL,
	}
	logArgs = append(logArgs, logger.GetDeadlineInfo(ctx)...)
	f.logger.Debug("calling external service", "context", logger.SliceToMap(logArgs))

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.ErrFetchOriginalFailed("Fetching the original file failed",
			fmt.Errorf("failed to make request: %w", err))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.ErrFetchOriginalFailed("Fetching the original file failed",
			fmt.Errorf("failed to read response: %w", err))
	}

	f.logger.Debug("received HTTP response",
		"status", resp.StatusCode,
		"bodySize", len(body),
		"method", http.MethodGet,
		"url", fetchURL)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, apperrors.ErrFetchOriginalFailed("Fetching the original file failed",
			fmt.Errorf("server rejected fetch with status %d", resp.StatusCode))
	}
	if len(body) == 0 {
		return nil, apperrors.ErrFetchOriginalFailed("Fetching the original file failed",
			fmt.Errorf("server returned an empty file"))
	}

	return body, nil
}
