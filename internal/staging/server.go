package staging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"slicerlink/internal/api"
	"slicerlink/internal/config"
	"slicerlink/internal/constants"
	apperrors "slicerlink/internal/errors"
	"slicerlink/internal/logger"
)

// errorBodySnippetSize caps how much of a rejection body is carried into
// error messages and logs.
const errorBodySnippetSize = 512

// ServerStager stages artifacts on the remote file server's slicer endpoint
// using the credentialed HTTP contract. The server allocates a time-boxed
// public resource and reports its expiry in the upload response.
type ServerStager struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpClient *http.Client
}

// NewServerStager creates a stager backed by the remote file server.
func NewServerStager(cfg *config.Config, log *slog.Logger) *ServerStager {
	return &ServerStager{
		cfg:    cfg,
		logger: log,
		httpClient: &http.Client{
			Timeout: constants.DefaultUploadTimeout,
		},
	}
}

// endpoint constructs the full server URL from a path and an optional raw
// query string.
func (s *ServerStager) endpoint(path, rawQuery string) (string, error) {
	fullURL, err := url.JoinPath(s.cfg.ServerURL, path)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	if rawQuery != "" {
		fullURL = fullURL + "?" + rawQuery
	}
	return fullURL, nil
}

// do sends one credentialed request and returns the status code and body.
func (s *ServerStager) do(ctx context.Context, method, fullURL string, body io.Reader, contentType string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	if contentType != "" {
		req.Header.Set(constants.ContentTypeHeader, contentType)
	}
	req.SetBasicAuth(s.cfg.Username, s.cfg.AppPassword)

	logArgs := []any{
		"operation", "HTTP.Request",
		"method", method,
		"url", fullURL,
	}
	logArgs = append(logArgs, logger.GetDeadlineInfo(ctx)...)
	s.logger.Debug("calling external service", "context", logger.SliceToMap(logArgs))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}

	s.logger.Debug("received HTTP response",
		"status", resp.StatusCode,
		"bodySize", len(respBody),
		"method", method,
		"url", fullURL)

	return resp.StatusCode, respBody, nil
}

// Upload POSTs the raw artifact bytes to the slicer temp endpoint and
// returns the share advertised in the response. Any transport failure,
// non-2xx status, success=false flag, or body missing downloadUrl/fileId
// surfaces as a staging failure.
func (s *ServerStager) Upload(ctx context.Context, artifact Artifact) (*Share, error) {
	query := url.Values{}
	query.Set("filename", artifact.Filename)

	uploadURL, err := s.endpoint(constants.SlicerTempPath, query.Encode())
	if err != nil {
		return nil, apperrors.ErrStagingFailed("Staging upload failed", err)
	}

	status, body, err := s.do(ctx, http.MethodPost, uploadURL,
		bytes.NewReader(artifact.Data), constants.ContentTypeOctetStream)
	if err != nil {
		return nil, apperrors.ErrStagingFailed("Staging upload failed", err)
	}

	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return nil, apperrors.ErrStagingFailed("Staging upload failed",
			fmt.Errorf("server rejected upload with status %d: %s", status, bodySnippet(body)))
	}

	var resp api.StageResponse
	if err = json.Unmarshal(body, &resp); err != nil {
		s.logger.Debug("response body", "body", string(body))
		return nil, apperrors.ErrStagingFailed("Staging upload failed",
			fmt.Errorf("failed to parse response: %w", err))
	}

	if !resp.Success {
		return nil, apperrors.ErrStagingFailed("Staging upload failed",
			fmt.Errorf("server reported success=false"))
	}
	if resp.DownloadURL == "" || resp.FileID == "" {
		return nil, apperrors.ErrStagingFailed("Staging upload failed",
			fmt.Errorf("response is missing downloadUrl or fileId"))
	}

	return &Share{
		DownloadURL: resp.DownloadURL,
		ShareToken:  resp.ShareToken,
		FileID:      resp.FileID,
		ExpiresAt:   resp.ExpiryTime(),
	}, nil
}

// Delete removes the staged resource from the server. The server expires
// staged files on its own, so callers treat failures as log-and-forget.
func (s *ServerStager) Delete(ctx context.Context, fileID string) error {
	deleteURL, err := s.endpoint(constants.SlicerTempPath+"/"+url.PathEscape(fileID), "")
	if err != nil {
		return err
	}

	status, body, err := s.do(ctx, http.MethodDelete, deleteURL, nil, "")
	if err != nil {
		return err
	}

	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return fmt.Errorf("server rejected delete with status %d: %s", status, bodySnippet(body))
	}

	return nil
}

// bodySnippet truncates a response body for inclusion in error messages.
func bodySnippet(body []byte) string {
	if len(body) > errorBodySnippetSize {
		return string(body[:errorBodySnippetSize]) + "..."
	}
	return string(body)
}
