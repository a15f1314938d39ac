// Package download places export artifacts in the user's download directory
// when a handoff cannot complete, either from in-memory bytes or by
// retrieving an already staged URL.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"slicerlink/internal/config"
	"slicerlink/internal/constants"
	"slicerlink/internal/logger"
)

// maxStemRunes caps the filename stem so collision suffixes and the
// extension still produce a reasonable name on every platform.
const maxStemRunes = 50

// Saver writes artifacts into the resolved download directory.
type Saver struct {
	cfg        *config.Config
	logger     *slog.Logger
	httpClient *http.Client
}

// NewSaver creates a saver for the configured download directory.
func NewSaver(cfg *config.Config, log *slog.Logger) *Saver {
	return &Saver{
		cfg:    cfg,
		logger: log,
		httpClient: &http.Client{
			Timeout: constants.DefaultUploadTimeout,
		},
	}
}

// SaveBlob writes the artifact bytes under a sanitized, collision-safe name
// and returns the path of the written file.
func (s *Saver) SaveBlob(data []byte, filename string) (string, error) {
	dir, err := s.cfg.ResolveDownloadDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, constants.DownloadDirPermissions); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	path, err := s.writeUnique(dir, sanitizeFilename(filename), data)
	if err != nil {
		return "", err
	}

	s.logger.Info("saved artifact to download directory",
		"path", path,
		"size", len(data))
	return path, nil
}

// SaveURL retrieves the artifact from an already staged URL and writes it
// like SaveBlob. The URL carries its own authorization, so no credentials
// are attached.
func (s *Saver) SaveURL(ctx context.Context, rawURL, filename string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	logArgs := []any{
		"operation", "HTTP.Request",
		"method", http.MethodGet,
		"url", rawURL,
	}
	logArgs = append(logArgs, logger.GetDeadlineInfo(ctx)...)
	s.logger.Debug("calling external service", "context", logger.SliceToMap(logArgs))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve staged artifact: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read staged artifact: %w", err)
	}

	s.logger.Debug("received HTTP response",
		"status", resp.StatusCode,
		"bodySize", len(body),
		"method", http.MethodGet,
		"url", rawURL)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("staged artifact fetch returned status %d", resp.StatusCode)
	}
	if len(body) == 0 {
		return "", fmt.Errorf("staged artifact is empty")
	}

	return s.SaveBlob(body, filename)
}

// writeUnique creates the file with O_EXCL so two concurrent saves cannot
// clobber the same name, appending " (n)" before the extension until a free
// name is found.
func (s *Saver) writeUnique(dir, filename string, data []byte) (string, error) {
	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)

	name := filename
	for i := 1; ; i++ {
		path := filepath.Join(dir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, constants.DownloadFilePermissions)
		if errors.Is(err, fs.ErrExist) {
			name = fmt.Sprintf("%s (%d)%s", stem, i, ext)
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create download file: %w", err)
		}

		_, writeErr := f.Write(data)
		closeErr := f.Close()
		if writeErr != nil {
			return "", fmt.Errorf("failed to write download file: %w", writeErr)
		}
		if closeErr != nil {
			return "", fmt.Errorf("failed to close download file: %w", closeErr)
		}
		return path, nil
	}
}

// sanitizeFilename rewrites characters that are unsafe in file names on
// Windows or Unix and caps the stem length. The extension survives intact so
// the saved file still opens in the right application.
func sanitizeFilename(filename string) string {
	replacer := map[rune]rune{
		'/':  '-',
		'\\': '-',
		':':  '-',
		'*':  '-',
		'?':  '-',
		'"':  '-',
		'<':  '-',
		'>':  '-',
		'|':  '-',
		' ':  '_',
		'\t': '_',
		'\n': '_',
		'\r': '_',
	}

	cleaned := make([]rune, 0, len(filename))
	for _, r := range filename {
		if replacement, found := replacer[r]; found {
			cleaned = append(cleaned, replacement)
		} else if r < 32 || r == 127 {
			cleaned = append(cleaned, '-')
		} else {
			cleaned = append(cleaned, r)
		}
	}

	name := string(cleaned)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	stemRunes := []rune(stem)
	if len(stemRunes) > maxStemRunes {
		stem = string(stemRunes[:maxStemRunes])
	}
	if stem == "" || strings.Trim(stem, ".") == "" {
		stem = "artifact"
	}

	return stem + ext
}
