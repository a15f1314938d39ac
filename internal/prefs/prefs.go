// Package prefs persists the last successfully used target application.
// Listings read it to mark the previous choice and sends can default to it.
package prefs

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/viper"

	"slicerlink/internal/constants"
)

const (
	lastUsedKey  = "last_used_app"
	updatedAtKey = "updated_at"
)

// Store reads and writes the persisted state file. The file lives next to
// the main config file; losing it only loses the last-used marker, so
// readers treat any unreadable state as absent.
type Store struct {
	logger *slog.Logger
}

// NewStore creates a store backed by the state file in the user's home
// directory.
func NewStore(log *slog.Logger) *Store {
	return &Store{logger: log}
}

// LastUsed returns the last successfully used application ID. The second
// return is false when no preference has been recorded or the state file
// cannot be read.
func (s *Store) LastUsed() (string, bool) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		s.logger.Debug("failed to resolve home directory for state file", "error", err)
		return "", false
	}

	v := viper.New()
	v.SetConfigFile(constants.StateFilePath(homeDir))
	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			s.logger.Debug("failed to read state file", "error", err)
		}
		return "", false
	}

	app := v.GetString(lastUsedKey)
	if app == "" {
		return "", false
	}
	return app, true
}

// SetLastUsed records the application ID. Called after every successful
// launch or fallback download.
func (s *Store) SetLastUsed(app string) error {
	if app == "" {
		return fmt.Errorf("application ID is empty")
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("error resolving home directory: %w", err)
	}

	if err = os.MkdirAll(constants.ConfigDirPath(homeDir), constants.ConfigDirPermissions); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	v := viper.New()
	v.Set(lastUsedKey, app)
	v.Set(updatedAtKey, time.Now().UTC().Format(time.RFC3339))

	statePath := constants.StateFilePath(homeDir)
	if err = v.WriteConfigAs(statePath); err != nil {
		return fmt.Errorf("error writing state file: %w", err)
	}

	s.logger.Debug("recorded last-used application", "app", app, "path", statePath)
	return nil
}
