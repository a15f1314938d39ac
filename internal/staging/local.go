package staging

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"slicerlink/internal/config"
	"slicerlink/internal/constants"
	apperrors "slicerlink/internal/errors"

	"github.com/google/uuid"
)

// entry is one staged artifact held in memory by the local provider.
type entry struct {
	fileID      string
	filename    string
	contentType string
	data        []byte
	token       string
	expiresAt   time.Time
}

// memoryStore holds staged artifacts keyed by file ID.
type memoryStore struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		entries: make(map[string]*entry),
	}
}

func (s *memoryStore) put(e *entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[e.fileID] = e
}

func (s *memoryStore) get(fileID string) (*entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[fileID]
	return e, ok
}

// remove deletes the entry and reports whether it existed.
func (s *memoryStore) remove(fileID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[fileID]
	delete(s.entries, fileID)
	return ok
}

// sweep drops every entry that expired before now and returns how many.
func (s *memoryStore) sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for fileID, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, fileID)
			removed++
		}
	}
	return removed
}

func (s *memoryStore) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// newFileID generates the identifier for a locally staged artifact.
func newFileID() string {
	return uuid.NewString()
}

// newShareToken generates a random token gating downloads from the local
// provider. Falls back to a time-derived token if the system randomness
// source fails.
func newShareToken() string {
	b := make([]byte, constants.ShareTokenByteSize)
	if _, err := rand.Read(b); err != nil {
		return hex.EncodeToString([]byte(time.Now().String()))
	}
	return hex.EncodeToString(b)
}

// LocalStager serves staged artifacts from an in-process HTTP server bound
// to the configured listen address. The default loopback bind keeps staged
// URLs reachable only from this machine; a LAN bind address lets a slicer on
// another host fetch them. Uploads from the owning process go straight into
// the in-memory store; the HTTP surface mirrors the remote server's routes
// so external tools can stage files too.
type LocalStager struct {
	logger *slog.Logger
	store  *memoryStore
	addr   string
	ttl    time.Duration

	srv      *http.Server
	listener net.Listener
	baseURL  string
	done     chan struct{}
	stopOnce sync.Once
}

// NewLocalStager creates a local stager bound to the configured listen
// address. The stager does not accept uploads until Start is called.
func NewLocalStager(cfg *config.Config, log *slog.Logger) *LocalStager {
	addr := cfg.LocalListenAddr
	if addr == "" {
		addr = constants.DefaultLocalListenAddr
	}

	ttl := cfg.ShareTTL
	if ttl <= 0 {
		ttl = constants.DefaultShareTTL
	}

	l := &LocalStager{
		logger: log,
		store:  newMemoryStore(),
		addr:   addr,
		ttl:    ttl,
		done:   make(chan struct{}),
	}

	l.srv = &http.Server{
		Handler:      l.routes(),
		ReadTimeout:  constants.ServerReadTimeout,
		WriteTimeout: constants.ServerWriteTimeout,
		IdleTimeout:  constants.ServerIdleTimeout,
	}

	return l
}

// Start binds the listener and begins serving staged artifacts. It returns
// once the listener is bound, so the next Upload already has a reachable
// base URL even when the configured port was 0.
func (l *LocalStager) Start() error {
	listener, err := net.Listen("tcp", l.addr)
	if err != nil {
		return fmt.Errorf("failed to bind local staging listener on %s: %w", l.addr, err)
	}

	l.listener = listener
	l.baseURL = "http://" + listener.Addr().String()

	go func() {
		if serveErr := l.srv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			l.logger.Error("local staging server stopped", "error", serveErr)
		}
	}()
	go l.sweepLoop()

	l.logger.Info("local staging server started", "addr", listener.Addr().String())
	return nil
}

// Close stops the expiry sweep and shuts the HTTP server down gracefully.
func (l *LocalStager) Close(ctx context.Context) error {
	l.stopOnce.Do(func() {
		close(l.done)
	})

	if l.srv == nil || l.listener == nil {
		return nil
	}
	return l.srv.Shutdown(ctx)
}

// Addr returns the bound listener address, or the configured address when
// the server has not started.
func (l *LocalStager) Addr() string {
	if l.listener != nil {
		return l.listener.Addr().String()
	}
	return l.addr
}

// BaseURL returns the base URL staged downloads are served from.
// Empty until Start succeeds.
func (l *LocalStager) BaseURL() string {
	return l.baseURL
}

// Upload stages the artifact in memory and returns its tokenized download
// URL on the local server.
func (l *LocalStager) Upload(_ context.Context, artifact Artifact) (*Share, error) {
	if l.baseURL == "" {
		return nil, apperrors.ErrStagingFailed("Staging upload failed",
			fmt.Errorf("local staging server is not running"))
	}

	e := l.newEntry(artifact.Filename, artifact.ContentType, artifact.Data)
	l.store.put(e)

	l.logger.Debug("staged artifact locally",
		"fileID", e.fileID,
		"filename", e.filename,
		"bodySize", len(e.data),
		"expiresAt", e.expiresAt.Format(time.RFC3339))

	return l.shareFor(e), nil
}

// Delete drops the staged artifact from memory. Deleting an unknown or
// already-expired file ID counts as success.
func (l *LocalStager) Delete(_ context.Context, fileID string) error {
	if !l.store.remove(fileID) {
		l.logger.Debug("staged artifact already gone", "fileID", fileID)
	}
	return nil
}

func (l *LocalStager) newEntry(filename, contentType string, data []byte) *entry {
	if contentType == "" {
		contentType = constants.ContentTypeOctetStream
	}
	return &entry{
		fileID:      newFileID(),
		filename:    filename,
		contentType: contentType,
		data:        data,
		token:       newShareToken(),
		expiresAt:   time.Now().UTC().Add(l.ttl),
	}
}

func (l *LocalStager) shareFor(e *entry) *Share {
	return &Share{
		DownloadURL: fmt.Sprintf("%s%s/%s?token=%s", l.baseURL, constants.FileContentPath, e.fileID, e.token),
		ShareToken:  e.token,
		FileID:      e.fileID,
		ExpiresAt:   e.expiresAt,
	}
}

// sweepLoop periodically drops expired entries until Close.
func (l *LocalStager) sweepLoop() {
	ticker := time.NewTicker(constants.ExpirySweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
			if n := l.store.sweep(time.Now().UTC()); n > 0 {
				l.logger.Debug("dropped expired staged artifacts", "count", n)
			}
		}
	}
}
