// Package export orchestrates the export-and-handoff flow: produce an
// artifact by conversion or passthrough fetch, stage it for a short-lived
// URL, hand the URL to a target application, and fall back to a local
// download when anything past the artifact stage goes wrong.
package export

import (
	"path/filepath"
	"strings"

	"slicerlink/internal/constants"
	"slicerlink/internal/convert"
	"slicerlink/internal/mesh"
	"slicerlink/internal/staging"
)

// Request describes one "send to application" action. Immutable once
// created; a retry is a fresh Request.
type Request struct {
	// Model is the in-memory mesh to convert. May be nil when the original
	// file is fetched as-is via SourceFileID.
	Model *mesh.Model
	// SourceFileID identifies the original file on the remote server for
	// the passthrough path.
	SourceFileID string
	// SourceFilename names the source. It drives the passthrough decision
	// and artifact naming.
	SourceFilename string
	// Format is the conversion target when passthrough does not apply.
	Format convert.Format
	// PassthroughExtensions lists source extensions the target application
	// consumes natively.
	PassthroughExtensions []string
	// TargetApp is the catalog ID of the application to hand off to.
	TargetApp string
}

// UsesPassthrough reports whether the original file is handed over without
// re-encoding: its extension must be in the passthrough set and the original
// must be addressable on the server.
func (r *Request) UsesPassthrough() bool {
	if r.SourceFileID == "" {
		return false
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(r.SourceFilename), "."))
	if ext == "" {
		return false
	}
	for _, allowed := range r.PassthroughExtensions {
		normalized := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(allowed), "."))
		if normalized == ext {
			return true
		}
	}
	return false
}

// Summary describes how a finished request delivered the artifact.
type Summary struct {
	Outcome constants.ExportOutcome
	Method  constants.DeliveryMethod
	// App is the catalog ID of the resolved target application.
	App string
	// URI is the rendered application URI when Method is url-scheme.
	URI string
	// Path is the local file path when Method is download.
	Path string
	// Share is the staged artifact, nil when staging failed.
	Share *staging.Share
}

// Event is a user-facing status update emitted while a request progresses.
// Progress events carry a State and Message; the outcome events additionally
// carry Outcome and, for the final one, Method and Path or URI.
type Event struct {
	State   constants.ExportState
	Outcome constants.ExportOutcome
	Method  constants.DeliveryMethod
	App     string
	Message string
	Path    string
	URI     string
}

// Notifier receives coordinator events. The coordinator calls it inline on
// the request goroutine, so implementations must not block.
type Notifier interface {
	Notify(event Event)
}

// NopNotifier discards all events.
type NopNotifier struct{}

// Notify implements Notifier.
func (NopNotifier) Notify(Event) {}
