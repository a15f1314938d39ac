// Package launch hands a staged download URL to a target application through
// its registered URI scheme and decides heuristically whether the handoff was
// accepted. There is no OS callback confirming the open: a failure signal
// observed inside a fixed observation window means the handoff failed, and
// silence until the window elapses is read optimistically as launched.
package launch

import (
	"context"
	"log/slog"
	"time"

	"slicerlink/internal/catalog"
	"slicerlink/internal/constants"
	apperrors "slicerlink/internal/errors"
)

// Signal reports an environment-specific failure of an issued handoff, such
// as the opener process exiting non-zero or the scheme not being registered.
type Signal interface {
	// Failed is closed when the handoff is known to have failed.
	// It stays open forever on the happy path.
	Failed() <-chan struct{}
}

// Opener issues the OS-level open of a rendered URI and returns the failure
// observable for it. An error return means the open could not be issued at
// all.
type Opener interface {
	Open(uri string) (Signal, error)
}

// Result is the decision for one handoff attempt.
type Result struct {
	// App is the catalog ID of the target application.
	App string
	// URI is the rendered scheme URI that was opened.
	URI string
	// Launched reports the optimistic decision: the observation window
	// elapsed without a failure signal.
	Launched bool
}

// Detector runs handoff attempts and applies the observation-window decision
// rule. The clock is injectable so tests can drive the window synthetically.
type Detector struct {
	opener Opener
	window time.Duration
	logger *slog.Logger
	after  func(time.Duration) <-chan time.Time
}

// NewDetector creates a detector with the given observation window.
// A non-positive window selects the default.
func NewDetector(opener Opener, window time.Duration, log *slog.Logger) *Detector {
	if window <= 0 {
		window = constants.DefaultObservationWindow
	}
	return &Detector{
		opener: opener,
		window: window,
		logger: log,
		after:  time.After,
	}
}

// Window returns the observation window the detector applies.
func (d *Detector) Window() time.Duration {
	return d.window
}

// Attempt renders the application's scheme template with the download URL,
// issues the OS-level open, and waits out the observation window. A failure
// signal inside the window (or an open that cannot be issued) returns a
// launch failure; silence returns an optimistic launched result. The open is
// not revoked on a failure decision, so a slow application may still appear
// afterwards.
func (d *Detector) Attempt(ctx context.Context, app catalog.App, downloadURL string) (*Result, error) {
	uri := app.RenderScheme(downloadURL)

	d.logger.Info("opening target application", "app", map[string]any{
		"id":     app.ID,
		"scheme": app.Scheme(),
		"window": d.window.String(),
	})

	sig, err := d.opener.Open(uri)
	if err != nil {
		return nil, apperrors.ErrLaunchFailed("The target application could not be opened", err)
	}

	start := time.Now()
	select {
	case <-sig.Failed():
		d.logger.Warn("handoff failure signal observed",
			"app", app.ID,
			"elapsed", time.Since(start).String())
		return nil, apperrors.ErrLaunchFailed("The target application rejected the handoff", nil)
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-d.after(d.window):
		d.logger.Debug("observation window elapsed without failure signal", "app", app.ID)
		return &Result{
			App:      app.ID,
			URI:      uri,
			Launched: true,
		}, nil
	}
}
