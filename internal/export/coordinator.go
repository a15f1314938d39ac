package export

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"slicerlink/internal/catalog"
	"slicerlink/internal/constants"
	"slicerlink/internal/convert"
	apperrors "slicerlink/internal/errors"
	"slicerlink/internal/launch"
	"slicerlink/internal/logger"
	"slicerlink/internal/staging"
)

// OriginalFetcher retrieves original file bytes for the passthrough path.
type OriginalFetcher interface {
	Fetch(ctx context.Context, fileID string) ([]byte, error)
}

// Launcher performs the OS handoff and resolves the launch outcome.
type Launcher interface {
	Attempt(ctx context.Context, app catalog.App, downloadURL string) (*launch.Result, error)
}

// FallbackSaver places artifacts in the download directory when the handoff
// cannot complete.
type FallbackSaver interface {
	SaveBlob(data []byte, filename string) (string, error)
	SaveURL(ctx context.Context, rawURL, filename string) (string, error)
}

// Preferences persists the last successfully used application.
type Preferences interface {
	LastUsed() (string, bool)
	SetLastUsed(app string) error
}

// Coordinator owns the export state machine and runs one request at a time
// through artifact production, staging, handoff, and fallback. Start, State,
// Outcome, and Dismiss may be called from different goroutines; the mutex
// guards only the state fields, never a network call.
type Coordinator struct {
	catalog  *catalog.Catalog
	stager   staging.Stager
	fetcher  OriginalFetcher
	launcher Launcher
	saver    FallbackSaver
	prefs    Preferences
	notifier Notifier
	logger   *slog.Logger

	cleanupDelay time.Duration

	mu      sync.Mutex
	state   constants.ExportState
	outcome constants.ExportOutcome
	errMsg  string
}

// NewCoordinator creates a coordinator in the IDLE state.
// A nil notifier is replaced with NopNotifier; a non-positive cleanupDelay
// falls back to the default.
func NewCoordinator(
	cat *catalog.Catalog,
	stager staging.Stager,
	fetcher OriginalFetcher,
	launcher Launcher,
	saver FallbackSaver,
	prefs Preferences,
	notifier Notifier,
	log *slog.Logger,
	cleanupDelay time.Duration,
) *Coordinator {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if cleanupDelay <= 0 {
		cleanupDelay = constants.DefaultCleanupDelay
	}
	return &Coordinator{
		catalog:      cat,
		stager:       stager,
		fetcher:      fetcher,
		launcher:     launcher,
		saver:        saver,
		prefs:        prefs,
		notifier:     notifier,
		logger:       log,
		cleanupDelay: cleanupDelay,
		state:        constants.ExportIdle,
		outcome:      constants.OutcomePending,
	}
}

// State returns the coordinator's current position in the flow.
func (c *Coordinator) State() constants.ExportState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Outcome returns the resolved result of the current or most recent request.
func (c *Coordinator) Outcome() constants.ExportOutcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outcome
}

// LastError returns the stored message while the coordinator is ERRORED.
func (c *Coordinator) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// Dismiss acknowledges a terminal error and returns the coordinator to
// IDLE. It is a no-op in any other state.
func (c *Coordinator) Dismiss() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != constants.ExportErrored {
		return
	}
	c.transitionLocked(constants.ExportIdle)
	c.errMsg = ""
}

// Start runs one request to completion on the calling goroutine. A second
// call while a request is active returns EXPORT_BUSY. The returned error is
// nil for both a successful handoff and a fallback download; only terminal
// failures surface as errors, and those park the coordinator in ERRORED
// until Dismiss.
func (c *Coordinator) Start(ctx context.Context, req Request) (*Summary, error) {
	if err := c.begin(); err != nil {
		return nil, err
	}

	summary, err := c.run(ctx, req)
	c.finish(summary, err)
	return summary, err
}

// begin claims the coordinator for one request.
func (c *Coordinator) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != constants.ExportIdle {
		return apperrors.ErrExportBusy(nil)
	}
	c.transitionLocked(constants.ExportExporting)
	c.outcome = constants.OutcomePending
	c.errMsg = ""
	return nil
}

// finish records the terminal state for the request and releases the claim.
// Successful flows return to IDLE immediately; errors park in ERRORED, except
// caller abandonment, which clears the claim with nothing to dismiss.
func (c *Coordinator) finish(summary *Summary, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.transitionLocked(constants.ExportErrored)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			c.transitionLocked(constants.ExportIdle)
			return
		}
		c.errMsg = apperrors.GetErrorMessage(err)
		return
	}

	if summary.Outcome == constants.OutcomeLaunched {
		c.transitionLocked(constants.ExportSucceeded)
	} else {
		c.transitionLocked(constants.ExportFallenBack)
	}
	c.transitionLocked(constants.ExportIdle)
}

func (c *Coordinator) run(ctx context.Context, req Request) (*Summary, error) {
	reqLogger := logger.DeriveRequestLogger(ctx, c.logger)

	app, err := c.catalog.Get(req.TargetApp)
	if err != nil {
		c.setOutcome(constants.OutcomeExportFailed)
		return nil, err
	}

	c.notifier.Notify(Event{
		State:   constants.ExportExporting,
		App:     app.ID,
		Message: "Preparing artifact",
	})

	artifact, err := c.produceArtifact(ctx, req, reqLogger)
	if err != nil {
		c.setOutcome(constants.OutcomeExportFailed)
		return nil, err
	}

	c.transition(constants.ExportStaging)
	c.notifier.Notify(Event{
		State:   constants.ExportStaging,
		App:     app.ID,
		Message: "Staging " + artifact.Filename,
	})

	share, err := c.stager.Upload(ctx, *artifact)
	if err != nil {
		if isContextError(err) {
			return nil, err
		}
		return c.fallBackFromStaging(app, artifact, err, reqLogger)
	}

	cleanup := &cleanupTask{
		stager: c.stager,
		share:  share,
		delay:  c.cleanupDelay,
		logger: c.logger,
	}

	c.transition(constants.ExportLaunching)
	c.notifier.Notify(Event{
		State:   constants.ExportLaunching,
		App:     app.ID,
		Message: "Opening " + app.DisplayName,
	})

	result, err := c.launcher.Attempt(ctx, *app, share.DownloadURL)
	switch {
	case err == nil:
		c.setOutcome(constants.OutcomeLaunched)
		cleanup.schedule()
		c.recordLastUsed(app.ID, reqLogger)
		c.notifier.Notify(Event{
			State:   constants.ExportSucceeded,
			Outcome: constants.OutcomeLaunched,
			Method:  constants.DeliveryURLScheme,
			App:     app.ID,
			URI:     result.URI,
			Message: "Handed off to " + app.DisplayName,
		})
		return &Summary{
			Outcome: constants.OutcomeLaunched,
			Method:  constants.DeliveryURLScheme,
			App:     app.ID,
			URI:     result.URI,
			Share:   share,
		}, nil

	case isContextError(err):
		// Abandoned before the outcome resolved; the share is left to
		// expire server-side rather than deleted mid-flight.
		return nil, err

	case apperrors.GetErrorCode(err) == apperrors.ErrCodeLaunchFailed:
		c.setOutcome(constants.OutcomeHandoffFailed)
		cleanup.schedule()
		return c.fallBackFromLaunch(ctx, app, artifact, share, reqLogger)

	default:
		return nil, err
	}
}

// fallBackFromStaging saves the in-memory bytes after an upload failure.
// The bytes exist locally, so the user action must still succeed.
func (c *Coordinator) fallBackFromStaging(
	app *catalog.App,
	artifact *staging.Artifact,
	uploadErr error,
	reqLogger *slog.Logger,
) (*Summary, error) {
	c.setOutcome(constants.OutcomeStagingFailed)
	reqLogger.Warn("staging failed; saving artifact locally",
		"error", uploadErr,
		"filename", artifact.Filename,
	)

	path, err := c.saver.SaveBlob(artifact.Data, artifact.Filename)
	if err != nil {
		return nil, apperrors.ErrExportFailed("The artifact could not be staged or saved", err)
	}

	c.recordLastUsed(app.ID, reqLogger)
	c.notifier.Notify(Event{
		State:   constants.ExportFallenBack,
		Outcome: constants.OutcomeStagingFailed,
		Method:  constants.DeliveryDownload,
		App:     app.ID,
		Path:    path,
		Message: "Saved to " + path,
	})
	return &Summary{
		Outcome: constants.OutcomeStagingFailed,
		Method:  constants.DeliveryDownload,
		App:     app.ID,
		Path:    path,
	}, nil
}

// fallBackFromLaunch saves the artifact after the application rejected the
// handoff. It retrieves the already staged URL first (no second upload) and
// only falls back to the in-memory bytes when that URL is unreachable.
func (c *Coordinator) fallBackFromLaunch(
	ctx context.Context,
	app *catalog.App,
	artifact *staging.Artifact,
	share *staging.Share,
	reqLogger *slog.Logger,
) (*Summary, error) {
	c.notifier.Notify(Event{
		State:   constants.ExportLaunching,
		Outcome: constants.OutcomeHandoffFailed,
		App:     app.ID,
		Message: app.DisplayName + " did not accept the handoff; saving a local copy",
	})

	path, err := c.saver.SaveURL(ctx, share.DownloadURL, artifact.Filename)
	if err != nil {
		reqLogger.Warn("staged URL unreachable; saving original bytes",
			"error", err,
			"fileID", share.FileID,
		)
		path, err = c.saver.SaveBlob(artifact.Data, artifact.Filename)
	}
	if err != nil {
		return nil, apperrors.ErrExportFailed("The handoff failed and the artifact could not be saved", err)
	}

	c.recordLastUsed(app.ID, reqLogger)
	c.notifier.Notify(Event{
		State:   constants.ExportFallenBack,
		Outcome: constants.OutcomeHandoffFailed,
		Method:  constants.DeliveryDownload,
		App:     app.ID,
		Path:    path,
		Message: "Saved to " + path,
	})
	return &Summary{
		Outcome: constants.OutcomeHandoffFailed,
		Method:  constants.DeliveryDownload,
		App:     app.ID,
		Path:    path,
		Share:   share,
	}, nil
}

// produceArtifact resolves the source policy: exactly one of the converter
// or the original-file fetcher runs per request.
func (c *Coordinator) produceArtifact(
	ctx context.Context,
	req Request,
	reqLogger *slog.Logger,
) (*staging.Artifact, error) {
	if req.UsesPassthrough() {
		reqLogger.Debug("using passthrough source",
			"fileID", req.SourceFileID,
			"filename", req.SourceFilename,
		)
		data, err := c.fetcher.Fetch(ctx, req.SourceFileID)
		if err != nil {
			return nil, err
		}
		return &staging.Artifact{
			Filename:    filepath.Base(req.SourceFilename),
			ContentType: constants.ContentTypeOctetStream,
			Data:        data,
		}, nil
	}

	if req.Model == nil {
		return nil, apperrors.ErrExportFailed("No model data to export", nil)
	}

	converter, err := convert.For(req.Format)
	if err != nil {
		return nil, apperrors.ErrFormatUnsupported(string(req.Format))
	}
	data, err := converter.Convert(req.Model)
	if err != nil {
		return nil, apperrors.ErrExportFailed("Conversion to "+strings.ToUpper(string(req.Format))+" failed", err)
	}
	return &staging.Artifact{
		Filename:    artifactName(req.SourceFilename, converter.FileExtension()),
		ContentType: converter.ContentType(),
		Data:        data,
	}, nil
}

// recordLastUsed persists the preference after a successful launch or
// fallback download.
func (c *Coordinator) recordLastUsed(appID string, reqLogger *slog.Logger) {
	if err := c.prefs.SetLastUsed(appID); err != nil {
		// Continue even if recording fails - the artifact already reached the user
		reqLogger.Warn("failed to record last-used application",
			"error", err,
			"app", appID,
		)
	}
}

func (c *Coordinator) transition(to constants.ExportState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transitionLocked(to)
}

func (c *Coordinator) transitionLocked(to constants.ExportState) {
	if !constants.CanTransition(c.state, to) {
		// Sequencing bug; logged rather than wedging the request
		c.logger.Error("invalid export state transition",
			"from", c.state,
			"to", to,
		)
	}
	c.state = to
}

// setOutcome records the resolved outcome once; later calls are ignored.
func (c *Coordinator) setOutcome(outcome constants.ExportOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.outcome != constants.OutcomePending {
		return
	}
	c.outcome = outcome
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// artifactName swaps the source extension for the converter's, falling back
// to a generic stem when the source has no usable name.
func artifactName(sourceName, ext string) string {
	base := filepath.Base(sourceName)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." {
		stem = "model"
	}
	return stem + "." + ext
}

// cleanupTask deletes a staged share after a delay, detached from the
// request context so caller lifecycle never blocks or cancels it. schedule
// is guarded; the delete runs at most once per share.
type cleanupTask struct {
	stager staging.Stager
	share  *staging.Share
	delay  time.Duration
	logger *slog.Logger
	once   sync.Once
}

func (t *cleanupTask) schedule() {
	t.once.Do(func() {
		go t.run()
	})
}

func (t *cleanupTask) run() {
	time.Sleep(t.delay)

	ctx, cancel := context.WithTimeout(context.Background(), constants.CleanupRequestTimeout)
	defer cancel()

	if err := t.stager.Delete(ctx, t.share.FileID); err != nil {
		t.logger.Warn("deferred cleanup of staged artifact failed",
			"fileID", t.share.FileID,
			"error", err,
		)
		return
	}
	t.logger.Debug("staged artifact cleaned up", "fileID", t.share.FileID)
}
