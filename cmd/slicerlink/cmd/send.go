package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"slicerlink/internal/catalog"
	"slicerlink/internal/config"
	"slicerlink/internal/constants"
	"slicerlink/internal/convert"
	"slicerlink/internal/download"
	"slicerlink/internal/export"
	"slicerlink/internal/files"
	"slicerlink/internal/launch"
	"slicerlink/internal/mesh"
	"slicerlink/internal/output"
	"slicerlink/internal/prefs"
	"slicerlink/internal/staging"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// sendStepCount is the number of numbered progress steps a send runs through.
const sendStepCount = 3

var (
	appFlag    string
	formatFlag string
	fileIDFlag string
	watchFlag  bool
)

var sendCmd = &cobra.Command{
	Use:   "send <model-file>",
	Short: "Export a model and hand it to a desktop slicer",
	Long: `Export a model file and hand it to a desktop slicer application.

The model is converted to the requested format, staged behind a short-lived
URL, and opened in the target application via its URI scheme. When the
application does not accept the handoff, the artifact is saved to the
download directory instead.

With --file-id the stored original is staged unmodified when the target
application reads the source format natively; the local file is not read and
its name only drives that decision and the artifact filename.`,
	Example: fmt.Sprintf(`  # Convert to STL and open in the last used slicer
  - %s send benchy.obj

  # Convert to PLY and open in PrusaSlicer
  - %s send --app prusaslicer --format ply benchy.stl

  # Hand the stored original to Cura without re-encoding
  - %s send --app cura --file-id 8f3a part.3mf

  # Re-export on every save
  - %s send --app orcaslicer --watch --timeout 0 bracket.stl`,
		constants.ProjectName, constants.ProjectName, constants.ProjectName, constants.ProjectName),
	Run:  runSend,
	Args: cobra.ExactArgs(1),
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().StringVarP(&appFlag, "app", "a", "",
		"target application ID (defaults to the last used one)")
	sendCmd.Flags().StringVarP(&formatFlag, "format", "f", string(convert.FormatSTL),
		"artifact format: "+formatList())
	sendCmd.Flags().StringVar(&fileIDFlag, "file-id", "",
		"server file ID of the stored original, enables passthrough")
	sendCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false,
		"re-export whenever the model file changes")
}

func runSend(cmd *cobra.Command, args []string) {
	cfg, err := getConfigFromContext(cmd)
	if err != nil {
		output.Errorf("failed to load configuration: %v", err)
		output.Infof("Run %s to create one", output.Bold(constants.ProjectName+" configure"))
		return
	}
	if err = cfg.ValidateStaging(); err != nil {
		output.Errorf("staging configuration invalid: %v", err)
		return
	}

	cat, err := catalog.Load()
	if err != nil {
		output.Errorf(err.Error())
		return
	}

	stager, err := staging.New(cmd.Context(), cfg, slog.Default())
	if err != nil {
		output.Errorf(err.Error())
		return
	}
	local, isLocal := stager.(*staging.LocalStager)
	if isLocal {
		if err = local.Start(); err != nil {
			output.Errorf(err.Error())
			return
		}
		defer stopLocalStager(local)
	}

	service := NewSendService(
		newCoordinator(cfg, cat, stager),
		cat,
		prefs.NewStore(slog.Default()),
		NewOutputWrapper(),
	)
	req := SendRequest{
		Path:         args[0],
		App:          appFlag,
		Format:       formatFlag,
		SourceFileID: fileIDFlag,
	}

	if watchFlag {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err = service.Watch(ctx, &req); err != nil {
			output.Errorf(err.Error())
		}
		return
	}

	summary, err := service.Send(cmd.Context(), &req)
	if err != nil {
		output.Errorf(err.Error())
		return
	}
	if isLocal && summary.Method == constants.DeliveryURLScheme {
		waitForLocalPickup(cmd.Context(), cfg)
	}
}

// newCoordinator assembles the export pipeline for the configured staging
// provider.
func newCoordinator(cfg *config.Config, cat *catalog.Catalog, stager staging.Stager) *export.Coordinator {
	log := slog.Default()
	opener := launch.NewPlatformOpener(log)
	return export.NewCoordinator(
		cat,
		stager,
		files.NewFetcher(cfg, log),
		launch.NewDetector(opener, cfg.ObservationWindow, log),
		download.NewSaver(cfg, log),
		prefs.NewStore(log),
		newStepNotifier(NewOutputWrapper()),
		log,
		cfg.CleanupDelay,
	)
}

func stopLocalStager(l *staging.LocalStager) {
	ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultContextTimeout)
	defer cancel()
	if err := l.Close(ctx); err != nil {
		slog.Default().Warn("failed to stop local staging server", "error", err)
	}
}

// waitForLocalPickup keeps the loopback staging server alive until the
// handed-off application has had time to fetch the artifact. Exiting right
// away would tear the staged URL down before the slicer opens it. The extra
// second lets the deferred cleanup delete the share first.
func waitForLocalPickup(ctx context.Context, cfg *config.Config) {
	delay := cfg.CleanupDelay
	if delay <= 0 {
		delay = constants.DefaultCleanupDelay
	}

	output.Blank()
	output.Infof("Serving the staged artifact for %s before exiting, Ctrl+C to stop now", delay)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	select {
	case <-ctx.Done():
	case <-time.After(delay + time.Second):
	}
}

func formatList() string {
	formats := convert.Formats()
	names := make([]string, 0, len(formats))
	for _, f := range formats {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

// Sender starts one export request and reports how it settled.
type Sender interface {
	Start(ctx context.Context, req export.Request) (*export.Summary, error)
}

// LastUsedReader supplies the default target application when --app is not
// given.
type LastUsedReader interface {
	LastUsed() (string, bool)
}

// SendRequest contains all parameters needed to send a model file.
type SendRequest struct {
	Path         string
	App          string
	Format       string
	SourceFileID string
}

// SendService drives exports of a model file to a target application.
type SendService struct {
	coordinator Sender
	catalog     *catalog.Catalog
	prefs       LastUsedReader
	output      OutputInterface
}

// NewSendService creates a new SendService with the provided dependencies.
func NewSendService(
	coordinator Sender,
	cat *catalog.Catalog,
	lastUsed LastUsedReader,
	outputter OutputInterface,
) *SendService {
	return &SendService{
		coordinator: coordinator,
		catalog:     cat,
		prefs:       lastUsed,
		output:      outputter,
	}
}

// Send exports the model file once and reports how it was delivered.
func (s *SendService) Send(ctx context.Context, req *SendRequest) (*export.Summary, error) {
	app, err := s.resolveApp(req.App)
	if err != nil {
		return nil, err
	}

	exportReq, err := s.buildRequest(req, app)
	if err != nil {
		return nil, err
	}

	s.output.Infof("Sending %s to %s", s.output.Bold(filepath.Base(req.Path)), s.output.Bold(app.DisplayName))
	summary, err := s.coordinator.Start(ctx, *exportReq)
	if err != nil {
		return nil, err
	}
	s.reportSummary(summary)
	return summary, nil
}

// Watch re-exports the model every time the file changes on disk, until the
// context ends. Export failures are reported and watching continues; the
// next save may fix the model.
func (s *SendService) Watch(ctx context.Context, req *SendRequest) error {
	if _, err := s.Send(ctx, req); err != nil {
		s.output.Errorf(err.Error())
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory rather than the file: editors replace the file on
	// save and a direct watch dies with the old inode.
	target, err := filepath.Abs(req.Path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", req.Path, err)
	}
	if err = watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}

	s.output.Blank()
	s.output.Infof("Watching %s for changes, Ctrl+C to stop", s.output.Bold(req.Path))

	debounce := time.NewTimer(constants.WatchDebounceInterval)
	if !debounce.Stop() {
		<-debounce.C
	}

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				s.output.Blank()
				s.output.Infof("Watch stopped")
				return nil
			}
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !watchHit(event, target) {
				continue
			}
			if !debounce.Stop() {
				select {
				case <-debounce.C:
				default:
				}
			}
			debounce.Reset(constants.WatchDebounceInterval)

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.output.Warningf("watch error: %v", watchErr)

		case <-debounce.C:
			s.output.Blank()
			s.output.Infof("Change detected, re-exporting %s", s.output.Bold(filepath.Base(req.Path)))
			if _, err := s.Send(ctx, req); err != nil {
				s.output.Errorf(err.Error())
			}
		}
	}
}

// watchHit reports whether the event concerns the watched model file. Create
// and Rename cover editors that write to a temp file and swap it in.
func watchHit(event fsnotify.Event, target string) bool {
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
		return false
	}
	name, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return name == target
}

// resolveApp picks the target application from the flag or the last-used
// preference.
func (s *SendService) resolveApp(appID string) (*catalog.App, error) {
	if appID == "" {
		lastUsed, ok := s.prefs.LastUsed()
		if !ok {
			return nil, fmt.Errorf("no target application selected; pass --app (see '%s apps')", constants.ProjectName)
		}
		appID = lastUsed
		s.output.Infof("Using last used application: %s", s.output.Bold(appID))
	}
	return s.catalog.Get(appID)
}

// buildRequest assembles the export request, loading the model from disk
// only when passthrough does not apply.
func (s *SendService) buildRequest(req *SendRequest, app *catalog.App) (*export.Request, error) {
	format, err := convert.ParseFormat(req.Format)
	if err != nil {
		return nil, err
	}

	exportReq := &export.Request{
		SourceFileID:          req.SourceFileID,
		SourceFilename:        filepath.Base(req.Path),
		Format:                format,
		PassthroughExtensions: app.Passthrough,
		TargetApp:             app.ID,
	}
	if exportReq.UsesPassthrough() {
		return exportReq, nil
	}

	model, err := mesh.Load(req.Path)
	if err != nil {
		return nil, err
	}
	exportReq.Model = model
	return exportReq, nil
}

// reportSummary prints the terminal result lines. Progress steps and the
// interim handoff warning come from the step notifier instead.
func (s *SendService) reportSummary(summary *export.Summary) {
	s.output.Blank()
	switch summary.Outcome {
	case constants.OutcomeLaunched:
		s.output.Successf("Handed off to %s", s.output.Bold(s.displayName(summary.App)))
		if summary.Share != nil {
			s.output.KeyValue("Staged URL", s.output.Cyan(summary.Share.DownloadURL))
			s.output.KeyValue("Expires", summary.Share.ExpiresAt.UTC().Format(time.DateTime)+" UTC")
		}
	case constants.OutcomeStagingFailed:
		s.output.Warningf("Staging failed; the artifact was saved locally instead")
		s.output.KeyValue("Saved to", s.output.Cyan(summary.Path))
	case constants.OutcomeHandoffFailed:
		s.output.Successf("Saved a local copy")
		s.output.KeyValue("Saved to", s.output.Cyan(summary.Path))
	}
}

func (s *SendService) displayName(appID string) string {
	app, err := s.catalog.Get(appID)
	if err != nil {
		return appID
	}
	return app.DisplayName
}

// stepNotifier surfaces coordinator progress as numbered CLI steps. Terminal
// results are reported by the send service from the returned summary, so
// SUCCEEDED and FALLEN_BACK events are ignored here.
type stepNotifier struct {
	output OutputInterface
}

func newStepNotifier(outputter OutputInterface) *stepNotifier {
	return &stepNotifier{output: outputter}
}

// Notify implements export.Notifier.
func (n *stepNotifier) Notify(event export.Event) {
	switch event.State {
	case constants.ExportExporting:
		n.output.Step(1, sendStepCount, event.Message)
	case constants.ExportStaging:
		n.output.Step(2, sendStepCount, event.Message)
	case constants.ExportLaunching:
		if event.Outcome == constants.OutcomeHandoffFailed {
			n.output.Warningf(event.Message)
			return
		}
		n.output.Step(3, sendStepCount, event.Message)
	default:
	}
}
