package cmd

import (
	"context"
	"log/slog"
	"strings"

	"slicerlink/internal/catalog"
	"slicerlink/internal/launch"
	"slicerlink/internal/output"
	"slicerlink/internal/prefs"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var appsCmd = &cobra.Command{
	Use:   "apps",
	Short: "List target applications",
	Long: `List the target applications known to the catalog, the URI scheme each
one registers, the source formats it accepts unmodified, and whether the
operating system currently resolves a handler for its scheme.

Applications come from the built-in catalog merged with ~/.slicerlink/apps.yaml.`,
	Run: runApps,
}

func init() {
	rootCmd.AddCommand(appsCmd)
}

func runApps(cmd *cobra.Command, _ []string) {
	cat, err := catalog.Load()
	if err != nil {
		output.Errorf(err.Error())
		return
	}

	service := NewAppsService(
		cat,
		launch.NewPlatformOpener(slog.Default()),
		prefs.NewStore(slog.Default()),
		NewOutputWrapper(),
	)
	if err = service.DisplayApps(cmd.Context()); err != nil {
		output.Errorf(err.Error())
	}
}

// InstallProber checks whether the operating system resolves a handler for
// an application's URI scheme.
type InstallProber interface {
	Installed(ctx context.Context, app catalog.App) bool
}

// AppsService handles application catalog listing logic.
type AppsService struct {
	catalog *catalog.Catalog
	prober  InstallProber
	prefs   LastUsedReader
	output  OutputInterface
}

// NewAppsService creates a new AppsService with the provided dependencies.
func NewAppsService(
	cat *catalog.Catalog,
	prober InstallProber,
	lastUsed LastUsedReader,
	outputter OutputInterface,
) *AppsService {
	return &AppsService{
		catalog: cat,
		prober:  prober,
		prefs:   lastUsed,
		output:  outputter,
	}
}

// DisplayApps probes every catalog application concurrently and renders the
// result as a table. The probe is advisory; a handoff may be attempted
// either way.
func (s *AppsService) DisplayApps(ctx context.Context) error {
	apps := s.catalog.Apps()
	if len(apps) == 0 {
		s.output.Warningf("No applications in the catalog")
		return nil
	}

	installed := make([]bool, len(apps))
	g, probeCtx := errgroup.WithContext(ctx)
	for i, app := range apps {
		i, app := i, app
		g.Go(func() error {
			installed[i] = s.prober.Installed(probeCtx, app)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	lastUsed, _ := s.prefs.LastUsed()

	rows := make([][]string, 0, len(apps))
	for i, app := range apps {
		name := app.DisplayName
		if app.ID == lastUsed {
			name += " (last used)"
		}
		detected := "no"
		if installed[i] {
			detected = "yes"
		}
		rows = append(rows, []string{
			s.output.Bold(app.ID),
			name,
			app.Scheme() + "://",
			strings.Join(app.Passthrough, ", "),
			detected,
		})
	}

	s.output.Blank()
	s.output.Table(
		[]string{"ID", "Name", "Scheme", "Passthrough", "Installed"},
		rows,
	)
	s.output.Blank()
	return nil
}
