package launch

import (
	"context"
	"os/exec"
	"runtime"
	"strings"

	"slicerlink/internal/catalog"
)

// Installed reports whether the operating system resolves a handler for the
// application's URI scheme. A probe failure counts as not installed; the
// result is advisory and a handoff may still be attempted either way.
func (o *PlatformOpener) Installed(ctx context.Context, app catalog.App) bool {
	cmd, requireOutput := probeCommand(ctx, app)

	out, err := cmd.Output()
	if err != nil {
		o.logger.Debug("scheme handler probe failed",
			"app", app.ID,
			"scheme", app.Scheme(),
			"error", err,
		)
		return false
	}
	if requireOutput {
		return strings.TrimSpace(string(out)) != ""
	}
	return true
}

// probeCommand builds the platform-specific handler lookup. The second
// return indicates the command exits zero even without a handler, so the
// decision rides on non-empty output instead.
func probeCommand(ctx context.Context, app catalog.App) (*exec.Cmd, bool) {
	switch runtime.GOOS {
	case "darwin":
		return exec.CommandContext(ctx, "open", "-Ra", app.DisplayName), false
	case "windows":
		return exec.CommandContext(ctx, "reg", "query", `HKCR\`+app.Scheme()), false
	default:
		return exec.CommandContext(ctx, "xdg-mime", "query", "default", "x-scheme-handler/"+app.Scheme()), true
	}
}
