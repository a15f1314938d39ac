package launch

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
)

// processSignal reports failure when the opener process exits non-zero.
type processSignal struct {
	failed chan struct{}
}

func (s *processSignal) Failed() <-chan struct{} {
	return s.failed
}

// PlatformOpener opens URIs with the operating system's default opener
// command. The process is started detached so the CLI can finish while the
// target application stays open.
type PlatformOpener struct {
	logger *slog.Logger
}

// NewPlatformOpener creates an opener for the current platform.
func NewPlatformOpener(log *slog.Logger) *PlatformOpener {
	return &PlatformOpener{logger: log}
}

// openerCommand builds the platform-specific open command for a URI.
func openerCommand(uri string) *exec.Cmd {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", uri)
	case "windows":
		// start treats the first quoted argument as a window title.
		return exec.Command("cmd", "/c", "start", "", uri)
	default:
		return exec.Command("xdg-open", uri)
	}
}

// Open starts the platform opener for the URI and watches its exit status in
// the background. A non-zero exit (scheme not registered, no handler) closes
// the failure channel.
func (o *PlatformOpener) Open(uri string) (Signal, error) {
	cmd := openerCommand(uri)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start opener %q: %w", cmd.Path, err)
	}

	sig := &processSignal{failed: make(chan struct{})}
	go func() {
		if waitErr := cmd.Wait(); waitErr != nil {
			o.logger.Debug("opener process reported failure", "uri", uri, "error", waitErr)
			close(sig.failed)
		}
	}()

	return sig, nil
}
