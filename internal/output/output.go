// Package output renders user-facing CLI messages: status glyphs, key/value
// detail lines, step progress, and tables. Commands normally talk to it
// through the cmd package's OutputInterface so tests can capture messages.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"slicerlink/internal/constants"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	cyan   = color.New(color.FgCyan)
	gray   = color.New(color.FgHiBlack)
	bold   = color.New(color.Bold)

	// Output writers (can be overridden for testing)
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr

	// Disable colors if not TTY or NO_COLOR is set
	noColor = os.Getenv("NO_COLOR") != "" || !isTerminal(os.Stdout)
)

func init() {
	if noColor {
		color.NoColor = true
	}
}

// Success prints a success message with a checkmark
// Example: ✓ Sent to PrusaSlicer
func Success(message string) {
	fmt.Fprintf(Stdout, "%s %s\n", green.Sprint("✓"), message)
}

// Successf prints a formatted success message with a checkmark
func Successf(format string, a ...interface{}) {
	fmt.Fprintf(Stdout, green.Sprint("✓")+" "+format+"\n", a...)
}

// Info prints an informational message with an arrow
// Example: → Uploading part.stl...
func Info(message string) {
	fmt.Fprintf(Stdout, "%s %s\n", cyan.Sprint("→"), message)
}

// Infof prints a formatted informational message with an arrow
func Infof(format string, a ...interface{}) {
	fmt.Fprintf(Stdout, cyan.Sprint("→")+" "+format+"\n", a...)
}

// Warning prints a warning message with a warning symbol
// Example: ⚠ Cura did not respond, saving the file locally instead
func Warning(message string) {
	fmt.Fprintf(Stdout, "%s %s\n", yellow.Sprint("⚠"), message)
}

// Warningf prints a formatted warning message with a warning symbol
func Warningf(format string, a ...interface{}) {
	fmt.Fprintf(Stdout, yellow.Sprint("⚠")+" "+format+"\n", a...)
}

// Error prints an error message with an X symbol
// Example: ✗ Export failed: model has no triangles
func Error(message string) {
	fmt.Fprintf(Stdout, "%s %s\n", red.Sprint("✗"), message)
}

// Errorf prints a formatted error message with an X symbol
func Errorf(format string, a ...interface{}) {
	fmt.Fprintf(Stdout, red.Sprint("✗")+" "+format+"\n", a...)
}

// Step prints one step of a multi-step flow
// Example: [2/3] Uploading artifact
func Step(step int, total int, message string) {
	gray.Fprintf(Stdout, "[%d/%d] ", step, total)
	fmt.Fprintln(Stdout, message)
}

// Header prints a bold section header over a separator line
func Header(text string) {
	fmt.Fprintln(Stdout)
	fmt.Fprintln(Stdout, bold.Sprint(text))
	fmt.Fprintln(Stdout, gray.Sprint(strings.Repeat("━", constants.HeaderSeparatorLength)))
}

// KeyValue prints an indented detail line under a message
// Example:   Staged URL: http://192.168.1.10:8680/d/ab12
func KeyValue(key, value string) {
	fmt.Fprintf(Stdout, "  %s: %s\n", gray.Sprint(key), value)
}

// Blank prints a blank line
func Blank() {
	fmt.Fprintln(Stdout)
}

// Bold returns the text styled bold
func Bold(text string) string {
	return bold.Sprint(text)
}

// Cyan returns the text styled cyan
func Cyan(text string) string {
	return cyan.Sprint(text)
}

// Table prints left-aligned columns under bold headers
// Example:
// ID              Installed   Passthrough
// ──              ─────────   ───────────
// cura            yes         stl, obj, 3mf
// prusaslicer     no          stl, obj, 3mf, amf
func Table(headers []string, rows [][]string) {
	if len(headers) == 0 {
		return
	}

	widths := columnWidths(headers, rows)

	for i, h := range headers {
		fmt.Fprintf(Stdout, "%-*s  ", widths[i], bold.Sprint(h))
	}
	fmt.Fprintln(Stdout)

	for i := range headers {
		fmt.Fprintf(Stdout, "%s  ", gray.Sprint(strings.Repeat("─", widths[i])))
	}
	fmt.Fprintln(Stdout)

	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				fmt.Fprintf(Stdout, "%-*s  ", widths[i], cell)
			}
		}
		fmt.Fprintln(Stdout)
	}
}

// columnWidths sizes each column to its widest header or cell. Cells beyond
// the header count are ignored, matching how Table prints them.
func columnWidths(headers []string, rows [][]string) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	return widths
}

// Prompt asks for a single line of input and returns it trimmed
func Prompt(prompt string) string {
	fmt.Fprintf(Stdout, "%s: ", cyan.Sprint("?")+" "+prompt)

	var response string
	fmt.Scanln(&response)

	return strings.TrimSpace(response)
}

// PromptSecret prompts for sensitive input (like app passwords)
// Note: This is a simple implementation. For production, consider using
// golang.org/x/term for proper terminal handling
func PromptSecret(prompt string) string {
	fmt.Fprintf(Stdout, "%s: ", cyan.Sprint("?")+" "+prompt)

	var response string
	fmt.Scanln(&response)

	return strings.TrimSpace(response)
}

// Duration renders a duration at second granularity for elapsed-time and
// expiry lines
// Example: 2m 5s
func Duration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}

// isTerminal checks if the writer is a terminal
func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		fileInfo, _ := f.Stat()
		return (fileInfo.Mode() & os.ModeCharDevice) != 0
	}
	return false
}
