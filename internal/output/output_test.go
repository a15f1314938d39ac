package output

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

// capture redirects Stdout for the duration of fn and returns what was
// printed.
func capture(fn func()) string {
	oldStdout := Stdout
	defer func() { Stdout = oldStdout }()

	buf := &bytes.Buffer{}
	Stdout = buf
	fn()
	return buf.String()
}

func TestMessageGlyphs(t *testing.T) {
	tests := []struct {
		name string
		fn   func()
		want []string
	}{
		{"success", func() { Success("sent to PrusaSlicer") }, []string{"✓", "sent to PrusaSlicer"}},
		{"successf", func() { Successf("handed off to %s", "Cura") }, []string{"✓", "handed off to Cura"}},
		{"info", func() { Info("uploading part.stl") }, []string{"→", "uploading part.stl"}},
		{"infof", func() { Infof("staging for %d minutes", 60) }, []string{"→", "staging for 60 minutes"}},
		{"warning", func() { Warning("Cura did not respond") }, []string{"⚠", "Cura did not respond"}},
		{"warningf", func() { Warningf("falling back to %s", "download") }, []string{"⚠", "falling back to download"}},
		{"error", func() { Error("model has no triangles") }, []string{"✗", "model has no triangles"}},
		{"errorf", func() { Errorf("staging rejected: %d", 500) }, []string{"✗", "staging rejected: 500"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := capture(tt.fn)
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("expected output to contain %q, got %q", want, got)
				}
			}
			if !strings.HasSuffix(got, "\n") {
				t.Errorf("expected trailing newline, got %q", got)
			}
		})
	}
}

func TestStep(t *testing.T) {
	got := capture(func() { Step(2, 3, "Uploading artifact") })

	if !strings.Contains(got, "[2/3]") {
		t.Errorf("expected step counter, got %q", got)
	}
	if !strings.Contains(got, "Uploading artifact") {
		t.Errorf("expected step message, got %q", got)
	}
}

func TestHeader(t *testing.T) {
	got := capture(func() { Header("slicerlink send") })

	if !strings.Contains(got, "slicerlink send") {
		t.Errorf("expected header text, got %q", got)
	}
	if !strings.Contains(got, "━") {
		t.Errorf("expected separator line, got %q", got)
	}
	if !strings.HasPrefix(got, "\n") {
		t.Errorf("expected leading blank line, got %q", got)
	}
}

func TestKeyValue(t *testing.T) {
	got := capture(func() { KeyValue("Staged URL", "http://127.0.0.1:8680/d/ab12") })

	if !strings.Contains(got, "Staged URL") || !strings.Contains(got, "http://127.0.0.1:8680/d/ab12") {
		t.Errorf("expected key and value, got %q", got)
	}
	if !strings.HasPrefix(got, "  ") {
		t.Errorf("expected indentation, got %q", got)
	}
}

func TestBlank(t *testing.T) {
	if got := capture(Blank); got != "\n" {
		t.Errorf("expected a single newline, got %q", got)
	}
}

func TestBoldAndCyanKeepText(t *testing.T) {
	if got := Bold("prusaslicer"); !strings.Contains(got, "prusaslicer") {
		t.Errorf("Bold lost its input: %q", got)
	}
	if got := Cyan("cura://open/"); !strings.Contains(got, "cura://open/") {
		t.Errorf("Cyan lost its input: %q", got)
	}
}

func TestTable(t *testing.T) {
	headers := []string{"ID", "Installed"}
	rows := [][]string{
		{"cura", "yes"},
		{"prusaslicer", "no"},
	}

	got := capture(func() { Table(headers, rows) })

	for _, want := range []string{"ID", "Installed", "cura", "prusaslicer", "yes", "no", "─"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected table to contain %q, got %q", want, got)
		}
	}

	// Header, separator, two rows
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if len(lines) != 4 {
		t.Errorf("expected 4 lines, got %d: %q", len(lines), got)
	}
}

func TestTableIgnoresExtraCells(t *testing.T) {
	got := capture(func() {
		Table([]string{"ID"}, [][]string{{"cura", "stray-cell"}})
	})

	if strings.Contains(got, "stray-cell") {
		t.Errorf("cells beyond the header count should be dropped, got %q", got)
	}
}

func TestTableNoHeaders(t *testing.T) {
	if got := capture(func() { Table(nil, [][]string{{"cura"}}) }); got != "" {
		t.Errorf("expected no output without headers, got %q", got)
	}
}

func TestColumnWidths(t *testing.T) {
	widths := columnWidths(
		[]string{"ID", "Installed"},
		[][]string{{"prusaslicer", "no"}},
	)

	if widths[0] != len("prusaslicer") {
		t.Errorf("expected first column sized to widest cell, got %d", widths[0])
	}
	if widths[1] != len("Installed") {
		t.Errorf("expected second column sized to header, got %d", widths[1])
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{45 * time.Second, "45s"},
		{time.Minute, "1m 0s"},
		{125 * time.Second, "2m 5s"},
		{90 * time.Minute, "1h 30m"},
		{25 * time.Hour, "25h 0m"},
	}

	for _, tt := range tests {
		if got := Duration(tt.d); got != tt.want {
			t.Errorf("Duration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestIsTerminalFalseForBuffer(t *testing.T) {
	if isTerminal(&bytes.Buffer{}) {
		t.Error("a bytes.Buffer is not a terminal")
	}
}
