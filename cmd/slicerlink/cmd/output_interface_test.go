package cmd

import (
	"bytes"
	"testing"

	"slicerlink/internal/output"

	"github.com/stretchr/testify/assert"
)

// outputWrapper must satisfy the interface the commands consume.
var _ OutputInterface = &outputWrapper{}

func TestNewOutputWrapper(t *testing.T) {
	assert.NotNil(t, NewOutputWrapper())
}

func TestOutputWrapperStyling(t *testing.T) {
	wrapper := NewOutputWrapper()

	// Styling may add ANSI codes but never loses the text itself.
	assert.Contains(t, wrapper.Bold("benchy.stl"), "benchy.stl")
	assert.Contains(t, wrapper.Cyan("cura://open"), "cura://open")
}

func TestOutputWrapperStep(t *testing.T) {
	oldStdout := output.Stdout
	defer func() { output.Stdout = oldStdout }()

	buf := &bytes.Buffer{}
	output.Stdout = buf

	NewOutputWrapper().Step(2, 3, "Staging artifact")

	assert.Contains(t, buf.String(), "[2/3]")
	assert.Contains(t, buf.String(), "Staging artifact")
}
