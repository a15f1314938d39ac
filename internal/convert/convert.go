// Package convert turns an in-memory model into artifact bytes for a target
// format. Encoders live in a process-wide registry with an init-once default
// set; the coordinator only ever sees the Converter interface.
package convert

import (
	"strings"

	apperrors "slicerlink/internal/errors"
	"slicerlink/internal/mesh"
)

// Format identifies a target export format.
type Format string

// Built-in target formats.
const (
	FormatSTL Format = "stl"
	FormatOBJ Format = "obj"
	FormatPLY Format = "ply"
)

// ParseFormat normalizes a user-supplied format name ("STL", ".ply") and
// verifies a converter exists for it.
func ParseFormat(s string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.TrimPrefix(normalized, ".")

	format := Format(normalized)
	if !IsSupported(format) {
		return "", apperrors.ErrFormatUnsupported(s)
	}
	return format, nil
}

// Converter encodes a model into one output format.
type Converter interface {
	// Convert produces the artifact bytes for the model.
	Convert(model *mesh.Model) ([]byte, error)
	// FileExtension returns the extension without a dot, e.g. "stl".
	FileExtension() string
	// ContentType returns the MIME type of the produced bytes.
	ContentType() string
}
