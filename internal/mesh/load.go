package mesh

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Load reads a model file, choosing the decoder by extension.
func Load(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening model file: %w", err)
	}
	defer func() { _ = f.Close() }()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Decode(f, filepath.Ext(path), name)
}

// Decode reads a model from r using the decoder for the given extension.
// The extension may carry a leading dot and any casing.
func Decode(r io.Reader, ext, name string) (*Model, error) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "stl":
		return DecodeSTL(r, name)
	case "obj":
		return DecodeOBJ(r, name)
	default:
		return nil, fmt.Errorf("no loader for model format %q", ext)
	}
}

// CanLoad reports whether a loader exists for the given extension.
func CanLoad(ext string) bool {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "stl", "obj":
		return true
	default:
		return false
	}
}
