package convert

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registryMu   sync.RWMutex
	registry     = make(map[Format]Converter)
	defaultsOnce sync.Once
)

// Register adds a converter for a format. Registering nil or the same format
// twice is a programming error and panics, mirroring database/sql driver
// registration semantics.
func Register(format Format, c Converter) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if c == nil {
		panic("convert: Register converter is nil")
	}
	if _, dup := registry[format]; dup {
		panic("convert: Register called twice for format " + string(format))
	}
	registry[format] = c
}

// RegisterDefaults installs the built-in encoders. Guarded by a sync.Once so
// any number of callers can ensure the defaults without double registration.
func RegisterDefaults() {
	defaultsOnce.Do(func() {
		Register(FormatSTL, STLConverter{})
		Register(FormatOBJ, OBJConverter{})
		Register(FormatPLY, PLYConverter{})
	})
}

// For returns the converter registered for a format.
func For(format Format) (Converter, error) {
	RegisterDefaults()

	registryMu.RLock()
	defer registryMu.RUnlock()

	c, ok := registry[format]
	if !ok {
		return nil, fmt.Errorf("no converter registered for format %q", format)
	}
	return c, nil
}

// IsSupported reports whether a converter exists for a format.
func IsSupported(format Format) bool {
	RegisterDefaults()

	registryMu.RLock()
	defer registryMu.RUnlock()

	_, ok := registry[format]
	return ok
}

// Formats returns the registered formats sorted by name.
func Formats() []Format {
	RegisterDefaults()

	registryMu.RLock()
	defer registryMu.RUnlock()

	formats := make([]Format, 0, len(registry))
	for f := range registry {
		formats = append(formats, f)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}
