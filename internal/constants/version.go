// Package constants defines global constants used throughout slicerlink.
package constants

var version = "0.0.0-development" // stamped by the release pipeline

// GetVersion returns the build version string.
func GetVersion() *string {
	return &version
}

// ProjectName names the CLI binary as shown in help text and headers.
const ProjectName = "slicerlink"
