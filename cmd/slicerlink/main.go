// Package main implements the slicerlink CLI tool.
// It provides commands for exporting 3D models and handing them to desktop
// slicer applications.
package main

import "slicerlink/cmd/slicerlink/cmd"

func main() {
	cmd.Execute()
}
