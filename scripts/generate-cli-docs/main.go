// Package main generates a single markdown reference for all slicerlink commands.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"slicerlink/cmd/slicerlink/cmd"
	"slicerlink/internal/constants"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

func main() {
	var outFile string
	flag.StringVar(&outFile, "out", "./docs/CLI.md", "output file for generated markdown")
	flag.Parse()

	if outFile == "" {
		log.Fatal("error: output file is required")
	}

	if err := run(outFile); err != nil {
		log.Fatalf("error: %s", err)
	}
}

func run(outFile string) error {
	if err := os.MkdirAll(filepath.Dir(outFile), 0o750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	file, err := os.Create(filepath.Clean(outFile))
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			log.Printf("warning: error closing file: %v", closeErr)
		}
	}()

	root := cmd.RootCmd()
	root.DisableAutoGenTag = true

	fmt.Fprintf(file, "# %s CLI reference\n\n", constants.ProjectName)
	fmt.Fprintln(file, "Commands, flags, and examples for sending 3D models to desktop slicers.")

	if err := writeCommand(file, root, 2); err != nil {
		return fmt.Errorf("generating documentation: %w", err)
	}

	absPath, err := filepath.Abs(outFile)
	if err != nil {
		absPath = outFile
	}

	log.Printf("✅ Successfully generated CLI documentation in %s", absPath)
	return nil
}

// writeCommand emits one command section, then recurses into its
// subcommands in name order.
func writeCommand(w io.Writer, c *cobra.Command, level int) error {
	if !c.IsAvailableCommand() || c.IsAdditionalHelpTopicCommand() {
		return nil
	}

	fmt.Fprintf(w, "\n%s %s\n\n", strings.Repeat("#", level), c.CommandPath())
	if c.Short != "" {
		fmt.Fprintf(w, "%s\n\n", c.Short)
	}
	if c.Long != "" && c.Long != c.Short {
		fmt.Fprintf(w, "%s\n\n", c.Long)
	}
	if c.Example != "" {
		fmt.Fprintf(w, "**Examples:**\n\n```bash\n%s\n```\n\n", c.Example)
	}

	options, err := optionsSection(c)
	if err != nil {
		return err
	}
	if options != "" {
		fmt.Fprintln(w, options)
	}

	subs := c.Commands()
	sort.Slice(subs, func(i, j int) bool { return subs[i].Name() < subs[j].Name() })
	for _, sub := range subs {
		if err := writeCommand(w, sub, level+1); err != nil {
			return err
		}
	}
	return nil
}

// optionsSection extracts the Options block from cobra's generated
// markdown so the flag tables stay in cobra's canonical format.
func optionsSection(c *cobra.Command) (string, error) {
	var buf bytes.Buffer
	if err := doc.GenMarkdown(c, &buf); err != nil {
		return "", fmt.Errorf("generating markdown for %s: %w", c.CommandPath(), err)
	}

	markdown := buf.String()
	start := strings.Index(markdown, "### Options")
	if start < 0 {
		return "", nil
	}
	section := markdown[start:]

	for _, marker := range []string{"\n\n\n### ", "\n\n## ", "\n\n### See Also"} {
		if end := strings.Index(section, marker); end > 0 {
			section = section[:end]
			break
		}
	}
	return strings.TrimRight(section, "\n"), nil
}
