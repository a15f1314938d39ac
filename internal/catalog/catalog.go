// Package catalog holds the table of target slicer applications: identity,
// URI scheme template, display metadata, and which source formats each app
// consumes without conversion. The table is configuration data, not
// per-application code; built-in entries are embedded and a user file can
// add or override entries.
package catalog

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"

	"slicerlink/internal/constants"
	apperrors "slicerlink/internal/errors"

	"gopkg.in/yaml.v3"
)

//go:embed apps.yaml
var builtinFiles embed.FS

// SchemePlaceholder marks where the staged download URL lands in a scheme template.
const SchemePlaceholder = "{url}"

// App describes one target slicer application.
type App struct {
	ID             string   `yaml:"id"`
	DisplayName    string   `yaml:"display_name"`
	SchemeTemplate string   `yaml:"scheme_template"`
	Icon           string   `yaml:"icon,omitempty"`
	AccentColor    string   `yaml:"accent_color,omitempty"`
	Passthrough    []string `yaml:"passthrough,omitempty"`
}

// Scheme returns the URI scheme name the application registers, derived from
// the template ("cura://open/?file={url}" yields "cura").
func (a *App) Scheme() string {
	if i := strings.Index(a.SchemeTemplate, "://"); i > 0 {
		return a.SchemeTemplate[:i]
	}
	return ""
}

// RenderScheme substitutes the staged download URL into the scheme template.
// The URL is query-escaped; it travels as a parameter value inside the
// application's URI.
func (a *App) RenderScheme(downloadURL string) string {
	return strings.ReplaceAll(a.SchemeTemplate, SchemePlaceholder, url.QueryEscape(downloadURL))
}

// PassthroughSet returns the app's passthrough extensions as a lowercase set
// without dots.
func (a *App) PassthroughSet() map[string]struct{} {
	set := make(map[string]struct{}, len(a.Passthrough))
	for _, ext := range a.Passthrough {
		normalized := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if normalized != "" {
			set[normalized] = struct{}{}
		}
	}
	return set
}

type catalogFile struct {
	Apps []App `yaml:"apps"`
}

// Catalog is the resolved set of target applications.
type Catalog struct {
	apps map[string]App
}

// Load returns the built-in catalog merged with the user's override file
// (~/.slicerlink/apps.yaml) when present. User entries win on id collision.
func Load() (*Catalog, error) {
	c, err := loadBuiltin()
	if err != nil {
		return nil, err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		// No home directory means no user overrides; the built-ins stand
		return c, nil
	}

	if err := c.mergeFile(constants.CatalogFilePath(homeDir)); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadBuiltin returns only the embedded catalog, ignoring user overrides.
func LoadBuiltin() (*Catalog, error) {
	return loadBuiltin()
}

func loadBuiltin() (*Catalog, error) {
	data, err := builtinFiles.ReadFile("apps.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading built-in catalog: %w", err)
	}

	c := &Catalog{apps: make(map[string]App)}
	if err := c.mergeData(data, "built-in catalog"); err != nil {
		return nil, err
	}
	return c, nil
}

// mergeFile layers a user catalog file over the current entries. A missing
// file is not an error.
func (c *Catalog) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading catalog file: %w", err)
	}
	return c.mergeData(data, path)
}

func (c *Catalog) mergeData(data []byte, source string) error {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse catalog YAML in %s: %w", source, err)
	}

	for _, app := range file.Apps {
		if err := validateApp(&app); err != nil {
			return fmt.Errorf("invalid catalog entry in %s: %w", source, err)
		}
		c.apps[app.ID] = app
	}
	return nil
}

// validateApp validates that a catalog entry has required fields
func validateApp(a *App) error {
	if a.ID == "" {
		return fmt.Errorf("id must not be empty")
	}
	if a.DisplayName == "" {
		return fmt.Errorf("%s: display_name must not be empty", a.ID)
	}
	if !strings.Contains(a.SchemeTemplate, SchemePlaceholder) {
		return fmt.Errorf("%s: scheme_template must contain %s", a.ID, SchemePlaceholder)
	}
	return nil
}

// Get returns the application for an id.
func (c *Catalog) Get(id string) (*App, error) {
	app, ok := c.apps[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return nil, apperrors.ErrAppNotFound(id)
	}
	return &app, nil
}

// Apps returns all applications sorted by id.
func (c *Catalog) Apps() []App {
	apps := make([]App, 0, len(c.apps))
	for _, app := range c.apps {
		apps = append(apps, app)
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].ID < apps[j].ID })
	return apps
}

// IDs returns all application ids sorted.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.apps))
	for id := range c.apps {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
