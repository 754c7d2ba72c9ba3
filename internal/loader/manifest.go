package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidManifest is returned when a manifest is missing required entries.
var ErrInvalidManifest = errors.New("invalid manifest")

// ManifestSource is a candidate configuration that team projects are compared against.
type ManifestSource struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Paths       []string `yaml:"paths"`
}

// ManifestProject is a team project export to compare.
type ManifestProject struct {
	Name  string   `yaml:"name"`
	Paths []string `yaml:"paths"`
}

// Manifest names the sources and team projects of a batch comparison.
type Manifest struct {
	TfsVersion string            `yaml:"tfs_version,omitempty"`
	Sources    []ManifestSource  `yaml:"sources"`
	Projects   []ManifestProject `yaml:"projects"`
}

// ReadManifest parses a YAML manifest. Relative paths resolve against the
// directory holding the manifest.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	m.resolve(filepath.Dir(abs))
	return m, nil
}

// ParseManifest decodes and validates manifest YAML without touching paths.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate requires at least one source and one project, each with a name and paths.
func (m *Manifest) Validate() error {
	var errs []error
	if len(m.Sources) == 0 {
		errs = append(errs, errors.New("at least one source is required"))
	}
	if len(m.Projects) == 0 {
		errs = append(errs, errors.New("at least one project is required"))
	}
	for i, s := range m.Sources {
		if strings.TrimSpace(s.Name) == "" {
			errs = append(errs, fmt.Errorf("source #%d has no name", i+1))
		}
		if len(s.Paths) == 0 {
			errs = append(errs, fmt.Errorf("source %q has no paths", s.Name))
		}
	}
	for i, p := range m.Projects {
		if strings.TrimSpace(p.Name) == "" {
			errs = append(errs, fmt.Errorf("project #%d has no name", i+1))
		}
		if len(p.Paths) == 0 {
			errs = append(errs, fmt.Errorf("project %q has no paths", p.Name))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidManifest, errors.Join(errs...))
	}
	return nil
}

func (m *Manifest) resolve(dir string) {
	for i := range m.Sources {
		m.Sources[i].Paths = resolvePaths(dir, m.Sources[i].Paths)
	}
	for i := range m.Projects {
		m.Projects[i].Paths = resolvePaths(dir, m.Projects[i].Paths)
	}
}

func resolvePaths(dir string, paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		if filepath.IsAbs(p) {
			out[i] = filepath.Clean(p)
		} else {
			out[i] = filepath.Join(dir, p)
		}
	}
	return out
}
