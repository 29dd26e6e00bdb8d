package source

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Fixture provisioning statuses. Tests that need a fixture skip unless
// its manifest entry says present.
const (
	StatusPresent     = "present"
	StatusPlanned     = "planned"
	StatusFuture      = "future"
	StatusUnavailable = "unavailable"
)

// Manifest describes which bracket snapshots exist and which are still
// expected.
type Manifest struct {
	Fixtures []ManifestEntry `yaml:"fixtures"`
}

// ManifestEntry is one expected fixture.
type ManifestEntry struct {
	Year     int    `yaml:"year"`
	Gender   string `yaml:"gender"`
	Division string `yaml:"division"`
	Status   string `yaml:"status"`
	Note     string `yaml:"note,omitempty"`
}

// LoadManifest reads and validates a fixture manifest.
func LoadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	for _, entry := range m.Fixtures {
		switch entry.Status {
		case StatusPresent, StatusPlanned, StatusFuture, StatusUnavailable:
		default:
			return nil, fmt.Errorf("fixture %s: unknown status %q",
				FixtureName(entry.Year, entry.Gender, entry.Division), entry.Status)
		}
	}
	return &m, nil
}

// Status returns the provisioning status for a season slice, or "" when
// the manifest does not list it.
func (m *Manifest) Status(year int, gender, division string) string {
	for _, entry := range m.Fixtures {
		if entry.Year == year &&
			strings.EqualFold(entry.Gender, gender) &&
			strings.EqualFold(entry.Division, division) {
			return entry.Status
		}
	}
	return ""
}
