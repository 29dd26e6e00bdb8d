// Package source routes page requests between the live fetch layer and
// local fixture snapshots. The two modes are behaviorally symmetric: a
// bracket that is missing offline looks exactly like a bracket page
// that 404s online.
package source

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fortuna/ceres/internal/logging"
)

// FixtureStore loads page snapshots from a directory.
type FixtureStore struct {
	dir string
	log *logging.Logger
}

// NewFixtureStore creates a store rooted at dir.
func NewFixtureStore(dir string, log *logging.Logger) *FixtureStore {
	if log == nil {
		log = logging.Default()
	}
	return &FixtureStore{dir: dir, log: log.Named("fixtures")}
}

// FixtureName builds the canonical bracket snapshot filename, e.g.
// "2024_Basketball_Boys_Div1.html".
func FixtureName(year int, gender, division string) string {
	return fmt.Sprintf("%d_Basketball_%s_%s.html", year, gender, division)
}

// LeadersFixtureName builds the leaderboard snapshot filename.
func LeadersFixtureName(year int, gender string) string {
	return fmt.Sprintf("%d_Leaders_%s.html", year, gender)
}

// Load returns the bracket fixture for a season slice. A missing
// fixture is not an error: it returns nil, mirroring a bracket page
// that does not exist yet.
func (s *FixtureStore) Load(year int, gender, division string) ([]byte, error) {
	return s.LoadNamed(FixtureName(year, gender, division))
}

// LoadNamed returns a fixture by filename, nil when absent.
func (s *FixtureStore) LoadNamed(name string) ([]byte, error) {
	body, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		s.log.Debug("fixture not present", "fixture", name)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading fixture %s: %w", name, err)
	}
	return body, nil
}

// Dir returns the store's root directory.
func (s *FixtureStore) Dir() string {
	return s.dir
}
