package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fortuna/ceres/internal/logging"
)

func TestFixtureNames(t *testing.T) {
	if got := FixtureName(2024, "Boys", "Div1"); got != "2024_Basketball_Boys_Div1.html" {
		t.Errorf("FixtureName = %q, want %q", got, "2024_Basketball_Boys_Div1.html")
	}
	if got := LeadersFixtureName(2024, "Girls"); got != "2024_Leaders_Girls.html" {
		t.Errorf("LeadersFixtureName = %q, want %q", got, "2024_Leaders_Girls.html")
	}
}

func TestFixtureStoreLoad(t *testing.T) {
	dir := t.TempDir()
	want := []byte("<html><body>Sectional #1</body></html>")
	path := filepath.Join(dir, FixtureName(2024, "Boys", "Div1"))
	if err := os.WriteFile(path, want, 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewFixtureStore(dir, logging.NewNop())

	body, err := store.Load(2024, "Boys", "Div1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(body) != string(want) {
		t.Errorf("Load body = %q, want %q", body, want)
	}
}

func TestFixtureStoreMissingIsNotAnError(t *testing.T) {
	store := NewFixtureStore(t.TempDir(), logging.NewNop())

	body, err := store.Load(1999, "Boys", "Div4")
	if err != nil {
		t.Fatalf("Load for missing fixture: %v", err)
	}
	if body != nil {
		t.Errorf("Load for missing fixture = %q, want nil", body)
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.yaml")
	doc := `fixtures:
  - year: 2024
    gender: Boys
    division: Div1
    status: present
  - year: 2024
    gender: Girls
    division: Div1
    status: planned
    note: bracket page saved but not yet scrubbed
  - year: 2026
    gender: Boys
    division: Div1
    status: future
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if len(m.Fixtures) != 3 {
		t.Fatalf("len(Fixtures) = %d, want 3", len(m.Fixtures))
	}

	tests := []struct {
		year             int
		gender, division string
		want             string
	}{
		{2024, "Boys", "Div1", StatusPresent},
		{2024, "boys", "div1", StatusPresent},
		{2024, "Girls", "Div1", StatusPlanned},
		{2026, "Boys", "Div1", StatusFuture},
		{2019, "Boys", "Div1", ""},
	}
	for _, tt := range tests {
		if got := m.Status(tt.year, tt.gender, tt.division); got != tt.want {
			t.Errorf("Status(%d, %q, %q) = %q, want %q", tt.year, tt.gender, tt.division, got, tt.want)
		}
	}
}

func TestLoadManifestRejectsUnknownStatus(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.yaml")
	doc := `fixtures:
  - year: 2024
    gender: Boys
    division: Div1
    status: eventually
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadManifest(path); err == nil {
		t.Error("LoadManifest accepted an unknown status")
	}
}
