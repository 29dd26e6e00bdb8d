package bracket

import (
	"testing"
	"time"
)

func TestMatchRoundPrefersSpecificForms(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"Regional Quarterfinals", "Regional Quarterfinals"},
		{"Regional Semifinals", "Regional Semifinals"},
		{"Regional Finals", "Regional Finals"},
		{"Regionals", "Regionals"},
		{"Sectional Semifinals", "Sectional Semifinals"},
		{"Sectional Finals", "Sectional Finals"},
		{"State Quarterfinals", "State Quarterfinals"},
		{"State Semifinals", "State Semifinals"},
		{"State Championship", "State Championship"},
		{"WIAA State Championship", "State Championship"},
		{"state semi-finals", "State Semifinals"},
		{"State", "State"},
		{"#1 La Crosse Central", ""},
		{"70-68", ""},
		{"Some random header", ""},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := matchRound(tt.line); got != tt.want {
				t.Fatalf("matchRound(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestParseDateResolvesTournamentYear(t *testing.T) {
	tests := []struct {
		line string
		want time.Time
	}{
		{"March 7", time.Date(2024, time.March, 7, 0, 0, 0, 0, time.UTC)},
		{"Saturday, March 7", time.Date(2024, time.March, 7, 0, 0, 0, 0, time.UTC)},
		{"March 7th", time.Date(2024, time.March, 7, 0, 0, 0, 0, time.UTC)},
		{"Mar. 7", time.Date(2024, time.March, 7, 0, 0, 0, 0, time.UTC)},
		{"February 22, 2023", time.Date(2023, time.February, 22, 0, 0, 0, 0, time.UTC)},
		// Early-season games in the fall belong to the prior calendar year.
		{"December 28", time.Date(2023, time.December, 28, 0, 0, 0, 0, time.UTC)},
		{"November 30", time.Date(2023, time.November, 30, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			m := dateRe.FindStringSubmatch(tt.line)
			if m == nil {
				t.Fatalf("dateRe did not match %q", tt.line)
			}
			got, ok := parseDate(m, 2024)
			if !ok {
				t.Fatalf("parseDate rejected %q", tt.line)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("parseDate(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

func TestParseDateRejectsNonMonths(t *testing.T) {
	for _, line := range []string{"Madison 7", "Overtime 2", "Section 3"} {
		m := dateRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if _, ok := parseDate(m, 2024); ok {
			t.Fatalf("parseDate accepted %q", line)
		}
	}
}

func TestScoreRegexOvertime(t *testing.T) {
	tests := []struct {
		line     string
		first    string
		second   string
		overtime int
	}{
		{"70-68", "70", "68", 0},
		{"70-68 (OT)", "70", "68", 1},
		{"70 - 68 (OT)", "70", "68", 1},
		{"81-79 (2OT)", "81", "79", 2},
		{"81-79 (3 OT)", "81", "79", 3},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			m := scoreRe.FindStringSubmatch(tt.line)
			if m == nil {
				t.Fatalf("scoreRe did not match %q", tt.line)
			}
			if m[1] != tt.first || m[2] != tt.second {
				t.Fatalf("scores = %s-%s, want %s-%s", m[1], m[2], tt.first, tt.second)
			}
			if got := parseOvertime(m[3], m[4]); got != tt.overtime {
				t.Fatalf("overtime = %d, want %d", got, tt.overtime)
			}
		})
	}
}

func TestSectionalHeader(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"Sectional #3", "3"},
		{"Sectional 3", "3"},
		{"sectional #12", "12"},
		{"Sectional Semifinals", ""},
		{"Sectional", ""},
	}

	for _, tt := range tests {
		m := sectionalRe.FindStringSubmatch(tt.line)
		if tt.want == "" {
			if m != nil {
				t.Fatalf("sectionalRe matched %q", tt.line)
			}
			continue
		}
		if m == nil || m[1] != tt.want {
			t.Fatalf("sectionalRe(%q) = %v, want number %s", tt.line, m, tt.want)
		}
	}
}

func TestNormalizeTeamName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Arrowhead  ", "Arrowhead"},
		{"Arrowhead*", "Arrowhead"},
		{"Brookfield   Central", "Brookfield Central"},
		{"Brookfield Acad.", "Brookfield Academy"},
		{"Sheboygan Luth", "Sheboygan Lutheran"},
		{"Wisconsin Hts", "Wisconsin Heights"},
	}

	for _, tt := range tests {
		if got := NormalizeTeamName(tt.in); got != tt.want {
			t.Fatalf("NormalizeTeamName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
