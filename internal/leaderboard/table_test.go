package leaderboard

import (
	"testing"

	"github.com/fortuna/ceres/internal/logging"
	"github.com/fortuna/ceres/internal/model"
)

const scoringPage = `<html><body>
<h2>Scoring Leaders</h2>
<table>
  <tr><th>Rank</th><th>Player</th><th>School</th><th>G</th><th>PPG</th></tr>
  <tr><td>1</td><td>Jaylen Smith</td><td>Arrowhead</td><td>24</td><td>23.4</td></tr>
  <tr><td>2</td><td>Mason Lee</td><td>Neenah</td><td>25</td><td>21.9</td></tr>
  <tr><td>3</td><td>Carter Smith</td><td>Kimberly</td><td>23</td><td>19.8</td></tr>
  <tr><td>4</td><td></td><td>Unknown</td><td>20</td><td>15.0</td></tr>
  <tr><td>5</td><td>Eli Vang</td><td>Appleton North</td><td>22</td><td>DNP</td></tr>
  <tr><td>6</td><td>Quiet Dunn</td><td>De Pere</td><td>21</td><td>0.0</td></tr>
</table>
</body></html>`

const fullPage = `<html><body>
<table>
  <tr><th>Rank</th><th>Player</th><th>School</th><th>PPG</th></tr>
  <tr><td>1</td><td>Jaylen Smith</td><td>Arrowhead</td><td>23.4</td></tr>
</table>
<table>
  <tr><th>Rank</th><th>Player</th><th>School</th><th>RPG</th></tr>
  <tr><td>1</td><td>Jaylen Smith</td><td>Arrowhead</td><td>11.2</td></tr>
  <tr><td>2</td><td>Mason Lee</td><td>Neenah</td><td>9.8</td></tr>
</table>
<table>
  <tr><th>Rank</th><th>Player</th><th>School</th><th>APG</th></tr>
  <tr><td>1</td><td>Mason Lee</td><td>Neenah</td><td>7.1</td></tr>
</table>
</body></html>`

func newTestExtractor() *Extractor {
	return NewExtractor(logging.NewNop())
}

func TestPlayerLineMatchesSubstring(t *testing.T) {
	line, found, err := newTestExtractor().PlayerLine([]byte(scoringPage), model.CategoryPoints, "jaylen", "")
	if err != nil {
		t.Fatalf("player line: %v", err)
	}
	if !found {
		t.Fatalf("player not found")
	}
	if line.Player != "Jaylen Smith" || line.School != "Arrowhead" {
		t.Fatalf("line = %+v", line)
	}
	if line.Value != 23.4 {
		t.Fatalf("value = %v, want 23.4", line.Value)
	}
	if line.Rank != 1 {
		t.Fatalf("rank = %d, want 1", line.Rank)
	}
	if line.Category != model.CategoryPoints {
		t.Fatalf("category = %s, want points", line.Category)
	}
}

func TestPlayerLineNotFoundIsDistinctFromZero(t *testing.T) {
	e := newTestExtractor()

	line, found, err := e.PlayerLine([]byte(scoringPage), model.CategoryPoints, "Quiet Dunn", "")
	if err != nil || !found {
		t.Fatalf("zero-stat player should be found, got found=%v err=%v", found, err)
	}
	if line.Value != 0 {
		t.Fatalf("value = %v, want 0", line.Value)
	}

	line, found, err = e.PlayerLine([]byte(scoringPage), model.CategoryPoints, "Nobody Here", "")
	if err != nil {
		t.Fatalf("missing player should not be an error: %v", err)
	}
	if found || line != nil {
		t.Fatalf("missing player reported as found: %+v", line)
	}
}

func TestPlayerLineSchoolQualifier(t *testing.T) {
	e := newTestExtractor()

	// Bare "Smith" is ambiguous; substring match returns the first row.
	line, found, _ := e.PlayerLine([]byte(scoringPage), model.CategoryPoints, "Smith", "")
	if !found || line.Player != "Jaylen Smith" {
		t.Fatalf("unqualified match = %+v", line)
	}

	line, found, _ = e.PlayerLine([]byte(scoringPage), model.CategoryPoints, "Smith", "Kimberly")
	if !found {
		t.Fatalf("qualified player not found")
	}
	if line.Player != "Carter Smith" || line.School != "Kimberly" {
		t.Fatalf("qualified match = %+v, want Carter Smith of Kimberly", line)
	}
}

func TestPlayerLineRejectsMalformedRows(t *testing.T) {
	e := newTestExtractor()

	// The nameless row must never match, whatever the query.
	if _, found, _ := e.PlayerLine([]byte(scoringPage), model.CategoryPoints, "Unknown", ""); found {
		t.Fatalf("row without a player name matched")
	}
	// A non-numeric stat rejects the row even when the name matches.
	if _, found, _ := e.PlayerLine([]byte(scoringPage), model.CategoryPoints, "Eli Vang", ""); found {
		t.Fatalf("row with non-numeric value matched")
	}
}

func TestPlayerLineErrors(t *testing.T) {
	e := newTestExtractor()

	if _, _, err := e.PlayerLine([]byte(scoringPage), model.StatCategory("turnovers"), "x", ""); err == nil {
		t.Fatalf("unknown category should error")
	}
	if _, _, err := e.PlayerLine([]byte(scoringPage), model.CategoryRebounds, "Jaylen", ""); err == nil {
		t.Fatalf("missing category table should error")
	}
}

func TestTopSkipsMalformedRowsWithoutCounting(t *testing.T) {
	e := newTestExtractor()

	lines, err := e.Top([]byte(scoringPage), model.CategoryPoints, 0)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(lines) != 4 {
		t.Fatalf("top has %d entries, want 4: %+v", len(lines), lines)
	}
	if lines[0].Player != "Jaylen Smith" || lines[3].Player != "Quiet Dunn" {
		t.Fatalf("entries = %+v", lines)
	}
	if lines[3].Rank != 6 {
		t.Fatalf("last rank = %d, want the page's own rank 6", lines[3].Rank)
	}

	lines, err = e.Top([]byte(scoringPage), model.CategoryPoints, 2)
	if err != nil {
		t.Fatalf("top limited: %v", err)
	}
	if len(lines) != 2 || lines[1].Player != "Mason Lee" {
		t.Fatalf("limited top = %+v, want first two scorers", lines)
	}
}

func TestTopUnknownCategoryErrors(t *testing.T) {
	if _, err := newTestExtractor().Top([]byte(scoringPage), model.StatCategory("fouls"), 5); err == nil {
		t.Fatalf("unknown category should error")
	}
}

func TestSummaryCollectsCategoriesPresentOnPage(t *testing.T) {
	summary := newTestExtractor().Summary([]byte(fullPage), "Jaylen Smith", "")

	if len(summary) != 2 {
		t.Fatalf("summary has %d categories, want 2: %+v", len(summary), summary)
	}
	if summary[model.CategoryPoints].Value != 23.4 {
		t.Fatalf("points = %v, want 23.4", summary[model.CategoryPoints].Value)
	}
	if summary[model.CategoryRebounds].Value != 11.2 {
		t.Fatalf("rebounds = %v, want 11.2", summary[model.CategoryRebounds].Value)
	}
	if _, ok := summary[model.CategoryAssists]; ok {
		t.Fatalf("assists table has no Jaylen Smith row, summary should omit it")
	}
}
