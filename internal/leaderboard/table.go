// Package leaderboard extracts player stat lines from rendered
// season-leader tables. Each category (points, rebounds, ...) is its
// own table on the page, identified by its value-column header.
package leaderboard

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/fortuna/ceres/internal/logging"
	"github.com/fortuna/ceres/internal/model"
)

// columnForCategory is the fixed mapping from a category to the header
// label of its per-game value column.
var columnForCategory = map[model.StatCategory]string{
	model.CategoryPoints:   "PPG",
	model.CategoryRebounds: "RPG",
	model.CategoryAssists:  "APG",
	model.CategorySteals:   "SPG",
	model.CategoryBlocks:   "BPG",
}

// Extractor pulls stat lines out of leaderboard HTML.
type Extractor struct {
	log *logging.Logger
}

// NewExtractor creates an extractor.
func NewExtractor(log *logging.Logger) *Extractor {
	if log == nil {
		log = logging.Default()
	}
	return &Extractor{log: log.Named("leaderboard")}
}

// PlayerLine finds one player's entry in a category table. The player
// match is a case-insensitive substring test against the player-info
// cell; a non-empty school narrows it to rows also naming that school.
// found is false when no row matches, which is distinct from a player
// whose stat is zero. Rows with no name or a non-numeric value are
// rejected and never match.
func (e *Extractor) PlayerLine(html []byte, category model.StatCategory, player, school string) (*model.StatLine, bool, error) {
	table, err := e.categoryTable(html, category)
	if err != nil {
		return nil, false, err
	}

	playerLower := strings.ToLower(player)
	schoolLower := strings.ToLower(school)

	var (
		line     *model.StatLine
		rejected int
	)
	table.rows(func(rank int, name, rowSchool, value string) bool {
		if name == "" {
			rejected++
			return true
		}
		parsed, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
		if err != nil {
			rejected++
			return true
		}

		haystack := strings.ToLower(name + " " + rowSchool)
		if !strings.Contains(haystack, playerLower) {
			return true
		}
		if schoolLower != "" && !strings.Contains(haystack, schoolLower) {
			return true
		}

		line = &model.StatLine{
			Player:   name,
			School:   rowSchool,
			Category: category,
			Value:    parsed,
			Rank:     rank,
		}
		return false
	})

	if rejected > 0 {
		e.log.Debug("rejected malformed leaderboard rows",
			"category", string(category), "rows", rejected)
	}
	if line == nil {
		return nil, false, nil
	}
	return line, true, nil
}

// Summary collects a player's line from every category table present on
// the page. Categories whose tables are missing are simply absent from
// the result.
func (e *Extractor) Summary(html []byte, player, school string) map[model.StatCategory]model.StatLine {
	out := make(map[model.StatCategory]model.StatLine)
	for _, category := range model.Categories {
		line, found, err := e.PlayerLine(html, category, player, school)
		if err != nil || !found {
			continue
		}
		out[category] = *line
	}
	return out
}

// Top returns the first limit well-formed entries of a category table
// in page order. Malformed rows are skipped, not counted against the
// limit. limit <= 0 means every row.
func (e *Extractor) Top(html []byte, category model.StatCategory, limit int) ([]model.StatLine, error) {
	table, err := e.categoryTable(html, category)
	if err != nil {
		return nil, err
	}

	var lines []model.StatLine
	table.rows(func(rank int, name, school, value string) bool {
		if name == "" {
			return true
		}
		parsed, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
		if err != nil {
			return true
		}

		lines = append(lines, model.StatLine{
			Player:   name,
			School:   school,
			Category: category,
			Value:    parsed,
			Rank:     rank,
		})
		return limit <= 0 || len(lines) < limit
	})
	return lines, nil
}

// categoryTable locates the table whose header row carries the
// category's value column.
func (e *Extractor) categoryTable(html []byte, category model.StatCategory) (*statTable, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("unknown stat category %q", category)
	}
	label := columnForCategory[category]

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing leaderboard HTML: %w", err)
	}

	var found *statTable
	doc.Find("table").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		t := readTable(sel)
		if t == nil {
			return true
		}
		for i, header := range t.headers {
			if strings.EqualFold(header, label) && i != t.rankCol && i != t.playerCol && i != t.schoolCol {
				t.valueCol = i
				found = t
				return false
			}
		}
		return true
	})

	if found == nil {
		return nil, fmt.Errorf("no %s table on page", category)
	}
	return found, nil
}

// statTable is one leaderboard table with its columns resolved.
type statTable struct {
	headers   []string
	dataRows  *goquery.Selection
	rankCol   int
	playerCol int
	schoolCol int
	valueCol  int
}

// readTable resolves a table's identity columns from its header row.
// Returns nil when the table does not look like a leaderboard (no
// player column).
func readTable(sel *goquery.Selection) *statTable {
	headerCells := sel.Find("tr").First().Find("th, td")
	if headerCells.Length() < 2 {
		return nil
	}

	t := &statTable{rankCol: -1, playerCol: -1, schoolCol: -1, valueCol: -1}
	headerCells.Each(func(i int, cell *goquery.Selection) {
		text := strings.TrimSpace(cell.Text())
		t.headers = append(t.headers, text)
		switch {
		case strings.EqualFold(text, "Rank") || text == "#":
			t.rankCol = i
		case strings.EqualFold(text, "Player") || strings.EqualFold(text, "Name"):
			t.playerCol = i
		case strings.EqualFold(text, "School") || strings.EqualFold(text, "Team"):
			t.schoolCol = i
		}
	})

	if t.playerCol == -1 {
		return nil
	}

	t.dataRows = sel.Find("tr").Slice(1, goquery.ToEnd)
	return t
}

// rows visits each data row with its resolved cells. The visitor
// returns false to stop early.
func (t *statTable) rows(visit func(rank int, name, school, value string) bool) {
	t.dataRows.EachWithBreak(func(i int, row *goquery.Selection) bool {
		cells := row.Find("td")
		if cells.Length() <= t.valueCol {
			return true
		}

		cellText := func(col int) string {
			if col < 0 || col >= cells.Length() {
				return ""
			}
			return strings.TrimSpace(cells.Eq(col).Text())
		}

		rank := i + 1
		if t.rankCol >= 0 {
			if n, err := strconv.Atoi(strings.TrimSuffix(cellText(t.rankCol), ".")); err == nil {
				rank = n
			}
		}

		return visit(rank, cellText(t.playerCol), cellText(t.schoolCol), cellText(t.valueCol))
	})
}
