package bracket

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// "Sectional #3", "Sectional 3". The number is required; sectional
	// round headers like "Sectional Semifinals" fall through to the
	// round patterns.
	sectionalRe = regexp.MustCompile(`(?i)^sectional\s*#?\s*(\d+)$`)

	// "#1 Arrowhead"
	seedTeamRe = regexp.MustCompile(`^#(\d+)\s+(.+)$`)

	// "70-68", "70 - 68 (OT)", "81-79 (2OT)". Group 3 is the whole OT
	// suffix so its absence is distinguishable from a bare "(OT)";
	// group 4 is the period count.
	scoreRe = regexp.MustCompile(`^(\d+)\s*-\s*(\d+)(\s*\(\s*(\d*)\s*OT\s*\))?$`)

	// "7:00 PM", "10:15am"
	timeRe = regexp.MustCompile(`^\d{1,2}:\d{2}\s*(?:[AaPp][Mm])?$`)

	// "Saturday, March 7", "March 7th", "Mar 7, 2024"
	dateRe = regexp.MustCompile(`(?i)^(?:(?:mon|tues|wednes|thurs|fri|satur|sun)day,?\s+)?([a-z]+)\.?\s+(\d{1,2})(?:st|nd|rd|th)?(?:,?\s+(\d{4}))?$`)
)

// roundPattern maps a header form to its canonical round name. The list
// is ordered most specific first: "Regional Semifinals" must win before
// the bare "Regionals" pattern gets a look.
type roundPattern struct {
	re   *regexp.Regexp
	name string
}

var roundPatterns = []roundPattern{
	{regexp.MustCompile(`(?i)\bregional\s+quarter-?finals?\b`), "Regional Quarterfinals"},
	{regexp.MustCompile(`(?i)\bregional\s+semi-?finals?\b`), "Regional Semifinals"},
	{regexp.MustCompile(`(?i)\bregional\s+finals?\b`), "Regional Finals"},
	{regexp.MustCompile(`(?i)\bsectional\s+semi-?finals?\b`), "Sectional Semifinals"},
	{regexp.MustCompile(`(?i)\bsectional\s+finals?\b`), "Sectional Finals"},
	{regexp.MustCompile(`(?i)\bstate\s+quarter-?finals?\b`), "State Quarterfinals"},
	{regexp.MustCompile(`(?i)\bstate\s+semi-?finals?\b`), "State Semifinals"},
	{regexp.MustCompile(`(?i)\bstate\s+championship\b|\bstate\s+finals?\b`), "State Championship"},
	{regexp.MustCompile(`(?i)^regionals?$`), "Regionals"},
	{regexp.MustCompile(`(?i)^sectionals?$`), "Sectionals"},
	{regexp.MustCompile(`(?i)^state$`), "State"},
}

// matchRound returns the canonical round name for a header line, or "".
func matchRound(line string) string {
	for _, rp := range roundPatterns {
		if rp.re.MatchString(line) {
			return rp.name
		}
	}
	return ""
}

var months = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

// parseDate resolves a month-name date against the tournament year. A
// date without an explicit year gets the tournament year, except fall
// months, which belong to the preceding calendar year of the season.
func parseDate(m []string, tournamentYear int) (time.Time, bool) {
	month, ok := months[strings.ToLower(m[1])]
	if !ok {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(m[2])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}

	year := tournamentYear
	if m[3] != "" {
		year, _ = strconv.Atoi(m[3])
	} else if month >= time.September {
		year = tournamentYear - 1
	}

	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
}

// parseOvertime maps an OT suffix to a period count: a bare "(OT)" is
// one period, "(2OT)" is two. suffix is the whole parenthesized match,
// count its digits.
func parseOvertime(suffix, count string) int {
	if suffix == "" {
		return 0
	}
	if count == "" {
		return 1
	}
	n, err := strconv.Atoi(count)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
