package bracket

import (
	"regexp"
	"strings"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Common shorthand seen on bracket pages, expanded word by word so
// "Brookfield Acad." and "Brookfield Academy" collapse to one team.
var abbreviations = map[string]string{
	"acad": "Academy",
	"cath": "Catholic",
	"chr":  "Christian",
	"hts":  "Heights",
	"luth": "Lutheran",
	"mem":  "Memorial",
	"prep": "Preparatory",
	"univ": "University",
}

// NormalizeTeamName cleans a team name as it appears on a bracket page:
// advancing-team asterisks dropped, whitespace collapsed, trailing
// shorthand expanded.
func NormalizeTeamName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.Trim(name, "*")
	name = whitespaceRe.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)

	words := strings.Split(name, " ")
	for i, w := range words {
		key := strings.ToLower(strings.TrimSuffix(w, "."))
		if full, ok := abbreviations[key]; ok {
			words[i] = full
		}
	}
	return strings.Join(words, " ")
}

// sameTeam reports whether two normalized names refer to the same team.
func sameTeam(a, b string) bool {
	return strings.EqualFold(a, b)
}
