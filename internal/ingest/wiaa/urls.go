package wiaa

import (
	"net/url"
	"strconv"
)

const (
	// BaseURL is the WIAA tournament bracket host.
	BaseURL = "https://halftime.wiaawi.org"
	// LeadersBaseURL hosts the statewide stat leader tables.
	LeadersBaseURL = "https://www.wissports.net"
)

// BracketURL builds the bracket page URL for one season slice.
func BracketURL(base string, year int, gender, division string) string {
	q := url.Values{}
	q.Set("sport", "Basketball")
	q.Set("year", strconv.Itoa(year))
	q.Set("gender", gender)
	q.Set("division", division)
	return base + "/Brackets?" + q.Encode()
}

// LeadersURL builds the stat leaders page URL for one season.
func LeadersURL(base string, year int, gender string) string {
	q := url.Values{}
	q.Set("sport", "Basketball")
	q.Set("year", strconv.Itoa(year))
	q.Set("gender", gender)
	return base + "/leaders?" + q.Encode()
}
