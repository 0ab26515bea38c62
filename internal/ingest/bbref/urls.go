package bbref

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// maxSuffix is the last disambiguation counter tried for a profile URL.
const maxSuffix = 99

var (
	// ErrNoURL means the name has fewer than two parts.
	ErrNoURL = errors.New("name cannot form a profile url")

	// ErrURLExhausted means every counter from 01 to 99 is taken.
	ErrURLExhausted = errors.New("profile url counters exhausted")
)

// Teams lists the 30 franchise abbreviations used in roster URLs.
var Teams = []string{
	"ATL", "BOS", "BRK", "CHO", "CHI", "CLE", "DAL", "DEN", "DET", "GSW",
	"HOU", "IND", "LAC", "LAL", "MEM", "MIA", "MIL", "MIN", "NOP", "NYK",
	"OKC", "ORL", "PHI", "PHO", "POR", "SAC", "SAS", "TOR", "UTA", "WAS",
}

// Months are the schedule pages of a regular season, in order.
var Months = []string{"october", "november", "december", "january", "february", "march", "april"}

// RosterURL is the team page for a season.
func RosterURL(base *url.URL, team string, season int) string {
	return join(base, fmt.Sprintf("/teams/%s/%d.html", team, season))
}

// ScheduleURL is the monthly schedule page of a season.
func ScheduleURL(base *url.URL, season int, month string) string {
	return join(base, fmt.Sprintf("/leagues/NBA_%d_games-%s.html", season, strings.ToLower(month)))
}

// ProfileURL allocates a player's profile URL. The file name is a five
// letter stem of the last name, topped up from the first name when the last
// name is shorter, then two letters of the first name and a two digit
// counter. The counter starts at 01 and moves past every URL in taken.
func ProfileURL(base *url.URL, name string, taken map[string]struct{}) (string, error) {
	parts := strings.Fields(name)
	if len(parts) < 2 {
		return "", ErrNoURL
	}
	first := strings.ToLower(parts[0])
	last := strings.ToLower(parts[len(parts)-1])

	stem := prefix(last, 5)
	if n := utf8.RuneCountInString(last); n < 5 {
		stem = last + prefix(first, 5-n)
	}
	folder := prefix(last, 1)

	for suffix := 1; suffix <= maxSuffix; suffix++ {
		u := join(base, fmt.Sprintf("/players/%s/%s%s%02d.html", folder, stem, prefix(first, 2), suffix))
		if _, ok := taken[u]; !ok {
			return u, nil
		}
	}
	return "", ErrURLExhausted
}

func prefix(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

func join(base *url.URL, path string) string {
	if base == nil {
		return DefaultBaseURL + path
	}
	return strings.TrimRight(base.String(), "/") + path
}
