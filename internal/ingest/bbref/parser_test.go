package bbref

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/bbref/internal/scrape"
)

func fixture(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(b)
}

func document(t *testing.T, markup string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	require.NoError(t, err)
	return doc
}

func TestParseRoster(t *testing.T) {
	parsed, err := ParseRoster(document(t, fixture(t, "roster.html")), "BOS")
	require.NoError(t, err)

	require.Len(t, parsed.Rows, 4)
	require.Len(t, parsed.Rejected, 1)
	assert.ErrorIs(t, parsed.Rejected[0], scrape.ErrMalformedCell)
	assert.Contains(t, parsed.Rejected[0].Error(), "Broken Scale")

	tatum := parsed.Rows[0]
	assert.Equal(t, "Jayson Tatum", tatum.Name)
	assert.Equal(t, "BOS", tatum.Team)
	assert.Equal(t, "PF", tatum.Position.String)
	assert.Equal(t, "6-8", tatum.Height.String)
	assert.Equal(t, 210.0, tatum.Weight)
	assert.Equal(t, "March 3, 1998", tatum.BirthDate.String)
	assert.Equal(t, "us", tatum.BirthCountry.String)
	assert.Equal(t, "7", tatum.Experience.String)
	assert.Equal(t, "Duke", tatum.College.String)
	assert.False(t, tatum.URL.Valid)

	nene := parsed.Rows[3]
	assert.Equal(t, "Nene", nene.Name)
	assert.Equal(t, "R", nene.Experience.String)
	assert.True(t, nene.College.Valid)
	assert.Empty(t, nene.College.String)
}

func TestParseSeasonStatsTakesLatestRegularSeason(t *testing.T) {
	stats, err := ParseSeasonStats(document(t, fixture(t, "player.html")))
	require.NoError(t, err)

	assert.Equal(t, "2024-25", stats.Season.String)
	assert.Equal(t, 72.0, stats.Games)
	assert.Equal(t, 72.0, stats.GamesStarted)
	assert.Equal(t, 36.4, stats.MinutesPerGame)
	assert.Equal(t, 0.452, stats.FieldGoalPercentage)
	assert.Equal(t, 0.343, stats.ThreePointPercentage)
	assert.Equal(t, 0.538, stats.EffectiveFGPercentage)
	assert.Equal(t, 8.7, stats.TotalRebounds)
	assert.Equal(t, 6.0, stats.Assists)
	assert.Equal(t, 26.8, stats.PointsPerGame)
	// Columns the page does not carry read as zero.
	assert.Zero(t, stats.TwoPointers)
	assert.Zero(t, stats.Steals)
}

func TestParseSeasonStatsWithoutRegularSeason(t *testing.T) {
	markup := `<table id="per_game_stats"><thead><tr><th data-stat="year_id">Season</th><th data-stat="games">G</th></tr></thead>
<tbody><tr><th data-stat="year_id">Career</th><td data-stat="games">10</td></tr>
<tr><th data-stat="year_id">2 Yr Playoffs</th><td data-stat="games">3</td></tr></tbody></table>`

	_, err := ParseSeasonStats(document(t, markup))
	assert.ErrorIs(t, err, ErrNoSeason)
}

func TestParseSeasonStatsMalformedRow(t *testing.T) {
	markup := `<table id="per_game_stats"><thead><tr><th data-stat="year_id">Season</th><th data-stat="games">G</th></tr></thead>
<tbody><tr><th data-stat="year_id">2024-25</th><td data-stat="games">7x</td></tr></tbody></table>`

	_, err := ParseSeasonStats(document(t, markup))
	assert.ErrorIs(t, err, scrape.ErrMalformedCell)

	var coerce *scrape.CoercionError
	require.ErrorAs(t, err, &coerce)
	assert.Equal(t, "games", coerce.Field)
	assert.Equal(t, "7x", coerce.Raw)
}

func TestParseSchedule(t *testing.T) {
	base, err := url.Parse(DefaultBaseURL)
	require.NoError(t, err)

	parsed, err := ParseSchedule(document(t, fixture(t, "schedule.html")), 2025, "october", base)
	require.NoError(t, err)
	require.Empty(t, parsed.Rejected)
	require.Len(t, parsed.Rows, 3)

	g := parsed.Rows[0]
	assert.Equal(t, 2025, g.SeasonYear)
	assert.Equal(t, "October", g.Month)
	assert.Equal(t, "Tue, Oct 22, 2024", g.GameDate)
	assert.Equal(t, "7:30p", g.StartET.String)
	assert.Equal(t, "New York Knicks", g.VisitorTeam)
	assert.Equal(t, 109, g.VisitorPts)
	assert.Equal(t, "Boston Celtics", g.HomeTeam)
	assert.Equal(t, 132, g.HomePts)
	assert.Equal(t, "https://www.basketball-reference.com/boxscores/202410220BOS.html", g.BoxScoreLink.String)
	assert.Equal(t, "19156", g.Attendance.String)

	unplayed := parsed.Rows[2]
	assert.Equal(t, "Thu, Oct 31, 2024", unplayed.GameDate)
	assert.Zero(t, unplayed.VisitorPts)
	assert.Zero(t, unplayed.HomePts)
	assert.False(t, unplayed.BoxScoreLink.Valid)
}

func TestParseBoxScores(t *testing.T) {
	link := "https://www.basketball-reference.com/boxscores/202410220BOS.html"
	parsed, err := ParseBoxScores(document(t, fixture(t, "boxscore.html")), link)
	require.NoError(t, err)
	require.Empty(t, parsed.Rejected)
	require.Len(t, parsed.Rows, 7)

	byName := make(map[string]int)
	for i, line := range parsed.Rows {
		assert.Equal(t, link, line.BoxScoreLink)
		assert.NotContains(t, line.PlayerName, "Totals")
		assert.NotEqual(t, "Reserves", line.PlayerName)
		byName[line.PlayerName] = i
	}

	brunson := parsed.Rows[byName["Jalen Brunson"]]
	assert.Equal(t, "New York Knicks", brunson.Team)
	assert.True(t, brunson.Starter)
	assert.Equal(t, "36:40", brunson.MP.String)
	assert.Equal(t, 10, brunson.FG)
	assert.Equal(t, 22, brunson.FGA)
	assert.Equal(t, 22, brunson.PTS)
	assert.Equal(t, -16, brunson.PlusMinus)

	tatum := parsed.Rows[byName["Jayson Tatum"]]
	assert.Equal(t, "Boston Celtics", tatum.Team)
	assert.True(t, tatum.Starter)
	assert.Equal(t, 37, tatum.PTS)
	assert.Equal(t, 26, tatum.PlusMinus)

	pritchard := parsed.Rows[byName["Payton Pritchard"]]
	assert.False(t, pritchard.Starter)
	assert.Equal(t, 3, pritchard.ThreeP)
	assert.Zero(t, pritchard.ThreePPct)

	kolek := parsed.Rows[byName["Tyler Kolek"]]
	assert.False(t, kolek.MP.Valid)
	assert.Zero(t, kolek.PTS)
}

func TestParseAdvancedBoxScores(t *testing.T) {
	link := "https://www.basketball-reference.com/boxscores/202410220BOS.html"
	parsed, err := ParseAdvancedBoxScores(document(t, fixture(t, "boxscore.html")), link)
	require.NoError(t, err)
	require.Len(t, parsed.Rows, 7)

	teams := make(map[string]int)
	for _, line := range parsed.Rows {
		teams[line.Team]++
		if line.PlayerName != "Jayson Tatum" {
			continue
		}
		assert.True(t, line.Starter)
		assert.Equal(t, 0.833, line.TSPct)
		assert.Equal(t, 34.0, line.USGPct)
		assert.Equal(t, 165, line.ORtg)
		assert.Equal(t, 97, line.DRtg)
		assert.Equal(t, 19.5, line.BPM)
	}
	assert.Equal(t, map[string]int{"New York Knicks": 4, "Boston Celtics": 3}, teams)
}

func TestParseMissingTables(t *testing.T) {
	doc := document(t, `<html><body><p>Page Not Found</p></body></html>`)

	_, err := ParseRoster(doc, "BOS")
	assert.ErrorIs(t, err, scrape.ErrTableNotFound)
	_, err = ParseSeasonStats(doc)
	assert.ErrorIs(t, err, scrape.ErrTableNotFound)
	_, err = ParseSchedule(doc, 2025, "october", nil)
	assert.ErrorIs(t, err, scrape.ErrTableNotFound)
	_, err = ParseBoxScores(doc, "x")
	assert.ErrorIs(t, err, scrape.ErrTableNotFound)
	_, err = ParseAdvancedBoxScores(doc, "x")
	assert.ErrorIs(t, err, scrape.ErrTableNotFound)
}
