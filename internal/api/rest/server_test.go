package rest

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fortuna/bbref/internal/runner"
	"github.com/fortuna/bbref/internal/store"
	"github.com/fortuna/bbref/internal/store/repository"
)

const boxLink = "https://www.basketball-reference.com/boxscores/202410220BOS.html"

func str(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func newTestServer(t *testing.T) (http.Handler, *store.Database) {
	t.Helper()
	ctx := context.Background()

	db, err := store.NewDatabase("sqlite", ":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.RunMigrations(ctx))

	players := repository.NewPlayerRepository(db)
	for _, p := range []*store.Player{
		{Name: "Jayson Tatum", Team: "BOS", Position: str("PF"), Weight: 210, URL: str("https://www.basketball-reference.com/players/t/tatumja01.html")},
		{Name: "Jalen Brunson", Team: "NYK", Position: str("PG"), Weight: 190},
	} {
		_, err := players.Insert(ctx, p)
		require.NoError(t, err)
	}

	_, err = repository.NewGameLogRepository(db).Insert(ctx, &store.GameLog{
		SeasonYear: 2025, Month: "October", GameDate: "Tue, Oct 22, 2024",
		VisitorTeam: "New York Knicks", VisitorPts: 109, HomeTeam: "Boston Celtics", HomePts: 132,
		BoxScoreLink: str(boxLink), Attendance: str("19156"),
	})
	require.NoError(t, err)

	boxes := repository.NewBoxScoreRepository(db)
	_, err = boxes.InsertBasic(ctx, &store.BoxScoreLine{BoxScoreLink: boxLink, Team: "Boston Celtics", PlayerName: "Jayson Tatum", Starter: true, MP: str("30:01"), PTS: 37})
	require.NoError(t, err)
	_, err = boxes.InsertAdvanced(ctx, &store.AdvancedBoxScoreLine{BoxScoreLink: boxLink, Team: "Boston Celtics", PlayerName: "Jayson Tatum", ORtg: 165})
	require.NoError(t, err)

	require.NoError(t, runner.NewRepository(db).Create(ctx, &store.IngestRun{
		ID: "run-1", Job: "roster", Status: "completed", StartedAt: time.Now().UTC(),
	}))

	srv := NewServer(0, NewHandler(db, zap.NewNop()), nil, zap.NewNop())
	return srv.Handler(), db
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestHealthCheck(t *testing.T) {
	h, _ := newTestServer(t)

	rec := get(t, h, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	decode(t, rec, &body)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "sqlite", body["dialect"])
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestListPlayers(t *testing.T) {
	h, _ := newTestServer(t)

	rec := get(t, h, "/api/v1/players?team=BOS")
	require.Equal(t, http.StatusOK, rec.Code)

	var players []map[string]interface{}
	decode(t, rec, &players)
	require.Len(t, players, 1)
	assert.Equal(t, "Jayson Tatum", players[0]["name"])
	assert.Equal(t, "PF", players[0]["position"])
	assert.Equal(t, "https://www.basketball-reference.com/players/t/tatumja01.html", players[0]["url"])
	assert.Nil(t, players[0]["college"])

	rec = get(t, h, "/api/v1/players?limit=1")
	decode(t, rec, &players)
	assert.Len(t, players, 1)
}

func TestExportPlayers(t *testing.T) {
	h, _ := newTestServer(t)

	rec := get(t, h, "/api/v1/players/export.csv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "URL", records[0][len(records[0])-1])
	assert.Equal(t, "Jayson Tatum", records[1][0])
}

func TestListGameLogs(t *testing.T) {
	h, _ := newTestServer(t)

	rec := get(t, h, "/api/v1/gamelogs?season=2025&team=Boston+Celtics")
	require.Equal(t, http.StatusOK, rec.Code)

	var games []map[string]interface{}
	decode(t, rec, &games)
	require.Len(t, games, 1)
	assert.Equal(t, boxLink, games[0]["box_score_link"])
	assert.EqualValues(t, 132, games[0]["home_pts"])
	assert.Equal(t, "19156", games[0]["attendance"])

	rec = get(t, h, "/api/v1/gamelogs?season=2024")
	decode(t, rec, &games)
	assert.Empty(t, games)

	rec = get(t, h, "/api/v1/gamelogs?season=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListBoxScores(t *testing.T) {
	h, _ := newTestServer(t)

	rec := get(t, h, "/api/v1/boxscores?link="+boxLink)
	require.Equal(t, http.StatusOK, rec.Code)
	var lines []map[string]interface{}
	decode(t, rec, &lines)
	require.Len(t, lines, 1)
	assert.Equal(t, "30:01", lines[0]["mp"])
	assert.Equal(t, true, lines[0]["starter"])
	assert.EqualValues(t, 37, lines[0]["pts"])

	rec = get(t, h, "/api/v1/boxscores/advanced?link="+boxLink)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &lines)
	require.Len(t, lines, 1)
	assert.Nil(t, lines[0]["mp"])
	assert.EqualValues(t, 165, lines[0]["ortg"])

	rec = get(t, h, "/api/v1/boxscores")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRuns(t *testing.T) {
	h, _ := newTestServer(t)

	rec := get(t, h, "/api/v1/runs")
	require.Equal(t, http.StatusOK, rec.Code)
	var runs []map[string]interface{}
	decode(t, rec, &runs)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0]["id"])

	rec = get(t, h, "/api/v1/runs/run-1")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = get(t, h, "/api/v1/runs/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthCheckDatabaseDown(t *testing.T) {
	h, db := newTestServer(t)
	require.NoError(t, db.Close())

	rec := get(t, h, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
