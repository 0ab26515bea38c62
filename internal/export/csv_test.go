package export

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/bbref/internal/store"
)

type fakeLister struct {
	players []*store.Player
	team    string
	err     error
}

func (f *fakeLister) List(_ context.Context, team string, _ int) ([]*store.Player, error) {
	f.team = team
	return f.players, f.err
}

func str(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func TestPlayers(t *testing.T) {
	src := &fakeLister{players: []*store.Player{
		{
			Name: "Jayson Tatum", Team: "BOS", Position: str("PF"), Height: str("6-8"), Weight: 210,
			BirthDate: str("March 3, 1998"), BirthCountry: str("us"), Experience: str("7"),
			College: str("Duke"), URL: str("https://www.basketball-reference.com/players/t/tatumja01.html"),
		},
		{Name: "Nene", Team: "BOS", Weight: 250.5},
	}}

	var buf bytes.Buffer
	n, err := Players(context.Background(), src, "BOS", &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "BOS", src.team)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, Header, records[0])
	assert.Equal(t, []string{
		"Jayson Tatum", "PF", "6-8", "210", "March 3, 1998", "us", "7", "Duke", "BOS",
		"https://www.basketball-reference.com/players/t/tatumja01.html",
	}, records[1])
	assert.Equal(t, []string{"Nene", "", "", "250.5", "", "", "", "", "BOS", ""}, records[2])
}

func TestPlayersListError(t *testing.T) {
	var buf bytes.Buffer
	_, err := Players(context.Background(), &fakeLister{err: errors.New("closed")}, "", &buf)
	assert.Error(t, err)
	assert.Zero(t, buf.Len())
}
