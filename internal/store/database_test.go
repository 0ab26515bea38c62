package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDetectDialect(t *testing.T) {
	tests := []struct {
		dsn  string
		want Dialect
	}{
		{"postgres://user:pw@localhost:5432/bbref?sslmode=disable", DialectPostgres},
		{"postgresql://localhost/bbref", DialectPostgres},
		{"host=localhost dbname=bbref sslmode=disable", DialectPostgres},
		{"nba_players.db", DialectSQLite},
		{":memory:", DialectSQLite},
		{"file:test.db?cache=shared", DialectSQLite},
	}

	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectDialect(tt.dsn))
		})
	}
}

func TestRebind(t *testing.T) {
	pg := &Database{dialect: DialectPostgres}
	lite := &Database{dialect: DialectSQLite}

	q := "SELECT * FROM players WHERE team = ? AND name = ? LIMIT ?"
	assert.Equal(t, "SELECT * FROM players WHERE team = $1 AND name = $2 LIMIT $3", pg.Rebind(q))
	assert.Equal(t, q, lite.Rebind(q))
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := NewDatabase("", ":memory:", zap.NewNop())
	require.NoError(t, err)
	defer db.Close()

	require.Equal(t, DialectSQLite, db.Dialect())
	require.NoError(t, db.RunMigrations(ctx))
	require.NoError(t, db.RunMigrations(ctx))

	var applied int
	require.NoError(t, db.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&applied))
	assert.Equal(t, 4, applied)

	for _, table := range []string{"players", "gamelogs", "box_scores_per_game", "advanced_box_scores_per_game", "ingest_runs"} {
		var n int
		err := db.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n)
		assert.NoError(t, err, table)
	}
}

func TestNewDatabaseRejectsUnknownDriver(t *testing.T) {
	_, err := NewDatabase("oracle", "whatever", nil)
	require.Error(t, err)
}
