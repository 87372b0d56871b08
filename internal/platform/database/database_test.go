package database

import (
	"context"
	"path/filepath"
	"testing"

	"mathquest/internal/platform/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateSQLiteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, config.DriverSQLite, filepath.Join(t.TempDir(), "mq.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(ctx, db, config.DriverSQLite))
	require.NoError(t, Migrate(ctx, db, config.DriverSQLite))

	var applied int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&applied))
	migrations, err := loadMigrations(config.DriverSQLite)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), applied)

	for _, table := range []string{"user_sessions", "problem_sessions", "submissions"} {
		var n int
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n), table)
	}
}

func TestLoadMigrationsPerDriver(t *testing.T) {
	pg, err := loadMigrations(config.DriverPostgres)
	require.NoError(t, err)
	lite, err := loadMigrations(config.DriverSQLite)
	require.NoError(t, err)

	require.Len(t, lite, len(pg))
	for i := range pg {
		assert.Equal(t, pg[i].Version, lite[i].Version)
		assert.Contains(t, pg[i].SQL, "CREATE TABLE")
	}
	assert.Contains(t, pg[0].SQL, "TIMESTAMPTZ")
	assert.NotContains(t, lite[0].SQL, "TIMESTAMPTZ")
}

func TestSQLiteEnforcesHintCap(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, config.DriverSQLite, filepath.Join(t.TempDir(), "mq.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, Migrate(ctx, db, config.DriverSQLite))

	_, err = db.ExecContext(ctx, `INSERT INTO user_sessions (id, hint_credits, hint_cap, created_at, last_accessed_at)
        VALUES ('ABCDE', 6, 5, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`)
	assert.Error(t, err)
}
