package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDB_InMemory(t *testing.T) {
	db, err := NewDB(":memory:")
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, ":memory:", db.Path())
	assert.NoError(t, db.Ping(context.Background()))
}

func TestNewDB_FileCreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "flip.db")

	db, err := NewDB(dbPath)
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, dbPath, db.Path())

	_, err = os.Stat(dbPath)
	assert.NoError(t, err, "database file was not created")
}

func TestMigrate_Idempotent(t *testing.T) {
	db, err := NewDB(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, db.Migrate(ctx))
	require.NoError(t, db.Migrate(ctx))

	var version int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_version").Scan(&version))
	assert.Equal(t, 1, version)
}

func TestInMemoryDatabasesAreIsolated(t *testing.T) {
	ctx := context.Background()

	a, err := NewDB(":memory:")
	require.NoError(t, err)
	defer a.Close()
	require.NoError(t, a.Migrate(ctx))

	b, err := NewDB(":memory:")
	require.NoError(t, err)
	defer b.Close()

	var n int
	err = b.QueryRowContext(ctx, "SELECT COUNT(*) FROM team_tokens").Scan(&n)
	assert.Error(t, err, "second database must not see the first one's schema")
}

func TestFileDatabasePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "flip.db")

	db, err := NewDB(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx))
	_, err = db.ExecContext(ctx, `INSERT INTO team_tokens (team_id, access_token, created_at, updated_at) VALUES ('T1', 'xoxp', '2024-01-01T00:00:00Z', '2024-01-01T00:00:00Z')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	reopened, err := NewDB(dbPath)
	require.NoError(t, err)
	defer reopened.Close()
	require.NoError(t, reopened.Migrate(ctx))

	token, err := NewTeamTokenRepository(reopened.DB).FindByTeamID(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, "xoxp", token.AccessToken)
}
