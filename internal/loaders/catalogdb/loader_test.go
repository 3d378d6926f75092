package catalogdb

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cxpkg/cx/internal/core/domain"
)

func createCatalog(t *testing.T, prefix string) *sql.DB {
	t.Helper()
	path := filepath.Join(prefix, RelPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE installed_packages (
		name TEXT NOT NULL,
		version TEXT NOT NULL,
		build TEXT,
		channel TEXT
	)`)
	require.NoError(t, err)
	return db
}

func TestLoader_Load(t *testing.T) {
	prefix := t.TempDir()
	db := createCatalog(t, prefix)
	_, err := db.Exec(`INSERT INTO installed_packages (name, version, build, channel) VALUES
		('libfoo', '2.1.0', 'h_1', 'system'),
		('BarTool', '0.9.0', NULL, NULL)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	records, err := New().Load(context.Background(), domain.NewPrefixHandle(prefix, "tok"))
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Rows come back ordered by name.
	assert.Equal(t, "bartool", records[0].Name)
	assert.Equal(t, "libfoo", records[1].Name)
	assert.Equal(t, "2.1.0", records[1].Version)
	assert.Equal(t, domain.SourceForeign, records[1].Source)
	assert.Equal(t, LoaderName, records[1].Loader)
}

func TestLoader_Load_NoCatalog(t *testing.T) {
	prefix := t.TempDir()

	records, err := New().Load(context.Background(), domain.NewPrefixHandle(prefix, "tok"))

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLoader_Load_MalformedCatalog(t *testing.T) {
	prefix := t.TempDir()
	path := filepath.Join(prefix, RelPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	// A valid SQLite file without the expected table.
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE unrelated (x TEXT)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = New().Load(context.Background(), domain.NewPrefixHandle(prefix, "tok"))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLoaderFailed)
}
