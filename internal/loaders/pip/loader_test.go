package pip

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cxpkg/cx/internal/core/domain"
)

func writeDistInfo(t *testing.T, sitePackages, dir, name, version string) {
	t.Helper()
	path := filepath.Join(sitePackages, dir)
	require.NoError(t, os.MkdirAll(path, 0o755))
	metadata := "Metadata-Version: 2.1\nName: " + name + "\nVersion: " + version + "\n\nLong description.\n"
	require.NoError(t, os.WriteFile(filepath.Join(path, "METADATA"), []byte(metadata), 0o644))
}

func sitePackagesFixture(t *testing.T) (prefix, sitePackages string) {
	t.Helper()
	prefix = t.TempDir()
	sitePackages = filepath.Join(prefix, "lib", "python3.12", "site-packages")
	require.NoError(t, os.MkdirAll(sitePackages, 0o755))
	return prefix, sitePackages
}

func TestLoader_Load(t *testing.T) {
	prefix, sitePackages := sitePackagesFixture(t)
	writeDistInfo(t, sitePackages, "requests-2.31.0.dist-info", "requests", "2.31.0")
	writeDistInfo(t, sitePackages, "Typing_Extensions-4.9.0.dist-info", "Typing_Extensions", "4.9.0")

	records, err := New().Load(context.Background(), domain.NewPrefixHandle(prefix, "tok"))
	require.NoError(t, err)
	require.Len(t, records, 2)

	state := domain.NewPrefixState(prefix, records)
	r, ok := state.Get("requests")
	require.True(t, ok)
	assert.Equal(t, "2.31.0", r.Version)
	assert.Equal(t, domain.SourceForeign, r.Source)
	assert.Equal(t, LoaderName, r.Loader)
	assert.Equal(t, Channel, r.Channel)

	// Names are normalized on the way in.
	_, ok = state.Get("typing-extensions")
	assert.True(t, ok)
}

func TestLoader_Load_NoPython(t *testing.T) {
	prefix := t.TempDir()

	records, err := New().Load(context.Background(), domain.NewPrefixHandle(prefix, "tok"))

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLoader_Load_FiltersNativeOwnedNames(t *testing.T) {
	prefix, sitePackages := sitePackagesFixture(t)
	writeDistInfo(t, sitePackages, "requests-2.31.0.dist-info", "requests", "2.31.0")
	writeDistInfo(t, sitePackages, "numpy-1.25.0.dist-info", "numpy", "1.25.0")

	// numpy is owned by the native store; the loader must drop it before
	// returning.
	metaDir := filepath.Join(prefix, "conda-meta")
	require.NoError(t, os.MkdirAll(metaDir, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(metaDir, "numpy-1.26.4-py312h_0.json"),
		[]byte(`{"name": "numpy", "version": "1.26.4"}`), 0o644))

	records, err := New().Load(context.Background(), domain.NewPrefixHandle(prefix, "tok"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "requests", records[0].Name)
}

func TestLoader_Load_EggInfo(t *testing.T) {
	prefix, sitePackages := sitePackagesFixture(t)
	eggDir := filepath.Join(sitePackages, "legacy-1.0.egg-info")
	require.NoError(t, os.MkdirAll(eggDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(eggDir, "PKG-INFO"),
		[]byte("Metadata-Version: 1.0\nName: legacy\nVersion: 1.0\n"), 0o644))

	records, err := New().Load(context.Background(), domain.NewPrefixHandle(prefix, "tok"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "legacy", records[0].Name)
	assert.Equal(t, "1.0", records[0].Version)
}

func TestLoader_Load_SkipsEntriesWithoutMetadata(t *testing.T) {
	prefix, sitePackages := sitePackagesFixture(t)
	// A dist-info directory without a METADATA file is not a distribution.
	require.NoError(t, os.MkdirAll(filepath.Join(sitePackages, "broken-0.1.dist-info"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(sitePackages, "some_package"), 0o755))

	records, err := New().Load(context.Background(), domain.NewPrefixHandle(prefix, "tok"))

	require.NoError(t, err)
	assert.Empty(t, records)
}
