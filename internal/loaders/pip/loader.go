// Package pip is the reference foreign-ecosystem loader. It reads
// installed Python distributions from the prefix's site-packages
// directory: *.dist-info/METADATA per PEP 566, with *.egg-info accepted
// for older installs.
package pip

import (
	"bufio"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cxpkg/cx/internal/core/domain"
	"github.com/cxpkg/cx/internal/core/ports/driven"
	"github.com/cxpkg/cx/internal/loaders/condameta"
)

// LoaderName is the hook name of the pip interoperability loader.
const LoaderName = "pip"

// Channel tags records contributed by this loader.
const Channel = "pypi"

// defaultBuild marks records installed by pip rather than the native
// store.
const defaultBuild = "pypi_0"

// Ensure Loader implements the capability interface.
var _ driven.PrefixDataLoader = (*Loader)(nil)

// Loader reads pip-installed distributions from a prefix.
type Loader struct{}

// New creates the pip loader.
func New() *Loader {
	return &Loader{}
}

// Load scans the prefix's site-packages directories. Entries whose name
// the native store already owns are dropped here, before the aggregator's
// merge, to uphold the global uniqueness invariant cheaply. A prefix
// without Python yields no records and no error.
func (l *Loader) Load(ctx context.Context, prefix domain.PrefixHandle) ([]domain.Record, error) {
	dirs, err := sitePackagesDirs(prefix.Path)
	if err != nil {
		return nil, err
	}
	if len(dirs) == 0 {
		return nil, nil
	}

	// Best effort: without a readable native store the aggregator fails on
	// the native loader anyway, so an error here just disables filtering.
	nativeNames, err := condameta.InstalledNames(prefix.Path)
	if err != nil {
		nativeNames = nil
	}

	var records []domain.Record
	seen := make(map[string]bool)
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, &domain.LoaderError{Loader: LoaderName, Path: dir, Err: err}
		}
		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			name, version, ok, err := readDistribution(dir, entry)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}

			normalized := domain.NormalizeName(name)
			if nativeNames[normalized] || seen[normalized] {
				continue
			}
			seen[normalized] = true

			record := domain.NewRecord(name, version, defaultBuild, Channel, domain.SourceForeign, LoaderName)
			record.Origin = map[string]any{
				"location": filepath.Join(dir, entry.Name()),
			}
			records = append(records, record)
		}
	}
	return records, nil
}

// sitePackagesDirs locates the site-packages directories of a prefix,
// covering the POSIX lib/pythonX.Y layout and the Windows Lib layout.
func sitePackagesDirs(prefix string) ([]string, error) {
	var dirs []string

	posix, err := filepath.Glob(filepath.Join(prefix, "lib", "python*", "site-packages"))
	if err != nil {
		return nil, &domain.LoaderError{Loader: LoaderName, Path: prefix, Err: err}
	}
	dirs = append(dirs, posix...)

	windows := filepath.Join(prefix, "Lib", "site-packages")
	if info, err := os.Stat(windows); err == nil && info.IsDir() {
		dirs = append(dirs, windows)
	}

	var existing []string
	for _, dir := range dirs {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			existing = append(existing, dir)
		}
	}
	return existing, nil
}

// readDistribution extracts (name, version) from one site-packages entry.
// The ok result is false for entries that are not distribution metadata.
func readDistribution(dir string, entry fs.DirEntry) (name, version string, ok bool, err error) {
	fn := entry.Name()
	switch {
	case entry.IsDir() && strings.HasSuffix(fn, ".dist-info"):
		return parseMetadataFile(filepath.Join(dir, fn, "METADATA"))
	case entry.IsDir() && strings.HasSuffix(fn, ".egg-info"):
		return parseMetadataFile(filepath.Join(dir, fn, "PKG-INFO"))
	case !entry.IsDir() && strings.HasSuffix(fn, ".egg-info"):
		return parseMetadataFile(filepath.Join(dir, fn))
	default:
		return "", "", false, nil
	}
}

// parseMetadataFile reads the Name and Version headers from an RFC 822
// style metadata file. A distribution without them is skipped rather than
// failing the whole load.
func parseMetadataFile(path string) (name, version string, ok bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", "", false, nil
		}
		return "", "", false, &domain.LoaderError{Loader: LoaderName, Path: path, Err: err}
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		// Headers end at the first blank line; the body is the long
		// description.
		if line == "" {
			break
		}
		if v, found := strings.CutPrefix(line, "Name: "); found {
			name = strings.TrimSpace(v)
		}
		if v, found := strings.CutPrefix(line, "Version: "); found {
			version = strings.TrimSpace(v)
		}
		if name != "" && version != "" {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return "", "", false, &domain.LoaderError{Loader: LoaderName, Path: path, Err: err}
	}
	return name, version, name != "" && version != "", nil
}
