// Package condameta reads the native metadata store of an environment
// prefix: one JSON file per installed package under conda-meta/.
package condameta

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cxpkg/cx/internal/core/domain"
	"github.com/cxpkg/cx/internal/core/ports/driven"
)

// LoaderName is the hook name of the native loader.
const LoaderName = "conda-meta"

// MetadataDir is the per-prefix directory holding one JSON record per
// installed package.
const MetadataDir = "conda-meta"

// Ensure Loader implements the capability interface.
var _ driven.PrefixDataLoader = (*Loader)(nil)

// Loader is the native prefix-data loader.
type Loader struct{}

// New creates the native loader.
func New() *Loader {
	return &Loader{}
}

// metaRecord is the subset of a conda-meta JSON file the loader consumes.
type metaRecord struct {
	Name    string   `json:"name"`
	Version string   `json:"version"`
	Build   string   `json:"build"`
	Channel string   `json:"channel"`
	Depends []string `json:"depends"`
}

// Load reads every package record from conda-meta/. Any unreadable or
// corrupt file fails the whole load: the native store is authoritative
// and a partial native view would be worse than none.
func (l *Loader) Load(ctx context.Context, prefix domain.PrefixHandle) ([]domain.Record, error) {
	dir := filepath.Join(prefix.Path, MetadataDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &domain.LoaderError{Loader: LoaderName, Path: dir, Err: err}
	}

	var records []domain.Record
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &domain.LoaderError{Loader: LoaderName, Path: path, Err: err}
		}
		var meta metaRecord
		if err := json.Unmarshal(data, &meta); err != nil {
			return nil, &domain.LoaderError{Loader: LoaderName, Path: path, Err: fmt.Errorf("corrupt metadata: %w", err)}
		}
		if meta.Name == "" {
			return nil, &domain.LoaderError{Loader: LoaderName, Path: path, Err: fmt.Errorf("metadata missing package name")}
		}

		record := domain.NewRecord(meta.Name, meta.Version, meta.Build, meta.Channel, domain.SourceNative, LoaderName)
		record.Origin = map[string]any{
			"file": entry.Name(),
		}
		if len(meta.Depends) > 0 {
			record.Origin["depends"] = meta.Depends
		}
		records = append(records, record)
	}
	return records, nil
}

// Token derives the staleness token for a prefix from the conda-meta
// directory listing: file names, sizes and modification times are hashed,
// so any install, removal or update moves the token.
func Token(prefix string) (string, error) {
	dir := filepath.Join(prefix, MetadataDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", &domain.LoaderError{Loader: LoaderName, Path: dir, Err: err}
	}

	names := make([]string, 0, len(entries))
	byName := make(map[string]os.DirEntry, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
		byName[entry.Name()] = entry
	}
	sort.Strings(names)

	h := sha256.New()
	for _, name := range names {
		info, err := byName[name].Info()
		if err != nil {
			return "", &domain.LoaderError{Loader: LoaderName, Path: filepath.Join(dir, name), Err: err}
		}
		fmt.Fprintf(h, "%s|%d|%d\n", name, info.Size(), info.ModTime().UnixNano())
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Handle builds a prefix handle with a freshly computed staleness token.
func Handle(prefix string) (domain.PrefixHandle, error) {
	token, err := Token(prefix)
	if err != nil {
		return domain.PrefixHandle{}, err
	}
	return domain.NewPrefixHandle(prefix, token), nil
}

// InstalledNames lists the normalized package names present in the native
// store without parsing the record files. Foreign loaders use it to drop
// entries the native store already owns.
func InstalledNames(prefix string) (map[string]bool, error) {
	dir := filepath.Join(prefix, MetadataDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &domain.LoaderError{Loader: LoaderName, Path: dir, Err: err}
	}

	names := make(map[string]bool, len(entries))
	for _, entry := range entries {
		fn := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(fn, ".json") {
			continue
		}
		// Record files are named <name>-<version>-<build>.json.
		fn = strings.TrimSuffix(fn, ".json")
		parts := strings.Split(fn, "-")
		if len(parts) < 3 {
			continue
		}
		name := strings.Join(parts[:len(parts)-2], "-")
		names[domain.NormalizeName(name)] = true
	}
	return names, nil
}
