// Package catalogdb is a foreign-ecosystem loader for tools that record
// their installs in a SQLite catalog inside the prefix. Provisioning
// tools drop a database at var/catalog/packages.db with an
// installed_packages table; this loader surfaces those rows as records.
package catalogdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/cxpkg/cx/internal/core/domain"
	"github.com/cxpkg/cx/internal/core/ports/driven"
)

// LoaderName is the hook name of the catalog loader.
const LoaderName = "catalog-db"

// RelPath is the catalog location relative to the prefix root.
var RelPath = filepath.Join("var", "catalog", "packages.db")

// Ensure Loader implements the capability interface.
var _ driven.PrefixDataLoader = (*Loader)(nil)

// Loader reads the SQLite package catalog of a prefix.
type Loader struct{}

// New creates the catalog loader.
func New() *Loader {
	return &Loader{}
}

// Load reads all rows from the installed_packages table. A prefix without
// a catalog yields no records and no error; an unreadable or malformed
// catalog fails with a LoaderError, which the aggregator treats as a
// degradation.
func (l *Loader) Load(ctx context.Context, prefix domain.PrefixHandle) ([]domain.Record, error) {
	path := filepath.Join(prefix.Path, RelPath)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &domain.LoaderError{Loader: LoaderName, Path: path, Err: err}
	}

	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, &domain.LoaderError{Loader: LoaderName, Path: path, Err: err}
	}
	defer db.Close()

	// Ordered for deterministic output; the merge relies on it.
	rows, err := db.QueryContext(ctx,
		"SELECT name, version, build, channel FROM installed_packages ORDER BY name")
	if err != nil {
		return nil, &domain.LoaderError{Loader: LoaderName, Path: path, Err: err}
	}
	defer rows.Close()

	var records []domain.Record
	for rows.Next() {
		var name, version string
		var build, channel sql.NullString
		if err := rows.Scan(&name, &version, &build, &channel); err != nil {
			return nil, &domain.LoaderError{Loader: LoaderName, Path: path, Err: err}
		}
		if name == "" {
			return nil, &domain.LoaderError{Loader: LoaderName, Path: path, Err: fmt.Errorf("catalog row missing package name")}
		}

		record := domain.NewRecord(name, version, build.String, channel.String, domain.SourceForeign, LoaderName)
		record.Origin = map[string]any{
			"catalog": path,
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.LoaderError{Loader: LoaderName, Path: path, Err: err}
	}
	return records, nil
}
