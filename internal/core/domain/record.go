package domain

import (
	"fmt"
	"strings"
)

// SourceKind identifies which class of metadata store produced a record.
type SourceKind string

const (
	// SourceNative marks records read from the prefix's own metadata store.
	SourceNative SourceKind = "native"

	// SourceForeign marks records contributed by a foreign-ecosystem loader.
	SourceForeign SourceKind = "foreign"
)

// Record describes one installed package. Records are immutable values:
// they are constructed fresh on every state refresh, never mutated, and
// superseded rather than edited when the environment changes.
type Record struct {
	// Name is the normalized package name. It is the unique key within one
	// merged environment view.
	Name string

	// Version is the package version, comparable via CompareVersions.
	Version string

	// Build is an opaque build identifier disambiguating same name+version.
	Build string

	// Channel is the source channel the package was installed from.
	Channel string

	// Source tells whether the record came from the native store or a
	// foreign ecosystem.
	Source SourceKind

	// Loader is the hook name of the loader that produced this record.
	Loader string

	// Origin holds free-form, loader-specific metadata. It is opaque to the
	// aggregator.
	Origin map[string]any
}

// NewRecord constructs a record with a normalized name.
func NewRecord(name, version, build, channel string, source SourceKind, loader string) Record {
	return Record{
		Name:    NormalizeName(name),
		Version: version,
		Build:   build,
		Channel: channel,
		Source:  source,
		Loader:  loader,
	}
}

// Spec returns the canonical name=version=build spelling of the record.
func (r Record) Spec() string {
	var b strings.Builder
	b.WriteString(r.Name)
	if r.Version != "" {
		b.WriteString("=")
		b.WriteString(r.Version)
	}
	if r.Build != "" {
		b.WriteString("=")
		b.WriteString(r.Build)
	}
	return b.String()
}

// String returns a human-readable one-line description.
func (r Record) String() string {
	if r.Channel != "" {
		return fmt.Sprintf("%s (%s)", r.Spec(), r.Channel)
	}
	return r.Spec()
}

// MatchSpec is a minimal package constraint used by solver backends.
// Empty fields match anything.
type MatchSpec struct {
	// Name is the normalized package name the constraint applies to.
	Name string

	// Version, when set, must equal the record version exactly.
	Version string

	// Build, when set, must equal the record build exactly.
	Build string
}

// Matches reports whether a record satisfies the constraint.
func (m MatchSpec) Matches(r Record) bool {
	if m.Name != "" && NormalizeName(m.Name) != r.Name {
		return false
	}
	if m.Version != "" && m.Version != r.Version {
		return false
	}
	if m.Build != "" && m.Build != r.Build {
		return false
	}
	return true
}

// String returns the name=version=build spelling of the constraint.
func (m MatchSpec) String() string {
	spec := NormalizeName(m.Name)
	if m.Version != "" {
		spec += "=" + m.Version
	}
	if m.Build != "" {
		spec += "=" + m.Build
	}
	return spec
}
