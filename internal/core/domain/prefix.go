package domain

import (
	"path/filepath"
	"sort"
)

// PrefixHandle identifies an environment root together with an opaque
// staleness token derived from the underlying metadata store. Handles are
// owned by the caller; the aggregator only keeps cache entries keyed by
// them, never the handle itself.
type PrefixHandle struct {
	// Path is the environment root directory.
	Path string

	// Token is the opaque staleness signal. Two handles with the same Path
	// but different Tokens refer to different on-disk states.
	Token string
}

// NewPrefixHandle creates a handle for a prefix path with the given
// staleness token. The path is cleaned so that equivalent spellings
// produce the same cache identity.
func NewPrefixHandle(path, token string) PrefixHandle {
	return PrefixHandle{Path: filepath.Clean(path), Token: token}
}

// Key returns the cache identity of the handle. Handles for the same
// environment share a key regardless of token.
func (h PrefixHandle) Key() string {
	return h.Path
}

// PrefixState is the unified, de-duplicated view of the packages installed
// into one environment prefix. It is immutable after construction: a
// refreshed environment produces a new PrefixState rather than editing an
// existing one.
type PrefixState struct {
	prefix  string
	records []Record
	byName  map[string]Record
}

// NewPrefixState builds a state snapshot from merged records. Records are
// sorted by name so iteration order is deterministic. The caller must have
// resolved name conflicts already; on duplicate names the first record
// wins.
func NewPrefixState(prefix string, records []Record) *PrefixState {
	byName := make(map[string]Record, len(records))
	deduped := make([]Record, 0, len(records))
	for _, r := range records {
		if _, ok := byName[r.Name]; ok {
			continue
		}
		byName[r.Name] = r
		deduped = append(deduped, r)
	}
	sort.Slice(deduped, func(i, j int) bool {
		return deduped[i].Name < deduped[j].Name
	})
	return &PrefixState{prefix: prefix, records: deduped, byName: byName}
}

// Prefix returns the environment root this state describes.
func (s *PrefixState) Prefix() string {
	return s.prefix
}

// Records returns the merged records sorted by name. The returned slice is
// a copy; mutating it does not affect the state.
func (s *PrefixState) Records() []Record {
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Get looks up a record by package name. The name is normalized before
// lookup.
func (s *PrefixState) Get(name string) (Record, bool) {
	r, ok := s.byName[NormalizeName(name)]
	return r, ok
}

// Len returns the number of installed packages.
func (s *PrefixState) Len() int {
	return len(s.records)
}
