package services

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/cxpkg/cx/internal/core/domain"
	"github.com/cxpkg/cx/internal/core/ports/driven"
	"github.com/cxpkg/cx/internal/core/ports/driving"
	"github.com/cxpkg/cx/internal/logger"
)

// Ensure PrefixStateService implements the driving port.
var _ driving.PrefixStateService = (*PrefixStateService)(nil)

// defaultCacheSize bounds the number of per-prefix state entries kept in
// memory. Typical setups touch a handful of environments.
const defaultCacheSize = 64

// stateEntry is one cached merged record set. A hit is valid only while
// the handle's staleness token and the registry generation are unchanged.
type stateEntry struct {
	token      string
	generation uint64
	state      *domain.PrefixState
}

// PrefixStateService builds and caches the unified installed-package view
// per environment prefix. The native loader contributes unconditionally;
// foreign-ecosystem loaders contribute when interoperability is enabled.
//
// Conflicts resolve deterministically: native records win over foreign
// ones unless the foreign loader is authoritative for that name, and
// between foreign loaders the earlier-registered wins.
type PrefixStateService struct {
	registry *HookRegistry
	events   driven.EventSink
	cache    *lru.Cache[string, *stateEntry]
	group    singleflight.Group
}

// NewPrefixStateService creates the aggregator over the given registry.
// events may be nil when no reporter sinks are configured.
func NewPrefixStateService(registry *HookRegistry, events driven.EventSink) (*PrefixStateService, error) {
	cache, err := lru.New[string, *stateEntry](defaultCacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating state cache: %w", err)
	}
	if events == nil {
		events = nopSink{}
	}
	return &PrefixStateService{registry: registry, events: events, cache: cache}, nil
}

// GetState returns the merged record set for the prefix, recomputing only
// when the cache misses or the staleness token moved. Concurrent calls for
// the same prefix while it is computing are coalesced into a single
// underlying computation; every caller receives the same result.
func (s *PrefixStateService) GetState(ctx context.Context, handle domain.PrefixHandle, interopEnabled bool) (*domain.PrefixState, error) {
	key := cacheKey(handle, interopEnabled)
	if entry, ok := s.cache.Get(key); ok && s.fresh(entry, handle) {
		return entry.state, nil
	}

	_, err, _ := s.group.Do(key, func() (any, error) {
		// A coalesced caller may arrive after the winner stored its result.
		if entry, ok := s.cache.Get(key); ok && s.fresh(entry, handle) {
			return entry.state, nil
		}
		return s.compute(ctx, handle, interopEnabled, key)
	})
	if err != nil {
		return nil, err
	}

	// A caller holding a newer token can join a computation that started
	// under an older one. Its view must not be older than its token, so
	// a stale winner triggers a recompute for this handle.
	if entry, ok := s.cache.Get(key); ok && s.fresh(entry, handle) {
		return entry.state, nil
	}
	return s.compute(ctx, handle, interopEnabled, key)
}

// Invalidate drops the cached state for the prefix so the next GetState
// recomputes, regardless of the staleness token. Collaborators that mutate
// an environment call this.
func (s *PrefixStateService) Invalidate(handle domain.PrefixHandle) {
	s.cache.Remove(cacheKey(handle, true))
	s.cache.Remove(cacheKey(handle, false))
	logger.Debug("invalidated prefix state for %s", handle.Path)
}

func cacheKey(handle domain.PrefixHandle, interopEnabled bool) string {
	return fmt.Sprintf("%s|interop=%t", handle.Key(), interopEnabled)
}

func (s *PrefixStateService) fresh(entry *stateEntry, handle domain.PrefixHandle) bool {
	return entry.token == handle.Token && entry.generation == s.registry.Generation()
}

// recordOwner tracks which loader currently owns a merged name.
type recordOwner struct {
	loader string
	native bool
	index  int
}

func (s *PrefixStateService) compute(ctx context.Context, handle domain.PrefixHandle, interopEnabled bool, key string) (*domain.PrefixState, error) {
	generation := s.registry.Generation()

	native, err := s.registry.NativeLoader()
	if err != nil {
		return nil, err
	}
	nativeRecords, err := native.Loader.Load(ctx, handle)
	if err != nil {
		return nil, &domain.EnvironmentUnreadableError{Prefix: handle.Path, Err: err}
	}

	owners := make(map[string]recordOwner, len(nativeRecords))
	merged := make([]domain.Record, 0, len(nativeRecords))
	for _, r := range nativeRecords {
		if _, taken := owners[r.Name]; taken {
			continue
		}
		owners[r.Name] = recordOwner{loader: native.Name, native: true, index: len(merged)}
		merged = append(merged, r)
	}

	if interopEnabled {
		merged = s.mergeForeign(ctx, handle, owners, merged)
	}

	state := domain.NewPrefixState(handle.Path, merged)
	s.cache.Add(key, &stateEntry{token: handle.Token, generation: generation, state: state})
	logger.Debug("computed prefix state for %s: %d packages", handle.Path, state.Len())
	return state, nil
}

// mergeForeign runs the foreign loaders concurrently, then merges their
// results sequentially in registration order so the tie-break stays
// deterministic. A failing foreign loader degrades the view to the
// remaining sources and emits a warning event; it never poisons the merge.
func (s *PrefixStateService) mergeForeign(ctx context.Context, handle domain.PrefixHandle, owners map[string]recordOwner, merged []domain.Record) []domain.Record {
	foreign := s.registry.ForeignLoaders()
	if len(foreign) == 0 {
		return merged
	}

	results := make([][]domain.Record, len(foreign))
	failures := make([]error, len(foreign))
	var g errgroup.Group
	for i, entry := range foreign {
		g.Go(func() error {
			results[i], failures[i] = entry.Loader.Load(ctx, handle)
			return nil
		})
	}
	// Loaders are read-only and report failures per slot.
	_ = g.Wait()

	for i, entry := range foreign {
		if failures[i] != nil {
			logger.Warn("foreign loader %q failed for %s: %v", entry.Name, handle.Path, failures[i])
			s.events.Record(domain.NewEvent(domain.LevelWarn,
				fmt.Sprintf("loader %q failed; its packages are missing from this view", entry.Name),
				map[string]any{"loader": entry.Name, "prefix": handle.Path, "error": failures[i].Error()},
			))
			continue
		}
		for _, r := range results[i] {
			owner, taken := owners[r.Name]
			if !taken {
				owners[r.Name] = recordOwner{loader: entry.Name, index: len(merged)}
				merged = append(merged, r)
				continue
			}
			if owner.native && entry.AuthoritativeFor(r.Name) {
				merged[owner.index] = r
				owners[r.Name] = recordOwner{loader: entry.Name, index: owner.index}
				s.events.Record(domain.NewEvent(domain.LevelInfo,
					fmt.Sprintf("loader %q is authoritative for %q; native record replaced", entry.Name, r.Name),
					map[string]any{"name": r.Name, "loader": entry.Name},
				))
				continue
			}
			if owner.native {
				// Default precedence: the native record stands.
				logger.Debug("dropping foreign record %s from %q: native record exists", r.Name, entry.Name)
				continue
			}
			s.events.Record(domain.NewEvent(domain.LevelInfo,
				fmt.Sprintf("duplicate record for %q: keeping %q, discarding %q", r.Name, owner.loader, entry.Name),
				map[string]any{"name": r.Name, "kept": owner.loader, "discarded": entry.Name},
			))
		}
	}
	return merged
}

// nopSink discards events.
type nopSink struct{}

func (nopSink) Record(domain.Event) {}
