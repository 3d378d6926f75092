package services

import (
	"fmt"
	"sync"

	"github.com/cxpkg/cx/internal/core/domain"
	"github.com/cxpkg/cx/internal/core/ports/driven"
	"github.com/cxpkg/cx/internal/core/ports/driving"
	"github.com/cxpkg/cx/internal/logger"
)

// HookKind names an extension point.
type HookKind string

const (
	// HookKindLoader is the prefix-data loader extension point.
	HookKindLoader HookKind = "prefix-data-loader"

	// HookKindSolver is the solver backend extension point.
	HookKindSolver HookKind = "solver"

	// HookKindReporter is the reporter output extension point.
	HookKindReporter HookKind = "reporter-output"
)

// hookMeta tracks where an entry came from and whether it may still be
// overridden.
type hookMeta struct {
	plugin      string
	builtin     bool
	overridable bool
	overridden  bool
}

// LoaderEntry is one registered prefix-data loader.
type LoaderEntry struct {
	// Name is the hook name.
	Name string

	// Native marks the loader of the prefix's own metadata store.
	Native bool

	// Loader is the implementation.
	Loader driven.PrefixDataLoader

	authoritative map[string]bool
	meta          hookMeta
}

// AuthoritativeFor reports whether the loader owns the given package name
// even against the native store.
func (e LoaderEntry) AuthoritativeFor(name string) bool {
	return e.authoritative[domain.NormalizeName(name)]
}

// SolverEntry is one registered solver backend.
type SolverEntry struct {
	// Name is the hook name.
	Name string

	// Backend is the implementation.
	Backend driven.SolverBackend

	meta hookMeta
}

// ReporterEntry is one registered reporter backend.
type ReporterEntry struct {
	// Name is the hook name.
	Name string

	// Backend is the implementation.
	Backend driven.ReporterBackend

	meta hookMeta
}

// HookRegistry is the catalog of extension points. It is constructed
// explicitly and injected into the services that consume it; there is no
// process-wide singleton.
//
// The registry is write-once: Discover populates it from built-ins plus
// externally supplied plugins, and afterwards it is read-only and safe for
// concurrent readers. Re-discovery requires an explicit Reset, which bumps
// the registry generation so that caches built against the old state miss.
type HookRegistry struct {
	mu         sync.RWMutex
	discovered bool
	generation uint64
	loaders    []LoaderEntry
	solvers    []SolverEntry
	reporters  []ReporterEntry
}

// NewHookRegistry creates an empty, undiscovered registry.
func NewHookRegistry() *HookRegistry {
	return &HookRegistry{}
}

// Discover performs the one-time population of the catalog: built-ins
// first, then external plugins in the order supplied. Registration order
// is preserved; it is the tie-break for merge conflicts and the default
// backend rule.
//
// Discover is idempotent: once it has succeeded, repeat calls are no-ops.
// A registration failure (duplicate name, invalid implementation) clears
// any partial state and leaves the registry undiscovered.
func (r *HookRegistry) Discover(builtins, external []driving.Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.discovered {
		return nil
	}

	for _, p := range builtins {
		if err := r.registerPlugin(p, true); err != nil {
			r.clearLocked()
			return err
		}
	}
	for _, p := range external {
		if err := r.registerPlugin(p, false); err != nil {
			r.clearLocked()
			return err
		}
	}

	r.discovered = true
	logger.Debug("hook registry discovered: %d loaders, %d solvers, %d reporters",
		len(r.loaders), len(r.solvers), len(r.reporters))
	return nil
}

// Discovered reports whether the one-time discovery has completed.
func (r *HookRegistry) Discovered() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.discovered
}

// Reset clears the catalog and allows a new Discover call. The generation
// counter moves so that every cache keyed against the old registry state
// is invalidated.
func (r *HookRegistry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearLocked()
	r.generation++
}

// Generation returns the registry generation. It changes only on Reset.
func (r *HookRegistry) Generation() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.generation
}

func (r *HookRegistry) clearLocked() {
	r.discovered = false
	r.loaders = nil
	r.solvers = nil
	r.reporters = nil
}

func (r *HookRegistry) registerPlugin(p driving.Plugin, builtin bool) error {
	for _, h := range p.Loaders {
		if err := r.registerLoader(p.Name, h, builtin); err != nil {
			return err
		}
	}
	for _, h := range p.Solvers {
		if err := r.registerSolver(p.Name, h, builtin); err != nil {
			return err
		}
	}
	for _, h := range p.Reporters {
		if err := r.registerReporter(p.Name, h, builtin); err != nil {
			return err
		}
	}
	return nil
}

func (r *HookRegistry) registerLoader(plugin string, h driving.LoaderHook, builtin bool) error {
	if err := validateHook(plugin, HookKindLoader, h.Name, h.Loader); err != nil {
		return err
	}

	authoritative := make(map[string]bool, len(h.Authoritative))
	for _, name := range h.Authoritative {
		authoritative[domain.NormalizeName(name)] = true
	}
	entry := LoaderEntry{
		Name:          h.Name,
		Native:        h.Native,
		Loader:        h.Loader,
		authoritative: authoritative,
		meta:          newMeta(plugin, builtin, h.Overridable),
	}

	for i := range r.loaders {
		if r.loaders[i].Name != h.Name {
			continue
		}
		if !canOverride(r.loaders[i].meta, builtin) {
			return &domain.DuplicateRegistrationError{Kind: string(HookKindLoader), Name: h.Name}
		}
		entry.meta = overriddenMeta(plugin)
		r.loaders[i] = entry
		return nil
	}
	r.loaders = append(r.loaders, entry)
	return nil
}

func (r *HookRegistry) registerSolver(plugin string, h driving.SolverHook, builtin bool) error {
	if err := validateHook(plugin, HookKindSolver, h.Name, h.Backend); err != nil {
		return err
	}

	entry := SolverEntry{Name: h.Name, Backend: h.Backend, meta: newMeta(plugin, builtin, h.Overridable)}
	for i := range r.solvers {
		if r.solvers[i].Name != h.Name {
			continue
		}
		if !canOverride(r.solvers[i].meta, builtin) {
			return &domain.DuplicateRegistrationError{Kind: string(HookKindSolver), Name: h.Name}
		}
		entry.meta = overriddenMeta(plugin)
		r.solvers[i] = entry
		return nil
	}
	r.solvers = append(r.solvers, entry)
	return nil
}

func (r *HookRegistry) registerReporter(plugin string, h driving.ReporterHook, builtin bool) error {
	if err := validateHook(plugin, HookKindReporter, h.Name, h.Backend); err != nil {
		return err
	}

	entry := ReporterEntry{Name: h.Name, Backend: h.Backend, meta: newMeta(plugin, builtin, h.Overridable)}
	for i := range r.reporters {
		if r.reporters[i].Name != h.Name {
			continue
		}
		if !canOverride(r.reporters[i].meta, builtin) {
			return &domain.DuplicateRegistrationError{Kind: string(HookKindReporter), Name: h.Name}
		}
		entry.meta = overriddenMeta(plugin)
		r.reporters[i] = entry
		return nil
	}
	r.reporters = append(r.reporters, entry)
	return nil
}

// validateHook checks a hook against the capability contract before
// acceptance.
func validateHook(plugin string, kind HookKind, name string, impl any) error {
	if name == "" {
		return fmt.Errorf("plugin %q: %s hook with empty name", plugin, kind)
	}
	if impl == nil {
		return fmt.Errorf("plugin %q: %s hook %q has no implementation", plugin, kind, name)
	}
	return nil
}

func newMeta(plugin string, builtin, overridable bool) hookMeta {
	// Only designated built-in defaults are overridable.
	return hookMeta{plugin: plugin, builtin: builtin, overridable: overridable && builtin}
}

// canOverride allows an external registration to replace a designated
// built-in default exactly once.
func canOverride(existing hookMeta, builtin bool) bool {
	return !builtin && existing.builtin && existing.overridable && !existing.overridden
}

func overriddenMeta(plugin string) hookMeta {
	return hookMeta{plugin: plugin, overridden: true}
}

// Loaders returns all registered loaders in registration order.
func (r *HookRegistry) Loaders() []LoaderEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]LoaderEntry, len(r.loaders))
	copy(out, r.loaders)
	return out
}

// NativeLoader returns the first-registered native loader.
func (r *HookRegistry) NativeLoader() (LoaderEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.loaders {
		if e.Native {
			return e, nil
		}
	}
	return LoaderEntry{}, fmt.Errorf("no native loader registered: %w", domain.ErrHookNotFound)
}

// ForeignLoaders returns the non-native loaders in registration order.
func (r *HookRegistry) ForeignLoaders() []LoaderEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []LoaderEntry
	for _, e := range r.loaders {
		if !e.Native {
			out = append(out, e)
		}
	}
	return out
}

// Solver resolves a solver backend by name. An empty name selects the
// first-registered default.
func (r *HookRegistry) Solver(name string) (SolverEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if name == "" {
		if len(r.solvers) == 0 {
			return SolverEntry{}, fmt.Errorf("no solver backends registered: %w", domain.ErrHookNotFound)
		}
		return r.solvers[0], nil
	}
	for _, e := range r.solvers {
		if e.Name == name {
			return e, nil
		}
	}
	return SolverEntry{}, &domain.UnknownBackendError{Kind: string(HookKindSolver), Name: name}
}

// Reporter resolves a reporter backend by name. An empty name selects the
// first-registered default.
func (r *HookRegistry) Reporter(name string) (ReporterEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if name == "" {
		if len(r.reporters) == 0 {
			return ReporterEntry{}, fmt.Errorf("no reporter backends registered: %w", domain.ErrHookNotFound)
		}
		return r.reporters[0], nil
	}
	for _, e := range r.reporters {
		if e.Name == name {
			return e, nil
		}
	}
	return ReporterEntry{}, &domain.UnknownBackendError{Kind: string(HookKindReporter), Name: name}
}

// Names lists the registered hook names for a kind in registration order.
func (r *HookRegistry) Names(kind HookKind) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var names []string
	switch kind {
	case HookKindLoader:
		for _, e := range r.loaders {
			names = append(names, e.Name)
		}
	case HookKindSolver:
		for _, e := range r.solvers {
			names = append(names, e.Name)
		}
	case HookKindReporter:
		for _, e := range r.reporters {
			names = append(names, e.Name)
		}
	}
	return names
}
