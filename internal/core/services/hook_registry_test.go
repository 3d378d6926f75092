package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cxpkg/cx/internal/core/domain"
	"github.com/cxpkg/cx/internal/core/ports/driving"
)

// fakeSolver is a solver backend stub for registry tests.
type fakeSolver struct {
	name string
}

func (s *fakeSolver) Solve(_ context.Context, current []domain.Record, _ domain.ChangeSet, _ []domain.MatchSpec) ([]domain.Record, error) {
	return current, nil
}

func loaderPlugin(plugin string, hooks ...driving.LoaderHook) driving.Plugin {
	return driving.Plugin{Name: plugin, Loaders: hooks}
}

func solverPlugin(plugin string, hooks ...driving.SolverHook) driving.Plugin {
	return driving.Plugin{Name: plugin, Solvers: hooks}
}

func TestHookRegistry_Discover_PreservesRegistrationOrder(t *testing.T) {
	r := NewHookRegistry()
	err := r.Discover([]driving.Plugin{loaderPlugin("base",
		driving.LoaderHook{Name: "alpha", Native: true, Loader: &fakeLoader{name: "alpha"}},
		driving.LoaderHook{Name: "beta", Loader: &fakeLoader{name: "beta"}},
	)}, []driving.Plugin{loaderPlugin("ext",
		driving.LoaderHook{Name: "gamma", Loader: &fakeLoader{name: "gamma"}},
	)})
	require.NoError(t, err)

	assert.True(t, r.Discovered())
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, r.Names(HookKindLoader))
}

func TestHookRegistry_Discover_DuplicateNameFails(t *testing.T) {
	r := NewHookRegistry()
	err := r.Discover(nil, []driving.Plugin{
		loaderPlugin("first", driving.LoaderHook{Name: "pip", Loader: &fakeLoader{name: "pip"}}),
		loaderPlugin("second", driving.LoaderHook{Name: "pip", Loader: &fakeLoader{name: "pip"}}),
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateHook)

	var dup *domain.DuplicateRegistrationError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, string(HookKindLoader), dup.Kind)
	assert.Equal(t, "pip", dup.Name)
}

func TestHookRegistry_Discover_FailureClearsPartialState(t *testing.T) {
	r := NewHookRegistry()
	err := r.Discover(nil, []driving.Plugin{
		loaderPlugin("first", driving.LoaderHook{Name: "pip", Loader: &fakeLoader{name: "pip"}}),
		loaderPlugin("second", driving.LoaderHook{Name: "pip", Loader: &fakeLoader{name: "pip"}}),
	})
	require.Error(t, err)

	assert.False(t, r.Discovered())
	assert.Empty(t, r.Names(HookKindLoader))

	// A corrected catalog can still be discovered afterwards.
	require.NoError(t, r.Discover(nil, []driving.Plugin{
		loaderPlugin("first", driving.LoaderHook{Name: "pip", Loader: &fakeLoader{name: "pip"}}),
	}))
	assert.True(t, r.Discovered())
}

func TestHookRegistry_Discover_SameNameAcrossKinds(t *testing.T) {
	r := NewHookRegistry()
	err := r.Discover(nil, []driving.Plugin{{
		Name:    "ext",
		Loaders: []driving.LoaderHook{{Name: "mamba", Loader: &fakeLoader{name: "mamba"}}},
		Solvers: []driving.SolverHook{{Name: "mamba", Backend: &fakeSolver{name: "mamba"}}},
	}})
	require.NoError(t, err)

	assert.Equal(t, []string{"mamba"}, r.Names(HookKindLoader))
	assert.Equal(t, []string{"mamba"}, r.Names(HookKindSolver))
}

func TestHookRegistry_Discover_Idempotent(t *testing.T) {
	r := NewHookRegistry()
	require.NoError(t, r.Discover(nil, []driving.Plugin{
		solverPlugin("base", driving.SolverHook{Name: "classic", Backend: &fakeSolver{name: "classic"}}),
	}))

	// Even a conflicting second call is a no-op once discovery succeeded.
	require.NoError(t, r.Discover(nil, []driving.Plugin{
		solverPlugin("other", driving.SolverHook{Name: "classic", Backend: &fakeSolver{name: "other"}}),
	}))
	assert.Equal(t, []string{"classic"}, r.Names(HookKindSolver))
}

func TestHookRegistry_Discover_EmptyNameRejected(t *testing.T) {
	r := NewHookRegistry()
	err := r.Discover(nil, []driving.Plugin{
		loaderPlugin("ext", driving.LoaderHook{Name: "", Loader: &fakeLoader{}}),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty name")
}

func TestHookRegistry_Discover_NilImplementationRejected(t *testing.T) {
	r := NewHookRegistry()
	err := r.Discover(nil, []driving.Plugin{
		loaderPlugin("ext", driving.LoaderHook{Name: "pip", Loader: nil}),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no implementation")
}

func TestHookRegistry_OverridableBuiltinOverriddenOnce(t *testing.T) {
	builtin := &fakeSolver{name: "builtin"}
	external := &fakeSolver{name: "external"}

	r := NewHookRegistry()
	err := r.Discover(
		[]driving.Plugin{solverPlugin("cx", driving.SolverHook{Name: "classic", Overridable: true, Backend: builtin})},
		[]driving.Plugin{solverPlugin("turbo", driving.SolverHook{Name: "classic", Backend: external})},
	)
	require.NoError(t, err)

	entry, err := r.Solver("classic")
	require.NoError(t, err)
	assert.Same(t, external, entry.Backend)
	assert.Equal(t, []string{"classic"}, r.Names(HookKindSolver))
}

func TestHookRegistry_OverriddenBuiltinRejectsSecondOverride(t *testing.T) {
	r := NewHookRegistry()
	err := r.Discover(
		[]driving.Plugin{solverPlugin("cx", driving.SolverHook{Name: "classic", Overridable: true, Backend: &fakeSolver{}})},
		[]driving.Plugin{
			solverPlugin("turbo", driving.SolverHook{Name: "classic", Backend: &fakeSolver{}}),
			solverPlugin("nitro", driving.SolverHook{Name: "classic", Backend: &fakeSolver{}}),
		},
	)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateHook)
}

func TestHookRegistry_NonOverridableBuiltinRejectsExternal(t *testing.T) {
	r := NewHookRegistry()
	err := r.Discover(
		[]driving.Plugin{solverPlugin("cx", driving.SolverHook{Name: "classic", Backend: &fakeSolver{}})},
		[]driving.Plugin{solverPlugin("turbo", driving.SolverHook{Name: "classic", Backend: &fakeSolver{}})},
	)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateHook)
}

func TestHookRegistry_ExternalHookNeverOverridable(t *testing.T) {
	r := NewHookRegistry()
	err := r.Discover(nil, []driving.Plugin{
		// Overridable is a built-in designation; external plugins cannot
		// claim it for themselves.
		solverPlugin("turbo", driving.SolverHook{Name: "fast", Overridable: true, Backend: &fakeSolver{}}),
		solverPlugin("nitro", driving.SolverHook{Name: "fast", Backend: &fakeSolver{}}),
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateHook)
}

func TestHookRegistry_NativeLoader(t *testing.T) {
	native := &fakeLoader{name: "conda-meta"}
	r := NewHookRegistry()
	require.NoError(t, r.Discover(nil, []driving.Plugin{loaderPlugin("base",
		driving.LoaderHook{Name: "pip", Loader: &fakeLoader{name: "pip"}},
		driving.LoaderHook{Name: "conda-meta", Native: true, Loader: native},
	)}))

	entry, err := r.NativeLoader()
	require.NoError(t, err)
	assert.Equal(t, "conda-meta", entry.Name)
	assert.Same(t, native, entry.Loader)
}

func TestHookRegistry_NativeLoader_NoneRegistered(t *testing.T) {
	r := NewHookRegistry()
	require.NoError(t, r.Discover(nil, []driving.Plugin{
		loaderPlugin("base", driving.LoaderHook{Name: "pip", Loader: &fakeLoader{name: "pip"}}),
	}))

	_, err := r.NativeLoader()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrHookNotFound)
}

func TestHookRegistry_ForeignLoaders_ExcludeNativeKeepOrder(t *testing.T) {
	r := NewHookRegistry()
	require.NoError(t, r.Discover(nil, []driving.Plugin{loaderPlugin("base",
		driving.LoaderHook{Name: "conda-meta", Native: true, Loader: &fakeLoader{name: "conda-meta"}},
		driving.LoaderHook{Name: "pip", Loader: &fakeLoader{name: "pip"}},
		driving.LoaderHook{Name: "catalog-db", Loader: &fakeLoader{name: "catalog-db"}},
	)}))

	foreign := r.ForeignLoaders()
	require.Len(t, foreign, 2)
	assert.Equal(t, "pip", foreign[0].Name)
	assert.Equal(t, "catalog-db", foreign[1].Name)
}

func TestHookRegistry_LoaderEntry_AuthoritativeFor(t *testing.T) {
	r := NewHookRegistry()
	require.NoError(t, r.Discover(nil, []driving.Plugin{loaderPlugin("base",
		driving.LoaderHook{Name: "pip", Authoritative: []string{"Setup_Tools"}, Loader: &fakeLoader{name: "pip"}},
	)}))

	foreign := r.ForeignLoaders()
	require.Len(t, foreign, 1)
	assert.True(t, foreign[0].AuthoritativeFor("setup-tools"))
	assert.True(t, foreign[0].AuthoritativeFor("Setup_Tools"))
	assert.False(t, foreign[0].AuthoritativeFor("wheel"))
}

func TestHookRegistry_Solver_EmptyNameSelectsFirstRegistered(t *testing.T) {
	first := &fakeSolver{name: "first"}
	r := NewHookRegistry()
	require.NoError(t, r.Discover(nil, []driving.Plugin{solverPlugin("base",
		driving.SolverHook{Name: "classic", Backend: first},
		driving.SolverHook{Name: "turbo", Backend: &fakeSolver{name: "turbo"}},
	)}))

	entry, err := r.Solver("")
	require.NoError(t, err)
	assert.Equal(t, "classic", entry.Name)
	assert.Same(t, first, entry.Backend)
}

func TestHookRegistry_Solver_UnknownName(t *testing.T) {
	r := NewHookRegistry()
	require.NoError(t, r.Discover(nil, []driving.Plugin{
		solverPlugin("base", driving.SolverHook{Name: "classic", Backend: &fakeSolver{}}),
	}))

	_, err := r.Solver("libmamba")
	require.Error(t, err)

	var unknown *domain.UnknownBackendError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, string(HookKindSolver), unknown.Kind)
	assert.Equal(t, "libmamba", unknown.Name)
	assert.ErrorIs(t, err, domain.ErrHookNotFound)
}

func TestHookRegistry_Solver_NoneRegistered(t *testing.T) {
	r := NewHookRegistry()
	require.NoError(t, r.Discover(nil, nil))

	_, err := r.Solver("")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrHookNotFound)
}

func TestHookRegistry_Reset_BumpsGeneration(t *testing.T) {
	r := NewHookRegistry()
	require.NoError(t, r.Discover(nil, []driving.Plugin{
		solverPlugin("base", driving.SolverHook{Name: "classic", Backend: &fakeSolver{}}),
	}))
	before := r.Generation()

	r.Reset()

	assert.False(t, r.Discovered())
	assert.Empty(t, r.Names(HookKindSolver))
	assert.Greater(t, r.Generation(), before)
}

func TestHookRegistry_Builtins_DefaultOrder(t *testing.T) {
	r := NewHookRegistry()
	require.NoError(t, r.Discover(BuiltinPlugins(), nil))

	assert.Equal(t, []string{"conda-meta", "pip", "catalog-db"}, r.Names(HookKindLoader))
	assert.Equal(t, []string{"classic"}, r.Names(HookKindSolver))
	assert.Equal(t, []string{"console", "json"}, r.Names(HookKindReporter))

	native, err := r.NativeLoader()
	require.NoError(t, err)
	assert.Equal(t, "conda-meta", native.Name)
}
