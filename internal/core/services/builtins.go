package services

import (
	"github.com/cxpkg/cx/internal/adapters/driven/reporters/console"
	"github.com/cxpkg/cx/internal/adapters/driven/reporters/jsonout"
	"github.com/cxpkg/cx/internal/adapters/driven/solver/classic"
	"github.com/cxpkg/cx/internal/core/ports/driving"
	"github.com/cxpkg/cx/internal/loaders/catalogdb"
	"github.com/cxpkg/cx/internal/loaders/condameta"
	"github.com/cxpkg/cx/internal/loaders/pip"
)

// BuiltinPlugins returns the built-in hook implementations. They register
// first during discovery, which makes them the defaults: the conda-meta
// loader is the native store, "classic" is the default solver and
// "console" the default reporter.
//
// Every built-in is a designated overridable default: an external plugin
// may replace it by name exactly once.
func BuiltinPlugins() []driving.Plugin {
	return []driving.Plugin{
		{
			Name: "cx",
			Loaders: []driving.LoaderHook{
				{Name: condameta.LoaderName, Native: true, Overridable: true, Loader: condameta.New()},
				{Name: pip.LoaderName, Overridable: true, Loader: pip.New()},
				{Name: catalogdb.LoaderName, Overridable: true, Loader: catalogdb.New()},
			},
			Solvers: []driving.SolverHook{
				{Name: classic.BackendName, Overridable: true, Backend: classic.New()},
			},
			Reporters: []driving.ReporterHook{
				{Name: console.BackendName, Overridable: true, Backend: console.New()},
				{Name: jsonout.BackendName, Overridable: true, Backend: jsonout.New()},
			},
		},
	}
}
