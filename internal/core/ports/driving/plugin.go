package driving

import "github.com/cxpkg/cx/internal/core/ports/driven"

// Plugin is one bundle of hook implementations contributed to the hook
// registry. Built-in plugins register first during discovery; external
// plugins follow in the order they are supplied.
type Plugin struct {
	// Name identifies the plugin in logs and error messages.
	Name string

	// Loaders are the prefix-data-loader hooks the plugin provides.
	Loaders []LoaderHook

	// Solvers are the solver hooks the plugin provides.
	Solvers []SolverHook

	// Reporters are the reporter-output hooks the plugin provides.
	Reporters []ReporterHook
}

// LoaderHook registers one prefix-data loader.
type LoaderHook struct {
	// Name is the hook name, unique within the loader kind.
	Name string

	// Native marks the loader of the prefix's own metadata store. The
	// aggregator invokes the first-registered native loader
	// unconditionally and treats its failure as fatal.
	Native bool

	// Authoritative lists package names this loader owns even when the
	// native store also reports them. Rarely needed; the default precedence
	// is native-over-foreign.
	Authoritative []string

	// Overridable designates a built-in default that one external
	// registration may replace. Ignored for external plugins.
	Overridable bool

	// Loader is the implementation. It is validated against the capability
	// interface before acceptance.
	Loader driven.PrefixDataLoader
}

// SolverHook registers one solver backend.
type SolverHook struct {
	// Name is the hook name, unique within the solver kind.
	Name string

	// Overridable designates a built-in default that one external
	// registration may replace. Ignored for external plugins.
	Overridable bool

	// Backend is the implementation.
	Backend driven.SolverBackend
}

// ReporterHook registers one reporter backend.
type ReporterHook struct {
	// Name is the hook name, unique within the reporter kind.
	Name string

	// Overridable designates a built-in default that one external
	// registration may replace. Ignored for external plugins.
	Overridable bool

	// Backend is the implementation.
	Backend driven.ReporterBackend
}
