package domain

// ReporterSpec associates a reporter backend with an output destination.
type ReporterSpec struct {
	// Backend is the hook name of the reporter backend, e.g. "console".
	Backend string

	// Output is the destination, e.g. "stdout", "stderr" or a file path.
	Output string
}

// Settings is the typed application configuration consumed by the core
// services. It is assembled by the config store from the on-disk file and
// any legacy aliases.
type Settings struct {
	// Interoperability enables foreign-ecosystem loaders during state
	// aggregation.
	Interoperability bool

	// Solver names the solver backend to select. Empty means the
	// first-registered default.
	Solver string

	// Reporters lists the configured reporter destinations. Empty means a
	// single console reporter on stdout.
	Reporters []ReporterSpec
}

// DefaultSettings returns the settings used when no configuration file is
// present.
func DefaultSettings() Settings {
	return Settings{
		Reporters: []ReporterSpec{{Backend: "console", Output: "stdout"}},
	}
}
