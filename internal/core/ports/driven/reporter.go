package driven

import "github.com/cxpkg/cx/internal/core/domain"

// ReporterBackend renders structured events for one output format.
// Backends are registered under the "reporter-output" hook kind;
// configuration pairs a backend name with a destination, e.g.
// {backend: "console", output: "stdout"}.
type ReporterBackend interface {
	// Open binds the backend to a destination and returns a sink.
	// Recognised destinations are "stdout", "stderr" and file paths.
	Open(destination string) (ReporterSink, error)
}

// ReporterSink consumes a stream of structured events and writes them to
// its destination.
type ReporterSink interface {
	// Emit writes one event.
	Emit(event domain.Event) error

	// Close releases the destination.
	Close() error
}

// EventSink is the narrow event consumer core services emit into. The
// reporter dispatcher implements it by fanning events out to all
// configured sinks; tests implement it with an in-memory recorder.
type EventSink interface {
	Record(event domain.Event)
}
