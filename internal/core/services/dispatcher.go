package services

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cxpkg/cx/internal/core/domain"
	"github.com/cxpkg/cx/internal/core/ports/driven"
	"github.com/cxpkg/cx/internal/logger"
)

// Ensure ReporterDispatcher implements the event sink port.
var _ driven.EventSink = (*ReporterDispatcher)(nil)

// ReporterDispatcher fans structured events out to the reporter sinks
// configured through the "reporters" setting. Each configured
// {backend, output} pair becomes one open sink.
type ReporterDispatcher struct {
	mu    sync.Mutex
	sinks []driven.ReporterSink
}

// NewReporterDispatcher resolves each configured reporter backend through
// the selector and opens it against its destination. Opening fails fast:
// an unknown backend name or an unopenable destination is a configuration
// error, and any sinks opened so far are closed again.
func NewReporterDispatcher(selector *Selector, specs []domain.ReporterSpec) (*ReporterDispatcher, error) {
	d := &ReporterDispatcher{}
	for _, spec := range specs {
		backend, err := selector.Reporter(spec.Backend)
		if err != nil {
			d.Close()
			return nil, err
		}
		sink, err := backend.Open(spec.Output)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("opening reporter %q output %q: %w", spec.Backend, spec.Output, err)
		}
		d.sinks = append(d.sinks, sink)
	}
	return d, nil
}

// Record emits the event to every configured sink. A failing sink does not
// stop delivery to the others.
func (d *ReporterDispatcher) Record(event domain.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, sink := range d.sinks {
		if err := sink.Emit(event); err != nil {
			logger.Warn("reporter sink failed: %v", err)
		}
	}
}

// Close closes all sinks.
func (d *ReporterDispatcher) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	var errs []error
	for _, sink := range d.sinks {
		if err := sink.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	d.sinks = nil
	return errors.Join(errs...)
}
