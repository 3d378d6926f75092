package services

import (
	"github.com/cxpkg/cx/internal/core/ports/driven"
)

// Selector resolves user- or config-supplied backend names to concrete
// implementations through the hook registry. Selection is deterministic:
// a supplied name resolves to exactly that implementation or fails; an
// empty name selects the first-registered default. There is no hidden
// fallback.
type Selector struct {
	registry *HookRegistry
}

// NewSelector creates a selector over the given registry.
func NewSelector(registry *HookRegistry) *Selector {
	return &Selector{registry: registry}
}

// Solver resolves the solver backend for the given name.
func (s *Selector) Solver(name string) (driven.SolverBackend, error) {
	entry, err := s.registry.Solver(name)
	if err != nil {
		return nil, err
	}
	return entry.Backend, nil
}

// Reporter resolves the reporter backend for the given name.
func (s *Selector) Reporter(name string) (driven.ReporterBackend, error) {
	entry, err := s.registry.Reporter(name)
	if err != nil {
		return nil, err
	}
	return entry.Backend, nil
}
