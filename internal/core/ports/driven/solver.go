package driven

import (
	"context"

	"github.com/cxpkg/cx/internal/core/domain"
)

// SolverBackend computes a target record set from the current records of
// an environment plus a requested change set. Backends are registered
// under the "solver" hook kind and selected by name; the dependency
// resolution strategy is entirely backend-defined.
//
// Errors are returned as *domain.SolverError and propagate to the caller
// unchanged; the registry and aggregator never interpret them.
type SolverBackend interface {
	Solve(ctx context.Context, current []domain.Record, changes domain.ChangeSet, constraints []domain.MatchSpec) ([]domain.Record, error)
}
