// Package classic is the built-in solver backend. It applies an explicit
// change set against the current record set under constraint validation.
// It performs no dependency resolution; richer strategies register as
// alternate solver hooks.
package classic

import (
	"context"
	"fmt"
	"sort"

	"github.com/cxpkg/cx/internal/core/domain"
	"github.com/cxpkg/cx/internal/core/ports/driven"
)

// BackendName is the hook name of the built-in solver.
const BackendName = "classic"

// Ensure Solver implements the backend interface.
var _ driven.SolverBackend = (*Solver)(nil)

// Solver applies change sets literally.
type Solver struct{}

// New creates the classic solver.
func New() *Solver {
	return &Solver{}
}

// Solve applies the changes in order and validates the result against the
// constraints. Installing an already-present package, updating or removing
// an absent one, and breaking a pinned constraint are all errors; the
// current record set is never partially applied.
func (s *Solver) Solve(ctx context.Context, current []domain.Record, changes domain.ChangeSet, constraints []domain.MatchSpec) ([]domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	target := make(map[string]domain.Record, len(current))
	for _, r := range current {
		target[r.Name] = r
	}

	for _, change := range changes.Changes {
		name := domain.NormalizeName(change.Record.Name)
		switch change.Op {
		case domain.OpInstall:
			if existing, ok := target[name]; ok {
				return nil, &domain.SolverError{Backend: BackendName, Err: fmt.Errorf(
					"%w: %s is already installed (%s)", domain.ErrInvalidChange, name, existing.Spec())}
			}
			target[name] = change.Record
		case domain.OpRemove:
			if _, ok := target[name]; !ok {
				return nil, &domain.SolverError{Backend: BackendName, Err: fmt.Errorf(
					"%w: %s is not installed", domain.ErrInvalidChange, name)}
			}
			delete(target, name)
		case domain.OpUpdate:
			if _, ok := target[name]; !ok {
				return nil, &domain.SolverError{Backend: BackendName, Err: fmt.Errorf(
					"%w: %s is not installed", domain.ErrInvalidChange, name)}
			}
			target[name] = change.Record
		default:
			return nil, &domain.SolverError{Backend: BackendName, Err: fmt.Errorf(
				"%w: unknown operation %q", domain.ErrInvalidChange, change.Op)}
		}
	}

	for _, constraint := range constraints {
		name := domain.NormalizeName(constraint.Name)
		record, ok := target[name]
		if !ok {
			continue
		}
		if !constraint.Matches(record) {
			return nil, &domain.SolverError{Backend: BackendName, Err: fmt.Errorf(
				"%w: %s pinned to %s, target has %s", domain.ErrConstraintViolated, name, constraint, record.Spec())}
		}
	}

	result := make([]domain.Record, 0, len(target))
	for _, r := range target {
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}
