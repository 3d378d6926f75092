package driven

import (
	"context"

	"github.com/cxpkg/cx/internal/core/domain"
)

// PrefixDataLoader produces records from one metadata source for one
// environment prefix. Implementations exist for the native store
// (conda-meta) and for foreign ecosystems (pip site-packages, SQLite
// catalogs, ...).
//
// Load must be a pure function of the environment's on-disk state at call
// time. Loaders never cache; caching is the aggregator's responsibility.
// Loaders require nothing beyond read access to the environment root and
// the metadata stores they define.
//
// A loader that cannot read its source fails with a *domain.LoaderError
// carrying the source identity. The aggregator decides whether that is
// fatal (native source) or a graceful degradation (foreign source).
type PrefixDataLoader interface {
	Load(ctx context.Context, prefix domain.PrefixHandle) ([]domain.Record, error)
}
