package driving

import (
	"context"

	"github.com/cxpkg/cx/internal/core/domain"
)

// PrefixStateService produces and caches the unified record set for an
// environment prefix.
type PrefixStateService interface {
	// GetState returns the merged installed-package view for the prefix.
	// Cached results are returned while the handle's staleness token is
	// unchanged. With interopEnabled, foreign-ecosystem loaders contribute
	// records alongside the native store.
	GetState(ctx context.Context, handle domain.PrefixHandle, interopEnabled bool) (*domain.PrefixState, error)

	// Invalidate forces the next GetState for the prefix to recompute,
	// regardless of the staleness token. Collaborators that mutate an
	// environment (install/remove/update) call this.
	Invalidate(handle domain.PrefixHandle)
}
