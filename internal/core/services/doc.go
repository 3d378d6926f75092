// Package services implements the core application logic for cx.
//
// Services orchestrate domain entities and driven ports:
//
//   - HookRegistry: Catalog of extension points (loaders, solvers,
//     reporter backends), populated once at startup from built-ins plus
//     externally supplied plugins
//   - PrefixStateService: Builds and caches the unified installed-package
//     view per environment prefix
//   - Selector: Deterministic backend selection by name with a
//     first-registered default
//   - ReporterDispatcher: Fans structured events out to the configured
//     reporter sinks
//
// # Import Rules
//
//   - Can Import: domain, ports, loaders, adapters (for built-ins), logger
//   - Cannot Import: cli packages
package services
