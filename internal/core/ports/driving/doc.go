// Package driving defines the interfaces that the outside world uses to
// drive the core.
//
// These are the "driving" or "primary" ports in hexagonal architecture.
// CLI commands and other entry points depend on these interfaces; core
// services implement them.
//
//   - PrefixStateService: Unified installed-package state per environment
//   - Plugin: A bundle of hook implementations contributed to the registry
//
// # Import Rules
//
//   - Can Import: domain and ports/driven packages only
//   - Cannot Import: Any adapter, loader or service package
package driving
