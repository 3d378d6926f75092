// Package driven defines the interfaces that core calls OUT to
// infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - PrefixDataLoader: Produces installed-package records from one
//     metadata source for one environment prefix
//   - SolverBackend: Computes a target record set from the current records
//     plus a requested change set
//   - ReporterBackend: Opens ReporterSink instances bound to a destination
//   - ReporterSink: Consumes structured progress/result events
//   - EventSink: Narrow event consumer used by core services
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or loader package
package driven
