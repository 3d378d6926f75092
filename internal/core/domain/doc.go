// Package domain defines the core business entities for cx.
//
// This package is part of the hexagonal architecture's innermost layer.
// It defines the fundamental types:
//
//   - Record: An immutable description of one installed package
//   - PrefixState: The merged, de-duplicated record set for one prefix
//   - PrefixHandle: An environment root plus its staleness token
//   - ChangeSet: A requested set of package changes for a solver backend
//   - Event: A structured progress/result event for reporter sinks
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. All other packages depend on
// domain, never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library, github.com/google/uuid
//   - Cannot Import: Any internal/ package
package domain
