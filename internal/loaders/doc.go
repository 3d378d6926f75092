// Package loaders groups the built-in prefix-data loaders.
//
// Each subpackage implements driven.PrefixDataLoader for one metadata
// source: condameta reads the prefix's own store, pip and catalogdb adapt
// foreign ecosystems. Loaders are registered through the hook registry;
// the aggregator never imports them directly.
package loaders
