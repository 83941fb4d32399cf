// Package policy defines versioned, declarative policy packs (the
// detectors to run for a jurisdiction or domain plus the rules that
// judge their signals) and the registry the engine resolves pack ids
// against.
//
// Packs come from two sources: the built-in catalog compiled into the
// binary, and YAML pack files loaded from a directory (optionally
// hot-reloaded via the directory watcher). Both produce the same Pack
// value; the engine does not distinguish them.
package policy
