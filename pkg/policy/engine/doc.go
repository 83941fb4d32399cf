// Package engine orchestrates one compliance evaluation: concurrent
// detector fan-out with per-detector failure isolation, declarative rule
// matching over the produced signals, per-rule violation deduplication,
// and score/verdict computation.
//
// The engine is a pure request/response function per evaluation; it never
// persists results and never returns a partial result on cancellation.
package engine
