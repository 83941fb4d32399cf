// Package metrics provides Prometheus instrumentation for the policy
// engine: evaluation counts and latency, violation counts, detector
// failure isolation events, and classifier fail-safe activations.
package metrics
