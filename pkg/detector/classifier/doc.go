// Package classifier adapts the external transcript-classification service
// into the detector contract. It is the only detector with I/O and retry
// concerns, and it fails closed: an unreachable service yields a
// high-severity system_error signal rather than silence.
package classifier
