// Package audit produces tamper-evident records of completed
// evaluations. Each record is sealed with a SHA-256 hash over its
// canonical form at creation time; storage is append-only and the hash
// is never recomputed in place, so any later mutation is detectable
// with Verify.
package audit
