// Package records defines the append-only evaluation and conversation
// records consumed by the evidence builder, each carrying a SHA-256
// integrity hash computed once at creation. Stores are append-only;
// deletion removes whole records (GDPR erasure), never parts of them.
package records
