// Package evidence aggregates recorded evaluations into human- and
// machine-readable documentation fragments, one per AI-Act article
// concern: Art. 12 record-keeping, Art. 9 risk management, and Art. 72
// post-market monitoring.
package evidence
