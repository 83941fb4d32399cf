// Package conversation defines the transcript data model submitted for
// compliance evaluation: an ordered sequence of role-tagged messages plus
// opaque metadata, immutable once constructed for a given evaluation.
package conversation
