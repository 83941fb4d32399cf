package audit

import (
	"context"
	"time"
)

// Query contains filters for retrieving audit records. Nil pointer
// fields and empty strings mean "no filter".
type Query struct {
	// StartTime and EndTime bound the record timestamps (inclusive).
	StartTime *time.Time
	EndTime   *time.Time

	// ConversationID filters by conversation.
	ConversationID string

	// PackID filters by the policy pack that produced the verdict.
	PackID string

	// Compliant filters by verdict.
	Compliant *bool

	// Limit is the maximum number of records to return. 0 means the
	// backend default.
	Limit int

	// Offset skips the first N matching records.
	Offset int
}

// Storage is the persistence interface for audit records. Records are
// append-only; Delete exists only for retention enforcement.
type Storage interface {
	// Store persists an audit record.
	Store(ctx context.Context, record *Record) error

	// Get retrieves a single record by ID. Returns a StorageError with
	// operation "not_found" when the ID is unknown.
	Get(ctx context.Context, id string) (*Record, error)

	// Query retrieves records matching the filters, newest first.
	Query(ctx context.Context, query *Query) ([]*Record, error)

	// Count returns the number of records matching the filters.
	Count(ctx context.Context, query *Query) (int64, error)

	// Delete removes records matching the filters and returns the
	// number removed.
	Delete(ctx context.Context, query *Query) (int64, error)

	// Close releases resources held by the backend.
	Close() error
}
