package records

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Query filters record listings.
type Query struct {
	// StartTime and EndTime bound the record timestamps (inclusive).
	StartTime *time.Time
	EndTime   *time.Time

	// PackID filters evaluation records by pack.
	PackID string

	// ConversationID filters by conversation.
	ConversationID string

	// Limit caps the number of returned records; zero means no cap.
	Limit int
}

// Store is the append-only persistence interface for evaluation and
// conversation records. Records are never updated; deletion removes whole
// records only (GDPR erasure).
type Store interface {
	// PutEvaluation appends an evaluation record.
	PutEvaluation(ctx context.Context, rec *EvaluationRecord) error

	// PutConversation appends a conversation record.
	PutConversation(ctx context.Context, rec *ConversationRecord) error

	// ListEvaluations returns evaluation records matching the query,
	// ordered by timestamp ascending.
	ListEvaluations(ctx context.Context, q *Query) ([]*EvaluationRecord, error)

	// ListConversations returns conversation records matching the query,
	// ordered by timestamp ascending.
	ListConversations(ctx context.Context, q *Query) ([]*ConversationRecord, error)

	// DeleteConversation removes all records linked to a conversation id
	// and returns the number removed.
	DeleteConversation(ctx context.Context, conversationID string) (int64, error)

	// Close releases store resources.
	Close() error
}

// MemoryStore is an in-memory Store for tests and ephemeral deployments.
type MemoryStore struct {
	mu            sync.RWMutex
	evaluations   []*EvaluationRecord
	conversations []*ConversationRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// PutEvaluation appends an evaluation record.
func (s *MemoryStore) PutEvaluation(ctx context.Context, rec *EvaluationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *rec
	s.evaluations = append(s.evaluations, &clone)
	return nil
}

// PutConversation appends a conversation record.
func (s *MemoryStore) PutConversation(ctx context.Context, rec *ConversationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *rec
	s.conversations = append(s.conversations, &clone)
	return nil
}

// ListEvaluations returns matching evaluation records sorted by timestamp.
func (s *MemoryStore) ListEvaluations(ctx context.Context, q *Query) ([]*EvaluationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*EvaluationRecord
	for _, rec := range s.evaluations {
		if !matchesEvaluation(rec, q) {
			continue
		}
		clone := *rec
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return applyLimitEval(out, q), nil
}

// ListConversations returns matching conversation records sorted by
// timestamp.
func (s *MemoryStore) ListConversations(ctx context.Context, q *Query) ([]*ConversationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*ConversationRecord
	for _, rec := range s.conversations {
		if !matchesConversation(rec, q) {
			continue
		}
		clone := *rec
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return applyLimitConv(out, q), nil
}

// DeleteConversation removes all records for a conversation id.
func (s *MemoryStore) DeleteConversation(ctx context.Context, conversationID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64

	kept := s.evaluations[:0]
	for _, rec := range s.evaluations {
		if rec.ConversationID == conversationID {
			deleted++
			continue
		}
		kept = append(kept, rec)
	}
	s.evaluations = kept

	keptConv := s.conversations[:0]
	for _, rec := range s.conversations {
		if rec.ConversationID == conversationID {
			deleted++
			continue
		}
		keptConv = append(keptConv, rec)
	}
	s.conversations = keptConv

	return deleted, nil
}

// Close clears the store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evaluations = nil
	s.conversations = nil
	return nil
}

func matchesEvaluation(rec *EvaluationRecord, q *Query) bool {
	if q == nil {
		return true
	}
	if q.StartTime != nil && rec.Timestamp.Before(*q.StartTime) {
		return false
	}
	if q.EndTime != nil && rec.Timestamp.After(*q.EndTime) {
		return false
	}
	if q.PackID != "" && rec.PackID != q.PackID {
		return false
	}
	if q.ConversationID != "" && rec.ConversationID != q.ConversationID {
		return false
	}
	return true
}

func matchesConversation(rec *ConversationRecord, q *Query) bool {
	if q == nil {
		return true
	}
	if q.StartTime != nil && rec.Timestamp.Before(*q.StartTime) {
		return false
	}
	if q.EndTime != nil && rec.Timestamp.After(*q.EndTime) {
		return false
	}
	if q.ConversationID != "" && rec.ConversationID != q.ConversationID {
		return false
	}
	return true
}

func applyLimitEval(recs []*EvaluationRecord, q *Query) []*EvaluationRecord {
	if q == nil || q.Limit <= 0 || len(recs) <= q.Limit {
		return recs
	}
	return recs[:q.Limit]
}

func applyLimitConv(recs []*ConversationRecord, q *Query) []*ConversationRecord {
	if q == nil || q.Limit <= 0 || len(recs) <= q.Limit {
		return recs
	}
	return recs[:q.Limit]
}
