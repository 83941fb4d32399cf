package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"veritas-hq/minerva/pkg/audit"
)

// MemoryStorage implements the audit.Storage interface in memory.
// Intended for tests and development; records do not survive restarts.
type MemoryStorage struct {
	mu      sync.RWMutex
	records map[string]*audit.Record
}

// NewMemoryStorage creates an empty in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records: make(map[string]*audit.Record),
	}
}

// Store persists an audit record in memory.
func (m *MemoryStorage) Store(ctx context.Context, record *audit.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.records[record.ID]; exists {
		return audit.NewStorageError("memory", "store", fmt.Errorf("duplicate record %q", record.ID))
	}

	clone := *record
	clone.Risks = append([]audit.Risk(nil), record.Risks...)
	m.records[record.ID] = &clone

	return nil
}

// Get retrieves a single audit record by ID.
func (m *MemoryStorage) Get(ctx context.Context, id string) (*audit.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.records[id]
	if !ok {
		return nil, audit.NewStorageError("memory", "not_found", fmt.Errorf("audit record %q", id))
	}

	clone := *record
	clone.Risks = append([]audit.Risk(nil), record.Risks...)
	return &clone, nil
}

// Query retrieves audit records matching the query filters, newest first.
func (m *MemoryStorage) Query(ctx context.Context, query *audit.Query) ([]*audit.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := []*audit.Record{}
	for _, record := range m.records {
		if !matches(record, query) {
			continue
		}
		clone := *record
		clone.Risks = append([]audit.Risk(nil), record.Risks...)
		matched = append(matched, &clone)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Timestamp > matched[j].Timestamp
	})

	if query.Offset > 0 {
		if query.Offset >= len(matched) {
			return []*audit.Record{}, nil
		}
		matched = matched[query.Offset:]
	}

	limit := 100
	if query.Limit > 0 {
		limit = query.Limit
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}

	return matched, nil
}

// Count returns the number of audit records matching the query filters.
func (m *MemoryStorage) Count(ctx context.Context, query *audit.Query) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var count int64
	for _, record := range m.records {
		if matches(record, query) {
			count++
		}
	}

	return count, nil
}

// Delete removes audit records matching the query filters.
// Returns the number of records deleted.
func (m *MemoryStorage) Delete(ctx context.Context, query *audit.Query) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for id, record := range m.records {
		if matches(record, query) {
			delete(m.records, id)
			deleted++
		}
	}

	return deleted, nil
}

// Close releases resources held by the storage backend.
func (m *MemoryStorage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = make(map[string]*audit.Record)
	return nil
}

// matches reports whether a record passes all query filters.
func matches(record *audit.Record, query *audit.Query) bool {
	if query == nil {
		return true
	}

	if query.StartTime != nil || query.EndTime != nil {
		ts, err := time.Parse(time.RFC3339, record.Timestamp)
		if err != nil {
			return false
		}
		if query.StartTime != nil && ts.Before(*query.StartTime) {
			return false
		}
		if query.EndTime != nil && ts.After(*query.EndTime) {
			return false
		}
	}

	if query.ConversationID != "" && record.ConversationID != query.ConversationID {
		return false
	}
	if query.PackID != "" && record.PackID != query.PackID {
		return false
	}
	if query.Compliant != nil && record.Compliant != *query.Compliant {
		return false
	}

	return true
}
