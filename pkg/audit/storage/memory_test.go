package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"veritas-hq/minerva/pkg/audit"
)

func testRecord(id, convID string, compliant bool, ts time.Time) *audit.Record {
	return &audit.Record{
		ID:             id,
		ConversationID: convID,
		Hash:           "deadbeef",
		Timestamp:      ts.UTC().Format(time.RFC3339),
		Compliant:      compliant,
		Score:          80,
		PackID:         "eu/mental-health/v1",
		PackVersion:    "1.0.0",
		Risks:          []audit.Risk{{Category: "TEST", Severity: "LOW", Message: "m"}},
	}
}

func seedMemory(t *testing.T, n int) (*MemoryStorage, time.Time) {
	t.Helper()
	m := NewMemoryStorage()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		rec := testRecord(fmt.Sprintf("rec-%02d", i), fmt.Sprintf("conv-%d", i%2), i%2 == 0, base.Add(time.Duration(i)*time.Minute))
		if err := m.Store(context.Background(), rec); err != nil {
			t.Fatalf("Store: %v", err)
		}
	}
	return m, base
}

func TestMemoryStorageStoreAndGet(t *testing.T) {
	m := NewMemoryStorage()
	ctx := context.Background()

	rec := testRecord("rec-1", "conv-1", true, time.Now())
	if err := m.Store(ctx, rec); err != nil {
		t.Fatalf("Store: %v", err)
	}

	got, err := m.Get(ctx, "rec-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ConversationID != "conv-1" || !got.Compliant {
		t.Errorf("unexpected record: %+v", got)
	}

	// Returned records are clones; mutating them must not corrupt the store.
	got.Score = 0
	got.Risks[0].Message = "tampered"
	again, err := m.Get(ctx, "rec-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if again.Score != 80 || again.Risks[0].Message != "m" {
		t.Error("stored record mutated through a returned clone")
	}
}

func TestMemoryStorageDuplicateID(t *testing.T) {
	m := NewMemoryStorage()
	ctx := context.Background()

	rec := testRecord("rec-1", "conv-1", true, time.Now())
	if err := m.Store(ctx, rec); err != nil {
		t.Fatalf("Store: %v", err)
	}
	err := m.Store(ctx, rec)
	if err == nil {
		t.Fatal("append-only store must reject a duplicate id")
	}
	var storageErr *audit.StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("expected *StorageError, got %T", err)
	}
}

func TestMemoryStorageGetNotFound(t *testing.T) {
	m := NewMemoryStorage()

	_, err := m.Get(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected not-found error")
	}
	var storageErr *audit.StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("expected *StorageError, got %T", err)
	}
	if storageErr.Operation != "not_found" {
		t.Errorf("operation = %q, want not_found", storageErr.Operation)
	}
}

func TestMemoryStorageQuery(t *testing.T) {
	m, base := seedMemory(t, 6)
	ctx := context.Background()

	t.Run("newest first", func(t *testing.T) {
		got, err := m.Query(ctx, &audit.Query{})
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(got) != 6 {
			t.Fatalf("got %d records, want 6", len(got))
		}
		if got[0].ID != "rec-05" || got[5].ID != "rec-00" {
			t.Errorf("records not newest first: %s ... %s", got[0].ID, got[5].ID)
		}
	})

	t.Run("conversation filter", func(t *testing.T) {
		got, err := m.Query(ctx, &audit.Query{ConversationID: "conv-1"})
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(got) != 3 {
			t.Errorf("got %d records, want 3", len(got))
		}
	})

	t.Run("compliance filter", func(t *testing.T) {
		compliant := true
		got, err := m.Query(ctx, &audit.Query{Compliant: &compliant})
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(got) != 3 {
			t.Errorf("got %d records, want 3", len(got))
		}
	})

	t.Run("time window", func(t *testing.T) {
		start := base.Add(2 * time.Minute)
		end := base.Add(4 * time.Minute)
		got, err := m.Query(ctx, &audit.Query{StartTime: &start, EndTime: &end})
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(got) != 3 {
			t.Errorf("got %d records, want 3 (inclusive bounds)", len(got))
		}
	})

	t.Run("offset and limit", func(t *testing.T) {
		got, err := m.Query(ctx, &audit.Query{Offset: 1, Limit: 2})
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(got) != 2 || got[0].ID != "rec-04" {
			t.Errorf("unexpected page: %+v", got)
		}

		past, err := m.Query(ctx, &audit.Query{Offset: 100})
		if err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(past) != 0 {
			t.Errorf("offset past the end should return nothing, got %d", len(past))
		}
	})
}

func TestMemoryStorageCountAndDelete(t *testing.T) {
	m, base := seedMemory(t, 6)
	ctx := context.Background()

	count, err := m.Count(ctx, &audit.Query{ConversationID: "conv-0"})
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}

	cutoff := base.Add(3 * time.Minute)
	deleted, err := m.Delete(ctx, &audit.Query{EndTime: &cutoff})
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if deleted != 4 {
		t.Errorf("deleted = %d, want 4", deleted)
	}

	remaining, err := m.Count(ctx, &audit.Query{})
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if remaining != 2 {
		t.Errorf("remaining = %d, want 2", remaining)
	}
}
