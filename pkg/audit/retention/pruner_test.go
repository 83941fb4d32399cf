package retention

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"veritas-hq/minerva/pkg/audit"
	"veritas-hq/minerva/pkg/audit/storage"
)

func seedStorage(t *testing.T, oldCount, recentCount int) *storage.MemoryStorage {
	t.Helper()
	m := storage.NewMemoryStorage()
	ctx := context.Background()

	old := time.Now().AddDate(0, 0, -400)
	for i := 0; i < oldCount; i++ {
		rec := &audit.Record{
			ID:             fmt.Sprintf("old-%d", i),
			ConversationID: "conv-old",
			Hash:           "h",
			Timestamp:      old.Add(time.Duration(i) * time.Hour).UTC().Format(time.RFC3339),
			Score:          50,
		}
		if err := m.Store(ctx, rec); err != nil {
			t.Fatalf("Store: %v", err)
		}
	}
	for i := 0; i < recentCount; i++ {
		rec := &audit.Record{
			ID:             fmt.Sprintf("recent-%d", i),
			ConversationID: "conv-recent",
			Hash:           "h",
			Timestamp:      time.Now().Add(-time.Duration(i) * time.Hour).UTC().Format(time.RFC3339),
			Score:          90,
		}
		if err := m.Store(ctx, rec); err != nil {
			t.Fatalf("Store: %v", err)
		}
	}
	return m
}

func TestPruneDeletesExpiredRecords(t *testing.T) {
	m := seedStorage(t, 3, 2)
	pruner := NewPruner(m, &Config{
		RetentionDays:       365,
		PruneSchedule:       "0 3 * * *",
		ArchiveBeforeDelete: false,
	})

	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if deleted != 3 {
		t.Errorf("deleted = %d, want 3", deleted)
	}

	remaining, err := m.Count(context.Background(), &audit.Query{})
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if remaining != 2 {
		t.Errorf("remaining = %d, want 2 recent records", remaining)
	}
}

func TestPruneDisabledRetention(t *testing.T) {
	m := seedStorage(t, 3, 0)
	pruner := NewPruner(m, &Config{RetentionDays: 0})

	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if deleted != 0 {
		t.Errorf("deleted = %d, want 0 when retention is disabled", deleted)
	}
}

func TestPruneArchivesBeforeDelete(t *testing.T) {
	m := seedStorage(t, 2, 1)
	archiveDir := t.TempDir()
	pruner := NewPruner(m, &Config{
		RetentionDays:       365,
		PruneSchedule:       "0 3 * * *",
		ArchiveBeforeDelete: true,
		ArchivePath:         archiveDir,
	})

	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}

	entries, err := os.ReadDir(archiveDir)
	if err != nil {
		t.Fatalf("read archive dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 archive file, got %d", len(entries))
	}

	data, err := os.ReadFile(filepath.Join(archiveDir, entries[0].Name()))
	if err != nil {
		t.Fatalf("read archive: %v", err)
	}
	var archived []*audit.Record
	if err := json.Unmarshal(data, &archived); err != nil {
		t.Fatalf("archive is not a JSON record list: %v", err)
	}
	if len(archived) != 2 {
		t.Errorf("archived %d records, want 2", len(archived))
	}
}

func TestSchedulerValidatesCronExpression(t *testing.T) {
	m := storage.NewMemoryStorage()
	pruner := NewPruner(m, &Config{
		RetentionDays: 30,
		PruneSchedule: "not a cron expression",
	})

	if err := pruner.Start(context.Background()); err == nil {
		pruner.Stop()
		t.Fatal("expected error for invalid schedule")
	}
}

func TestSchedulerStartStop(t *testing.T) {
	m := storage.NewMemoryStorage()
	pruner := NewPruner(m, &Config{
		RetentionDays: 30,
		PruneSchedule: "0 3 * * *",
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := pruner.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	next := pruner.NextPruning()
	if next == nil || !next.After(time.Now()) {
		t.Errorf("NextPruning = %v, want a future time", next)
	}
	pruner.Stop()
}
