package records

import (
	"context"
	"path/filepath"
	"testing"

	"veritas-hq/minerva/pkg/obligation"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "records.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	evalRec := NewEvaluationRecord("conv-1", testEvaluation("audit-1", "eu/mental-health/v1"),
		obligation.RiskHigh, nil)
	if err := store.PutEvaluation(ctx, evalRec); err != nil {
		t.Fatalf("PutEvaluation: %v", err)
	}

	convRec := NewConversationRecord("conv-1", obligation.RiskHigh,
		[]string{"escalated"}, nil, []string{obligation.ArticleHumanOversight})
	if err := store.PutConversation(ctx, convRec); err != nil {
		t.Fatalf("PutConversation: %v", err)
	}

	evals, err := store.ListEvaluations(ctx, &Query{ConversationID: "conv-1"})
	if err != nil {
		t.Fatalf("ListEvaluations: %v", err)
	}
	if len(evals) != 1 || evals[0].ID != "audit-1" {
		t.Fatalf("unexpected evaluations: %+v", evals)
	}
	if !VerifyEvaluationRecord(evals[0]) {
		t.Error("stored evaluation record must verify after round-trip")
	}

	convs, err := store.ListConversations(ctx, &Query{ConversationID: "conv-1"})
	if err != nil {
		t.Fatalf("ListConversations: %v", err)
	}
	if len(convs) != 1 || convs[0].ID != convRec.ID {
		t.Fatalf("unexpected conversations: %+v", convs)
	}
	if !VerifyConversationRecord(convs[0]) {
		t.Error("stored conversation record must verify after round-trip")
	}
}

func TestSQLiteStoreFilters(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	ids := []string{"audit-a", "audit-b", "audit-c"}
	for i, packID := range []string{"eu/mental-health/v1", "eu/mental-health/v1", "test/other/v1"} {
		rec := NewEvaluationRecord("conv-filter", testEvaluation(ids[i], packID),
			obligation.RiskHigh, nil)
		if err := store.PutEvaluation(ctx, rec); err != nil {
			t.Fatalf("PutEvaluation: %v", err)
		}
	}

	evals, err := store.ListEvaluations(ctx, &Query{PackID: "eu/mental-health/v1"})
	if err != nil {
		t.Fatalf("ListEvaluations: %v", err)
	}
	if len(evals) != 2 {
		t.Errorf("pack filter returned %d records, want 2", len(evals))
	}

	evals, err = store.ListEvaluations(ctx, &Query{Limit: 1})
	if err != nil {
		t.Fatalf("ListEvaluations: %v", err)
	}
	if len(evals) != 1 {
		t.Errorf("limit returned %d records, want 1", len(evals))
	}
}

func TestSQLiteStoreDeleteConversation(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	rec := NewEvaluationRecord("conv-gone", testEvaluation("audit-del", "eu/mental-health/v1"),
		obligation.RiskHigh, nil)
	if err := store.PutEvaluation(ctx, rec); err != nil {
		t.Fatalf("PutEvaluation: %v", err)
	}
	convRec := NewConversationRecord("conv-gone", obligation.RiskHigh, nil, nil, nil)
	if err := store.PutConversation(ctx, convRec); err != nil {
		t.Fatalf("PutConversation: %v", err)
	}

	deleted, err := store.DeleteConversation(ctx, "conv-gone")
	if err != nil {
		t.Fatalf("DeleteConversation: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted %d records, want 2", deleted)
	}

	evals, err := store.ListEvaluations(ctx, &Query{ConversationID: "conv-gone"})
	if err != nil {
		t.Fatalf("ListEvaluations: %v", err)
	}
	if len(evals) != 0 {
		t.Errorf("expected no evaluation records after erasure, got %d", len(evals))
	}
}
