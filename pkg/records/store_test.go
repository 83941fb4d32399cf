package records

import (
	"context"
	"testing"
	"time"

	"veritas-hq/minerva/pkg/obligation"
	"veritas-hq/minerva/pkg/policy/engine"
	"veritas-hq/minerva/pkg/signal"
)

func testEvaluation(auditID, packID string) *engine.Evaluation {
	return &engine.Evaluation{
		Compliant:   false,
		Score:       45,
		AuditID:     auditID,
		PackID:      packID,
		PackVersion: "1.0.0",
		Violations: []engine.Violation{{
			RuleID:      "mh-001",
			Category:    "SUICIDE_SELF_HARM",
			Severity:    signal.SeverityHigh,
			Message:     "crisis language detected",
			ScoreImpact: -40,
		}},
		Signals: []signal.Signal{{
			Type:       signal.TypeSuicideRisk,
			Source:     signal.SourceRegex,
			Confidence: 0.95,
		}},
	}
}

func TestNewEvaluationRecordHash(t *testing.T) {
	rec := NewEvaluationRecord("conv-1", testEvaluation("audit-1", "eu/mental-health/v1"),
		obligation.RiskHigh, nil)

	if rec.ID != "audit-1" || rec.ConversationID != "conv-1" {
		t.Errorf("unexpected identity fields: %+v", rec)
	}
	if rec.Hash == "" {
		t.Fatal("hash must be sealed at creation")
	}
	if !VerifyEvaluationRecord(rec) {
		t.Error("freshly created record must verify")
	}
}

func TestVerifyEvaluationRecordDetectsTampering(t *testing.T) {
	rec := NewEvaluationRecord("conv-1", testEvaluation("audit-1", "eu/mental-health/v1"),
		obligation.RiskHigh, nil)

	tampered := *rec
	tampered.Compliant = true
	tampered.Score = 100
	if VerifyEvaluationRecord(&tampered) {
		t.Error("verdict tampering must fail verification")
	}

	noHash := *rec
	noHash.Hash = ""
	if VerifyEvaluationRecord(&noHash) {
		t.Error("a record without a hash must not verify")
	}
}

func TestConversationRecordHash(t *testing.T) {
	rec := NewConversationRecord("conv-2", obligation.RiskHigh,
		[]string{"escalated"}, nil, []string{obligation.ArticleHumanOversight})

	if rec.ID == "" {
		t.Error("expected a generated record id")
	}
	if !VerifyConversationRecord(rec) {
		t.Error("freshly created record must verify")
	}

	tampered := *rec
	tampered.Gaps = nil
	if VerifyConversationRecord(&tampered) {
		t.Error("gap tampering must fail verification")
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	recA := NewEvaluationRecord("conv-a", testEvaluation("audit-a", "eu/mental-health/v1"), obligation.RiskHigh, nil)
	recB := NewEvaluationRecord("conv-b", testEvaluation("audit-b", "other/pack/v1"), obligation.RiskHigh, nil)
	for _, rec := range []*EvaluationRecord{recA, recB} {
		if err := store.PutEvaluation(ctx, rec); err != nil {
			t.Fatalf("PutEvaluation: %v", err)
		}
	}

	all, err := store.ListEvaluations(ctx, nil)
	if err != nil {
		t.Fatalf("ListEvaluations: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d records, want 2", len(all))
	}

	byPack, err := store.ListEvaluations(ctx, &Query{PackID: "other/pack/v1"})
	if err != nil {
		t.Fatalf("ListEvaluations: %v", err)
	}
	if len(byPack) != 1 || byPack[0].ID != "audit-b" {
		t.Errorf("pack filter returned %+v", byPack)
	}

	byConv, err := store.ListEvaluations(ctx, &Query{ConversationID: "conv-a"})
	if err != nil {
		t.Fatalf("ListEvaluations: %v", err)
	}
	if len(byConv) != 1 || byConv[0].ID != "audit-a" {
		t.Errorf("conversation filter returned %+v", byConv)
	}
}

func TestMemoryStoreTimeAndLimit(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		rec := NewEvaluationRecord("conv-t", testEvaluation("audit-"+string(rune('a'+i)), "p/v1"), obligation.RiskHigh, nil)
		rec.Timestamp = base.Add(time.Duration(i) * time.Hour)
		if err := store.PutEvaluation(ctx, rec); err != nil {
			t.Fatalf("PutEvaluation: %v", err)
		}
	}

	start := base.Add(30 * time.Minute)
	got, err := store.ListEvaluations(ctx, &Query{StartTime: &start})
	if err != nil {
		t.Fatalf("ListEvaluations: %v", err)
	}
	if len(got) != 2 || got[0].ID != "audit-b" {
		t.Errorf("time filter returned %d records, first %v", len(got), got)
	}

	limited, err := store.ListEvaluations(ctx, &Query{Limit: 1})
	if err != nil {
		t.Fatalf("ListEvaluations: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != "audit-a" {
		t.Errorf("limit should keep the oldest records, got %+v", limited)
	}
}

func TestMemoryStoreCloneSemantics(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	rec := NewEvaluationRecord("conv-c", testEvaluation("audit-c", "p/v1"), obligation.RiskHigh, nil)
	if err := store.PutEvaluation(ctx, rec); err != nil {
		t.Fatalf("PutEvaluation: %v", err)
	}

	// Mutating the caller's record after Put must not affect the store.
	rec.Score = 100

	got, err := store.ListEvaluations(ctx, nil)
	if err != nil {
		t.Fatalf("ListEvaluations: %v", err)
	}
	if got[0].Score != 45 {
		t.Errorf("stored record mutated through caller reference, score = %d", got[0].Score)
	}
}

func TestMemoryStoreDeleteConversation(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	ctx := context.Background()

	if err := store.PutEvaluation(ctx, NewEvaluationRecord("conv-del", testEvaluation("audit-1", "p/v1"), obligation.RiskHigh, nil)); err != nil {
		t.Fatal(err)
	}
	if err := store.PutEvaluation(ctx, NewEvaluationRecord("conv-keep", testEvaluation("audit-2", "p/v1"), obligation.RiskHigh, nil)); err != nil {
		t.Fatal(err)
	}
	if err := store.PutConversation(ctx, NewConversationRecord("conv-del", obligation.RiskHigh, nil, nil, nil)); err != nil {
		t.Fatal(err)
	}

	deleted, err := store.DeleteConversation(ctx, "conv-del")
	if err != nil {
		t.Fatalf("DeleteConversation: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}

	remaining, err := store.ListEvaluations(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 1 || remaining[0].ConversationID != "conv-keep" {
		t.Errorf("unexpected remaining records: %+v", remaining)
	}
	convs, err := store.ListConversations(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(convs) != 0 {
		t.Errorf("conversation records should be gone, got %d", len(convs))
	}
}
