package audit

import (
	"encoding/json"
	"testing"
	"time"

	"veritas-hq/minerva/pkg/policy/engine"
	"veritas-hq/minerva/pkg/signal"
)

func testEvaluation() *engine.Evaluation {
	return &engine.Evaluation{
		Compliant:   false,
		Score:       45,
		AuditID:     "audit-123",
		PackID:      "eu/mental-health/v1",
		PackVersion: "1.0.0",
		Violations: []engine.Violation{{
			RuleID:      "mh-001",
			Category:    "SUICIDE_SELF_HARM",
			Severity:    signal.SeverityHigh,
			Message:     "crisis language detected",
			ScoreImpact: -40,
		}},
		ProcessingTime: 42 * time.Millisecond,
	}
}

func TestNewRecord(t *testing.T) {
	record := NewRecord("conv-1", testEvaluation())

	if record.ID != "audit-123" {
		t.Errorf("record id = %q, want the evaluation audit id", record.ID)
	}
	if record.ConversationID != "conv-1" {
		t.Errorf("conversation id = %q", record.ConversationID)
	}
	if record.Compliant || record.Score != 45 {
		t.Errorf("verdict not carried over: compliant=%t score=%d", record.Compliant, record.Score)
	}
	if len(record.Risks) != 1 || record.Risks[0].Category != "SUICIDE_SELF_HARM" {
		t.Errorf("unexpected risks: %+v", record.Risks)
	}
	if record.ProcessingTimeMs != 42 {
		t.Errorf("processing time = %d ms, want 42", record.ProcessingTimeMs)
	}
	if _, err := time.Parse(time.RFC3339, record.Timestamp); err != nil {
		t.Errorf("timestamp %q is not RFC 3339: %v", record.Timestamp, err)
	}
	if record.Hash == "" {
		t.Fatal("record must be sealed at creation")
	}
	if !record.Verify() {
		t.Error("fresh record must verify")
	}
}

func TestVerifyDetectsTampering(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Record)
	}{
		{"verdict flipped", func(r *Record) { r.Compliant = true }},
		{"score raised", func(r *Record) { r.Score = 100 }},
		{"risk removed", func(r *Record) { r.Risks = nil }},
		{"conversation swapped", func(r *Record) { r.ConversationID = "other" }},
		{"timestamp shifted", func(r *Record) { r.Timestamp = "2020-01-01T00:00:00Z" }},
		{"hash cleared", func(r *Record) { r.Hash = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := NewRecord("conv-1", testEvaluation())
			tt.mutate(record)
			if record.Verify() {
				t.Error("tampered record must not verify")
			}
		})
	}
}

func TestVerifySurvivesJSONRoundTrip(t *testing.T) {
	eval := testEvaluation()
	eval.Violations = nil // no risks: the canonical form must still be stable
	record := NewRecord("conv-1", eval)

	data, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded Record
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !decoded.Verify() {
		t.Error("record must verify after a JSON round trip")
	}
}

func TestVerifyIgnoresNonCanonicalFields(t *testing.T) {
	// Pack provenance and timing are stored but not hashed; the hash
	// binds identity and verdict only.
	record := NewRecord("conv-1", testEvaluation())
	record.PackVersion = "9.9.9"
	record.ProcessingTimeMs = 0
	if !record.Verify() {
		t.Error("non-canonical field changes must not break verification")
	}
}
