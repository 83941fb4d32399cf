package records

import (
	"time"

	"github.com/google/uuid"

	"veritas-hq/minerva/pkg/obligation"
	"veritas-hq/minerva/pkg/policy/engine"
	"veritas-hq/minerva/pkg/signal"
)

// EvaluationRecord is the append-only record of one engine evaluation,
// linking a conversation to its verdict, signals, and triggered
// obligations. The integrity hash is computed over the immutable fields
// at creation time and never recomputed in place; records are superseded
// by new records, never updated.
type EvaluationRecord struct {
	// ID is the record id (the evaluation's audit id).
	ID string `json:"id"`

	// ConversationID links the record to the evaluated conversation.
	ConversationID string `json:"conversationId"`

	// PackID and PackVersion identify the pack the evaluation ran under.
	PackID      string `json:"packId"`
	PackVersion string `json:"packVersion,omitempty"`

	// Timestamp is when the record was created.
	Timestamp time.Time `json:"timestamp"`

	// Verdict fields copied from the evaluation.
	Compliant  bool               `json:"compliant"`
	Score      int                `json:"score"`
	Violations []engine.Violation `json:"violations"`
	Signals    []signal.Signal    `json:"signals"`

	// RiskClass and Obligations capture the regulatory derivation.
	RiskClass   obligation.RiskClass    `json:"riskClass,omitempty"`
	Obligations []obligation.Obligation `json:"obligations,omitempty"`

	// Hash is the SHA-256 integrity hash over the fields above.
	Hash string `json:"hash"`
}

// ConversationRecord is the append-only record of one conversation's risk
// classification, decisions, and identified compliance gaps.
type ConversationRecord struct {
	// ID is the record id.
	ID string `json:"id"`

	// ConversationID links the record to the conversation.
	ConversationID string `json:"conversationId"`

	// Timestamp is when the record was created.
	Timestamp time.Time `json:"timestamp"`

	// RiskClass is the AI-Act risk classification applied.
	RiskClass obligation.RiskClass `json:"riskClass"`

	// Decisions lists the compliance decisions taken for the
	// conversation (e.g., "blocked", "logged", "escalated").
	Decisions []string `json:"decisions,omitempty"`

	// Signals are the signals detected over the conversation.
	Signals []signal.Signal `json:"signals,omitempty"`

	// Gaps lists identified compliance gaps by article id.
	Gaps []string `json:"gaps,omitempty"`

	// Hash is the SHA-256 integrity hash over the fields above.
	Hash string `json:"hash"`
}

// NewEvaluationRecord builds and hashes the record for one evaluation and
// its obligation derivation.
func NewEvaluationRecord(conversationID string, eval *engine.Evaluation, riskClass obligation.RiskClass, obligations []obligation.Obligation) *EvaluationRecord {
	rec := &EvaluationRecord{
		ID:             eval.AuditID,
		ConversationID: conversationID,
		PackID:         eval.PackID,
		PackVersion:    eval.PackVersion,
		Timestamp:      time.Now().UTC(),
		Compliant:      eval.Compliant,
		Score:          eval.Score,
		Violations:     eval.Violations,
		Signals:        eval.Signals,
		RiskClass:      riskClass,
		Obligations:    obligations,
	}
	rec.Hash = hashEvaluationRecord(rec)
	return rec
}

// NewConversationRecord builds and hashes a conversation record.
func NewConversationRecord(conversationID string, riskClass obligation.RiskClass, decisions []string, signals []signal.Signal, gaps []string) *ConversationRecord {
	rec := &ConversationRecord{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		Timestamp:      time.Now().UTC(),
		RiskClass:      riskClass,
		Decisions:      decisions,
		Signals:        signals,
		Gaps:           gaps,
	}
	rec.Hash = hashConversationRecord(rec)
	return rec
}
