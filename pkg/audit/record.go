package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"veritas-hq/minerva/pkg/policy/engine"
)

// Risk is one violation as it appears in an audit record. Only the
// fields needed for audit review are carried over from the engine
// violation.
type Risk struct {
	// Category is the rule category, e.g. SUICIDE_SELF_HARM.
	Category string `json:"category"`

	// Severity is the rule severity at match time.
	Severity string `json:"severity"`

	// Message is the rendered violation message.
	Message string `json:"message"`
}

// Record is one tamper-evident audit record for a completed
// evaluation. Records are append-only: a stored record is never
// updated, and its hash is never recomputed in place.
type Record struct {
	// ID is the audit identifier minted by the engine for this
	// evaluation.
	ID string `json:"id"`

	// ConversationID identifies the evaluated conversation.
	ConversationID string `json:"conversationId"`

	// Hash is the hex-encoded SHA-256 integrity hash, computed over the
	// canonical form at creation time.
	Hash string `json:"hash"`

	// Timestamp is the record creation time in RFC 3339 UTC.
	Timestamp string `json:"timestampISO"`

	// Compliant is the evaluation verdict.
	Compliant bool `json:"compliant"`

	// Score is the compliance score, 0-100.
	Score int `json:"score"`

	// PackID and PackVersion identify the policy pack that produced
	// the verdict.
	PackID      string `json:"packId"`
	PackVersion string `json:"packVersion"`

	// Risks lists the violations found, in surviving order.
	Risks []Risk `json:"risks"`

	// ProcessingTimeMs is the evaluation wall time in milliseconds.
	ProcessingTimeMs int64 `json:"processingTimeMs"`
}

// canonicalPayload is the hashed subset of a record. The hash binds the
// identity fields to the evaluation result; mutating any of them after
// creation makes Verify fail.
type canonicalPayload struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversationId"`
	Timestamp      string `json:"timestampISO"`
	Result         struct {
		Compliant bool   `json:"compliant"`
		Score     int    `json:"score"`
		Risks     []Risk `json:"risks"`
	} `json:"result"`
}

// NewRecord creates an audit record from an evaluation. The record ID
// is the engine's audit ID, and the integrity hash is computed
// immediately so the record is sealed before it reaches storage.
func NewRecord(conversationID string, eval *engine.Evaluation) *Record {
	risks := make([]Risk, 0, len(eval.Violations))
	for _, v := range eval.Violations {
		risks = append(risks, Risk{
			Category: v.Category,
			Severity: string(v.Severity),
			Message:  v.Message,
		})
	}

	record := &Record{
		ID:               eval.AuditID,
		ConversationID:   conversationID,
		Timestamp:        time.Now().UTC().Format(time.RFC3339),
		Compliant:        eval.Compliant,
		Score:            eval.Score,
		PackID:           eval.PackID,
		PackVersion:      eval.PackVersion,
		Risks:            risks,
		ProcessingTimeMs: eval.ProcessingTime.Milliseconds(),
	}
	record.Hash = record.computeHash()

	return record
}

// computeHash returns the hex-encoded SHA-256 hash over the record's
// canonical form.
func (r *Record) computeHash() string {
	var payload canonicalPayload
	payload.ID = r.ID
	payload.ConversationID = r.ConversationID
	payload.Timestamp = r.Timestamp
	payload.Result.Compliant = r.Compliant
	payload.Result.Score = r.Score
	payload.Result.Risks = r.Risks
	if payload.Result.Risks == nil {
		payload.Result.Risks = []Risk{}
	}

	data, _ := json.Marshal(payload)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Verify recomputes the canonical hash and reports whether it matches
// the stored one. A false result means the record was altered after
// creation.
func (r *Record) Verify() bool {
	return r.Hash != "" && r.Hash == r.computeHash()
}
