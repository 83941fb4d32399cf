package records

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// hashEvaluationRecord computes the SHA-256 hash over the canonical JSON
// serialization of the record with the Hash field cleared. Struct field
// order makes the serialization canonical.
func hashEvaluationRecord(rec *EvaluationRecord) string {
	clone := *rec
	clone.Hash = ""
	return hashJSON(&clone)
}

// hashConversationRecord is the ConversationRecord counterpart.
func hashConversationRecord(rec *ConversationRecord) string {
	clone := *rec
	clone.Hash = ""
	return hashJSON(&clone)
}

// VerifyEvaluationRecord recomputes the hash and compares it against the
// stored one. A mismatch signals tampering.
func VerifyEvaluationRecord(rec *EvaluationRecord) bool {
	return rec.Hash != "" && rec.Hash == hashEvaluationRecord(rec)
}

// VerifyConversationRecord recomputes the hash and compares it against
// the stored one.
func VerifyConversationRecord(rec *ConversationRecord) bool {
	return rec.Hash != "" && rec.Hash == hashConversationRecord(rec)
}

// hashJSON hashes the JSON serialization of v.
func hashJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		// Record types contain only JSON-serializable fields.
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
