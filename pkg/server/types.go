package server

import (
	"veritas-hq/minerva/pkg/conversation"
	"veritas-hq/minerva/pkg/incident"
	"veritas-hq/minerva/pkg/obligation"
	"veritas-hq/minerva/pkg/policy"
	"veritas-hq/minerva/pkg/policy/engine"
)

// EvaluateRequest is the POST /v1/evaluate request body. The
// conversation is given either as structured messages or as a plain
// transcript; messages win when both are present.
type EvaluateRequest struct {
	// ConversationID is the caller's identifier for the conversation.
	ConversationID string `json:"conversationId"`

	// PackID selects the policy pack. Required: an empty or unknown id
	// is rejected, never silently substituted.
	PackID string `json:"packId"`

	// RiskClass is the AI-Act risk classification of the evaluated
	// system. Defaults to HIGH.
	RiskClass string `json:"riskClass"`

	// Messages is the structured transcript.
	Messages []conversation.Message `json:"messages"`

	// Transcript is a plain-text transcript of "role: text" lines,
	// parsed when Messages is empty.
	Transcript string `json:"transcript"`

	// Metadata carries opaque caller-supplied key/value pairs.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// EvaluateResponse is the POST /v1/evaluate response body.
type EvaluateResponse struct {
	// Evaluation embeds the engine result: verdict, score, violations,
	// signals, audit id, and pack identity.
	*engine.Evaluation

	// RiskClass echoes the risk classification the obligations were
	// derived under.
	RiskClass obligation.RiskClass `json:"riskClass"`

	// Incident is the serious-incident classification, when any signal
	// matched the incident taxonomy.
	Incident *incident.Classification `json:"incident,omitempty"`

	// Obligations lists the regulatory obligations for this evaluation.
	Obligations []obligation.Obligation `json:"obligations"`

	// ProcessingTimeMs is the evaluation wall time in milliseconds.
	ProcessingTimeMs int64 `json:"processingTimeMs"`
}

// PacksResponse is the GET /v1/packs response body.
type PacksResponse struct {
	// Packs lists the registered packs.
	Packs []policy.Info `json:"packs"`

	// RegistryVersion is the hash over the registered pack set.
	RegistryVersion string `json:"registryVersion"`
}

// AuditResponse is the GET /v1/audit/{id} response body.
type AuditResponse struct {
	// Record is the stored audit record.
	Record any `json:"record"`

	// Verified reports whether the stored integrity hash matches the
	// recomputed one.
	Verified bool `json:"verified"`
}

// ErrorResponse is the JSON error body for non-2xx responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
