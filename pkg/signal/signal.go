package signal

// Source identifies the kind of detector that produced a signal.
type Source string

const (
	// SourceRegex marks signals produced by regular-expression pattern detectors.
	SourceRegex Source = "REGEX"

	// SourceKeyword marks signals produced by keyword-table detectors.
	SourceKeyword Source = "KEYWORD"

	// SourceLLM marks signals produced by the external classification service.
	// These are the only non-deterministic signals in the system.
	SourceLLM Source = "LLM"

	// SourceRule marks signals produced by conversation-flow rules
	// (e.g., a crisis message with no escalation reply).
	SourceRule Source = "RULE"
)

// Severity is the shared severity scale for violations and incidents.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// severityRanks defines the total order CRITICAL > HIGH > MEDIUM > LOW.
var severityRanks = map[Severity]int{
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// Rank returns the numeric rank of the severity for comparisons.
// Unknown severities rank below LOW.
func (s Severity) Rank() int {
	return severityRanks[s]
}

// Valid reports whether the severity is one of the four known levels.
func (s Severity) Valid() bool {
	_, ok := severityRanks[s]
	return ok
}

// Downgrade returns the severity one level below the receiver.
// LOW cannot be downgraded further and is returned unchanged.
func (s Severity) Downgrade() Severity {
	switch s {
	case SeverityCritical:
		return SeverityHigh
	case SeverityHigh:
		return SeverityMedium
	case SeverityMedium:
		return SeverityLow
	default:
		return s
	}
}

// Well-known signal types emitted by the detector catalog. Policy pack rules
// target these by name; packs loaded from YAML may also reference types that
// only their own detectors emit.
const (
	// TypeSuicideRisk indicates crisis or self-harm language in a user message.
	TypeSuicideRisk = "suicide_risk"

	// TypeMissingEscalation indicates a crisis message that was not followed
	// by an assistant reply containing crisis resources.
	TypeMissingEscalation = "missing_escalation"

	// TypeMedicalAdvice indicates the assistant gave medical guidance.
	TypeMedicalAdvice = "medical_advice"

	// TypeDosageRecommendation indicates the assistant recommended a
	// concrete medication dosage or a change to one.
	TypeDosageRecommendation = "dosage_recommendation"

	// TypeAIDisclosureMissing indicates the assistant never disclosed that
	// it is an AI system.
	TypeAIDisclosureMissing = "ai_disclosure_missing"

	// TypePrivacyDisclosure indicates personal data surfaced or solicited
	// by the assistant.
	TypePrivacyDisclosure = "privacy_disclosure"

	// TypeBiasLanguage indicates discriminatory phrasing.
	TypeBiasLanguage = "bias_language"

	// TypeLLMCrisis and TypeLLMMedical are emitted by the external
	// classification service.
	TypeLLMCrisis  = "llm_crisis"
	TypeLLMMedical = "llm_medical"

	// TypeSystemError is the fail-safe signal emitted when the external
	// classification service is unreachable. It exists so an outage can
	// never produce a false "compliant" verdict.
	TypeSystemError = "system_error"
)

// Metadata carries optional context about where and how a signal was found.
type Metadata struct {
	// TriggerText is the text span that triggered the detector.
	TriggerText string `json:"triggerText,omitempty"`

	// Context is a short description of the surrounding circumstances
	// (e.g., the classifier label, or the flow rule that fired).
	Context string `json:"context,omitempty"`

	// Location identifies the message the signal was found in
	// (e.g., "user[0]", "assistant[2]").
	Location string `json:"location,omitempty"`
}

// Signal is an immutable, neutral observation extracted from a conversation.
// Signals carry no judgment about compliance; judgment is applied when a
// policy pack rule matches them.
type Signal struct {
	// Type is the signal type targeted by policy rules.
	Type string `json:"type"`

	// Source identifies the detector mechanism that produced the signal.
	Source Source `json:"source"`

	// Confidence is the detector's confidence in [0, 1].
	Confidence float64 `json:"confidence"`

	// Metadata carries optional trigger context.
	Metadata Metadata `json:"metadata,omitempty"`
}
