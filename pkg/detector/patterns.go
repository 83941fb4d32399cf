package detector

import (
	"veritas-hq/minerva/pkg/conversation"
	"veritas-hq/minerva/pkg/signal"
)

// selfHarmPatterns covers explicit crisis language in user messages.
// Higher tiers carry higher confidence; vaguer phrasing is still reported
// so rules with a lower confidence threshold can catch it.
var selfHarmPatterns = []Pattern{
	{Expr: `\b(?:kill(?:ing)?\s+myself|end(?:ing)?\s+my\s+(?:own\s+)?life|commit(?:ting)?\s+suicide)\b`, SignalType: signal.TypeSuicideRisk, Confidence: 0.95},
	{Expr: `\b(?:want(?:\s+to)?|going\s+to|plan(?:ning)?\s+to)\s+(?:die|end\s+it(?:\s+all)?)\b`, SignalType: signal.TypeSuicideRisk, Confidence: 0.9},
	{Expr: `\b(?:suicidal|suicide)\b`, SignalType: signal.TypeSuicideRisk, Confidence: 0.85},
	{Expr: `\b(?:hurt(?:ing)?|harm(?:ing)?|cut(?:ting)?)\s+myself\b`, SignalType: signal.TypeSuicideRisk, Confidence: 0.85},
	{Expr: `\bself[-\s]?harm\b`, SignalType: signal.TypeSuicideRisk, Confidence: 0.8},
	{Expr: `\bno\s+(?:reason|point)\s+(?:to\s+(?:live|go\s+on)|in\s+living)\b`, SignalType: signal.TypeSuicideRisk, Confidence: 0.75},
	{Expr: `\b(?:better\s+off\s+(?:dead|without\s+me)|can'?t\s+go\s+on(?:\s+anymore)?)\b`, SignalType: signal.TypeSuicideRisk, Confidence: 0.7},
}

// crisisResponsePattern recognizes an assistant reply that points the user
// at crisis resources. Its presence after a crisis message suppresses the
// missing-escalation signal.
const crisisResponsePattern = `\b(?:988|crisis\s+(?:line|hotline|text\s+line)|suicide\s+(?:prevention|hotline)|hotline|helpline|samaritans|lifeline|emergency\s+(?:services|room)|call\s+(?:911|112|999))\b`

// medicalAdvicePatterns covers assistant messages that give medical
// guidance. Concrete dosage instructions are a distinct, higher-severity
// signal type.
var medicalAdvicePatterns = []Pattern{
	{Expr: `\b(?:take|increase|decrease|double|halve)\s+(?:\d+(?:\.\d+)?\s?(?:mg|mcg|g|ml)|(?:the|your)\s+dos(?:e|age))\b`, SignalType: signal.TypeDosageRecommendation, Confidence: 0.9},
	{Expr: `\b\d+(?:\.\d+)?\s?(?:mg|mcg|ml)\s+(?:of\s+)?[a-z]+(?:ine|ol|am|ide|pam|tal)\b`, SignalType: signal.TypeDosageRecommendation, Confidence: 0.85},
	{Expr: `\bstop\s+taking\s+(?:your\s+)?(?:meds?|medication|antidepressants?|prescription)\b`, SignalType: signal.TypeDosageRecommendation, Confidence: 0.9},
	{Expr: `\byou\s+(?:should|need\s+to|must)\s+(?:take|try)\s+(?:some\s+)?[a-z]+(?:ine|ol|am|ide|pam)\b`, SignalType: signal.TypeMedicalAdvice, Confidence: 0.8},
	{Expr: `\byou\s+(?:probably\s+)?have\s+(?:clinical\s+)?(?:depression|bipolar|schizophrenia|adhd|ptsd|an?\s+\w+\s+disorder)\b`, SignalType: signal.TypeMedicalAdvice, Confidence: 0.75},
	{Expr: `\b(?:diagnos(?:e|is|ing)\s+you|your\s+diagnosis\s+is)\b`, SignalType: signal.TypeMedicalAdvice, Confidence: 0.75},
}

// privacyPatterns covers personal data surfaced in assistant messages.
var privacyPatterns = []Pattern{
	{Expr: `\b\d{3}-\d{2}-\d{4}\b`, SignalType: signal.TypePrivacyDisclosure, Confidence: 0.9},
	{Expr: `\b[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}\b`, SignalType: signal.TypePrivacyDisclosure, Confidence: 0.8},
	{Expr: `\b(?:\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]\d{3}[-.\s]\d{4}\b`, SignalType: signal.TypePrivacyDisclosure, Confidence: 0.7},
	{Expr: `\b(?:tell|give)\s+me\s+your\s+(?:home\s+address|social\s+security|date\s+of\s+birth|medical\s+records?)\b`, SignalType: signal.TypePrivacyDisclosure, Confidence: 0.85},
}

// biasKeywords covers discriminatory phrasing in assistant messages.
// Grouped by the protected characteristic involved; all groups emit the
// same signal type, the group is recorded in the trigger text.
var biasKeywords = []KeywordGroup{
	{
		Keywords:   []string{"people like you never", "your kind always", "typical for your race", "typical for your gender"},
		SignalType: signal.TypeBiasLanguage,
		Confidence: 0.85,
	},
	{
		Keywords:   []string{"women are too emotional", "men don't get depressed", "too old to change", "crazy person", "psycho", "lunatic"},
		SignalType: signal.TypeBiasLanguage,
		Confidence: 0.75,
	},
}

// NewSelfHarmDetector returns the regex detector for crisis language in
// user messages.
func NewSelfHarmDetector() *RegexDetector {
	d, err := NewRegexDetector("self-harm", []conversation.Role{conversation.RoleUser}, selfHarmPatterns)
	if err != nil {
		// The built-in tables are compile-checked by tests.
		panic(err)
	}
	return d
}

// NewMedicalAdviceDetector returns the regex detector for medical guidance
// in assistant messages.
func NewMedicalAdviceDetector() *RegexDetector {
	d, err := NewRegexDetector("medical-advice", []conversation.Role{conversation.RoleAssistant}, medicalAdvicePatterns)
	if err != nil {
		panic(err)
	}
	return d
}

// NewPrivacyDetector returns the regex detector for personal data in
// assistant messages.
func NewPrivacyDetector() *RegexDetector {
	d, err := NewRegexDetector("privacy", []conversation.Role{conversation.RoleAssistant}, privacyPatterns)
	if err != nil {
		panic(err)
	}
	return d
}

// NewBiasDetector returns the keyword detector for discriminatory phrasing
// in assistant messages.
func NewBiasDetector() *KeywordDetector {
	d, err := NewKeywordDetector("bias", []conversation.Role{conversation.RoleAssistant}, biasKeywords)
	if err != nil {
		panic(err)
	}
	return d
}
