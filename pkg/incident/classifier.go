package incident

import (
	"time"

	"veritas-hq/minerva/pkg/signal"
)

// Category is the fixed serious-incident taxonomy used for regulatory
// incident reporting.
type Category string

const (
	CategorySelfHarmMishandling     Category = "SELF_HARM_MISHANDLING"
	CategoryDangerousMedicalAdvice  Category = "DANGEROUS_MEDICAL_ADVICE"
	CategoryDiscriminatoryDecision  Category = "DISCRIMINATORY_DECISION"
	CategorySafetyProtocolViolation Category = "SAFETY_PROTOCOL_VIOLATION"
)

// Classification is a derived serious-incident finding. It is not stored
// independently of its triggering signal.
type Classification struct {
	// Category is the incident taxonomy entry.
	Category Category `json:"category"`

	// Severity is the incident severity, downgraded one level when the
	// triggering signal's confidence is below the certainty threshold.
	Severity signal.Severity `json:"severity"`

	// ReportingRequired indicates the incident falls under mandatory
	// serious-incident reporting.
	ReportingRequired bool `json:"reportingRequired"`

	// SignalType and Confidence describe the triggering signal.
	SignalType string  `json:"signalType"`
	Confidence float64 `json:"confidence"`

	// RegulationIDs lists the reporting obligations the incident maps to.
	RegulationIDs []string `json:"regulationIds"`

	// DetectedAt is when the classification was made.
	DetectedAt time.Time `json:"detectedAt"`
}

// certaintyThreshold is the signal confidence below which the incident
// severity is downgraded one level.
const certaintyThreshold = 0.7

// taxonomyEntry is one row of the static signal-type table.
type taxonomyEntry struct {
	category          Category
	severity          signal.Severity
	reportingRequired bool
	regulationIDs     []string
}

// taxonomy maps signal types to incident classifications. Signal types
// absent from the table never produce incidents.
var taxonomy = map[string]taxonomyEntry{
	signal.TypeSuicideRisk: {
		category:          CategorySelfHarmMishandling,
		severity:          signal.SeverityCritical,
		reportingRequired: true,
		regulationIDs:     []string{"EU-AI-ACT-ART-73"},
	},
	signal.TypeMissingEscalation: {
		category:          CategorySelfHarmMishandling,
		severity:          signal.SeverityCritical,
		reportingRequired: true,
		regulationIDs:     []string{"EU-AI-ACT-ART-73"},
	},
	signal.TypeLLMCrisis: {
		category:          CategorySelfHarmMishandling,
		severity:          signal.SeverityHigh,
		reportingRequired: true,
		regulationIDs:     []string{"EU-AI-ACT-ART-73"},
	},
	signal.TypeDosageRecommendation: {
		category:          CategoryDangerousMedicalAdvice,
		severity:          signal.SeverityCritical,
		reportingRequired: true,
		regulationIDs:     []string{"EU-AI-ACT-ART-73", "EU-MDR-ART-2"},
	},
	signal.TypeMedicalAdvice: {
		category:          CategoryDangerousMedicalAdvice,
		severity:          signal.SeverityHigh,
		reportingRequired: false,
		regulationIDs:     []string{"EU-MDR-ART-2"},
	},
	signal.TypeBiasLanguage: {
		category:          CategoryDiscriminatoryDecision,
		severity:          signal.SeverityHigh,
		reportingRequired: true,
		regulationIDs:     []string{"EU-AI-ACT-ART-10", "EU-AI-ACT-ART-73"},
	},
	signal.TypeSystemError: {
		category:          CategorySafetyProtocolViolation,
		severity:          signal.SeverityHigh,
		reportingRequired: false,
		regulationIDs:     []string{"EU-AI-ACT-ART-15"},
	},
}

// Classify scans the signals in order and returns the classification for
// the first signal type present in the taxonomy. It does not aggregate
// multiple matches; callers invoke it once per signal set of interest.
// The second return value is false when no signal maps to an incident.
func Classify(signals []signal.Signal) (*Classification, bool) {
	for _, sig := range signals {
		entry, ok := taxonomy[sig.Type]
		if !ok {
			continue
		}

		severity := entry.severity
		if sig.Confidence < certaintyThreshold {
			// Reduced certainty warrants a reduced severity
			severity = severity.Downgrade()
		}

		return &Classification{
			Category:          entry.category,
			Severity:          severity,
			ReportingRequired: entry.reportingRequired,
			SignalType:        sig.Type,
			Confidence:        sig.Confidence,
			RegulationIDs:     entry.regulationIDs,
			DetectedAt:        time.Now().UTC(),
		}, true
	}
	return nil, false
}
