package obligation

import (
	"veritas-hq/minerva/pkg/signal"
)

// RiskClass is the AI-Act risk classification of the deployed system.
type RiskClass string

const (
	RiskUnacceptable RiskClass = "UNACCEPTABLE"
	RiskHigh         RiskClass = "HIGH"
	RiskLimited      RiskClass = "LIMITED"
	RiskMinimal      RiskClass = "MINIMAL"
)

// Status describes how far an obligation is met.
type Status string

const (
	StatusCompliant     Status = "COMPLIANT"
	StatusPartial       Status = "PARTIAL"
	StatusNonCompliant  Status = "NON_COMPLIANT"
	StatusNotApplicable Status = "NOT_APPLICABLE"
)

// Obligation is one regulatory-article requirement triggered by the risk
// classification and/or specific signals.
type Obligation struct {
	ArticleID        string `json:"articleId"`
	ArticleName      string `json:"articleName"`
	Requirement      string `json:"requirement"`
	ComplianceStatus Status `json:"complianceStatus"`
	EvidenceRef      string `json:"evidenceRef,omitempty"`
}

// baselineArticles lists the obligations every system of a risk class
// carries, before any signal-specific additions.
var baselineArticles = map[RiskClass][]string{
	RiskUnacceptable: {ArticleProhibition},
	RiskHigh: {
		ArticleRiskManagement,
		ArticleDataGovernance,
		ArticleDocumentation,
		ArticleRecordKeeping,
		ArticleTransparency,
		ArticleHumanOversight,
	},
	RiskLimited: {ArticleTransparency},
	RiskMinimal: {},
}

// signalArticles lists articles a signal type independently triggers,
// regardless of the baseline risk class.
var signalArticles = map[string][]string{
	signal.TypeBiasLanguage:         {ArticleDataGovernance},
	signal.TypeSuicideRisk:          {ArticleHumanOversight},
	signal.TypeMissingEscalation:    {ArticleHumanOversight},
	signal.TypeLLMCrisis:            {ArticleHumanOversight},
	signal.TypeAIDisclosureMissing:  {ArticleTransparency},
	signal.TypePrivacyDisclosure:    {ArticleDataGovernance},
	signal.TypeSystemError:          {ArticleAccuracy},
	signal.TypeDosageRecommendation: {ArticleSeriousIncidents},
}

// MapObligations derives the regulatory obligations for one evaluation:
// the baseline set for the risk class first, then articles individual
// signals trigger, deduplicated by article id. Baseline obligations are
// COMPLIANT unless a signal also triggers their article (then PARTIAL);
// signal-triggered additions are NON_COMPLIANT, since the signal is direct
// evidence of a gap.
func MapObligations(signals []signal.Signal, riskClass RiskClass) []Obligation {
	triggered := make(map[string]bool)
	var triggeredOrder []string
	for _, sig := range signals {
		for _, id := range signalArticles[sig.Type] {
			if !triggered[id] {
				triggered[id] = true
				triggeredOrder = append(triggeredOrder, id)
			}
		}
	}

	var obligations []Obligation
	seen := make(map[string]bool)

	for _, id := range baselineArticles[riskClass] {
		status := StatusCompliant
		if triggered[id] {
			status = StatusPartial
		}
		obligations = append(obligations, build(id, status))
		seen[id] = true
	}

	for _, id := range triggeredOrder {
		if seen[id] {
			continue
		}
		obligations = append(obligations, build(id, StatusNonCompliant))
		seen[id] = true
	}

	return obligations
}

// build resolves article metadata from the registry. Unknown ids yield an
// obligation with only the id filled in; the registry is static, so this
// only happens when a table and the registry drift.
func build(id string, status Status) Obligation {
	o := Obligation{ArticleID: id, ComplianceStatus: status}
	if a, ok := LookupArticle(id); ok {
		o.ArticleName = a.Name
		o.Requirement = a.Requirement
	}
	return o
}
