package obligation

// Article is one entry of the static regulatory-article registry.
type Article struct {
	ID          string
	Name        string
	Requirement string
}

// Article ids used across the mapper and evidence builder.
const (
	ArticleProhibition      = "EU-AI-ACT-ART-5"
	ArticleRiskManagement   = "EU-AI-ACT-ART-9"
	ArticleDataGovernance   = "EU-AI-ACT-ART-10"
	ArticleDocumentation    = "EU-AI-ACT-ART-11"
	ArticleRecordKeeping    = "EU-AI-ACT-ART-12"
	ArticleTransparency     = "EU-AI-ACT-ART-13"
	ArticleHumanOversight   = "EU-AI-ACT-ART-14"
	ArticleAccuracy         = "EU-AI-ACT-ART-15"
	ArticlePostMarket       = "EU-AI-ACT-ART-72"
	ArticleSeriousIncidents = "EU-AI-ACT-ART-73"
)

// articles is the static article registry. Obligation metadata (name and
// requirement text) is always resolved here, never inlined at call sites.
var articles = map[string]Article{
	ArticleProhibition: {
		ID:          ArticleProhibition,
		Name:        "Prohibited AI Practices",
		Requirement: "The system must not deploy practices prohibited under Article 5, including exploitation of vulnerabilities of persons in crisis.",
	},
	ArticleRiskManagement: {
		ID:          ArticleRiskManagement,
		Name:        "Risk Management System",
		Requirement: "Establish, implement, document and maintain a continuous risk management process across the system lifecycle.",
	},
	ArticleDataGovernance: {
		ID:          ArticleDataGovernance,
		Name:        "Data and Data Governance",
		Requirement: "Training, validation and operational data practices must prevent discriminatory outcomes and protect special-category data.",
	},
	ArticleDocumentation: {
		ID:          ArticleDocumentation,
		Name:        "Technical Documentation",
		Requirement: "Maintain technical documentation demonstrating compliance before placing the system on the market.",
	},
	ArticleRecordKeeping: {
		ID:          ArticleRecordKeeping,
		Name:        "Record-Keeping",
		Requirement: "Automatically record events over the system lifetime sufficient to trace its functioning and support post-market monitoring.",
	},
	ArticleTransparency: {
		ID:          ArticleTransparency,
		Name:        "Transparency and Provision of Information",
		Requirement: "Operation must be sufficiently transparent for deployers to interpret output; users must be informed they interact with an AI system.",
	},
	ArticleHumanOversight: {
		ID:          ArticleHumanOversight,
		Name:        "Human Oversight",
		Requirement: "Provide effective human oversight measures, including escalation to qualified humans for crisis situations.",
	},
	ArticleAccuracy: {
		ID:          ArticleAccuracy,
		Name:        "Accuracy, Robustness and Cybersecurity",
		Requirement: "Achieve appropriate accuracy and robustness, including fail-safe behavior when safety components are unavailable.",
	},
	ArticlePostMarket: {
		ID:          ArticlePostMarket,
		Name:        "Post-Market Monitoring",
		Requirement: "Operate a post-market monitoring system that actively collects and reviews operational experience.",
	},
	ArticleSeriousIncidents: {
		ID:          ArticleSeriousIncidents,
		Name:        "Reporting of Serious Incidents",
		Requirement: "Report serious incidents to market surveillance authorities within the mandated deadlines.",
	},
}

// LookupArticle resolves an article id in the registry.
func LookupArticle(id string) (Article, bool) {
	a, ok := articles[id]
	return a, ok
}
