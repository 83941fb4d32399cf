package evidence

import "time"

// Fragment is one structured documentation fragment for a single AI-Act
// article concern. It carries both human-readable prose and a
// machine-readable metadata block; renderings are pure formatting over
// the same data.
type Fragment struct {
	// ArticleID is the article the fragment documents.
	ArticleID string `json:"articleId"`

	// Title is the fragment heading.
	Title string `json:"title"`

	// Prose is the human-readable narrative.
	Prose string `json:"prose"`

	// Metadata is the machine-readable block: counts, distributions and
	// rates. Rate fields are omitted entirely when the aggregation has
	// no records to divide by.
	Metadata map[string]any `json:"metadata"`

	// PeriodStart and PeriodEnd bound the aggregated records. Zero when
	// no records were aggregated, and omitted from renderings in that
	// case.
	PeriodStart time.Time `json:"periodStart,omitzero"`
	PeriodEnd   time.Time `json:"periodEnd,omitzero"`

	// GeneratedAt is when the fragment was built.
	GeneratedAt time.Time `json:"generatedAt"`
}
