package engine

import (
	"time"

	"veritas-hq/minerva/pkg/signal"
)

// Violation is the materialized match of one signal against one rule whose
// confidence threshold was met. After deduplication at most one violation
// per rule id survives.
type Violation struct {
	// RuleID identifies the rule that matched.
	RuleID string `json:"ruleId"`

	// Category is the rule's violation category.
	Category string `json:"category"`

	// Severity is the rule's severity.
	Severity signal.Severity `json:"severity"`

	// Message is the rendered rule message.
	Message string `json:"message"`

	// RegulationIDs lists the regulation articles the rule traces to.
	RegulationIDs []string `json:"regulationIds"`

	// ScoreImpact equals the originating rule's weight (negative).
	ScoreImpact int `json:"scoreImpact"`

	// TriggerSignal is the signal that produced this violation. Not part
	// of the wire shape.
	TriggerSignal signal.Signal `json:"-"`
}

// Evaluation is the result of one engine run over one conversation under
// one pack.
type Evaluation struct {
	// Compliant is the overall verdict: score at or above the threshold
	// and no HIGH or CRITICAL violation.
	Compliant bool `json:"compliant"`

	// Score is the compliance score in [0, 100].
	Score int `json:"score"`

	// Violations are the deduplicated violations.
	Violations []Violation `json:"violations"`

	// Signals are all signals produced by the pack's detectors, in
	// detector fan-out order.
	Signals []signal.Signal `json:"signals"`

	// AuditID is the fresh unique id for the audit record of this
	// evaluation.
	AuditID string `json:"auditId"`

	// PackID and PackVersion identify the pack that was evaluated.
	PackID      string `json:"packId"`
	PackVersion string `json:"packVersion,omitempty"`

	// ProcessingTime is the end-to-end evaluation duration.
	ProcessingTime time.Duration `json:"-"`
}

// HasSeverityAtLeast reports whether any violation has at least the given
// severity.
func (e *Evaluation) HasSeverityAtLeast(s signal.Severity) bool {
	for _, v := range e.Violations {
		if v.Severity.Rank() >= s.Rank() {
			return true
		}
	}
	return false
}
