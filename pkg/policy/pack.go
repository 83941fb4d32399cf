package policy

import (
	"fmt"

	"veritas-hq/minerva/pkg/detector"
	"veritas-hq/minerva/pkg/signal"
)

// Rule is one declarative row of a policy pack: it maps a target signal
// type and a minimum confidence to a severity, a score weight, and the
// regulation articles the rule traces to. Rule identity is (packID, ruleID).
type Rule struct {
	// ID is the rule identifier, unique within its pack.
	ID string `yaml:"id"`

	// Name is the human-readable rule name.
	Name string `yaml:"name"`

	// Category is the violation category reported when the rule matches
	// (e.g., SUICIDE_SELF_HARM, MEDICAL_ADVICE).
	Category string `yaml:"category"`

	// TargetSignalType is the signal type this rule matches.
	TargetSignalType string `yaml:"target_signal_type"`

	// MinConfidence is the minimum signal confidence for a match, in [0, 1].
	MinConfidence float64 `yaml:"min_confidence"`

	// Severity is the severity of the resulting violation.
	Severity signal.Severity `yaml:"severity"`

	// Weight is the score impact of the violation. Always negative.
	Weight int `yaml:"weight"`

	// RegulationIDs lists the regulation articles the rule traces to.
	RegulationIDs []string `yaml:"regulation_ids"`

	// MessageTemplate is the violation message. The placeholders
	// {trigger_text}, {signal_type} and {confidence} are substituted when
	// the violation is materialized.
	MessageTemplate string `yaml:"message_template"`
}

// Validate checks a single rule for structural soundness.
func (r *Rule) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("rule has empty id")
	}
	if r.TargetSignalType == "" {
		return fmt.Errorf("rule %q has empty target signal type", r.ID)
	}
	if r.MinConfidence < 0 || r.MinConfidence > 1 {
		return fmt.Errorf("rule %q has min confidence %v out of range", r.ID, r.MinConfidence)
	}
	if !r.Severity.Valid() {
		return fmt.Errorf("rule %q has unknown severity %q", r.ID, r.Severity)
	}
	if r.Weight >= 0 {
		return fmt.Errorf("rule %q has non-negative weight %d", r.ID, r.Weight)
	}
	return nil
}

// Pack is a versioned, declarative compliance bundle for one jurisdiction
// and domain: the detectors to run and the rules that judge their signals.
// Packs are immutable after registration.
type Pack struct {
	// ID is the stable pack identifier callers address
	// (e.g., "eu/mental-health/v1").
	ID string `yaml:"id"`

	// Name is the human-readable pack name.
	Name string `yaml:"name"`

	// Version is the pack version string.
	Version string `yaml:"version"`

	// Jurisdiction identifies the legal regime the pack encodes
	// (e.g., "EU").
	Jurisdiction string `yaml:"jurisdiction"`

	// Detectors are the detectors to run for this pack, in fan-out order.
	Detectors []detector.Detector `yaml:"-"`

	// Rules are the declarative matching rules.
	Rules []Rule `yaml:"rules"`
}

// Validate checks the pack and all of its rules.
func (p *Pack) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("pack has empty id")
	}
	if len(p.Rules) == 0 {
		return fmt.Errorf("pack %q has no rules", p.ID)
	}

	seen := make(map[string]struct{}, len(p.Rules))
	for i := range p.Rules {
		rule := &p.Rules[i]
		if err := rule.Validate(); err != nil {
			return fmt.Errorf("pack %q: %w", p.ID, err)
		}
		if _, dup := seen[rule.ID]; dup {
			return fmt.Errorf("pack %q has duplicate rule id %q", p.ID, rule.ID)
		}
		seen[rule.ID] = struct{}{}
	}

	if len(p.Detectors) == 0 {
		return fmt.Errorf("pack %q has no detectors", p.ID)
	}
	return nil
}

// Info is the discovery summary for one registered pack.
type Info struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Version       string `json:"version"`
	Jurisdiction  string `json:"jurisdiction"`
	RuleCount     int    `json:"ruleCount"`
	DetectorCount int    `json:"detectorCount"`
}

// Info returns the discovery summary for the pack.
func (p *Pack) Info() Info {
	return Info{
		ID:            p.ID,
		Name:          p.Name,
		Version:       p.Version,
		Jurisdiction:  p.Jurisdiction,
		RuleCount:     len(p.Rules),
		DetectorCount: len(p.Detectors),
	}
}
