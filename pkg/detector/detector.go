package detector

import (
	"context"
	"fmt"
	"regexp"

	"veritas-hq/minerva/pkg/conversation"
	"veritas-hq/minerva/pkg/signal"
)

// Detector inspects a conversation and produces zero or more signals.
//
// Implementations must be stateless and safe to invoke concurrently for
// different conversations and concurrently with each other for the same
// conversation. A detector must not return an error for an expected
// "no match" case; it returns an empty slice instead. Errors are reserved
// for operational failures (the external classifier being the only
// detector that performs I/O).
type Detector interface {
	// Name returns a stable identifier for logging and metrics.
	Name() string

	// Detect inspects the conversation snapshot and returns the signals
	// found. The returned slice order is deterministic for deterministic
	// detectors.
	Detect(ctx context.Context, conv *conversation.Conversation) ([]signal.Signal, error)
}

// Pattern is one row of a declarative regex pattern table: a pattern, the
// signal type it emits, and the confidence attached to a match.
type Pattern struct {
	Expr       string  `yaml:"expr"`
	SignalType string  `yaml:"signal_type"`
	Confidence float64 `yaml:"confidence"`
}

// compiledPattern pairs a compiled regexp with its table row.
type compiledPattern struct {
	re *regexp.Regexp
	Pattern
}

// RegexDetector matches an ordered table of regular expressions against
// the messages of selected roles. At most one signal is emitted per
// (pattern, message) pair; patterns are evaluated in table order so signal
// order is deterministic.
type RegexDetector struct {
	name     string
	roles    []conversation.Role
	patterns []compiledPattern
}

// NewRegexDetector compiles the pattern table and returns the detector.
// Patterns are compiled case-insensitively unless the expression sets its
// own flags.
func NewRegexDetector(name string, roles []conversation.Role, patterns []Pattern) (*RegexDetector, error) {
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p.Expr)
		if err != nil {
			return nil, fmt.Errorf("detector %q: invalid pattern %q: %w", name, p.Expr, err)
		}
		if p.Confidence < 0 || p.Confidence > 1 {
			return nil, fmt.Errorf("detector %q: pattern %q confidence %v out of range", name, p.Expr, p.Confidence)
		}
		compiled = append(compiled, compiledPattern{re: re, Pattern: p})
	}
	return &RegexDetector{name: name, roles: roles, patterns: compiled}, nil
}

// Name returns the detector name.
func (d *RegexDetector) Name() string { return d.name }

// Detect scans the selected messages against the pattern table.
func (d *RegexDetector) Detect(ctx context.Context, conv *conversation.Conversation) ([]signal.Signal, error) {
	var signals []signal.Signal

	for _, p := range d.patterns {
		for i, msg := range conv.Messages {
			if !d.scansRole(msg.Role) {
				continue
			}
			match := p.re.FindString(msg.Text)
			if match == "" {
				continue
			}
			signals = append(signals, signal.Signal{
				Type:       p.SignalType,
				Source:     signal.SourceRegex,
				Confidence: p.Confidence,
				Metadata: signal.Metadata{
					TriggerText: match,
					Location:    fmt.Sprintf("%s[%d]", msg.Role, i),
				},
			})
		}
	}

	return signals, nil
}

// scansRole reports whether the detector inspects messages of the role.
// An empty role list means all roles.
func (d *RegexDetector) scansRole(role conversation.Role) bool {
	if len(d.roles) == 0 {
		return true
	}
	for _, r := range d.roles {
		if r == role {
			return true
		}
	}
	return false
}

// KeywordGroup is one row of a keyword table: a set of case-insensitive
// words, the signal type emitted when any of them appears, and the
// confidence attached to a match.
type KeywordGroup struct {
	Keywords   []string `yaml:"keywords"`
	SignalType string   `yaml:"signal_type"`
	Confidence float64  `yaml:"confidence"`
}

// KeywordDetector matches keyword groups against the messages of selected
// roles using word-boundary matching. It compiles each group into a single
// alternation regex at construction time.
type KeywordDetector struct {
	inner *RegexDetector
}

// NewKeywordDetector builds a keyword detector from the group table.
func NewKeywordDetector(name string, roles []conversation.Role, groups []KeywordGroup) (*KeywordDetector, error) {
	patterns := make([]Pattern, 0, len(groups))
	for _, g := range groups {
		if len(g.Keywords) == 0 {
			return nil, fmt.Errorf("detector %q: keyword group for %q has no keywords", name, g.SignalType)
		}
		expr := `\b(?:`
		for i, kw := range g.Keywords {
			if i > 0 {
				expr += "|"
			}
			expr += regexp.QuoteMeta(kw)
		}
		expr += `)\b`
		patterns = append(patterns, Pattern{Expr: expr, SignalType: g.SignalType, Confidence: g.Confidence})
	}

	inner, err := NewRegexDetector(name, roles, patterns)
	if err != nil {
		return nil, err
	}
	return &KeywordDetector{inner: inner}, nil
}

// Name returns the detector name.
func (d *KeywordDetector) Name() string { return d.inner.Name() }

// Detect scans the selected messages against the keyword table. Matches
// are reported with the KEYWORD source.
func (d *KeywordDetector) Detect(ctx context.Context, conv *conversation.Conversation) ([]signal.Signal, error) {
	signals, err := d.inner.Detect(ctx, conv)
	if err != nil {
		return nil, err
	}
	for i := range signals {
		signals[i].Source = signal.SourceKeyword
	}
	return signals, nil
}
