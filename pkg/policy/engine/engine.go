package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"veritas-hq/minerva/pkg/conversation"
	"veritas-hq/minerva/pkg/detector"
	"veritas-hq/minerva/pkg/policy"
	"veritas-hq/minerva/pkg/signal"
	"veritas-hq/minerva/pkg/telemetry/metrics"
)

// Config contains engine configuration.
type Config struct {
	// DetectorTimeout bounds the whole detector fan-out for one
	// evaluation. Default: 10 seconds
	DetectorTimeout time.Duration

	// ComplianceThreshold is the minimum score for a compliant verdict.
	// Default: 70
	ComplianceThreshold int
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		DetectorTimeout:     10 * time.Second,
		ComplianceThreshold: 70,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.DetectorTimeout <= 0 {
		return fmt.Errorf("detector timeout must be positive")
	}
	if c.ComplianceThreshold < 0 || c.ComplianceThreshold > 100 {
		return fmt.Errorf("compliance threshold %d out of range", c.ComplianceThreshold)
	}
	return nil
}

// Engine evaluates conversations against registered policy packs. It holds
// no cross-call state: every Evaluate call is an independent
// request/response unit, so one Engine is safe for concurrent use.
type Engine struct {
	registry *policy.Registry
	config   *Config
	logger   *slog.Logger
	metrics  *metrics.EngineMetrics
}

// New creates a policy engine bound to a pack registry. The metrics
// argument may be nil.
func New(registry *policy.Registry, config *Config, logger *slog.Logger, m *metrics.EngineMetrics) (*Engine, error) {
	if registry == nil {
		return nil, fmt.Errorf("pack registry cannot be nil")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		registry: registry,
		config:   config,
		logger:   logger.With("component", "policy.engine"),
		metrics:  m,
	}, nil
}

// Evaluate runs all detectors of the named pack over the conversation,
// matches the produced signals against the pack's rules, deduplicates the
// violations per rule id, and computes the score and verdict.
//
// Only two errors propagate to the caller: an invalid conversation and an
// unknown pack id (plus cancellation). Detector failures are isolated and
// contribute empty signal sets. The engine does not persist anything;
// audit persistence is the caller's concern.
func (e *Engine) Evaluate(ctx context.Context, conv *conversation.Conversation, packID string) (*Evaluation, error) {
	start := time.Now()

	if err := conv.Validate(); err != nil {
		return nil, err
	}

	pack, err := e.registry.Get(packID)
	if err != nil {
		return nil, err
	}

	signals, err := e.runDetectors(ctx, pack, conv)
	if err != nil {
		return nil, err
	}

	violations := e.matchRules(pack, signals)
	score := computeScore(violations)

	eval := &Evaluation{
		Compliant:      score >= e.config.ComplianceThreshold && !hasSevere(violations),
		Score:          score,
		Violations:     violations,
		Signals:        signals,
		AuditID:        uuid.New().String(),
		PackID:         pack.ID,
		PackVersion:    pack.Version,
		ProcessingTime: time.Since(start),
	}

	e.logger.Info("evaluation complete",
		"pack_id", pack.ID,
		"audit_id", eval.AuditID,
		"compliant", eval.Compliant,
		"score", eval.Score,
		"signal_count", len(signals),
		"violation_count", len(violations),
		"duration_ms", eval.ProcessingTime.Milliseconds(),
	)

	if e.metrics != nil {
		e.metrics.RecordEvaluation(pack.ID, eval.Compliant, eval.ProcessingTime)
		for _, v := range violations {
			e.metrics.RecordViolation(v.RuleID, string(v.Severity))
		}
	}

	return eval, nil
}

// runDetectors fans out all pack detectors concurrently and joins them
// before rule matching. Individual detector failures (error or panic) are
// isolated: logged, counted, and treated as an empty signal contribution.
// Signals are concatenated in detector order so downstream tie-breaks stay
// deterministic regardless of goroutine scheduling.
func (e *Engine) runDetectors(ctx context.Context, pack *policy.Pack, conv *conversation.Conversation) ([]signal.Signal, error) {
	detectorCtx, cancel := context.WithTimeout(ctx, e.config.DetectorTimeout)
	defer cancel()

	results := make([][]signal.Signal, len(pack.Detectors))

	var wg sync.WaitGroup
	for i, det := range pack.Detectors {
		wg.Add(1)
		go func(i int, det detector.Detector) {
			defer wg.Done()
			start := time.Now()

			defer func() {
				if r := recover(); r != nil {
					e.isolateFailure(&DetectorFailureError{
						Detector: det.Name(),
						Elapsed:  time.Since(start),
						Cause:    fmt.Errorf("panic: %v", r),
					})
				}
			}()

			sigs, err := det.Detect(detectorCtx, conv)
			if err != nil {
				e.isolateFailure(&DetectorFailureError{
					Detector: det.Name(),
					Elapsed:  time.Since(start),
					Cause:    err,
				})
				return
			}
			results[i] = sigs
		}(i, det)
	}
	wg.Wait()

	// The join is complete; rule matching must not run on a cancelled
	// evaluation, and no partial result may escape.
	if err := ctx.Err(); err != nil {
		return nil, &CancelledError{PackID: pack.ID, Cause: err}
	}

	var signals []signal.Signal
	for _, sigs := range results {
		signals = append(signals, sigs...)
	}

	if e.metrics != nil {
		for _, s := range signals {
			if s.Type == signal.TypeSystemError {
				e.metrics.RecordClassifierFailsafe()
			}
		}
	}

	return signals, nil
}

// isolateFailure logs and counts one detector failure.
func (e *Engine) isolateFailure(failure *DetectorFailureError) {
	e.logger.Error("detector failed, contributing empty signal set",
		"detector", failure.Detector,
		"elapsed_ms", failure.Elapsed.Milliseconds(),
		"error", failure.Cause,
	)
	if e.metrics != nil {
		e.metrics.RecordDetectorFailure(failure.Detector)
	}
}

// matchRules emits one candidate violation per (rule, matching signal)
// pair and deduplicates by rule id, keeping the candidate with the
// highest-severity matching signal. Exact severity ties keep the first
// candidate encountered; rules are scanned in pack order and signals in
// fan-out order, so the result is deterministic for deterministic
// detector output.
func (e *Engine) matchRules(pack *policy.Pack, signals []signal.Signal) []Violation {
	surviving := make(map[string]int) // rule id -> index into violations
	var violations []Violation

	for i := range pack.Rules {
		rule := &pack.Rules[i]
		for _, sig := range signals {
			if sig.Type != rule.TargetSignalType || sig.Confidence < rule.MinConfidence {
				continue
			}

			candidate := materialize(pack, rule, sig)

			idx, seen := surviving[rule.ID]
			if !seen {
				surviving[rule.ID] = len(violations)
				violations = append(violations, candidate)
				continue
			}
			if candidate.Severity.Rank() > violations[idx].Severity.Rank() {
				violations[idx] = candidate
			}
		}
	}

	return violations
}

// materialize builds the violation for one (rule, signal) match.
func materialize(pack *policy.Pack, rule *policy.Rule, sig signal.Signal) Violation {
	return Violation{
		RuleID:        rule.ID,
		Category:      rule.Category,
		Severity:      rule.Severity,
		Message:       renderMessage(rule.MessageTemplate, sig),
		RegulationIDs: rule.RegulationIDs,
		ScoreImpact:   rule.Weight,
		TriggerSignal: sig,
	}
}

// renderMessage substitutes the rule template placeholders from the
// triggering signal.
func renderMessage(template string, sig signal.Signal) string {
	r := strings.NewReplacer(
		"{trigger_text}", sig.Metadata.TriggerText,
		"{signal_type}", sig.Type,
		"{confidence}", strconv.FormatFloat(sig.Confidence, 'f', 2, 64),
	)
	return r.Replace(template)
}

// computeScore clamps 100 plus the summed score impacts into [0, 100].
func computeScore(violations []Violation) int {
	score := 100
	for _, v := range violations {
		score += v.ScoreImpact
	}
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// hasSevere reports whether any violation is HIGH or CRITICAL.
func hasSevere(violations []Violation) bool {
	for _, v := range violations {
		if v.Severity.Rank() >= signal.SeverityHigh.Rank() {
			return true
		}
	}
	return false
}
