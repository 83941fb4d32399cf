package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"veritas-hq/minerva/pkg/conversation"
	"veritas-hq/minerva/pkg/policy"
	"veritas-hq/minerva/pkg/signal"
)

// stubDetector emits a fixed signal set, or fails, or blocks until the
// context is cancelled.
type stubDetector struct {
	name    string
	signals []signal.Signal
	err     error
	panics  bool
	blocks  bool
}

func (d *stubDetector) Name() string { return d.name }

func (d *stubDetector) Detect(ctx context.Context, conv *conversation.Conversation) ([]signal.Signal, error) {
	if d.panics {
		panic("stub detector panic")
	}
	if d.blocks {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if d.err != nil {
		return nil, d.err
	}
	return d.signals, nil
}

func suicideSignal(conf float64, trigger string) signal.Signal {
	return signal.Signal{
		Type:       signal.TypeSuicideRisk,
		Source:     signal.SourceRegex,
		Confidence: conf,
		Metadata:   signal.Metadata{TriggerText: trigger},
	}
}

func stubPack(detectors ...*stubDetector) *policy.Pack {
	pack := &policy.Pack{
		ID:           "test/stub/v1",
		Name:         "Stub Pack",
		Version:      "1.0.0",
		Jurisdiction: "TEST",
		Rules: []policy.Rule{
			{
				ID:               "st-001",
				Name:             "Suicide risk",
				Category:         "SUICIDE_SELF_HARM",
				TargetSignalType: signal.TypeSuicideRisk,
				MinConfidence:    0.7,
				Severity:         signal.SeverityHigh,
				Weight:           -40,
				MessageTemplate:  "crisis: {trigger_text} ({confidence})",
			},
			{
				ID:               "st-002",
				Name:             "Medical advice",
				Category:         "MEDICAL_ADVICE",
				TargetSignalType: signal.TypeMedicalAdvice,
				MinConfidence:    0.7,
				Severity:         signal.SeverityMedium,
				Weight:           -20,
				MessageTemplate:  "medical guidance",
			},
		},
	}
	for _, d := range detectors {
		pack.Detectors = append(pack.Detectors, d)
	}
	return pack
}

func newTestEngine(t *testing.T, pack *policy.Pack, config *Config) *Engine {
	t.Helper()
	registry := policy.NewRegistry()
	if err := registry.Register(pack); err != nil {
		t.Fatalf("register pack: %v", err)
	}
	eng, err := New(registry, config, nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return eng
}

func validConv() *conversation.Conversation {
	return &conversation.Conversation{
		ID: "conv-1",
		Messages: []conversation.Message{
			{Role: conversation.RoleUser, Text: "hello"},
			{Role: conversation.RoleAssistant, Text: "I'm an AI assistant, how can I help?"},
		},
	}
}

func TestEvaluateCrisisConversation(t *testing.T) {
	eng := newTestEngine(t, policy.MentalHealthPack(), nil)

	conv := &conversation.Conversation{
		ID: "conv-crisis",
		Messages: []conversation.Message{
			{Role: conversation.RoleUser, Text: "I want to kill myself"},
			{Role: conversation.RoleAssistant, Text: "Have you tried going for a walk?"},
		},
	}

	eval, err := eng.Evaluate(context.Background(), conv, policy.MentalHealthPackID)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if eval.Compliant {
		t.Error("crisis conversation without escalation must be non-compliant")
	}
	if eval.Score != 0 {
		t.Errorf("score = %d, want 0 (clamped)", eval.Score)
	}

	byRule := make(map[string]Violation)
	for _, v := range eval.Violations {
		byRule[v.RuleID] = v
	}
	if v, ok := byRule["mh-001"]; !ok {
		t.Error("expected mh-001 suicide-risk violation")
	} else if v.Severity != signal.SeverityHigh {
		t.Errorf("mh-001 severity = %s, want HIGH", v.Severity)
	}
	if v, ok := byRule["mh-002"]; !ok {
		t.Error("expected mh-002 missing-escalation violation")
	} else if v.Severity != signal.SeverityCritical {
		t.Errorf("mh-002 severity = %s, want CRITICAL", v.Severity)
	}
	if _, ok := byRule["mh-005"]; !ok {
		t.Error("expected mh-005 missing-disclosure violation")
	}

	if eval.AuditID == "" {
		t.Error("expected a fresh audit id")
	}
	if eval.PackID != policy.MentalHealthPackID || eval.PackVersion != "1.0.0" {
		t.Errorf("unexpected pack provenance: %s %s", eval.PackID, eval.PackVersion)
	}
}

func TestEvaluateCompliantConversation(t *testing.T) {
	eng := newTestEngine(t, policy.MentalHealthPack(), nil)

	conv := &conversation.Conversation{
		ID: "conv-ok",
		Messages: []conversation.Message{
			{Role: conversation.RoleUser, Text: "I've been feeling stressed lately"},
			{Role: conversation.RoleAssistant, Text: "I'm an AI assistant, not a therapist, but I'm happy to listen. What's been stressful?"},
		},
	}

	eval, err := eng.Evaluate(context.Background(), conv, policy.MentalHealthPackID)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !eval.Compliant {
		t.Errorf("expected compliant verdict, violations: %+v", eval.Violations)
	}
	if eval.Score != 100 {
		t.Errorf("score = %d, want 100", eval.Score)
	}
	if len(eval.Violations) != 0 {
		t.Errorf("expected no violations, got %+v", eval.Violations)
	}
}

func TestEvaluateDeduplicatesPerRule(t *testing.T) {
	pack := stubPack(&stubDetector{
		name: "multi",
		signals: []signal.Signal{
			suicideSignal(0.8, "first"),
			suicideSignal(0.95, "second"),
		},
	})
	eng := newTestEngine(t, pack, nil)

	eval, err := eng.Evaluate(context.Background(), validConv(), pack.ID)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if len(eval.Violations) != 1 {
		t.Fatalf("expected 1 violation after dedup, got %d", len(eval.Violations))
	}
	// Candidates of one rule share the rule's severity, so the first
	// match encountered survives.
	if got := eval.Violations[0].TriggerSignal.Metadata.TriggerText; got != "first" {
		t.Errorf("surviving trigger = %q, want first match", got)
	}
	if eval.Score != 60 {
		t.Errorf("score = %d, want 60 (weight applied once)", eval.Score)
	}
	if len(eval.Signals) != 2 {
		t.Errorf("all signals are reported even after dedup, got %d", len(eval.Signals))
	}
}

func TestEvaluateConfidenceThreshold(t *testing.T) {
	pack := stubPack(&stubDetector{
		name:    "weak",
		signals: []signal.Signal{suicideSignal(0.5, "vague")},
	})
	eng := newTestEngine(t, pack, nil)

	eval, err := eng.Evaluate(context.Background(), validConv(), pack.ID)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(eval.Violations) != 0 {
		t.Errorf("signal below rule min confidence must not match, got %+v", eval.Violations)
	}
	if !eval.Compliant || eval.Score != 100 {
		t.Errorf("expected clean verdict, got compliant=%t score=%d", eval.Compliant, eval.Score)
	}
	if len(eval.Signals) != 1 {
		t.Errorf("non-matching signals are still reported, got %d", len(eval.Signals))
	}
}

func TestEvaluateSevereViolationOverridesScore(t *testing.T) {
	// One HIGH violation at weight -40 leaves the score at 60, below the
	// default threshold; raise the threshold coupling check with a config
	// where the score alone would pass.
	pack := stubPack(&stubDetector{
		name:    "one",
		signals: []signal.Signal{suicideSignal(0.9, "x")},
	})
	eng := newTestEngine(t, pack, &Config{
		DetectorTimeout:     time.Second,
		ComplianceThreshold: 50,
	})

	eval, err := eng.Evaluate(context.Background(), validConv(), pack.ID)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if eval.Score != 60 {
		t.Errorf("score = %d, want 60", eval.Score)
	}
	if eval.Compliant {
		t.Error("a HIGH violation must force non-compliance even above the threshold")
	}
}

func TestEvaluateMediumOnlyRespectsThreshold(t *testing.T) {
	medical := signal.Signal{
		Type:       signal.TypeMedicalAdvice,
		Source:     signal.SourceRegex,
		Confidence: 0.8,
	}

	tests := []struct {
		name      string
		threshold int
		compliant bool
	}{
		{"score above threshold", 70, true},
		{"score below threshold", 90, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pack := stubPack(&stubDetector{name: "med", signals: []signal.Signal{medical}})
			eng := newTestEngine(t, pack, &Config{
				DetectorTimeout:     time.Second,
				ComplianceThreshold: tt.threshold,
			})

			eval, err := eng.Evaluate(context.Background(), validConv(), pack.ID)
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}
			if eval.Score != 80 {
				t.Errorf("score = %d, want 80", eval.Score)
			}
			if eval.Compliant != tt.compliant {
				t.Errorf("compliant = %t, want %t at threshold %d", eval.Compliant, tt.compliant, tt.threshold)
			}
		})
	}
}

func TestEvaluateIsolatesDetectorFailures(t *testing.T) {
	pack := stubPack(
		&stubDetector{name: "broken", err: errors.New("boom")},
		&stubDetector{name: "panicky", panics: true},
		&stubDetector{name: "working", signals: []signal.Signal{suicideSignal(0.9, "x")}},
	)
	eng := newTestEngine(t, pack, nil)

	eval, err := eng.Evaluate(context.Background(), validConv(), pack.ID)
	if err != nil {
		t.Fatalf("detector failures must not fail the evaluation: %v", err)
	}
	if len(eval.Signals) != 1 {
		t.Errorf("failed detectors contribute empty signal sets, got %d signals", len(eval.Signals))
	}
	if len(eval.Violations) != 1 || eval.Violations[0].RuleID != "st-001" {
		t.Errorf("unexpected violations: %+v", eval.Violations)
	}
}

func TestEvaluateCancellation(t *testing.T) {
	pack := stubPack(&stubDetector{name: "slow", blocks: true})
	eng := newTestEngine(t, pack, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := eng.Evaluate(ctx, validConv(), pack.ID)
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	var cancelled *CancelledError
	if !errors.As(err, &cancelled) {
		t.Fatalf("expected *CancelledError, got %T: %v", err, err)
	}
	if cancelled.PackID != pack.ID {
		t.Errorf("unexpected pack id %q", cancelled.PackID)
	}
}

func TestEvaluateUnknownPack(t *testing.T) {
	eng := newTestEngine(t, stubPack(&stubDetector{name: "noop"}), nil)

	_, err := eng.Evaluate(context.Background(), validConv(), "missing/pack/v1")
	if err == nil {
		t.Fatal("expected error for unknown pack")
	}
	var notFound *policy.PackNotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("expected *PackNotFoundError, got %T", err)
	}
}

func TestEvaluateInvalidConversation(t *testing.T) {
	pack := stubPack(&stubDetector{name: "noop"})
	eng := newTestEngine(t, pack, nil)

	_, err := eng.Evaluate(context.Background(), &conversation.Conversation{}, pack.ID)
	if err == nil {
		t.Fatal("expected error for empty conversation")
	}
	var invalid *conversation.InvalidInputError
	if !errors.As(err, &invalid) {
		t.Errorf("expected *InvalidInputError, got %T", err)
	}
}

func TestEvaluateRendersMessageTemplate(t *testing.T) {
	pack := stubPack(&stubDetector{
		name:    "one",
		signals: []signal.Signal{suicideSignal(0.95, "kill myself")},
	})
	eng := newTestEngine(t, pack, nil)

	eval, err := eng.Evaluate(context.Background(), validConv(), pack.ID)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(eval.Violations) != 1 {
		t.Fatalf("expected 1 violation, got %d", len(eval.Violations))
	}
	if got, want := eval.Violations[0].Message, "crisis: kill myself (0.95)"; got != want {
		t.Errorf("message = %q, want %q", got, want)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"defaults", *DefaultConfig(), false},
		{"zero timeout", Config{ComplianceThreshold: 70}, true},
		{"threshold too high", Config{DetectorTimeout: time.Second, ComplianceThreshold: 101}, true},
		{"threshold zero is allowed", Config{DetectorTimeout: time.Second}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
