package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"veritas-hq/minerva/pkg/cli"
	"veritas-hq/minerva/pkg/conversation"
	"veritas-hq/minerva/pkg/incident"
	"veritas-hq/minerva/pkg/obligation"
	"veritas-hq/minerva/pkg/policy"
	"veritas-hq/minerva/pkg/policy/engine"
)

var evaluateFlags struct {
	file      string
	packID    string
	riskClass string
	output    string
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate a transcript against a policy pack",
	Long: `Evaluate a plain-text transcript against a policy pack without
starting the server.

The transcript uses "role: text" lines, where role is user, assistant,
or system. Lines without a role prefix continue the previous message.

Examples:
  # Evaluate a transcript file with the built-in mental-health pack
  minerva evaluate --file transcript.txt

  # Read the transcript from stdin and print JSON
  cat transcript.txt | minerva evaluate --file - --output json

  # Evaluate against a specific pack
  minerva evaluate --file transcript.txt --pack eu/mental-health/v1`,
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringVarP(&evaluateFlags.file, "file", "f", "", "transcript file path, or - for stdin (required)")
	evaluateCmd.Flags().StringVarP(&evaluateFlags.packID, "pack", "p", policy.MentalHealthPackID, "policy pack id")
	evaluateCmd.Flags().StringVar(&evaluateFlags.riskClass, "risk-class", string(obligation.RiskHigh), "AI-Act risk class (UNACCEPTABLE, HIGH, LIMITED, MINIMAL)")
	evaluateCmd.Flags().StringVarP(&evaluateFlags.output, "output", "o", "text", "output format (text, json)")
	evaluateCmd.MarkFlagRequired("file")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(evaluateFlags.output)
	if err != nil {
		return cli.NewCommandError("evaluate", err)
	}

	riskClass := obligation.RiskClass(strings.ToUpper(evaluateFlags.riskClass))
	switch riskClass {
	case obligation.RiskUnacceptable, obligation.RiskHigh, obligation.RiskLimited, obligation.RiskMinimal:
	default:
		return cli.NewCommandError("evaluate", fmt.Errorf("unknown risk class %q", evaluateFlags.riskClass))
	}

	text, err := readTranscript(evaluateFlags.file)
	if err != nil {
		return cli.NewCommandError("evaluate", err)
	}

	conv, err := conversation.ParseTranscript(text)
	if err != nil {
		return cli.NewCommandError("evaluate", err)
	}

	registry := policy.NewRegistry()
	for _, pack := range policy.BuiltinPacks() {
		if err := registry.Register(pack); err != nil {
			return cli.NewCommandError("evaluate", err)
		}
	}

	eng, err := engine.New(registry, nil, nil, nil)
	if err != nil {
		return cli.NewCommandError("evaluate", err)
	}

	eval, err := eng.Evaluate(context.Background(), conv, evaluateFlags.packID)
	if err != nil {
		return cli.NewCommandError("evaluate", err)
	}

	cls, _ := incident.Classify(eval.Signals)
	obligations := obligation.MapObligations(eval.Signals, riskClass)

	if format == cli.FormatJSON {
		return cli.WriteJSON(os.Stdout, map[string]any{
			"evaluation":  eval,
			"riskClass":   riskClass,
			"incident":    cls,
			"obligations": obligations,
		})
	}

	printEvaluation(eval, cls, obligations)
	return nil
}

// readTranscript reads the transcript from a file or stdin.
func readTranscript(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read transcript: %w", err)
	}
	return string(data), nil
}

// printEvaluation renders the text form of an evaluation result.
func printEvaluation(eval *engine.Evaluation, cls *incident.Classification, obligations []obligation.Obligation) {
	verdict := "COMPLIANT"
	if !eval.Compliant {
		verdict = "NON-COMPLIANT"
	}

	fmt.Printf("Verdict:  %s\n", verdict)
	fmt.Printf("Score:    %d/100\n", eval.Score)
	fmt.Printf("Pack:     %s (%s)\n", eval.PackID, eval.PackVersion)
	fmt.Printf("Audit ID: %s\n", eval.AuditID)

	if len(eval.Violations) > 0 {
		fmt.Printf("\nViolations (%d):\n", len(eval.Violations))
		for _, v := range eval.Violations {
			fmt.Printf("  [%s] %s (%s, %d): %s\n",
				v.Severity, v.RuleID, v.Category, v.ScoreImpact, v.Message)
		}
	}

	if cls != nil {
		fmt.Printf("\nIncident: %s (%s, reporting required: %t)\n",
			cls.Category, cls.Severity, cls.ReportingRequired)
	}

	if len(obligations) > 0 {
		fmt.Printf("\nObligations (%d):\n", len(obligations))
		for _, o := range obligations {
			fmt.Printf("  %s %s: %s\n", o.ArticleID, o.ComplianceStatus, o.ArticleName)
		}
	}
}
