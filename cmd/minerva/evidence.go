package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"veritas-hq/minerva/pkg/cli"
	"veritas-hq/minerva/pkg/evidence"
	"veritas-hq/minerva/pkg/records"
)

var evidenceFlags struct {
	db     string
	since  string
	format string
}

var evidenceCmd = &cobra.Command{
	Use:   "evidence",
	Short: "Generate evidence documentation from recorded evaluations",
	Long: `Aggregate the recorded evaluations and conversations into evidence
documentation fragments: record-keeping, risk management, and
post-market monitoring.

Examples:
  # Markdown report over all records
  minerva evidence --db data/records.db

  # JSON fragments for the last 30 days
  minerva evidence --db data/records.db --since 720h --format json`,
	RunE: runEvidence,
}

func init() {
	rootCmd.AddCommand(evidenceCmd)

	evidenceCmd.Flags().StringVar(&evidenceFlags.db, "db", "data/records.db", "records database path")
	evidenceCmd.Flags().StringVar(&evidenceFlags.since, "since", "", "restrict to records newer than this duration (e.g. 720h)")
	evidenceCmd.Flags().StringVar(&evidenceFlags.format, "format", "markdown", "output format (markdown, json)")
}

func runEvidence(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(evidenceFlags.db); err != nil {
		return cli.NewCommandError("evidence", fmt.Errorf("records database %q: %w", evidenceFlags.db, err))
	}

	store, err := records.NewSQLiteStore(evidenceFlags.db)
	if err != nil {
		return cli.NewCommandError("evidence", err)
	}
	defer store.Close()

	query := &records.Query{}
	if evidenceFlags.since != "" {
		d, err := time.ParseDuration(evidenceFlags.since)
		if err != nil {
			return cli.NewCommandError("evidence", fmt.Errorf("invalid --since duration: %w", err))
		}
		start := time.Now().Add(-d)
		query.StartTime = &start
	}

	ctx := context.Background()
	evals, err := store.ListEvaluations(ctx, query)
	if err != nil {
		return cli.NewCommandError("evidence", err)
	}
	convs, err := store.ListConversations(ctx, query)
	if err != nil {
		return cli.NewCommandError("evidence", err)
	}

	builder := evidence.NewBuilder(nil)
	fragments := builder.BuildAll(evals, convs)

	switch evidenceFlags.format {
	case "markdown":
		fmt.Print(evidence.RenderMarkdownAll("Compliance Evidence Report", fragments))
	case "json":
		data, err := evidence.RenderJSONAll(fragments)
		if err != nil {
			return cli.NewCommandError("evidence", err)
		}
		fmt.Println(string(data))
	default:
		return cli.NewCommandError("evidence", fmt.Errorf("unknown format %q (want markdown or json)", evidenceFlags.format))
	}

	return nil
}
