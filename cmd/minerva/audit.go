package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"veritas-hq/minerva/pkg/audit"
	auditstorage "veritas-hq/minerva/pkg/audit/storage"
	"veritas-hq/minerva/pkg/cli"
)

var auditFlags struct {
	db     string
	id     string
	limit  int
	output string
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the audit record store",
}

var auditVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify audit record integrity hashes",
	Long: `Recompute the SHA-256 integrity hash of stored audit records and
compare it against the stored hash. A mismatch means the record was
altered after creation.

Examples:
  # Verify every record in the store
  minerva audit verify --db data/audit.db

  # Verify one record
  minerva audit verify --db data/audit.db --id 6a1f...`,
	RunE: runAuditVerify,
}

var auditShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show one audit record",
	RunE:  runAuditShow,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditVerifyCmd)
	auditCmd.AddCommand(auditShowCmd)

	auditCmd.PersistentFlags().StringVar(&auditFlags.db, "db", "data/audit.db", "audit database path")

	auditVerifyCmd.Flags().StringVar(&auditFlags.id, "id", "", "verify a single record id")
	auditVerifyCmd.Flags().IntVar(&auditFlags.limit, "limit", 10000, "maximum records to verify")

	auditShowCmd.Flags().StringVar(&auditFlags.id, "id", "", "record id (required)")
	auditShowCmd.Flags().StringVarP(&auditFlags.output, "output", "o", "json", "output format (text, json)")
	auditShowCmd.MarkFlagRequired("id")
}

func runAuditVerify(cmd *cobra.Command, args []string) error {
	store, err := openAuditStore()
	if err != nil {
		return cli.NewCommandError("audit verify", err)
	}
	defer store.Close()

	ctx := context.Background()

	var toVerify []*audit.Record
	if auditFlags.id != "" {
		record, err := store.Get(ctx, auditFlags.id)
		if err != nil {
			return cli.NewCommandError("audit verify", err)
		}
		toVerify = append(toVerify, record)
	} else {
		toVerify, err = store.Query(ctx, &audit.Query{Limit: auditFlags.limit})
		if err != nil {
			return cli.NewCommandError("audit verify", err)
		}
	}

	tampered := 0
	for _, record := range toVerify {
		if !record.Verify() {
			tampered++
			fmt.Printf("TAMPERED  %s  (conversation %s, %s)\n",
				record.ID, record.ConversationID, record.Timestamp)
		}
	}

	fmt.Printf("Verified %d records: %d intact, %d tampered\n",
		len(toVerify), len(toVerify)-tampered, tampered)

	if tampered > 0 {
		return cli.NewCommandError("audit verify",
			fmt.Errorf("%d records failed integrity verification", tampered))
	}
	return nil
}

func runAuditShow(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(auditFlags.output)
	if err != nil {
		return cli.NewCommandError("audit show", err)
	}

	store, err := openAuditStore()
	if err != nil {
		return cli.NewCommandError("audit show", err)
	}
	defer store.Close()

	record, err := store.Get(context.Background(), auditFlags.id)
	if err != nil {
		return cli.NewCommandError("audit show", err)
	}

	if format == cli.FormatJSON {
		return cli.WriteJSON(os.Stdout, map[string]any{
			"record":   record,
			"verified": record.Verify(),
		})
	}

	fmt.Printf("ID:           %s\n", record.ID)
	fmt.Printf("Conversation: %s\n", record.ConversationID)
	fmt.Printf("Timestamp:    %s\n", record.Timestamp)
	fmt.Printf("Pack:         %s (%s)\n", record.PackID, record.PackVersion)
	fmt.Printf("Compliant:    %t (score %d)\n", record.Compliant, record.Score)
	fmt.Printf("Verified:     %t\n", record.Verify())
	for _, risk := range record.Risks {
		fmt.Printf("  [%s] %s: %s\n", risk.Severity, risk.Category, risk.Message)
	}
	return nil
}

// openAuditStore opens the audit database read path used by the audit
// subcommands.
func openAuditStore() (audit.Storage, error) {
	if _, err := os.Stat(auditFlags.db); err != nil {
		return nil, fmt.Errorf("audit database %q: %w", auditFlags.db, err)
	}
	cfg := auditstorage.DefaultSQLiteConfig()
	cfg.Path = auditFlags.db
	return auditstorage.NewSQLiteStorage(cfg)
}
