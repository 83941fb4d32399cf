package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"veritas-hq/minerva/pkg/cli"
	"veritas-hq/minerva/pkg/policy"
)

var packsFlags struct {
	dir    string
	output string
}

var packsCmd = &cobra.Command{
	Use:   "packs",
	Short: "List the available policy packs",
	Long: `List the built-in policy packs, optionally merged with packs from a
directory of YAML pack files.

Examples:
  # List built-in packs
  minerva packs

  # Include directory packs
  minerva packs --dir ./packs

  # JSON output
  minerva packs --output json`,
	RunE: runPacks,
}

func init() {
	rootCmd.AddCommand(packsCmd)

	packsCmd.Flags().StringVarP(&packsFlags.dir, "dir", "d", "", "pack directory to include")
	packsCmd.Flags().StringVarP(&packsFlags.output, "output", "o", "text", "output format (text, json)")
}

func runPacks(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(packsFlags.output)
	if err != nil {
		return cli.NewCommandError("packs", err)
	}

	registry := policy.NewRegistry()
	for _, pack := range policy.BuiltinPacks() {
		if err := registry.Register(pack); err != nil {
			return cli.NewCommandError("packs", err)
		}
	}

	if packsFlags.dir != "" {
		loaded, err := policy.LoadDir(packsFlags.dir)
		if err != nil {
			return cli.NewCommandError("packs", err)
		}
		for _, pack := range loaded {
			if err := registry.Register(pack); err != nil {
				return cli.NewCommandError("packs", err)
			}
		}
	}

	infos := registry.List()

	if format == cli.FormatJSON {
		return cli.WriteJSON(os.Stdout, map[string]any{
			"packs":           infos,
			"registryVersion": registry.Version(),
		})
	}

	fmt.Printf("Registry version: %s\n\n", registry.Version())
	for _, info := range infos {
		fmt.Printf("%-30s %-10s %-15s rules=%d detectors=%d\n",
			info.ID, info.Version, info.Jurisdiction, info.RuleCount, info.DetectorCount)
	}
	return nil
}
