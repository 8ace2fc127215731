package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/adityawarmanfw/lokerhub/internal/audit"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Browse ingestion runs interactively (TUI)",
	Long:  "Shows the run picker TUI, then launches the split-pane record browser for the chosen run artifact.",
	RunE:  runAuditCmd,
}

func init() {
	rootCmd.AddCommand(auditCmd)
}

func runAuditCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	runs, err := audit.ListRuns(cfg.ArtifactDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to list runs: %v\n", err)
		os.Exit(1)
	}
	if len(runs) == 0 {
		fmt.Printf("No run artifacts under %s. Run `lokerhub ingest` first.\n", cfg.ArtifactDir)
		return nil
	}

	for {
		choice, err := audit.RunPicker(runs)
		if err != nil {
			fmt.Printf("Picker error: %v\n", err)
			return nil
		}
		if choice < 0 {
			return nil
		}
		run := runs[choice]

		records, err := audit.LoadRecords(run.Path)
		if err != nil {
			fmt.Printf("Error loading run: %v\n", err)
			continue
		}

		wantQuit, err := audit.RunBrowser(run.Name, records)
		if err != nil {
			fmt.Printf("TUI error: %v\n", err)
		}
		if wantQuit {
			return nil
		}
		// else: loop → back to picker
	}
}
