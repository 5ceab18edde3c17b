package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/inscricao/pkg/audit"
	"github.com/doodlesbykumbi/inscricao/pkg/config"
)

// auditCmd represents the audit command
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect persisted audit events",
	Long: `Inspect audit events persisted to AUDIT_DATABASE_URL.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'audit' requires a subcommand (recent)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

var auditRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Print the most recent audit events",
	Long: `Print the most recent audit events, newest first.

Example:
  inscricaoctl audit recent
  inscricaoctl audit recent -n 50 --output json`,
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")
		output, _ := cmd.Flags().GetString("output")

		if err := showRecentAudit(limit, output); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read audit events: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditRecentCmd)
	auditRecentCmd.Flags().IntP("limit", "n", 20, "Number of events to print")
	auditRecentCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
}

func showRecentAudit(limit int, output string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	auditStore, err := audit.NewStore(cfg.AuditDatabaseURL)
	if err != nil {
		return err
	}
	if auditStore == nil {
		return fmt.Errorf("AUDIT_DATABASE_URL is not configured")
	}
	defer func() { _ = auditStore.Close() }()

	messages, err := auditStore.Recent(context.Background(), limit)
	if err != nil {
		return err
	}
	return printAuditMessages(os.Stdout, messages, output)
}

func printAuditMessages(w io.Writer, messages []audit.Message, output string) error {
	switch output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(messages)
	case "text":
		for _, m := range messages {
			if _, err := fmt.Fprintf(w, "%s %-12s sev=%d %s\n",
				m.Timestamp.UTC().Format("2006-01-02T15:04:05Z"), m.Msgid, m.Severity, m.Message); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", output)
	}
}
