package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/metastore/pkg/audit"
	"github.com/doodlesbykumbi/metastore/pkg/config"
)

// auditRecentCmd represents the audit recent command
var auditRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Show the most recent audit messages",
	Long: `Show the most recent persisted audit messages, newest first.

Messages are read from METASTORE_AUDIT_DATABASE_URL, falling back to
DATABASE_URL.

Example:
  metastorectl audit recent
  metastorectl audit recent --msgid tag --limit 50
  metastorectl audit recent --output json`,
	Run: func(cmd *cobra.Command, args []string) {
		msgid, _ := cmd.Flags().GetString("msgid")
		limit, _ := cmd.Flags().GetInt("limit")
		output, _ := cmd.Flags().GetString("output")

		cfg := config.Get()
		dbURL := cfg.AuditDatabaseURL
		if dbURL == "" {
			dbURL = cfg.DatabaseURL
		}
		if dbURL == "" {
			fmt.Fprintln(os.Stderr, "No audit database configured")
			os.Exit(1)
		}

		s, err := audit.NewStore(dbURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open audit store: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = s.Close() }()

		if err := showRecentAudit(os.Stdout, s, msgid, limit, output); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read audit messages: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	auditCmd.AddCommand(auditRecentCmd)
	auditRecentCmd.Flags().String("msgid", "", "Only show messages with this message id (store, tag, delete, project)")
	auditRecentCmd.Flags().IntP("limit", "n", 20, "Maximum number of messages")
	auditRecentCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
}

func showRecentAudit(w io.Writer, s *audit.Store, msgid string, limit int, output string) error {
	if limit <= 0 {
		return fmt.Errorf("limit must be positive, got %d", limit)
	}
	messages, err := s.Recent(msgid, limit)
	if err != nil {
		return err
	}

	if output == "json" {
		if messages == nil {
			messages = []audit.Message{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(messages)
	}

	for _, m := range messages {
		_, err := fmt.Fprintf(w, "%s %-8s %s%s\n",
			m.Timestamp.UTC().Format("2006-01-02T15:04:05Z"), m.Msgid, m.Message, formatSdata(m.Sdata))
		if err != nil {
			return err
		}
	}
	return nil
}

func formatSdata(sdata map[string]map[string]string) string {
	if len(sdata) == 0 {
		return ""
	}
	var parts []string
	for id, params := range sdata {
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s.%s=%s", id, k, params[k]))
		}
	}
	sort.Strings(parts)
	return " [" + strings.Join(parts, " ") + "]"
}
