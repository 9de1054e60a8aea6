package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/metastore/pkg/audit"
	"github.com/doodlesbykumbi/metastore/pkg/config"
	"github.com/doodlesbykumbi/metastore/pkg/server/store"
)

// tagDeleteCmd represents the tag delete command
var tagDeleteCmd = &cobra.Command{
	Use:   "delete <tag>",
	Short: "Remove a tag from every object in a project",
	Long: `Remove a tag from every object of every kind in a project. The tagged
versions themselves are kept.

Example:
  metastorectl tag delete -p iris production`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		project, _ := cmd.Flags().GetString("project")
		cfg := config.Get()
		if project == "" {
			project = cfg.DefaultProject
		}

		_, stores, err := openStores(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to connect: %v\n", err)
			os.Exit(1)
		}
		if err := audit.Configure(cfg.AuditEnabled, cfg.AuditDatabaseURL); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to configure audit: %v\n", err)
			os.Exit(1)
		}

		if err := deleteTag(cmd.Context(), stores.Tags, project, args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to delete tag: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Deleted tag '%s'\n", args[0])
	},
}

func init() {
	tagCmd.AddCommand(tagDeleteCmd)
}

func deleteTag(ctx context.Context, tags store.TagStore, project, tag string) error {
	err := tags.DelTag(ctx, project, tag)
	event := audit.TagEvent{
		ClientIP:  "127.0.0.1",
		Project:   project,
		Tag:       tag,
		Operation: audit.TagDelete,
		Success:   err == nil,
	}
	if err != nil {
		event.ErrorMessage = err.Error()
	}
	audit.Log(event)
	return err
}
