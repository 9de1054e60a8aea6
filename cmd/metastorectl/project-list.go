package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/metastore/pkg/config"
	"github.com/doodlesbykumbi/metastore/pkg/server/store"
)

// projectListCmd represents the project list command
var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	Long: `List projects in creation order.

Example:
  metastorectl project list
  metastorectl project list --output json`,
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")

		_, stores, err := openStores(config.Get())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to connect: %v\n", err)
			os.Exit(1)
		}

		if err := listProjects(cmd.Context(), os.Stdout, stores.Projects, output); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list projects: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	projectCmd.AddCommand(projectListCmd)
	projectListCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
}

func listProjects(ctx context.Context, w io.Writer, projects store.ProjectsStore, output string) error {
	if output == "json" {
		list, err := projects.ListProjects(ctx, store.ProjectsFormatFull)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}

	list, err := projects.ListProjects(ctx, store.ProjectsFormatNameOnly)
	if err != nil {
		return err
	}
	for _, p := range list {
		if _, err := fmt.Fprintln(w, p.Name); err != nil {
			return err
		}
	}
	return nil
}
