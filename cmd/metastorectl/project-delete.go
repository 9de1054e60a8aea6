package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/metastore/pkg/config"
)

// projectDeleteCmd represents the project delete command
var projectDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a project record",
	Long: `Delete a project record. Versions, tags and runs stored under the
project name are kept.

Example:
  metastorectl project delete iris`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		_, stores, err := openStores(config.Get())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to connect: %v\n", err)
			os.Exit(1)
		}

		if err := stores.Projects.DeleteProject(cmd.Context(), args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to delete project: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Deleted project '%s'\n", args[0])
	},
}

func init() {
	projectCmd.AddCommand(projectDeleteCmd)
}
