package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// configurationCmd groups the commands that inspect and apply metastore.yml
var configurationCmd = &cobra.Command{
	Use:   "configuration",
	Short: "Inspect metastore.yml and push changes to a running server",
	Long: `Inspect the effective metastore settings and where each one came from
(default, metastore.yml or environment), or validate the file and signal a
running server to pick up new log settings.

Example:
  metastorectl configuration show --output json
  metastorectl configuration apply`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'configuration' requires a subcommand (show, apply)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(configurationCmd)
}
