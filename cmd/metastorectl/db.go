package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// dbCmd groups the schema migration commands
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Apply, roll back or inspect metastore schema migrations",
	Long: `Apply, roll back or inspect the metastore schema.

The migrations for the dialect of DATABASE_URL (postgres or sqlite) are
used, either embedded in the binary or read from METASTORE_MIGRATIONS_PATH.

Example:
  metastorectl db migrate
  metastorectl db down 1
  metastorectl db status`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'db' requires a subcommand (migrate, down, status)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(dbCmd)
}
