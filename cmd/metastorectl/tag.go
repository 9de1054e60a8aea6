package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// tagCmd represents the tag command
var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Inspect and remove tags",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'tag' requires a subcommand (list, delete)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(tagCmd)
	tagCmd.PersistentFlags().StringP("project", "p", "", "Project (defaults to the configured default project)")
}
