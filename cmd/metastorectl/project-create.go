package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/metastore/pkg/config"
	"github.com/doodlesbykumbi/metastore/pkg/server/store"
)

// projectCreateCmd represents the project create command
var projectCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a project",
	Long: `Create a project record.

Example:
  metastorectl project create iris
  metastorectl project create iris --description "iris classifier" --label team=ml`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		description, _ := cmd.Flags().GetString("description")
		labels, _ := cmd.Flags().GetStringToString("label")

		_, stores, err := openStores(config.Get())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to connect: %v\n", err)
			os.Exit(1)
		}

		project := store.Project{Name: args[0], Description: description, Labels: labels}
		if err := createProject(cmd.Context(), os.Stdout, stores.Projects, project); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create project: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	projectCmd.AddCommand(projectCreateCmd)
	projectCreateCmd.Flags().StringP("description", "d", "", "Project description")
	projectCreateCmd.Flags().StringToStringP("label", "l", nil, "Project label as key=value (repeatable)")
}

func createProject(ctx context.Context, w io.Writer, projects store.ProjectsStore, project store.Project) error {
	created, err := projects.CreateProject(ctx, project)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "Created project '%s' (id %d)\n", created.Name, created.ID)
	return err
}
