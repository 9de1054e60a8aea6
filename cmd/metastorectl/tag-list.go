package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/metastore/pkg/config"
	"github.com/doodlesbykumbi/metastore/pkg/server/store"
)

// tagListCmd represents the tag list command
var tagListCmd = &cobra.Command{
	Use:   "list [tag]",
	Short: "List tags, or the objects carrying one tag",
	Long: `Without arguments, list the tag names used in a project.
With a tag name, list every object carrying that tag.

Example:
  metastorectl tag list -p iris
  metastorectl tag list -p iris production`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		project, _ := cmd.Flags().GetString("project")

		_, stores, err := openStores(config.Get())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to connect: %v\n", err)
			os.Exit(1)
		}

		if len(args) == 0 {
			err = listTags(cmd.Context(), os.Stdout, stores.Tags, project)
		} else {
			err = listTagged(cmd.Context(), os.Stdout, stores.Tags, project, args[0])
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list tags: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	tagCmd.AddCommand(tagListCmd)
}

func listTags(ctx context.Context, w io.Writer, tags store.TagStore, project string) error {
	names, err := tags.ListTags(ctx, project)
	if err != nil {
		return err
	}
	for _, name := range names {
		if _, err := fmt.Fprintln(w, name); err != nil {
			return err
		}
	}
	return nil
}

func listTagged(ctx context.Context, w io.Writer, tags store.TagStore, project, tag string) error {
	records, err := tags.FindTagged(ctx, project, tag)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "KIND\tID\tKEY\tITER\tUPDATED")
	for _, rec := range records {
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\t%d\t%s\n",
			rec.Kind, rec.ID, rec.Key, rec.Iter, rec.Updated.UTC().Format("2006-01-02T15:04:05Z"))
	}
	return tw.Flush()
}
