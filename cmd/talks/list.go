package main

import (
	"github.com/matsen/talkportal/internal/catalog"
	"github.com/spf13/cobra"
)

var listSort string

func init() {
	listCmd.Flags().StringVar(&listSort, "sort", "", "Sort by date: newest or oldest (default: store order)")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tech talks",
	Long: `List all tech talks in store order, or sorted by date with --sort.

Examples:
  talks list
  talks list --sort newest --human`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cat, store := mustOpenCatalog(ctx)
	defer store.Close()

	if listSort != "" {
		order, err := catalog.ParseSortOrder(listSort)
		if err != nil {
			exitWithError(ExitError, "invalid --sort: %v", err)
		}
		if err := cat.SortByDate(order); err != nil {
			exitWithError(exitCodeFor(err), "%v", err)
		}
	}

	outputTalks(cat.All(), "No tech talks available!")
	return nil
}
