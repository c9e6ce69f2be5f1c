package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(deleteCmd)
}

var deleteCmd = &cobra.Command{
	Use:   "delete <title>",
	Short: "Delete a tech talk",
	Long: `Delete a tech talk by title.

The in-memory match ignores case; the store deletes the exact title only.
Both outcomes are reported.

Examples:
  talks delete "Intro to Rust"`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cat, store := mustOpenCatalog(ctx)
	defer store.Close()

	res, err := cat.Delete(ctx, args[0])
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}

	if humanOutput {
		if res.InMemory {
			fmt.Println("Tech Talk deleted.")
		} else {
			fmt.Println("Tech Talk not found.")
		}
	} else {
		outputJSON(DeleteResponse{
			Title:    strings.TrimSpace(args[0]),
			InMemory: res.InMemory,
			InStore:  res.InStore,
		})
	}
	return nil
}
