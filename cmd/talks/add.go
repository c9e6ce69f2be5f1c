package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	addTitle       string
	addDescription string
	addPostedBy    string
	addTags        string
)

func init() {
	addCmd.Flags().StringVarP(&addTitle, "title", "t", "", "Talk title (required, unique ignoring case)")
	addCmd.Flags().StringVarP(&addDescription, "description", "d", "", "Talk description")
	addCmd.Flags().StringVarP(&addPostedBy, "by", "b", "", "Who posted the talk")
	addCmd.Flags().StringVar(&addTags, "tags", "", "Comma-separated tags")
	rootCmd.AddCommand(addCmd)
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a tech talk",
	Long: `Add a tech talk dated today.

The title must be non-empty and must not match an existing title, ignoring case.

Examples:
  talks add --title "Intro to Rust" --description Basics --by Alice --tags rust,systems`,
	Args: cobra.NoArgs,
	RunE: runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cat, store := mustOpenCatalog(ctx)
	defer store.Close()

	t, err := cat.Add(ctx, addTitle, addDescription, addPostedBy, addTags)
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}

	if humanOutput {
		fmt.Println("Tech Talk added successfully!")
		printTalkHuman(t)
	} else {
		outputJSON(TalkResponse{Status: "added", Talk: t})
	}
	return nil
}
