package main

import (
	"errors"
	"fmt"

	"github.com/matsen/talkportal/internal/talk"
	"github.com/spf13/cobra"
)

var (
	searchTitle    string
	searchTag      string
	searchPostedBy string
)

func init() {
	searchCmd.Flags().StringVarP(&searchTitle, "title", "t", "", "Find the talk with this title (ignoring case)")
	searchCmd.Flags().StringVar(&searchTag, "tag", "", "Find talks carrying this tag (ignoring case)")
	searchCmd.Flags().StringVarP(&searchPostedBy, "by", "b", "", "Find talks posted by this person (ignoring case)")
	searchCmd.MarkFlagsMutuallyExclusive("title", "tag", "by")
	searchCmd.MarkFlagsOneRequired("title", "tag", "by")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search tech talks by title, tag, or author",
	Long: `Search tech talks. All matches are exact and ignore case.

Flags (exactly one):
  --title, -t  - First talk with this title
  --tag        - Every talk carrying this tag
  --by, -b     - Every talk posted by this person

Examples:
  talks search --title "intro to rust"
  talks search --tag systems --human
  talks search --by alice`,
	Args: cobra.NoArgs,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cat, store := mustOpenCatalog(ctx)
	defer store.Close()

	switch {
	case cmd.Flags().Changed("title"):
		t, err := cat.SearchByTitle(searchTitle)
		if errors.Is(err, talk.ErrNotFound) {
			if humanOutput {
				fmt.Println("Not found in portal.")
				return nil
			}
			exitWithError(ExitError, "%v", err)
		}
		if err != nil {
			exitWithError(ExitError, "searching: %v", err)
		}
		if humanOutput {
			printTalkHuman(t)
		} else {
			outputJSON(t)
		}
	case cmd.Flags().Changed("tag"):
		outputTalks(cat.SearchByTag(searchTag), "No talks found with this tag.")
	default:
		outputTalks(cat.SearchByPostedBy(searchPostedBy), "No talks found by this author.")
	}
	return nil
}
