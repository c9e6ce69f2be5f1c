package main

import (
	"fmt"

	"github.com/matsen/talkportal/internal/talk"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	updateDescription string
	updatePostedBy    string
	updateTags        string
)

func init() {
	updateCmd.Flags().StringVarP(&updateDescription, "description", "d", "", "New description")
	updateCmd.Flags().StringVarP(&updatePostedBy, "by", "b", "", "New posted-by name")
	updateCmd.Flags().StringVar(&updateTags, "tags", "", "New comma-separated tags (replaces all tags)")
	rootCmd.AddCommand(updateCmd)
}

var updateCmd = &cobra.Command{
	Use:   "update <title>",
	Short: "Update a tech talk",
	Long: `Update the first talk whose title matches, ignoring case.

Only the fields given as flags change; an explicitly empty value clears the
field. The date is always reset to today, even when no field is given.

Examples:
  talks update "Intro to Rust" --by Alicia
  talks update "intro to rust" --tags rust,borrowck --description Ownership`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

// updateFromFlags builds an update from the flags the user set.
func updateFromFlags(flags *pflag.FlagSet) talk.Update {
	var u talk.Update
	if flags.Changed("description") {
		u.Description = &updateDescription
	}
	if flags.Changed("by") {
		u.PostedBy = &updatePostedBy
	}
	if flags.Changed("tags") {
		u.Tags = &updateTags
	}
	return u
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cat, store := mustOpenCatalog(ctx)
	defer store.Close()

	t, err := cat.Update(ctx, args[0], updateFromFlags(cmd.Flags()))
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}

	if humanOutput {
		fmt.Println("Tech Talk updated successfully!")
		printTalkHuman(t)
	} else {
		outputJSON(TalkResponse{Status: "updated", Talk: t})
	}
	return nil
}
