package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matsen/talkportal/internal/console"
	"github.com/matsen/talkportal/internal/talk"
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// TalkResponse is the response for commands that change one talk.
type TalkResponse struct {
	Status string    `json:"status"`
	Talk   talk.Talk `json:"talk"`
}

// DeleteResponse reports the two outcomes of a delete.
type DeleteResponse struct {
	Title    string `json:"title"`
	InMemory bool   `json:"in_memory"`
	InStore  bool   `json:"in_store"`
}

// ExportResponse is the response for export to a file.
type ExportResponse struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

// ImportResponse summarizes an import run.
type ImportResponse struct {
	Imported int            `json:"imported"`
	Skipped  []SkippedTalk  `json:"skipped"`
	Failed   []FailedImport `json:"failed,omitempty"`
}

// SkippedTalk is a record the import did not add.
type SkippedTalk struct {
	Title  string `json:"title"`
	Reason string `json:"reason"`
}

// FailedImport is a record whose store write failed.
type FailedImport struct {
	Title string `json:"title"`
	Error string `json:"error"`
}

// printTalkHuman prints one talk in the menu's card format.
func printTalkHuman(t talk.Talk) {
	fmt.Println("---------------------------------------------------")
	fmt.Printf("Title: %s\n", t.Title)
	fmt.Printf("Description: %s\n", t.Description)
	fmt.Printf("Posted By: %s\n", t.PostedBy)
	fmt.Printf("Date: %s\n", t.Date)
	fmt.Printf("Tags: %s\n", console.FormatTags(t.Tags))
}

// outputTalks prints a list of talks as JSON, or as cards with --human.
// empty is the human message for an empty list.
func outputTalks(talks []talk.Talk, empty string) {
	if !humanOutput {
		outputJSON(talks)
		return
	}
	if len(talks) == 0 {
		fmt.Println(empty)
		return
	}
	for _, t := range talks {
		printTalkHuman(t)
	}
}
