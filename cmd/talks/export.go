package main

import (
	"fmt"
	"os"

	"github.com/matsen/talkportal/internal/storage"
	"github.com/spf13/cobra"
)

var exportOutput string

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the store's talks as JSONL",
	Long: `Export every talk in the store, one JSON object per line, in store order.

The output can be loaded into any backend with 'talks import'.

Examples:
  talks export > talks.jsonl
  talks export -o backup.jsonl --backend mongo`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := mustLoadConfig()
	store := mustOpenStore(ctx, cfg)
	defer store.Close()

	talks, err := store.FindAll(ctx)
	if err != nil {
		exitWithError(ExitError, "reading talks: %v", err)
	}

	if exportOutput == "" {
		if err := storage.EncodeJSONL(os.Stdout, talks); err != nil {
			exitWithError(ExitError, "writing talks: %v", err)
		}
		return nil
	}

	if err := storage.WriteJSONL(exportOutput, talks); err != nil {
		exitWithError(ExitError, "writing %s: %v", exportOutput, err)
	}
	if humanOutput {
		fmt.Printf("Exported %d tech talks to %s\n", len(talks), exportOutput)
	} else {
		outputJSON(ExportResponse{Path: exportOutput, Count: len(talks)})
	}
	return nil
}
