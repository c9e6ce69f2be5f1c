package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/matsen/talkportal/internal/catalog"
	"github.com/matsen/talkportal/internal/storage"
	"github.com/matsen/talkportal/internal/talk"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

// DefaultImportRate is the default number of store writes per second.
const DefaultImportRate = 20

var importRate float64

func init() {
	importCmd.Flags().Float64Var(&importRate, "rate", DefaultImportRate, "Maximum store writes per second (0 for unlimited)")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import <file.jsonl>",
	Short: "Import talks from a JSONL file",
	Long: `Import talks from a JSONL file, such as one written by 'talks export'.

Each record is added like a new talk: it is dated today and skipped if its
title already exists, ignoring case. Writes are throttled with --rate.

Examples:
  talks import backup.jsonl
  talks import backup.jsonl --backend sqlite --rate 0 --human`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if importRate < 0 {
		exitWithError(ExitError, "--rate must not be negative, got %v", importRate)
	}

	talks, err := storage.ReadJSONL(args[0])
	if err != nil {
		exitWithError(ExitDataError, "reading %s: %v", args[0], err)
	}

	cat, store := mustOpenCatalog(ctx)
	defer store.Close()

	result, err := importTalks(ctx, cat, talks, newImportLimiter(importRate))
	if err != nil {
		exitWithError(ExitError, "importing: %v", err)
	}

	if humanOutput {
		fmt.Printf("Imported %d tech talks\n", result.Imported)
		for _, s := range result.Skipped {
			fmt.Printf("  skipped %q: %s\n", s.Title, s.Reason)
		}
		for _, f := range result.Failed {
			fmt.Printf("  failed %q: %s\n", f.Title, f.Error)
		}
	} else {
		outputJSON(result)
	}
	return nil
}

// newImportLimiter returns a limiter allowing perSecond writes per second.
// Zero means unlimited.
func newImportLimiter(perSecond float64) *rate.Limiter {
	if perSecond == 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

// importTalks adds each talk through the catalog, waiting on limiter before
// every store write. Rejected titles are skipped and store failures are
// recorded; only a cancelled context stops the run.
func importTalks(ctx context.Context, cat *catalog.Catalog, talks []talk.Talk, limiter *rate.Limiter) (ImportResponse, error) {
	result := ImportResponse{Skipped: []SkippedTalk{}}

	for _, t := range talks {
		if err := cat.CheckNewTitle(ctx, t.Title); err != nil {
			if errors.Is(err, talk.ErrValidation) || errors.Is(err, talk.ErrDuplicate) {
				result.Skipped = append(result.Skipped, SkippedTalk{Title: t.Title, Reason: err.Error()})
				continue
			}
			return result, err
		}

		if err := limiter.Wait(ctx); err != nil {
			return result, fmt.Errorf("waiting for rate limiter: %w", err)
		}

		if _, err := cat.AddTags(ctx, t.Title, t.Description, t.PostedBy, t.Tags); err != nil {
			logger.Warn().Err(err).Str("title", t.Title).Msg("import failed")
			result.Failed = append(result.Failed, FailedImport{Title: t.Title, Error: err.Error()})
			continue
		}
		result.Imported++
	}

	logger.Debug().
		Int("imported", result.Imported).
		Int("skipped", len(result.Skipped)).
		Int("failed", len(result.Failed)).
		Msg("import finished")
	return result, nil
}
