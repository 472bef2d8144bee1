package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spiffcs/stalesweep/internal/duration"
	"github.com/spiffcs/stalesweep/internal/format"
	"github.com/spiffcs/stalesweep/internal/stats"
)

// NewCmdHistory creates the history command.
func NewCmdHistory() *cobra.Command {
	var since string
	var limit int
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent sweep run history",
		Long: `Show statistics from recent sweep runs.

Examples:
  stalesweep history                Show the last 10 runs
  stalesweep history --limit 25    Show the last 25 runs
  stalesweep history --since 1w    Show runs from the last week
  stalesweep history -o json       Output as JSON`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(since, limit, outputFormat)
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "Show runs since a relative time (e.g. 24h, 1w, 1mo)")
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of runs to show")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table, json)")

	return cmd
}

func runHistory(since string, limit int, outputFormat string) error {
	store, err := stats.NewStore()
	if err != nil {
		return fmt.Errorf("failed to open run history: %w", err)
	}

	var snaps []stats.Snapshot
	if since != "" {
		cutoff, err := duration.Since(since)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		snaps = store.Since(cutoff)
		if limit > 0 && len(snaps) > limit {
			snaps = snaps[len(snaps)-limit:]
		}
	} else {
		snaps = store.Recent(limit)
	}

	if outputFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snaps)
	}

	if len(snaps) == 0 {
		fmt.Println("No run history recorded yet.")
		return nil
	}

	printHistoryTable(snaps)
	return nil
}

func printHistoryTable(snaps []stats.Snapshot) {
	fmt.Printf("%-8s %6s %8s %7s %9s %7s %7s  %s\n",
		"WHEN", "REPOS", "SCANNED", "MARKED", "UNMARKED", "CLOSED", "FAILED", "NOTES")

	now := time.Now()
	for i := len(snaps) - 1; i >= 0; i-- {
		s := snaps[i]

		var notes []string
		if s.DryRun {
			notes = append(notes, "dry-run")
		}
		if s.Truncated {
			notes = append(notes, "truncated")
		}

		fmt.Printf("%-8s %6d %8d %7d %9d %7d %7d  %s\n",
			format.Age(now.Sub(s.Timestamp)),
			s.RepoCount,
			s.Scanned,
			s.MarkedStale,
			s.Unmarked,
			s.Closed,
			s.FailedOps,
			strings.Join(notes, ","),
		)
	}
}
