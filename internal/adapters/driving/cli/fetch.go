package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coursekit/coursekit-cli/internal/core/domain"
	"github.com/coursekit/coursekit-cli/internal/core/ports/driving"
)

var fetchDest string

var fetchCmd = &cobra.Command{
	Use:   "fetch <class> [assignment]",
	Short: "Fetch student submissions from the server",
	Long: `Fetches the reports repository and every student submission repository
for one assignment, or for all assignments of a class.

Repositories already matching the server are skipped; existing copies
that fell behind are updated in place.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchDest, "dest", "", "destination directory (default: configured submissions directory)")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	if fetcher == nil {
		return errors.New("fetch service not configured")
	}

	ctx, cancel := signalContext()
	defer cancel()

	if err := ensureConnected(ctx); err != nil {
		return fmt.Errorf("connect to server: %w", err)
	}

	class := args[0]

	var reports []*driving.FetchReport
	if len(args) == 2 {
		cmd.Printf("Fetching %s in class %s...\n", args[1], class)
		report, err := fetcher.FetchAssignment(ctx, class, args[1], fetchDest)
		if err != nil {
			return fmt.Errorf("fetch failed: %w", err)
		}
		reports = append(reports, report)
	} else {
		cmd.Printf("Fetching all assignments in class %s...\n", class)
		var err error
		reports, err = fetcher.FetchClass(ctx, class, fetchDest)
		if err != nil {
			return fmt.Errorf("fetch failed: %w", err)
		}
	}

	failed := 0
	for _, report := range reports {
		printFetchReport(cmd, report)
		failed += report.Summary.Failed
	}

	if failed > 0 {
		return fmt.Errorf("%d repositories failed to fetch", failed)
	}
	return nil
}

func printFetchReport(cmd *cobra.Command, report *driving.FetchReport) {
	s := report.Summary
	cmd.Printf("%s: %d cloned, %d updated, %d up to date", report.Assignment, s.Cloned, s.Pulled, s.Skipped)
	if s.Failed > 0 {
		cmd.Printf(", %d failed", s.Failed)
	}
	cmd.Printf(" -> %s\n", report.DestPath)

	for _, outcome := range report.Outcomes {
		if outcome.Status == domain.StatusFailed {
			cmd.Printf("  failed: %s: %v\n", outcome.Target.LocalPath, outcome.Err)
		}
	}
}
