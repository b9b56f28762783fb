package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <class>",
	Short: "Show submission state for a class",
	Long: `Shows every assignment of a class with its publish state and, per
student, the number of submissions and whether the latest one has been
fetched locally.`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if statusReporter == nil {
		return errors.New("status service not configured")
	}

	ctx, cancel := signalContext()
	defer cancel()

	if err := ensureConnected(ctx); err != nil {
		return fmt.Errorf("connect to server: %w", err)
	}

	class := args[0]
	statuses, err := statusReporter.ClassStatus(ctx, class)
	if err != nil {
		return fmt.Errorf("status failed: %w", err)
	}

	if len(statuses) == 0 {
		cmd.Printf("Class %s has no assignments.\n", class)
		return nil
	}

	for i, status := range statuses {
		if i > 0 {
			cmd.Println()
		}

		state := "unpublished"
		if status.Published {
			state = "published"
		}
		cmd.Printf("%s (%s)\n", status.Assignment, state)
		if status.FetchedPath != "" {
			cmd.Printf("  fetched to %s\n", status.FetchedPath)
		}

		for _, row := range status.Rows {
			mark := " "
			if row.Fetched {
				mark = "*"
			}
			switch {
			case row.SubmissionCount == 0:
				cmd.Printf("  %s %-20s no submissions\n", mark, row.Username)
			default:
				cmd.Printf("  %s %-20s %d submissions, last %s\n",
					mark, row.Username, row.SubmissionCount,
					row.SubmittedAt.Format("2006-01-02 15:04"))
			}
		}
	}

	cmd.Println()
	cmd.Println("* fetched and up to date")
	return nil
}
