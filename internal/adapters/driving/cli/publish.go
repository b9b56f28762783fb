package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coursekit/coursekit-cli/internal/core/domain"
)

var publishCmd = &cobra.Command{
	Use:   "publish <class> <assignment>",
	Short: "Publish an assignment on the server",
	Long: `Asks the server to publish an assignment. The server emails every
student a clone URL; this command streams the server's progress until
it reports success or failure.`,
	Args: cobra.ExactArgs(2),
	RunE: runPublish,
}

func init() {
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	if publisher == nil {
		return errors.New("publish service not configured")
	}

	ctx, cancel := signalContext()
	defer cancel()

	if err := ensureConnected(ctx); err != nil {
		return fmt.Errorf("connect to server: %w", err)
	}

	class, assignment := args[0], args[1]
	cmd.Printf("Publishing assignment %s in class %s\n", assignment, class)

	var failed bool
	err := publisher.Publish(ctx, class, assignment, func(resp domain.ServerResponse) {
		switch resp.Type {
		case domain.ResponseSuccess:
			cmd.Println("Assignment successfully published")
		case domain.ResponseError:
			cmd.Println("Error publishing assignment:")
			cmd.Println(resp.Message)
			failed = true
		case domain.ResponseWarning:
			cmd.Println(resp.Message)
		case domain.ResponseTimeout:
			// Distinct from an error: the server may still have
			// published, we just never heard back.
			cmd.Println("Server response timeout. Publish status unknown.")
		}
	})
	if err != nil {
		return fmt.Errorf("publish failed: %w", err)
	}
	if failed {
		return errors.New("server reported a publish error")
	}
	return nil
}
