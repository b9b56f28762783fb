// Package cli is the cobra-based command line adapter. Commands hold no
// business logic; they validate arguments, call the injected driving
// services and render the results.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/coursekit/coursekit-cli/internal/core/ports/driving"
	"github.com/coursekit/coursekit-cli/internal/logger"
)

// version is set by Wire from the build.
var version = "dev"

// Services injected by Wire. Commands check for nil so a misconfigured
// binary fails with a clear message instead of a panic.
var (
	fetcher        driving.Fetcher
	publisher      driving.Publisher
	statusReporter driving.StatusReporter
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "coursekit",
	Short: "Instructor-side client for the coursekit submission server",
	Long: `coursekit synchronises student submission repositories from a coursekit
server, publishes assignments and reports submission state.

Configuration lives in ~/.coursekit/config.toml.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// connectServer establishes the server connection before a command that
// needs it runs. nil means no connection step (tests, offline commands).
var connectServer func(ctx context.Context) error

// Wire injects the services the commands depend on. Called from main
// after the adapters are constructed.
func Wire(f driving.Fetcher, p driving.Publisher, s driving.StatusReporter, buildVersion string) {
	fetcher = f
	publisher = p
	statusReporter = s
	if buildVersion != "" {
		version = buildVersion
	}
}

// WireConnector injects the connection step run by server-facing commands.
func WireConnector(connect func(ctx context.Context) error) {
	connectServer = connect
}

func ensureConnected(ctx context.Context) error {
	if connectServer == nil {
		return nil
	}
	return connectServer(ctx)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// signalContext returns a context cancelled on SIGINT/SIGTERM, so an
// interrupted batch stops between targets instead of mid-flight.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
