package main

import (
	"context"
	"fmt"
	"os"

	"github.com/coursekit/coursekit-cli/internal/adapters/driven/config/file"
	"github.com/coursekit/coursekit-cli/internal/adapters/driven/git"
	"github.com/coursekit/coursekit-cli/internal/adapters/driven/sshserver"
	"github.com/coursekit/coursekit-cli/internal/adapters/driven/storage/sqlite"
	"github.com/coursekit/coursekit-cli/internal/adapters/driving/cli"
	"github.com/coursekit/coursekit-cli/internal/core/services"
)

// Set by the release build via ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	cfg := configStore.Config()

	store, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("opening local store: %w", err)
	}
	defer store.Close()

	transport := git.NewShellTransport(configStore.KeyFile())

	channel := sshserver.NewChannel(sshserver.Config{
		Host:     cfg.ServerHost,
		Port:     cfg.ServerPort,
		Username: cfg.ServerUsername,
		KeyFile:  configStore.KeyFile(),
	})
	defer channel.Close()
	snapshots := sshserver.NewSnapshotProvider(channel)

	engine := services.NewSyncEngine(transport, cfg.SyncWorkers)
	paths := store.FetchPathStore()

	cli.Wire(
		services.NewFetchService(engine, snapshots, paths, cfg),
		services.NewPublishService(channel, snapshots, cfg),
		services.NewStatusService(transport, snapshots, paths),
		version,
	)
	// Connection is deferred until a command actually talks to the
	// server, so offline commands work without configuration.
	cli.WireConnector(func(ctx context.Context) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		return channel.Connect(ctx)
	})

	return cli.Execute()
}
