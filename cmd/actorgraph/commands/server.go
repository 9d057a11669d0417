package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/actorgraph/am"
	"github.com/teranos/actorgraph/errors"
	"github.com/teranos/actorgraph/logger"
	"github.com/teranos/actorgraph/server"
	"github.com/teranos/actorgraph/sym"
)

// ServerCmd starts the REST proxy and the websocket exploration sessions
var ServerCmd = &cobra.Command{
	Use:     "server",
	Aliases: []string{"serve"},
	Short:   sym.Serve + " Start the actor/movie REST proxy and websocket exploration sessions",
	Long: `Launch the actorgraph server. The REST API under /api answers the explorer's
actor and movie queries; every websocket client on /ws gets its own
exploration session. /health serves liveness checks and /metrics serves Prometheus.`,
	RunE: runServer,
}

var serverNoWatch bool

func init() {
	ServerCmd.Flags().StringVar(&dbPathOverride, "db-path", "", "SQLite database path (overrides config)")
	ServerCmd.Flags().BoolVar(&serverNoWatch, "no-watch", false, "Do not reload the project config file on change")
}

func runServer(cmd *cobra.Command, args []string) error {
	// Get verbosity flag - default to 1 (Info) for server
	verbosity, _ := cmd.Flags().GetCount("verbose")
	if verbosity == 0 {
		verbosity = logger.VerbosityInfo
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}

	st, location, err := openStore(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	repo, source, err := newRepository(cfg, st)
	if err != nil {
		return err
	}
	opts := []server.Option{server.WithRepository(repo), server.WithVerbosity(verbosity)}

	if path := am.FindProjectConfig(); path != "" && !serverNoWatch {
		watcher, err := am.NewConfigWatcher(path)
		if err != nil {
			pterm.Warning.Printf("Config watcher disabled: %v\n", err)
		} else {
			am.SetGlobalWatcher(watcher)
			opts = append(opts, server.WithConfigWatcher(watcher))
		}
	}

	srv, err := server.New(st, cfg, opts...)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	if logger.ShouldOutput(verbosity, logger.OutputStartup) {
		printStartupBanner(verbosity, cfg, location, source)
	}

	// Start server in background
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(context.Background())
	}()

	// Wait for shutdown signal (Ctrl+C)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		// Server failed to start or stopped unexpectedly
		return errors.Wrap(err, "server failed")
	case <-sigChan:
		// First Ctrl+C - graceful shutdown
		pterm.Info.Println("\nShutting down gracefully (press Ctrl+C again to force)...")

		shutdownDone := make(chan error, 1)
		go func() {
			shutdownDone <- srv.Stop()
		}()

		// Wait for either shutdown completion or second Ctrl+C
		select {
		case err := <-shutdownDone:
			if err != nil {
				return fmt.Errorf("shutdown error: %w", err)
			}
			pterm.Success.Println("Server stopped cleanly")
			return nil
		case <-sigChan:
			// Second Ctrl+C - force immediate exit
			pterm.Warning.Println("\nForce shutdown - exiting immediately")
			os.Exit(1)
			return nil // unreachable
		}
	}
}
