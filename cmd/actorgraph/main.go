package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/actorgraph/cmd/actorgraph/commands"
	"github.com/teranos/actorgraph/display"
	"github.com/teranos/actorgraph/logger"
)

var rootCmd = &cobra.Command{
	Use:   "actorgraph",
	Short: "actorgraph - explore actor collaboration graphs",
	Long: `actorgraph - an actor and movie collaboration graph explorer.

actorgraph serves the actor/movie REST proxy and runs one exploration
session per websocket client: select actors, expand their top
collaborators, compare selections over time.

Available commands:
  server  - Start the REST proxy and websocket sessions
  explore - Run one exploration headlessly and print the graph
  db      - Migrate, import, export and inspect the actor store
  am      - Manage actorgraph configuration ("as configured")
  version - Show version information

Examples:
  actorgraph db import movies.json   # Load a dataset
  actorgraph server -v               # Serve on :4201 with info logs
  actorgraph explore "Zac Efron"     # Print the first expansion
  actorgraph am show --sources       # Show settings and where they came from`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Commands whose stdout is meant for pipes stay quiet
		if cmd.Parent() != nil && cmd.Parent().Name() == "am" && (cmd.Name() == "show" || cmd.Name() == "get") {
			return nil
		}

		verbosity, _ := cmd.Flags().GetCount("verbose")
		if verbosity == 0 && cmd.Name() == "server" {
			verbosity = logger.VerbosityInfo
		}
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")
		display.Compact, _ = cmd.Flags().GetBool("compact")

		if err := logger.InitializeWithLevel(jsonLogs, logger.VerbosityToLevel(verbosity)); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Emit logs as JSON")
	rootCmd.PersistentFlags().Bool("compact", false, "Print JSON output on one line")

	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.DbCmd)
	rootCmd.AddCommand(commands.ExploreCmd)
	rootCmd.AddCommand(commands.ServerCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
