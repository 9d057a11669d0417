package commands

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/actorgraph/am"
	"github.com/teranos/actorgraph/db"
	"github.com/teranos/actorgraph/errors"
	"github.com/teranos/actorgraph/logger"
	"github.com/teranos/actorgraph/sym"
)

// DbCmd represents the db (database) command
var DbCmd = &cobra.Command{
	Use:   "db",
	Short: sym.DB + " Manage the actor/movie store",
	Long: sym.DB + ` db - Manage the actor/movie store

Migrate the SQLite schema, load and dump datasets, and show statistics.
Dataset files are JSON, YAML or TOML, chosen by extension, holding
"actors" and "movies" lists.

Examples:
  actorgraph db migrate                   # Apply pending migrations
  actorgraph db import movies.json        # Upsert a dataset
  actorgraph db import movies.yaml --replace
  actorgraph db export backup.toml        # Dump the whole store
  actorgraph db stats                     # Counts and year range`,
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending SQLite migrations",
	Args:  cobra.NoArgs,
	RunE:  runDbMigrate,
}

var dbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show store statistics",
	Long:  "Display actor, movie and credit counts and the release year range of the configured store",
	Args:  cobra.NoArgs,
	RunE:  runDbStats,
}

var dbImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a dataset file",
	Long:  "Upsert every actor and movie of a JSON, YAML or TOML dataset. With --replace the store is emptied first.",
	Args:  cobra.ExactArgs(1),
	RunE:  runDbImport,
}

var dbExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export the store to a dataset file",
	Args:  cobra.ExactArgs(1),
	RunE:  runDbExport,
}

var importReplace bool

func init() {
	DbCmd.PersistentFlags().StringVar(&dbPathOverride, "db-path", "", "SQLite database path (overrides config)")
	dbImportCmd.Flags().BoolVar(&importReplace, "replace", false, "Delete all actors and movies before importing")

	DbCmd.AddCommand(dbMigrateCmd)
	DbCmd.AddCommand(dbStatsCmd)
	DbCmd.AddCommand(dbImportCmd)
	DbCmd.AddCommand(dbExportCmd)
}

func runDbMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Database.Backend == am.BackendMongo {
		pterm.Info.Println("MongoDB collections are schemaless, nothing to migrate")
		return nil
	}

	path := cfg.GetDatabasePath()
	database, err := db.Open(path, logger.Logger)
	if err != nil {
		return errors.Wrapf(err, "failed to open database at %s", path)
	}
	defer database.Close()

	if err := db.Migrate(database, logger.Logger); err != nil {
		return errors.Wrapf(err, "failed to run migrations on %s", path)
	}

	versions, err := db.AppliedVersions(database)
	if err != nil {
		return err
	}
	pterm.Success.Printf("%s is at schema %s (%d migrations applied)\n", path, lastOr(versions, "none"), len(versions))
	return nil
}

func runDbStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()

	st, location, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	stats, err := st.Stats(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("%s Store Statistics\n", sym.DB)
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")
	fmt.Printf("Backend:   %s\n", cfg.Database.Backend)
	fmt.Printf("Location:  %s\n", location)
	fmt.Printf("Actors:    %d\n", stats.Actors)
	fmt.Printf("Movies:    %d\n", stats.Movies)
	fmt.Printf("Credits:   %d\n", stats.Credits)
	if stats.Movies > 0 {
		fmt.Printf("Years:     %d - %d\n", stats.MinYear, stats.MaxYear)
	}
	return nil
}

func runDbImport(cmd *cobra.Command, args []string) error {
	ds, err := readDataset(args[0])
	if err != nil {
		return err
	}
	if err := ds.Validate(); err != nil {
		return errors.Wrapf(err, "invalid dataset %s", args[0])
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()

	st, location, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if importReplace {
		d, ok := st.(dropper)
		if !ok {
			return errors.Newf("%s backend cannot be emptied", cfg.Database.Backend)
		}
		if err := d.Drop(ctx); err != nil {
			return err
		}
		pterm.Info.Printf("Emptied %s\n", location)
	}

	if err := st.Import(ctx, ds); err != nil {
		return err
	}
	pterm.Success.Printf("Imported %d actors and %d movies into %s\n", len(ds.Actors), len(ds.Movies), location)
	return nil
}

func runDbExport(cmd *cobra.Command, args []string) error {
	if _, err := formatOf(args[0]); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()

	st, _, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ds, err := st.Export(ctx)
	if err != nil {
		return err
	}
	if err := writeDataset(args[0], *ds); err != nil {
		return err
	}
	pterm.Success.Printf("Exported %d actors and %d movies to %s\n", len(ds.Actors), len(ds.Movies), args[0])
	return nil
}

func lastOr(values []string, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	return values[len(values)-1]
}
