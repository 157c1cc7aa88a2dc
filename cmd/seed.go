package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jjenkins/agencydash/internal/logging"
	"github.com/jjenkins/agencydash/internal/service"
	"github.com/jjenkins/agencydash/internal/store"
)

var (
	seedAgenciesFile string
	seedContactsFile string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed agencies and contacts from CSV exports",
	Long: `Seed loads agencies and contacts from CSV files into PostgreSQL.

Rows that already exist are left unchanged, so seeding is safe to repeat.
A contact keeps its agency only if that agency appears in the agencies file.
Missing files are skipped with a warning.

Examples:
  # Seed from the default files in the current directory
  ./agencydash seed

  # Seed from explicit paths
  ./agencydash seed --agencies data/agencies.csv --contacts data/contacts.csv`,
	Run: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().StringVarP(&seedAgenciesFile, "agencies", "a", "agencies_agency_rows.csv", "Agencies CSV file")
	seedCmd.Flags().StringVarP(&seedContactsFile, "contacts", "C", "contacts_contact_rows.csv", "Contacts CSV file")
}

func runSeed(cmd *cobra.Command, args []string) {
	cfg, logger, closer := setup()
	defer closer.Close()
	log := logging.Component(logger, "seed")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Connecting to database...")
	db, err := store.NewDB(cfg.Database.URL, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := store.Migrate(ctx, db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	importer := service.NewImporter(
		service.NewParser(),
		store.NewAgencyStore(db),
		store.NewContactStore(db),
		log,
	)

	stats, err := importer.Import(ctx, seedAgenciesFile, seedContactsFile)
	importer.PrintSummary(stats)
	if err != nil {
		if ctx.Err() != nil {
			log.Warn("Seed cancelled")
			os.Exit(1)
		}
		log.Fatalf("Seed failed: %v", err)
	}

	if stats.AgenciesFailed > 0 {
		os.Exit(1)
	}
}
