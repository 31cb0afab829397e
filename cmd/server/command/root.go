// Package command holds the parkd command tree.  The root command serves
// the HTTP API; sub-commands manage the schema and administrator accounts.
//
//	parkd [--env-file .env]                      # start the server
//	parkd migrate up|down [--steps N]
//	parkd create-admin --username admin --email admin@example.com
package command

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/iliyamo/parking-reservation/internal/config"
	"github.com/iliyamo/parking-reservation/internal/database"
	"github.com/iliyamo/parking-reservation/internal/logger"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "parkd",
	Short: "Parking lot reservations with a wallet ledger",
	Long: `parkd serves the parking reservation API: administrators manage lots
laid out as grids of spots, users book and release spots and pay for
parking from a prepaid wallet.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return config.LoadDotEnv(envFile)
	},
	RunE: runServe,
}

// Execute runs the command selected by the CLI arguments and exits with a
// non-zero code on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
}

// bootstrap loads the configuration, builds the logger and opens the
// database.  The caller closes the returned pool.
func bootstrap() (config.Config, *logrus.Logger, *sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, nil, nil, fmt.Errorf("config: %w", err)
	}
	log := logger.New(cfg.Logger())
	db, err := database.Open(cfg.Database())
	if err != nil {
		return cfg, log, nil, fmt.Errorf("database: %w", err)
	}
	return cfg, log, db, nil
}
