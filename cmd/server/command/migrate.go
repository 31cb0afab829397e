package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iliyamo/parking-reservation/internal/database"
)

var migrateSteps int

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Database schema migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		_, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := database.MigrateUp(db); err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}
		v, dirty, err := database.Version(db)
		if err != nil {
			return err
		}
		log.WithField("version", v).WithField("dirty", dirty).Info("schema is up to date")
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the last --steps migrations",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		_, log, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := database.MigrateDown(db, migrateSteps); err != nil {
			return fmt.Errorf("migrate down: %w", err)
		}
		log.WithField("steps", migrateSteps).Info("migrations rolled back")
		return nil
	},
}

func init() {
	migrateDownCmd.Flags().IntVar(&migrateSteps, "steps", 1, "number of migrations to roll back")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
	rootCmd.AddCommand(migrateCmd)
}
