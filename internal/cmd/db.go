package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"carecircle-server/internal/models"
	"carecircle-server/internal/repository"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, lg, err := loadEnv()
		if err != nil {
			return err
		}
		db, err := models.Open(models.DatabaseConfig{DSN: cfg.Database.DSN})
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		if err := models.Migrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		lg.Info("schema migrated", zap.Int("models", len(models.All())))
		return nil
	},
}

var seedFacilitiesCmd = &cobra.Command{
	Use:   "seed-facilities",
	Short: "Insert the default offline facility directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, lg, err := loadEnv()
		if err != nil {
			return err
		}
		db, err := models.Open(models.DatabaseConfig{DSN: cfg.Database.DSN})
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		n, err := repository.NewGormStore(db).Facilities.Seed(cmd.Context(), models.DefaultFacilities())
		if err != nil {
			return err
		}
		lg.Info("facilities seeded", zap.Int("inserted", n))
		fmt.Fprintf(cmd.OutOrStdout(), "inserted %d facilities\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd, seedFacilitiesCmd)
}
