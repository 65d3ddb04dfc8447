package cmd

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"carecircle-server/internal/config"
	"carecircle-server/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "carecircle",
	Short: "CareCircle maintenance and triage tools",
	Long: `carecircle runs one-off tasks against the CareCircle database and
evaluates vitals with the same triage rules the server uses.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadEnv() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	lg, err := logger.New(cfg.Log.Level, "console", "carecircle-cli")
	if err != nil {
		return nil, nil, err
	}
	return cfg, lg, nil
}
