// Package cmd holds the barrierbet command line interface.
package cmd

import (
	"context"

	"barrierbet/config"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "barrierbet",
	Short: "Bet settlement service for the barrier game",
	Long: `barrierbet keeps player balances and settles barrier game sessions.
Run "barrierbet serve" to start the HTTP API, or use the operator
commands below against the configured database.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command. ctx is cancelled on shutdown signals.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// setup validates the configuration before any command touches it
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	configureLogging(cfg)
	return nil
}

func configureLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
		return
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}
