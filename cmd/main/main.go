package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// app carries what every subcommand needs once the config is loaded.
type app struct {
	configPath string
	config     *Config
	logger     *slog.Logger
}

func main() {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:          "crsexplorer",
		Short:        "Generate a static site describing coordinate reference systems",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}
	cmd.PersistentFlags().StringVar(&a.configPath, "config", "./config.json", "path to the JSON configuration file")

	cmd.AddCommand(
		newGenerateCmd(a),
		newFetchCmd(a),
		newServeCmd(a),
		newVersionCmd(a),
	)
	return cmd
}

func (a *app) load(cmd *cobra.Command) error {
	config, err := LoadConfig(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	applyEnv(config, os.LookupEnv)
	a.config = config
	a.logger = newLogger(cmd.OutOrStdout(), config.Site.LogLevel)
	return nil
}
