package main

import (
	"os"

	"github.com/caarlos0/env/v10"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/copydesk/copydesk/internal/repository"
)

type migrateConfig struct {
	DatabaseURL string `env:"DATABASE_URL" envDefault:"sqlite:copydesk.db"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"json"`
}

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending credential store migrations",
		Long: `Apply every pending migration to the credential store named by
DATABASE_URL and exit. serve applies migrations on start as well.`,
		RunE: runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	var cfg migrateConfig
	if err := env.Parse(&cfg); err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}

	logger := initLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	store, err := repository.Open(cmd.Context(), cfg.DatabaseURL, logger)
	if err != nil {
		return oops.Code("MIGRATION_FAILED").
			With("database_url", redactURL(cfg.DatabaseURL)).
			Errorf("%s", sanitizeError(err, cfg.DatabaseURL))
	}
	defer store.Close()

	cmd.Println("Migrations completed successfully")
	return nil
}
