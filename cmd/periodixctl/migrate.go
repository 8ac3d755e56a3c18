package main

import (
	"fmt"

	"github.com/meltforce/periodix/internal/config"
	"github.com/meltforce/periodix/internal/logging"
	"github.com/meltforce/periodix/internal/storage"
	"github.com/meltforce/periodix/internal/storage/sqlite"
	"github.com/spf13/cobra"
)

func newMigrateCmd(root *rootOptions) *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations for the configured driver",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			log := logging.NewWithWriter(cmd.ErrOrStderr(), root.logLevel, cfg.Log.Format)

			switch cfg.Database.Driver {
			case config.DriverSQLite:
				db, err := sqlite.Open(cmd.Context(), cfg.Database.Path)
				if err != nil {
					return err
				}
				log.Info("sqlite schema applied", "path", cfg.Database.Path)
				return db.Close()
			default:
				if err := storage.RunMigrations(cfg.Database.DSN()); err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				log.Info("migrations applied", "host", cfg.Database.Host, "database", cfg.Database.Name)
				return nil
			}
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "config.yaml", "path to config file")
	return cmd
}
