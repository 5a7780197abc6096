package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"findhome/internal/config"
	"findhome/internal/database"
	"findhome/internal/logging"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "migrate",
		Short:         "Schema and bootstrap management for findhome",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newUpCommand())
	cmd.AddCommand(newStatusCommand())
	cmd.AddCommand(newBootstrapCommand())
	return cmd
}

func newUpCommand() *cobra.Command {
	var skipBootstrap bool

	cmd := &cobra.Command{
		Use:   "up",
		Short: "Sync the schema, apply SQL migrations and create the superuser",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			cfg, err := connect(ctx)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := database.AutoMigrate(); err != nil {
				return err
			}
			if err := database.ApplySQLMigrations(ctx, cfg.GetDSN()); err != nil {
				return err
			}
			if skipBootstrap {
				return nil
			}
			return database.Bootstrap(ctx, database.GetDB(), cfg.Superuser)
		},
	}

	cmd.Flags().BoolVar(&skipBootstrap, "skip-bootstrap", false, "Do not create the superuser")
	return cmd
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which SQL migrations are applied",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}
			return database.SQLMigrationStatus(ctx, cfg.GetDSN())
		},
	}
}

func newBootstrapCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap",
		Short: "Create the configured superuser and backfill admin profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			cfg, err := connect(ctx)
			if err != nil {
				return err
			}
			defer database.Close()

			return database.Bootstrap(ctx, database.GetDB(), cfg.Superuser)
		},
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)
	return cfg, nil
}

func connect(ctx context.Context) (*config.Config, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	if err := database.Connect(cfg.GetDSN()); err != nil {
		return nil, err
	}
	log.Info().Str("database", cfg.Database.DBName).Msg("Connected")
	return cfg, nil
}
