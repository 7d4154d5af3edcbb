package main

import (
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/nikolayk812/shopcart/internal/config"
	"github.com/nikolayk812/shopcart/internal/migrations"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the guest cart schema to DATABASE_URL",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(envFiles...)
		if err != nil {
			return fmt.Errorf("config.Load: %w", err)
		}
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}

		ctx := cmd.Context()

		conn, err := pgx.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("pgx.Connect: %w", err)
		}
		defer conn.Close(ctx)

		applied, err := migrations.Apply(ctx, conn, logger)
		if err != nil {
			return fmt.Errorf("migrations.Apply: %w", err)
		}

		logger.Info("schema up to date", zap.Strings("files", applied))
		return nil
	},
}
