package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmehdipour/email-dispatch/internal/config"
	"github.com/jmehdipour/email-dispatch/internal/db"
	"github.com/jmehdipour/email-dispatch/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the blacklist schema (idempotent)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		sqlDB, err := db.NewMySQLConnection(ctx, cfg.MySQL)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer sqlDB.Close()

		sqlBytes, err := migrations.FS.ReadFile(migrations.Init)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", migrations.Init, err)
		}

		if _, err := sqlDB.ExecContext(ctx, string(sqlBytes)); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), ">> Migration complete")
		return nil
	},
}
