package main

import (
	"database/sql"
	"io/fs"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	root "wastepolicy"
	"wastepolicy/internal/config"
	"wastepolicy/pkg/logger"
	"wastepolicy/pkg/storage/postgres"
)

func migrateCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the run, policy and job queue tables",
		Run: func(cmd *cobra.Command, _ []string) {
			ctx := logger.WithFields(cmd.Context(), zap.String("command", "migrate"))

			strg, closeStrg := getPostgres(ctx, cfg)
			defer closeStrg()

			db, ok := strg.DB.(*sql.DB)
			if !ok {
				logger.Fatal(ctx, "storage is not backed by a database handle")
			}
			fsys, err := fs.Sub(root.Migrations, "migrations")
			if err != nil {
				logger.Fatal(ctx, "could not open embedded migrations", zap.Error(err))
			}

			done, err := postgres.Migrate(ctx, db, fsys)
			if err != nil {
				logger.Fatal(ctx, "migration failed", zap.Error(err))
			}
			if len(done.Tables) == 0 && len(done.Queue) == 0 {
				logger.Info(ctx, "database already up to date")

				return
			}
			logger.Info(ctx, "database migrated",
				zap.Int64s("tables", done.Tables),
				zap.Ints("queue", done.Queue))
		},
	}
}
