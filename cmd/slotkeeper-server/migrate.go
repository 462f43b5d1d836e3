package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	"slotkeeper/backend/internal/config"
	"slotkeeper/backend/internal/store/postgres"
	"slotkeeper/backend/migrations"
)

func migrateCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd.Context(), *cfg, func(ctx context.Context, m *migrate.Migrator) error {
				if err := m.Lock(ctx); err != nil {
					return err
				}
				defer func() { _ = m.Unlock(ctx) }()

				group, err := m.Migrate(ctx)
				if err != nil {
					return err
				}
				if group.IsZero() {
					slog.Info("no new migrations to apply")
					return nil
				}
				slog.Info("migrations applied", slog.String("group", group.String()))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration group",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd.Context(), *cfg, func(ctx context.Context, m *migrate.Migrator) error {
				if err := m.Lock(ctx); err != nil {
					return err
				}
				defer func() { _ = m.Unlock(ctx) }()

				group, err := m.Rollback(ctx)
				if err != nil {
					return err
				}
				if group.IsZero() {
					slog.Info("no migrations to roll back")
					return nil
				}
				slog.Info("migrations rolled back", slog.String("group", group.String()))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd.Context(), *cfg, func(ctx context.Context, m *migrate.Migrator) error {
				ms, err := m.MigrationsWithStatus(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, mig := range ms {
					state := "pending"
					if mig.IsApplied() {
						state = fmt.Sprintf("applied (group %d)", mig.GroupID)
					}
					fmt.Fprintf(out, "%s\t%s\n", mig.Name, state)
				}
				return nil
			})
		},
	})

	return cmd
}

func withMigrator(ctx context.Context, cfg config.Config, fn func(context.Context, *migrate.Migrator) error) error {
	if cfg.StoreDriver != config.StoreDriverPostgres {
		return errors.New("migrations require store.driver=postgres")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	slog.Info("connecting to database", databaseLogArgs(cfg.DatabaseURL)...)
	db, err := postgres.Open(ctx, cfg.DatabaseURL, postgres.PoolConfig{MaxOpenConns: 2})
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer func(db *bun.DB) {
		if err := postgres.Close(db); err != nil {
			slog.Warn("database close failed", slog.Any("err", err))
		}
	}(db)

	m := migrate.NewMigrator(db, migrations.Migrations)
	if err := m.Init(ctx); err != nil {
		return err
	}
	return fn(ctx, m)
}
