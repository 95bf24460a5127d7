package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/erp/kernel/internal/infrastructure/logger"
	"github.com/erp/kernel/internal/infrastructure/migration"
	"go.uber.org/zap"
)

func migrateCommand(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: migrate needs a subcommand", errUsage)
	}
	ctx = a.runContext(ctx, "migrate")
	log := logger.L(ctx)
	sub, rest := args[0], args[1:]

	// Commands that don't need a database connection
	switch sub {
	case "list":
		migrations, err := migration.Embedded()
		if err != nil {
			return err
		}
		log.Info("Available migrations", zap.Int("count", len(migrations)))
		for _, m := range migrations {
			fmt.Fprintln(a.stdout, m)
		}
		return nil
	case "create":
		if len(rest) < 2 {
			return fmt.Errorf("%w: migrate create <dir> <name> [description]", errUsage)
		}
		mf, err := migration.CreateMigration(rest[0], rest[1], strings.Join(rest[2:], " "))
		if err != nil {
			return err
		}
		log.Info("Migration created successfully",
			zap.Uint("version", mf.Version),
			zap.String("up_file", mf.UpPath),
			zap.String("down_file", mf.DownPath),
		)
		fmt.Fprintln(a.stdout, mf.UpPath)
		fmt.Fprintln(a.stdout, mf.DownPath)
		return nil
	}

	db, err := a.database(ctx)
	if err != nil {
		return err
	}
	if db.Driver() == "sqlite" {
		return migrateSQLite(ctx, a, sub)
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	m, err := migration.New(sqlDB, log)
	if err != nil {
		return err
	}

	switch sub {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "steps":
		if len(rest) == 0 {
			return fmt.Errorf("%w: migrate steps <n>", errUsage)
		}
		n, convErr := strconv.Atoi(rest[0])
		if convErr != nil {
			return fmt.Errorf("%w: invalid step count %q", errUsage, rest[0])
		}
		err = m.Steps(n)
	case "force":
		if len(rest) == 0 {
			return fmt.Errorf("%w: migrate force <version>", errUsage)
		}
		v, convErr := strconv.Atoi(rest[0])
		if convErr != nil {
			return fmt.Errorf("%w: invalid version %q", errUsage, rest[0])
		}
		err = m.Force(v)
	case "version":
	default:
		return fmt.Errorf("%w: unknown migrate subcommand %q", errUsage, sub)
	}
	if err != nil {
		return err
	}

	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return a.printJSON(map[string]any{"version": version, "dirty": dirty})
}

// migrateSQLite reports on a SQLite database, whose schema is created by
// AutoMigrate when the database is opened
func migrateSQLite(ctx context.Context, a *app, sub string) error {
	switch sub {
	case "up", "version":
		logger.L(ctx).Info("SQLite schema is managed by AutoMigrate")
		return a.printJSON(map[string]any{"version": 0, "dirty": false})
	case "down", "steps", "force":
		return fmt.Errorf("migrate %s is not supported for sqlite", sub)
	default:
		return fmt.Errorf("%w: unknown migrate subcommand %q", errUsage, sub)
	}
}
