package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/chrissnell/isomodel/internal/log"
	"github.com/chrissnell/isomodel/internal/storage/sqlite"
	"github.com/chrissnell/isomodel/pkg/migrate"
	_ "modernc.org/sqlite" // SQLite driver
)

func main() {
	var (
		dbPath        = flag.String("db", "", "Path to the SQLite run store")
		migrationDir  = flag.String("dir", "", "Read migrations from this directory instead of the built-in run store schema")
		command       = flag.String("command", "up", "Migration command: up, down, to, version, status")
		targetVersion = flag.String("target", "", "Target version for down/to commands")
		debug         = flag.Bool("debug", false, "Enable debug logging")
		helpFlag      = flag.Bool("help", false, "Show help")
	)

	flag.Parse()

	if *helpFlag {
		showHelp(os.Stdout)
		return
	}

	if err := log.Init(*debug); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if *dbPath == "" {
		fmt.Fprintf(os.Stderr, "Error: -db flag is required\n")
		showHelp(os.Stderr)
		os.Exit(1)
	}

	db, err := sql.Open("sqlite", *dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	var provider migrate.MigrationProvider = sqlite.Migrations()
	if *migrationDir != "" {
		provider = migrate.NewFSProvider(os.DirFS(*migrationDir), "schema_migrations")
	}
	migrator := migrate.NewMigrator(db, provider, log.GetSugaredLogger())

	if err := run(context.Background(), os.Stdout, migrator, *command, *targetVersion); err != nil {
		log.Fatalf("Migration command failed: %v", err)
	}
}

func run(ctx context.Context, out io.Writer, migrator *migrate.Migrator, command, targetVersion string) error {
	switch command {
	case "up":
		if err := migrator.MigrateUp(ctx); err != nil {
			return err
		}
	case "down", "to":
		if targetVersion == "" {
			return fmt.Errorf("-target flag is required for %s command", command)
		}
		target, err := strconv.Atoi(targetVersion)
		if err != nil {
			return fmt.Errorf("invalid target version: %w", err)
		}
		if command == "down" {
			err = migrator.MigrateDown(ctx, target)
		} else {
			err = migrator.MigrateTo(ctx, target)
		}
		if err != nil {
			return err
		}
	case "version":
		version, err := migrator.GetCurrentVersion(ctx)
		if err != nil {
			return fmt.Errorf("failed to get current version: %w", err)
		}
		fmt.Fprintf(out, "Current version: %d\n", version)
		return nil
	case "status":
		return showStatus(ctx, out, migrator)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}

	fmt.Fprintln(out, "Migration completed successfully")
	return nil
}

func showStatus(ctx context.Context, out io.Writer, migrator *migrate.Migrator) error {
	currentVersion, err := migrator.GetCurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	pending, err := migrator.GetPendingMigrations(ctx)
	if err != nil {
		return fmt.Errorf("failed to get pending migrations: %w", err)
	}

	fmt.Fprintf(out, "Current version: %d\n", currentVersion)
	fmt.Fprintf(out, "Pending migrations: %d\n", len(pending))

	if len(pending) > 0 {
		fmt.Fprintln(out, "\nPending migrations:")
		for _, migration := range pending {
			fmt.Fprintf(out, "  %d: %s\n", migration.Version, migration.Name)
		}
	}

	return nil
}

func showHelp(w io.Writer) {
	fmt.Fprint(w, `Run store migration tool

Usage:
  migrate [flags]

Flags:
  -db string         Path to the SQLite run store (required)
  -dir string        Read migrations from a directory instead of the built-in schema
  -command string    Migration command (default: up)
  -target string     Target version for down/to commands
  -debug             Enable debug logging
  -help              Show this help message

Commands:
  up                 Apply all pending migrations
  down               Roll back to target version
  to                 Migrate to specific version (up or down)
  version            Show current migration version
  status             Show migration status

Examples:
  migrate -db runs.db -command up
  migrate -db runs.db -command down -target 1
  migrate -db runs.db -command status
`)
}
