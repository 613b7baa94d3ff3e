package db

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"

	"github.com/banshee-data/daysabroad/internal/monitoring"
)

// ErrUnknownMigrateAction is returned for an unrecognised migrate action.
var ErrUnknownMigrateAction = errors.New("unknown migrate action")

// RunMigrateCommand handles the 'migrate' subcommand, writing human-readable
// output to w.
func RunMigrateCommand(w io.Writer, args []string, dbPath string) error {
	if len(args) < 1 || args[0] == "help" {
		PrintMigrateHelp(w)
		if len(args) < 1 {
			return fmt.Errorf("%w: none given", ErrUnknownMigrateAction)
		}
		return nil
	}

	migrationsFS, err := getMigrationsFS()
	if err != nil {
		return err
	}

	// The schema is left alone on open; migrations manage it.
	database, err := OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	switch action := args[0]; action {
	case "up":
		return handleMigrateUp(w, database, migrationsFS)
	case "down":
		return handleMigrateDown(w, database, migrationsFS)
	case "status":
		return handleMigrateStatus(w, database, migrationsFS)
	case "version":
		if len(args) < 2 {
			return errors.New("usage: daysabroad migrate version <version_number>")
		}
		return handleMigrateVersion(w, database, migrationsFS, args[1])
	default:
		PrintMigrateHelp(w)
		return fmt.Errorf("%w: %s", ErrUnknownMigrateAction, action)
	}
}

func handleMigrateUp(w io.Writer, database *DB, migrationsFS fs.FS) error {
	monitoring.Logf("Running migrations...")
	if err := database.MigrateUp(migrationsFS); err != nil {
		return err
	}
	version, dirty, err := database.MigrateVersion(migrationsFS)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "✓ All migrations applied. Current version: %d (dirty: %v)\n", version, dirty)
	return nil
}

func handleMigrateDown(w io.Writer, database *DB, migrationsFS fs.FS) error {
	monitoring.Logf("Rolling back one migration...")
	if err := database.MigrateDown(migrationsFS); err != nil {
		return err
	}
	version, dirty, err := database.MigrateVersion(migrationsFS)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "✓ Migration rolled back. Current version: %d (dirty: %v)\n", version, dirty)
	return nil
}

func handleMigrateStatus(w io.Writer, database *DB, migrationsFS fs.FS) error {
	status, err := database.GetMigrationStatus(migrationsFS)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "=== Migration Status ===")
	fmt.Fprintf(w, "Current version: %d\n", status.CurrentVersion)
	fmt.Fprintf(w, "Latest available: %d\n", status.LatestVersion)
	fmt.Fprintf(w, "Dirty: %v\n", status.Dirty)
	fmt.Fprintf(w, "Schema migrations table exists: %v\n", status.TableExists)

	switch {
	case status.Dirty:
		fmt.Fprintln(w, "\n⚠️  WARNING: Database is in a dirty state!")
		fmt.Fprintln(w, "A migration failed mid-execution; inspect the database before retrying.")
	case status.Pending():
		fmt.Fprintf(w, "\n⚠️  Database is %d version(s) behind. Run 'daysabroad migrate up' to update.\n",
			status.LatestVersion-status.CurrentVersion)
	default:
		fmt.Fprintln(w, "\n✓ Database is up to date!")
	}
	return nil
}

func handleMigrateVersion(w io.Writer, database *DB, migrationsFS fs.FS, versionStr string) error {
	target, err := strconv.ParseUint(versionStr, 10, 32)
	if err != nil {
		return fmt.Errorf("invalid version number %q: %w", versionStr, err)
	}

	monitoring.Logf("Migrating to version %d...", target)
	if err := database.MigrateTo(migrationsFS, uint(target)); err != nil {
		return err
	}
	fmt.Fprintf(w, "✓ Migrated to version %d\n", target)
	return nil
}

// PrintMigrateHelp displays the help message for the migrate command.
func PrintMigrateHelp(w io.Writer) {
	fmt.Fprintln(w, "Fix Store Migration Commands")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: daysabroad migrate [-db fixes.db] <command>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  up              Apply all pending migrations")
	fmt.Fprintln(w, "  down            Rollback one migration")
	fmt.Fprintln(w, "  status          Show current migration status and version")
	fmt.Fprintln(w, "  version <N>     Migrate to specific version N")
	fmt.Fprintln(w, "  help            Show this help message")
}
