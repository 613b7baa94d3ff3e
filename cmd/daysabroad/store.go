package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/banshee-data/daysabroad/internal/db"
	"github.com/banshee-data/daysabroad/internal/monitoring"
	"github.com/banshee-data/daysabroad/internal/record"
	"github.com/banshee-data/daysabroad/internal/takeout"
)

func (a *app) importFixes(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	file := fs.String("f", "", "Takeout location history file (Records.json)")
	dbPath := fs.String("db", DefaultDBPath, "Path to the fix store")
	verbose := fs.Bool("v", false, "Log malformed records and read progress")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("import: %w", errNoInput)
	}

	reader, err := a.openTakeout(*file, *verbose)
	if err != nil {
		return err
	}
	defer reader.Close()

	store, err := db.NewDB(*dbPath)
	if err != nil {
		return fmt.Errorf("failed to open fix store: %w", err)
	}
	defer store.Close()

	summary, err := store.ImportFixes(ctx, *file, reader)
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", *file, err)
	}

	fmt.Fprintf(a.stdout, "Imported %d new fixes from %s (%d read, %d already stored, %d malformed)\n",
		summary.Inserted, summary.SourcePath, summary.Read, summary.Duplicates(), summary.Malformed)
	fmt.Fprintf(a.stdout, "Import id: %s\n", summary.ID)
	return nil
}

func (a *app) listImports(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("imports", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	dbPath := fs.String("db", DefaultDBPath, "Path to the fix store")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := db.NewDB(*dbPath)
	if err != nil {
		return fmt.Errorf("failed to open fix store: %w", err)
	}
	defer store.Close()

	imports, err := store.Imports(ctx)
	if err != nil {
		return fmt.Errorf("failed to list imports: %w", err)
	}
	total, err := store.CountFixes(ctx)
	if err != nil {
		return fmt.Errorf("failed to count fixes: %w", err)
	}

	for _, s := range imports {
		fmt.Fprintf(a.stdout, "%s  %s  %s  read %d, new %d, malformed %d\n",
			s.ID, s.Started.Format("2006-01-02 15:04:05"), s.SourcePath, s.Read, s.Inserted, s.Malformed)
	}
	fmt.Fprintf(a.stdout, "%d imports, %d fixes stored\n", len(imports), total)
	return nil
}

func (a *app) migrate(args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	dbPath := fs.String("db", DefaultDBPath, "Path to the fix store")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return db.RunMigrateCommand(a.stdout, fs.Args(), *dbPath)
}

// openTakeout opens a Takeout file. When verbose, malformed records and read
// progress go to the diagnostic log.
func (a *app) openTakeout(path string, verbose bool) (*takeout.Reader, error) {
	reader, err := takeout.Open(a.fs, path)
	if err != nil {
		return nil, err
	}
	monitoring.Logf("Processing '%s'...", path)

	reader.OnMalformed = func(_ *record.Builder, err error) {
		monitoring.Verbosef(verbose, "Malformed record: %v", err)
	}
	if verbose {
		reader.Progress = &monitoring.Progress{
			Step: 0.1,
			OnUpdate: func(fraction float64) {
				monitoring.Logf("Read %.0f%%", fraction*100)
			},
		}
	}
	return reader, nil
}
