package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/banshee-data/daysabroad/internal/fsutil"
	"github.com/banshee-data/daysabroad/internal/timeutil"
	"github.com/banshee-data/daysabroad/internal/version"
)

// DefaultDBPath is the fix store used by import, imports and migrate.
const DefaultDBPath = "fixes.db"

var errNoInput = errors.New("no input file (-f) or fix store (-db) specified")

// app carries everything a command touches outside the process so tests can
// swap in an in-memory filesystem and a fixed clock.
type app struct {
	fs     fsutil.FileSystem
	clock  timeutil.Clock
	stdout io.Writer
	stderr io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := &app{
		fs:     fsutil.OSFileSystem{},
		clock:  timeutil.RealClock{},
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	if err := a.run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatalf("%v", err)
	}
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) > 0 {
		switch args[0] {
		case "import":
			return a.importFixes(ctx, args[1:])
		case "imports":
			return a.listImports(ctx, args[1:])
		case "migrate":
			return a.migrate(args[1:])
		case "version":
			printVersion(a.stdout)
			return nil
		case "help":
			fs, _ := newAnalyseFlagSet(a.stdout)
			fs.Usage()
			return nil
		}
	}
	return a.analyse(ctx, args)
}

func printVersion(w io.Writer) {
	fmt.Fprintln(w, version.String())
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `daysabroad - count days spent outside a geofence from a location history

Usage:
  daysabroad [flags]                     Analyse a Takeout file (-f) or the fix store (-db)
  daysabroad import -f <file> [-db <db>] Store the fixes of a Takeout file
  daysabroad imports [-db <db>]          List past imports
  daysabroad migrate [-db <db>] <action> Manage the fix store schema (up, down, status, version N)
  daysabroad version                     Show build information
  daysabroad help                        Show this help message

Analysis flags:
`)
}
