package main

import (
	"context"
	"fmt"
	"io"

	"github.com/banshee-data/daysabroad/internal/config"
	"github.com/banshee-data/daysabroad/internal/db"
	"github.com/banshee-data/daysabroad/internal/monitoring"
	"github.com/banshee-data/daysabroad/internal/report"
)

func (a *app) analyse(ctx context.Context, args []string) error {
	fs, f := newAnalyseFlagSet(a.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if f.showVersion {
		printVersion(a.stdout)
		return nil
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}

	cfg := config.EmptyConfig()
	if f.configPath != "" {
		loaded, err := config.LoadConfigFS(a.fs, f.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if err := f.apply(fs, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	opts := optionsFrom(cfg, a)
	rep, err := a.countDaysAbroad(ctx, f, opts)
	if err != nil {
		return err
	}

	if f.asJSON {
		err = report.WriteJSON(a.stdout, rep)
	} else {
		err = report.WriteText(a.stdout, rep)
	}
	if err != nil {
		return err
	}

	if rep.Empty() {
		if f.chartPath != "" || f.plotPath != "" {
			monitoring.Logf("No qualifying records; skipping chart and plot")
		}
		return nil
	}
	if f.chartPath != "" {
		if err := a.writeFile(f.chartPath, func(w io.Writer) error { return report.RenderTimelineChart(w, rep) }); err != nil {
			return fmt.Errorf("failed to write chart: %w", err)
		}
		monitoring.Logf("Timeline chart written to %s", f.chartPath)
	}
	if f.plotPath != "" {
		if err := a.writeFile(f.plotPath, func(w io.Writer) error { return report.WriteHitsPlot(w, rep) }); err != nil {
			return fmt.Errorf("failed to write plot: %w", err)
		}
		monitoring.Logf("Hits plot written to %s", f.plotPath)
	}
	return nil
}

func optionsFrom(cfg *config.AnalysisConfig, a *app) report.Options {
	return report.Options{
		Start:              cfg.GetStart(),
		End:                cfg.GetEnd(a.clock),
		CenterLon:          cfg.GetCenterLon(),
		CenterLat:          cfg.GetCenterLat(),
		RadiusKm:           cfg.GetRadiusKm(),
		TargetDays:         cfg.GetTargetDays(),
		MaxGapDays:         cfg.GetMaxGapDays(),
		Verbose:            cfg.GetVerbose(),
		IncludeTransitions: cfg.GetIncludeTransitions(),
	}
}

// countDaysAbroad runs the analysis over the Takeout file when one is given,
// otherwise over the fix store.
func (a *app) countDaysAbroad(ctx context.Context, f *analyseFlags, opts report.Options) (*report.Report, error) {
	switch {
	case f.file != "":
		reader, err := a.openTakeout(f.file, opts.Verbose)
		if err != nil {
			return nil, err
		}
		defer reader.Close()

		rep, err := report.CountDaysAbroad(reader.Records(), opts)
		if err != nil {
			return nil, err
		}
		if err := reader.Err(); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f.file, err)
		}
		monitoring.Verbosef(opts.Verbose, "%d malformed records skipped", reader.MalformedRecords())
		return rep, nil

	case f.dbPath != "":
		store, err := db.NewDB(f.dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open fix store: %w", err)
		}
		defer store.Close()

		cursor := store.Fixes(ctx, opts.Start, opts.End)
		rep, err := report.CountDaysAbroad(cursor.Records(), opts)
		if err != nil {
			return nil, err
		}
		if err := cursor.Err(); err != nil {
			return nil, err
		}
		return rep, nil

	default:
		return nil, errNoInput
	}
}

// writeFile creates path on the app filesystem and hands it to write.
func (a *app) writeFile(path string, write func(io.Writer) error) error {
	w, err := a.fs.Create(path)
	if err != nil {
		return err
	}
	if err := write(w); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
