package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/banshee-data/daysabroad/internal/config"
	"github.com/banshee-data/daysabroad/internal/units"
)

var errInvalidLonLat = errors.New("expected <lon>,<lat>")

// analyseFlags holds the raw analysis flags. Only flags given on the command
// line override the config file.
type analyseFlags struct {
	file        string
	dbPath      string
	configPath  string
	start       string
	end         string
	lonLat      string
	radius      float64
	unitsName   string
	targetDays  int
	maxGapDays  int
	verbose     bool
	transitions bool
	asJSON      bool
	chartPath   string
	plotPath    string
	showVersion bool
}

func newAnalyseFlagSet(out io.Writer) (*flag.FlagSet, *analyseFlags) {
	fs := flag.NewFlagSet("daysabroad", flag.ContinueOnError)
	fs.SetOutput(out)

	f := &analyseFlags{}
	fs.StringVar(&f.file, "f", "", "Takeout location history file (Records.json)")
	fs.StringVar(&f.dbPath, "db", "", "Analyse the fix store instead of a file when -f is not given")
	fs.StringVar(&f.configPath, "config", "", "Analysis config file (.json)")
	fs.StringVar(&f.start, "s", "", "Start date (2006-01-02 or RFC 3339, default: epoch)")
	fs.StringVar(&f.end, "e", "", "End date, inclusive (2006-01-02 or RFC 3339, default: now)")
	fs.StringVar(&f.lonLat, "l", "", fmt.Sprintf("Geofence centre <lon>,<lat> (default: %v,%v)", config.DefaultCenterLon, config.DefaultCenterLat))
	fs.Float64Var(&f.radius, "r", config.DefaultRadiusKm, "Geofence radius in -units")
	fs.StringVar(&f.unitsName, "units", config.DefaultUnits, "Radius units: "+units.GetValidUnitsString())
	fs.IntVar(&f.targetDays, "target", config.DefaultTargetDays, "Days of residency to look for")
	fs.IntVar(&f.maxGapDays, "gap", config.DefaultMaxGapDays, "Longest absence that does not break residency, in days")
	fs.BoolVar(&f.verbose, "v", false, "Log low accuracy fixes, malformed records and progress")
	fs.BoolVar(&f.transitions, "t", false, "List transit days with map links")
	fs.BoolVar(&f.asJSON, "json", false, "Print the report as JSON")
	fs.StringVar(&f.chartPath, "chart", "", "Write a monthly timeline chart (HTML)")
	fs.StringVar(&f.plotPath, "plot", "", "Write a daily hits plot (PNG)")
	fs.BoolVar(&f.showVersion, "version", false, "Print version and exit")

	fs.Usage = func() {
		printUsage(fs.Output())
		fs.PrintDefaults()
	}
	return fs, f
}

// apply copies every flag that was set explicitly onto cfg. The radius is
// converted to kilometres with whichever units end up in effect.
func (f *analyseFlags) apply(fs *flag.FlagSet, cfg *config.AnalysisConfig) error {
	set := make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	if set["s"] {
		cfg.Start = &f.start
	}
	if set["e"] {
		cfg.End = &f.end
	}
	if set["l"] {
		lon, lat, err := parseLonLat(f.lonLat)
		if err != nil {
			return fmt.Errorf("invalid -l %q: %w", f.lonLat, err)
		}
		cfg.CenterLon, cfg.CenterLat = &lon, &lat
	}
	if set["units"] {
		if !units.IsValid(f.unitsName) {
			return fmt.Errorf("invalid -units %q: must be one of %s", f.unitsName, units.GetValidUnitsString())
		}
		cfg.Units = &f.unitsName
	}
	if set["r"] {
		km := units.ToKilometres(f.radius, cfg.GetUnits())
		cfg.RadiusKm = &km
	}
	if set["target"] {
		cfg.TargetDays = &f.targetDays
	}
	if set["gap"] {
		cfg.MaxGapDays = &f.maxGapDays
	}
	if set["v"] {
		cfg.Verbose = &f.verbose
	}
	if set["t"] {
		cfg.IncludeTransitions = &f.transitions
	}
	return nil
}

// parseLonLat parses "<lon>,<lat>" in decimal degrees.
func parseLonLat(s string) (lon, lat float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, errInvalidLonLat
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("longitude: %w", err)
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("latitude: %w", err)
	}
	if lon < -180 || lon > 180 || lat < -90 || lat > 90 {
		return 0, 0, fmt.Errorf("%w: %v,%v out of range", errInvalidLonLat, lon, lat)
	}
	return lon, lat, nil
}
