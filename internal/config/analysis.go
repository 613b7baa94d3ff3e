package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/banshee-data/daysabroad/internal/fsutil"
	"github.com/banshee-data/daysabroad/internal/timeutil"
	"github.com/banshee-data/daysabroad/internal/units"
)

// DefaultConfigPath is the path to the canonical analysis defaults file.
const DefaultConfigPath = "config/analysis.defaults.json"

// Built-in defaults used when a field is omitted. The geofence is centred
// on Knaresborough, UK and is wide enough to cover Great Britain.
const (
	DefaultCenterLon  = -1.4301757
	DefaultCenterLat  = 54.0085726
	DefaultRadiusKm   = 381.0
	DefaultTargetDays = 365
	DefaultMaxGapDays = 15
	DefaultUnits      = units.Kilometres
)

// DateLayout is the date-only form accepted for start and end.
const DateLayout = "2006-01-02"

var (
	ErrInvalidRadius    = errors.New("invalid radius")
	ErrInvalidThreshold = errors.New("invalid threshold")
)

// AnalysisConfig holds the parameters of one days-abroad analysis. Every
// field is optional; the Get* methods fall back to the defaults above, so
// partial configs are safe.
type AnalysisConfig struct {
	CenterLon  *float64 `json:"center_lon,omitempty"`
	CenterLat  *float64 `json:"center_lat,omitempty"`
	RadiusKm   *float64 `json:"radius_km,omitempty"`
	TargetDays *int     `json:"target_days,omitempty"`
	MaxGapDays *int     `json:"max_gap_days,omitempty"`

	// Start and End take a date ("2006-01-02") or an RFC 3339 timestamp.
	Start *string `json:"start,omitempty"`
	End   *string `json:"end,omitempty"`

	Units              *string `json:"units,omitempty"`
	IncludeTransitions *bool   `json:"include_transitions,omitempty"`
	Verbose            *bool   `json:"verbose,omitempty"`
}

// EmptyConfig returns an AnalysisConfig with all fields unset.
func EmptyConfig() *AnalysisConfig {
	return &AnalysisConfig{}
}

// LoadConfig loads an AnalysisConfig from a JSON file on disk.
func LoadConfig(path string) (*AnalysisConfig, error) {
	return LoadConfigFS(fsutil.OSFileSystem{}, path)
}

// LoadConfigFS loads an AnalysisConfig from fsys. The file must have a
// .json extension and be under 1MB.
func LoadConfigFS(fsys fsutil.FileSystem, path string) (*AnalysisConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := fsys.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := fsys.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the values that are set.
func (c *AnalysisConfig) Validate() error {
	if c.RadiusKm != nil && *c.RadiusKm < 0 {
		return fmt.Errorf("%w: radius_km must be non-negative, got %f", ErrInvalidRadius, *c.RadiusKm)
	}
	if c.TargetDays != nil && *c.TargetDays <= 0 {
		return fmt.Errorf("%w: target_days must be positive, got %d", ErrInvalidThreshold, *c.TargetDays)
	}
	if c.MaxGapDays != nil && *c.MaxGapDays < 0 {
		return fmt.Errorf("%w: max_gap_days must be non-negative, got %d", ErrInvalidThreshold, *c.MaxGapDays)
	}
	if c.CenterLon != nil && (*c.CenterLon < -180 || *c.CenterLon > 180) {
		return fmt.Errorf("center_lon must be between -180 and 180, got %f", *c.CenterLon)
	}
	if c.CenterLat != nil && (*c.CenterLat < -90 || *c.CenterLat > 90) {
		return fmt.Errorf("center_lat must be between -90 and 90, got %f", *c.CenterLat)
	}
	if c.Units != nil && !units.IsValid(*c.Units) {
		return fmt.Errorf("units must be one of %s, got %q", units.GetValidUnitsString(), *c.Units)
	}

	var start, end time.Time
	if c.Start != nil && *c.Start != "" {
		t, err := ParseStart(*c.Start)
		if err != nil {
			return fmt.Errorf("invalid start '%s': %w", *c.Start, err)
		}
		start = t
	}
	if c.End != nil && *c.End != "" {
		t, err := ParseEnd(*c.End)
		if err != nil {
			return fmt.Errorf("invalid end '%s': %w", *c.End, err)
		}
		end = t
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return fmt.Errorf("end %s is before start %s", *c.End, *c.Start)
	}

	return nil
}

// ParseStart parses a date or timestamp. A bare date means midnight UTC.
func ParseStart(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// ParseEnd parses a date or timestamp. A bare date covers the whole day.
func ParseEnd(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return timeutil.EndOfDay(t), nil
	}
	return time.Parse(time.RFC3339, s)
}

// GetCenterLon returns the center_lon value or the default.
func (c *AnalysisConfig) GetCenterLon() float64 {
	if c.CenterLon == nil {
		return DefaultCenterLon
	}
	return *c.CenterLon
}

// GetCenterLat returns the center_lat value or the default.
func (c *AnalysisConfig) GetCenterLat() float64 {
	if c.CenterLat == nil {
		return DefaultCenterLat
	}
	return *c.CenterLat
}

// GetRadiusKm returns the radius_km value or the default.
func (c *AnalysisConfig) GetRadiusKm() float64 {
	if c.RadiusKm == nil {
		return DefaultRadiusKm
	}
	return *c.RadiusKm
}

// GetTargetDays returns the target_days value or the default.
func (c *AnalysisConfig) GetTargetDays() int {
	if c.TargetDays == nil {
		return DefaultTargetDays
	}
	return *c.TargetDays
}

// GetMaxGapDays returns the max_gap_days value or the default.
func (c *AnalysisConfig) GetMaxGapDays() int {
	if c.MaxGapDays == nil {
		return DefaultMaxGapDays
	}
	return *c.MaxGapDays
}

// GetStart returns the start of the analysis window, the Unix epoch when
// unset or unparseable.
func (c *AnalysisConfig) GetStart() time.Time {
	if c.Start == nil || *c.Start == "" {
		return time.Unix(0, 0).UTC()
	}
	t, err := ParseStart(*c.Start)
	if err != nil {
		return time.Unix(0, 0).UTC()
	}
	return t
}

// GetEnd returns the end of the analysis window, clock.Now() when unset or
// unparseable.
func (c *AnalysisConfig) GetEnd(clock timeutil.Clock) time.Time {
	if c.End == nil || *c.End == "" {
		return clock.Now()
	}
	t, err := ParseEnd(*c.End)
	if err != nil {
		return clock.Now()
	}
	return t
}

// GetUnits returns the units value or the default.
func (c *AnalysisConfig) GetUnits() string {
	if c.Units == nil || *c.Units == "" {
		return DefaultUnits
	}
	return *c.Units
}

// GetIncludeTransitions returns the include_transitions value or the default.
func (c *AnalysisConfig) GetIncludeTransitions() bool {
	if c.IncludeTransitions == nil {
		return false
	}
	return *c.IncludeTransitions
}

// GetVerbose returns the verbose value or the default.
func (c *AnalysisConfig) GetVerbose() bool {
	if c.Verbose == nil {
		return false
	}
	return *c.Verbose
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath,
// searching the current directory and its parents. Panics if the file cannot
// be loaded; intended for test setup.
func MustLoadDefaultConfig() *AnalysisConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}
