package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/daysabroad/internal/fsutil"
	"github.com/banshee-data/daysabroad/internal/timeutil"
)

func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }
func ptrString(v string) *string    { return &v }

func TestEmptyConfigDefaults(t *testing.T) {
	cfg := EmptyConfig()
	clock := timeutil.NewMockClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))

	assert.Equal(t, DefaultCenterLon, cfg.GetCenterLon())
	assert.Equal(t, DefaultCenterLat, cfg.GetCenterLat())
	assert.Equal(t, 381.0, cfg.GetRadiusKm())
	assert.Equal(t, 365, cfg.GetTargetDays())
	assert.Equal(t, 15, cfg.GetMaxGapDays())
	assert.Equal(t, "km", cfg.GetUnits())
	assert.False(t, cfg.GetIncludeTransitions())
	assert.False(t, cfg.GetVerbose())
	assert.True(t, cfg.GetStart().Equal(time.Unix(0, 0)))
	assert.Equal(t, clock.Now(), cfg.GetEnd(clock))
	assert.NoError(t, cfg.Validate())
}

func TestDefaultsFileMatchesBuiltins(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	empty := EmptyConfig()

	assert.Equal(t, empty.GetCenterLon(), cfg.GetCenterLon())
	assert.Equal(t, empty.GetCenterLat(), cfg.GetCenterLat())
	assert.Equal(t, empty.GetRadiusKm(), cfg.GetRadiusKm())
	assert.Equal(t, empty.GetTargetDays(), cfg.GetTargetDays())
	assert.Equal(t, empty.GetMaxGapDays(), cfg.GetMaxGapDays())
	assert.Equal(t, empty.GetUnits(), cfg.GetUnits())
}

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "analysis.json")

	testJSON := `{
  "center_lon": 2.3522,
  "center_lat": 48.8566,
  "radius_km": 100,
  "start": "2022-01-01",
  "end": "2022-12-31",
  "units": "nmi",
  "include_transitions": true
}`
	require.NoError(t, os.WriteFile(configPath, []byte(testJSON), 0644))

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, 2.3522, cfg.GetCenterLon())
	assert.Equal(t, 48.8566, cfg.GetCenterLat())
	assert.Equal(t, 100.0, cfg.GetRadiusKm())
	assert.Equal(t, "nmi", cfg.GetUnits())
	assert.True(t, cfg.GetIncludeTransitions())
	// omitted fields keep their defaults
	assert.Equal(t, 365, cfg.GetTargetDays())

	assert.Equal(t, time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), cfg.GetStart())
	end := cfg.GetEnd(timeutil.RealClock{})
	assert.Equal(t, time.Date(2022, 12, 31, 23, 59, 59, 999999999, time.UTC), end)
}

func TestLoadConfigFS(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	require.NoError(t, mfs.WriteFile("/etc/daysabroad.json", []byte(`{"target_days": 183}`), 0644))

	cfg, err := LoadConfigFS(mfs, "/etc/daysabroad.json")
	require.NoError(t, err)
	assert.Equal(t, 183, cfg.GetTargetDays())
}

func TestLoadConfig_Errors(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	require.NoError(t, mfs.WriteFile("/bad.json", []byte(`{"radius_km": `), 0644))
	require.NoError(t, mfs.WriteFile("/negative.json", []byte(`{"radius_km": -1}`), 0644))
	require.NoError(t, mfs.WriteFile("/big.json", []byte(strings.Repeat(" ", 1024*1024+1)), 0644))

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{"wrong extension", "/config.yaml", "must have .json extension"},
		{"missing", "/missing.json", "failed to stat"},
		{"malformed", "/bad.json", "failed to parse"},
		{"invalid", "/negative.json", "invalid configuration"},
		{"too large", "/big.json", "too large"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfigFS(mfs, tt.path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     AnalysisConfig
		wantIs  error
		wantErr bool
	}{
		{"zero radius", AnalysisConfig{RadiusKm: ptrFloat64(0)}, nil, false},
		{"negative radius", AnalysisConfig{RadiusKm: ptrFloat64(-5)}, ErrInvalidRadius, true},
		{"zero target", AnalysisConfig{TargetDays: ptrInt(0)}, ErrInvalidThreshold, true},
		{"negative gap", AnalysisConfig{MaxGapDays: ptrInt(-1)}, ErrInvalidThreshold, true},
		{"zero gap", AnalysisConfig{MaxGapDays: ptrInt(0)}, nil, false},
		{"longitude out of range", AnalysisConfig{CenterLon: ptrFloat64(181)}, nil, true},
		{"latitude out of range", AnalysisConfig{CenterLat: ptrFloat64(-91)}, nil, true},
		{"unknown units", AnalysisConfig{Units: ptrString("furlongs")}, nil, true},
		{"bad start", AnalysisConfig{Start: ptrString("01/02/2022")}, nil, true},
		{"timestamp end", AnalysisConfig{End: ptrString("2022-06-01T12:00:00+02:00")}, nil, false},
		{"end before start", AnalysisConfig{Start: ptrString("2022-06-02"), End: ptrString("2022-06-01")}, nil, true},
		{"same day", AnalysisConfig{Start: ptrString("2022-06-01"), End: ptrString("2022-06-01")}, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
		})
	}
}

func TestParseStartEnd(t *testing.T) {
	s, err := ParseStart("2023-04-10")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 4, 10, 0, 0, 0, 0, time.UTC), s)

	e, err := ParseEnd("2023-04-10")
	require.NoError(t, err)
	assert.Equal(t, timeutil.DayIndex(s), timeutil.DayIndex(e))
	assert.True(t, e.After(s))

	ts, err := ParseEnd("2023-04-10T08:30:00+01:00")
	require.NoError(t, err)
	_, off := ts.Zone()
	assert.Equal(t, 3600, off)

	_, err = ParseStart("yesterday")
	assert.Error(t, err)
}
